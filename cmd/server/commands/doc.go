// Package commands defines the elections CLI.
//
// Commands
//
//   - serve   Import every stored result source and serve the HTTP API
//   - report  Parse result files and print a jurisdiction report as JSON
//
// Settings come from flags, then the environment (PORT, DATA_DIR, LOG_LEVEL,
// LOG_FORMAT), then defaults.
package commands
