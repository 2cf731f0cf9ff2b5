package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"elections/internal/config"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	v := config.New()
	var (
		cfg config.Config
		log zerolog.Logger
	)

	root := &cobra.Command{
		Use:           "elections",
		Short:         "Parliamentary election results",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.BindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			var err error
			if cfg, err = config.Load(v); err != nil {
				return err
			}
			log, err = cfg.Logger(cmd.ErrOrStderr())
			return err
		},
	}

	root.PersistentFlags().String(config.FlagDataDir, "", "PocketBase data dir (default ./pb_data)")
	root.PersistentFlags().String(config.FlagLogLevel, "", "log level: debug, info, warn, error (default info)")
	root.PersistentFlags().String(config.FlagLogFormat, "", "log format: console or json (default console)")

	root.AddCommand(
		serveCmd(&cfg, &log),
		reportCmd(&cfg, &log),
	)
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}
