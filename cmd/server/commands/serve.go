package commands

import (
	"context"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"elections/internal/config"
	"elections/internal/handlers"
	"elections/internal/parser"
	"elections/internal/registry"
	"elections/internal/storage"
)

func serveCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Import stored result sources and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *cfg, *log)
		},
	}
	cmd.Flags().String(config.FlagPort, "", "HTTP port (default 8080)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create data directory")
	}

	store, err := storage.NewPocketBaseStore(cfg.DataDir)
	if err != nil {
		return errors.Wrap(err, "failed to initialize storage")
	}
	defer store.Close()

	manager, err := parser.NewParserManager(nil, log)
	if err != nil {
		return errors.Wrap(err, "failed to initialize parser manager")
	}
	defer manager.Cleanup()

	reg := registry.New(manager, log)
	importStored(ctx, store, reg, log)

	mux := http.NewServeMux()
	handlers.NewElectionHandler(store, reg, log).Register(mux)

	log.Info().Str("port", cfg.Port).Msg("server starting")
	return http.ListenAndServe(":"+cfg.Port, mux)
}

// importStored loads every catalogued source. A source that fails is logged
// and skipped so one bad link does not keep the server down.
func importStored(ctx context.Context, store *storage.PocketBaseStore, reg *registry.Registry, log zerolog.Logger) {
	sources, err := store.GetAllResultSources()
	if err != nil {
		log.Error().Err(err).Msg("failed to list result sources")
		return
	}
	for _, source := range sources {
		if _, err := reg.Import(ctx, source); err != nil {
			log.Error().Err(err).Str("source", source.ID).Msg("failed to import result source")
		}
	}
}
