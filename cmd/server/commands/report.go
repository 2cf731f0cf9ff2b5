package commands

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"elections/internal/config"
	"elections/internal/election"
	"elections/internal/formatter"
	"elections/internal/models"
	"elections/internal/parser"
	"elections/internal/registry"
	"elections/internal/storage"
)

type reportOptions struct {
	jurisdiction string
	inputs       []string
	method       string
	stored       bool
}

func reportCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Parse result files and print a jurisdiction report",
		Example: `  elections report --jurisdiction Canada \
    --input 2015-10-19=data/parkdale-highpark.csv \
    --input 2015-10-19=data/nunavut.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return report(cmd.Context(), cmd.OutOrStdout(), *cfg, *log, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.jurisdiction, "jurisdiction", "j", "", "jurisdiction name")
	cmd.Flags().StringArrayVarP(&opts.inputs, "input", "i", nil, "result file as DATE=LOCATION, repeatable")
	cmd.Flags().StringVarP(&opts.method, "method", "m", string(models.ParseMethodCSV), "parse method for --input files: csv or zip")
	cmd.Flags().BoolVar(&opts.stored, "stored", false, "also import the sources stored for the jurisdiction")
	_ = cmd.MarkFlagRequired("jurisdiction")

	return cmd
}

func report(ctx context.Context, out io.Writer, cfg config.Config, log zerolog.Logger, opts reportOptions) error {
	sources, err := inputSources(opts)
	if err != nil {
		return err
	}

	if opts.stored {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return errors.Wrap(err, "failed to create data directory")
		}
		store, err := storage.NewPocketBaseStore(cfg.DataDir)
		if err != nil {
			return errors.Wrap(err, "failed to initialize storage")
		}
		stored, err := store.FindResultSources(opts.jurisdiction)
		store.Close()
		if err != nil {
			return err
		}
		sources = append(stored, sources...)
	}

	manager, err := parser.NewParserManager(nil, log)
	if err != nil {
		return errors.Wrap(err, "failed to initialize parser manager")
	}
	defer manager.Cleanup()

	reg := registry.New(manager, log)
	for _, source := range sources {
		if _, err := reg.Import(ctx, source); err != nil {
			return err
		}
	}

	var rep models.Report
	err = reg.View(opts.jurisdiction, func(j *election.Jurisdiction) error {
		rep, err = formatter.Report(j)
		return err
	})
	if errors.Is(err, registry.ErrUnknownJurisdiction) {
		rep, err = formatter.Report(election.NewJurisdiction(opts.jurisdiction))
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// inputSources turns DATE=LOCATION arguments into result sources.
func inputSources(opts reportOptions) ([]models.ResultSource, error) {
	sources := make([]models.ResultSource, 0, len(opts.inputs))
	for _, in := range opts.inputs {
		date, location, ok := strings.Cut(in, "=")
		if !ok {
			return nil, errors.Errorf("input %q: expected DATE=LOCATION", in)
		}
		source := models.ResultSource{
			Jurisdiction: opts.jurisdiction,
			Date:         strings.TrimSpace(date),
			Link:         strings.TrimSpace(location),
			ParseMethod:  models.ParseMethod(opts.method),
		}
		if err := source.Validate(); err != nil {
			return nil, errors.Wrapf(err, "input %q", in)
		}
		sources = append(sources, source)
	}
	return sources, nil
}
