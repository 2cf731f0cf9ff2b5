package parser

import (
	"archive/zip"
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"elections/internal/election"
)

// ZIPParser implements Parser interface for ZIP files containing CSV data
type ZIPParser struct {
	tempDir string
	client  *http.Client
	log     zerolog.Logger
}

// NewZIPParser creates a new ZIP parser instance
func NewZIPParser(client *http.Client, log zerolog.Logger) (*ZIPParser, error) {
	tempDir, err := os.MkdirTemp("", "election_data_*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temp directory")
	}

	return &ZIPParser{
		tempDir: tempDir,
		client:  client,
		log:     log,
	}, nil
}

// Method returns the parser type
func (p *ZIPParser) Method() string {
	return "zip"
}

// Parse implements the Parser interface
func (p *ZIPParser) Parse(ctx context.Context, location string) ([]election.Result, error) {
	p.log.Info().Str("location", location).Msg("parsing ZIP")

	zipPath := location
	if isRemote(location) {
		path, err := p.downloadZIP(ctx, location)
		if err != nil {
			return nil, NewParseError("download", err)
		}
		defer os.Remove(path)
		zipPath = path
	}

	results, err := p.processZIPFile(ctx, zipPath)
	if err != nil {
		return nil, NewParseError("process", err)
	}

	p.log.Info().Str("location", location).Int("results", len(results)).Msg("successfully completed parsing")
	return results, nil
}

// downloadZIP downloads a ZIP file from the given URL into the temp dir
func (p *ZIPParser) downloadZIP(ctx context.Context, url string) (string, error) {
	body, err := download(ctx, p.client, p.log, url)
	if err != nil {
		return "", err
	}
	defer body.Close()

	f, err := os.CreateTemp(p.tempDir, "download-*.zip")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp file")
	}
	defer f.Close()

	written, err := io.Copy(f, body)
	if err != nil {
		os.Remove(f.Name())
		return "", errors.Wrap(err, "failed to save file")
	}
	p.log.Debug().Int64("bytes", written).Str("path", f.Name()).Msg("downloaded ZIP")

	return f.Name(), nil
}

// processZIPFile reads the results of every CSV file in the ZIP
func (p *ZIPParser) processZIPFile(ctx context.Context, zipPath string) ([]election.Result, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open ZIP")
	}
	defer r.Close()

	p.log.Debug().Int("files", len(r.File)).Str("path", zipPath).Msg("opened ZIP archive")

	var results []election.Result
	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry, err := p.processZIPEntry(ctx, f)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to process %s", f.Name)
		}
		results = append(results, entry...)
	}

	return results, nil
}

// processZIPEntry handles a single file from the ZIP archive
func (p *ZIPParser) processZIPEntry(ctx context.Context, f *zip.File) ([]election.Result, error) {
	if f.FileInfo().IsDir() || !strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
		p.log.Debug().Str("file", f.Name).Msg("skipping non-CSV file")
		return nil, nil
	}

	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file in ZIP")
	}
	defer rc.Close()

	return readResults(ctx, rc, p.log.With().Str("file", f.Name).Logger())
}

// Cleanup removes temporary files
func (p *ZIPParser) Cleanup() error {
	return os.RemoveAll(p.tempDir)
}
