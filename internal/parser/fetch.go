package parser

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const downloadTimeout = 30 * time.Second

func isRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// open returns a reader over the file or URL at location.
func open(ctx context.Context, client *http.Client, log zerolog.Logger, location string) (io.ReadCloser, error) {
	if !isRemote(location) {
		f, err := os.Open(location)
		if err != nil {
			return nil, NewParseError("open", err)
		}
		return f, nil
	}

	body, err := download(ctx, client, log, location)
	if err != nil {
		return nil, NewParseError("download", err)
	}
	return body, nil
}

// download issues a GET for url and returns the response body.
func download(ctx context.Context, client *http.Client, log zerolog.Logger, url string) (io.ReadCloser, error) {
	log.Debug().Str("url", url).Msg("creating HTTP request")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to download file")
	}

	log.Debug().Int("status", resp.StatusCode).Str("url", url).Msg("received response")
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return resp.Body, nil
}
