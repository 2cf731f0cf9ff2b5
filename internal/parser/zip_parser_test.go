package parser_test

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elections/internal/election"
	"elections/internal/parser"
)

func zipArchive(t *testing.T, files map[string]string, order ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range order {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestZIPParser(t *testing.T) {
	p, err := parser.NewZIPParser(http.DefaultClient, zerolog.Nop())
	require.NoError(t, err)
	defer p.Cleanup()
	assert.Equal(t, "zip", p.Method())

	archive := zipArchive(t, map[string]string{
		"pollresults_35075.csv": "riding,party,votes\nparkdale,ndp,10\nparkdale,lib,8\n",
		"readme.txt":            "not results",
		"pollresults_62001.csv": "riding,party,votes\nnunavut,lib,20\n",
	}, "pollresults_35075.csv", "readme.txt", "pollresults_62001.csv")

	want := []election.Result{
		{Riding: "parkdale", Party: "ndp", Votes: 10},
		{Riding: "parkdale", Party: "lib", Votes: 8},
		{Riding: "nunavut", Party: "lib", Votes: 20},
	}

	t.Run("local archive", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "results.zip")
		require.NoError(t, os.WriteFile(path, archive, 0o600))

		results, err := p.Parse(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, want, results)
	})

	t.Run("downloaded archive", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(archive)
		}))
		defer srv.Close()

		results, err := p.Parse(context.Background(), srv.URL+"/pollbypoll.zip")
		require.NoError(t, err)
		assert.Equal(t, want, results)
	})

	t.Run("not an archive", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "results.zip")
		require.NoError(t, os.WriteFile(path, []byte("riding,party,votes\n"), 0o600))

		_, err := p.Parse(context.Background(), path)
		var perr *parser.ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "process", perr.Stage)
	})
}

func TestZIPParserCleanup(t *testing.T) {
	p, err := parser.NewZIPParser(http.DefaultClient, zerolog.Nop())
	require.NoError(t, err)
	assert.NoError(t, p.Cleanup())
}
