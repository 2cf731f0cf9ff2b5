package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elections/internal/election"
	"elections/internal/handlers"
	"elections/internal/models"
	"elections/internal/parser"
	"elections/internal/registry"
	"elections/internal/storage"
)

type memoryStore struct {
	sources map[string]models.ResultSource
	next    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sources: make(map[string]models.ResultSource)}
}

func (s *memoryStore) SaveResultSource(source *models.ResultSource) error {
	s.next++
	source.ID = fmt.Sprintf("src%d", s.next)
	s.sources[source.ID] = *source
	return nil
}

func (s *memoryStore) GetResultSource(id string) (*models.ResultSource, error) {
	source, ok := s.sources[id]
	if !ok {
		return nil, errors.Wrap(storage.ErrSourceNotFound, id)
	}
	return &source, nil
}

func (s *memoryStore) GetAllResultSources() ([]models.ResultSource, error) {
	out := make([]models.ResultSource, 0, len(s.sources))
	for _, source := range s.sources {
		out = append(out, source)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryStore) UpdateResultSource(id string, source *models.ResultSource) error {
	if _, ok := s.sources[id]; !ok {
		return errors.Wrap(storage.ErrSourceNotFound, id)
	}
	source.ID = id
	s.sources[id] = *source
	return nil
}

func (s *memoryStore) DeleteResultSource(id string) error {
	if _, ok := s.sources[id]; !ok {
		return errors.Wrap(storage.ErrSourceNotFound, id)
	}
	delete(s.sources, id)
	return nil
}

type fixture struct {
	store    *memoryStore
	registry *registry.Registry
	server   *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	manager, err := parser.NewParserManager(nil, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(manager.Cleanup)

	store := newMemoryStore()
	reg := registry.New(manager, zerolog.Nop())
	mux := http.NewServeMux()
	handlers.NewElectionHandler(store, reg, zerolog.Nop()).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &fixture{store: store, registry: reg, server: srv}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	require.NoError(t, err)
	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func (f *fixture) seed() {
	f.registry.Record("Canada", time.Date(2000, time.February, 8, 0, 0, 0, 0, time.UTC), []election.Result{
		{Riding: "r1", Party: "ndp", Votes: 1},
		{Riding: "r1", Party: "lib", Votes: 1},
		{Riding: "r1", Party: "pc", Votes: 1},
		{Riding: "r2", Party: "pc", Votes: 1},
		{Riding: "r2", Party: "lib", Votes: 1},
		{Riding: "r2", Party: "green", Votes: 1},
		{Riding: "r2", Party: "ndp", Votes: 1},
	})
	f.registry.Record("Canada", time.Date(2004, time.May, 16, 0, 0, 0, 0, time.UTC), []election.Result{
		{Riding: "r1", Party: "ndp", Votes: 1},
		{Riding: "r3", Party: "pc", Votes: 1},
	})
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestResultSourceRoutes(t *testing.T) {
	f := newFixture(t)

	source := models.ResultSource{
		Jurisdiction: "Canada",
		Date:         "2015-10-19",
		Link:         "https://example.org/pollresults.zip",
		ParseMethod:  models.ParseMethodZIP,
	}

	resp := f.do(t, http.MethodPost, "/api/sources", source)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.ResultSource
	decode(t, resp, &created)
	require.NotEmpty(t, created.ID)

	resp = f.do(t, http.MethodGet, "/api/sources/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got models.ResultSource
	decode(t, resp, &got)
	assert.Equal(t, created, got)

	resp = f.do(t, http.MethodGet, "/api/sources", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []models.ResultSource
	decode(t, resp, &all)
	assert.Len(t, all, 1)

	source.Date = "2019-10-21"
	resp = f.do(t, http.MethodPut, "/api/sources/"+created.ID, source)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2019-10-21", f.store.sources[created.ID].Date)

	resp = f.do(t, http.MethodPut, "/api/sources/missing", source)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, "/api/sources/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, f.store.sources)

	resp = f.do(t, http.MethodGet, "/api/sources/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodPatch, "/api/sources", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSaveResultSourceRejectsInvalid(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/sources", models.ResultSource{Jurisdiction: "Canada", ParseMethod: "html"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/sources/bulk", []models.ResultSource{
		{Jurisdiction: "Canada", Date: "2015-10-19", Link: "a.csv", ParseMethod: models.ParseMethodCSV},
		{Jurisdiction: "Canada", Date: "bad", Link: "b.csv", ParseMethod: models.ParseMethodCSV},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, f.store.sources)
}

func TestBulkSaveAndImport(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	parkdale := filepath.Join(dir, "parkdale.csv")
	require.NoError(t, os.WriteFile(parkdale, []byte("riding,party,votes\nparkdale,ndp,30\nparkdale,lib,20\n"), 0o600))
	nunavut := filepath.Join(dir, "nunavut.csv")
	require.NoError(t, os.WriteFile(nunavut, []byte("riding,party,votes\nnunavut,lib,40\n"), 0o600))

	resp := f.do(t, http.MethodPost, "/api/sources/bulk", []models.ResultSource{
		{Jurisdiction: "Canada", Date: "2015-10-19", Link: parkdale, ParseMethod: models.ParseMethodCSV},
		{Jurisdiction: "Canada", Date: "2015-10-19", Link: nunavut, ParseMethod: models.ParseMethodCSV},
		{Jurisdiction: "Canada", Date: "2015-10-19", Link: filepath.Join(dir, "missing.zip"), ParseMethod: models.ParseMethodZIP},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var saved map[string]interface{}
	decode(t, resp, &saved)
	assert.EqualValues(t, 3, saved["saved_count"])

	t.Run("single source", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/sources/src1/import", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]interface{}
		decode(t, resp, &body)
		assert.EqualValues(t, 2, body["results"])
	})

	t.Run("by method", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/import/csv", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			TotalSources int      `json:"total_sources"`
			Successful   int      `json:"successful"`
			Imported     int      `json:"imported"`
			Failed       []string `json:"failed"`
		}
		decode(t, resp, &body)
		assert.Equal(t, 2, body.TotalSources)
		assert.Equal(t, 2, body.Successful)
		assert.Equal(t, 3, body.Imported)
		assert.Empty(t, body.Failed)
	})

	t.Run("failures are reported", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/import/zip", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			TotalSources int      `json:"total_sources"`
			Failed       []string `json:"failed"`
		}
		decode(t, resp, &body)
		assert.Equal(t, 1, body.TotalSources)
		assert.Len(t, body.Failed, 1)
	})

	t.Run("unknown method", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/import/html", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing source", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/sources/nope/import", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("parse failure", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/sources/src3/import", nil)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})

	resp = f.do(t, http.MethodGet, "/api/jurisdictions/Canada/elections/2015-10-19", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary models.ElectionSummary
	decode(t, resp, &summary)
	// parkdale was imported twice: once alone, once in the bulk import
	assert.Equal(t, []models.PartyVotes{{Party: "ndp", Votes: 60}, {Party: "lib", Votes: 80}}, summary.PopularVote)
	assert.Equal(t, []string{"ndp", "lib"}, summary.Winners)
}

func TestQueryRoutes(t *testing.T) {
	f := newFixture(t)
	f.seed()

	t.Run("jurisdictions", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/jurisdictions", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var names []string
		decode(t, resp, &names)
		assert.Equal(t, []string{"Canada"}, names)
	})

	t.Run("jurisdiction summary", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/jurisdictions/Canada", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var summary models.JurisdictionSummary
		decode(t, resp, &summary)
		assert.Equal(t, []string{"2000-02-08", "2004-05-16"}, summary.Dates)
		require.Len(t, summary.RidingChanges, 1)
		assert.Equal(t, []string{"r2"}, summary.RidingChanges[0].Removed)
		assert.Equal(t, []string{"r3"}, summary.RidingChanges[0].Added)
	})

	t.Run("riding changes", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/jurisdictions/Canada/riding-changes", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var changes []models.RidingChange
		decode(t, resp, &changes)
		assert.Equal(t, []models.RidingChange{
			{From: "2000-02-08", To: "2004-05-16", Removed: []string{"r2"}, Added: []string{"r3"}},
		}, changes)
	})

	t.Run("riding", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/jurisdictions/Canada/elections/2000-02-08/ridings/r1", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var riding models.RidingResult
		decode(t, resp, &riding)
		assert.Equal(t, []string{"ndp", "lib", "pc"}, riding.Winners)
		assert.Equal(t, 3, riding.Total)
	})

	t.Run("unknown riding", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/jurisdictions/Canada/elections/2000-02-08/ridings/r9", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("unknown election", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/jurisdictions/Canada/elections/2001-01-01", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad date", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/jurisdictions/Canada/elections/last-year", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown jurisdiction", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/jurisdictions/Atlantis/riding-changes", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("party wins", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/jurisdictions/Canada/parties/ndp/wins", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Party string   `json:"party"`
			Wins  []string `json:"wins"`
		}
		decode(t, resp, &body)
		assert.Equal(t, "ndp", body.Party)
		// every party ties at zero seats in 2000
		assert.Equal(t, []string{"2000-02-08", "2004-05-16"}, body.Wins)
	})

	t.Run("party history", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/jurisdictions/Canada/parties/green/history", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			History []models.PartyShare `json:"history"`
		}
		decode(t, resp, &body)
		require.Len(t, body.History, 2)
		assert.InDelta(t, 1.0/7.0, body.History[0].Share, 1e-9)
		assert.Equal(t, 0.0, body.History[1].Share)
	})
}

func TestRecordResultsRoute(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/jurisdictions/Canada/elections/2000-02-08/results", []models.ResultEntry{
		{Riding: "r1", Party: "ndp", Votes: 5},
		{Riding: "r1", Party: "lib", Votes: 5},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/jurisdictions/Canada/elections/2000-02-08", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary models.ElectionSummary
	decode(t, resp, &summary)
	assert.Equal(t, []models.PartySeats{{Party: "ndp", Seats: 0}, {Party: "lib", Seats: 0}}, summary.Seats)
	assert.Equal(t, []string{"ndp", "lib"}, summary.Ridings[0].Winners)

	resp = f.do(t, http.MethodPost, "/api/jurisdictions/Canada/elections/2000-02-08/results", []models.ResultEntry{
		{Riding: "r1", Party: "ndp", Votes: -5},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/jurisdictions/Canada/elections/2000-02-08/results", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
