// Package handlers exposes result sources, imports and election queries over
// HTTP.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"elections/internal/election"
	"elections/internal/models"
	"elections/internal/parser"
	"elections/internal/registry"
	"elections/internal/storage"
)

// SourceStore is the catalogue of result sources.
type SourceStore interface {
	SaveResultSource(source *models.ResultSource) error
	GetResultSource(id string) (*models.ResultSource, error)
	GetAllResultSources() ([]models.ResultSource, error)
	UpdateResultSource(id string, source *models.ResultSource) error
	DeleteResultSource(id string) error
}

type ElectionHandler struct {
	store    SourceStore
	registry *registry.Registry
	log      zerolog.Logger
}

func NewElectionHandler(store SourceStore, reg *registry.Registry, log zerolog.Logger) *ElectionHandler {
	return &ElectionHandler{
		store:    store,
		registry: reg,
		log:      log,
	}
}

// Register adds every route to mux.
func (h *ElectionHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/sources", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.HandleGetResultSource(w, r)
		case http.MethodPost:
			h.HandleSaveResultSource(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/sources/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.HandleGetResultSource(w, r)
		case http.MethodPut:
			h.HandleUpdateResultSource(w, r)
		case http.MethodDelete:
			h.HandleDeleteResultSource(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/sources/bulk", h.HandleBulkSaveResultSources)
	mux.HandleFunc("/api/sources/{id}/import", h.HandleImportResultSource)
	mux.HandleFunc("/api/import/{method}", h.HandleBulkImportByMethod)

	mux.HandleFunc("/api/jurisdictions", h.HandleListJurisdictions)
	mux.HandleFunc("/api/jurisdictions/{name}", h.HandleGetJurisdiction)
	mux.HandleFunc("/api/jurisdictions/{name}/elections/{date}", h.HandleGetElection)
	mux.HandleFunc("/api/jurisdictions/{name}/elections/{date}/results", h.HandleRecordResults)
	mux.HandleFunc("/api/jurisdictions/{name}/elections/{date}/ridings/{riding}", h.HandleGetRiding)
	mux.HandleFunc("/api/jurisdictions/{name}/parties/{party}/wins", h.HandlePartyWins)
	mux.HandleFunc("/api/jurisdictions/{name}/parties/{party}/history", h.HandlePartyHistory)
	mux.HandleFunc("/api/jurisdictions/{name}/riding-changes", h.HandleRidingChanges)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err onto an HTTP status.
func (h *ElectionHandler) writeError(w http.ResponseWriter, err error) {
	var perr *parser.ParseError
	switch {
	case errors.Is(err, registry.ErrUnknownJurisdiction),
		errors.Is(err, registry.ErrUnknownElection),
		errors.Is(err, election.ErrUnknownRiding),
		errors.Is(err, storage.ErrSourceNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, parser.ErrUnknownMethod):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &perr):
		h.log.Error().Err(err).Str("stage", perr.Stage).Msg("failed to parse results")
		http.Error(w, "Failed to parse data: "+err.Error(), http.StatusInternalServerError)
	default:
		h.log.Error().Err(err).Msg("request failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
