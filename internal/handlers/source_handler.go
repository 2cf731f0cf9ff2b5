package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"elections/internal/models"
)

func (h *ElectionHandler) HandleSaveResultSource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var source models.ResultSource
	if err := json.NewDecoder(r.Body).Decode(&source); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := source.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.SaveResultSource(&source); err != nil {
		h.log.Error().Err(err).Msg("error saving result source")
		http.Error(w, "Error saving result source", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, source)
}

func (h *ElectionHandler) HandleGetResultSource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		sources, err := h.store.GetAllResultSources()
		if err != nil {
			h.log.Error().Err(err).Msg("error fetching result sources")
			http.Error(w, "Error fetching result sources", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, sources)
		return
	}

	source, err := h.store.GetResultSource(id)
	if err != nil {
		http.Error(w, "Result source not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, source)
}

func (h *ElectionHandler) HandleUpdateResultSource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "ID is required", http.StatusBadRequest)
		return
	}

	var source models.ResultSource
	if err := json.NewDecoder(r.Body).Decode(&source); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := source.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.UpdateResultSource(id, &source); err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, source)
}

func (h *ElectionHandler) HandleDeleteResultSource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "ID is required", http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteResultSource(id); err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Result source deleted successfully",
	})
}

func (h *ElectionHandler) HandleBulkSaveResultSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var sources []models.ResultSource
	if err := json.NewDecoder(r.Body).Decode(&sources); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	// Validate all sources before saving
	for i := range sources {
		if err := sources[i].Validate(); err != nil {
			http.Error(w, fmt.Sprintf("Invalid source at index %d: %s", i, err.Error()), http.StatusBadRequest)
			return
		}
	}

	var savedCount int
	var failures []string
	for i := range sources {
		if err := h.store.SaveResultSource(&sources[i]); err != nil {
			failures = append(failures, fmt.Sprintf("Failed to save source at index %d: %s", i, err.Error()))
			continue
		}
		savedCount++
	}

	response := map[string]interface{}{
		"total_submitted": len(sources),
		"saved_count":     savedCount,
	}
	if len(failures) > 0 {
		response["errors"] = failures
	}

	writeJSON(w, http.StatusCreated, response)
}

func (h *ElectionHandler) HandleImportResultSource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "ID is required", http.StatusBadRequest)
		return
	}

	source, err := h.store.GetResultSource(id)
	if err != nil {
		http.Error(w, "Result source not found", http.StatusNotFound)
		return
	}

	count, err := h.registry.Import(r.Context(), *source)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Successfully imported results for %s on %s", source.Jurisdiction, source.Date),
		"results": count,
	})
}

// HandleBulkImportByMethod imports every stored source that uses the
// requested parse method.
func (h *ElectionHandler) HandleBulkImportByMethod(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	method := models.ParseMethod(r.PathValue("method"))
	if err := models.ValidateParseMethod(method); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sources, err := h.store.GetAllResultSources()
	if err != nil {
		h.log.Error().Err(err).Msg("error fetching result sources")
		http.Error(w, "Error fetching result sources", http.StatusInternalServerError)
		return
	}

	var results struct {
		TotalSources int      `json:"total_sources"`
		Successful   int      `json:"successful"`
		Imported     int      `json:"imported"`
		Failed       []string `json:"failed,omitempty"`
	}

	for _, source := range sources {
		if source.ParseMethod != method {
			h.log.Debug().Str("source", source.ID).Str("method", string(source.ParseMethod)).Msg("skipping source with different parse method")
			continue
		}
		results.TotalSources++

		count, err := h.registry.Import(r.Context(), source)
		if err != nil {
			msg := fmt.Sprintf("Source %s (%s %s): %v", source.ID, source.Jurisdiction, source.Date, err)
			h.log.Error().Err(err).Str("source", source.ID).Msg("bulk import failed")
			results.Failed = append(results.Failed, msg)
			continue
		}
		results.Successful++
		results.Imported += count
	}

	h.log.Info().
		Int("total", results.TotalSources).
		Int("successful", results.Successful).
		Int("failed", len(results.Failed)).
		Msg("bulk import completed")

	writeJSON(w, http.StatusOK, results)
}
