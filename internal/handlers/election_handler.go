package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"elections/internal/election"
	"elections/internal/formatter"
	"elections/internal/models"
)

func (h *ElectionHandler) HandleListJurisdictions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.registry.Names())
}

func (h *ElectionHandler) HandleGetJurisdiction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var summary models.JurisdictionSummary
	err := h.registry.View(r.PathValue("name"), func(j *election.Jurisdiction) error {
		summary = formatter.SummarizeJurisdiction(j)
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *ElectionHandler) HandleGetElection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	date, err := models.ParseDate(r.PathValue("date"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var summary models.ElectionSummary
	err = h.registry.ViewElection(r.PathValue("name"), date, func(e *election.Election) error {
		summary, err = formatter.SummarizeElection(e)
		return err
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleRecordResults adds already-parsed results to an election.
func (h *ElectionHandler) HandleRecordResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := r.PathValue("name")
	date, err := models.ParseDate(r.PathValue("date"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var entries []models.ResultEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	results := make([]election.Result, len(entries))
	for i, entry := range entries {
		if err := entry.Validate(); err != nil {
			http.Error(w, fmt.Sprintf("Invalid result at index %d: %s", i, err.Error()), http.StatusBadRequest)
			return
		}
		results[i] = election.Result{Riding: entry.Riding, Party: entry.Party, Votes: entry.Votes}
	}

	h.registry.Record(name, date, results)
	h.log.Info().Str("jurisdiction", name).Str("date", models.FormatDate(date)).Int("results", len(results)).Msg("recorded results")

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": fmt.Sprintf("Recorded %d results for %s on %s", len(results), name, models.FormatDate(date)),
		"results": len(results),
	})
}

func (h *ElectionHandler) HandleGetRiding(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	date, err := models.ParseDate(r.PathValue("date"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var result models.RidingResult
	err = h.registry.ViewElection(r.PathValue("name"), date, func(e *election.Election) error {
		result, err = formatter.SummarizeRiding(e, r.PathValue("riding"))
		return err
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ElectionHandler) HandlePartyWins(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	party := r.PathValue("party")
	var wins []string
	err := h.registry.View(r.PathValue("name"), func(j *election.Jurisdiction) error {
		wins = formatter.PartyWins(j, party)
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"party": party,
		"wins":  wins,
	})
}

func (h *ElectionHandler) HandlePartyHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	party := r.PathValue("party")
	var history []models.PartyShare
	err := h.registry.View(r.PathValue("name"), func(j *election.Jurisdiction) error {
		history = formatter.PartyHistory(j, party)
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"party":   party,
		"history": history,
	})
}

func (h *ElectionHandler) HandleRidingChanges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var changes []models.RidingChange
	err := h.registry.View(r.PathValue("name"), func(j *election.Jurisdiction) error {
		changes = formatter.RidingChanges(j)
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, changes)
}
