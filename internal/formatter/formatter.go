// Package formatter projects elections and jurisdictions into the report
// models served over HTTP and printed by the CLI.
package formatter

import (
	"elections/internal/election"
	"elections/internal/models"
)

// SummarizeElection formats every riding and the aggregate results of e.
func SummarizeElection(e *election.Election) (models.ElectionSummary, error) {
	summary := models.ElectionSummary{
		Date:        models.FormatDate(e.Date()),
		TotalVotes:  e.TotalVotes(),
		Ridings:     []models.RidingResult{},
		PopularVote: []models.PartyVotes{},
		Seats:       []models.PartySeats{},
		Winners:     e.ElectionWinners(),
	}

	for _, riding := range e.RidingsOf() {
		r, err := SummarizeRiding(e, riding)
		if err != nil {
			return models.ElectionSummary{}, err
		}
		summary.Ridings = append(summary.Ridings, r)
	}
	for _, pv := range e.PartyVotes() {
		summary.PopularVote = append(summary.PopularVote, models.PartyVotes{Party: pv.Party, Votes: pv.Votes})
	}
	for _, s := range e.SeatCounts() {
		summary.Seats = append(summary.Seats, models.PartySeats{Party: s.Party, Seats: s.Votes})
	}
	return summary, nil
}

// SummarizeRiding formats the tally and winners of one riding.
func SummarizeRiding(e *election.Election, riding string) (models.RidingResult, error) {
	tally, err := e.RidingResults(riding)
	if err != nil {
		return models.RidingResult{}, err
	}
	winners, err := e.RidingWinners(riding)
	if err != nil {
		return models.RidingResult{}, err
	}

	r := models.RidingResult{
		Riding:  riding,
		Votes:   make([]models.PartyVotes, 0, len(tally)),
		Winners: winners,
	}
	for _, t := range tally {
		r.Total += t.Votes
		r.Votes = append(r.Votes, models.PartyVotes{Party: t.Party, Votes: t.Votes})
	}
	return r, nil
}

// PartyHistory formats party's popular vote share per election, by date.
func PartyHistory(j *election.Jurisdiction, party string) []models.PartyShare {
	shares := j.PartyHistory(party)
	out := make([]models.PartyShare, 0, len(shares))
	for _, d := range j.Dates() {
		out = append(out, models.PartyShare{Date: models.FormatDate(d), Share: shares[d]})
	}
	return out
}

// PartyWins formats the dates of the elections party won.
func PartyWins(j *election.Jurisdiction, party string) []string {
	return formatDates(j.PartyWins(party))
}

// RidingChanges formats the riding changes between consecutive elections.
func RidingChanges(j *election.Jurisdiction) []models.RidingChange {
	changes := j.RidingChanges()
	out := make([]models.RidingChange, 0, len(changes))
	for _, c := range changes {
		out = append(out, models.RidingChange{
			From:    models.FormatDate(c.From),
			To:      models.FormatDate(c.To),
			Removed: c.Removed,
			Added:   c.Added,
		})
	}
	return out
}

// SummarizeJurisdiction formats the election dates and riding changes of j.
func SummarizeJurisdiction(j *election.Jurisdiction) models.JurisdictionSummary {
	return models.JurisdictionSummary{
		Name:          j.Name(),
		Dates:         formatDates(j.Dates()),
		RidingChanges: RidingChanges(j),
	}
}

// Report formats the jurisdiction summary and every election of j, by date.
func Report(j *election.Jurisdiction) (models.Report, error) {
	report := models.Report{
		Jurisdiction: SummarizeJurisdiction(j),
		Elections:    []models.ElectionSummary{},
	}
	for _, d := range j.Dates() {
		e, _ := j.Election(d)
		summary, err := SummarizeElection(e)
		if err != nil {
			return models.Report{}, err
		}
		report.Elections = append(report.Elections, summary)
	}
	return report, nil
}
