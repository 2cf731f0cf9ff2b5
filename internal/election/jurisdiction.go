package election

import (
	"slices"
	"time"
)

// RidingChange describes how the set of ridings changed between two
// consecutive elections. Both lists are sorted.
type RidingChange struct {
	From    time.Time
	To      time.Time
	Removed []string
	Added   []string
}

// Jurisdiction is the election history of a parliamentary democracy.
type Jurisdiction struct {
	name    string
	history map[time.Time]*Election
}

// NewJurisdiction returns a jurisdiction with no elections.
func NewJurisdiction(name string) *Jurisdiction {
	return &Jurisdiction{
		name:    name,
		history: make(map[time.Time]*Election),
	}
}

func (j *Jurisdiction) Name() string {
	return j.name
}

// RecordResults adds results to the election held on the given day, creating
// it if needed. Results for a date that already has an election accumulate.
func (j *Jurisdiction) RecordResults(year int, month time.Month, day int, results []Result) {
	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	e, ok := j.history[date]
	if !ok {
		e = NewElection(date)
		j.history[date] = e
	}
	e.Apply(results)
}

// AddElection stores e under its date, merging it into an existing election
// held the same day.
func (j *Jurisdiction) AddElection(e *Election) {
	if existing, ok := j.history[e.Date()]; ok {
		existing.Merge(e)
		return
	}
	j.history[e.Date()] = e
}

// Election returns the election held on date.
func (j *Jurisdiction) Election(date time.Time) (*Election, bool) {
	e, ok := j.history[civilDate(date)]
	return e, ok
}

// Dates returns the election dates in ascending order.
func (j *Jurisdiction) Dates() []time.Time {
	dates := make([]time.Time, 0, len(j.history))
	for d := range j.history {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	return dates
}

// PartyWins returns, in ascending order, the dates of elections in which party
// won or tied for the most seats.
func (j *Jurisdiction) PartyWins(party string) []time.Time {
	won := []time.Time{}
	for _, d := range j.Dates() {
		if slices.Contains(j.history[d].ElectionWinners(), party) {
			won = append(won, d)
		}
	}
	return won
}

// PartyHistory returns party's share of the popular vote in every election.
// The share is 0 when the party has no votes or nobody does.
func (j *Jurisdiction) PartyHistory(party string) map[time.Time]float64 {
	shares := make(map[time.Time]float64, len(j.history))
	for d, e := range j.history {
		shares[d] = share(e, party)
	}
	return shares
}

// RidingChanges returns, for each pair of consecutive elections, the ridings
// removed and added between them.
func (j *Jurisdiction) RidingChanges() []RidingChange {
	dates := j.Dates()
	changes := []RidingChange{}
	for i := 1; i < len(dates); i++ {
		prev := j.history[dates[i-1]].RidingsOf()
		next := j.history[dates[i]].RidingsOf()
		changes = append(changes, RidingChange{
			From:    dates[i-1],
			To:      dates[i],
			Removed: difference(prev, next),
			Added:   difference(next, prev),
		})
	}
	return changes
}

func share(e *Election, party string) float64 {
	total := e.TotalVotes()
	if total == 0 {
		return 0
	}
	votes, ok := e.PopularVote()[party]
	if !ok {
		return 0
	}
	return float64(votes) / float64(total)
}

// difference returns the sorted elements of a missing from b.
func difference(a, b []string) []string {
	in := make(map[string]struct{}, len(b))
	for _, s := range b {
		in[s] = struct{}{}
	}
	out := []string{}
	for _, s := range a {
		if _, ok := in[s]; !ok {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return out
}
