package election

import (
	"time"

	"github.com/pkg/errors"
)

// Result is one vote count for a party in a riding, as produced by a parser.
type Result struct {
	Riding string
	Party  string
	Votes  int
}

// Election holds the vote tallies of a single election.
type Election struct {
	date    time.Time
	parties *orderedMap[string, struct{}]
	results *orderedMap[string, *orderedMap[string, int]]
}

// NewElection returns an election held on date with no votes recorded.
func NewElection(date time.Time) *Election {
	return &Election{
		date:    civilDate(date),
		parties: newOrderedMap[string, struct{}](),
		results: newOrderedMap[string, *orderedMap[string, int]](),
	}
}

// Date returns the day the election was held, at midnight UTC.
func (e *Election) Date() time.Time {
	return e.date
}

// RidingsOf returns the ridings with recorded votes, in first-seen order.
func (e *Election) RidingsOf() []string {
	return append([]string(nil), e.results.Keys()...)
}

// Parties returns the parties with recorded votes, in first-seen order.
func (e *Election) Parties() []string {
	return append([]string(nil), e.parties.Keys()...)
}

// UpdateResults records that party received votes additional votes in riding.
func (e *Election) UpdateResults(riding, party string, votes int) {
	if !e.parties.Has(party) {
		e.parties.Set(party, struct{}{})
	}

	tally, ok := e.results.Get(riding)
	if !ok {
		tally = newOrderedMap[string, int]()
		tally.Set(party, votes)
		e.results.Set(riding, tally)
		return
	}

	current, _ := tally.Get(party)
	tally.Set(party, current+votes)
}

// Apply records every result in order.
func (e *Election) Apply(results []Result) {
	for _, r := range results {
		e.UpdateResults(r.Riding, r.Party, r.Votes)
	}
}

// Merge adds every tally of other to e, riding by riding in other's order.
func (e *Election) Merge(other *Election) {
	for _, riding := range other.results.Keys() {
		tally, _ := other.results.Get(riding)
		for _, party := range tally.Keys() {
			votes, _ := tally.Get(party)
			e.UpdateResults(riding, party, votes)
		}
	}
}

// ResultsFor returns the votes party received in riding. The second value is
// false if the riding has no votes or the party has none in that riding.
func (e *Election) ResultsFor(riding, party string) (int, bool) {
	tally, ok := e.results.Get(riding)
	if !ok {
		return 0, false
	}
	return tally.Get(party)
}

// RidingTotal returns the sum of all votes recorded in riding.
func (e *Election) RidingTotal(riding string) (int, error) {
	tally, ok := e.results.Get(riding)
	if !ok {
		return 0, errors.Wrapf(ErrUnknownRiding, "riding %q", riding)
	}
	total := 0
	for _, party := range tally.Keys() {
		v, _ := tally.Get(party)
		total += v
	}
	return total, nil
}

// RidingWinners returns the party, or the tied parties, with the most votes
// in riding.
func (e *Election) RidingWinners(riding string) ([]string, error) {
	tally, ok := e.results.Get(riding)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownRiding, "riding %q", riding)
	}
	return winners(tally), nil
}

// PopularVote returns the total votes of every party across all ridings.
func (e *Election) PopularVote() map[string]int {
	return e.popularVote().Map()
}

// TotalVotes returns the number of votes recorded in the whole election.
func (e *Election) TotalVotes() int {
	total := 0
	for _, riding := range e.results.Keys() {
		t, _ := e.RidingTotal(riding)
		total += t
	}
	return total
}

// PartySeats returns the number of ridings each party won outright. Every
// party with recorded votes is present; a tied riding counts for nobody.
func (e *Election) PartySeats() map[string]int {
	return e.seats().Map()
}

// ElectionWinners returns the party, or the tied parties, that won the most
// seats. It is empty when no votes were recorded.
func (e *Election) ElectionWinners() []string {
	seats := e.seats()
	if seats.Len() == 0 {
		return []string{}
	}
	return winners(seats)
}

// PartyVotes returns the popular vote in party first-seen order.
func (e *Election) PartyVotes() []Result {
	pv := e.popularVote()
	out := make([]Result, 0, pv.Len())
	for _, party := range pv.Keys() {
		v, _ := pv.Get(party)
		out = append(out, Result{Party: party, Votes: v})
	}
	return out
}

// RidingResults returns the tally of riding in first-seen order.
func (e *Election) RidingResults(riding string) ([]Result, error) {
	tally, ok := e.results.Get(riding)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownRiding, "riding %q", riding)
	}
	out := make([]Result, 0, tally.Len())
	for _, party := range tally.Keys() {
		v, _ := tally.Get(party)
		out = append(out, Result{Riding: riding, Party: party, Votes: v})
	}
	return out, nil
}

// SeatCounts returns the seat table in the order parties entered it.
func (e *Election) SeatCounts() []Result {
	seats := e.seats()
	out := make([]Result, 0, seats.Len())
	for _, party := range seats.Keys() {
		n, _ := seats.Get(party)
		out = append(out, Result{Party: party, Votes: n})
	}
	return out
}

func (e *Election) popularVote() *orderedMap[string, int] {
	totals := newOrderedMap[string, int]()
	for _, riding := range e.results.Keys() {
		tally, _ := e.results.Get(riding)
		for _, party := range tally.Keys() {
			v, _ := tally.Get(party)
			sum, _ := totals.Get(party)
			totals.Set(party, sum+v)
		}
	}
	return totals
}

// seats builds the seat table. Within a riding the outright winner enters
// before the other parties of that riding.
func (e *Election) seats() *orderedMap[string, int] {
	seats := newOrderedMap[string, int]()
	for _, riding := range e.results.Keys() {
		tally, _ := e.results.Get(riding)
		if w := winners(tally); len(w) == 1 {
			n, _ := seats.Get(w[0])
			seats.Set(w[0], n+1)
		}
		for _, party := range tally.Keys() {
			if !seats.Has(party) {
				seats.Set(party, 0)
			}
		}
	}
	return seats
}

// winners returns the keys holding the maximum value, in key order.
func winners(counts *orderedMap[string, int]) []string {
	var best int
	var out []string
	for i, key := range counts.Keys() {
		v, _ := counts.Get(key)
		switch {
		case i == 0 || v > best:
			best = v
			out = []string{key}
		case v == best:
			out = append(out, key)
		}
	}
	return out
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
