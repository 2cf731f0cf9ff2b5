package models

import validation "github.com/go-ozzo/ozzo-validation/v4"

// ResultEntry is a single riding/party vote count
type ResultEntry struct {
	Riding string `json:"riding"`
	Party  string `json:"party"`
	Votes  int    `json:"votes"`
}

// Validate ensures the entry names a riding and a party and has no negative votes
func (e ResultEntry) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Riding, validation.Required),
		validation.Field(&e.Party, validation.Required),
		validation.Field(&e.Votes, validation.Min(0)),
	)
}

// PartyVotes is a party's vote total
type PartyVotes struct {
	Party string `json:"party"`
	Votes int    `json:"votes"`
}

// PartySeats is the number of ridings a party won outright
type PartySeats struct {
	Party string `json:"party"`
	Seats int    `json:"seats"`
}

// RidingResult is the tally and winners of one riding
type RidingResult struct {
	Riding  string       `json:"riding"`
	Total   int          `json:"total"`
	Votes   []PartyVotes `json:"votes"`
	Winners []string     `json:"winners"`
}

// ElectionSummary is the formatted outcome of one election
type ElectionSummary struct {
	Date        string         `json:"date"`
	TotalVotes  int            `json:"total_votes"`
	Ridings     []RidingResult `json:"ridings"`
	PopularVote []PartyVotes   `json:"popular_vote"`
	Seats       []PartySeats   `json:"seats"`
	Winners     []string       `json:"winners"`
}

// PartyShare is a party's share of the popular vote in one election
type PartyShare struct {
	Date  string  `json:"date"`
	Share float64 `json:"share"`
}

// RidingChange lists the ridings removed and added between two elections
type RidingChange struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	Removed []string `json:"removed"`
	Added   []string `json:"added"`
}

// JurisdictionSummary is the formatted election history of a jurisdiction
type JurisdictionSummary struct {
	Name          string         `json:"name"`
	Dates         []string       `json:"dates"`
	RidingChanges []RidingChange `json:"riding_changes"`
}

// Report is the full formatted history of a jurisdiction
type Report struct {
	Jurisdiction JurisdictionSummary `json:"jurisdiction"`
	Elections    []ElectionSummary   `json:"elections"`
}
