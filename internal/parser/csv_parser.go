package parser

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"elections/internal/election"
)

// Columns holds the zero-based positions of the fields a result row needs.
type Columns struct {
	Riding int
	Party  int
	Votes  int
}

// DefaultColumns is the layout of the Elections Canada poll-by-poll files:
// the riding name is the second column, the party the fourteenth and the
// candidate's poll votes the eighteenth.
var DefaultColumns = Columns{Riding: 1, Party: 13, Votes: 17}

var (
	ridingHeaders = []string{"riding", "electoral district name"}
	partyHeaders  = []string{"party", "political affiliation name"}
	votesHeaders  = []string{"votes", "candidate poll votes count"}
)

// CSVParser implements Parser for a single CSV file
type CSVParser struct {
	client *http.Client
	log    zerolog.Logger
}

// NewCSVParser creates a new CSV parser instance
func NewCSVParser(client *http.Client, log zerolog.Logger) *CSVParser {
	return &CSVParser{client: client, log: log}
}

// Method returns the parser type
func (p *CSVParser) Method() string {
	return "csv"
}

// Parse implements the Parser interface
func (p *CSVParser) Parse(ctx context.Context, location string) ([]election.Result, error) {
	p.log.Info().Str("location", location).Msg("parsing CSV")

	rc, err := open(ctx, p.client, p.log, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	results, err := readResults(ctx, rc, p.log)
	if err != nil {
		return nil, NewParseError("read", err)
	}
	return results, nil
}

// Cleanup implements the Parser interface; the CSV parser holds no resources.
func (p *CSVParser) Cleanup() error {
	return nil
}

// readResults reads result rows from CSV data whose first row is a header.
// Rows that cannot be used are logged and skipped.
func readResults(ctx context.Context, r io.Reader, log zerolog.Logger) ([]election.Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV headers")
	}
	cols := columnsFor(headers)
	log.Debug().Int("columns", len(headers)).Interface("layout", cols).Msg("read CSV headers")

	var results []election.Result
	skipped := 0
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read CSV row")
		}

		result, err := parseRow(row, cols)
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("skipping row")
			skipped++
			continue
		}
		results = append(results, result)
	}

	log.Debug().Int("rows", len(results)).Int("skipped", skipped).Msg("finished reading CSV")
	return results, nil
}

// columnsFor locates the needed columns by header name, falling back to
// DefaultColumns when any of them is missing.
func columnsFor(headers []string) Columns {
	riding, party, votes := -1, -1, -1
	for i, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case riding < 0 && matchesHeader(h, ridingHeaders):
			riding = i
		case party < 0 && matchesHeader(h, partyHeaders):
			party = i
		case votes < 0 && matchesHeader(h, votesHeaders):
			votes = i
		}
	}
	if riding < 0 || party < 0 || votes < 0 {
		return DefaultColumns
	}
	return Columns{Riding: riding, Party: party, Votes: votes}
}

func matchesHeader(header string, names []string) bool {
	for _, n := range names {
		if header == n || strings.HasPrefix(header, n+"_") || strings.HasPrefix(header, n+"/") {
			return true
		}
	}
	return false
}

func parseRow(row []string, cols Columns) (election.Result, error) {
	width := max(cols.Riding, cols.Party, cols.Votes) + 1
	if len(row) < width {
		return election.Result{}, errors.Errorf("expected at least %d columns, got %d", width, len(row))
	}

	riding := strings.TrimSpace(row[cols.Riding])
	party := strings.TrimSpace(row[cols.Party])
	if riding == "" || party == "" {
		return election.Result{}, errors.New("missing riding or party")
	}

	votes, err := parseVotes(row[cols.Votes])
	if err != nil {
		return election.Result{}, err
	}
	return election.Result{Riding: riding, Party: party, Votes: votes}, nil
}

// parseVotes reads a vote count such as "1,234". Leading zeros are ignored.
func parseVotes(s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if trimmed := strings.TrimLeft(s, "0"); trimmed != "" || s == "" {
		s = trimmed
	} else {
		s = "0"
	}

	votes, err := cast.ToIntE(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid vote count %q", s)
	}
	if votes < 0 {
		return 0, errors.Errorf("negative vote count %d", votes)
	}
	return votes, nil
}
