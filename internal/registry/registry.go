// Package registry keeps the jurisdictions known to a running process and
// serializes access to them.
package registry

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"elections/internal/election"
	"elections/internal/models"
)

var (
	// ErrUnknownJurisdiction is returned for a jurisdiction with no recorded results.
	ErrUnknownJurisdiction = errors.New("unknown jurisdiction")
	// ErrUnknownElection is returned for a date with no election in a jurisdiction.
	ErrUnknownElection = errors.New("unknown election")
)

// Parsers turns a result source into vote triples.
type Parsers interface {
	ParseURL(ctx context.Context, method, location string) ([]election.Result, error)
}

// Registry owns named jurisdictions. Elections and jurisdictions are not safe
// for concurrent use, so every access goes through the registry lock.
type Registry struct {
	mu            sync.RWMutex
	jurisdictions map[string]*election.Jurisdiction
	parsers       Parsers
	log           zerolog.Logger
}

func New(parsers Parsers, log zerolog.Logger) *Registry {
	return &Registry{
		jurisdictions: make(map[string]*election.Jurisdiction),
		parsers:       parsers,
		log:           log,
	}
}

// Record adds results to the election held on date in the named jurisdiction.
func (r *Registry) Record(name string, date time.Time, results []election.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jurisdictions[name]
	if !ok {
		j = election.NewJurisdiction(name)
		r.jurisdictions[name] = j
	}
	j.RecordResults(date.Year(), date.Month(), date.Day(), results)
}

// Import parses source and records its results. It returns the number of
// results recorded.
func (r *Registry) Import(ctx context.Context, source models.ResultSource) (int, error) {
	if err := source.Validate(); err != nil {
		return 0, errors.Wrap(err, "invalid result source")
	}
	date, err := source.ElectionDate()
	if err != nil {
		return 0, err
	}

	log := r.log.With().
		Str("jurisdiction", source.Jurisdiction).
		Str("date", source.Date).
		Str("link", source.Link).
		Logger()
	log.Info().Str("method", string(source.ParseMethod)).Msg("importing results")

	results, err := r.parsers.ParseURL(ctx, string(source.ParseMethod), source.Link)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to import %s", source.Link)
	}

	r.Record(source.Jurisdiction, date, results)
	log.Info().Int("results", len(results)).Msg("imported results")
	return len(results), nil
}

// View calls fn with the named jurisdiction under a read lock. fn must not
// keep references to the jurisdiction or its elections after it returns.
func (r *Registry) View(name string, fn func(*election.Jurisdiction) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jurisdictions[name]
	if !ok {
		return errors.Wrapf(ErrUnknownJurisdiction, "jurisdiction %q", name)
	}
	return fn(j)
}

// ViewElection calls fn with the election held on date in the named
// jurisdiction under a read lock.
func (r *Registry) ViewElection(name string, date time.Time, fn func(*election.Election) error) error {
	return r.View(name, func(j *election.Jurisdiction) error {
		e, ok := j.Election(date)
		if !ok {
			return errors.Wrapf(ErrUnknownElection, "%s on %s", name, models.FormatDate(date))
		}
		return fn(e)
	})
}

// Names returns the jurisdiction names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.jurisdictions))
	for name := range r.jurisdictions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
