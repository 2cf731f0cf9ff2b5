package parser

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"elections/internal/election"
)

// ErrUnknownMethod is returned when no parser is registered for a method.
var ErrUnknownMethod = errors.New("unknown parse method")

// ParserManager manages different types of parsers
type ParserManager struct {
	parsers map[string]Parser
	log     zerolog.Logger
}

// NewParserManager creates a new parser manager with the csv and zip parsers
// registered. A nil client gets a 30 second timeout.
func NewParserManager(client *http.Client, log zerolog.Logger) (*ParserManager, error) {
	if client == nil {
		client = &http.Client{Timeout: downloadTimeout}
	}
	m := &ParserManager{
		parsers: make(map[string]Parser),
		log:     log,
	}

	m.RegisterParser(NewCSVParser(client, log))

	zipParser, err := NewZIPParser(client, log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ZIP parser")
	}
	m.RegisterParser(zipParser)

	return m, nil
}

// RegisterParser adds a new parser to the manager
func (m *ParserManager) RegisterParser(parser Parser) {
	m.parsers[parser.Method()] = parser
}

// GetParser retrieves a parser by method
func (m *ParserManager) GetParser(method string) (Parser, error) {
	parser, ok := m.parsers[method]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownMethod, "method %q", method)
	}
	return parser, nil
}

// ParseURL parses data from a location using the appropriate parser
func (m *ParserManager) ParseURL(ctx context.Context, method, location string) ([]election.Result, error) {
	parser, err := m.GetParser(method)
	if err != nil {
		return nil, err
	}

	return parser.Parse(ctx, location)
}

// Cleanup performs any necessary cleanup
func (m *ParserManager) Cleanup() {
	for method, p := range m.parsers {
		if err := p.Cleanup(); err != nil {
			m.log.Error().Err(err).Str("method", method).Msg("error cleaning up parser")
		}
	}
}
