package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
)

// DateLayout is the wire format of election dates.
const DateLayout = "2006-01-02"

// ParseMethod represents the method used to parse a result file
type ParseMethod string

const (
	ParseMethodCSV ParseMethod = "csv"
	ParseMethodZIP ParseMethod = "zip"
)

// ParseMethods lists every supported parse method.
var ParseMethods = []ParseMethod{ParseMethodCSV, ParseMethodZIP}

// ValidateParseMethod checks if the parse method is valid
func ValidateParseMethod(method ParseMethod) error {
	switch method {
	case ParseMethodCSV, ParseMethodZIP:
		return nil
	default:
		return errors.Errorf("invalid parse method: %s", method)
	}
}

// ResultSource represents where the results of one election in a
// jurisdiction can be read from
type ResultSource struct {
	ID           string      `json:"id,omitempty"`
	Jurisdiction string      `json:"jurisdiction"`
	Date         string      `json:"date"`
	Link         string      `json:"link"`
	ParseMethod  ParseMethod `json:"parse_method"`
}

// Validate ensures all required fields are present and valid
func (s *ResultSource) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Jurisdiction, validation.Required),
		validation.Field(&s.Date, validation.Required, validation.Date(DateLayout)),
		validation.Field(&s.Link, validation.Required),
		validation.Field(&s.ParseMethod, validation.Required, validation.By(func(value interface{}) error {
			return ValidateParseMethod(value.(ParseMethod))
		})),
	)
}

// ElectionDate parses Date.
func (s *ResultSource) ElectionDate() (time.Time, error) {
	return ParseDate(s.Date)
}

// ParseDate parses an election date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid election date %q", s)
	}
	return d, nil
}

// FormatDate renders an election date in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
