package election

import "github.com/pkg/errors"

// ErrUnknownRiding is returned when a riding has no recorded votes in an election.
var ErrUnknownRiding = errors.New("unknown riding")
