package models

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable marks an instrument source that could not be read.
	// Non-fatal: the pass continues with the remaining instruments.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrEmptyInput means no instrument produced any observations. Fatal:
	// there is nothing to compute or display.
	ErrEmptyInput = errors.New("no instrument produced data")
)

// MalformedRecordError describes a single unparseable row. The row is dropped
// and counted; the rest of the source is still loaded.
type MalformedRecordError struct {
	Instrument string
	Line       int
	Reason     string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %s line %d: %s", e.Instrument, e.Line, e.Reason)
}
