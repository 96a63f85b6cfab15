package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRecord is one row as read from an instrument source, before
// normalization. Expiry is only used as the tie-break key when several rows
// share a trade date; its semantics are otherwise opaque.
type RawRecord struct {
	Date   time.Time
	Expiry string
	Close  decimal.Decimal
	Line   int
}

// Observation is a normalized daily close for one instrument. There is
// exactly one observation per (instrument, date) pair.
type Observation struct {
	Instrument string          `json:"instrument"`
	Date       time.Time       `json:"date"`
	Close      decimal.Decimal `json:"close"`
}
