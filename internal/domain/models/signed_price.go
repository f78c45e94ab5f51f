package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// SignedPrice is one signed data point returned by the oracle.
type SignedPrice struct {
	Asset     string
	MsgHash   string
	Price     decimal.NullDecimal
	Timestamp time.Time
	Signature json.RawMessage
}

// UserStats is the subset of GET /me the validator cares about.
type UserStats struct {
	ValidCount   int64
	InvalidCount int64
	Raw          map[string]json.RawMessage
}
