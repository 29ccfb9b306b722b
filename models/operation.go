package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type OperationType string

const (
	Income      OperationType = "income"
	Consumption OperationType = "consumption"
)

// Operation is a stored income or consumption record. Amount is in minor
// currency units.
type Operation struct {
	DateTime   time.Time
	Id         string
	UserId     string
	CategoryId string
	Type       OperationType
	Amount     int64
}

type OperationFilter struct {
	From        time.Time
	To          time.Time
	UserId      string
	CategoryIds []string
	// ByCategory restricts to CategoryIds and drops uncategorised operations.
	ByCategory bool
	Offset     int
	Limit      int
}

// HasWindow reports whether a date window applies.
func (f OperationFilter) HasWindow() bool {
	return !f.From.IsZero() && !f.To.IsZero()
}

// MinorToDecimal converts minor currency units to a decimal amount.
func MinorToDecimal(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}
