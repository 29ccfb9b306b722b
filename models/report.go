package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllTime disables date filtering when passed as a report period.
const AllTime = "all time"

type ReportRequest struct {
	StartDate    time.Time
	FinishDate   time.Time
	CategoryName string
	Period       string
	Page         int
	PageSize     int
}

// Offset converts the 1-based page into a row offset.
func (r ReportRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// ReportOperation is the externally visible form of an operation.
type ReportOperation struct {
	DateTime time.Time       `json:"datetime"`
	Amount   decimal.Decimal `json:"amount"`
	Category []CategoryView  `json:"category,omitempty"`
}

type Report struct {
	Operations []ReportOperation `json:"operations"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	Total      int64             `json:"total"`
	// ConsumptionSum covers the consumption operations of the returned page only.
	ConsumptionSum decimal.Decimal `json:"consumption_sum"`
	// RangeConsumptionSum covers every consumption operation matching the filters.
	RangeConsumptionSum decimal.Decimal `json:"range_consumption_sum"`
}
