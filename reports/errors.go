package reports

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidReport is returned for report requests the caller should have rejected.
	ErrInvalidReport = errors.New("invalid-report-data")
	// ErrUnknownPeriod is returned for a period keyword with no date window.
	ErrUnknownPeriod = errors.New("unknown-period")
	// ErrMalformedCategoryGraph signals category links that do not form a forest.
	ErrMalformedCategoryGraph = errors.New("malformed-category-graph")
)

// CategoryError reports a category name that does not exist for the user.
type CategoryError struct {
	Name string
}

func (e *CategoryError) Error() string {
	return "category-not-found"
}

// GraphError locates a forest violation.
type GraphError struct {
	CategoryId string
	Reason     string
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("%s: %s at category %s", ErrMalformedCategoryGraph, e.Reason, e.CategoryId)
}

func (e *GraphError) Unwrap() error {
	return ErrMalformedCategoryGraph
}
