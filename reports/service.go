// Package reports builds category-annotated operation reports.
//
// A report expands the requested category into its whole subtree for
// filtering and annotates every returned operation with the chain of
// categories from its own up to the root. The user's category forest is read
// once per report and resolved in memory.
package reports

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"finreport/models"
)

// Reader is the storage handle a report runs against. Every call is scoped
// to one user.
type Reader interface {
	CategoryIdByName(ctx context.Context, userId, name string) (string, bool, error)
	Categories(ctx context.Context, userId string) ([]models.Category, error)
	CategoryLinks(ctx context.Context, userId string) ([]models.CategoryLink, error)
	Operations(ctx context.Context, filter models.OperationFilter) ([]models.Operation, error)
	CountOperations(ctx context.Context, filter models.OperationFilter) (int64, error)
	ConsumptionSum(ctx context.Context, userId string, ids []string) (int64, error)
	RangeConsumptionSum(ctx context.Context, filter models.OperationFilter) (int64, error)
}

// Store runs fn against a consistent read-only snapshot.
type Store interface {
	View(ctx context.Context, fn func(Reader) error) error
}

type Options struct {
	MaxPageSize int
	MaxDepth    int
	// Now is the reference instant for period keywords.
	Now func() time.Time
}

type Service struct {
	store Store
	opts  Options
}

func NewService(store Store, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxDepth < 1 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Service{store: store, opts: opts}
}

// GetReport returns one page of the user's operations filtered by category
// subtree and date window, newest first.
func (s *Service) GetReport(ctx context.Context, userId string, req models.ReportRequest) (models.Report, error) {
	if err := s.validate(userId, req); err != nil {
		return models.Report{}, err
	}

	filter := models.OperationFilter{
		UserId: userId,
		Offset: req.Offset(),
		Limit:  req.PageSize,
	}

	if err := s.applyWindow(&filter, req); err != nil {
		return models.Report{}, err
	}

	categoryName := strings.ToLower(strings.TrimSpace(req.CategoryName))

	report := models.Report{
		Operations: []models.ReportOperation{},
		Page:       req.Page,
		PageSize:   req.PageSize,
	}

	err := s.store.View(ctx, func(r Reader) error {
		var categoryId string
		if categoryName != "" {
			id, found, err := r.CategoryIdByName(ctx, userId, categoryName)
			if err != nil {
				return err
			}
			if !found {
				return &CategoryError{Name: categoryName}
			}
			categoryId = id
		}

		forest, err := s.loadForest(ctx, r, userId)
		if err != nil {
			return err
		}

		if categoryId != "" {
			ids, err := forest.Descendants(categoryId)
			if err != nil {
				return err
			}
			filter.ByCategory = true
			filter.CategoryIds = ids
		}

		operations, err := r.Operations(ctx, filter)
		if err != nil {
			return err
		}

		pageIds := make([]string, 0, len(operations))
		for _, op := range operations {
			row, err := annotate(forest, op)
			if err != nil {
				return err
			}
			report.Operations = append(report.Operations, row)
			pageIds = append(pageIds, op.Id)
		}

		var pageSum int64
		if len(pageIds) > 0 {
			pageSum, err = r.ConsumptionSum(ctx, userId, pageIds)
			if err != nil {
				return err
			}
		}

		total, err := r.CountOperations(ctx, filter)
		if err != nil {
			return err
		}

		rangeSum, err := r.RangeConsumptionSum(ctx, filter)
		if err != nil {
			return err
		}

		report.Total = total
		report.ConsumptionSum = models.MinorToDecimal(pageSum)
		report.RangeConsumptionSum = models.MinorToDecimal(rangeSum)
		return nil
	})
	if err != nil {
		return models.Report{}, err
	}

	return report, nil
}

func (s *Service) validate(userId string, req models.ReportRequest) error {
	if userId == "" || req.Page < 1 || req.PageSize < 1 {
		return ErrInvalidReport
	}
	if s.opts.MaxPageSize > 0 && req.PageSize > s.opts.MaxPageSize {
		return ErrInvalidReport
	}
	// the row offset must fit in an int
	if req.Page-1 > math.MaxInt/req.PageSize {
		return ErrInvalidReport
	}
	return nil
}

// applyWindow sets the date window. A period keyword wins over explicit dates.
func (s *Service) applyWindow(filter *models.OperationFilter, req models.ReportRequest) error {
	if strings.TrimSpace(req.Period) != "" {
		if IsAllTime(req.Period) {
			return nil
		}

		start, end, err := ResolvePeriod(s.opts.Now(), req.Period)
		if err != nil {
			return err
		}
		filter.From, filter.To = start, end
		return nil
	}

	if !req.StartDate.IsZero() && !req.FinishDate.IsZero() {
		if req.FinishDate.Before(req.StartDate) {
			return ErrInvalidReport
		}
		filter.From, filter.To = req.StartDate, req.FinishDate
	}

	return nil
}

func (s *Service) loadForest(ctx context.Context, r Reader, userId string) (*Forest, error) {
	categories, err := r.Categories(ctx, userId)
	if err != nil {
		return nil, err
	}

	links, err := r.CategoryLinks(ctx, userId)
	if err != nil {
		return nil, err
	}

	return NewForest(categories, links, s.opts.MaxDepth)
}

func annotate(forest *Forest, op models.Operation) (models.ReportOperation, error) {
	row := models.ReportOperation{
		DateTime: op.DateTime,
		Amount:   models.MinorToDecimal(op.Amount),
	}

	if op.CategoryId == "" {
		return row, nil
	}

	chain, err := forest.Ancestors(op.CategoryId)
	if err != nil {
		return models.ReportOperation{}, err
	}
	row.Category = chain

	return row, nil
}

// IsClientError reports whether err was caused by the request itself.
func IsClientError(err error) bool {
	var categoryErr *CategoryError
	return errors.Is(err, ErrInvalidReport) || errors.Is(err, ErrUnknownPeriod) || errors.As(err, &categoryErr)
}
