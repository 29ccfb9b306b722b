package reports

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"testing"
	"time"

	"finreport/models"

	"github.com/shopspring/decimal"
	"gotest.tools/assert"
)

// memStore is an in-memory Store applying the same filter semantics as the
// Postgres queries.
type memStore struct {
	categories []models.Category
	links      []models.CategoryLink
	operations []models.Operation
	views      int
	failOn     string
}

func (m *memStore) View(ctx context.Context, fn func(Reader) error) error {
	m.views++
	return fn(m)
}

func (m *memStore) fail(call string) error {
	if m.failOn == call {
		return errors.New("err-" + call)
	}
	return nil
}

func (m *memStore) CategoryIdByName(ctx context.Context, userId, name string) (string, bool, error) {
	if err := m.fail("category"); err != nil {
		return "", false, err
	}
	for _, c := range m.categories {
		if c.UserId == userId && strings.ToLower(c.Name) == name {
			return c.Id, true, nil
		}
	}
	return "", false, nil
}

func (m *memStore) Categories(ctx context.Context, userId string) ([]models.Category, error) {
	var out []models.Category
	for _, c := range m.categories {
		if c.UserId == userId {
			out = append(out, c)
		}
	}
	return out, m.fail("categories")
}

func (m *memStore) CategoryLinks(ctx context.Context, userId string) ([]models.CategoryLink, error) {
	return m.links, m.fail("links")
}

func (m *memStore) matching(filter models.OperationFilter) []models.Operation {
	ids := make(map[string]bool)
	for _, id := range filter.CategoryIds {
		ids[id] = true
	}

	var out []models.Operation
	for _, op := range m.operations {
		if op.UserId != filter.UserId {
			continue
		}
		if filter.ByCategory && !ids[op.CategoryId] {
			continue
		}
		if filter.HasWindow() && (op.DateTime.Before(filter.From) || op.DateTime.After(filter.To)) {
			continue
		}
		out = append(out, op)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateTime.Equal(out[j].DateTime) {
			return out[i].DateTime.After(out[j].DateTime)
		}
		return out[i].Id > out[j].Id
	})
	return out
}

func (m *memStore) Operations(ctx context.Context, filter models.OperationFilter) ([]models.Operation, error) {
	if err := m.fail("operations"); err != nil {
		return nil, err
	}
	all := m.matching(filter)
	if filter.Offset >= len(all) {
		return nil, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[filter.Offset:end], nil
}

func (m *memStore) CountOperations(ctx context.Context, filter models.OperationFilter) (int64, error) {
	return int64(len(m.matching(filter))), m.fail("count")
}

func (m *memStore) ConsumptionSum(ctx context.Context, userId string, ids []string) (int64, error) {
	want := make(map[string]bool)
	for _, id := range ids {
		want[id] = true
	}
	var sum int64
	for _, op := range m.operations {
		if op.UserId == userId && want[op.Id] && op.Type == models.Consumption {
			sum += op.Amount
		}
	}
	return sum, m.fail("sum")
}

func (m *memStore) RangeConsumptionSum(ctx context.Context, filter models.OperationFilter) (int64, error) {
	var sum int64
	for _, op := range m.matching(filter) {
		if op.Type == models.Consumption {
			sum += op.Amount
		}
	}
	return sum, m.fail("range")
}

const (
	userA = "63eb226a-d612-412b-b8d4-a3e17b7d2227"
	userB = "0b7a0f5e-3a4e-4f58-9c52-9bb2a6a7b2b1"
)

func at(d int, h int) time.Time {
	return time.Date(2024, time.March, d, h, 0, 0, 0, time.UTC)
}

func fixtureStore() *memStore {
	return &memStore{
		categories: []models.Category{
			{Id: "food", Name: "Food", UserId: userA},
			{Id: "groceries", Name: "Groceries", UserId: userA},
			{Id: "restaurants", Name: "Restaurants", UserId: userA},
			{Id: "bakery", Name: "Bakery", UserId: userA},
			{Id: "salary", Name: "Salary", UserId: userA},
			{Id: "other-food", Name: "Food", UserId: userB},
		},
		links: []models.CategoryLink{
			{ParentId: "", ChildrenId: "food"},
			{ParentId: "food", ChildrenId: "groceries"},
			{ParentId: "food", ChildrenId: "restaurants"},
			{ParentId: "food", ChildrenId: "bakery"},
			{ParentId: "", ChildrenId: "salary"},
		},
		operations: []models.Operation{
			{Id: "op1", UserId: userA, CategoryId: "groceries", Type: models.Consumption, Amount: 12345, DateTime: at(1, 9)},
			{Id: "op2", UserId: userA, CategoryId: "restaurants", Type: models.Consumption, Amount: 2000, DateTime: at(2, 12)},
			{Id: "op3", UserId: userA, CategoryId: "salary", Type: models.Income, Amount: 500000, DateTime: at(3, 8)},
			{Id: "op4", UserId: userA, CategoryId: "food", Type: models.Consumption, Amount: 150, DateTime: at(4, 18)},
			{Id: "op5", UserId: userA, Type: models.Consumption, Amount: 99, DateTime: at(5, 7)},
			{Id: "op6", UserId: userB, CategoryId: "other-food", Type: models.Consumption, Amount: 1, DateTime: at(2, 10)},
		},
	}
}

func newTestService(store Store) *Service {
	return NewService(store, Options{
		MaxPageSize: 50,
		Now:         func() time.Time { return time.Date(2024, time.March, 4, 20, 0, 0, 0, time.UTC) },
	})
}

func TestGetReportAll(t *testing.T) {
	store := fixtureStore()
	svc := newTestService(store)

	report, err := svc.GetReport(context.Background(), userA, models.ReportRequest{Page: 1, PageSize: 10})
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, store.views)
	assert.Equal(t, int64(5), report.Total)
	assert.Equal(t, 5, len(report.Operations))

	// newest first
	assert.Equal(t, at(5, 7), report.Operations[0].DateTime)
	assert.Equal(t, 0, len(report.Operations[0].Category))
	assert.Equal(t, at(1, 9), report.Operations[4].DateTime)

	groceries := report.Operations[4]
	assert.Equal(t, "123.45", groceries.Amount.String())
	assert.DeepEqual(t, []models.CategoryView{
		{Id: "groceries", Name: "Groceries"},
		{Id: "food", Name: "Food"},
	}, groceries.Category)

	assert.Equal(t, "145.94", report.ConsumptionSum.String())
	assert.Equal(t, "145.94", report.RangeConsumptionSum.String())
}

func TestGetReportPagination(t *testing.T) {
	svc := newTestService(fixtureStore())

	seen := make(map[time.Time]bool)
	var pageSums decimal.Decimal
	for page := 1; page <= 3; page++ {
		report, err := svc.GetReport(context.Background(), userA, models.ReportRequest{Page: page, PageSize: 2})
		assert.Equal(t, nil, err)
		assert.Equal(t, int64(5), report.Total)
		for _, op := range report.Operations {
			assert.Assert(t, !seen[op.DateTime])
			seen[op.DateTime] = true
		}
		pageSums = pageSums.Add(report.ConsumptionSum)
		assert.Equal(t, "145.94", report.RangeConsumptionSum.String())
	}
	assert.Equal(t, 5, len(seen))
	assert.Equal(t, "145.94", pageSums.String())

	// past the last page
	report, err := svc.GetReport(context.Background(), userA, models.ReportRequest{Page: 4, PageSize: 2})
	assert.Equal(t, nil, err)
	assert.Assert(t, report.Operations != nil)
	assert.Equal(t, 0, len(report.Operations))
	assert.Assert(t, report.ConsumptionSum.IsZero())
	assert.Equal(t, int64(5), report.Total)
}

func TestGetReportCategoryFilter(t *testing.T) {
	svc := newTestService(fixtureStore())

	report, err := svc.GetReport(context.Background(), userA, models.ReportRequest{Page: 1, PageSize: 10, CategoryName: " FOOD "})
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(3), report.Total)
	for _, op := range report.Operations {
		assert.Equal(t, "food", op.Category[len(op.Category)-1].Id)
	}
	assert.Equal(t, "144.95", report.ConsumptionSum.String())

	report, err = svc.GetReport(context.Background(), userA, models.ReportRequest{Page: 1, PageSize: 10, CategoryName: "restaurants"})
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), report.Total)
	assert.Equal(t, "20", report.Operations[0].Amount.String())

	// sibling of the categories holding operations
	report, err = svc.GetReport(context.Background(), userA, models.ReportRequest{Page: 1, PageSize: 10, CategoryName: "Bakery"})
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(0), report.Total)
	assert.Equal(t, 0, len(report.Operations))
	assert.Assert(t, report.ConsumptionSum.IsZero())
	assert.Assert(t, report.RangeConsumptionSum.IsZero())

	_, err = svc.GetReport(context.Background(), userA, models.ReportRequest{Page: 1, PageSize: 10, CategoryName: "travel"})
	var categoryErr *CategoryError
	assert.Assert(t, errors.As(err, &categoryErr))
	assert.Equal(t, "travel", categoryErr.Name)
	assert.Assert(t, IsClientError(err))
}

func TestGetReportDateWindow(t *testing.T) {
	svc := newTestService(fixtureStore())

	// inclusive on both ends
	report, err := svc.GetReport(context.Background(), userA, models.ReportRequest{
		Page:       1,
		PageSize:   10,
		StartDate:  at(2, 12),
		FinishDate: at(4, 18),
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(3), report.Total)

	// all time behaves like no window
	all, err := svc.GetReport(context.Background(), userA, models.ReportRequest{Page: 1, PageSize: 10, Period: "all_time"})
	assert.Equal(t, nil, err)
	none, err := svc.GetReport(context.Background(), userA, models.ReportRequest{Page: 1, PageSize: 10})
	assert.Equal(t, nil, err)
	assert.DeepEqual(t, none, all)

	// period wins over explicit dates
	report, err = svc.GetReport(context.Background(), userA, models.ReportRequest{
		Page:       1,
		PageSize:   10,
		Period:     "today",
		StartDate:  at(1, 0),
		FinishDate: at(5, 0),
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), report.Total)
	assert.Equal(t, "1.5", report.Operations[0].Amount.String())

	_, err = svc.GetReport(context.Background(), userA, models.ReportRequest{Page: 1, PageSize: 10, Period: "someday"})
	assert.Equal(t, ErrUnknownPeriod, err)

	_, err = svc.GetReport(context.Background(), userA, models.ReportRequest{
		Page:       1,
		PageSize:   10,
		StartDate:  at(4, 0),
		FinishDate: at(1, 0),
	})
	assert.Equal(t, ErrInvalidReport, err)
}

func TestGetReportValidation(t *testing.T) {
	store := fixtureStore()
	svc := newTestService(store)

	for _, req := range []models.ReportRequest{
		{Page: 0, PageSize: 10},
		{Page: 1, PageSize: 0},
		{Page: 1, PageSize: 51},
	} {
		_, err := svc.GetReport(context.Background(), userA, req)
		assert.Equal(t, ErrInvalidReport, err)
	}

	// row offset would overflow
	for _, req := range []models.ReportRequest{
		{Page: math.MaxInt/40 + 2, PageSize: 50},
		{Page: math.MaxInt, PageSize: 2},
	} {
		_, err := svc.GetReport(context.Background(), userA, req)
		assert.Equal(t, ErrInvalidReport, err)
	}

	// the largest representable offset still reaches storage
	report, err := svc.GetReport(context.Background(), userA, models.ReportRequest{Page: math.MaxInt/50 + 1, PageSize: 50})
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(report.Operations))
	assert.Equal(t, 1, store.views)
	store.views = 0

	_, err = svc.GetReport(context.Background(), "", models.ReportRequest{Page: 1, PageSize: 10})
	assert.Equal(t, ErrInvalidReport, err)
	assert.Equal(t, 0, store.views)
}

func TestGetReportStorageErrors(t *testing.T) {
	for _, call := range []string{"category", "categories", "links", "operations", "sum", "count", "range"} {
		t.Run(call, func(t *testing.T) {
			store := fixtureStore()
			store.failOn = call
			svc := newTestService(store)

			_, err := svc.GetReport(context.Background(), userA, models.ReportRequest{Page: 1, PageSize: 10, CategoryName: "food"})
			assert.Error(t, err, "err-"+call)
			assert.Assert(t, !IsClientError(err))
		})
	}
}

func TestGetReportMalformedGraph(t *testing.T) {
	store := fixtureStore()
	store.links = append(store.links, models.CategoryLink{ParentId: "salary", ChildrenId: "groceries"})
	svc := newTestService(store)

	_, err := svc.GetReport(context.Background(), userA, models.ReportRequest{Page: 1, PageSize: 10})
	assert.Assert(t, errors.Is(err, ErrMalformedCategoryGraph))
}
