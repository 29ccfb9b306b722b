package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"finreport/models"
	"finreport/reports"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Open connects to Postgres and verifies the connection.
func Open(connString string) (*sql.DB, error) {
	if connString == "" {
		return nil, errors.New("missing-db-connection-string")
	}

	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// Postgres serves reports from the operations, categories and
// category_links tables.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// View runs fn inside a read-only repeatable-read transaction so every query
// of one report sees the same snapshot.
func (p *Postgres) View(ctx context.Context, fn func(reports.Reader) error) error {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return errors.Wrap(err, "begin report transaction")
	}

	defer tx.Rollback()

	if err := fn(&reader{q: tx}); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "commit report transaction")
}

type reader struct {
	q querier
}

func (r *reader) CategoryIdByName(ctx context.Context, userId, name string) (string, bool, error) {
	var id string
	err := r.q.QueryRowContext(ctx, `SELECT id FROM categories
		WHERE LOWER(name) = $1 AND user_id = $2`, name, userId).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, "select category by name")
	}

	return id, true, nil
}

func (r *reader) Categories(ctx context.Context, userId string) ([]models.Category, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name, user_id FROM categories
		WHERE user_id = $1`, userId)
	if err != nil {
		return nil, errors.Wrap(err, "select categories")
	}

	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.Id, &category.Name, &category.UserId); err != nil {
			return nil, errors.Wrap(err, "scan category")
		}
		categories = append(categories, category)
	}

	return categories, errors.Wrap(rows.Err(), "iterate categories")
}

func (r *reader) CategoryLinks(ctx context.Context, userId string) ([]models.CategoryLink, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT l.parent_id, l.children_id
		FROM category_links l
		JOIN categories c ON l.children_id = c.id
		WHERE c.user_id = $1`, userId)
	if err != nil {
		return nil, errors.Wrap(err, "select category links")
	}

	defer rows.Close()

	var links []models.CategoryLink
	for rows.Next() {
		var parentId sql.NullString
		var link models.CategoryLink
		if err := rows.Scan(&parentId, &link.ChildrenId); err != nil {
			return nil, errors.Wrap(err, "scan category link")
		}
		link.ParentId = parentId.String
		links = append(links, link)
	}

	return links, errors.Wrap(rows.Err(), "iterate category links")
}

func (r *reader) Operations(ctx context.Context, filter models.OperationFilter) ([]models.Operation, error) {
	joinQ, filterQ, stms := getFilterOperation(filter)

	selectQ := `SELECT o.id, o.amount, o.type_operation, o.datetime, o.category_id
		FROM operations o` + joinQ + filterQ
	orderVal := " ORDER BY o.datetime DESC, o.id DESC"
	pagination := fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)

	log.WithField("query", selectQ+orderVal+pagination).Debug("select operations")

	rows, err := r.q.QueryContext(ctx, selectQ+orderVal+pagination, stms...)
	if err != nil {
		return nil, errors.Wrap(err, "select operations")
	}

	defer rows.Close()

	var operations []models.Operation
	for rows.Next() {
		var categoryId, typeOperation sql.NullString
		operation := models.Operation{UserId: filter.UserId}

		if err := rows.Scan(&operation.Id, &operation.Amount, &typeOperation, &operation.DateTime, &categoryId); err != nil {
			return nil, errors.Wrap(err, "scan operation")
		}

		operation.Type = models.OperationType(typeOperation.String)
		operation.CategoryId = categoryId.String
		operations = append(operations, operation)
	}

	return operations, errors.Wrap(rows.Err(), "iterate operations")
}

func (r *reader) CountOperations(ctx context.Context, filter models.OperationFilter) (total int64, err error) {
	joinQ, filterQ, stms := getFilterOperation(filter)

	err = r.q.QueryRowContext(ctx, `SELECT COUNT(1) FROM operations o`+joinQ+filterQ, stms...).Scan(&total)
	return total, errors.Wrap(err, "count operations")
}

func (r *reader) ConsumptionSum(ctx context.Context, userId string, ids []string) (sum int64, err error) {
	err = r.q.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM operations
		WHERE user_id = $1 AND id = ANY($2) AND type_operation = $3`,
		userId, pq.Array(ids), string(models.Consumption)).Scan(&sum)
	return sum, errors.Wrap(err, "sum page consumption")
}

func (r *reader) RangeConsumptionSum(ctx context.Context, filter models.OperationFilter) (sum int64, err error) {
	joinQ, filterQ, stms := getFilterOperation(filter)

	filterQ += fmt.Sprintf(" AND o.type_operation = $%d", len(stms)+1)
	stms = append(stms, string(models.Consumption))

	err = r.q.QueryRowContext(ctx, `SELECT COALESCE(SUM(o.amount), 0) FROM operations o`+joinQ+filterQ, stms...).Scan(&sum)
	return sum, errors.Wrap(err, "sum range consumption")
}

// getFilterOperation builds the join and WHERE clause shared by the page,
// count and range-sum queries. Without a category filter the join is outer
// so uncategorised operations stay in the result.
func getFilterOperation(filter models.OperationFilter) (joinQ, filterQ string, stms []interface{}) {
	joinQ = " LEFT JOIN categories c ON o.category_id = c.id"

	filterQ = fmt.Sprintf(" WHERE o.user_id = $%d", len(stms)+1)
	stms = append(stms, filter.UserId)

	if filter.ByCategory {
		joinQ = " JOIN categories c ON o.category_id = c.id"
		filterQ += fmt.Sprintf(" AND c.id = ANY($%d)", len(stms)+1)
		stms = append(stms, pq.Array(filter.CategoryIds))
	}

	if filter.HasWindow() {
		filterQ += fmt.Sprintf(" AND o.datetime BETWEEN $%d AND $%d", len(stms)+1, len(stms)+2)
		stms = append(stms, filter.From, filter.To)
	}

	return
}
