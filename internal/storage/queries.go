package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the statements for the workforce_allocation table.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WorkforceAllocation mirrors a table row; Date is kept as stored (YYYY-MM-DD).
type WorkforceAllocation struct {
	ID         int64
	Department string
	CairoCount int64
	TenthCount int64
	Date       string
}

const createAllocation = `
INSERT INTO workforce_allocation (department, cairo_count, tenth_count, date)
VALUES (?, ?, ?, ?)
RETURNING id, department, cairo_count, tenth_count, date`

type CreateAllocationParams struct {
	Department string
	CairoCount int64
	TenthCount int64
	Date       string
}

func (q *Queries) CreateAllocation(ctx context.Context, arg CreateAllocationParams) (WorkforceAllocation, error) {
	row := q.db.QueryRowContext(ctx, createAllocation, arg.Department, arg.CairoCount, arg.TenthCount, arg.Date)
	var i WorkforceAllocation
	err := row.Scan(&i.ID, &i.Department, &i.CairoCount, &i.TenthCount, &i.Date)
	return i, err
}

const updateAllocation = `
UPDATE workforce_allocation
SET department = ?, cairo_count = ?, tenth_count = ?, date = ?
WHERE id = ?`

type UpdateAllocationParams struct {
	ID         int64
	Department string
	CairoCount int64
	TenthCount int64
	Date       string
}

// UpdateAllocation returns the number of rows touched.
func (q *Queries) UpdateAllocation(ctx context.Context, arg UpdateAllocationParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateAllocation, arg.Department, arg.CairoCount, arg.TenthCount, arg.Date, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getAllocation = `
SELECT id, department, cairo_count, tenth_count, date
FROM workforce_allocation
WHERE id = ?`

func (q *Queries) GetAllocation(ctx context.Context, id int64) (WorkforceAllocation, error) {
	row := q.db.QueryRowContext(ctx, getAllocation, id)
	var i WorkforceAllocation
	err := row.Scan(&i.ID, &i.Department, &i.CairoCount, &i.TenthCount, &i.Date)
	return i, err
}

const listAllocationsInRange = `
SELECT id, department, cairo_count, tenth_count, date
FROM workforce_allocation
WHERE date BETWEEN ? AND ?
ORDER BY id`

func (q *Queries) ListAllocationsInRange(ctx context.Context, start, end string) ([]WorkforceAllocation, error) {
	return q.listAllocations(ctx, listAllocationsInRange, start, end)
}

const listDepartmentAllocationsInRange = `
SELECT id, department, cairo_count, tenth_count, date
FROM workforce_allocation
WHERE department = ? AND date BETWEEN ? AND ?
ORDER BY id`

func (q *Queries) ListDepartmentAllocationsInRange(ctx context.Context, department, start, end string) ([]WorkforceAllocation, error) {
	return q.listAllocations(ctx, listDepartmentAllocationsInRange, department, start, end)
}

func (q *Queries) listAllocations(ctx context.Context, query string, args ...interface{}) ([]WorkforceAllocation, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []WorkforceAllocation
	for rows.Next() {
		var i WorkforceAllocation
		if err := rows.Scan(&i.ID, &i.Department, &i.CairoCount, &i.TenthCount, &i.Date); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listDepartments = `
SELECT DISTINCT department
FROM workforce_allocation
ORDER BY department`

func (q *Queries) ListDepartments(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listDepartments)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []string
	for rows.Next() {
		var department string
		if err := rows.Scan(&department); err != nil {
			return nil, err
		}
		items = append(items, department)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countAllocations = `SELECT COUNT(*) FROM workforce_allocation`

func (q *Queries) CountAllocations(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countAllocations).Scan(&n)
	return n, err
}
