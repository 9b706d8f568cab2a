package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"headcount/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Create implements ports.RecordWriter
func (r *SQLiteRepository) Create(ctx context.Context, rec core.AllocationRecord) (int64, error) {
	rec.Department = normalizeDepartment(rec.Department)
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	row, err := r.queries.CreateAllocation(ctx, CreateAllocationParams{
		Department: rec.Department,
		CairoCount: int64(rec.CairoCount),
		TenthCount: int64(rec.TenthCount),
		Date:       rec.Date.ISO(),
	})
	if err != nil {
		return 0, fmt.Errorf("create allocation: %w", err)
	}

	slog.InfoContext(ctx, "Allocation saved to SQLite",
		"id", row.ID,
		"department", row.Department,
		"cairo_count", row.CairoCount,
		"tenth_count", row.TenthCount,
		"date", row.Date)

	return row.ID, nil
}

// Update implements ports.RecordWriter
func (r *SQLiteRepository) Update(ctx context.Context, rec core.AllocationRecord) error {
	rec.Department = normalizeDepartment(rec.Department)
	if err := rec.Validate(); err != nil {
		return err
	}

	n, err := r.queries.UpdateAllocation(ctx, UpdateAllocationParams{
		ID:         rec.ID,
		Department: rec.Department,
		CairoCount: int64(rec.CairoCount),
		TenthCount: int64(rec.TenthCount),
		Date:       rec.Date.ISO(),
	})
	if err != nil {
		return fmt.Errorf("update allocation %d: %w", rec.ID, err)
	}
	if n == 0 {
		return &core.NotFoundError{ID: rec.ID}
	}

	slog.InfoContext(ctx, "Allocation updated in SQLite",
		"id", rec.ID,
		"department", rec.Department,
		"cairo_count", rec.CairoCount,
		"tenth_count", rec.TenthCount,
		"date", rec.Date.ISO())
	return nil
}

// Get implements ports.RecordReader
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.AllocationRecord, error) {
	row, err := r.queries.GetAllocation(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.AllocationRecord{}, &core.NotFoundError{ID: id}
	}
	if err != nil {
		return core.AllocationRecord{}, fmt.Errorf("get allocation %d: %w", id, err)
	}
	return toRecord(row)
}

// Query implements ports.RecordReader
func (r *SQLiteRepository) Query(ctx context.Context, filter core.DepartmentFilter, start, end core.Date) ([]core.AllocationRecord, error) {
	if start.After(end.Time) {
		return []core.AllocationRecord{}, nil
	}

	var (
		rows []WorkforceAllocation
		err  error
	)
	if filter.All {
		rows, err = r.queries.ListAllocationsInRange(ctx, start.ISO(), end.ISO())
	} else {
		rows, err = r.queries.ListDepartmentAllocationsInRange(ctx, filter.Department, start.ISO(), end.ISO())
	}
	if err != nil {
		return nil, fmt.Errorf("query allocations: %w", err)
	}

	out := make([]core.AllocationRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := toRecord(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	slog.DebugContext(ctx, "Allocations queried",
		"department", filter.String(),
		"start", start.ISO(),
		"end", end.ISO(),
		"rows", len(out))
	return out, nil
}

// ListDepartments implements ports.DepartmentLister
func (r *SQLiteRepository) ListDepartments(ctx context.Context) ([]string, error) {
	departments, err := r.queries.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	if departments == nil {
		departments = []string{}
	}
	return departments, nil
}

// Count implements ports.RecordReader
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.queries.CountAllocations(ctx)
	if err != nil {
		return 0, fmt.Errorf("count allocations: %w", err)
	}
	return n, nil
}

func toRecord(row WorkforceAllocation) (core.AllocationRecord, error) {
	date, err := core.ParseISODate(row.Date)
	if err != nil {
		return core.AllocationRecord{}, fmt.Errorf("decode allocation %d: %w", row.ID, err)
	}
	return core.AllocationRecord{
		ID:         row.ID,
		Department: row.Department,
		CairoCount: int(row.CairoCount),
		TenthCount: int(row.TenthCount),
		Date:       date,
	}, nil
}

func normalizeDepartment(s string) string {
	return core.Department(s).Department
}
