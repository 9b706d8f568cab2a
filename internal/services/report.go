package services

import (
	"context"
	"fmt"
	"time"

	"headcount/internal/cache"
	"headcount/internal/core"
	"headcount/internal/ports"
)

// DefaultReportDays is the look-back of the initial report range.
const DefaultReportDays = 30

// ReportEngine runs filtered queries and sums them. It never writes.
type ReportEngine struct {
	store ports.RecordReader
	cache cache.Cache[core.Report]
}

// NewReportEngine builds an engine; c may be nil to disable caching.
func NewReportEngine(store ports.RecordReader, c cache.Cache[core.Report]) *ReportEngine {
	return &ReportEngine{store: store, cache: c}
}

// Generate returns the records of filter in [start, end] with their totals.
// start after end yields an empty report.
func (e *ReportEngine) Generate(ctx context.Context, filter core.DepartmentFilter, start, end core.Date) (core.Report, error) {
	if start.After(end.Time) {
		return core.NewReport(filter, start, end, []core.AllocationRecord{}), nil
	}

	key := reportKey(filter, start, end)
	if e.cache != nil {
		if r, ok := e.cache.Get(key); ok {
			return r, nil
		}
	}

	rows, err := e.store.Query(ctx, filter, start, end)
	if err != nil {
		return core.Report{}, fmt.Errorf("generate report: %w", err)
	}
	report := core.NewReport(filter, start, end, rows)

	if e.cache != nil {
		e.cache.Set(key, report)
	}
	return report, nil
}

// Invalidate drops cached reports. It is registered as a save hook.
func (e *ReportEngine) Invalidate() {
	if e.cache != nil {
		e.cache.Purge()
	}
}

// Render formats the report rows for display and export.
func Render(r core.Report) []core.RenderedRow {
	return r.Render()
}

// DefaultRange is the last DefaultReportDays days up to and including today.
func DefaultRange(now time.Time) (start, end core.Date) {
	end = core.DateOf(now)
	return end.AddDays(-DefaultReportDays), end
}

func reportKey(filter core.DepartmentFilter, start, end core.Date) string {
	dep := "dep:" + filter.Department
	if filter.All {
		dep = "*"
	}
	return dep + "|" + start.ISO() + "|" + end.ISO()
}
