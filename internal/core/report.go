package core

import "strconv"

// Report is the result of a filtered query plus its running sums.
type Report struct {
	Filter     DepartmentFilter
	Start      Date
	End        Date
	Rows       []AllocationRecord
	TotalCairo int
	TotalTenth int
}

// RenderedRow is a record as displayed in the report table.
type RenderedRow struct {
	ID         string
	Department string
	Cairo      int
	Tenth      int
	Date       string
}

// NewReport sums rows into a Report.
func NewReport(filter DepartmentFilter, start, end Date, rows []AllocationRecord) Report {
	r := Report{Filter: filter, Start: start, End: end, Rows: rows}
	for _, row := range rows {
		r.TotalCairo += row.CairoCount
		r.TotalTenth += row.TenthCount
	}
	return r
}

// TotalDaily is the grand total of both sites.
func (r Report) TotalDaily() int {
	return r.TotalCairo + r.TotalTenth
}

// Render formats every row for display.
func (r Report) Render() []RenderedRow {
	out := make([]RenderedRow, len(r.Rows))
	for i, rec := range r.Rows {
		out[i] = RenderRecord(rec)
	}
	return out
}

// RenderRecord formats a single record for display.
func RenderRecord(rec AllocationRecord) RenderedRow {
	return RenderedRow{
		ID:         strconv.FormatInt(rec.ID, 10),
		Department: rec.Department,
		Cairo:      rec.CairoCount,
		Tenth:      rec.TenthCount,
		Date:       rec.Date.Display(),
	}
}
