// Package export turns a rendered report into a spreadsheet and hands it to one or more sinks.
package export

import (
	"fmt"
	"time"

	"headcount/internal/core"
)

const (
	SheetName  = "Report"
	TotalLabel = "total"
)

// Header is the first row of every exported sheet.
var Header = []string{"id", "department", "cairo_total", "tenth_total", "date"}

// Row is one exported line. The totals row has an empty ID.
type Row struct {
	ID         string
	Department string
	Cairo      int
	Tenth      int
	Date       string
}

// Table is the export payload: data rows followed by a single totals row.
type Table struct {
	Rows  []Row
	Total Row
}

// BuildTable copies rows as displayed and appends the totals row, summing
// the displayed counts rather than re-querying the store.
func BuildTable(rows []core.RenderedRow) (Table, error) {
	if len(rows) == 0 {
		return Table{}, core.ErrEmptyExport
	}

	t := Table{Rows: make([]Row, 0, len(rows))}
	var cairo, tenth int
	for _, r := range rows {
		t.Rows = append(t.Rows, Row{ID: r.ID, Department: r.Department, Cairo: r.Cairo, Tenth: r.Tenth, Date: r.Date})
		cairo += r.Cairo
		tenth += r.Tenth
	}
	t.Total = Row{
		Department: TotalLabel,
		Cairo:      cairo,
		Tenth:      tenth,
		Date:       GrandTotalLabel(cairo + tenth),
	}
	return t, nil
}

// GrandTotalLabel renders the date column of the totals row.
func GrandTotalLabel(n int) string {
	return fmt.Sprintf("grand total: %d", n)
}

// All returns the data rows followed by the totals row.
func (t Table) All() []Row {
	return append(append([]Row(nil), t.Rows...), t.Total)
}

// Values lays the table out as header plus rows, the shape spreadsheet APIs take.
func (t Table) Values() [][]any {
	out := make([][]any, 0, len(t.Rows)+2)
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	out = append(out, header)
	for _, r := range t.All() {
		out = append(out, []any{r.ID, r.Department, r.Cairo, r.Tenth, r.Date})
	}
	return out
}

// FileName is report_<YYYY-MM-DD>.xlsx for the local date of now.
func FileName(now time.Time) string {
	return "report_" + now.Format(core.ISODateLayout) + ".xlsx"
}
