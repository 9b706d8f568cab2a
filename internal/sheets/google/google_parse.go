package google

import (
	"fmt"
	"strconv"
	"strings"

	"headcount/internal/core"
	"headcount/internal/export"
)

// a1 builds a quoted A1 range so tab names may contain spaces or dashes.
func a1(tab, cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(tab, "'", "''"), cells)
}

func tabName(fileName string) string {
	return strings.TrimSuffix(fileName, ".xlsx")
}

func headerRow() []any {
	out := make([]any, len(export.Header))
	for i, h := range export.Header {
		out[i] = h
	}
	return out
}

func allocationRow(rec core.AllocationRecord) []any {
	return []any{strconv.FormatInt(rec.ID, 10), rec.Department, rec.CairoCount, rec.TenthCount, rec.Date.Display()}
}

// findIDRow returns the 1-based row whose first cell equals id. Values come
// back as strings or float64 depending on how the cell was written.
func findIDRow(values [][]any, id int64) (int, bool) {
	want := strconv.FormatInt(id, 10)
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if cellString(row[0]) == want {
			return i + 1, true
		}
	}
	return 0, false
}

func cellString(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
