package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"headcount/internal/core"
	"headcount/internal/services"
)

// rangeFlags are the report selection shared by report, export and replay.
type rangeFlags struct {
	department string
	start      string
	end        string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.department, "department", core.AllDepartmentsLabel, "department to include, or \"all\"")
	cmd.Flags().StringVar(&f.start, "start", "", fmt.Sprintf("first day, YYYY-MM-DD (default: %d days ago)", services.DefaultReportDays))
	cmd.Flags().StringVar(&f.end, "end", "", "last day, YYYY-MM-DD (default: today)")
}

// resolve applies defaults and rejects malformed dates.
func (f rangeFlags) resolve(now time.Time) (core.DepartmentFilter, core.Date, core.Date, error) {
	start, end := services.DefaultRange(now)
	if f.start != "" {
		d, err := core.ParseISODate(f.start)
		if err != nil {
			return core.DepartmentFilter{}, core.Date{}, core.Date{}, fmt.Errorf("invalid --start %q: %w", f.start, err)
		}
		start = d
	}
	if f.end != "" {
		d, err := core.ParseISODate(f.end)
		if err != nil {
			return core.DepartmentFilter{}, core.Date{}, core.Date{}, fmt.Errorf("invalid --end %q: %w", f.end, err)
		}
		end = d
	}
	return core.ParseDepartmentFilter(f.department), start, end, nil
}

// allocationFlags are the editable record fields. Counts stay strings so
// the form's own validation produces the messages.
type allocationFlags struct {
	department string
	cairo      string
	tenth      string
	date       string
}

func (f *allocationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.department, "department", "", "department name")
	cmd.Flags().StringVar(&f.cairo, "cairo", "", "Cairo headcount (blank means 0)")
	cmd.Flags().StringVar(&f.tenth, "tenth", "", "Tenth headcount (blank means 0)")
	cmd.Flags().StringVar(&f.date, "date", "", "day, YYYY-MM-DD (default: today)")
}
