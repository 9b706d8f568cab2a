package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ISODateLayout is used for storage and query parameters.
	ISODateLayout = "2006-01-02"
	// DisplayDateLayout is the day/month/year form shown in report tables.
	DisplayDateLayout = "02/01/2006"

	// AllDepartmentsLabel is the wildcard entry of the report selector.
	AllDepartmentsLabel = "all"
	// allDepartmentsLabelAR is the Arabic wildcard label, accepted on input.
	allDepartmentsLabelAR = "الكل"
)

type (
	Date struct {
		time.Time
	}

	// AllocationRecord is one headcount entry for a department on a date.
	AllocationRecord struct {
		ID         int64
		Department string
		CairoCount int
		TenthCount int
		Date       Date
	}

	// DepartmentFilter selects a single department or, when All is set, every department.
	DepartmentFilter struct {
		Department string
		All        bool
	}
)

var (
	ErrEmptyDepartment    = errors.New("empty department")
	ErrReservedDepartment = errors.New("reserved department name")
	ErrInvalidCount    = errors.New("invalid count")
	ErrNegativeCount   = errors.New("negative count")
	ErrInvalidDate     = errors.New("invalid date")
	ErrNotFound        = errors.New("record not found")
	ErrEmptyExport     = errors.New("no rows to export")
	ErrNoRowSelected   = errors.New("no row selected")
)

// ValidationError reports rejected user input. The store is never touched when one is returned.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NotFoundError is returned when an edit targets a record that no longer exists.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %d not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Today returns the current local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseISODate parses YYYY-MM-DD.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse(ISODateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, s, err)
	}
	return Date{Time: t}, nil
}

// ParseDisplayDate parses the DD/MM/YYYY form used in rendered rows.
func ParseDisplayDate(s string) (Date, error) {
	t, err := time.Parse(DisplayDateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ISO formats the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format(ISODateLayout)
}

// Display formats the date as DD/MM/YYYY.
func (d Date) Display() string {
	return d.Format(DisplayDateLayout)
}

// AddDays returns the date shifted by n days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// AllDepartments returns the wildcard filter.
func AllDepartments() DepartmentFilter {
	return DepartmentFilter{All: true}
}

// Department returns a filter matching exactly name.
func Department(name string) DepartmentFilter {
	return DepartmentFilter{Department: strings.TrimSpace(name)}
}

// ParseDepartmentFilter maps a selector value to a filter. Empty and wildcard labels select everything.
func ParseDepartmentFilter(s string) DepartmentFilter {
	s = strings.TrimSpace(s)
	if s == "" || IsWildcardLabel(s) {
		return AllDepartments()
	}
	return Department(s)
}

// IsWildcardLabel reports whether name is a spelling of the "every department"
// selector. Such names cannot be used as departments.
func IsWildcardLabel(name string) bool {
	name = strings.TrimSpace(name)
	return strings.EqualFold(name, AllDepartmentsLabel) || name == allDepartmentsLabelAR
}

// Matches reports whether department passes the filter.
func (f DepartmentFilter) Matches(department string) bool {
	return f.All || f.Department == department
}

func (f DepartmentFilter) String() string {
	if f.All {
		return AllDepartmentsLabel
	}
	return f.Department
}

func (r AllocationRecord) Validate() error {
	if strings.TrimSpace(r.Department) == "" {
		return &ValidationError{Field: "department", Reason: "department is required", Err: ErrEmptyDepartment}
	}
	if IsWildcardLabel(r.Department) {
		return &ValidationError{Field: "department", Reason: fmt.Sprintf("%q is reserved for the all-departments filter", strings.TrimSpace(r.Department)), Err: ErrReservedDepartment}
	}
	if r.CairoCount < 0 {
		return &ValidationError{Field: "cairo_count", Reason: "count must not be negative", Err: ErrNegativeCount}
	}
	if r.TenthCount < 0 {
		return &ValidationError{Field: "tenth_count", Reason: "count must not be negative", Err: ErrNegativeCount}
	}
	if err := r.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Reason: "date is required", Err: err}
	}
	return nil
}

// Total is the combined headcount across both sites.
func (r AllocationRecord) Total() int {
	return r.CairoCount + r.TenthCount
}
