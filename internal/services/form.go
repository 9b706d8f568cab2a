package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"headcount/internal/core"
	"headcount/internal/ports"
)

// FormMode tags the form state.
type FormMode int

const (
	ModeCreating FormMode = iota
	ModeEditing
)

func (m FormMode) String() string {
	if m == ModeEditing {
		return "editing"
	}
	return "creating"
}

// FormState is Creating or Editing(id). ID is meaningful only while editing.
type FormState struct {
	Mode FormMode
	ID   int64
}

func Creating() FormState { return FormState{Mode: ModeCreating} }

func Editing(id int64) FormState { return FormState{Mode: ModeEditing, ID: id} }

func (s FormState) String() string {
	if s.Mode == ModeEditing {
		return fmt.Sprintf("editing(%d)", s.ID)
	}
	return "creating"
}

const (
	CaptionCreate = "Save"
	CaptionEdit   = "Save changes"
)

// FormFields are the raw values shown in the entry form.
type FormFields struct {
	Department string
	Cairo      string
	Tenth      string
	Date       core.Date
}

// FormInput is a submission. Date is YYYY-MM-DD; blank means today.
type FormInput struct {
	Department string
	Cairo      string
	Tenth      string
	Date       string
}

type SaveResult struct {
	ID      int64
	Created bool
}

// FormController owns the entry form: its fields, its Creating/Editing state
// and the two department selection lists. It is not safe for concurrent use.
type FormController struct {
	svc   *AllocationService
	clock ports.Clock

	state      FormState
	fields     FormFields
	formDeps   []string
	reportDeps []string
}

func NewFormController(ctx context.Context, svc *AllocationService, clock ports.Clock) (*FormController, error) {
	if clock == nil {
		clock = time.Now
	}
	c := &FormController{svc: svc, clock: clock}
	c.Reset()
	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Refresh reloads both department lists from the store.
func (c *FormController) Refresh(ctx context.Context) error {
	deps, err := c.svc.Departments(ctx)
	if err != nil {
		return err
	}
	c.formDeps = append([]string{""}, deps...)
	c.reportDeps = append([]string{core.AllDepartmentsLabel}, deps...)
	return nil
}

func (c *FormController) State() FormState { return c.state }

func (c *FormController) Mode() FormMode { return c.state.Mode }

func (c *FormController) EditingID() (int64, bool) {
	return c.state.ID, c.state.Mode == ModeEditing
}

// Caption is the submit button label for the current state.
func (c *FormController) Caption() string {
	if c.state.Mode == ModeEditing {
		return CaptionEdit
	}
	return CaptionCreate
}

func (c *FormController) Fields() FormFields { return c.fields }

// FormDepartments lists the form selector entries; the first is blank.
func (c *FormController) FormDepartments() []string {
	return slices.Clone(c.formDeps)
}

// ReportDepartments lists the report selector entries; the first is the wildcard.
func (c *FormController) ReportDepartments() []string {
	return slices.Clone(c.reportDeps)
}

// Reset returns to Creating with cleared fields and today's date.
func (c *FormController) Reset() {
	c.state = Creating()
	c.fields = FormFields{Date: core.DateOf(c.clock())}
}

// LoadForEdit copies a rendered report row into the form and switches to Editing.
func (c *FormController) LoadForEdit(row *core.RenderedRow) error {
	if row == nil {
		return core.ErrNoRowSelected
	}
	date, err := core.ParseDisplayDate(row.Date)
	if err != nil {
		return &core.ValidationError{Field: "date", Reason: "row has an unreadable date", Err: err}
	}
	id, err := strconv.ParseInt(strings.TrimSpace(row.ID), 10, 64)
	if err != nil || id <= 0 {
		return &core.ValidationError{Field: "id", Reason: "row has no record id", Err: core.ErrNoRowSelected}
	}

	c.fields = FormFields{
		Department: row.Department,
		Cairo:      core.FormatCount(row.Cairo),
		Tenth:      core.FormatCount(row.Tenth),
		Date:       date,
	}
	c.state = Editing(id)
	return nil
}

// Save validates in and creates or updates a record according to the state.
//
// Validation failures reset both count fields to "0" and leave the store
// untouched. A vanished edit target returns *core.NotFoundError and keeps
// the controller in Editing with the submitted values.
func (c *FormController) Save(ctx context.Context, in FormInput) (SaveResult, error) {
	c.fields.Department = in.Department
	c.fields.Cairo = in.Cairo
	c.fields.Tenth = in.Tenth

	rec, err := c.validate(in)
	if err != nil {
		c.fields.Cairo = "0"
		c.fields.Tenth = "0"
		slog.WarnContext(ctx, "Allocation rejected", "state", c.state.String(), "error", err)
		return SaveResult{}, err
	}
	c.fields.Date = rec.Date

	var result SaveResult
	switch c.state.Mode {
	case ModeEditing:
		rec.ID = c.state.ID
		if err := c.svc.Update(ctx, rec); err != nil {
			var nf *core.NotFoundError
			if errors.As(err, &nf) {
				slog.WarnContext(ctx, "Edit target no longer exists", "id", nf.ID)
			}
			return SaveResult{}, err
		}
		result = SaveResult{ID: rec.ID}
	default:
		id, err := c.svc.Create(ctx, rec)
		if err != nil {
			return SaveResult{}, err
		}
		result = SaveResult{ID: id, Created: true}
	}

	c.rememberDepartment(rec.Department)
	c.Reset()
	return result, nil
}

func (c *FormController) validate(in FormInput) (core.AllocationRecord, error) {
	cairo, cerr := core.ParseCount(in.Cairo)
	tenth, terr := core.ParseCount(in.Tenth)
	for _, p := range []struct {
		field string
		err   error
	}{{"cairo_count", cerr}, {"tenth_count", terr}} {
		if errors.Is(p.err, core.ErrInvalidCount) {
			return core.AllocationRecord{}, &core.ValidationError{Field: p.field, Reason: "counts must be whole numbers", Err: core.ErrInvalidCount}
		}
	}

	date := core.DateOf(c.clock())
	if strings.TrimSpace(in.Date) != "" {
		d, err := core.ParseISODate(in.Date)
		if err != nil {
			return core.AllocationRecord{}, &core.ValidationError{Field: "date", Reason: "date must be YYYY-MM-DD", Err: core.ErrInvalidDate}
		}
		date = d
	}

	rec := core.AllocationRecord{
		Department: strings.TrimSpace(in.Department),
		CairoCount: cairo,
		TenthCount: tenth,
		Date:       date,
	}
	if err := rec.Validate(); err != nil {
		return core.AllocationRecord{}, err
	}
	return rec, nil
}

// rememberDepartment appends a new name to both lists without re-sorting.
func (c *FormController) rememberDepartment(dep string) {
	if slices.Contains(c.formDeps[1:], dep) {
		return
	}
	c.formDeps = append(c.formDeps, dep)
	c.reportDeps = append(c.reportDeps, dep)
}
