package http

import (
	"net/http"

	"headcount/internal/core"
	applog "headcount/internal/log"
)

// handleSaveAllocation creates or updates a record depending on the form
// state and answers with the re-rendered form.
func (s *Server) handleSaveAllocation(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	in := parser.FormInput()

	s.mu.Lock()
	defer s.mu.Unlock()

	op := applog.OpCreate
	if _, editing := s.form.EditingID(); editing {
		op = applog.OpUpdate
	}

	res, err := s.form.Save(r.Context(), in)
	if err != nil {
		resp := errorResponse(r, err, op)
		if resp.StatusCode() == http.StatusInternalServerError {
			resp.Write(w)
			return
		}
		// Warnings re-render the form so reset counts become visible.
		body, rerr := s.render("form", s.formViewLocked())
		if rerr != nil {
			errorResponse(r, rerr, applog.OpRender).Write(w)
			return
		}
		resp.BodyHTML(body).Write(w)
		return
	}

	body, err := s.render("form", s.formViewLocked())
	if err != nil {
		errorResponse(r, err, applog.OpRender).Write(w)
		return
	}

	msg := "Allocation saved"
	if !res.Created {
		msg = "Allocation updated"
	}
	NewHTMXResponse().
		TriggerAllocationSaved(res.ID, res.Created).
		TriggerReportRefresh().
		TriggerSuccessNotification(msg).
		BodyHTML(body).
		Write(w)
}

// handleEditAllocation loads row N of the current report into the form.
func (s *Server) handleEditAllocation(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var row *core.RenderedRow
	if i, ok := ParseRowIndex(r.PostForm); ok && i < len(s.rows) {
		selected := s.rows[i]
		row = &selected
	}

	if err := s.form.LoadForEdit(row); err != nil {
		errorResponse(r, err, applog.OpRead).Header("HX-Reswap", "none").Write(w)
		return
	}

	body, err := s.render("form", s.formViewLocked())
	if err != nil {
		errorResponse(r, err, applog.OpRender).Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(body).Write(w)
}

// handleResetForm abandons an edit and returns to a blank entry form.
func (s *Server) handleResetForm(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.form.Reset()
	body, err := s.render("form", s.formViewLocked())
	if err != nil {
		errorResponse(r, err, applog.OpRender).Write(w)
		return
	}
	NewHTMXResponse().TriggerFormReset().BodyHTML(body).Write(w)
}
