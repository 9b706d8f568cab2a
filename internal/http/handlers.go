package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	applog "headcount/internal/log"
)

type formView struct {
	Department  string
	Cairo       string
	Tenth       string
	Date        string
	Caption     string
	Editing     bool
	EditingID   int64
	Departments []string
}

type reportView struct {
	Departments []string
	Selected    string
	Start       string
	End         string
	Rows        []rowView
	TotalCairo  int
	TotalTenth  int
	TotalDaily  int
}

type rowView struct {
	Index      int
	ID         string
	Department string
	Cairo      int
	Tenth      int
	Date       string
}

type pageView struct {
	Form   formView
	Report reportView
}

// formViewLocked snapshots the form controller. Callers hold s.mu.
func (s *Server) formViewLocked() formView {
	f := s.form.Fields()
	id, editing := s.form.EditingID()
	return formView{
		Department:  f.Department,
		Cairo:       f.Cairo,
		Tenth:       f.Tenth,
		Date:        f.Date.ISO(),
		Caption:     s.form.Caption(),
		Editing:     editing,
		EditingID:   id,
		Departments: s.form.FormDepartments()[1:],
	}
}

// reportViewLocked snapshots the current report. Callers hold s.mu.
func (s *Server) reportViewLocked() reportView {
	v := reportView{
		Departments: s.form.ReportDepartments(),
		Selected:    s.params.Filter.String(),
		Start:       s.params.Start.ISO(),
		End:         s.params.End.ISO(),
		Rows:        make([]rowView, len(s.rows)),
		TotalCairo:  s.report.TotalCairo,
		TotalTenth:  s.report.TotalTenth,
		TotalDaily:  s.report.TotalDaily(),
	}
	for i, r := range s.rows {
		v.Rows[i] = rowView{Index: i, ID: r.ID, Department: r.Department, Cairo: r.Cairo, Tenth: r.Tenth, Date: r.Date}
	}
	return v
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}

	s.mu.Lock()
	view := pageView{Form: s.formViewLocked(), Report: s.reportViewLocked()}
	s.mu.Unlock()

	body, err := s.render("index", view)
	if err != nil {
		errorResponse(r, err, applog.OpRender).Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(body).Write(w)
}

// handleDepartments serves the report selector entries, wildcard first.
func (s *Server) handleDepartments(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	s.mu.Lock()
	if err := s.form.Refresh(r.Context()); err != nil {
		s.mu.Unlock()
		errorResponse(r, err, applog.OpList).Write(w)
		return
	}
	deps := s.form.ReportDepartments()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, deps)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.clock().Format(time.RFC3339),
		"uptime":    s.clock().Sub(s.started).Round(time.Second).String(),
	})
}

// handleReady checks templates and pings the record store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := map[string]any{}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.store == nil:
		checks["store"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	default:
		if err := s.store.Ping(ctx); err != nil {
			checks["store"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	checks["rate_limiter"] = map[string]any{"active_clients": s.limiter.ActiveClients()}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": s.clock().Format(time.RFC3339),
		"checks":    checks,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
