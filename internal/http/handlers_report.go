package http

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"strings"

	"headcount/internal/core"
	"headcount/internal/export"
	applog "headcount/internal/log"
)

// handleReport generates a report and makes it the current one.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	params := ParseReportParams(r.URL.Query(), s.clock())

	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.reports.Generate(r.Context(), params.Filter, params.Start, params.End)
	if err != nil {
		errorResponse(r, err, applog.OpQuery).Write(w)
		return
	}
	s.params = params
	s.report = report
	s.rows = report.Render()
	s.metrics.reportRows.Observe(float64(len(s.rows)))

	applog.FromContext(r.Context()).WithComponent(applog.ComponentReport).InfoContext(r.Context(), "Report generated",
		applog.FieldDepartment, params.Filter.String(),
		"start", params.Start.ISO(),
		"end", params.End.ISO(),
		applog.FieldRows, len(s.rows),
		"total_daily", report.TotalDaily())

	body, err := s.render("report-results", s.reportViewLocked())
	if err != nil {
		errorResponse(r, err, applog.OpRender).Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(body).Write(w)
}

// handleExport writes the current report's rows to the configured sinks.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.exporter.Export(r.Context(), slices.Clone(s.rows), s.clock())
	if errors.Is(err, core.ErrEmptyExport) {
		errorResponse(r, err, applog.OpExport).Header("HX-Reswap", "none").Write(w)
		return
	}
	s.metrics.exportDone(err)
	partial := errors.Is(err, export.ErrMirrorFailed)
	if err != nil && !partial {
		errorResponse(r, err, applog.OpExport).Header("HX-Reswap", "none").Write(w)
		return
	}

	msg := fmt.Sprintf("Exported %s (%d rows)", res.FileName, res.Rows)
	body := fmt.Sprintf(`<p class="export-status">%s<br><small>%s</small></p>`,
		template.HTMLEscapeString(msg),
		template.HTMLEscapeString(strings.Join(res.Locations, ", ")))

	resp := NewHTMXResponse()
	if partial {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Export mirror failed",
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err)
		resp.TriggerWarningNotification(msg + ", but the spreadsheet copy failed")
	} else {
		resp.TriggerSuccessNotification(msg)
	}
	resp.BodyHTML([]byte(body)).Write(w)
}
