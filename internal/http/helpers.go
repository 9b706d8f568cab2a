package http

import (
	"errors"
	"net/http"
	"strings"

	"headcount/internal/core"
	applog "headcount/internal/log"
)

// sanitizeInput drops control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// errorResponse maps a domain error onto an HTMX response.
// Warnings carry 422, a vanished record 404, anything else 500.
func errorResponse(r *http.Request, err error, op string) *HTMXResponseBuilder {
	var ve *core.ValidationError
	var nf *core.NotFoundError
	switch {
	case errors.As(err, &ve):
		return UnprocessableEntityError(ve.Error()).TriggerWarningNotification(ve.Error())
	case errors.Is(err, core.ErrNoRowSelected):
		return UnprocessableEntityError("Select a row to edit").TriggerWarningNotification("Select a row to edit")
	case errors.Is(err, core.ErrEmptyExport):
		return UnprocessableEntityError("Nothing to export").TriggerWarningNotification("Nothing to export")
	case errors.As(err, &nf):
		return NotFoundError(nf.Error()).TriggerWarningNotification(nf.Error())
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError("Record not found")
	}

	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogError(r.Context(), "Request failed", err, op, nil)
	return InternalServerError("Internal error").TriggerErrorNotification("Something went wrong, please retry")
}
