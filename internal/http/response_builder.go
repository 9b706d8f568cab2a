package http

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// HX-Trigger event names the page script listens for.
const (
	EventAllocationSaved  = "allocation:saved"
	EventFormReset        = "form:reset"
	EventReportRefresh    = "report:refresh"
	EventShowNotification = "show-notification"
)

// Toast lifetimes. Warnings stay up longer since they ask the user to act.
const (
	shortToast = 3 * time.Second
	longToast  = 5 * time.Second
)

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// notification is the show-notification payload read by app.js.
type notification struct {
	Type     NotificationType `json:"type"`
	Message  string           `json:"message"`
	Duration int64            `json:"duration"`
}

type savedEvent struct {
	ID      int64 `json:"id"`
	Created bool  `json:"created"`
}

// HTMXResponseBuilder assembles a partial response: status, extra headers,
// the HX-Trigger event map and an HTML body.
type HTMXResponseBuilder struct {
	status   int
	header   http.Header
	triggers map[string]any
	body     []byte
}

func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		status:   http.StatusOK,
		header:   make(http.Header),
		triggers: make(map[string]any),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.status = code
	return b
}

// StatusCode is the status Write will send.
func (b *HTMXResponseBuilder) StatusCode() int { return b.status }

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.header.Set(name, value)
	return b
}

// Trigger registers an HX-Trigger event. A later call with the same name wins.
func (b *HTMXResponseBuilder) Trigger(name string, detail any) *HTMXResponseBuilder {
	if detail == nil {
		detail = struct{}{}
	}
	b.triggers[name] = detail
	return b
}

// TriggerAllocationSaved tells the page a record was created or updated.
func (b *HTMXResponseBuilder) TriggerAllocationSaved(id int64, created bool) *HTMXResponseBuilder {
	return b.Trigger(EventAllocationSaved, savedEvent{ID: id, Created: created})
}

func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger(EventFormReset, nil)
}

// TriggerReportRefresh makes the report panel re-submit its filter form.
func (b *HTMXResponseBuilder) TriggerReportRefresh() *HTMXResponseBuilder {
	return b.Trigger(EventReportRefresh, nil)
}

func (b *HTMXResponseBuilder) notify(kind NotificationType, message string, d time.Duration) *HTMXResponseBuilder {
	return b.Trigger(EventShowNotification, notification{Type: kind, Message: message, Duration: d.Milliseconds()})
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.notify(NotificationSuccess, message, shortToast)
}

func (b *HTMXResponseBuilder) TriggerWarningNotification(message string) *HTMXResponseBuilder {
	return b.notify(NotificationWarning, message, longToast)
}

func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.notify(NotificationError, message, longToast)
}

func (b *HTMXResponseBuilder) BodyString(content string) *HTMXResponseBuilder {
	b.body = []byte(content)
	return b
}

// BodyHTML sets an HTML fragment as the body.
func (b *HTMXResponseBuilder) BodyHTML(html []byte) *HTMXResponseBuilder {
	b.header.Set("Content-Type", "text/html; charset=utf-8")
	b.body = html
	return b
}

// Write flushes headers, triggers and body to w. It must be called once.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	h := w.Header()
	for name, values := range b.header {
		h[name] = values
	}
	if len(b.triggers) > 0 {
		if encoded, err := json.Marshal(b.triggers); err != nil {
			slog.Error("Encode HX-Trigger", "error", err)
		} else {
			h.Set("HX-Trigger", string(encoded))
		}
	}

	w.WriteHeader(b.status)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse wraps an escaped message in the error fragment.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML([]byte(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`))
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// MethodNotAllowedError answers 405 with the Allow header set.
func MethodNotAllowedError(allowed ...string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", strings.Join(allowed, ", "))
}
