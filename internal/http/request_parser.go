// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"headcount/internal/core"
	"headcount/internal/services"
)

// maxBodyBytes caps form and JSON bodies.
const maxBodyBytes = 64 << 10

// ReportParams are the report query parameters after defaults are applied.
type ReportParams struct {
	Filter core.DepartmentFilter
	Start  core.Date
	End    core.Date
}

// ParseReportParams reads department, start and end (YYYY-MM-DD) from the query.
// A blank or unparseable bound falls back to the default range ending today.
func ParseReportParams(query url.Values, now time.Time) ReportParams {
	start, end := services.DefaultRange(now)
	params := ReportParams{
		Filter: core.ParseDepartmentFilter(sanitizeInput(query.Get("department"))),
		Start:  start,
		End:    end,
	}

	if v := strings.TrimSpace(query.Get("start")); v != "" {
		if d, err := core.ParseISODate(v); err == nil {
			params.Start = d
		}
	}
	if v := strings.TrimSpace(query.Get("end")); v != "" {
		if d, err := core.ParseISODate(v); err == nil {
			params.End = d
		}
	}

	return params
}

// ParseRowIndex reads the zero-based report row index from form field "row".
// ok is false when the field is missing or not a non-negative integer.
func ParseRowIndex(form url.Values) (int, bool) {
	v := strings.TrimSpace(form.Get("row"))
	if v == "" {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// FormInput maps the allocation fields of the body onto a form submission.
func (p *RequestBodyParser) FormInput() services.FormInput {
	return services.FormInput{
		Department: p.Get("department"),
		Cairo:      p.Get("cairo_count"),
		Tenth:      p.Get("tenth_count"),
		Date:       p.Get("date"),
	}
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(methods...)
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// ParseFormOrFail parses the request form and returns an error response on failure.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}
