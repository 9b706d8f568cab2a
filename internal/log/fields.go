package log

// Field names shared by every component.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldRecordID   = "record_id"
	FieldDepartment = "department"
	FieldCairo      = "cairo_count"
	FieldTenth      = "tenth_count"
	FieldDate       = "date"
	FieldCreated    = "created"
	FieldRows       = "rows"
)

const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentForm     = "form"
	ComponentReport   = "report"
	ComponentSheets   = "sheets"
	ComponentCache    = "cache"
	ComponentSecurity = "security"
	ComponentCLI      = "cli"
)

// Operation labels used in error logs and metrics.
const (
	OpCreate = "create"
	OpRead   = "read"
	OpUpdate = "update"
	OpList   = "list"
	OpQuery  = "query"
	OpExport = "export"
	OpRender = "render"
)

// LogFields collects attributes before handing them to slog.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds the error message; nil is ignored.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithAllocation adds the fields of a saved headcount record.
func (f LogFields) WithAllocation(id int64, department string, cairo, tenth int, date string) LogFields {
	f[FieldRecordID] = id
	f[FieldDepartment] = department
	f[FieldCairo] = cairo
	f[FieldTenth] = tenth
	f[FieldDate] = date
	return f
}

// ToSlice flattens the map into slog's alternating key/value form.
func (f LogFields) ToSlice() []any {
	out := make([]any, 0, len(f)*2)
	for k, v := range f {
		out = append(out, k, v)
	}
	return out
}
