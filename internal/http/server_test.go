package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"headcount/internal/cache"
	"headcount/internal/core"
	"headcount/internal/export"
	"headcount/internal/ports"
	"headcount/internal/services"
	"headcount/internal/storage/memory"
)

var testNow = time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	srv       *Server
	store     *memory.Store
	exportDir string
}

func newTestServer(t *testing.T, seed ...core.AllocationRecord) *testEnv {
	t.Helper()
	store := memory.New(seed...)
	dir := t.TempDir()
	return buildTestServer(t, store, store, export.NewExporter(export.DirSink{Dir: dir}), dir)
}

func buildTestServer(t *testing.T, store *memory.Store, records ports.RecordStore, exporter *export.Exporter, dir string) *testEnv {
	t.Helper()
	svc := services.NewAllocationService(records, nil)
	reportCache := cache.NewLRUCache[core.Report](8, time.Minute)

	srv, err := NewServer(context.Background(), Options{
		Addr:       ":0",
		Service:    svc,
		Reports:    services.NewReportEngine(records, reportCache),
		Exporter:   exporter,
		Store:      store,
		Clock:      func() time.Time { return testNow },
		CacheStats: reportCache.Stats,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testEnv{srv: srv, store: store, exportDir: dir}
}

// brokenStore fails every write.
type brokenStore struct {
	*memory.Store
}

func (brokenStore) Create(context.Context, core.AllocationRecord) (int64, error) {
	return 0, errors.New("database is locked")
}

type failingMirror struct{}

func (failingMirror) PublishTable(context.Context, string, export.Table) error {
	return errors.New("quota exceeded")
}

func (e *testEnv) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestIndexAndHealth(t *testing.T) {
	env := newTestServer(t, core.AllocationRecord{Department: "Sales", Date: core.NewDate(2024, 1, 1)})

	rr := env.do(t, http.MethodGet, "/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Workforce allocation", `value="2024-01-20"`, `value="2023-12-21"`, `<option value="Sales">`, "No records"} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("expected security headers on index")
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := env.do(t, http.MethodGet, path, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", path, rr.Code, rr.Body.String())
		}
	}

	if rr := env.do(t, http.MethodGet, "/nope", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown path status=%d", rr.Code)
	}
}

func TestStaticAssets(t *testing.T) {
	env := newTestServer(t)
	rr := env.do(t, http.MethodGet, "/static/app.css", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("static status=%d", rr.Code)
	}
	if rr.Header().Get("Cache-Control") == "" {
		t.Error("expected cache headers on static asset")
	}
}

func TestSaveAllocationValidation(t *testing.T) {
	env := newTestServer(t)

	if rr := env.do(t, http.MethodGet, "/allocations", nil); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}

	tests := []struct {
		name string
		form url.Values
	}{
		{"non-numeric count", url.Values{"department": {"Sales"}, "cairo_count": {"abc"}, "tenth_count": {"2"}}},
		{"negative count", url.Values{"department": {"Sales"}, "cairo_count": {"-1"}, "tenth_count": {"2"}}},
		{"missing department", url.Values{"department": {"  "}, "cairo_count": {"1"}, "tenth_count": {"2"}}},
		{"bad date", url.Values{"department": {"Sales"}, "cairo_count": {"1"}, "date": {"20/01/2024"}}},
		{"wildcard department name", url.Values{"department": {"All"}, "cairo_count": {"1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/allocations", tt.form)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", rr.Code)
			}
			if !strings.Contains(rr.Body.String(), `name="cairo_count" inputmode="numeric" value="0"`) {
				t.Errorf("expected counts reset to 0, body=%s", rr.Body.String())
			}
			if !strings.Contains(rr.Header().Get("HX-Trigger"), `"type":"warning"`) {
				t.Errorf("expected warning notification, got %q", rr.Header().Get("HX-Trigger"))
			}
		})
	}

	if n, _ := env.store.Count(context.Background()); n != 0 {
		t.Fatalf("store should be untouched, count=%d", n)
	}
}

func TestCreateReportEditFlow(t *testing.T) {
	env := newTestServer(t)

	rr := env.do(t, http.MethodPost, "/allocations", url.Values{
		"department": {"Sales"}, "cairo_count": {"5"}, "tenth_count": {"3"}, "date": {"2024-01-10"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("save status=%d body=%s", rr.Code, rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	for _, want := range []string{`"allocation:saved"`, `"report:refresh"`, `"created":true`} {
		if !strings.Contains(trigger, want) {
			t.Errorf("HX-Trigger missing %q: %s", want, trigger)
		}
	}
	if !strings.Contains(rr.Body.String(), `<option value="Sales">`) {
		t.Error("new department should appear in the form list")
	}

	rr = env.do(t, http.MethodGet, "/report?department=Sales&start=2024-01-01&end=2024-01-31", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("report status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`<td>10/01/2024</td>`,
		`<dd id="total-cairo">5</dd>`,
		`<dd id="total-tenth">3</dd>`,
		`<dd id="total-daily">8</dd>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("report missing %q", want)
		}
	}

	rr = env.do(t, http.MethodPost, "/allocations/edit", url.Values{"row": {"0"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("edit status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Editing record #1") || !strings.Contains(rr.Body.String(), services.CaptionEdit) {
		t.Fatalf("expected editing form, body=%s", rr.Body.String())
	}

	rr = env.do(t, http.MethodPost, "/allocations", url.Values{
		"department": {"Sales"}, "cairo_count": {"7"}, "tenth_count": {"1"}, "date": {"2024-01-10"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), `"created":false`) {
		t.Errorf("expected update trigger, got %s", rr.Header().Get("HX-Trigger"))
	}

	rr = env.do(t, http.MethodGet, "/report?department=all&start=2024-01-01&end=2024-01-31", nil)
	if !strings.Contains(rr.Body.String(), `<dd id="total-daily">8</dd>`) {
		t.Errorf("expected updated totals 7+1, body=%s", rr.Body.String())
	}
	if n, _ := env.store.Count(context.Background()); n != 1 {
		t.Fatalf("update must not add a record, count=%d", n)
	}
}

func TestSaveAllocationStoreFailure(t *testing.T) {
	store := memory.New()
	env := buildTestServer(t, store, brokenStore{store}, export.NewExporter(export.DirSink{Dir: t.TempDir()}), "")

	rr := env.do(t, http.MethodPost, "/allocations", url.Values{"department": {"Sales"}, "cairo_count": {"1"}})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	body := rr.Body.String()
	if strings.Contains(body, "allocation-form") {
		t.Error("server errors should not re-render the form")
	}
	if strings.Contains(body, "database is locked") {
		t.Error("internal error details leaked to the client")
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), `"type":"error"`) {
		t.Errorf("expected error notification, got %q", rr.Header().Get("HX-Trigger"))
	}
}

func TestEditWithoutSelection(t *testing.T) {
	env := newTestServer(t)

	for _, form := range []url.Values{{}, {"row": {"3"}}, {"row": {"x"}}} {
		rr := env.do(t, http.MethodPost, "/allocations/edit", form)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("form %v: expected 422, got %d", form, rr.Code)
		}
		if rr.Header().Get("HX-Reswap") != "none" {
			t.Errorf("form %v: warning should not replace the form", form)
		}
	}
}

func TestResetForm(t *testing.T) {
	env := newTestServer(t, core.AllocationRecord{Department: "HR", CairoCount: 2, Date: core.NewDate(2024, 1, 5)})
	env.do(t, http.MethodGet, "/report", nil)
	env.do(t, http.MethodPost, "/allocations/edit", url.Values{"row": {"0"}})

	rr := env.do(t, http.MethodPost, "/allocations/reset", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("reset status=%d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "Editing record") {
		t.Fatal("expected creating form after reset")
	}
}

func TestExport(t *testing.T) {
	env := newTestServer(t, core.AllocationRecord{Department: "Sales", CairoCount: 5, TenthCount: 3, Date: core.NewDate(2024, 1, 10)})

	rr := env.do(t, http.MethodPost, "/report/export", nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty export: expected 422, got %d", rr.Code)
	}
	if entries, _ := os.ReadDir(env.exportDir); len(entries) != 0 {
		t.Fatalf("empty export wrote %d files", len(entries))
	}

	env.do(t, http.MethodGet, "/report?start=2024-01-01&end=2024-01-31", nil)
	rr = env.do(t, http.MethodPost, "/report/export", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("export status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "report_2024-01-20.xlsx") {
		t.Errorf("export body missing file name: %s", rr.Body.String())
	}
	if _, err := os.Stat(filepath.Join(env.exportDir, "report_2024-01-20.xlsx")); err != nil {
		t.Fatalf("expected export file: %v", err)
	}
}

func TestExportMirrorFailureIsPartialSuccess(t *testing.T) {
	store := memory.New(core.AllocationRecord{Department: "Sales", CairoCount: 5, TenthCount: 3, Date: core.NewDate(2024, 1, 10)})
	dir := t.TempDir()
	env := buildTestServer(t, store, store, export.NewExporter(export.DirSink{Dir: dir}, failingMirror{}), dir)

	env.do(t, http.MethodGet, "/report?start=2024-01-01&end=2024-01-31", nil)
	rr := env.do(t, http.MethodPost, "/report/export", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for a stored workbook, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "report_2024-01-20.xlsx") {
		t.Errorf("body should name the written file: %s", rr.Body.String())
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), `"type":"warning"`) {
		t.Errorf("expected warning notification, got %q", rr.Header().Get("HX-Trigger"))
	}
	if _, err := os.Stat(filepath.Join(dir, "report_2024-01-20.xlsx")); err != nil {
		t.Fatalf("expected export file: %v", err)
	}

	metrics := env.do(t, http.MethodGet, "/metrics", nil).Body.String()
	if !strings.Contains(metrics, `headcount_report_exports_total{outcome="partial"} 1`) {
		t.Error("partial export should be counted")
	}
}

func TestDepartmentsJSON(t *testing.T) {
	env := newTestServer(t,
		core.AllocationRecord{Department: "Sales", Date: core.NewDate(2024, 1, 1)},
		core.AllocationRecord{Department: "HR", Date: core.NewDate(2024, 1, 1)},
	)

	rr := env.do(t, http.MethodGet, "/departments", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var deps []string
	if err := json.Unmarshal(rr.Body.Bytes(), &deps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{core.AllDepartmentsLabel, "HR", "Sales"}
	if strings.Join(deps, ",") != strings.Join(want, ",") {
		t.Fatalf("departments = %q, want %q", deps, want)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestServer(t)
	env.do(t, http.MethodGet, "/healthz", nil)
	env.do(t, http.MethodPost, "/allocations", url.Values{"department": {"Ops"}, "cairo_count": {"1"}})
	env.do(t, http.MethodGet, "/report", nil)

	rr := env.do(t, http.MethodGet, "/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`headcount_http_requests_total{code="200",method="GET",path="/healthz"} 1`,
		`headcount_allocations_saved_total{operation="create"} 1`,
		`headcount_report_rows_count 1`,
		`headcount_report_cache_misses_total 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestNewServerRequiresCollaborators(t *testing.T) {
	if _, err := NewServer(context.Background(), Options{}); err == nil {
		t.Fatal("expected error without service")
	}
}
