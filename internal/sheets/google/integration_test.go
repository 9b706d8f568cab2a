//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"headcount/internal/core"
	"headcount/internal/export"
)

// Integration tests require a real spreadsheet shared with the service account.
// Run with: go test -tags=integration ./internal/sheets/google

func integrationClient(t *testing.T) *Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	cfg := Config{
		SpreadsheetID:      os.Getenv("GOOGLE_SPREADSHEET_ID"),
		ServiceAccountFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
		ServiceAccountJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		AllocationsSheet:   "Allocations (integration)",
	}
	if cfg.SpreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	c, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

func TestIntegration_UpsertAllocation(t *testing.T) {
	c := integrationClient(t)
	ctx := context.Background()

	rec := core.AllocationRecord{ID: time.Now().Unix(), Department: "Integration", CairoCount: 1, TenthCount: 2, Date: core.Today()}
	if err := c.UpsertAllocation(ctx, rec); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	rec.CairoCount = 4
	if err := c.UpsertAllocation(ctx, rec); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
}

func TestIntegration_PublishTable(t *testing.T) {
	c := integrationClient(t)

	table, err := export.BuildTable([]core.RenderedRow{{ID: "1", Department: "Integration", Cairo: 1, Tenth: 2, Date: core.Today().Display()}})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.PublishTable(context.Background(), "report_integration.xlsx", table); err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func TestIntegration_ContextCancellation(t *testing.T) {
	c := integrationClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.UpsertAllocation(ctx, core.AllocationRecord{ID: 1, Department: "x", Date: core.Today()}); err == nil {
		t.Error("expected error with cancelled context")
	}
}
