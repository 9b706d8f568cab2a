package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"headcount/internal/core"
	"headcount/internal/export"
	"headcount/internal/ports"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultAllocationsSheet holds the live record mirror.
const DefaultAllocationsSheet = "Allocations"

type Config struct {
	SpreadsheetID      string
	ServiceAccountFile string
	ServiceAccountJSON string
	AllocationsSheet   string
}

type Client struct {
	svc              *gsheet.Service
	spreadsheetID    string
	allocationsSheet string
}

var (
	_ export.TablePublisher  = (*Client)(nil)
	_ ports.AllocationMirror = (*Client)(nil)
)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.AllocationsSheet), nil
}

// NewWithService wraps an existing service, e.g. one pointed at a test endpoint.
func NewWithService(svc *gsheet.Service, spreadsheetID, allocationsSheet string) *Client {
	if strings.TrimSpace(allocationsSheet) == "" {
		allocationsSheet = DefaultAllocationsSheet
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, allocationsSheet: allocationsSheet}
}

// newSheetsService resolves credentials in order: inline JSON, key file,
// then GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	inline := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case inline != "":
		credentialsJSON = []byte(inline)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service",
		"inline_credentials", inline != "",
		"credentials_file", file,
		"scope", gsheet.SpreadsheetsScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// PublishTable writes an export into a tab named after the file, replacing
// whatever the tab held before.
func (c *Client) PublishTable(ctx context.Context, name string, t export.Table) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	tab := tabName(name)
	if _, err := c.ensureTab(ctx, tab); err != nil {
		return err
	}

	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, a1(tab, "A:E"), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", tab, err)
	}

	vr := &gsheet.ValueRange{Values: t.Values()}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, a1(tab, "A1"), vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s: %w", tab, err)
	}

	slog.InfoContext(ctx, "Export mirrored to Google Sheets", "tab", tab, "rows", len(t.Rows))
	return nil
}

// UpsertAllocation rewrites the row holding rec.ID, or adds one after the last used row.
func (c *Client) UpsertAllocation(ctx context.Context, rec core.AllocationRecord) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	created, err := c.ensureTab(ctx, c.allocationsSheet)
	if err != nil {
		return err
	}
	if created {
		header := &gsheet.ValueRange{Values: [][]any{headerRow()}}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, a1(c.allocationsSheet, "A1"), header).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("write header in %s: %w", c.allocationsSheet, err)
		}
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, a1(c.allocationsSheet, "A:A")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read ids from %s: %w", c.allocationsSheet, err)
	}
	row, found := findIDRow(resp.Values, rec.ID)
	if !found {
		row = len(resp.Values) + 1
	}

	rng := a1(c.allocationsSheet, fmt.Sprintf("A%d:E%d", row, row))
	vr := &gsheet.ValueRange{Values: [][]any{allocationRow(rec)}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s: %w", rng, err)
	}

	slog.DebugContext(ctx, "Allocation mirrored", "id", rec.ID, "range", rng, "updated", found)
	return nil
}

// ensureTab adds the tab when missing and reports whether it did.
func (c *Client) ensureTab(ctx context.Context, title string) (bool, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return false, nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("add sheet %q: %w", title, err)
	}
	slog.InfoContext(ctx, "Sheet created", "title", title)
	return true, nil
}
