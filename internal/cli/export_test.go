package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"headcount/internal/config"
	"headcount/internal/core"
)

func TestConfiguredTargets(t *testing.T) {
	cfg := &config.Config{ExportS3Bucket: "reports"}
	assert.Equal(t, ExportTargets{S3: true}, ConfiguredTargets(cfg))

	cfg = &config.Config{GoogleSpreadsheetID: "sheet"}
	assert.Equal(t, ExportTargets{Sheets: true}, ConfiguredTargets(cfg))
}

func TestSheetsConfig(t *testing.T) {
	got := SheetsConfig(&config.Config{
		GoogleSpreadsheetID:      "id",
		GoogleServiceAccountFile: "sa.json",
		GoogleAllocationsSheet:   "Mirror",
	})
	assert.Equal(t, "id", got.SpreadsheetID)
	assert.Equal(t, "sa.json", got.ServiceAccountFile)
	assert.Equal(t, "Mirror", got.AllocationsSheet)
}

func TestNewExporterDirOnly(t *testing.T) {
	dir := t.TempDir()
	exp, err := NewExporter(context.Background(), &config.Config{ExportDir: dir}, ExportTargets{})
	require.NoError(t, err)

	rows := []core.RenderedRow{{ID: "1", Department: "Sales", Cairo: 5, Tenth: 3, Date: "10/01/2024"}}
	res, err := exp.Export(context.Background(), rows, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "report_2024-01-20.xlsx", res.FileName)

	_, err = os.Stat(filepath.Join(dir, res.FileName))
	assert.NoError(t, err)
}

func TestNewExporterRejectsMisconfiguredTargets(t *testing.T) {
	_, err := NewExporter(context.Background(), &config.Config{ExportDir: t.TempDir()}, ExportTargets{S3: true})
	assert.ErrorContains(t, err, "s3 export")

	_, err = NewExporter(context.Background(), &config.Config{ExportDir: t.TempDir()}, ExportTargets{Sheets: true})
	assert.ErrorContains(t, err, "missing GOOGLE_SPREADSHEET_ID")
}
