package cli

import (
	"context"
	"fmt"

	"headcount/internal/config"
	"headcount/internal/export"
	gsheet "headcount/internal/sheets/google"
)

// ExportTargets selects the optional destinations next to EXPORT_DIR.
type ExportTargets struct {
	S3     bool
	Sheets bool
}

// ConfiguredTargets enables every destination the environment configures.
func ConfiguredTargets(cfg *config.Config) ExportTargets {
	return ExportTargets{S3: cfg.S3Enabled(), Sheets: cfg.SheetsEnabled()}
}

// SheetsConfig maps the environment onto the Sheets client config.
func SheetsConfig(cfg *config.Config) gsheet.Config {
	return gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		AllocationsSheet:   cfg.GoogleAllocationsSheet,
	}
}

// NewExporter always writes into EXPORT_DIR and fans out to the selected targets.
func NewExporter(ctx context.Context, cfg *config.Config, targets ExportTargets) (*export.Exporter, error) {
	sinks := export.MultiSink{export.DirSink{Dir: cfg.ExportDir}}

	if targets.S3 {
		s3, err := export.NewS3Sink(ctx, export.S3Config{
			Bucket:   cfg.ExportS3Bucket,
			Region:   cfg.ExportS3Region,
			Prefix:   cfg.ExportS3Prefix,
			Endpoint: cfg.ExportS3Endpoint,

			AccessKeyID:     cfg.ExportS3KeyID,
			SecretAccessKey: cfg.ExportS3Secret,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 export: %w", err)
		}
		sinks = append(sinks, s3)
	}

	var mirrors []export.TablePublisher
	if targets.Sheets {
		client, err := gsheet.New(ctx, SheetsConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("sheets export: %w", err)
		}
		mirrors = append(mirrors, client)
	}

	return export.NewExporter(sinks, mirrors...), nil
}
