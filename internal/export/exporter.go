package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"headcount/internal/core"
)

// Sink stores an encoded workbook under name, replacing any previous object.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) (location string, err error)
}

// MultiPutter is implemented by sinks that write to several destinations
// and report each location separately.
type MultiPutter interface {
	PutAll(ctx context.Context, name string, data []byte) ([]string, error)
}

// ErrMirrorFailed marks an export whose workbook was stored but whose
// mirror copy could not be written. Export returns the Result with it.
var ErrMirrorFailed = errors.New("export mirror failed")

// TablePublisher mirrors the raw table somewhere that is not a file, such as a spreadsheet service.
type TablePublisher interface {
	PublishTable(ctx context.Context, name string, t Table) error
}

type Result struct {
	FileName  string
	Locations []string
	Rows      int
	Total     Row
}

type Exporter struct {
	sink    Sink
	mirrors []TablePublisher
}

func NewExporter(sink Sink, mirrors ...TablePublisher) *Exporter {
	return &Exporter{sink: sink, mirrors: mirrors}
}

// Export writes the rendered rows plus a totals row. Empty input returns
// core.ErrEmptyExport and writes nothing. A mirror failure after the
// workbook was stored returns the full Result and an error wrapping
// ErrMirrorFailed.
func (e *Exporter) Export(ctx context.Context, rows []core.RenderedRow, now time.Time) (Result, error) {
	t, err := BuildTable(rows)
	if err != nil {
		return Result{}, err
	}

	data, err := EncodeXLSX(t)
	if err != nil {
		return Result{}, err
	}

	name := FileName(now)
	locations, err := e.put(ctx, name, data)
	if err != nil {
		return Result{}, fmt.Errorf("store %s: %w", name, err)
	}
	res := Result{FileName: name, Locations: locations, Rows: len(t.Rows), Total: t.Total}

	for _, m := range e.mirrors {
		if err := m.PublishTable(ctx, name, t); err != nil {
			slog.WarnContext(ctx, "Report stored but mirror failed", "file", name, "error", err)
			return res, fmt.Errorf("mirror %s: %w: %w", name, ErrMirrorFailed, err)
		}
	}

	slog.InfoContext(ctx, "Report exported",
		"file", name,
		"rows", res.Rows,
		"locations", res.Locations,
		"grand_total", t.Total.Cairo+t.Total.Tenth)
	return res, nil
}

func (e *Exporter) put(ctx context.Context, name string, data []byte) ([]string, error) {
	if mp, ok := e.sink.(MultiPutter); ok {
		return mp.PutAll(ctx, name, data)
	}
	loc, err := e.sink.Put(ctx, name, data)
	if err != nil {
		return nil, err
	}
	return []string{loc}, nil
}

// DirSink writes files into a local directory.
type DirSink struct {
	Dir string
}

func (s DirSink) Put(_ context.Context, name string, data []byte) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}

// MultiSink writes to every sink in order; the first error aborts.
type MultiSink []Sink

// PutAll returns one location per sink.
func (m MultiSink) PutAll(ctx context.Context, name string, data []byte) ([]string, error) {
	if len(m) == 0 {
		return nil, errors.New("no export sinks configured")
	}
	locs := make([]string, 0, len(m))
	for _, s := range m {
		loc, err := s.Put(ctx, name, data)
		if err != nil {
			return nil, err
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

// Put joins the locations for callers that only know Sink.
func (m MultiSink) Put(ctx context.Context, name string, data []byte) (string, error) {
	locs, err := m.PutAll(ctx, name, data)
	if err != nil {
		return "", err
	}
	return strings.Join(locs, ", "), nil
}
