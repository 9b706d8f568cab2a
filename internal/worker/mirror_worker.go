package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"headcount/internal/amqp"
	"headcount/internal/core"
	"headcount/internal/ports"
)

// MirrorWorker copies saved allocations from the record store to an external mirror.
type MirrorWorker struct {
	store  ports.RecordReader
	mirror ports.AllocationMirror
}

func NewMirrorWorker(store ports.RecordReader, mirror ports.AllocationMirror) *MirrorWorker {
	return &MirrorWorker{store: store, mirror: mirror}
}

// HandleAllocationSaved processes a single allocation_saved message from AMQP.
// The store copy wins over the message payload; the payload is only used when
// this worker reads a different store than the publisher.
func (w *MirrorWorker) HandleAllocationSaved(ctx context.Context, msg *amqp.AllocationSavedMessage) error {
	slog.InfoContext(ctx, "Processing allocation_saved message",
		"id", msg.ID,
		"created", msg.Created)

	rec, err := w.store.Get(ctx, msg.ID)
	switch {
	case errors.Is(err, core.ErrNotFound):
		rec, err = msg.Record()
		if err != nil {
			return fmt.Errorf("decode message record: %w", err)
		}
		slog.WarnContext(ctx, "Record missing from store, mirroring message payload", "id", msg.ID)
	case err != nil:
		return fmt.Errorf("get allocation from store: %w", err)
	}

	if err := w.mirror.UpsertAllocation(ctx, rec); err != nil {
		return fmt.Errorf("mirror allocation %d: %w", rec.ID, err)
	}

	slog.InfoContext(ctx, "Successfully mirrored allocation",
		"id", rec.ID,
		"department", rec.Department,
		"total", rec.Total())
	return nil
}

// SyncRange mirrors every record dated within [start, end]. It recovers from
// messages lost while the worker was down. Individual failures are logged and
// counted rather than aborting the pass.
func (w *MirrorWorker) SyncRange(ctx context.Context, start, end core.Date) (synced, failed int, err error) {
	records, err := w.store.Query(ctx, core.AllDepartments(), start, end)
	if err != nil {
		return 0, 0, fmt.Errorf("query allocations for sync: %w", err)
	}
	if len(records) == 0 {
		slog.InfoContext(ctx, "No allocations to mirror", "start", start.ISO(), "end", end.ISO())
		return 0, 0, nil
	}

	for _, rec := range records {
		if ctx.Err() != nil {
			return synced, failed, ctx.Err()
		}
		if err := w.mirror.UpsertAllocation(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror allocation during sync", "id", rec.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Mirror sync completed",
		"total", len(records),
		"synced", synced,
		"errors", failed)
	return synced, failed, nil
}
