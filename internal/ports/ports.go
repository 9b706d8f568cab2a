package ports

import (
	"context"
	"time"

	"headcount/internal/core"
)

// Ports for the record store and outbound adapters.
type (
	RecordWriter interface {
		Create(ctx context.Context, rec core.AllocationRecord) (id int64, err error)
		// Update overwrites every field of rec.ID. It returns an error wrapping
		// core.ErrNotFound when the record is gone.
		Update(ctx context.Context, rec core.AllocationRecord) error
	}

	RecordReader interface {
		Get(ctx context.Context, id int64) (core.AllocationRecord, error)
		// Query returns records in [start, end] ordered by id. start after end yields no rows.
		Query(ctx context.Context, filter core.DepartmentFilter, start, end core.Date) ([]core.AllocationRecord, error)
		Count(ctx context.Context) (int64, error)
	}

	// DepartmentLister projects the distinct department names, sorted.
	DepartmentLister interface {
		ListDepartments(ctx context.Context) ([]string, error)
	}

	// RecordStore is everything the form controller and report engine need.
	RecordStore interface {
		RecordWriter
		RecordReader
		DepartmentLister
		Close() error
	}

	// EventPublisher announces saved records to downstream consumers.
	EventPublisher interface {
		PublishAllocationSaved(ctx context.Context, rec core.AllocationRecord, created bool) error
	}

	// AllocationMirror keeps an external copy of each record, keyed by id.
	AllocationMirror interface {
		UpsertAllocation(ctx context.Context, rec core.AllocationRecord) error
	}

	// Clock lets tests pin "today".
	Clock func() time.Time
)
