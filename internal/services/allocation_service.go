package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"headcount/internal/core"
	"headcount/internal/ports"
)

// SavedHook runs after a record is committed.
type SavedHook func(ctx context.Context, rec core.AllocationRecord, created bool)

// AllocationService orchestrates writes across the record store and the event publisher.
type AllocationService struct {
	store     ports.RecordStore
	publisher ports.EventPublisher
	hooks     []SavedHook
}

// NewAllocationService wires the store with an optional publisher (nil disables events).
func NewAllocationService(store ports.RecordStore, publisher ports.EventPublisher) *AllocationService {
	return &AllocationService{
		store:     store,
		publisher: publisher,
	}
}

// OnSaved registers a hook, e.g. report cache invalidation.
func (s *AllocationService) OnSaved(h SavedHook) {
	s.hooks = append(s.hooks, h)
}

// Create saves a new record and announces it.
func (s *AllocationService) Create(ctx context.Context, rec core.AllocationRecord) (int64, error) {
	id, err := s.store.Create(ctx, rec)
	if err != nil {
		return 0, fmt.Errorf("save allocation: %w", err)
	}
	rec.ID = id
	rec.Department = core.Department(rec.Department).Department
	s.saved(ctx, rec, true)
	return id, nil
}

// Update overwrites rec.ID. A vanished record yields a *core.NotFoundError.
func (s *AllocationService) Update(ctx context.Context, rec core.AllocationRecord) error {
	if err := s.store.Update(ctx, rec); err != nil {
		var nf *core.NotFoundError
		if errors.As(err, &nf) {
			return nf
		}
		return fmt.Errorf("update allocation: %w", err)
	}
	rec.Department = core.Department(rec.Department).Department
	s.saved(ctx, rec, false)
	return nil
}

func (s *AllocationService) Get(ctx context.Context, id int64) (core.AllocationRecord, error) {
	return s.store.Get(ctx, id)
}

// Departments lists the distinct department names in the store, sorted.
func (s *AllocationService) Departments(ctx context.Context) ([]string, error) {
	deps, err := s.store.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return deps, nil
}

func (s *AllocationService) saved(ctx context.Context, rec core.AllocationRecord, created bool) {
	for _, h := range s.hooks {
		h(ctx, rec, created)
	}
	if err := s.publishSaved(ctx, rec, created); err != nil {
		// Best effort: the save is already committed.
		slog.ErrorContext(ctx, "Failed to publish allocation saved message",
			"id", rec.ID, "error", err)
	}
}

func (s *AllocationService) publishSaved(ctx context.Context, rec core.AllocationRecord, created bool) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not configured, skipping allocation message")
		return nil
	}
	return s.publisher.PublishAllocationSaved(ctx, rec, created)
}

// Close releases the store and the publisher when it holds a connection.
func (s *AllocationService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c, ok := s.publisher.(interface{ Close() error }); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close allocation service: %w", errors.Join(errs...))
	}
	return nil
}
