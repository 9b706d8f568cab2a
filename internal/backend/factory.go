package backend

import (
	"context"
	"fmt"
	"log/slog"

	"headcount/internal/amqp"
	"headcount/internal/services"
	"headcount/internal/storage"
	"headcount/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var store Backend
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		store = repo
	case MemoryBackend:
		mem := memory.NewFromFile(config.DepartmentsSeedFile)
		deps, _ := mem.ListDepartments(ctx)
		f.logger.InfoContext(ctx, "Initialized memory backend",
			"seed_file", config.DepartmentsSeedFile,
			"departments", len(deps))
		store = mem
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	svc, eventsEnabled := f.newService(ctx, store, config)
	return &BackendResult{
		Store:         store,
		Service:       svc,
		EventsEnabled: eventsEnabled,
		Cleanup:       svc.Close,
	}, nil
}

// newService attaches the AMQP publisher when configured. A broker that is
// down at startup disables events rather than the application.
func (f *DefaultFactory) newService(ctx context.Context, store Backend, config Config) (*services.AllocationService, bool) {
	if config.AMQPURL == "" {
		return services.NewAllocationService(store, nil), false
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", "error", err)
		return services.NewAllocationService(store, nil), false
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return services.NewAllocationService(store, client), true
}
