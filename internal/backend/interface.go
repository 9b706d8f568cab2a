package backend

import (
	"context"

	"headcount/internal/ports"
	"headcount/internal/services"
)

// Backend is a record store that can report its own health.
type Backend interface {
	ports.RecordStore
	Ping(ctx context.Context) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the store, the write service built on top of it
// and the cleanup for both.
type BackendResult struct {
	Store   Backend
	Service *services.AllocationService
	// EventsEnabled reports whether saves are published to AMQP.
	EventsEnabled bool
	Cleanup       CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory specific: one department name per line, offered in the
	// department lists without creating records.
	DepartmentsSeedFile string

	// Optional event publishing, either backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
