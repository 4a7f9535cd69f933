package backend

import (
	"context"

	"github.com/Edjery/budget-trackr/internal/amqp"
	"github.com/Edjery/budget-trackr/internal/blob"
	"github.com/Edjery/budget-trackr/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the blob store, the optional change publisher and
// the function releasing both
type BackendResult struct {
	Store   blob.Store
	AMQP    *amqp.Client
	Cleanup CleanupFunc
}

// Notifier returns the change publisher, or nil when AMQP is not configured
func (r *BackendResult) Notifier() services.Notifier {
	if r.AMQP == nil {
		return nil
	}
	return r.AMQP
}

// Close runs Cleanup if set
func (r *BackendResult) Close() error {
	if r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
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

	// Optional change events
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
