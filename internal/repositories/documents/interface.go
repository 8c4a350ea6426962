package documents

import (
	"context"

	"github.com/dmribeiro/recibox/internal/models"
)

// Repository describes the document half of the local durable cache.
// Implementations are backed by the local SQLite database.
type Repository interface {
	// Upsert inserts a new document or overwrites an existing one by Id.
	// Used for local mutations and generator output; it does not consult
	// tombstones, callers own that check.
	Upsert(ctx context.Context, doc *models.Document) error

	// MergeRemote applies one remote record to the cache: upsert by Id
	// unless the id is tombstoned, in which case the record is skipped.
	// The tombstone check happens inside the statement, at merge time,
	// so a deletion landing mid-pass is never overridden.
	// Returns true when the record was written.
	MergeRemote(ctx context.Context, doc *models.Document) (bool, error)

	// GetAll returns every cached document.
	GetAll(ctx context.Context) ([]models.Document, error)

	// GetByID returns a document by its identifier.
	GetByID(ctx context.Context, id string) (*models.Document, error)

	// DeleteByID removes a document row. Recording the tombstone is the
	// caller's responsibility (see the tombstones repository).
	DeleteByID(ctx context.Context, id string) error

	// UpdateStatus sets the status of an existing document.
	UpdateStatus(ctx context.Context, id string, status models.Status) error
}
