package tombstones

import "context"

// Repository is the tombstone half of the local durable cache: the set of
// document ids deleted by the user. Membership is terminal; nothing ever
// removes an id from the set.
type Repository interface {
	// Add records a deleted id. Adding an existing id is a no-op.
	Add(ctx context.Context, id string) error

	// Contains reports whether the id has been deleted.
	Contains(ctx context.Context, id string) (bool, error)

	// GetAll returns every tombstoned id.
	GetAll(ctx context.Context) ([]string, error)
}
