package contracts

import (
	"context"

	"github.com/dmribeiro/recibox/internal/models"
)

// Repository holds the read-only contract snapshot consumed by the recurring
// generator. The snapshot is owned by the contract-management subsystem; this
// engine only imports and reads it.
type Repository interface {
	// GetAll returns the current snapshot.
	GetAll(ctx context.Context) ([]models.Contract, error)

	// ReplaceAll swaps the whole snapshot for a fresh one.
	ReplaceAll(ctx context.Context, contracts []models.Contract) error
}
