package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yourusername/surebet/internal/models"
)

// LedgerRepository defines the persistence port for ledger entries.
//
// Create is idempotent on entry.ID and returns the stored row. created is false
// when the id already held the same snapshot for the same owner; any other
// existing row under that id returns models.ErrDuplicateKey. UpdateObservation and Delete are owner-guarded and
// return models.ErrNotFound when no row matches both id and owner.
type LedgerRepository interface {
	Create(ctx context.Context, entry *models.LedgerEntry) (stored *models.LedgerEntry, created bool, err error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error)
	UpdateObservation(ctx context.Context, ownerID string, id uuid.UUID, observation string) (*models.LedgerEntry, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID string) ([]*models.LedgerEntry, error)
}
