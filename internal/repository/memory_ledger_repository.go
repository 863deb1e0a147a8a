package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/yourusername/surebet/internal/models"
)

// MemoryLedgerRepository is an in-process LedgerRepository for development and tests.
// Entries are copied on the way in and out so callers never share state with the store.
type MemoryLedgerRepository struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*models.LedgerEntry
}

// NewMemoryLedgerRepository creates an empty in-memory ledger repository
func NewMemoryLedgerRepository() *MemoryLedgerRepository {
	return &MemoryLedgerRepository{entries: make(map[uuid.UUID]*models.LedgerEntry)}
}

// Create stores a copy of entry
func (r *MemoryLedgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[entry.ID]; ok {
		if !existing.SameSnapshot(entry) {
			return nil, false, models.ErrDuplicateKey
		}
		return cloneEntry(existing), false, nil
	}

	r.entries[entry.ID] = cloneEntry(entry)
	return cloneEntry(entry), true, nil
}

// GetByID retrieves an entry by ID
func (r *MemoryLedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneEntry(entry), nil
}

// UpdateObservation replaces the note on an entry owned by ownerID
func (r *MemoryLedgerRepository) UpdateObservation(ctx context.Context, ownerID string, id uuid.UUID, observation string) (*models.LedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok || !entry.IsOwnedBy(ownerID) {
		return nil, models.ErrNotFound
	}
	entry.Observation = observation
	return cloneEntry(entry), nil
}

// Delete removes an entry owned by ownerID
func (r *MemoryLedgerRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok || !entry.IsOwnedBy(ownerID) {
		return models.ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

// ListByOwner returns the owner's entries, newest first
func (r *MemoryLedgerRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.LedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*models.LedgerEntry, 0)
	for _, entry := range r.entries {
		if entry.IsOwnedBy(ownerID) {
			entries = append(entries, cloneEntry(entry))
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID.String() > entries[j].ID.String()
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return entries, nil
}

func cloneEntry(entry *models.LedgerEntry) *models.LedgerEntry {
	out := *entry
	out.Odds = append([]float64(nil), entry.Odds...)
	out.Stakes = append([]float64(nil), entry.Stakes...)
	return &out
}
