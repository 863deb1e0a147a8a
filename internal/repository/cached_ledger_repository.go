package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/yourusername/surebet/internal/models"
)

// CachedLedgerRepository decorates a LedgerRepository with a per-owner
// listing cache. Every write through the decorator invalidates the owner's listing
// and bumps the owner's generation; a listing read that raced a write is not cached.
type CachedLedgerRepository struct {
	next      LedgerRepository
	listings  *cache.Cache
	hitCount  uint64
	missCount uint64

	mu          sync.Mutex
	generations map[string]uint64
}

// NewCachedLedgerRepository wraps next with a listing cache of the given TTL
func NewCachedLedgerRepository(next LedgerRepository, ttl time.Duration) *CachedLedgerRepository {
	return &CachedLedgerRepository{
		next:        next,
		listings:    cache.New(ttl, ttl*2),
		generations: make(map[string]uint64),
	}
}

// Create inserts through to the wrapped repository. A replay leaves the listing alone.
func (c *CachedLedgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, bool, error) {
	stored, created, err := c.next.Create(ctx, entry)
	if err != nil {
		return nil, false, err
	}
	if created {
		c.invalidate(entry.OwnerID)
	}
	return stored, created, nil
}

// GetByID is not cached; ownership checks always see the stored row
func (c *CachedLedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error) {
	return c.next.GetByID(ctx, id)
}

// UpdateObservation updates through and invalidates the owner's listing
func (c *CachedLedgerRepository) UpdateObservation(ctx context.Context, ownerID string, id uuid.UUID, observation string) (*models.LedgerEntry, error) {
	entry, err := c.next.UpdateObservation(ctx, ownerID, id, observation)
	if err != nil {
		return nil, err
	}
	c.invalidate(ownerID)
	return entry, nil
}

// Delete deletes through and invalidates the owner's listing
func (c *CachedLedgerRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	if err := c.next.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	c.invalidate(ownerID)
	return nil
}

// ListByOwner serves from cache when possible
func (c *CachedLedgerRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.LedgerEntry, error) {
	if cached, found := c.listings.Get(ownerID); found {
		if entries, ok := cached.([]*models.LedgerEntry); ok {
			atomic.AddUint64(&c.hitCount, 1)
			return copyEntries(entries), nil
		}
	}
	atomic.AddUint64(&c.missCount, 1)

	c.mu.Lock()
	generation := c.generations[ownerID]
	c.mu.Unlock()

	entries, err := c.next.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.generations[ownerID] == generation {
		c.listings.SetDefault(ownerID, copyEntries(entries))
	}
	c.mu.Unlock()
	return entries, nil
}

func (c *CachedLedgerRepository) invalidate(ownerID string) {
	c.mu.Lock()
	c.generations[ownerID]++
	c.listings.Delete(ownerID)
	c.mu.Unlock()
}

// Stats returns cache hits, misses and the hit ratio
func (c *CachedLedgerRepository) Stats() (hits, misses uint64, ratio float64) {
	hits = atomic.LoadUint64(&c.hitCount)
	misses = atomic.LoadUint64(&c.missCount)
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return hits, misses, ratio
}

func copyEntries(entries []*models.LedgerEntry) []*models.LedgerEntry {
	out := make([]*models.LedgerEntry, len(entries))
	for i, entry := range entries {
		out[i] = cloneEntry(entry)
	}
	return out
}
