// Package repository provides persistence for ledger entries.
package repository

import (
	"fmt"
	"time"

	"github.com/yourusername/surebet/internal/database"
)

// Store names a ledger backend
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Repositories holds all repository implementations
type Repositories struct {
	Ledger LedgerRepository
}

// NewRepositories creates the PostgreSQL-backed repositories.
// A positive cacheTTL wraps the ledger with a listing cache.
func NewRepositories(db *database.DB, cacheTTL time.Duration) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	var ledger LedgerRepository = NewPostgresLedgerRepository(db)
	if cacheTTL > 0 {
		ledger = NewCachedLedgerRepository(ledger, cacheTTL)
	}

	return &Repositories{Ledger: ledger}, nil
}

// NewMemoryRepositories creates in-process repositories
func NewMemoryRepositories() *Repositories {
	return &Repositories{Ledger: NewMemoryLedgerRepository()}
}
