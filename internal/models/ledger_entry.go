package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxObservationLength bounds the free-text note attached to a ledger entry (in runes)
const MaxObservationLength = 2000

// LedgerEntry is an immutable snapshot of a confirmed allocation.
// Only Observation may change after creation.
type LedgerEntry struct {
	ID               uuid.UUID `db:"id" json:"id" validate:"required"`
	OwnerID          string    `db:"owner_id" json:"owner_id" validate:"required,max=128"`
	TotalInvested    float64   `db:"total_invested" json:"total_invested" validate:"gt=0"`
	Odds             []float64 `db:"odds" json:"odds" validate:"required,min=2,dive,gt=1"`
	Stakes           []float64 `db:"stakes" json:"stakes" validate:"required,min=2,dive,gte=0"`
	GuaranteedReturn float64   `db:"guaranteed_return" json:"guaranteed_return"`
	Profit           float64   `db:"profit" json:"profit"`
	ROI              float64   `db:"roi" json:"roi"`
	Observation      string    `db:"observation" json:"observation,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at" validate:"required"`
}

// IsOwnedBy reports whether the entry belongs to the given owner
func (e *LedgerEntry) IsOwnedBy(ownerID string) bool {
	return e.OwnerID == ownerID
}

// SameSnapshot reports whether other records the same confirmed allocation for
// the same owner. Observation and CreatedAt are not compared.
func (e *LedgerEntry) SameSnapshot(other *LedgerEntry) bool {
	return e.OwnerID == other.OwnerID &&
		e.TotalInvested == other.TotalInvested &&
		e.GuaranteedReturn == other.GuaranteedReturn &&
		e.Profit == other.Profit &&
		e.ROI == other.ROI &&
		equalFloats(e.Odds, other.Odds) &&
		equalFloats(e.Stakes, other.Stakes)
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Legs returns the number of legs recorded
func (e *LedgerEntry) Legs() int {
	return len(e.Odds)
}
