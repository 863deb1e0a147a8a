package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/surebet/internal/database"
	"github.com/yourusername/surebet/internal/models"
)

const ledgerColumns = `id, owner_id, total_invested, odds, stakes, guaranteed_return, profit, roi, observation, created_at`

// PostgresLedgerRepository implements LedgerRepository for PostgreSQL
type PostgresLedgerRepository struct {
	db *database.DB
}

// NewPostgresLedgerRepository creates a new ledger repository
func NewPostgresLedgerRepository(db *database.DB) LedgerRepository {
	return &PostgresLedgerRepository{db: db}
}

// Create inserts a new entry in a single statement. On an id conflict the
// stored row is returned when it holds the same snapshot for the same owner.
func (r *PostgresLedgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, bool, error) {
	query := `
		INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
		RETURNING ` + ledgerColumns

	row := r.db.GetPool().QueryRow(ctx, query,
		entry.ID, entry.OwnerID, entry.TotalInvested, entry.Odds, entry.Stakes,
		entry.GuaranteedReturn, entry.Profit, entry.ROI, entry.Observation, entry.CreatedAt,
	)
	stored, err := scanEntry(row)
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to create ledger entry: %w", err)
	}

	existing, err := r.GetByID(ctx, entry.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check existing ledger entry: %w", err)
	}
	if !existing.SameSnapshot(entry) {
		return nil, false, models.ErrDuplicateKey
	}
	return existing, false, nil
}

// GetByID retrieves an entry by ID
func (r *PostgresLedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE id = $1`

	entry, err := scanEntry(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return entry, nil
}

// UpdateObservation replaces the note on an entry owned by ownerID
func (r *PostgresLedgerRepository) UpdateObservation(ctx context.Context, ownerID string, id uuid.UUID, observation string) (*models.LedgerEntry, error) {
	query := `
		UPDATE ledger_entries SET observation = $3
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + ledgerColumns

	entry, err := scanEntry(r.db.GetPool().QueryRow(ctx, query, id, ownerID, observation))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update ledger entry: %w", err)
	}

	return entry, nil
}

// Delete hard-deletes an entry owned by ownerID
func (r *PostgresLedgerRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	commandTag, err := r.db.GetPool().Exec(ctx,
		`DELETE FROM ledger_entries WHERE id = $1 AND owner_id = $2`, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete ledger entry: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// ListByOwner retrieves every entry of an owner, newest first
func (r *PostgresLedgerRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.LedgerEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*models.LedgerEntry, error) {
	entry := &models.LedgerEntry{}
	err := row.Scan(
		&entry.ID, &entry.OwnerID, &entry.TotalInvested, &entry.Odds, &entry.Stakes,
		&entry.GuaranteedReturn, &entry.Profit, &entry.ROI, &entry.Observation, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}
