// Package ledger keeps the per-owner history of confirmed allocation results.
//
// Entries are write-once snapshots; only the observation note can change after
// creation, and only its owner may change or delete it. Every operation is a
// fallible round-trip to the persistence port. Nothing is retried here.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/surebet/internal/logger"
	"github.com/yourusername/surebet/internal/metrics"
	"github.com/yourusername/surebet/internal/models"
	"github.com/yourusername/surebet/internal/repository"
)

// Service implements record, annotate, remove and list over a LedgerRepository
type Service struct {
	repo      repository.LedgerRepository
	validator *EntryValidator
	audit     *logger.AuditLogger
	logger    *logrus.Logger
	now       func() time.Time
	newID     func() uuid.UUID
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the clock used to stamp CreatedAt
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides entry id generation
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a ledger service
func NewService(repo repository.LedgerRepository, log *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		validator: NewEntryValidator(),
		audit:     logger.NewAuditLogger(log),
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prepare builds a validated, immutable snapshot of result without persisting it.
// The returned entry can be committed any number of times; retries are idempotent.
func (s *Service) Prepare(ownerID string, result *models.AllocationResult, raw models.RawInputs, observation string) (*models.LedgerEntry, error) {
	return s.PrepareWithID(s.newID(), ownerID, result, raw, observation)
}

// PrepareWithID is Prepare with a caller-chosen id, letting a client that lost
// the response to a record call resend it without creating a second entry.
func (s *Service) PrepareWithID(id uuid.UUID, ownerID string, result *models.AllocationResult, raw models.RawInputs, observation string) (*models.LedgerEntry, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: result is required", models.ErrInvalidEntry)
	}

	note, err := normalizeObservation(observation)
	if err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		ID:               id,
		OwnerID:          ownerID,
		TotalInvested:    result.TotalStake,
		Odds:             append([]float64(nil), raw.Odds...),
		Stakes:           append([]float64(nil), raw.Stakes...),
		GuaranteedReturn: result.GuaranteedReturn,
		Profit:           result.MinProfitAcrossLegs,
		ROI:              result.OverallROIPercent,
		Observation:      note,
		CreatedAt:        s.now(),
	}

	if err := s.validator.Validate(entry); err != nil {
		return nil, err
	}
	if len(entry.Odds) != len(result.Legs) {
		return nil, fmt.Errorf("%w: %d raw legs for a %d-leg result",
			models.ErrInvalidEntry, len(entry.Odds), len(result.Legs))
	}

	return entry, nil
}

// Commit persists a prepared entry and returns the stored row. Committing an id
// that already holds the same snapshot returns the stored row unchanged; a
// different snapshot under that id returns models.ErrDuplicateKey. Other
// repository failures are returned as models.ErrPersistenceFailure wrapping the cause.
func (s *Service) Commit(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error) {
	if err := s.validator.Validate(entry); err != nil {
		return nil, err
	}

	start := time.Now()
	stored, created, err := s.repo.Create(ctx, entry)
	metrics.RecordLedgerOperation("record", err, time.Since(start).Seconds())
	fields := logrus.Fields{
		"entry_id": entry.ID.String(),
		"owner_id": entry.OwnerID,
	}
	if errors.Is(err, models.ErrDuplicateKey) {
		s.logger.WithFields(fields).Warn("Ledger entry id already holds a different snapshot")
		return nil, err
	}
	if err != nil {
		s.logger.WithError(err).WithFields(fields).Error("Failed to record ledger entry")
		return nil, persistenceError(err)
	}

	if !created {
		s.logger.WithFields(fields).Debug("Ledger entry replayed")
		return stored, nil
	}
	s.audit.LogEntryRecorded(stored)
	return stored, nil
}

// Record prepares and commits a ledger entry in one call
func (s *Service) Record(ctx context.Context, ownerID string, result *models.AllocationResult, raw models.RawInputs, observation string) (*models.LedgerEntry, error) {
	entry, err := s.Prepare(ownerID, result, raw, observation)
	if err != nil {
		return nil, err
	}
	return s.Commit(ctx, entry)
}

// Annotate replaces the observation on an entry owned by ownerID
func (s *Service) Annotate(ctx context.Context, ownerID string, id uuid.UUID, observation string) (*models.LedgerEntry, error) {
	note, err := normalizeObservation(observation)
	if err != nil {
		return nil, err
	}

	current, err := s.authorize(ctx, "annotate", ownerID, id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	updated, err := s.repo.UpdateObservation(ctx, ownerID, id, note)
	metrics.RecordLedgerOperation("annotate", err, time.Since(start).Seconds())
	if err != nil {
		return nil, persistenceError(err)
	}

	s.audit.LogEntryAnnotated(id.String(), ownerID, len(current.Observation), len(updated.Observation))
	return updated, nil
}

// Remove hard-deletes an entry owned by ownerID
func (s *Service) Remove(ctx context.Context, ownerID string, id uuid.UUID) error {
	if _, err := s.authorize(ctx, "remove", ownerID, id); err != nil {
		return err
	}

	start := time.Now()
	err := s.repo.Delete(ctx, ownerID, id)
	metrics.RecordLedgerOperation("remove", err, time.Since(start).Seconds())
	if err != nil {
		return persistenceError(err)
	}

	s.audit.LogEntryRemoved(id.String(), ownerID)
	return nil
}

// List returns the owner's entries, newest first. The listing is unpaginated.
func (s *Service) List(ctx context.Context, ownerID string) ([]*models.LedgerEntry, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", models.ErrInvalidEntry)
	}

	start := time.Now()
	entries, err := s.repo.ListByOwner(ctx, ownerID)
	metrics.RecordLedgerOperation("list", err, time.Since(start).Seconds())
	if err != nil {
		return nil, persistenceError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"owner_id": ownerID,
		"entries":  len(entries),
	}).Debug("Ledger listed")
	return entries, nil
}

// authorize loads the entry and checks that ownerID owns it
func (s *Service) authorize(ctx context.Context, action, ownerID string, id uuid.UUID) (*models.LedgerEntry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: entry %s", models.ErrNotFound, id)
		}
		return nil, persistenceError(err)
	}

	if !entry.IsOwnedBy(ownerID) {
		s.audit.LogOwnershipViolation(action, id.String(), ownerID, entry.OwnerID)
		return nil, fmt.Errorf("%w: entry %s", models.ErrNotOwner, id)
	}

	return entry, nil
}

// persistenceError wraps a repository failure. Not-found stays distinguishable
// so a row deleted between the ownership check and the write reads as missing.
func persistenceError(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", models.ErrPersistenceFailure, err)
}
