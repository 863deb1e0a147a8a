package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/surebet/internal/allocator"
	"github.com/yourusername/surebet/internal/models"
	"github.com/yourusername/surebet/internal/repository"
)

const (
	ownerAlice = "alice"
	ownerBob   = "bob"
)

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, bool, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.LedgerEntry), args.Bool(1), args.Error(2)
}

func (m *MockLedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) UpdateObservation(ctx context.Context, ownerID string, id uuid.UUID, observation string) (*models.LedgerEntry, error) {
	args := m.Called(ctx, ownerID, id, observation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	log.SetOutput(&strings.Builder{})
	return log
}

// steppingClock returns a clock that advances one minute per call
func steppingClock() func() time.Time {
	current := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

func surebet(t *testing.T) *models.AllocationResult {
	t.Helper()
	result, err := allocator.Allocate(models.AllocationRequest{
		Legs:   []models.Leg{{Odds: 2.0}, {Odds: 2.2}},
		Mode:   models.ModeTotalBudget,
		Amount: 100,
	})
	require.NoError(t, err)
	return result
}

func TestRecordAndList(t *testing.T) {
	svc := NewService(repository.NewMemoryLedgerRepository(), quietLogger(), WithClock(steppingClock()))
	ctx := context.Background()
	result := surebet(t)

	first, err := svc.Record(ctx, ownerAlice, result, models.RawInputsFromResult(result), "  first  ")
	require.NoError(t, err)
	second, err := svc.Record(ctx, ownerAlice, result, models.RawInputsFromResult(result), "")
	require.NoError(t, err)
	_, err = svc.Record(ctx, ownerBob, result, models.RawInputsFromResult(result), "")
	require.NoError(t, err)

	assert.Equal(t, "first", first.Observation)
	assert.Equal(t, 100.0, first.TotalInvested)
	assert.InDelta(t, 4.7619, first.Profit, 1e-4)
	assert.InDelta(t, 104.7619, first.GuaranteedReturn, 1e-4)
	assert.InDelta(t, 4.7619, first.ROI, 1e-4)
	assert.Equal(t, []float64{2.0, 2.2}, first.Odds)
	assert.Equal(t, result.Stakes(), first.Stakes)

	entries, err := svc.List(ctx, ownerAlice)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
}

func TestRecordRejectsInconsistentSnapshot(t *testing.T) {
	repo := new(MockLedgerRepository)
	svc := NewService(repo, quietLogger())
	result := surebet(t)

	tests := []struct {
		name  string
		owner string
		raw   models.RawInputs
		note  string
	}{
		{
			name:  "length mismatch",
			owner: ownerAlice,
			raw:   models.RawInputs{Odds: []float64{2.0, 2.2}, Stakes: []float64{52.38}},
		},
		{
			name:  "single leg",
			owner: ownerAlice,
			raw:   models.RawInputs{Odds: []float64{2.0}, Stakes: []float64{52.38}},
		},
		{
			name:  "odds not above one",
			owner: ownerAlice,
			raw:   models.RawInputs{Odds: []float64{1.0, 2.2}, Stakes: []float64{52.38, 47.62}},
		},
		{
			name: "missing owner",
			raw:  models.RawInputsFromResult(result),
		},
		{
			name:  "raw legs disagree with result",
			owner: ownerAlice,
			raw:   models.RawInputs{Odds: []float64{2.0, 2.2, 3.0}, Stakes: []float64{1, 1, 1}},
		},
		{
			name:  "observation too long",
			owner: ownerAlice,
			raw:   models.RawInputsFromResult(result),
			note:  strings.Repeat("x", models.MaxObservationLength+1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := svc.Record(context.Background(), tt.owner, result, tt.raw, tt.note)
			assert.Nil(t, entry)
			assert.ErrorIs(t, err, models.ErrInvalidEntry)
		})
	}

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCommitFailureCanBeRetried(t *testing.T) {
	cause := errors.New("connection reset by peer")
	failing := new(MockLedgerRepository)
	failing.On("Create", mock.Anything, mock.Anything).Return(nil, false, cause).Once()

	svc := NewService(failing, quietLogger())
	result := surebet(t)

	entry, err := svc.Prepare(ownerAlice, result, models.RawInputsFromResult(result), "retry me")
	require.NoError(t, err)

	_, err = svc.Commit(context.Background(), entry)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrPersistenceFailure)
	assert.ErrorIs(t, err, cause)
	failing.AssertExpectations(t)

	// the prepared entry survives a JSON round-trip and commits idempotently later
	payload, err := json.Marshal(entry)
	require.NoError(t, err)
	var replay models.LedgerEntry
	require.NoError(t, json.Unmarshal(payload, &replay))

	store := repository.NewMemoryLedgerRepository()
	healthy := NewService(store, quietLogger())
	ctx := context.Background()

	saved, err := healthy.Commit(ctx, &replay)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, saved.ID)

	_, err = healthy.Commit(ctx, &replay)
	require.NoError(t, err)

	entries, err := healthy.List(ctx, ownerAlice)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCommitReplayReturnsStoredEntry(t *testing.T) {
	log, hook := test.NewNullLogger()
	id := uuid.MustParse("9d4f1c2e-7a61-4b8e-8f3a-2c5d6e7f8a90")
	svc := NewService(repository.NewMemoryLedgerRepository(), log, WithClock(steppingClock()))
	ctx := context.Background()
	result := surebet(t)

	first, err := svc.PrepareWithID(id, ownerAlice, result, models.RawInputsFromResult(result), "first")
	require.NoError(t, err)
	stored, err := svc.Commit(ctx, first)
	require.NoError(t, err)

	replay, err := svc.PrepareWithID(id, ownerAlice, result, models.RawInputsFromResult(result), "second")
	require.NoError(t, err)
	require.False(t, replay.CreatedAt.Equal(stored.CreatedAt))

	got, err := svc.Commit(ctx, replay)
	require.NoError(t, err)
	assert.Equal(t, stored, got)
	assert.Equal(t, "first", got.Observation)
	assert.True(t, stored.CreatedAt.Equal(got.CreatedAt))

	recorded := 0
	for _, e := range hook.AllEntries() {
		if e.Message == "Ledger entry recorded" {
			recorded++
		}
	}
	assert.Equal(t, 1, recorded)
}

func TestCommitRejectsDifferentSnapshotUnderSameID(t *testing.T) {
	id := uuid.MustParse("1f2e3d4c-5b6a-4798-8a7b-6c5d4e3f2a1b")
	svc := NewService(repository.NewMemoryLedgerRepository(), quietLogger())
	ctx := context.Background()

	resultA := surebet(t)
	resultB, err := allocator.Allocate(models.AllocationRequest{
		Legs:   []models.Leg{{Odds: 1.9}, {Odds: 2.3}},
		Mode:   models.ModeTotalBudget,
		Amount: 200,
	})
	require.NoError(t, err)

	first, err := svc.PrepareWithID(id, ownerAlice, resultA, models.RawInputsFromResult(resultA), "first")
	require.NoError(t, err)
	_, err = svc.Commit(ctx, first)
	require.NoError(t, err)

	tests := []struct {
		name   string
		owner  string
		result *models.AllocationResult
	}{
		{name: "same owner different stakes", owner: ownerAlice, result: resultB},
		{name: "other owner same stakes", owner: ownerBob, result: resultA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clash, err := svc.PrepareWithID(id, tt.owner, tt.result, models.RawInputsFromResult(tt.result), "second")
			require.NoError(t, err)

			got, err := svc.Commit(ctx, clash)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, models.ErrDuplicateKey)
			assert.NotErrorIs(t, err, models.ErrPersistenceFailure)
		})
	}

	entries, err := svc.List(ctx, ownerAlice)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "first", entries[0].Observation)
	assert.Equal(t, resultA.Stakes(), entries[0].Stakes)
}

func TestAnnotate(t *testing.T) {
	svc := NewService(repository.NewMemoryLedgerRepository(), quietLogger())
	ctx := context.Background()
	result := surebet(t)

	entry, err := svc.Record(ctx, ownerAlice, result, models.RawInputsFromResult(result), "original")
	require.NoError(t, err)

	t.Run("foreign owner is rejected and entry unchanged", func(t *testing.T) {
		_, err := svc.Annotate(ctx, ownerBob, entry.ID, "hijacked")
		assert.ErrorIs(t, err, models.ErrNotOwner)

		entries, err := svc.List(ctx, ownerAlice)
		require.NoError(t, err)
		assert.Equal(t, "original", entries[0].Observation)
	})

	t.Run("owner updates observation only", func(t *testing.T) {
		updated, err := svc.Annotate(ctx, ownerAlice, entry.ID, "placed at both books")
		require.NoError(t, err)
		assert.Equal(t, "placed at both books", updated.Observation)
		assert.Equal(t, entry.Stakes, updated.Stakes)
		assert.Equal(t, entry.Profit, updated.Profit)
		assert.True(t, entry.CreatedAt.Equal(updated.CreatedAt))
	})

	t.Run("missing entry", func(t *testing.T) {
		_, err := svc.Annotate(ctx, ownerAlice, uuid.New(), "nothing here")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestRemove(t *testing.T) {
	svc := NewService(repository.NewMemoryLedgerRepository(), quietLogger())
	ctx := context.Background()
	result := surebet(t)

	entry, err := svc.Record(ctx, ownerAlice, result, models.RawInputsFromResult(result), "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Remove(ctx, ownerBob, entry.ID), models.ErrNotOwner)

	entries, err := svc.List(ctx, ownerAlice)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, svc.Remove(ctx, ownerAlice, entry.ID))
	assert.ErrorIs(t, svc.Remove(ctx, ownerAlice, entry.ID), models.ErrNotFound)

	entries, err = svc.List(ctx, ownerAlice)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPersistenceFailuresSurfaceVerbatim(t *testing.T) {
	cause := errors.New("database is read-only")
	id := uuid.New()
	owned := &models.LedgerEntry{ID: id, OwnerID: ownerAlice}

	repo := new(MockLedgerRepository)
	repo.On("ListByOwner", mock.Anything, ownerAlice).Return(nil, cause)
	repo.On("GetByID", mock.Anything, id).Return(owned, nil)
	repo.On("Delete", mock.Anything, ownerAlice, id).Return(cause)
	repo.On("UpdateObservation", mock.Anything, ownerAlice, id, "note").Return(nil, cause)

	svc := NewService(repo, quietLogger())
	ctx := context.Background()

	_, err := svc.List(ctx, ownerAlice)
	assert.ErrorIs(t, err, models.ErrPersistenceFailure)
	assert.ErrorIs(t, err, cause)

	err = svc.Remove(ctx, ownerAlice, id)
	assert.ErrorIs(t, err, models.ErrPersistenceFailure)
	assert.ErrorIs(t, err, cause)

	_, err = svc.Annotate(ctx, ownerAlice, id, "note")
	assert.ErrorIs(t, err, models.ErrPersistenceFailure)

	repo.AssertNumberOfCalls(t, "Delete", 1)
	repo.AssertNumberOfCalls(t, "UpdateObservation", 1)
}

func TestListRequiresOwner(t *testing.T) {
	svc := NewService(repository.NewMemoryLedgerRepository(), quietLogger())
	_, err := svc.List(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrInvalidEntry)
}

func TestPrepareUsesInjectedIdentity(t *testing.T) {
	fixed := uuid.MustParse("5b0c7a53-3f57-4d0c-9a0e-1c8f7d8e2a11")
	svc := NewService(repository.NewMemoryLedgerRepository(), quietLogger(),
		WithIDGenerator(func() uuid.UUID { return fixed }),
		WithClock(steppingClock()),
	)
	result := surebet(t)

	entry, err := svc.Prepare(ownerAlice, result, models.RawInputsFromResult(result), "")
	require.NoError(t, err)
	assert.Equal(t, fixed, entry.ID)
	assert.Equal(t, time.Date(2026, 5, 1, 9, 1, 0, 0, time.UTC), entry.CreatedAt)
}
