package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/surebet/internal/allocator"
	"github.com/yourusername/surebet/internal/metrics"
	"github.com/yourusername/surebet/internal/models"
)

// LedgerService is the ledger surface the API needs
type LedgerService interface {
	PrepareWithID(id uuid.UUID, ownerID string, result *models.AllocationResult, raw models.RawInputs, observation string) (*models.LedgerEntry, error)
	Prepare(ownerID string, result *models.AllocationResult, raw models.RawInputs, observation string) (*models.LedgerEntry, error)
	Commit(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error)
	Annotate(ctx context.Context, ownerID string, id uuid.UUID, observation string) (*models.LedgerEntry, error)
	Remove(ctx context.Context, ownerID string, id uuid.UUID) error
	List(ctx context.Context, ownerID string) ([]*models.LedgerEntry, error)
}

// AllocationResponse is a display-rounded allocation plus the market margin.
// DerivedTotalBudget is set in capped mode: the total budget that spends the
// cap exactly on the lowest-odds leg.
type AllocationResponse struct {
	Result               *models.AllocationResult `json:"result"`
	ImpliedMarginPercent float64                  `json:"implied_margin_percent"`
	DerivedTotalBudget   float64                  `json:"derived_total_budget,omitempty"`
}

// FixRequest pins LegIndex at its current stake
type FixRequest struct {
	Request  models.AllocationRequest `json:"request"`
	LegIndex int                      `json:"leg_index"`
}

// FixResponse carries the rebalanced request and the total budget that would
// reproduce it in total-budget mode
type FixResponse struct {
	Request            models.AllocationRequest `json:"request"`
	DerivedTotalBudget float64                  `json:"derived_total_budget"`
}

// RecordRequest confirms an allocation into the caller's ledger. ID is optional;
// resending the same ID after a failed or lost response does not duplicate the entry.
type RecordRequest struct {
	ID          *uuid.UUID               `json:"id,omitempty"`
	Request     models.AllocationRequest `json:"request"`
	Observation string                   `json:"observation,omitempty"`
}

// AnnotateRequest replaces an entry's observation
type AnnotateRequest struct {
	Observation string `json:"observation"`
}

// ListResponse wraps an owner's ledger
type ListResponse struct {
	Entries []*models.LedgerEntry `json:"entries"`
	Count   int                   `json:"count"`
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	allocator *allocator.Allocator
	ledger    LedgerService
	logger    *logrus.Logger
}

// NewHandler creates a new handler
func NewHandler(alloc *allocator.Allocator, ledger LedgerService, log *logrus.Logger) *Handler {
	return &Handler{
		allocator: alloc,
		ledger:    ledger,
		logger:    log,
	}
}

// Allocate computes stakes for the posted request
func (h *Handler) Allocate(w http.ResponseWriter, r *http.Request) {
	var req models.AllocationRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	result, err := h.allocate(req)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	resp := AllocationResponse{
		Result:               result.Rounded(),
		ImpliedMarginPercent: models.Round2(allocator.ImpliedMarginPercent(effectiveOdds(req.Legs))),
	}
	if req.Mode == models.ModeCappedLeg {
		total, err := allocator.CappedTotalBudget(req.Legs, req.Amount)
		if err != nil {
			h.respondDomainError(w, err)
			return
		}
		resp.DerivedTotalBudget = models.Round2(total)
	}
	respondJSON(w, http.StatusOK, resp)
}

// Fix pins one leg and rebalances the others against it
func (h *Handler) Fix(w http.ResponseWriter, r *http.Request) {
	var req FixRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	start := time.Now()
	next, err := h.allocator.FixLeg(req.Request, req.LegIndex)
	metrics.ObserveAllocationDuration(string(models.ModeFixedLeg), time.Since(start).Seconds())
	if err != nil {
		_, reason := statusFor(err)
		metrics.RecordAllocationError(string(models.ModeFixedLeg), reason)
		h.respondDomainError(w, err)
		return
	}

	total, err := allocator.DeriveTotalBudget(next.Legs, req.LegIndex)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, FixResponse{
		Request:            next,
		DerivedTotalBudget: models.Round2(total),
	})
}

// ListLedger returns the caller's entries, newest first
func (h *Handler) ListLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ledger.List(r.Context(), OwnerFromContext(r.Context()))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []*models.LedgerEntry{}
	}

	respondJSON(w, http.StatusOK, ListResponse{Entries: entries, Count: len(entries)})
}

// RecordLedger recomputes the posted allocation and records it for the caller
func (h *Handler) RecordLedger(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	result, err := h.allocate(req.Request)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	owner := OwnerFromContext(r.Context())
	raw := models.RawInputsFromResult(result)

	var entry *models.LedgerEntry
	if req.ID != nil {
		entry, err = h.ledger.PrepareWithID(*req.ID, owner, result, raw, req.Observation)
	} else {
		entry, err = h.ledger.Prepare(owner, result, raw, req.Observation)
	}
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	saved, err := h.ledger.Commit(r.Context(), entry)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, saved)
}

// AnnotateLedger replaces the observation on one of the caller's entries
func (h *Handler) AnnotateLedger(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	var req AnnotateRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	updated, err := h.ledger.Annotate(r.Context(), OwnerFromContext(r.Context()), id, req.Observation)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// RemoveLedger deletes one of the caller's entries
func (h *Handler) RemoveLedger(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	if err := h.ledger.Remove(r.Context(), OwnerFromContext(r.Context()), id); err != nil {
		h.respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// allocate runs the allocator and records metrics for the outcome
func (h *Handler) allocate(req models.AllocationRequest) (*models.AllocationResult, error) {
	mode := modeLabel(req.Mode)
	start := time.Now()
	result, err := h.allocator.Allocate(req)
	metrics.ObserveAllocationDuration(mode, time.Since(start).Seconds())
	if err != nil {
		_, reason := statusFor(err)
		metrics.RecordAllocationError(mode, reason)
		return nil, err
	}

	metrics.RecordAllocation(mode, len(result.Legs), result.OverallROIPercent, result.IsArbitrage)
	return result, nil
}

func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	status, reason := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("reason", reason).Error("Request failed")
	}
	respondError(w, status, err.Error())
}

// modeLabel keeps client-supplied modes from inflating metric cardinality
func modeLabel(mode models.BudgetMode) string {
	switch mode {
	case models.ModeTotalBudget, models.ModeCappedLeg, models.ModeFixedLeg:
		return string(mode)
	}
	return "unknown"
}

func effectiveOdds(legs []models.Leg) []float64 {
	odds := make([]float64, len(legs))
	for i, leg := range legs {
		odds[i] = leg.EffectiveOdds()
	}
	return odds
}

func decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	return nil
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
