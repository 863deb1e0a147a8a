package api

import (
	"errors"
	"net/http"

	"github.com/yourusername/surebet/internal/models"
)

// errorMapping pairs a domain error with its HTTP status and metrics reason.
// Order matters: wrapped persistence failures also match their cause.
var errorMapping = []struct {
	err    error
	status int
	reason string
}{
	{models.ErrInsufficientLegs, http.StatusBadRequest, "insufficient_legs"},
	{models.ErrInvalidOdds, http.StatusBadRequest, "invalid_odds"},
	{models.ErrInvalidBudget, http.StatusBadRequest, "invalid_budget"},
	{models.ErrInvalidConstraint, http.StatusBadRequest, "invalid_constraint"},
	{models.ErrInvalidModifier, http.StatusBadRequest, "invalid_modifier"},
	{models.ErrTooManyLegs, http.StatusBadRequest, "too_many_legs"},
	{models.ErrInvalidEntry, http.StatusBadRequest, "invalid_entry"},
	{models.ErrNotOwner, http.StatusForbidden, "not_owner"},
	{models.ErrNotFound, http.StatusNotFound, "not_found"},
	{models.ErrDuplicateKey, http.StatusConflict, "duplicate_key"},
	{models.ErrPersistenceFailure, http.StatusServiceUnavailable, "persistence_failure"},
}

// statusFor maps an error to its HTTP status and a stable reason label
func statusFor(err error) (int, string) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return m.status, m.reason
		}
	}
	return http.StatusInternalServerError, "internal"
}
