package ledger

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yourusername/surebet/internal/models"
)

// EntryValidator checks ledger snapshots before they are persisted
type EntryValidator struct {
	validator *validator.Validate
}

// NewEntryValidator creates a validator with the ledger struct rules registered
func NewEntryValidator() *EntryValidator {
	v := validator.New()
	v.RegisterStructValidation(validateLegArrays, models.LedgerEntry{})
	return &EntryValidator{validator: v}
}

// Validate returns models.ErrInvalidEntry describing every failed rule
func (ev *EntryValidator) Validate(entry *models.LedgerEntry) error {
	err := ev.validator.Struct(entry)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", models.ErrInvalidEntry, err)
	}

	problems := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		switch fieldError.Tag() {
		case "required":
			problems = append(problems, fmt.Sprintf("%s is required", fieldError.Field()))
		case "legcount":
			problems = append(problems, "odds and stakes must have the same length")
		default:
			problems = append(problems, fmt.Sprintf("%s failed %s=%s", fieldError.Namespace(), fieldError.Tag(), fieldError.Param()))
		}
	}
	return fmt.Errorf("%w: %s", models.ErrInvalidEntry, strings.Join(problems, "; "))
}

// validateLegArrays enforces len(Odds) == len(Stakes)
func validateLegArrays(sl validator.StructLevel) {
	entry := sl.Current().Interface().(models.LedgerEntry)
	if len(entry.Odds) != len(entry.Stakes) {
		sl.ReportError(entry.Stakes, "Stakes", "Stakes", "legcount", "")
	}
}

// normalizeObservation trims the note and enforces its length limit
func normalizeObservation(observation string) (string, error) {
	observation = strings.TrimSpace(observation)
	if n := len([]rune(observation)); n > models.MaxObservationLength {
		return "", fmt.Errorf("%w: observation has %d characters, limit is %d",
			models.ErrInvalidEntry, n, models.MaxObservationLength)
	}
	return observation, nil
}
