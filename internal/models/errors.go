package models

import "errors"

// Allocation errors
var (
	ErrInsufficientLegs  = errors.New("at least two legs with odds greater than 1 are required")
	ErrInvalidOdds       = errors.New("odds must be greater than 1")
	ErrInvalidBudget     = errors.New("budget must be a positive number")
	ErrInvalidConstraint = errors.New("budgeting constraint cannot be resolved")
	ErrInvalidModifier   = errors.New("leg modifiers must be non-negative numbers")
	ErrTooManyLegs       = errors.New("too many legs")
)

// Ledger errors
var (
	ErrPersistenceFailure = errors.New("ledger persistence failed")
	ErrNotOwner           = errors.New("entry belongs to another owner")
	ErrNotFound           = errors.New("record not found")
	ErrInvalidEntry       = errors.New("invalid ledger entry")
	ErrDuplicateKey       = errors.New("duplicate key violation")
)
