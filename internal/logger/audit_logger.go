// Package logger provides audit logging.
package logger

import (
	"github.com/sirupsen/logrus"
	"github.com/yourusername/surebet/internal/models"
)

// AuditLogger provides a dedicated audit trail for ledger mutations.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogEntryRecorded logs a confirmed allocation entering the ledger.
func (al *AuditLogger) LogEntryRecorded(entry *models.LedgerEntry) {
	al.WithFields(logrus.Fields{
		"entry_id":          entry.ID.String(),
		"owner_id":          entry.OwnerID,
		"legs":              entry.Legs(),
		"total_invested":    entry.TotalInvested,
		"guaranteed_return": entry.GuaranteedReturn,
		"profit":            entry.Profit,
		"roi":               entry.ROI,
		"created_at":        entry.CreatedAt.Unix(),
	}).Info("Ledger entry recorded")
}

// LogEntryAnnotated logs an observation change.
func (al *AuditLogger) LogEntryAnnotated(entryID, ownerID string, oldLength, newLength int) {
	al.WithFields(logrus.Fields{
		"entry_id":   entryID,
		"owner_id":   ownerID,
		"old_length": oldLength,
		"new_length": newLength,
	}).Info("Ledger entry annotated")
}

// LogEntryRemoved logs a hard delete.
func (al *AuditLogger) LogEntryRemoved(entryID, ownerID string) {
	al.WithFields(logrus.Fields{
		"entry_id": entryID,
		"owner_id": ownerID,
	}).Info("Ledger entry removed")
}

// LogOwnershipViolation logs an attempt to touch another owner's entry.
func (al *AuditLogger) LogOwnershipViolation(action, entryID, callerID, ownerID string) {
	al.WithFields(logrus.Fields{
		"action":    action,
		"entry_id":  entryID,
		"caller_id": callerID,
		"owner_id":  ownerID,
	}).Warn("Ledger ownership violation")
}
