package domain

import "time"

// ActionType classifies an audit entry.
type ActionType string

const (
	ActionLoanCreated         ActionType = "LOAN_CREATED"
	ActionPaymentProcessed    ActionType = "PAYMENT_PROCESSED"
	ActionPaymentVoided       ActionType = "PAYMENT_VOIDED"
	ActionExtensionApplied    ActionType = "EXTENSION_APPLIED"
	ActionExtensionCancelled  ActionType = "EXTENSION_CANCELLED"
	ActionStatusChanged       ActionType = "STATUS_CHANGED"
	ActionRedemptionCompleted ActionType = "REDEMPTION_COMPLETED"
	ActionDiscountApplied     ActionType = "DISCOUNT_APPLIED"
	ActionOverdueFeeSet       ActionType = "OVERDUE_FEE_SET"
	ActionOverdueFeeCleared   ActionType = "OVERDUE_FEE_CLEARED"
	ActionLegacyNotesMigrated ActionType = "LEGACY_NOTES_MIGRATED"
	ActionCountersRepaired    ActionType = "COUNTERS_REPAIRED"
)

// AuditEntry is one row in a loan's append-only ledger of record. Entries are
// written in the same transaction as the mutation they describe and are never
// edited or deleted. This channel is distinct from Loan.ManualNotes, which
// staff may freely change.
type AuditEntry struct {
	EntryID       string     `json:"entryID"`
	LoanID        string     `json:"loanID,omitempty"`     // Empty for customer-level events
	CustomerID    string     `json:"customerID,omitempty"` // Set for customer-level events (counter repair)
	ActionType    ActionType `json:"actionType"`
	StaffUserID   string     `json:"staffMember"`
	Summary       string     `json:"actionSummary"`
	Amount        *Money     `json:"amount,omitempty"`
	PreviousValue string     `json:"previousValue,omitempty"`
	NewValue      string     `json:"newValue,omitempty"`
	RelatedID     string     `json:"relatedID,omitempty"` // Payment/extension id the entry refers to
	CreatedAt     time.Time  `json:"timestamp"`
}
