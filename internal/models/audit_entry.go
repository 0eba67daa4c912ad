package models

import "time"

// AuditEntry is one append-only row of the ledger of record. No update or
// delete path exists for this table.
type AuditEntry struct {
	EntryID       string    `json:"entryID"` // Primary Key (UUID)
	LoanID        *string   `json:"loanID"`
	CustomerID    *string   `json:"customerID"`
	ActionType    string    `json:"actionType"`
	StaffUserID   string    `json:"staffUserID"`
	Summary       string    `json:"summary"`
	Amount        *int64    `json:"amount"`
	PreviousValue string    `json:"previousValue"`
	NewValue      string    `json:"newValue"`
	RelatedID     string    `json:"relatedID"`
	CreatedAt     time.Time `json:"createdAt"`
}
