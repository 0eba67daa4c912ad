package dto

import (
	"time"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
)

// AuditEntryResponse defines the data returned for one audit trail entry.
type AuditEntryResponse struct {
	EntryID       string    `json:"entryID"`
	ActionType    string    `json:"actionType"`
	StaffUserID   string    `json:"staffMember"`
	Summary       string    `json:"actionSummary"`
	Amount        *int64    `json:"amount,omitempty"`
	PreviousValue string    `json:"previousValue,omitempty"`
	NewValue      string    `json:"newValue,omitempty"`
	RelatedID     string    `json:"relatedID,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// ToAuditEntryResponses converts domain audit entries to response DTOs.
func ToAuditEntryResponses(entries []domain.AuditEntry) []AuditEntryResponse {
	responses := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		resp := AuditEntryResponse{
			EntryID:       e.EntryID,
			ActionType:    string(e.ActionType),
			StaffUserID:   e.StaffUserID,
			Summary:       e.Summary,
			PreviousValue: e.PreviousValue,
			NewValue:      e.NewValue,
			RelatedID:     e.RelatedID,
			Timestamp:     e.CreatedAt,
		}
		if e.Amount != nil {
			amount := e.Amount.Int64()
			resp.Amount = &amount
		}
		responses[i] = resp
	}
	return responses
}

// NotesMigrationResult reports what the one-time legacy-notes migration did.
type NotesMigrationResult struct {
	LoanID         string `json:"loanID"`
	AlreadyDone    bool   `json:"alreadyDone"`
	EntriesCreated int    `json:"entriesCreated"`
	NotesCarried   int    `json:"notesCarried"`
}
