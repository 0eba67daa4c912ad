package mapping

import (
	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	"github.com/pawnsoft/pawn_ledger_app/internal/models"
)

// ToModelAuditEntry converts a domain AuditEntry to a model AuditEntry
func ToModelAuditEntry(d domain.AuditEntry) models.AuditEntry {
	m := models.AuditEntry{
		EntryID:       d.EntryID,
		ActionType:    string(d.ActionType),
		StaffUserID:   d.StaffUserID,
		Summary:       d.Summary,
		PreviousValue: d.PreviousValue,
		NewValue:      d.NewValue,
		RelatedID:     d.RelatedID,
		CreatedAt:     d.CreatedAt,
	}
	if d.LoanID != "" {
		loanID := d.LoanID
		m.LoanID = &loanID
	}
	if d.CustomerID != "" {
		customerID := d.CustomerID
		m.CustomerID = &customerID
	}
	if d.Amount != nil {
		amount := d.Amount.Int64()
		m.Amount = &amount
	}
	return m
}

// ToDomainAuditEntry converts a model AuditEntry to a domain AuditEntry
func ToDomainAuditEntry(m models.AuditEntry) domain.AuditEntry {
	d := domain.AuditEntry{
		EntryID:       m.EntryID,
		ActionType:    domain.ActionType(m.ActionType),
		StaffUserID:   m.StaffUserID,
		Summary:       m.Summary,
		PreviousValue: m.PreviousValue,
		NewValue:      m.NewValue,
		RelatedID:     m.RelatedID,
		CreatedAt:     m.CreatedAt,
	}
	if m.LoanID != nil {
		d.LoanID = *m.LoanID
	}
	if m.CustomerID != nil {
		d.CustomerID = *m.CustomerID
	}
	if m.Amount != nil {
		amount := domain.Money(*m.Amount)
		d.Amount = &amount
	}
	return d
}

// ToDomainAuditEntrySlice converts a slice of model AuditEntries to a slice of domain AuditEntries
func ToDomainAuditEntrySlice(ms []models.AuditEntry) []domain.AuditEntry {
	ds := make([]domain.AuditEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAuditEntry(m)
	}
	return ds
}
