package services

import (
	"context"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	"github.com/pawnsoft/pawn_ledger_app/internal/dto"
)

// LoanReaderSvc defines read operations for loans.
type LoanReaderSvc interface {
	// GetLoanByID retrieves a loan, optionally with its audit trail.
	GetLoanByID(ctx context.Context, loanID string, includeAudit bool) (*domain.Loan, error)
}

// LoanWriterSvc defines the non-payment, non-extension loan mutations.
type LoanWriterSvc interface {
	// CreateLoan opens a new pawn loan in ACTIVE status and bumps the
	// customer's counters.
	CreateLoan(ctx context.Context, req dto.CreateLoanRequest, staffUserID string) (*domain.Loan, error)

	// ChangeStatus moves a loan between staff-driven statuses. Transitions
	// caused by money events are rejected here; they belong to the payment
	// processor and reversal engine.
	ChangeStatus(ctx context.Context, req dto.ChangeStatusRequest, staffUserID string) (*domain.Loan, error)

	// SetOverdueFee sets the staff-assessed overdue fee. Only valid while the
	// loan is OVERDUE.
	SetOverdueFee(ctx context.Context, req dto.SetOverdueFeeRequest, staffUserID string) (*domain.Loan, error)

	// ClearOverdueFee zeroes the overdue fee.
	ClearOverdueFee(ctx context.Context, loanID string, staffUserID string) (*domain.Loan, error)

	// AddManualNote appends to the free-text commentary channel.
	AddManualNote(ctx context.Context, req dto.AddManualNoteRequest, staffUserID string) (*domain.Loan, error)

	// ClearManualNotes empties the commentary channel. The audit trail is
	// unaffected; it is a different channel and is never cleared.
	ClearManualNotes(ctx context.Context, loanID string, staffUserID string) (*domain.Loan, error)
}

// LoanSvcFacade combines all loan lifecycle operations.
type LoanSvcFacade interface {
	LoanReaderSvc
	LoanWriterSvc
}
