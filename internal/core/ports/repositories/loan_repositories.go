package repositories

import (
	"context"
	"time"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
)

// LoanReader defines read operations for loan data.
type LoanReader interface {
	// FindLoanByID retrieves a loan by its unique identifier.
	FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error)

	// ListLoansByCustomerID retrieves every loan a customer has ever taken,
	// terminal statuses included.
	ListLoansByCustomerID(ctx context.Context, customerID string) ([]domain.Loan, error)
}

// LoanWriter defines the atomic mutations of the loan aggregate. Every method
// runs inside a single database transaction: it locks the loan row, verifies
// the caller's version against the stored one (returning
// apperrors.ErrConflict on mismatch), applies all writes (loan, related row,
// audit entries, customer counter delta) and commits. A failure anywhere
// rolls everything back.
type LoanWriter interface {
	// CreateLoan persists a brand-new loan with its opening audit entry and
	// bumps the customer's counters.
	CreateLoan(ctx context.Context, loan domain.Loan, entry domain.AuditEntry, delta domain.CounterDelta) error

	// ApplyPayment persists one payment and the mutated loan it produced.
	ApplyPayment(ctx context.Context, loan domain.Loan, payment domain.Payment, entries []domain.AuditEntry, delta domain.CounterDelta) error

	// ApplyExtension persists an extension row and the loan's new schedule.
	ApplyExtension(ctx context.Context, loan domain.Loan, extension domain.Extension, entry domain.AuditEntry) error

	// CancelExtension marks an extension cancelled and restores the loan's
	// schedule from the extension's stored original maturity date.
	CancelExtension(ctx context.Context, loan domain.Loan, extension domain.Extension, entry domain.AuditEntry) error

	// VoidPayment marks a payment voided and rolls the loan status back.
	VoidPayment(ctx context.Context, loan domain.Loan, payment domain.Payment, entry domain.AuditEntry, delta domain.CounterDelta) error

	// UpdateLoan persists status/fee/notes changes that involve no payment or
	// extension row. The audit entry is optional: manual-note edits are the
	// human commentary channel and do not audit. Status flips that free or
	// consume a customer slot carry their counter movement in the delta.
	UpdateLoan(ctx context.Context, loan domain.Loan, entry *domain.AuditEntry, delta domain.CounterDelta) error

	// ApplyNotesMigration persists the one-time legacy-notes backfill: the
	// loan's structured manual notes plus the synthesized audit entries.
	ApplyNotesMigration(ctx context.Context, loan domain.Loan, entries []domain.AuditEntry) error
}

// ReversalReader backs the reversal engine's daily cap and report views.
type ReversalReader interface {
	// CountSameDayReversals counts payments voided plus extensions cancelled
	// for the loan on the given calendar day (UTC).
	CountSameDayReversals(ctx context.Context, loanID string, day time.Time) (int, error)

	// ListReversalsOnDay returns every reversal across all loans on the day.
	ListReversalsOnDay(ctx context.Context, day time.Time) ([]domain.ReversalRecord, error)
}

// LoanRepositoryFacade combines all loan-related repository interfaces.
type LoanRepositoryFacade interface {
	LoanReader
	LoanWriter
	ReversalReader
}

// LoanRepositoryWithTx extends LoanRepositoryFacade with transaction capabilities.
type LoanRepositoryWithTx interface {
	LoanRepositoryFacade
	TransactionManager
}
