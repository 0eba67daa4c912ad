package repositories

import (
	"context"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
)

// AuditReader defines read operations for the append-only audit trail.
// Entries are written inside LoanWriter/CustomerWriter transactions; there is
// deliberately no standalone write or delete surface.
type AuditReader interface {
	// FindEntriesByLoanID retrieves a loan's audit trail, oldest first.
	FindEntriesByLoanID(ctx context.Context, loanID string) ([]domain.AuditEntry, error)

	// CountEntriesByLoanID returns the number of audit entries for the loan.
	CountEntriesByLoanID(ctx context.Context, loanID string) (int, error)
}

// AuditRepositoryFacade is the full audit repository surface.
type AuditRepositoryFacade interface {
	AuditReader
}
