package repositories

import (
	"context"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
)

// ExtensionReader defines read operations for extension data. Extensions are
// only ever written through LoanWriter, inside the loan aggregate's
// transaction.
type ExtensionReader interface {
	// FindExtensionByID retrieves an extension by its unique identifier.
	FindExtensionByID(ctx context.Context, extensionID string) (*domain.Extension, error)

	// FindExtensionsByLoanID retrieves all extensions for a loan, cancelled
	// rows included, oldest first.
	FindExtensionsByLoanID(ctx context.Context, loanID string) ([]domain.Extension, error)
}

// ExtensionRepositoryFacade is the full extension repository surface.
type ExtensionRepositoryFacade interface {
	ExtensionReader
}
