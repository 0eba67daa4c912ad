package repositories

import (
	"context"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
)

// PaymentReader defines read operations for payment data. Payments are only
// ever written through LoanWriter, inside the loan aggregate's transaction.
type PaymentReader interface {
	// FindPaymentByID retrieves a payment by its unique identifier.
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// FindPaymentsByLoanID retrieves all payments for a loan, voided rows
	// included, oldest first.
	FindPaymentsByLoanID(ctx context.Context, loanID string) ([]domain.Payment, error)
}

// PaymentRepositoryFacade is the full payment repository surface.
type PaymentRepositoryFacade interface {
	PaymentReader
}
