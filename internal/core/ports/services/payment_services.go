package services

import (
	"context"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	"github.com/pawnsoft/pawn_ledger_app/internal/dto"
)

// PaymentSvcFacade applies cash toward loans using the fixed allocation order
// (overdue fee, extension fees, interest, principal) and detects redemption,
// renewal, and partial payments.
type PaymentSvcFacade interface {
	// ValidatePaymentRequest checks a prospective payment without mutating
	// anything and returns the balance breakdown it was validated against.
	ValidatePaymentRequest(ctx context.Context, loanID string, amount domain.Money) (*domain.BalanceBreakdown, error)

	// ProcessPayment atomically applies a payment and returns the persisted
	// Payment together with the status the loan ended in.
	ProcessPayment(ctx context.Context, req dto.ProcessPaymentRequest, staffUserID string) (*domain.Payment, domain.LoanStatus, error)

	// ProcessPaymentWithDiscount is the admin-PIN-gated discount variant.
	ProcessPaymentWithDiscount(ctx context.Context, req dto.DiscountPaymentRequest, staffUserID string) (*domain.Payment, domain.LoanStatus, error)
}
