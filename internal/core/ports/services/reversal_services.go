package services

import (
	"context"
	"time"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	"github.com/pawnsoft/pawn_ledger_app/internal/dto"
)

// ReversalSvcFacade is the same-day, rate-limited, admin-authorized undo of a
// payment or extension. Eligibility: event age within the reversal window,
// same-day reversal count for the loan under the daily cap, caller is an
// admin, and the admin PIN verifies.
type ReversalSvcFacade interface {
	// ReversePayment voids a payment; the balance restores automatically on
	// the next read because the calculator skips voided payments, and any
	// status transition the payment caused is rolled back explicitly.
	ReversePayment(ctx context.Context, req dto.ReversePaymentRequest, staffUserID string) (*domain.Payment, error)

	// CancelExtension undoes an extension under the same eligibility gate.
	CancelExtension(ctx context.Context, req dto.CancelExtensionRequest, staffUserID string) (*domain.Extension, error)

	// GetTransactionReversalCount reports reversals consumed by a loan today.
	GetTransactionReversalCount(ctx context.Context, loanID string, day time.Time) (*dto.ReversalCountResponse, error)

	// GetDailyReversalReport gives admins the audit view of a day's reversals.
	GetDailyReversalReport(ctx context.Context, day time.Time) (*dto.DailyReversalReport, error)
}
