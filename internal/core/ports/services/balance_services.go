package services

import (
	"context"
	"time"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
)

// BalanceSvcFacade derives what a loan owes and has paid per bucket as of any
// date. It is a pure read; it never mutates the loan.
type BalanceSvcFacade interface {
	// CalculateBalance computes the balance breakdown for a loan. A nil asOf
	// means "now". Returns apperrors.ErrNotFound when the loan is missing.
	CalculateBalance(ctx context.Context, loanID string, asOf *time.Time) (*domain.BalanceBreakdown, error)
	// ComputeBalance is CalculateBalance without the cache: it always reads
	// the rows. Mutating flows must use it so money is split against the
	// committed state, never a stale cached breakdown.
	ComputeBalance(ctx context.Context, loanID string, asOf *time.Time) (*domain.BalanceBreakdown, error)
}
