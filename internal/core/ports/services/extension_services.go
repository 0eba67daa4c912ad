package services

import (
	"context"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	"github.com/pawnsoft/pawn_ledger_app/internal/dto"
)

// ExtensionSvcFacade extends loan maturities for a fee. New maturity dates
// are always computed from the loan's existing maturity, never from "today".
type ExtensionSvcFacade interface {
	// CheckExtensionEligibility verifies status and month bounds without
	// mutating anything.
	CheckExtensionEligibility(ctx context.Context, loanID string, months int) error

	// ProcessExtension records the extension, moves the maturity and grace
	// dates, and marks the loan extended. The fee becomes a due bucket; it is
	// not automatically paid.
	ProcessExtension(ctx context.Context, req dto.ProcessExtensionRequest, staffUserID string) (*domain.Extension, error)

	// CancelExtension undoes an extension: restores the schedule from the
	// stored original maturity date and removes the fee from the due side.
	// A non-nil gate runs inside the retried critical section on every
	// attempt, so eligibility rules checked there (the reversal engine's
	// window and daily cap) hold against the state a retry re-reads.
	CancelExtension(ctx context.Context, req dto.CancelExtensionRequest, staffUserID string, gate ExtensionCancelGate) (*domain.Extension, error)
}

// ExtensionCancelGate is an extra admission check run against the extension
// as read inside the cancellation's critical section.
type ExtensionCancelGate func(ctx context.Context, ext *domain.Extension) error
