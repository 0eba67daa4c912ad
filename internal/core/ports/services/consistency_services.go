package services

import (
	"context"

	"github.com/pawnsoft/pawn_ledger_app/internal/dto"
)

// ConsistencySvcFacade recomputes denormalized customer counters from the
// underlying loans and payments and compares them to the stored values.
type ConsistencySvcFacade interface {
	// ValidateCustomer reports discrepancies between a customer's stored
	// counters and the values recomputed from their loans.
	ValidateCustomer(ctx context.Context, customerID string) (*dto.ConsistencyReport, error)

	// RepairCustomer validates and then overwrites the stored counters with
	// the recomputed values, recording a COUNTERS_REPAIRED audit entry.
	RepairCustomer(ctx context.Context, customerID string, staffUserID string) (*dto.ConsistencyReport, error)
}
