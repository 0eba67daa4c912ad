package repositories

import (
	"context"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
)

// CustomerReader defines read operations for customer counter data.
type CustomerReader interface {
	// FindCustomerByID retrieves a customer with their denormalized counters.
	FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error)
}

// CustomerWriter defines counter-repair writes. Normal counter movement
// happens inside LoanWriter transactions via CounterDelta.
type CustomerWriter interface {
	// RepairCounters overwrites the stored counters with recomputed values and
	// appends the repair audit entry, atomically. Version-checked.
	RepairCounters(ctx context.Context, customer domain.Customer, entry domain.AuditEntry) error
}

// CustomerRepositoryFacade combines customer repository interfaces.
type CustomerRepositoryFacade interface {
	CustomerReader
	CustomerWriter
}
