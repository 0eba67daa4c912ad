package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pawnsoft/pawn_ledger_app/internal/apperrors"
	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	portsrepo "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/repositories"
	"github.com/pawnsoft/pawn_ledger_app/internal/models"
	"github.com/pawnsoft/pawn_ledger_app/internal/utils/mapping"
)

const customerColumns = `
	customer_id, name, active_loans, total_loan_value, total_transactions,
	last_transaction_date, version, created_at, created_by, last_updated_at, last_updated_by`

type PgxCustomerRepository struct {
	BaseRepository
}

func newPgxCustomerRepository(pool *pgxpool.Pool) portsrepo.CustomerRepositoryFacade {
	return &PgxCustomerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CustomerRepositoryFacade = (*PgxCustomerRepository)(nil)

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var m models.Customer
	err := row.Scan(
		&m.CustomerID,
		&m.Name,
		&m.ActiveLoans,
		&m.TotalLoanValue,
		&m.TotalTransactions,
		&m.LastTransactionDate,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindCustomerByID retrieves a customer with their denormalized counters.
func (r *PgxCustomerRepository) FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	query := `SELECT` + customerColumns + ` FROM customers WHERE customer_id = $1;`

	m, err := scanCustomer(r.Pool.QueryRow(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find customer by ID "+customerID, err)
	}

	domainCustomer := mapping.ToDomainCustomer(*m)
	return &domainCustomer, nil
}

// RepairCounters overwrites the stored counters with the recomputed values
// and appends the repair audit entry in one transaction.
func (r *PgxCustomerRepository) RepairCounters(ctx context.Context, customer domain.Customer, entry domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var storedVersion int64
	err = tx.QueryRow(ctx, `SELECT version FROM customers WHERE customer_id = $1 FOR UPDATE;`, customer.CustomerID).Scan(&storedVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to lock customer row "+customer.CustomerID, err)
	}
	if storedVersion != customer.Version {
		return apperrors.ErrConflict
	}

	m := mapping.ToModelCustomer(customer)
	query := `
		UPDATE customers SET
			active_loans = $2, total_loan_value = $3, total_transactions = $4,
			last_transaction_date = $5, version = version + 1,
			last_updated_at = $6, last_updated_by = $7
		WHERE customer_id = $1;`

	_, err = tx.Exec(ctx, query,
		m.CustomerID,
		m.ActiveLoans,
		m.TotalLoanValue,
		m.TotalTransactions,
		m.LastTransactionDate,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to repair counters for customer "+m.CustomerID, err)
	}

	batch := &pgx.Batch{}
	queueAuditEntries(batch, []domain.AuditEntry{entry})
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert repair audit entry for customer "+m.CustomerID, err)
	}

	return r.Commit(ctx, tx)
}
