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

const paymentColumns = `
	payment_id, loan_id, payment_amount,
	overdue_fee_portion, extension_fee_portion, interest_portion, principal_portion,
	balance_before, balance_after, status_before,
	discount_amount, discount_reason, discount_approved_by,
	is_voided, voided_at, voided_by, void_reason, payment_date,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxPaymentRepository reads payment rows. Writes go through the loan
// repository so they share the loan aggregate's transaction.
type PgxPaymentRepository struct {
	db *pgxpool.Pool
}

func newPgxPaymentRepository(db *pgxpool.Pool) portsrepo.PaymentRepositoryFacade {
	return &PgxPaymentRepository{db: db}
}

var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var m models.Payment
	err := row.Scan(
		&m.PaymentID,
		&m.LoanID,
		&m.PaymentAmount,
		&m.OverdueFeePortion,
		&m.ExtensionFeePortion,
		&m.InterestPortion,
		&m.PrincipalPortion,
		&m.BalanceBefore,
		&m.BalanceAfter,
		&m.StatusBefore,
		&m.DiscountAmount,
		&m.DiscountReason,
		&m.DiscountApprovedBy,
		&m.IsVoided,
		&m.VoidedAt,
		&m.VoidedBy,
		&m.VoidReason,
		&m.PaymentDate,
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

// FindPaymentByID retrieves a payment by its ID.
func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `SELECT` + paymentColumns + ` FROM payments WHERE payment_id = $1;`

	m, err := scanPayment(r.db.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find payment by ID "+paymentID, err)
	}

	domainPayment := mapping.ToDomainPayment(*m)
	return &domainPayment, nil
}

// FindPaymentsByLoanID retrieves all payments for a loan, voided rows
// included, oldest first.
func (r *PgxPaymentRepository) FindPaymentsByLoanID(ctx context.Context, loanID string) ([]domain.Payment, error) {
	query := `SELECT` + paymentColumns + ` FROM payments WHERE loan_id = $1 ORDER BY payment_date, created_at;`

	rows, err := r.db.Query(ctx, query, loanID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query payments for loan "+loanID, err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		m, err := scanPayment(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan payment row for loan "+loanID, err)
		}
		payments = append(payments, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating payment rows for loan "+loanID, err)
	}

	return mapping.ToDomainPaymentSlice(payments), nil
}
