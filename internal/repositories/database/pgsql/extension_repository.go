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

const extensionColumns = `
	extension_id, loan_id, extension_months, fee_per_month, total_fee,
	original_maturity_date, new_maturity_date,
	is_cancelled, cancelled_at, cancelled_by, cancel_reason,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxExtensionRepository reads extension rows. Writes go through the loan
// repository so they share the loan aggregate's transaction.
type PgxExtensionRepository struct {
	db *pgxpool.Pool
}

func newPgxExtensionRepository(db *pgxpool.Pool) portsrepo.ExtensionRepositoryFacade {
	return &PgxExtensionRepository{db: db}
}

var _ portsrepo.ExtensionRepositoryFacade = (*PgxExtensionRepository)(nil)

func scanExtension(row pgx.Row) (*models.Extension, error) {
	var m models.Extension
	err := row.Scan(
		&m.ExtensionID,
		&m.LoanID,
		&m.ExtensionMonths,
		&m.FeePerMonth,
		&m.TotalFee,
		&m.OriginalMaturityDate,
		&m.NewMaturityDate,
		&m.IsCancelled,
		&m.CancelledAt,
		&m.CancelledBy,
		&m.CancelReason,
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

// FindExtensionByID retrieves an extension by its ID.
func (r *PgxExtensionRepository) FindExtensionByID(ctx context.Context, extensionID string) (*domain.Extension, error) {
	query := `SELECT` + extensionColumns + ` FROM extensions WHERE extension_id = $1;`

	m, err := scanExtension(r.db.QueryRow(ctx, query, extensionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find extension by ID "+extensionID, err)
	}

	domainExtension := mapping.ToDomainExtension(*m)
	return &domainExtension, nil
}

// FindExtensionsByLoanID retrieves all extensions for a loan, cancelled rows
// included, oldest first.
func (r *PgxExtensionRepository) FindExtensionsByLoanID(ctx context.Context, loanID string) ([]domain.Extension, error) {
	query := `SELECT` + extensionColumns + ` FROM extensions WHERE loan_id = $1 ORDER BY created_at;`

	rows, err := r.db.Query(ctx, query, loanID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query extensions for loan "+loanID, err)
	}
	defer rows.Close()

	extensions := []models.Extension{}
	for rows.Next() {
		m, err := scanExtension(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan extension row for loan "+loanID, err)
		}
		extensions = append(extensions, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating extension rows for loan "+loanID, err)
	}

	return mapping.ToDomainExtensionSlice(extensions), nil
}
