package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pawnsoft/pawn_ledger_app/internal/apperrors"
	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	portsrepo "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/repositories"
	"github.com/pawnsoft/pawn_ledger_app/internal/models"
	"github.com/pawnsoft/pawn_ledger_app/internal/utils/mapping"
)

// PgxAuditRepository reads the append-only audit trail. Entries are written
// inside the loan and customer repositories' transactions.
type PgxAuditRepository struct {
	db *pgxpool.Pool
}

func newPgxAuditRepository(db *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{db: db}
}

var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

func scanAuditEntry(row pgx.Row) (*models.AuditEntry, error) {
	var m models.AuditEntry
	err := row.Scan(
		&m.EntryID,
		&m.LoanID,
		&m.CustomerID,
		&m.ActionType,
		&m.StaffUserID,
		&m.Summary,
		&m.Amount,
		&m.PreviousValue,
		&m.NewValue,
		&m.RelatedID,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindEntriesByLoanID retrieves a loan's audit trail, oldest first.
func (r *PgxAuditRepository) FindEntriesByLoanID(ctx context.Context, loanID string) ([]domain.AuditEntry, error) {
	query := `
		SELECT entry_id, loan_id, customer_id, action_type, staff_user_id, summary,
		       amount, previous_value, new_value, related_id, created_at
		FROM audit_entries WHERE loan_id = $1 ORDER BY created_at, entry_id;`

	rows, err := r.db.Query(ctx, query, loanID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query audit entries for loan "+loanID, err)
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		m, err := scanAuditEntry(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan audit entry row for loan "+loanID, err)
		}
		entries = append(entries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating audit entry rows for loan "+loanID, err)
	}

	return mapping.ToDomainAuditEntrySlice(entries), nil
}

// CountEntriesByLoanID returns the number of audit entries for the loan.
func (r *PgxAuditRepository) CountEntriesByLoanID(ctx context.Context, loanID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM audit_entries WHERE loan_id = $1;`, loanID).Scan(&count)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count audit entries for loan "+loanID, err)
	}
	return count, nil
}
