package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pawnsoft/pawn_ledger_app/internal/apperrors"
	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	portsrepo "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/repositories"
	"github.com/pawnsoft/pawn_ledger_app/internal/models"
	"github.com/pawnsoft/pawn_ledger_app/internal/utils"
	"github.com/pawnsoft/pawn_ledger_app/internal/utils/mapping"
)

const loanColumns = `
	loan_id, display_id, customer_id, loan_amount, monthly_interest_amount,
	extension_fee_per_month, pawn_date, maturity_date, grace_period_end,
	overdue_fee, status, manual_notes, legacy_notes, version,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxLoanRepository struct {
	BaseRepository
}

// newPgxLoanRepository creates a new repository for the loan aggregate.
func newPgxLoanRepository(pool *pgxpool.Pool) portsrepo.LoanRepositoryWithTx {
	return &PgxLoanRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LoanRepositoryWithTx = (*PgxLoanRepository)(nil)

func scanLoan(row pgx.Row) (*models.Loan, error) {
	var m models.Loan
	err := row.Scan(
		&m.LoanID,
		&m.DisplayID,
		&m.CustomerID,
		&m.LoanAmount,
		&m.MonthlyInterestAmount,
		&m.ExtensionFeePerMonth,
		&m.PawnDate,
		&m.MaturityDate,
		&m.GracePeriodEnd,
		&m.OverdueFee,
		&m.Status,
		&m.ManualNotes,
		&m.LegacyNotes,
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

// FindLoanByID retrieves a loan by its ID.
func (r *PgxLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `SELECT` + loanColumns + ` FROM loans WHERE loan_id = $1;`

	m, err := scanLoan(r.Pool.QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find loan by ID "+loanID, err)
	}

	domainLoan := mapping.ToDomainLoan(*m)
	return &domainLoan, nil
}

// ListLoansByCustomerID retrieves every loan a customer has ever taken.
func (r *PgxLoanRepository) ListLoansByCustomerID(ctx context.Context, customerID string) ([]domain.Loan, error) {
	query := `SELECT` + loanColumns + ` FROM loans WHERE customer_id = $1 ORDER BY pawn_date;`

	rows, err := r.Pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query loans for customer "+customerID, err)
	}
	defer rows.Close()

	loans := []models.Loan{}
	for rows.Next() {
		m, err := scanLoan(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan loan row for customer "+customerID, err)
		}
		loans = append(loans, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating loan rows for customer "+customerID, err)
	}

	return mapping.ToDomainLoanSlice(loans), nil
}

// lockLoanRow takes the row lock on a loan and verifies the caller's version
// against the stored one. All concurrent writers on the same loan serialize
// here; a version mismatch means the caller computed against stale state.
func (r *PgxLoanRepository) lockLoanRow(ctx context.Context, tx pgx.Tx, loanID string, expectedVersion int64) error {
	var storedVersion int64
	err := tx.QueryRow(ctx, `SELECT version FROM loans WHERE loan_id = $1 FOR UPDATE;`, loanID).Scan(&storedVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to lock loan row "+loanID, err)
	}
	if storedVersion != expectedVersion {
		return apperrors.ErrConflict
	}
	return nil
}

// updateLoanRowInTx writes the loan row with an incremented version.
func (r *PgxLoanRepository) updateLoanRowInTx(ctx context.Context, tx pgx.Tx, loan domain.Loan) error {
	m := mapping.ToModelLoan(loan)
	query := `
		UPDATE loans SET
			maturity_date = $2, grace_period_end = $3, overdue_fee = $4,
			status = $5, manual_notes = $6, version = version + 1,
			last_updated_at = $7, last_updated_by = $8
		WHERE loan_id = $1;`

	_, err := tx.Exec(ctx, query,
		m.LoanID,
		m.MaturityDate,
		m.GracePeriodEnd,
		m.OverdueFee,
		m.Status,
		m.ManualNotes,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update loan "+m.LoanID, err)
	}
	return nil
}

const auditInsertQuery = `
	INSERT INTO audit_entries (
		entry_id, loan_id, customer_id, action_type, staff_user_id, summary,
		amount, previous_value, new_value, related_id, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`

func queueAuditEntries(batch *pgx.Batch, entries []domain.AuditEntry) {
	for _, entry := range entries {
		m := mapping.ToModelAuditEntry(entry)
		batch.Queue(auditInsertQuery,
			m.EntryID,
			m.LoanID,
			m.CustomerID,
			m.ActionType,
			m.StaffUserID,
			m.Summary,
			m.Amount,
			m.PreviousValue,
			m.NewValue,
			m.RelatedID,
			m.CreatedAt,
		)
	}
}

// applyCounterDeltaInTx moves the customer's denormalized counters inside the
// caller's transaction.
func applyCounterDeltaInTx(ctx context.Context, tx pgx.Tx, customerID string, delta domain.CounterDelta, updatedAt time.Time, updatedBy string) error {
	if delta.IsZero() {
		return nil
	}
	query := `
		UPDATE customers SET
			active_loans = active_loans + $2,
			total_loan_value = total_loan_value + $3,
			total_transactions = total_transactions + $4,
			last_transaction_date = COALESCE($5, last_transaction_date),
			version = version + 1,
			last_updated_at = $6, last_updated_by = $7
		WHERE customer_id = $1;`

	tag, err := tx.Exec(ctx, query,
		customerID,
		delta.ActiveLoans,
		delta.TotalLoanValue.Int64(),
		delta.TotalTransactions,
		delta.TransactionAt,
		updatedAt,
		updatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to apply counter delta for customer "+customerID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CreateLoan inserts the loan, its opening audit entry, and the customer
// counter bump in one transaction. The display identifier comes from the
// loans sequence.
func (r *PgxLoanRepository) CreateLoan(ctx context.Context, loan domain.Loan, entry domain.AuditEntry, delta domain.CounterDelta) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('loan_display_seq');`).Scan(&seq); err != nil {
		return apperrors.NewAppError(500, "failed to allocate display id", err)
	}

	m := mapping.ToModelLoan(loan)
	m.DisplayID = utils.FormatLoanDisplayID(seq)

	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);`

	_, err = tx.Exec(ctx, query,
		m.LoanID,
		m.DisplayID,
		m.CustomerID,
		m.LoanAmount,
		m.MonthlyInterestAmount,
		m.ExtensionFeePerMonth,
		m.PawnDate,
		m.MaturityDate,
		m.GracePeriodEnd,
		m.OverdueFee,
		m.Status,
		m.ManualNotes,
		m.LegacyNotes,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert loan "+m.LoanID, err)
	}

	batch := &pgx.Batch{}
	queueAuditEntries(batch, []domain.AuditEntry{entry})
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert audit entry for loan "+m.LoanID, err)
	}

	if err := applyCounterDeltaInTx(ctx, tx, loan.CustomerID, delta, loan.LastUpdatedAt, loan.LastUpdatedBy); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// ApplyPayment persists one payment with the mutated loan, its audit entries,
// and the counter delta, all or nothing.
func (r *PgxLoanRepository) ApplyPayment(ctx context.Context, loan domain.Loan, payment domain.Payment, entries []domain.AuditEntry, delta domain.CounterDelta) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.lockLoanRow(ctx, tx, loan.LoanID, loan.Version); err != nil {
		return err
	}

	p := mapping.ToModelPayment(payment)
	query := `
		INSERT INTO payments (
			payment_id, loan_id, payment_amount,
			overdue_fee_portion, extension_fee_portion, interest_portion, principal_portion,
			balance_before, balance_after, status_before,
			discount_amount, discount_reason, discount_approved_by,
			is_voided, voided_at, voided_by, void_reason, payment_date,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);`

	_, err = tx.Exec(ctx, query,
		p.PaymentID,
		p.LoanID,
		p.PaymentAmount,
		p.OverdueFeePortion,
		p.ExtensionFeePortion,
		p.InterestPortion,
		p.PrincipalPortion,
		p.BalanceBefore,
		p.BalanceAfter,
		p.StatusBefore,
		p.DiscountAmount,
		p.DiscountReason,
		p.DiscountApprovedBy,
		p.IsVoided,
		p.VoidedAt,
		p.VoidedBy,
		p.VoidReason,
		p.PaymentDate,
		p.CreatedAt,
		p.CreatedBy,
		p.LastUpdatedAt,
		p.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert payment "+p.PaymentID, err)
	}

	if err := r.updateLoanRowInTx(ctx, tx, loan); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	queueAuditEntries(batch, entries)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert audit entries for payment "+p.PaymentID, err)
	}

	if err := applyCounterDeltaInTx(ctx, tx, loan.CustomerID, delta, loan.LastUpdatedAt, loan.LastUpdatedBy); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// ApplyExtension persists the extension row and the loan's new schedule.
func (r *PgxLoanRepository) ApplyExtension(ctx context.Context, loan domain.Loan, extension domain.Extension, entry domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.lockLoanRow(ctx, tx, loan.LoanID, loan.Version); err != nil {
		return err
	}

	e := mapping.ToModelExtension(extension)
	query := `
		INSERT INTO extensions (
			extension_id, loan_id, extension_months, fee_per_month, total_fee,
			original_maturity_date, new_maturity_date,
			is_cancelled, cancelled_at, cancelled_by, cancel_reason,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);`

	_, err = tx.Exec(ctx, query,
		e.ExtensionID,
		e.LoanID,
		e.ExtensionMonths,
		e.FeePerMonth,
		e.TotalFee,
		e.OriginalMaturityDate,
		e.NewMaturityDate,
		e.IsCancelled,
		e.CancelledAt,
		e.CancelledBy,
		e.CancelReason,
		e.CreatedAt,
		e.CreatedBy,
		e.LastUpdatedAt,
		e.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert extension "+e.ExtensionID, err)
	}

	if err := r.updateLoanRowInTx(ctx, tx, loan); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	queueAuditEntries(batch, []domain.AuditEntry{entry})
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert audit entry for extension "+e.ExtensionID, err)
	}

	return r.Commit(ctx, tx)
}

// CancelExtension marks the extension cancelled and restores the loan's schedule.
func (r *PgxLoanRepository) CancelExtension(ctx context.Context, loan domain.Loan, extension domain.Extension, entry domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.lockLoanRow(ctx, tx, loan.LoanID, loan.Version); err != nil {
		return err
	}

	e := mapping.ToModelExtension(extension)
	query := `
		UPDATE extensions SET
			is_cancelled = TRUE, cancelled_at = $2, cancelled_by = $3, cancel_reason = $4,
			last_updated_at = $5, last_updated_by = $6
		WHERE extension_id = $1 AND is_cancelled = FALSE;`

	tag, err := tx.Exec(ctx, query,
		e.ExtensionID,
		e.CancelledAt,
		e.CancelledBy,
		e.CancelReason,
		e.LastUpdatedAt,
		e.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to cancel extension "+e.ExtensionID, err)
	}
	if tag.RowsAffected() == 0 {
		// Lost the race with another cancel of the same extension.
		return apperrors.ErrConflict
	}

	if err := r.updateLoanRowInTx(ctx, tx, loan); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	queueAuditEntries(batch, []domain.AuditEntry{entry})
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert audit entry for extension cancel "+e.ExtensionID, err)
	}

	return r.Commit(ctx, tx)
}

// VoidPayment marks the payment voided and rolls the loan back.
func (r *PgxLoanRepository) VoidPayment(ctx context.Context, loan domain.Loan, payment domain.Payment, entry domain.AuditEntry, delta domain.CounterDelta) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.lockLoanRow(ctx, tx, loan.LoanID, loan.Version); err != nil {
		return err
	}

	p := mapping.ToModelPayment(payment)
	query := `
		UPDATE payments SET
			is_voided = TRUE, voided_at = $2, voided_by = $3, void_reason = $4,
			last_updated_at = $5, last_updated_by = $6
		WHERE payment_id = $1 AND is_voided = FALSE;`

	tag, err := tx.Exec(ctx, query,
		p.PaymentID,
		p.VoidedAt,
		p.VoidedBy,
		p.VoidReason,
		p.LastUpdatedAt,
		p.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to void payment "+p.PaymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}

	if err := r.updateLoanRowInTx(ctx, tx, loan); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	queueAuditEntries(batch, []domain.AuditEntry{entry})
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert audit entry for void "+p.PaymentID, err)
	}

	if err := applyCounterDeltaInTx(ctx, tx, loan.CustomerID, delta, loan.LastUpdatedAt, loan.LastUpdatedBy); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateLoan persists status/fee/notes changes with an optional audit entry
// and counter delta.
func (r *PgxLoanRepository) UpdateLoan(ctx context.Context, loan domain.Loan, entry *domain.AuditEntry, delta domain.CounterDelta) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.lockLoanRow(ctx, tx, loan.LoanID, loan.Version); err != nil {
		return err
	}

	if err := r.updateLoanRowInTx(ctx, tx, loan); err != nil {
		return err
	}

	if entry != nil {
		batch := &pgx.Batch{}
		queueAuditEntries(batch, []domain.AuditEntry{*entry})
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return apperrors.NewAppError(500, "failed to insert audit entry for loan "+loan.LoanID, err)
		}
	}

	if err := applyCounterDeltaInTx(ctx, tx, loan.CustomerID, delta, loan.LastUpdatedAt, loan.LastUpdatedBy); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// ApplyNotesMigration persists the legacy-notes backfill: the loan's updated
// manual notes plus the synthesized audit entries.
func (r *PgxLoanRepository) ApplyNotesMigration(ctx context.Context, loan domain.Loan, entries []domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.lockLoanRow(ctx, tx, loan.LoanID, loan.Version); err != nil {
		return err
	}

	if err := r.updateLoanRowInTx(ctx, tx, loan); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	queueAuditEntries(batch, entries)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert migrated audit entries for loan "+loan.LoanID, err)
	}

	return r.Commit(ctx, tx)
}

// CountSameDayReversals counts voids and cancels for the loan on the given
// calendar day (UTC).
func (r *PgxLoanRepository) CountSameDayReversals(ctx context.Context, loanID string, day time.Time) (int, error) {
	dayStart := day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `
		SELECT
			(SELECT count(*) FROM payments
			 WHERE loan_id = $1 AND is_voided AND voided_at >= $2 AND voided_at < $3)
			+
			(SELECT count(*) FROM extensions
			 WHERE loan_id = $1 AND is_cancelled AND cancelled_at >= $2 AND cancelled_at < $3);`

	var count int
	if err := r.Pool.QueryRow(ctx, query, loanID, dayStart, dayEnd).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(500, "failed to count reversals for loan "+loanID, err)
	}
	return count, nil
}

// ListReversalsOnDay returns every reversal across all loans on the day,
// voided payments and cancelled extensions interleaved by time.
func (r *PgxLoanRepository) ListReversalsOnDay(ctx context.Context, day time.Time) ([]domain.ReversalRecord, error) {
	dayStart := day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `
		SELECT 'PAYMENT_VOID' AS kind, loan_id, payment_id AS related_id,
		       payment_amount AS amount, voided_by, void_reason, voided_at
		FROM payments
		WHERE is_voided AND voided_at >= $1 AND voided_at < $2
		UNION ALL
		SELECT 'EXTENSION_CANCEL' AS kind, loan_id, extension_id AS related_id,
		       total_fee AS amount, cancelled_by, cancel_reason, cancelled_at
		FROM extensions
		WHERE is_cancelled AND cancelled_at >= $1 AND cancelled_at < $2
		ORDER BY 7;`

	rows, err := r.Pool.Query(ctx, query, dayStart, dayEnd)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query daily reversals", err)
	}
	defer rows.Close()

	records := []domain.ReversalRecord{}
	for rows.Next() {
		var rec domain.ReversalRecord
		var kind string
		var amount int64
		if err := rows.Scan(&kind, &rec.LoanID, &rec.RelatedID, &amount, &rec.ReversedBy, &rec.Reason, &rec.ReversedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan reversal row", err)
		}
		rec.Kind = domain.ReversalKind(kind)
		rec.Amount = domain.Money(amount)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating reversal rows", err)
	}

	return records, nil
}
