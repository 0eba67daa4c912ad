package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pawnsoft/pawn_ledger_app/internal/apperrors"
	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	portsrepo "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/services"
	"github.com/pawnsoft/pawn_ledger_app/internal/dto"
	"github.com/pawnsoft/pawn_ledger_app/internal/platform/cache"
	"github.com/pawnsoft/pawn_ledger_app/internal/platform/config"
)

const defaultTermMonths = 1

// staffStatusTargets are the statuses staff may set directly. Money-driven
// statuses (redeemed, the renewal form of extended) are reachable only
// through the payment processor, and reversal alone may leave a terminal
// status.
var staffStatusTargets = map[domain.LoanStatus]bool{
	domain.StatusActive:    true,
	domain.StatusOverdue:   true,
	domain.StatusHold:      true,
	domain.StatusDamaged:   true,
	domain.StatusForfeited: true,
	domain.StatusSold:      true,
	domain.StatusVoided:    true,
	domain.StatusCanceled:  true,
}

// loanService handles the loan lifecycle outside of payments and extensions.
type loanService struct {
	BaseService
	loanRepo     portsrepo.LoanRepositoryFacade
	customerRepo portsrepo.CustomerReader
	auditRepo    portsrepo.AuditReader
	activitySvc  portssvc.ActivitySvcFacade
	cache        cache.Cache
	cfg          *config.Config
}

// NewLoanService creates a new LoanService.
func NewLoanService(loanRepo portsrepo.LoanRepositoryFacade, customerRepo portsrepo.CustomerReader, auditRepo portsrepo.AuditReader, activitySvc portssvc.ActivitySvcFacade, c cache.Cache, cfg *config.Config) portssvc.LoanSvcFacade {
	return &loanService{
		loanRepo:     loanRepo,
		customerRepo: customerRepo,
		auditRepo:    auditRepo,
		activitySvc:  activitySvc,
		cache:        c,
		cfg:          cfg,
	}
}

var _ portssvc.LoanSvcFacade = (*loanService)(nil)

// GetLoanByID retrieves a loan, optionally with its audit trail attached.
func (s *loanService) GetLoanByID(ctx context.Context, loanID string, includeAudit bool) (*domain.Loan, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if includeAudit {
		entries, err := s.auditRepo.FindEntriesByLoanID(ctx, loanID)
		if err != nil {
			return nil, err
		}
		loan.AuditTrail = entries
	}
	return loan, nil
}

// CreateLoan opens a new pawn loan. The display identifier is assigned from
// the database sequence inside the creating transaction.
func (s *loanService) CreateLoan(ctx context.Context, req dto.CreateLoanRequest, staffUserID string) (*domain.Loan, error) {
	if _, err := s.customerRepo.FindCustomerByID(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	loanAmount, err := domain.NewMoney(req.LoanAmount)
	if err != nil {
		return nil, fmt.Errorf("%w: loan amount: %s", apperrors.ErrValidation, err)
	}
	monthlyInterest, err := domain.NewMoney(req.MonthlyInterestAmount)
	if err != nil {
		return nil, fmt.Errorf("%w: monthly interest: %s", apperrors.ErrValidation, err)
	}
	extensionFee, err := domain.NewMoney(req.ExtensionFeePerMonth)
	if err != nil {
		return nil, fmt.Errorf("%w: extension fee: %s", apperrors.ErrValidation, err)
	}

	termMonths := req.TermMonths
	if termMonths == 0 {
		termMonths = defaultTermMonths
	}

	now := time.Now().UTC()
	maturity := now.AddDate(0, termMonths, 0)

	loan := domain.Loan{
		LoanID:                uuid.NewString(),
		CustomerID:            req.CustomerID,
		LoanAmount:            loanAmount,
		MonthlyInterestAmount: monthlyInterest,
		ExtensionFeePerMonth:  extensionFee,
		PawnDate:              now,
		MaturityDate:          maturity,
		GracePeriodEnd:        maturity.AddDate(0, 0, s.cfg.GracePeriodDays),
		Status:                domain.StatusActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     staffUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: staffUserID,
		},
		Versioned: domain.Versioned{Version: 1},
	}

	amount := loan.LoanAmount
	entry := domain.AuditEntry{
		EntryID:     uuid.NewString(),
		LoanID:      loan.LoanID,
		ActionType:  domain.ActionLoanCreated,
		StaffUserID: staffUserID,
		Summary: fmt.Sprintf("Loan opened: %s principal, %s monthly interest, matures %s",
			loan.LoanAmount, loan.MonthlyInterestAmount, maturity.Format("2006-01-02")),
		Amount:    &amount,
		CreatedAt: now,
	}

	delta := domain.CounterDelta{
		ActiveLoans:       1,
		TotalLoanValue:    loan.LoanAmount,
		TotalTransactions: 1,
		TransactionAt:     &now,
	}

	if err := s.loanRepo.CreateLoan(ctx, loan, entry, delta); err != nil {
		return nil, err
	}
	s.invalidate(ctx, loan.LoanID, loan.CustomerID)

	// Re-read to pick up the sequence-assigned display identifier.
	created, err := s.loanRepo.FindLoanByID(ctx, loan.LoanID)
	if err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, staffUserID, "loan_created", "New pawn loan opened",
		[]string{created.LoanID}, map[string]any{
			"display_id":  created.DisplayID,
			"loan_amount": created.LoanAmount.Int64(),
		})

	return created, nil
}

// ChangeStatus moves a loan between staff-driven statuses.
func (s *loanService) ChangeStatus(ctx context.Context, req dto.ChangeStatusRequest, staffUserID string) (*domain.Loan, error) {
	target, ok := domain.ParseLoanStatus(req.Status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, req.Status)
	}
	if !staffStatusTargets[target] {
		return nil, fmt.Errorf("%w: status %s can only be reached through a payment", apperrors.ErrBusinessRule, target)
	}

	var updated *domain.Loan
	err := s.withConflictRetry(ctx, func() error {
		loan, err := s.loanRepo.FindLoanByID(ctx, req.LoanID)
		if err != nil {
			return err
		}
		if loan.Status == target {
			updated = loan
			return nil
		}
		if loan.Status.IsTerminal() {
			return fmt.Errorf("%w: loan %s is %s; terminal loans only change through reversal", apperrors.ErrBusinessRule, loan.DisplayID, loan.Status)
		}

		now := time.Now().UTC()
		summary := fmt.Sprintf("Status changed from %s to %s", loan.Status, target)
		if req.Reason != "" {
			summary = fmt.Sprintf("%s: %s", summary, req.Reason)
		}
		entry := statusAuditEntry(loan, target, domain.ActionStatusChanged, summary, "", staffUserID, now)

		// Moving in or out of a slot-using status moves the customer's
		// denormalized counters with it.
		delta := domain.CounterDelta{}
		switch {
		case loan.Status.UsesSlot() && !target.UsesSlot():
			delta.ActiveLoans = -1
			delta.TotalLoanValue = domain.Zero.Sub(loan.LoanAmount)
		case !loan.Status.UsesSlot() && target.UsesSlot():
			delta.ActiveLoans = 1
			delta.TotalLoanValue = loan.LoanAmount
		}

		loan.Status = target
		loan.LastUpdatedAt = now
		loan.LastUpdatedBy = staffUserID

		if err := s.loanRepo.UpdateLoan(ctx, *loan, &entry, delta); err != nil {
			return err
		}

		updated = loan
		s.invalidate(ctx, loan.LoanID, loan.CustomerID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetOverdueFee sets the staff-assessed overdue fee on an overdue loan.
func (s *loanService) SetOverdueFee(ctx context.Context, req dto.SetOverdueFeeRequest, staffUserID string) (*domain.Loan, error) {
	fee, err := domain.NewMoney(req.Fee)
	if err != nil {
		return nil, fmt.Errorf("%w: overdue fee: %s", apperrors.ErrValidation, err)
	}
	return s.updateOverdueFee(ctx, req.LoanID, fee, staffUserID)
}

// ClearOverdueFee zeroes the overdue fee.
func (s *loanService) ClearOverdueFee(ctx context.Context, loanID string, staffUserID string) (*domain.Loan, error) {
	return s.updateOverdueFee(ctx, loanID, domain.Zero, staffUserID)
}

func (s *loanService) updateOverdueFee(ctx context.Context, loanID string, fee domain.Money, staffUserID string) (*domain.Loan, error) {
	var updated *domain.Loan
	err := s.withConflictRetry(ctx, func() error {
		loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
		if err != nil {
			return err
		}
		if loan.Status != domain.StatusOverdue {
			return fmt.Errorf("%w: overdue fee requires an OVERDUE loan, got %s", apperrors.ErrBusinessRule, loan.Status)
		}

		now := time.Now().UTC()
		action := domain.ActionOverdueFeeSet
		summary := fmt.Sprintf("Overdue fee set to %s", fee)
		if fee.IsZero() {
			action = domain.ActionOverdueFeeCleared
			summary = "Overdue fee cleared"
		}

		amount := fee
		entry := domain.AuditEntry{
			EntryID:       uuid.NewString(),
			LoanID:        loan.LoanID,
			ActionType:    action,
			StaffUserID:   staffUserID,
			Summary:       summary,
			Amount:        &amount,
			PreviousValue: loan.OverdueFee.String(),
			NewValue:      fee.String(),
			CreatedAt:     now,
		}

		loan.OverdueFee = fee
		loan.LastUpdatedAt = now
		loan.LastUpdatedBy = staffUserID

		if err := s.loanRepo.UpdateLoan(ctx, *loan, &entry, domain.CounterDelta{}); err != nil {
			return err
		}

		updated = loan
		s.invalidate(ctx, loan.LoanID, loan.CustomerID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddManualNote appends to the free-text commentary channel. The commentary
// channel is human scratch space; it produces no audit entry.
func (s *loanService) AddManualNote(ctx context.Context, req dto.AddManualNoteRequest, staffUserID string) (*domain.Loan, error) {
	note := strings.TrimSpace(req.Note)
	if note == "" {
		return nil, fmt.Errorf("%w: note must not be empty", apperrors.ErrValidation)
	}

	var updated *domain.Loan
	err := s.withConflictRetry(ctx, func() error {
		loan, err := s.loanRepo.FindLoanByID(ctx, req.LoanID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		line := fmt.Sprintf("[%s] %s", now.Format("2006-01-02"), note)
		if loan.ManualNotes == "" {
			loan.ManualNotes = line
		} else {
			loan.ManualNotes = loan.ManualNotes + "\n" + line
		}
		loan.LastUpdatedAt = now
		loan.LastUpdatedBy = staffUserID

		if err := s.loanRepo.UpdateLoan(ctx, *loan, nil, domain.CounterDelta{}); err != nil {
			return err
		}
		updated = loan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ClearManualNotes empties the commentary channel. The audit trail is a
// different channel and is never cleared.
func (s *loanService) ClearManualNotes(ctx context.Context, loanID string, staffUserID string) (*domain.Loan, error) {
	var updated *domain.Loan
	err := s.withConflictRetry(ctx, func() error {
		loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		loan.ManualNotes = ""
		loan.LastUpdatedAt = now
		loan.LastUpdatedBy = staffUserID

		if err := s.loanRepo.UpdateLoan(ctx, *loan, nil, domain.CounterDelta{}); err != nil {
			return err
		}
		updated = loan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *loanService) invalidate(ctx context.Context, loanID, customerID string) {
	if err := s.cache.DeletePattern(ctx, cache.LoanPattern(loanID)); err != nil {
		s.LogError(ctx, err, "failed to invalidate loan cache")
	}
	if err := s.cache.DeletePattern(ctx, cache.CustomerPattern(customerID)); err != nil {
		s.LogError(ctx, err, "failed to invalidate customer cache")
	}
}
