package services

import (
	"context"
	"fmt"
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

// reversalService is the same-day undo of payments and extensions. It owns
// every gate: admin PIN, reversal window, and the per-loan daily cap. The
// actual unwinding leans on the fact that balances are derived: a voided
// payment simply stops counting.
type reversalService struct {
	BaseService
	loanRepo     portsrepo.LoanRepositoryFacade
	paymentRepo  portsrepo.PaymentReader
	extensionSvc portssvc.ExtensionSvcFacade
	authSvc      portssvc.AuthVerifierSvc
	activitySvc  portssvc.ActivitySvcFacade
	cache        cache.Cache
	cfg          *config.Config
}

// NewReversalService creates a new ReversalService.
func NewReversalService(loanRepo portsrepo.LoanRepositoryFacade, paymentRepo portsrepo.PaymentReader, extensionSvc portssvc.ExtensionSvcFacade, authSvc portssvc.AuthVerifierSvc, activitySvc portssvc.ActivitySvcFacade, c cache.Cache, cfg *config.Config) portssvc.ReversalSvcFacade {
	return &reversalService{
		loanRepo:     loanRepo,
		paymentRepo:  paymentRepo,
		extensionSvc: extensionSvc,
		authSvc:      authSvc,
		activitySvc:  activitySvc,
		cache:        c,
		cfg:          cfg,
	}
}

var _ portssvc.ReversalSvcFacade = (*reversalService)(nil)

// checkEligibility enforces the shared reversal gates for an event that
// happened at eventTime on the given loan.
func (s *reversalService) checkEligibility(ctx context.Context, loanID string, eventTime time.Time, staffUserID, adminPin string) error {
	if err := s.authSvc.VerifyAdminPin(ctx, staffUserID, adminPin); err != nil {
		return err
	}

	now := time.Now().UTC()
	if now.Sub(eventTime) > s.cfg.ReversalWindow || !sameDay(eventTime, now) {
		return fmt.Errorf("%w: only same-day transactions can be reversed", apperrors.ErrBusinessRule)
	}

	count, err := s.loanRepo.CountSameDayReversals(ctx, loanID, now)
	if err != nil {
		return err
	}
	if count >= s.cfg.ReversalDailyCap {
		return fmt.Errorf("%w: loan has reached the daily limit of %d reversals", apperrors.ErrBusinessRule, s.cfg.ReversalDailyCap)
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// ReversePayment voids a payment and rolls the loan back to the status it had
// when the payment was taken.
func (s *reversalService) ReversePayment(ctx context.Context, req dto.ReversePaymentRequest, staffUserID string) (*domain.Payment, error) {
	var voided *domain.Payment

	err := s.withConflictRetry(ctx, func() error {
		payment, err := s.paymentRepo.FindPaymentByID(ctx, req.PaymentID)
		if err != nil {
			return err
		}
		if payment.IsVoided {
			return fmt.Errorf("%w: payment %s is already voided", apperrors.ErrBusinessRule, payment.PaymentID)
		}

		if err := s.checkEligibility(ctx, payment.LoanID, payment.PaymentDate, staffUserID, req.AdminPin); err != nil {
			return err
		}

		loan, err := s.loanRepo.FindLoanByID(ctx, payment.LoanID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		statusNow := loan.Status

		payment.IsVoided = true
		payment.VoidedAt = &now
		payment.VoidedBy = staffUserID
		payment.VoidReason = req.Reason
		payment.LastUpdatedAt = now
		payment.LastUpdatedBy = staffUserID

		delta := domain.CounterDelta{TotalTransactions: -1}

		// Undo whatever the payment did to the loan beyond the balance. A
		// redemption freed the customer's slot; a renewal advanced the
		// maturity. Both roll back to the exact observed prior state.
		if statusNow.IsTerminal() && payment.StatusBefore.UsesSlot() {
			delta.ActiveLoans = 1
			delta.TotalLoanValue = loan.LoanAmount
		}
		if statusNow == domain.StatusExtended && payment.StatusBefore != domain.StatusExtended &&
			payment.PrincipalPortion.IsZero() && loan.MonthlyInterestAmount.IsPositive() {
			monthsCovered := int(payment.InterestPortion.Int64() / loan.MonthlyInterestAmount.Int64())
			if monthsCovered > 0 {
				loan.MaturityDate = loan.MaturityDate.AddDate(0, -monthsCovered, 0)
				loan.GracePeriodEnd = loan.MaturityDate.AddDate(0, 0, s.cfg.GracePeriodDays)
			}
		}

		loan.Status = payment.StatusBefore
		loan.LastUpdatedAt = now
		loan.LastUpdatedBy = staffUserID

		amount := payment.PaymentAmount
		entry := domain.AuditEntry{
			EntryID:     uuid.NewString(),
			LoanID:      loan.LoanID,
			ActionType:  domain.ActionPaymentVoided,
			StaffUserID: staffUserID,
			Summary: fmt.Sprintf("Payment of %s voided (%s), balance restored to %s",
				payment.PaymentAmount, req.Reason, payment.BalanceBefore),
			Amount:        &amount,
			PreviousValue: string(statusNow),
			NewValue:      string(payment.StatusBefore),
			RelatedID:     payment.PaymentID,
			CreatedAt:     now,
		}

		if err := s.loanRepo.VoidPayment(ctx, *loan, *payment, entry, delta); err != nil {
			return err
		}

		voided = payment
		s.invalidate(ctx, loan.LoanID, loan.CustomerID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, staffUserID, "payment_reversed", "Payment voided same-day",
		[]string{voided.LoanID, voided.PaymentID}, map[string]any{
			"amount": voided.PaymentAmount.Int64(),
			"reason": voided.VoidReason,
		})

	return voided, nil
}

// CancelExtension hands the mechanical unwinding to the extension service,
// injecting the reversal gates so they run inside each retried attempt. A
// conflict retry re-reads state, and the daily cap must hold against what the
// retry sees, not what the first attempt saw.
func (s *reversalService) CancelExtension(ctx context.Context, req dto.CancelExtensionRequest, staffUserID string) (*domain.Extension, error) {
	cancelled, err := s.extensionSvc.CancelExtension(ctx, req, staffUserID, func(ctx context.Context, ext *domain.Extension) error {
		return s.checkEligibility(ctx, ext.LoanID, ext.CreatedAt, staffUserID, req.AdminPin)
	})
	if err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, staffUserID, "extension_reversed", "Extension cancelled same-day",
		[]string{cancelled.LoanID, cancelled.ExtensionID}, map[string]any{
			"total_fee": cancelled.TotalFee.Int64(),
			"reason":    req.Reason,
		})

	return cancelled, nil
}

// GetTransactionReversalCount reports reversals consumed by a loan today.
func (s *reversalService) GetTransactionReversalCount(ctx context.Context, loanID string, day time.Time) (*dto.ReversalCountResponse, error) {
	count, err := s.loanRepo.CountSameDayReversals(ctx, loanID, day)
	if err != nil {
		return nil, err
	}
	remaining := s.cfg.ReversalDailyCap - count
	if remaining < 0 {
		remaining = 0
	}
	return &dto.ReversalCountResponse{
		LoanID:    loanID,
		Day:       day.UTC().Truncate(24 * time.Hour),
		Count:     count,
		Remaining: remaining,
	}, nil
}

// GetDailyReversalReport gives admins the audit view of a day's reversals.
func (s *reversalService) GetDailyReversalReport(ctx context.Context, day time.Time) (*dto.DailyReversalReport, error) {
	records, err := s.loanRepo.ListReversalsOnDay(ctx, day)
	if err != nil {
		return nil, err
	}
	return &dto.DailyReversalReport{
		Day:       day.UTC().Truncate(24 * time.Hour),
		Total:     len(records),
		Reversals: dto.ToReversalRecordResponses(records),
	}, nil
}

func (s *reversalService) invalidate(ctx context.Context, loanID, customerID string) {
	if err := s.cache.DeletePattern(ctx, cache.LoanPattern(loanID)); err != nil {
		s.LogError(ctx, err, "failed to invalidate loan cache")
	}
	if err := s.cache.DeletePattern(ctx, cache.CustomerPattern(customerID)); err != nil {
		s.LogError(ctx, err, "failed to invalidate customer cache")
	}
}
