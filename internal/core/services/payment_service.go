package services

import (
	"context"
	"fmt"
	"log/slog"
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

// paymentService allocates cash across the debt buckets in the fixed priority
// order and decides what the payment means for the loan: redemption, renewal,
// or just a partial payment.
type paymentService struct {
	BaseService
	balanceSvc  portssvc.BalanceSvcFacade
	authSvc     portssvc.AuthVerifierSvc
	activitySvc portssvc.ActivitySvcFacade
	loanRepo    portsrepo.LoanRepositoryFacade
	cache       cache.Cache
	cfg         *config.Config
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(loanRepo portsrepo.LoanRepositoryFacade, balanceSvc portssvc.BalanceSvcFacade, authSvc portssvc.AuthVerifierSvc, activitySvc portssvc.ActivitySvcFacade, c cache.Cache, cfg *config.Config) portssvc.PaymentSvcFacade {
	return &paymentService{
		balanceSvc:  balanceSvc,
		authSvc:     authSvc,
		activitySvc: activitySvc,
		loanRepo:    loanRepo,
		cache:       c,
		cfg:         cfg,
	}
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// allocation is the per-bucket split of one payment.
type allocation struct {
	portions map[domain.Bucket]domain.Money
	// leftover is cash beyond every bucket's outstanding amount. It must stay
	// within the configured overpayment tolerance or the payment is rejected.
	leftover domain.Money
}

func (a allocation) portion(b domain.Bucket) domain.Money { return a.portions[b] }

func (a allocation) total() domain.Money {
	total := domain.Zero
	for _, p := range a.portions {
		total = total.Add(p)
	}
	return total
}

// allocate splits cash across the buckets in priority order: overdue fee,
// extension fees, interest, principal. An approved discount is burned against
// the outstanding buckets first, in the same order, so the cash portions sum
// to exactly the cash received.
func allocate(breakdown *domain.BalanceBreakdown, cash, discount domain.Money) allocation {
	outstanding := make(map[domain.Bucket]domain.Money, len(domain.AllocationOrder))
	for _, bucket := range domain.AllocationOrder {
		outstanding[bucket] = breakdown.ForBucket(bucket).Outstanding()
	}

	for _, bucket := range domain.AllocationOrder {
		if discount.IsZero() {
			break
		}
		burn := outstanding[bucket].Min(discount)
		outstanding[bucket] = outstanding[bucket].Sub(burn)
		discount = discount.Sub(burn)
	}

	result := allocation{portions: make(map[domain.Bucket]domain.Money, len(domain.AllocationOrder))}
	for _, bucket := range domain.AllocationOrder {
		portion := outstanding[bucket].Min(cash)
		result.portions[bucket] = portion
		cash = cash.Sub(portion)
	}
	result.leftover = cash
	return result
}

// ValidatePaymentRequest checks a prospective payment without writing
// anything. Returns the breakdown so the caller can show the clerk what the
// payment would settle.
func (s *paymentService) ValidatePaymentRequest(ctx context.Context, loanID string, amount domain.Money) (*domain.BalanceBreakdown, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}

	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.Status.IsPayable() {
		return nil, fmt.Errorf("%w: loan %s is %s and cannot accept payments", apperrors.ErrBusinessRule, loan.DisplayID, loan.Status)
	}

	breakdown, err := s.balanceSvc.CalculateBalance(ctx, loanID, nil)
	if err != nil {
		return nil, err
	}

	tolerance := domain.Money(s.cfg.OverpaymentTolerance)
	if amount > breakdown.CurrentBalance.Add(tolerance) {
		return nil, fmt.Errorf("%w: payment of %s exceeds the balance of %s by more than %s",
			apperrors.ErrValidation, amount, breakdown.CurrentBalance, tolerance)
	}

	return breakdown, nil
}

// ProcessPayment applies a payment atomically and reports the resulting loan status.
func (s *paymentService) ProcessPayment(ctx context.Context, req dto.ProcessPaymentRequest, staffUserID string) (*domain.Payment, domain.LoanStatus, error) {
	return s.process(ctx, req.LoanID, domain.Money(req.Amount), domain.Zero, "", "", staffUserID)
}

// ProcessPaymentWithDiscount applies a payment with an admin-approved
// discount. The PIN is verified before any balance work happens.
func (s *paymentService) ProcessPaymentWithDiscount(ctx context.Context, req dto.DiscountPaymentRequest, staffUserID string) (*domain.Payment, domain.LoanStatus, error) {
	if err := s.authSvc.VerifyAdminPin(ctx, staffUserID, req.AdminPin); err != nil {
		return nil, "", err
	}
	return s.process(ctx, req.LoanID, domain.Money(req.Amount), domain.Money(req.DiscountAmount), req.DiscountReason, staffUserID, staffUserID)
}

func (s *paymentService) process(ctx context.Context, loanID string, amount, discount domain.Money, discountReason, discountApprover, staffUserID string) (*domain.Payment, domain.LoanStatus, error) {
	logger := s.GetLogger(ctx)

	var payment *domain.Payment
	var endStatus domain.LoanStatus

	err := s.withConflictRetry(ctx, func() error {
		loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
		if err != nil {
			return err
		}
		if !loan.Status.IsPayable() {
			return fmt.Errorf("%w: loan %s is %s and cannot accept payments", apperrors.ErrBusinessRule, loan.DisplayID, loan.Status)
		}

		// Allocation splits real money; it must see the committed rows, not a
		// cached breakdown that a failed invalidation may have left stale.
		breakdown, err := s.balanceSvc.ComputeBalance(ctx, loanID, nil)
		if err != nil {
			return err
		}

		if discount.IsPositive() && discount > breakdown.CurrentBalance {
			return fmt.Errorf("%w: discount of %s exceeds the balance of %s", apperrors.ErrValidation, discount, breakdown.CurrentBalance)
		}
		tolerance := domain.Money(s.cfg.OverpaymentTolerance)
		if amount > breakdown.CurrentBalance.Sub(discount).Add(tolerance) {
			return fmt.Errorf("%w: payment of %s exceeds the balance of %s by more than %s",
				apperrors.ErrValidation, amount, breakdown.CurrentBalance.Sub(discount), tolerance)
		}

		alloc := allocate(breakdown, amount, discount)
		if alloc.leftover.IsPositive() {
			logger.Info("overpayment within tolerance treated as settled",
				slog.String("loan_id", loanID), slog.String("leftover", alloc.leftover.String()))
		}

		now := time.Now().UTC()
		settled := alloc.total().Add(discount)
		balanceAfter := breakdown.CurrentBalance.SubFloor(settled)

		p := domain.Payment{
			PaymentID:           uuid.NewString(),
			LoanID:              loan.LoanID,
			PaymentAmount:       amount,
			OverdueFeePortion:   alloc.portion(domain.BucketOverdueFee),
			ExtensionFeePortion: alloc.portion(domain.BucketExtensionFees),
			InterestPortion:     alloc.portion(domain.BucketInterest),
			PrincipalPortion:    alloc.portion(domain.BucketPrincipal),
			BalanceBefore:       breakdown.CurrentBalance,
			BalanceAfter:        balanceAfter,
			StatusBefore:        loan.Status,
			DiscountAmount:      discount,
			DiscountReason:      discountReason,
			DiscountApprovedBy:  discountApprover,
			PaymentDate:         now,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     staffUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: staffUserID,
			},
		}

		entries := []domain.AuditEntry{paymentAuditEntry(loan, p, staffUserID, now)}
		if discount.IsPositive() {
			entries = append(entries, discountAuditEntry(loan, p, staffUserID, now))
		}

		delta := domain.CounterDelta{TotalTransactions: 1, TransactionAt: &now}
		statusAfter := loan.Status

		switch {
		case balanceAfter.IsZero():
			// Full settlement: the customer redeems the pledged item.
			statusAfter = domain.StatusRedeemed
			delta.ActiveLoans = -1
			delta.TotalLoanValue = domain.Zero.Sub(loan.LoanAmount)
			entries = append(entries, statusAuditEntry(loan, statusAfter, domain.ActionRedemptionCompleted,
				fmt.Sprintf("Loan redeemed with payment of %s", amount), p.PaymentID, staffUserID, now))
		case isRenewal(loan, breakdown, p):
			// Interest-only payment: the term renews. The new maturity is
			// anchored to the existing maturity, one month per interest month
			// covered, never to the day the cash arrived.
			monthsCovered := int(p.InterestPortion.Int64() / loan.MonthlyInterestAmount.Int64())
			loan.MaturityDate = loan.MaturityDate.AddDate(0, monthsCovered, 0)
			loan.GracePeriodEnd = loan.MaturityDate.AddDate(0, 0, s.cfg.GracePeriodDays)
			statusAfter = domain.StatusExtended
			entries = append(entries, statusAuditEntry(loan, statusAfter, domain.ActionStatusChanged,
				fmt.Sprintf("Term renewed %d month(s) by interest payment, new maturity %s", monthsCovered, loan.MaturityDate.Format("2006-01-02")),
				p.PaymentID, staffUserID, now))
		}

		loan.Status = statusAfter
		loan.LastUpdatedAt = now
		loan.LastUpdatedBy = staffUserID

		if err := s.loanRepo.ApplyPayment(ctx, *loan, p, entries, delta); err != nil {
			return err
		}

		payment = &p
		endStatus = statusAfter
		s.invalidate(ctx, loan.LoanID, loan.CustomerID)
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	s.activitySvc.Record(ctx, staffUserID, "payment_processed", "Payment applied to loan",
		[]string{payment.LoanID, payment.PaymentID}, map[string]any{
			"amount":     payment.PaymentAmount.Int64(),
			"discount":   payment.DiscountAmount.Int64(),
			"end_status": string(endStatus),
		})

	return payment, endStatus, nil
}

// isRenewal reports whether a payment that left a balance behind was an
// interest-only renewal: every fee and interest bucket fully settled, no
// cash reaching principal, and at least one whole interest month covered.
func isRenewal(loan *domain.Loan, breakdown *domain.BalanceBreakdown, p domain.Payment) bool {
	if !p.PrincipalPortion.IsZero() || !loan.Status.IsExtendable() {
		return false
	}
	if loan.MonthlyInterestAmount.IsZero() || p.InterestPortion < loan.MonthlyInterestAmount {
		return false
	}
	settled := p.AllocatedTotal().Add(p.DiscountAmount)
	nonPrincipal := breakdown.OverdueFee.Outstanding().
		Add(breakdown.ExtensionFees.Outstanding()).
		Add(breakdown.Interest.Outstanding())
	return settled >= nonPrincipal
}

func paymentAuditEntry(loan *domain.Loan, p domain.Payment, staffUserID string, now time.Time) domain.AuditEntry {
	amount := p.PaymentAmount
	return domain.AuditEntry{
		EntryID:     uuid.NewString(),
		LoanID:      loan.LoanID,
		ActionType:  domain.ActionPaymentProcessed,
		StaffUserID: staffUserID,
		Summary: fmt.Sprintf("Payment of %s (overdue %s, extension %s, interest %s, principal %s)",
			p.PaymentAmount, p.OverdueFeePortion, p.ExtensionFeePortion, p.InterestPortion, p.PrincipalPortion),
		Amount:        &amount,
		PreviousValue: p.BalanceBefore.String(),
		NewValue:      p.BalanceAfter.String(),
		RelatedID:     p.PaymentID,
		CreatedAt:     now,
	}
}

func discountAuditEntry(loan *domain.Loan, p domain.Payment, staffUserID string, now time.Time) domain.AuditEntry {
	amount := p.DiscountAmount
	return domain.AuditEntry{
		EntryID:     uuid.NewString(),
		LoanID:      loan.LoanID,
		ActionType:  domain.ActionDiscountApplied,
		StaffUserID: staffUserID,
		Summary:     fmt.Sprintf("Discount of %s approved: %s", p.DiscountAmount, p.DiscountReason),
		Amount:      &amount,
		RelatedID:   p.PaymentID,
		CreatedAt:   now,
	}
}

func statusAuditEntry(loan *domain.Loan, to domain.LoanStatus, action domain.ActionType, summary, relatedID, staffUserID string, now time.Time) domain.AuditEntry {
	return domain.AuditEntry{
		EntryID:       uuid.NewString(),
		LoanID:        loan.LoanID,
		ActionType:    action,
		StaffUserID:   staffUserID,
		Summary:       summary,
		PreviousValue: string(loan.Status),
		NewValue:      string(to),
		RelatedID:     relatedID,
		CreatedAt:     now,
	}
}

// invalidate drops the cached derivations touched by a loan mutation. Cache
// failures are logged and swallowed; the source of truth already committed.
func (s *paymentService) invalidate(ctx context.Context, loanID, customerID string) {
	if err := s.cache.DeletePattern(ctx, cache.LoanPattern(loanID)); err != nil {
		s.LogError(ctx, err, "failed to invalidate loan cache", slog.String("loan_id", loanID))
	}
	if err := s.cache.DeletePattern(ctx, cache.CustomerPattern(customerID)); err != nil {
		s.LogError(ctx, err, "failed to invalidate customer cache", slog.String("customer_id", customerID))
	}
}
