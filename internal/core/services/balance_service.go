package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	portsrepo "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/services"
	"github.com/pawnsoft/pawn_ledger_app/internal/platform/cache"
	"github.com/pawnsoft/pawn_ledger_app/internal/platform/config"
)

// balanceService derives balances from the stored facts: the loan row, its
// payments, and its extensions. Nothing here writes; every answer is a pure
// function of those rows, which is what makes same-day reversals safe.
type balanceService struct {
	BaseService
	loanRepo      portsrepo.LoanReader
	paymentRepo   portsrepo.PaymentReader
	extensionRepo portsrepo.ExtensionReader
	cache         cache.Cache
	cfg           *config.Config
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(loanRepo portsrepo.LoanReader, paymentRepo portsrepo.PaymentReader, extensionRepo portsrepo.ExtensionReader, c cache.Cache, cfg *config.Config) portssvc.BalanceSvcFacade {
	return &balanceService{
		loanRepo:      loanRepo,
		paymentRepo:   paymentRepo,
		extensionRepo: extensionRepo,
		cache:         c,
		cfg:           cfg,
	}
}

var _ portssvc.BalanceSvcFacade = (*balanceService)(nil)

// monthsElapsed counts interest months between from and to. Any month begun
// counts as a whole month: day 1 through the last day of the first month is
// one month, the first day after a month boundary starts the next. Zero when
// to is not after from at all.
func monthsElapsed(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	n := 1
	for to.After(from.AddDate(0, n, 0)) {
		n++
	}
	return n
}

// CalculateBalance computes the per-bucket breakdown for a loan as of the
// given instant (nil means now).
func (s *balanceService) CalculateBalance(ctx context.Context, loanID string, asOf *time.Time) (*domain.BalanceBreakdown, error) {
	logger := s.GetLogger(ctx)

	now := time.Now().UTC()
	at := now
	if asOf != nil {
		at = asOf.UTC()
	}

	// Only the "as of now" answer is cacheable; historical reads are rare
	// and cheap enough to recompute.
	cacheable := asOf == nil
	if cacheable {
		if raw, err := s.cache.Get(ctx, cache.BalanceKey(loanID)); err == nil {
			var cached domain.BalanceBreakdown
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			logger.Warn("balance cache read failed", slog.String("loan_id", loanID), slog.String("error", err.Error()))
		}
	}

	breakdown, err := s.computeFromRows(ctx, loanID, at)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if raw, err := json.Marshal(breakdown); err == nil {
			if err := s.cache.Set(ctx, cache.BalanceKey(loanID), raw, s.cfg.BalanceCacheTTL); err != nil {
				logger.Warn("balance cache write failed", slog.String("loan_id", loanID), slog.String("error", err.Error()))
			}
		}
	}

	return breakdown, nil
}

// ComputeBalance always derives the breakdown from the stored rows, skipping
// the cache in both directions. Payment and reversal flows go through here so
// an invalidation that never landed cannot feed them a stale breakdown.
func (s *balanceService) ComputeBalance(ctx context.Context, loanID string, asOf *time.Time) (*domain.BalanceBreakdown, error) {
	at := time.Now().UTC()
	if asOf != nil {
		at = asOf.UTC()
	}
	return s.computeFromRows(ctx, loanID, at)
}

func (s *balanceService) computeFromRows(ctx context.Context, loanID string, at time.Time) (*domain.BalanceBreakdown, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindPaymentsByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	extensions, err := s.extensionRepo.FindExtensionsByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return s.compute(loan, payments, extensions, at), nil
}

// compute assembles the breakdown from the loan's rows. Voided payments and
// cancelled extensions contribute nothing, which is exactly how a reversal
// restores the prior balance without any compensating arithmetic.
func (s *balanceService) compute(loan *domain.Loan, payments []domain.Payment, extensions []domain.Extension, at time.Time) *domain.BalanceBreakdown {
	// Interest stops accruing the moment a loan reaches a terminal status;
	// a loan redeemed in March must not show April interest.
	accrualEnd := at
	if loan.Status.IsTerminal() && loan.LastUpdatedAt.Before(at) {
		accrualEnd = loan.LastUpdatedAt
	}

	months := monthsElapsed(loan.PawnDate, accrualEnd)
	if months > s.cfg.InterestCapMonths {
		months = s.cfg.InterestCapMonths
	}

	breakdown := &domain.BalanceBreakdown{
		LoanID:         loan.LoanID,
		AsOf:           at,
		InterestMonths: months,
	}
	breakdown.Principal.Due = loan.LoanAmount
	breakdown.Interest.Due = loan.MonthlyInterestAmount.MulMonths(months)
	breakdown.OverdueFee.Due = loan.OverdueFee

	for _, ext := range extensions {
		if ext.IsCancelled || ext.CreatedAt.After(at) {
			continue
		}
		breakdown.ExtensionFees.Due = breakdown.ExtensionFees.Due.Add(ext.TotalFee)
	}

	for _, p := range payments {
		if p.IsVoided || p.PaymentDate.After(at) {
			continue
		}
		breakdown.OverdueFee.Paid = breakdown.OverdueFee.Paid.Add(p.OverdueFeePortion)
		breakdown.ExtensionFees.Paid = breakdown.ExtensionFees.Paid.Add(p.ExtensionFeePortion)
		breakdown.Interest.Paid = breakdown.Interest.Paid.Add(p.InterestPortion)
		breakdown.Principal.Paid = breakdown.Principal.Paid.Add(p.PrincipalPortion)
		// Approved discounts settle debt without cash. They are burned in
		// allocation order at payment time, so replaying them here keeps the
		// paid side equal to what the allocator actually settled.
		if p.DiscountAmount.IsPositive() {
			s.applyDiscount(breakdown, p.DiscountAmount)
		}
	}

	breakdown.CurrentBalance = breakdown.TotalOutstanding()
	return breakdown
}

// applyDiscount credits a discount against the buckets in allocation order.
func (s *balanceService) applyDiscount(b *domain.BalanceBreakdown, discount domain.Money) {
	for _, bucket := range domain.AllocationOrder {
		if discount.IsZero() {
			return
		}
		amounts := b.ForBucket(bucket)
		portion := amounts.Outstanding().Min(discount)
		if portion.IsZero() {
			continue
		}
		discount = discount.Sub(portion)
		switch bucket {
		case domain.BucketOverdueFee:
			b.OverdueFee.Paid = b.OverdueFee.Paid.Add(portion)
		case domain.BucketExtensionFees:
			b.ExtensionFees.Paid = b.ExtensionFees.Paid.Add(portion)
		case domain.BucketInterest:
			b.Interest.Paid = b.Interest.Paid.Add(portion)
		case domain.BucketPrincipal:
			b.Principal.Paid = b.Principal.Paid.Add(portion)
		}
	}
}
