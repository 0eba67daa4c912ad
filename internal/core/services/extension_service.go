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

// extensionService moves maturity dates forward for a fee. Cancellation here
// is pure mechanics; the reversal engine owns the same-day and admin gates.
type extensionService struct {
	BaseService
	loanRepo      portsrepo.LoanRepositoryFacade
	extensionRepo portsrepo.ExtensionReader
	activitySvc   portssvc.ActivitySvcFacade
	cache         cache.Cache
	cfg           *config.Config
}

// NewExtensionService creates a new ExtensionService.
func NewExtensionService(loanRepo portsrepo.LoanRepositoryFacade, extensionRepo portsrepo.ExtensionReader, activitySvc portssvc.ActivitySvcFacade, c cache.Cache, cfg *config.Config) portssvc.ExtensionSvcFacade {
	return &extensionService{
		loanRepo:      loanRepo,
		extensionRepo: extensionRepo,
		activitySvc:   activitySvc,
		cache:         c,
		cfg:           cfg,
	}
}

var _ portssvc.ExtensionSvcFacade = (*extensionService)(nil)

// CheckExtensionEligibility verifies status and month bounds without mutating anything.
func (s *extensionService) CheckExtensionEligibility(ctx context.Context, loanID string, months int) error {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return err
	}
	return s.checkEligibility(loan, months)
}

func (s *extensionService) checkEligibility(loan *domain.Loan, months int) error {
	if months < 1 || months > s.cfg.ExtensionMaxMonths {
		return fmt.Errorf("%w: extension must be between 1 and %d months", apperrors.ErrValidation, s.cfg.ExtensionMaxMonths)
	}
	if !loan.Status.IsExtendable() {
		return fmt.Errorf("%w: loan %s is %s and cannot be extended", apperrors.ErrBusinessRule, loan.DisplayID, loan.Status)
	}
	return nil
}

// feePerMonth resolves the per-month extension fee. Loans written before
// per-loan fees existed carry a zero and fall back to the configured default.
func (s *extensionService) feePerMonth(loan *domain.Loan) domain.Money {
	if loan.ExtensionFeePerMonth.IsPositive() {
		return loan.ExtensionFeePerMonth
	}
	return domain.Money(s.cfg.ExtensionFeeFallback)
}

// ProcessExtension records the extension and moves the loan's schedule. The
// fee becomes due immediately; it is collected by a later payment, not here.
func (s *extensionService) ProcessExtension(ctx context.Context, req dto.ProcessExtensionRequest, staffUserID string) (*domain.Extension, error) {
	var extension *domain.Extension

	err := s.withConflictRetry(ctx, func() error {
		loan, err := s.loanRepo.FindLoanByID(ctx, req.LoanID)
		if err != nil {
			return err
		}
		if err := s.checkEligibility(loan, req.Months); err != nil {
			return err
		}

		now := time.Now().UTC()
		fee := s.feePerMonth(loan)
		originalMaturity := loan.MaturityDate
		newMaturity := originalMaturity.AddDate(0, req.Months, 0)

		ext := domain.Extension{
			ExtensionID:          uuid.NewString(),
			LoanID:               loan.LoanID,
			ExtensionMonths:      req.Months,
			FeePerMonth:          fee,
			TotalFee:             fee.MulMonths(req.Months),
			OriginalMaturityDate: originalMaturity,
			NewMaturityDate:      newMaturity,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     staffUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: staffUserID,
			},
		}

		totalFee := ext.TotalFee
		entry := domain.AuditEntry{
			EntryID:     uuid.NewString(),
			LoanID:      loan.LoanID,
			ActionType:  domain.ActionExtensionApplied,
			StaffUserID: staffUserID,
			Summary: fmt.Sprintf("Extended %d month(s) for %s, maturity %s to %s",
				req.Months, ext.TotalFee, originalMaturity.Format("2006-01-02"), newMaturity.Format("2006-01-02")),
			Amount:        &totalFee,
			PreviousValue: originalMaturity.Format("2006-01-02"),
			NewValue:      newMaturity.Format("2006-01-02"),
			RelatedID:     ext.ExtensionID,
			CreatedAt:     now,
		}

		loan.MaturityDate = newMaturity
		loan.GracePeriodEnd = newMaturity.AddDate(0, 0, s.cfg.GracePeriodDays)
		loan.Status = domain.StatusExtended
		loan.LastUpdatedAt = now
		loan.LastUpdatedBy = staffUserID

		if err := s.loanRepo.ApplyExtension(ctx, *loan, ext, entry); err != nil {
			return err
		}

		extension = &ext
		s.invalidate(ctx, loan.LoanID, loan.CustomerID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, staffUserID, "extension_processed", "Loan maturity extended",
		[]string{extension.LoanID, extension.ExtensionID}, map[string]any{
			"months":    extension.ExtensionMonths,
			"total_fee": extension.TotalFee.Int64(),
		})

	return extension, nil
}

// CancelExtension restores the loan's schedule from the extension's stored
// original maturity date. Only the most recent live extension can be
// cancelled; unwinding an older one would leave the schedule incoherent.
func (s *extensionService) CancelExtension(ctx context.Context, req dto.CancelExtensionRequest, staffUserID string, gate portssvc.ExtensionCancelGate) (*domain.Extension, error) {
	var cancelled *domain.Extension

	err := s.withConflictRetry(ctx, func() error {
		ext, err := s.extensionRepo.FindExtensionByID(ctx, req.ExtensionID)
		if err != nil {
			return err
		}
		if ext.IsCancelled {
			return fmt.Errorf("%w: extension %s is already cancelled", apperrors.ErrBusinessRule, ext.ExtensionID)
		}
		// The gate re-runs on every retry; a reversal that became ineligible
		// while we lost the version race must not slip through.
		if gate != nil {
			if err := gate(ctx, ext); err != nil {
				return err
			}
		}

		all, err := s.extensionRepo.FindExtensionsByLoanID(ctx, ext.LoanID)
		if err != nil {
			return err
		}
		if latest := latestLiveExtension(all); latest == nil || latest.ExtensionID != ext.ExtensionID {
			return fmt.Errorf("%w: only the most recent extension can be cancelled", apperrors.ErrBusinessRule)
		}

		loan, err := s.loanRepo.FindLoanByID(ctx, ext.LoanID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		ext.IsCancelled = true
		ext.CancelledAt = &now
		ext.CancelledBy = staffUserID
		ext.CancelReason = req.Reason
		ext.LastUpdatedAt = now
		ext.LastUpdatedBy = staffUserID

		loan.MaturityDate = ext.OriginalMaturityDate
		loan.GracePeriodEnd = ext.OriginalMaturityDate.AddDate(0, 0, s.cfg.GracePeriodDays)
		loan.Status = s.statusAfterCancel(all, ext.ExtensionID, loan, now)
		loan.LastUpdatedAt = now
		loan.LastUpdatedBy = staffUserID

		totalFee := ext.TotalFee
		entry := domain.AuditEntry{
			EntryID:     uuid.NewString(),
			LoanID:      loan.LoanID,
			ActionType:  domain.ActionExtensionCancelled,
			StaffUserID: staffUserID,
			Summary: fmt.Sprintf("Extension cancelled (%s), maturity restored to %s",
				req.Reason, ext.OriginalMaturityDate.Format("2006-01-02")),
			Amount:        &totalFee,
			PreviousValue: ext.NewMaturityDate.Format("2006-01-02"),
			NewValue:      ext.OriginalMaturityDate.Format("2006-01-02"),
			RelatedID:     ext.ExtensionID,
			CreatedAt:     now,
		}

		if err := s.loanRepo.CancelExtension(ctx, *loan, *ext, entry); err != nil {
			return err
		}

		cancelled = ext
		s.invalidate(ctx, loan.LoanID, loan.CustomerID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

// statusAfterCancel picks the status the loan lands in once the extension is
// unwound. With another live extension remaining it stays extended; otherwise
// the restored schedule decides between active and overdue.
func (s *extensionService) statusAfterCancel(all []domain.Extension, cancelledID string, loan *domain.Loan, now time.Time) domain.LoanStatus {
	for _, e := range all {
		if e.ExtensionID != cancelledID && !e.IsCancelled {
			return domain.StatusExtended
		}
	}
	if now.After(loan.GracePeriodEnd) {
		return domain.StatusOverdue
	}
	return domain.StatusActive
}

// latestLiveExtension returns the newest non-cancelled extension, nil when
// none remain. Input order is oldest first.
func latestLiveExtension(all []domain.Extension) *domain.Extension {
	for i := len(all) - 1; i >= 0; i-- {
		if !all[i].IsCancelled {
			return &all[i]
		}
	}
	return nil
}

func (s *extensionService) invalidate(ctx context.Context, loanID, customerID string) {
	if err := s.cache.DeletePattern(ctx, cache.LoanPattern(loanID)); err != nil {
		s.LogError(ctx, err, "failed to invalidate loan cache")
	}
	if err := s.cache.DeletePattern(ctx, cache.CustomerPattern(customerID)); err != nil {
		s.LogError(ctx, err, "failed to invalidate customer cache")
	}
}
