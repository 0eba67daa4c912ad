package mapping

import (
	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	"github.com/pawnsoft/pawn_ledger_app/internal/models"
)

// ToModelPayment converts a domain Payment to a model Payment
func ToModelPayment(d domain.Payment) models.Payment {
	return models.Payment{
		PaymentID:           d.PaymentID,
		LoanID:              d.LoanID,
		PaymentAmount:       d.PaymentAmount.Int64(),
		OverdueFeePortion:   d.OverdueFeePortion.Int64(),
		ExtensionFeePortion: d.ExtensionFeePortion.Int64(),
		InterestPortion:     d.InterestPortion.Int64(),
		PrincipalPortion:    d.PrincipalPortion.Int64(),
		BalanceBefore:       d.BalanceBefore.Int64(),
		BalanceAfter:        d.BalanceAfter.Int64(),
		StatusBefore:        string(d.StatusBefore),
		DiscountAmount:      d.DiscountAmount.Int64(),
		DiscountReason:      d.DiscountReason,
		DiscountApprovedBy:  d.DiscountApprovedBy,
		IsVoided:            d.IsVoided,
		VoidedAt:            d.VoidedAt,
		VoidedBy:            d.VoidedBy,
		VoidReason:          d.VoidReason,
		PaymentDate:         d.PaymentDate,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPayment converts a model Payment to a domain Payment
func ToDomainPayment(m models.Payment) domain.Payment {
	return domain.Payment{
		PaymentID:           m.PaymentID,
		LoanID:              m.LoanID,
		PaymentAmount:       domain.Money(m.PaymentAmount),
		OverdueFeePortion:   domain.Money(m.OverdueFeePortion),
		ExtensionFeePortion: domain.Money(m.ExtensionFeePortion),
		InterestPortion:     domain.Money(m.InterestPortion),
		PrincipalPortion:    domain.Money(m.PrincipalPortion),
		BalanceBefore:       domain.Money(m.BalanceBefore),
		BalanceAfter:        domain.Money(m.BalanceAfter),
		StatusBefore:        domain.LoanStatus(m.StatusBefore),
		DiscountAmount:      domain.Money(m.DiscountAmount),
		DiscountReason:      m.DiscountReason,
		DiscountApprovedBy:  m.DiscountApprovedBy,
		IsVoided:            m.IsVoided,
		VoidedAt:            m.VoidedAt,
		VoidedBy:            m.VoidedBy,
		VoidReason:          m.VoidReason,
		PaymentDate:         m.PaymentDate,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPaymentSlice converts a slice of model Payments to a slice of domain Payments
func ToDomainPaymentSlice(ms []models.Payment) []domain.Payment {
	ds := make([]domain.Payment, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPayment(m)
	}
	return ds
}
