package mapping

import (
	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	"github.com/pawnsoft/pawn_ledger_app/internal/models"
)

// ToModelExtension converts a domain Extension to a model Extension
func ToModelExtension(d domain.Extension) models.Extension {
	return models.Extension{
		ExtensionID:          d.ExtensionID,
		LoanID:               d.LoanID,
		ExtensionMonths:      d.ExtensionMonths,
		FeePerMonth:          d.FeePerMonth.Int64(),
		TotalFee:             d.TotalFee.Int64(),
		OriginalMaturityDate: d.OriginalMaturityDate,
		NewMaturityDate:      d.NewMaturityDate,
		IsCancelled:          d.IsCancelled,
		CancelledAt:          d.CancelledAt,
		CancelledBy:          d.CancelledBy,
		CancelReason:         d.CancelReason,
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainExtension converts a model Extension to a domain Extension
func ToDomainExtension(m models.Extension) domain.Extension {
	return domain.Extension{
		ExtensionID:          m.ExtensionID,
		LoanID:               m.LoanID,
		ExtensionMonths:      m.ExtensionMonths,
		FeePerMonth:          domain.Money(m.FeePerMonth),
		TotalFee:             domain.Money(m.TotalFee),
		OriginalMaturityDate: m.OriginalMaturityDate,
		NewMaturityDate:      m.NewMaturityDate,
		IsCancelled:          m.IsCancelled,
		CancelledAt:          m.CancelledAt,
		CancelledBy:          m.CancelledBy,
		CancelReason:         m.CancelReason,
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainExtensionSlice converts a slice of model Extensions to a slice of domain Extensions
func ToDomainExtensionSlice(ms []models.Extension) []domain.Extension {
	ds := make([]domain.Extension, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainExtension(m)
	}
	return ds
}
