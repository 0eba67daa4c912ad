package mapping

import (
	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	"github.com/pawnsoft/pawn_ledger_app/internal/models"
)

// ToModelLoan converts a domain Loan to a model Loan
func ToModelLoan(d domain.Loan) models.Loan {
	return models.Loan{
		LoanID:                d.LoanID,
		DisplayID:             d.DisplayID,
		CustomerID:            d.CustomerID,
		LoanAmount:            d.LoanAmount.Int64(),
		MonthlyInterestAmount: d.MonthlyInterestAmount.Int64(),
		ExtensionFeePerMonth:  d.ExtensionFeePerMonth.Int64(),
		PawnDate:              d.PawnDate,
		MaturityDate:          d.MaturityDate,
		GracePeriodEnd:        d.GracePeriodEnd,
		OverdueFee:            d.OverdueFee.Int64(),
		Status:                string(d.Status),
		ManualNotes:           d.ManualNotes,
		LegacyNotes:           d.LegacyNotes,
		Version:               d.Version,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLoan converts a model Loan to a domain Loan
func ToDomainLoan(m models.Loan) domain.Loan {
	return domain.Loan{
		LoanID:                m.LoanID,
		DisplayID:             m.DisplayID,
		CustomerID:            m.CustomerID,
		LoanAmount:            domain.Money(m.LoanAmount),
		MonthlyInterestAmount: domain.Money(m.MonthlyInterestAmount),
		ExtensionFeePerMonth:  domain.Money(m.ExtensionFeePerMonth),
		PawnDate:              m.PawnDate,
		MaturityDate:          m.MaturityDate,
		GracePeriodEnd:        m.GracePeriodEnd,
		OverdueFee:            domain.Money(m.OverdueFee),
		Status:                domain.LoanStatus(m.Status),
		ManualNotes:           m.ManualNotes,
		LegacyNotes:           m.LegacyNotes,
		Versioned:             domain.Versioned{Version: m.Version},
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLoanSlice converts a slice of model Loans to a slice of domain Loans
func ToDomainLoanSlice(ms []models.Loan) []domain.Loan {
	ds := make([]domain.Loan, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLoan(m)
	}
	return ds
}
