package mapping

import (
	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	"github.com/pawnsoft/pawn_ledger_app/internal/models"
)

// ToModelCustomer converts a domain Customer to a model Customer
func ToModelCustomer(d domain.Customer) models.Customer {
	return models.Customer{
		CustomerID:          d.CustomerID,
		Name:                d.Name,
		ActiveLoans:         d.ActiveLoans,
		TotalLoanValue:      d.TotalLoanValue.Int64(),
		TotalTransactions:   d.TotalTransactions,
		LastTransactionDate: d.LastTransactionDate,
		Version:             d.Version,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCustomer converts a model Customer to a domain Customer
func ToDomainCustomer(m models.Customer) domain.Customer {
	return domain.Customer{
		CustomerID:          m.CustomerID,
		Name:                m.Name,
		ActiveLoans:         m.ActiveLoans,
		TotalLoanValue:      domain.Money(m.TotalLoanValue),
		TotalTransactions:   m.TotalTransactions,
		LastTransactionDate: m.LastTransactionDate,
		Versioned:           domain.Versioned{Version: m.Version},
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}
