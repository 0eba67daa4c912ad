package models

import "time"

// Customer is the database row carrying the denormalized counters.
type Customer struct {
	CustomerID          string     `json:"customerID"` // Primary Key (UUID)
	Name                string     `json:"name"`
	ActiveLoans         int        `json:"activeLoans"`
	TotalLoanValue      int64      `json:"totalLoanValue"`
	TotalTransactions   int        `json:"totalTransactions"`
	LastTransactionDate *time.Time `json:"lastTransactionDate"`
	Version             int64      `json:"version"`
	AuditFields
}
