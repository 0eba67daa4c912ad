package domain

import "time"

// Customer carries the denormalized per-customer counters the ledger owns.
// The counters must always equal a deterministic recomputation over the
// customer's loans in slot-using statuses; the consistency validator
// reconciles them.
type Customer struct {
	CustomerID          string     `json:"customerID"`
	Name                string     `json:"name"`
	ActiveLoans         int        `json:"activeLoans"`
	TotalLoanValue      Money      `json:"totalLoanValue"`
	TotalTransactions   int        `json:"totalTransactions"`
	LastTransactionDate *time.Time `json:"lastTransactionDate,omitempty"`
	AuditFields
	Versioned
}

// CounterDelta describes how a single ledger mutation moves a customer's
// denormalized counters. Writes apply the delta inside the same database
// transaction as the mutation itself.
type CounterDelta struct {
	ActiveLoans       int
	TotalLoanValue    Money // Signed: negative when a slot is freed
	TotalTransactions int
	TransactionAt     *time.Time
}

// IsZero reports whether the delta would change nothing.
func (d CounterDelta) IsZero() bool {
	return d.ActiveLoans == 0 && d.TotalLoanValue == 0 && d.TotalTransactions == 0 && d.TransactionAt == nil
}
