package models

import "time"

// Loan is the database row for a pawn loan. Money columns are whole-dollar
// BIGINTs; status is stored as text and parsed at the repository boundary.
type Loan struct {
	LoanID                string    `json:"loanID"` // Primary Key (UUID)
	DisplayID             string    `json:"displayID"`
	CustomerID            string    `json:"customerID"`
	LoanAmount            int64     `json:"loanAmount"`
	MonthlyInterestAmount int64     `json:"monthlyInterestAmount"`
	ExtensionFeePerMonth  int64     `json:"extensionFeePerMonth"`
	PawnDate              time.Time `json:"pawnDate"`
	MaturityDate          time.Time `json:"maturityDate"`
	GracePeriodEnd        time.Time `json:"gracePeriodEnd"`
	OverdueFee            int64     `json:"overdueFee"`
	Status                string    `json:"status"`
	ManualNotes           string    `json:"manualNotes"`
	LegacyNotes           string    `json:"legacyNotes"`
	Version               int64     `json:"version"`
	AuditFields
}
