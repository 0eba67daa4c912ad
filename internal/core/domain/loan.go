package domain

import "time"

// LoanStatus is the single tagged state of a pawn loan. Status is compared as
// this type everywhere; raw strings are normalized once at the system boundary.
type LoanStatus string

const (
	StatusActive    LoanStatus = "ACTIVE"
	StatusExtended  LoanStatus = "EXTENDED"
	StatusOverdue   LoanStatus = "OVERDUE"
	StatusHold      LoanStatus = "HOLD"
	StatusDamaged   LoanStatus = "DAMAGED"
	StatusRedeemed  LoanStatus = "REDEEMED"
	StatusForfeited LoanStatus = "FORFEITED"
	StatusSold      LoanStatus = "SOLD"
	StatusVoided    LoanStatus = "VOIDED"
	StatusCanceled  LoanStatus = "CANCELED"
)

// ParseLoanStatus normalizes a raw status string from the boundary.
func ParseLoanStatus(raw string) (LoanStatus, bool) {
	switch s := LoanStatus(raw); s {
	case StatusActive, StatusExtended, StatusOverdue, StatusHold, StatusDamaged,
		StatusRedeemed, StatusForfeited, StatusSold, StatusVoided, StatusCanceled:
		return s, true
	}
	return "", false
}

// IsTerminal reports whether the status stops money-accepting mutation.
// Terminal loans remain readable indefinitely for audit and compliance.
func (s LoanStatus) IsTerminal() bool {
	switch s {
	case StatusRedeemed, StatusForfeited, StatusSold, StatusVoided, StatusCanceled:
		return true
	}
	return false
}

// IsPayable reports whether the loan can accept a payment.
func (s LoanStatus) IsPayable() bool { return !s.IsTerminal() }

// UsesSlot reports whether the status counts against the customer's
// active-loan limit and the denormalized customer counters.
func (s LoanStatus) UsesSlot() bool {
	switch s {
	case StatusActive, StatusExtended, StatusHold, StatusOverdue, StatusDamaged:
		return true
	}
	return false
}

// IsExtendable reports whether the loan is eligible for a maturity extension.
func (s LoanStatus) IsExtendable() bool {
	switch s {
	case StatusActive, StatusOverdue, StatusExtended:
		return true
	}
	return false
}

// Loan is the pawn transaction aggregate: a cash loan secured by a pledged
// item, accruing a fixed monthly interest fee.
type Loan struct {
	LoanID                string     `json:"loanID"`    // Primary key (UUID)
	DisplayID             string     `json:"displayID"` // Staff-facing id, e.g. PWN-000042
	CustomerID            string     `json:"customerID"`
	LoanAmount            Money      `json:"loanAmount"`            // Principal, whole dollars
	MonthlyInterestAmount Money      `json:"monthlyInterestAmount"` // Fixed fee per month begun
	ExtensionFeePerMonth  Money      `json:"extensionFeePerMonth"`
	PawnDate              time.Time  `json:"pawnDate"`
	MaturityDate          time.Time  `json:"maturityDate"`
	GracePeriodEnd        time.Time  `json:"gracePeriodEnd"`
	OverdueFee            Money      `json:"overdueFee"` // Staff-set, only mutable while OVERDUE
	Status                LoanStatus `json:"status"`
	ManualNotes           string     `json:"manualNotes"` // Free-text staff commentary, not the system of record
	LegacyNotes           string     `json:"legacyNotes"` // Unstructured pre-migration note blob, read-only
	AuditFields
	Versioned
	AuditTrail []AuditEntry `json:"auditTrail,omitempty"` // Populated on demand, append-only
}
