package domain

import "time"

// Payment records cash applied toward a loan, with the exact per-bucket
// allocation split and the balance observed before and after. Payments are
// never deleted; a reversal marks the row voided and the balance calculator
// skips voided rows.
type Payment struct {
	PaymentID     string `json:"paymentID"`
	LoanID        string `json:"loanID"`
	PaymentAmount Money  `json:"paymentAmount"`

	// Allocation breakdown, in the fixed priority order the allocator uses:
	// overdue fee, extension fees, interest, principal.
	OverdueFeePortion   Money `json:"overdueFeePortion"`
	ExtensionFeePortion Money `json:"extensionFeePortion"`
	InterestPortion     Money `json:"interestPortion"`
	PrincipalPortion    Money `json:"principalPortion"`

	BalanceBefore Money `json:"balanceBeforePayment"`
	BalanceAfter  Money `json:"balanceAfterPayment"`

	// StatusBefore captures the loan status at the instant the payment was
	// taken, so a same-day reversal restores exactly the observed prior state.
	StatusBefore LoanStatus `json:"statusBefore"`

	// Discount fields, set only on the admin-approved discount variant.
	DiscountAmount     Money  `json:"discountAmount"`
	DiscountReason     string `json:"discountReason,omitempty"`
	DiscountApprovedBy string `json:"discountApprovedBy,omitempty"`

	// Void fields, set only by the reversal engine.
	IsVoided   bool       `json:"isVoided"`
	VoidedAt   *time.Time `json:"voidedDate,omitempty"`
	VoidedBy   string     `json:"voidedBy,omitempty"`
	VoidReason string     `json:"voidReason,omitempty"`

	PaymentDate time.Time `json:"paymentDate"`
	AuditFields
}

// AllocatedTotal is the sum of the per-bucket portions. It always equals
// PaymentAmount minus any approved discount.
func (p Payment) AllocatedTotal() Money {
	return p.OverdueFeePortion.
		Add(p.ExtensionFeePortion).
		Add(p.InterestPortion).
		Add(p.PrincipalPortion)
}
