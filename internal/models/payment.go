package models

import "time"

// Payment is the database row for a payment. Rows are append-only; reversal
// sets the void columns instead of deleting.
type Payment struct {
	PaymentID           string     `json:"paymentID"` // Primary Key (UUID)
	LoanID              string     `json:"loanID"`
	PaymentAmount       int64      `json:"paymentAmount"`
	OverdueFeePortion   int64      `json:"overdueFeePortion"`
	ExtensionFeePortion int64      `json:"extensionFeePortion"`
	InterestPortion     int64      `json:"interestPortion"`
	PrincipalPortion    int64      `json:"principalPortion"`
	BalanceBefore       int64      `json:"balanceBefore"`
	BalanceAfter        int64      `json:"balanceAfter"`
	StatusBefore        string     `json:"statusBefore"`
	DiscountAmount      int64      `json:"discountAmount"`
	DiscountReason      string     `json:"discountReason"`
	DiscountApprovedBy  string     `json:"discountApprovedBy"`
	IsVoided            bool       `json:"isVoided"`
	VoidedAt            *time.Time `json:"voidedAt"`
	VoidedBy            string     `json:"voidedBy"`
	VoidReason          string     `json:"voidReason"`
	PaymentDate         time.Time  `json:"paymentDate"`
	AuditFields
}
