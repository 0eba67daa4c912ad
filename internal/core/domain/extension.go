package domain

import "time"

// Extension pushes a loan's maturity date forward for a fee. The new maturity
// is always anchored to the maturity the loan already had, never to the day
// the fee was paid, so the schedule stays predictable and compounding-free.
type Extension struct {
	ExtensionID          string     `json:"extensionID"`
	LoanID               string     `json:"loanID"`
	ExtensionMonths      int        `json:"extensionMonths"`
	FeePerMonth          Money      `json:"extensionFeePerMonth"`
	TotalFee             Money      `json:"totalExtensionFee"`
	OriginalMaturityDate time.Time  `json:"originalMaturityDate"`
	NewMaturityDate      time.Time  `json:"newMaturityDate"`
	IsCancelled          bool       `json:"isCancelled"`
	CancelledAt          *time.Time `json:"cancelledAt,omitempty"`
	CancelledBy          string     `json:"cancelledBy,omitempty"`
	CancelReason         string     `json:"cancelReason,omitempty"`
	AuditFields
}
