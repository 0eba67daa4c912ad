package models

import "time"

// Extension is the database row for a maturity extension.
type Extension struct {
	ExtensionID          string     `json:"extensionID"` // Primary Key (UUID)
	LoanID               string     `json:"loanID"`
	ExtensionMonths      int        `json:"extensionMonths"`
	FeePerMonth          int64      `json:"feePerMonth"`
	TotalFee             int64      `json:"totalFee"`
	OriginalMaturityDate time.Time  `json:"originalMaturityDate"`
	NewMaturityDate      time.Time  `json:"newMaturityDate"`
	IsCancelled          bool       `json:"isCancelled"`
	CancelledAt          *time.Time `json:"cancelledAt"`
	CancelledBy          string     `json:"cancelledBy"`
	CancelReason         string     `json:"cancelReason"`
	AuditFields
}
