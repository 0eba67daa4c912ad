package domain

import "time"

// ReversalKind distinguishes the two undoable event types.
type ReversalKind string

const (
	ReversalKindPaymentVoid     ReversalKind = "PAYMENT_VOID"
	ReversalKindExtensionCancel ReversalKind = "EXTENSION_CANCEL"
)

// ReversalRecord is one row of the daily reversal report: a payment voided or
// an extension cancelled, with who did it and why.
type ReversalRecord struct {
	Kind       ReversalKind `json:"kind"`
	LoanID     string       `json:"loanID"`
	RelatedID  string       `json:"relatedID"` // Payment or extension id
	Amount     Money        `json:"amount"`
	ReversedBy string       `json:"reversedBy"`
	Reason     string       `json:"reason"`
	ReversedAt time.Time    `json:"reversedAt"`
}
