package dto

import (
	"time"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
)

// ReversePaymentRequest undoes a payment. Same-day only, admin only, capped
// per loan per day.
type ReversePaymentRequest struct {
	PaymentID string `json:"-"` // From the URL path
	Reason    string `json:"reason" binding:"required"`
	AdminPin  string `json:"adminPin" binding:"required"`
}

// ReversalCountResponse reports how many reversals a loan has consumed today
// and how many remain under the daily cap.
type ReversalCountResponse struct {
	LoanID    string    `json:"loanID"`
	Day       time.Time `json:"day"`
	Count     int       `json:"count"`
	Remaining int       `json:"remaining"`
}

// ReversalRecordResponse is one row of the daily reversal report.
type ReversalRecordResponse struct {
	Kind       string    `json:"kind"`
	LoanID     string    `json:"loanID"`
	RelatedID  string    `json:"relatedID"`
	Amount     int64     `json:"amount"`
	ReversedBy string    `json:"reversedBy"`
	Reason     string    `json:"reason"`
	ReversedAt time.Time `json:"reversedAt"`
}

// DailyReversalReport is the admin audit view of a day's reversals.
type DailyReversalReport struct {
	Day       time.Time                `json:"day"`
	Total     int                      `json:"total"`
	Reversals []ReversalRecordResponse `json:"reversals"`
}

// ToReversalRecordResponses converts domain records to the report DTO rows.
func ToReversalRecordResponses(records []domain.ReversalRecord) []ReversalRecordResponse {
	responses := make([]ReversalRecordResponse, len(records))
	for i, r := range records {
		responses[i] = ReversalRecordResponse{
			Kind:       string(r.Kind),
			LoanID:     r.LoanID,
			RelatedID:  r.RelatedID,
			Amount:     r.Amount.Int64(),
			ReversedBy: r.ReversedBy,
			Reason:     r.Reason,
			ReversedAt: r.ReversedAt,
		}
	}
	return responses
}
