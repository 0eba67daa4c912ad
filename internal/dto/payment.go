package dto

import (
	"time"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
)

// ProcessPaymentRequest is the payload for taking a payment on a loan.
// Amounts are whole dollars.
type ProcessPaymentRequest struct {
	LoanID string `json:"-"` // From the URL path
	Amount int64  `json:"amount" binding:"required,gt=0"`
}

// DiscountPaymentRequest is the admin-approved discount variant. The discount
// is subtracted from the amount owed, not from the cash received, and requires
// a second explicit PIN verification.
type DiscountPaymentRequest struct {
	LoanID         string `json:"-"`
	Amount         int64  `json:"amount" binding:"required,gt=0"`
	DiscountAmount int64  `json:"discountAmount" binding:"required,gt=0"`
	DiscountReason string `json:"discountReason" binding:"required"`
	AdminPin       string `json:"adminPin" binding:"required"`
}

// PaymentResponse defines the data returned for a payment.
type PaymentResponse struct {
	PaymentID           string     `json:"paymentID"`
	LoanID              string     `json:"loanID"`
	PaymentAmount       int64      `json:"paymentAmount"`
	OverdueFeePortion   int64      `json:"overdueFeePortion"`
	ExtensionFeePortion int64      `json:"extensionFeePortion"`
	InterestPortion     int64      `json:"interestPortion"`
	PrincipalPortion    int64      `json:"principalPortion"`
	BalanceBefore       int64      `json:"balanceBeforePayment"`
	BalanceAfter        int64      `json:"balanceAfterPayment"`
	DiscountAmount      int64      `json:"discountAmount,omitempty"`
	DiscountReason      string     `json:"discountReason,omitempty"`
	IsVoided            bool       `json:"isVoided"`
	VoidedAt            *time.Time `json:"voidedDate,omitempty"`
	LoanStatus          string     `json:"loanStatus"`
	PaymentDate         time.Time  `json:"paymentDate"`
}

// ToPaymentResponse converts a domain.Payment to PaymentResponse DTO.
// loanStatus is the status the loan ended up in after the payment.
func ToPaymentResponse(p *domain.Payment, loanStatus domain.LoanStatus) PaymentResponse {
	return PaymentResponse{
		PaymentID:           p.PaymentID,
		LoanID:              p.LoanID,
		PaymentAmount:       p.PaymentAmount.Int64(),
		OverdueFeePortion:   p.OverdueFeePortion.Int64(),
		ExtensionFeePortion: p.ExtensionFeePortion.Int64(),
		InterestPortion:     p.InterestPortion.Int64(),
		PrincipalPortion:    p.PrincipalPortion.Int64(),
		BalanceBefore:       p.BalanceBefore.Int64(),
		BalanceAfter:        p.BalanceAfter.Int64(),
		DiscountAmount:      p.DiscountAmount.Int64(),
		DiscountReason:      p.DiscountReason,
		IsVoided:            p.IsVoided,
		VoidedAt:            p.VoidedAt,
		LoanStatus:          string(loanStatus),
		PaymentDate:         p.PaymentDate,
	}
}
