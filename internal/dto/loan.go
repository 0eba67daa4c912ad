package dto

import (
	"time"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
)

// CreateLoanRequest opens a new pawn loan. Amounts are whole dollars; the
// monthly interest is a fixed dollar fee, not a rate.
type CreateLoanRequest struct {
	CustomerID            string `json:"customerID" binding:"required"`
	LoanAmount            int64  `json:"loanAmount" binding:"required,gt=0"`
	MonthlyInterestAmount int64  `json:"monthlyInterestAmount" binding:"required,gt=0"`
	ExtensionFeePerMonth  int64  `json:"extensionFeePerMonth" binding:"omitempty,gt=0"`
	TermMonths            int    `json:"termMonths" binding:"omitempty,min=1"`
}

// SetOverdueFeeRequest sets the staff-assessed overdue fee. Only valid while
// the loan status is OVERDUE.
type SetOverdueFeeRequest struct {
	LoanID string `json:"-"`
	Fee    int64  `json:"fee" binding:"required,gt=0"`
}

// ChangeStatusRequest moves a loan between non-money statuses (hold, damaged,
// overdue, forfeited...). Money-driven transitions happen only through the
// payment processor and the reversal engine.
type ChangeStatusRequest struct {
	LoanID string `json:"-"`
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"omitempty"`
}

// AddManualNoteRequest appends to the free-text staff commentary channel.
type AddManualNoteRequest struct {
	LoanID string `json:"-"`
	Note   string `json:"note" binding:"required"`
}

// LoanResponse defines the data returned for a loan.
type LoanResponse struct {
	LoanID                string               `json:"loanID"`
	DisplayID             string               `json:"displayID"`
	CustomerID            string               `json:"customerID"`
	LoanAmount            int64                `json:"loanAmount"`
	MonthlyInterestAmount int64                `json:"monthlyInterestAmount"`
	ExtensionFeePerMonth  int64                `json:"extensionFeePerMonth"`
	PawnDate              time.Time            `json:"pawnDate"`
	MaturityDate          time.Time            `json:"maturityDate"`
	GracePeriodEnd        time.Time            `json:"gracePeriodEnd"`
	OverdueFee            int64                `json:"overdueFee"`
	Status                string               `json:"status"`
	ManualNotes           string               `json:"manualNotes"`
	AuditTrail            []AuditEntryResponse `json:"auditTrail,omitempty"`
	CreatedAt             time.Time            `json:"createdAt"`
}

// ToLoanResponse converts a domain.Loan to LoanResponse DTO.
func ToLoanResponse(l *domain.Loan) LoanResponse {
	resp := LoanResponse{
		LoanID:                l.LoanID,
		DisplayID:             l.DisplayID,
		CustomerID:            l.CustomerID,
		LoanAmount:            l.LoanAmount.Int64(),
		MonthlyInterestAmount: l.MonthlyInterestAmount.Int64(),
		ExtensionFeePerMonth:  l.ExtensionFeePerMonth.Int64(),
		PawnDate:              l.PawnDate,
		MaturityDate:          l.MaturityDate,
		GracePeriodEnd:        l.GracePeriodEnd,
		OverdueFee:            l.OverdueFee.Int64(),
		Status:                string(l.Status),
		ManualNotes:           l.ManualNotes,
		CreatedAt:             l.CreatedAt,
	}
	if len(l.AuditTrail) > 0 {
		resp.AuditTrail = ToAuditEntryResponses(l.AuditTrail)
	}
	return resp
}
