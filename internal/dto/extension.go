package dto

import (
	"time"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
)

// ProcessExtensionRequest is the payload for extending a loan's maturity.
type ProcessExtensionRequest struct {
	LoanID string `json:"-"` // From the URL path
	Months int    `json:"months" binding:"required,min=1"`
}

// CancelExtensionRequest undoes an extension. Same-day only, admin only.
type CancelExtensionRequest struct {
	ExtensionID string `json:"-"` // From the URL path
	Reason      string `json:"reason" binding:"required"`
	AdminPin    string `json:"adminPin" binding:"required"`
}

// ExtensionResponse defines the data returned for an extension.
type ExtensionResponse struct {
	ExtensionID          string     `json:"extensionID"`
	LoanID               string     `json:"loanID"`
	ExtensionMonths      int        `json:"extensionMonths"`
	FeePerMonth          int64      `json:"extensionFeePerMonth"`
	TotalFee             int64      `json:"totalExtensionFee"`
	OriginalMaturityDate time.Time  `json:"originalMaturityDate"`
	NewMaturityDate      time.Time  `json:"newMaturityDate"`
	IsCancelled          bool       `json:"isCancelled"`
	CancelledAt          *time.Time `json:"cancelledAt,omitempty"`
}

// ToExtensionResponse converts a domain.Extension to ExtensionResponse DTO.
func ToExtensionResponse(e *domain.Extension) ExtensionResponse {
	return ExtensionResponse{
		ExtensionID:          e.ExtensionID,
		LoanID:               e.LoanID,
		ExtensionMonths:      e.ExtensionMonths,
		FeePerMonth:          e.FeePerMonth.Int64(),
		TotalFee:             e.TotalFee.Int64(),
		OriginalMaturityDate: e.OriginalMaturityDate,
		NewMaturityDate:      e.NewMaturityDate,
		IsCancelled:          e.IsCancelled,
		CancelledAt:          e.CancelledAt,
	}
}
