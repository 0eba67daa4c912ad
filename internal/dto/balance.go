package dto

import (
	"time"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
)

// BucketResponse is the due/paid/outstanding triple for one debt bucket.
type BucketResponse struct {
	Due         int64 `json:"due"`
	Paid        int64 `json:"paid"`
	Outstanding int64 `json:"outstanding"`
}

// BalanceResponse defines the data returned for a balance breakdown.
type BalanceResponse struct {
	LoanID         string         `json:"loanID"`
	AsOf           time.Time      `json:"asOf"`
	OverdueFee     BucketResponse `json:"overdueFee"`
	ExtensionFees  BucketResponse `json:"extensionFees"`
	Interest       BucketResponse `json:"interest"`
	Principal      BucketResponse `json:"principal"`
	InterestMonths int            `json:"interestMonths"`
	CurrentBalance int64          `json:"currentBalance"`
}

func toBucketResponse(b domain.BucketAmounts) BucketResponse {
	return BucketResponse{
		Due:         b.Due.Int64(),
		Paid:        b.Paid.Int64(),
		Outstanding: b.Outstanding().Int64(),
	}
}

// ToBalanceResponse converts a domain.BalanceBreakdown to BalanceResponse DTO.
func ToBalanceResponse(b *domain.BalanceBreakdown) BalanceResponse {
	return BalanceResponse{
		LoanID:         b.LoanID,
		AsOf:           b.AsOf,
		OverdueFee:     toBucketResponse(b.OverdueFee),
		ExtensionFees:  toBucketResponse(b.ExtensionFees),
		Interest:       toBucketResponse(b.Interest),
		Principal:      toBucketResponse(b.Principal),
		InterestMonths: b.InterestMonths,
		CurrentBalance: b.CurrentBalance.Int64(),
	}
}
