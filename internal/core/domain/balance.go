package domain

import "time"

// Bucket identifies one of the four debt buckets of a loan, listed in the
// fixed allocation priority order.
type Bucket string

const (
	BucketOverdueFee    Bucket = "OVERDUE_FEE"
	BucketExtensionFees Bucket = "EXTENSION_FEES"
	BucketInterest      Bucket = "INTEREST"
	BucketPrincipal     Bucket = "PRINCIPAL"
)

// AllocationOrder is the payment allocation priority: staff-assessed penalties
// and fees are recovered before principal on partial payments.
var AllocationOrder = []Bucket{BucketOverdueFee, BucketExtensionFees, BucketInterest, BucketPrincipal}

// BucketAmounts is the due/paid pair for one bucket.
type BucketAmounts struct {
	Due  Money `json:"due"`
	Paid Money `json:"paid"`
}

// Outstanding returns due minus paid, floored at zero.
func (b BucketAmounts) Outstanding() Money { return b.Due.SubFloor(b.Paid) }

// BalanceBreakdown is the balance calculator's result: what is owed and what
// has been paid per bucket, as of a specific instant.
type BalanceBreakdown struct {
	LoanID         string        `json:"loanID"`
	AsOf           time.Time     `json:"asOf"`
	Principal      BucketAmounts `json:"principal"`
	Interest       BucketAmounts `json:"interest"`
	ExtensionFees  BucketAmounts `json:"extensionFees"`
	OverdueFee     BucketAmounts `json:"overdueFee"`
	InterestMonths int           `json:"interestMonths"` // Months charged after the cap
	CurrentBalance Money         `json:"currentBalance"`
}

// ForBucket returns the due/paid pair for the named bucket.
func (b BalanceBreakdown) ForBucket(bucket Bucket) BucketAmounts {
	switch bucket {
	case BucketOverdueFee:
		return b.OverdueFee
	case BucketExtensionFees:
		return b.ExtensionFees
	case BucketInterest:
		return b.Interest
	default:
		return b.Principal
	}
}

// TotalOutstanding sums the outstanding amount across all buckets.
func (b BalanceBreakdown) TotalOutstanding() Money {
	total := Zero
	for _, bucket := range AllocationOrder {
		total = total.Add(b.ForBucket(bucket).Outstanding())
	}
	return total
}
