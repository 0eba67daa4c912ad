package utils

import "fmt"

// FormatLoanDisplayID renders the staff-facing loan id from its sequence
// number, e.g. 42 -> "PWN-000042".
func FormatLoanDisplayID(seq int64) string {
	return fmt.Sprintf("PWN-%06d", seq)
}
