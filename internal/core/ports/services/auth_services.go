package services

import "context"

// AuthVerifierSvc gates the operations that require an admin second factor.
type AuthVerifierSvc interface {
	// RequireAdmin returns ErrForbidden unless the user holds the ADMIN role.
	RequireAdmin(ctx context.Context, userID string) error

	// VerifyAdminPin checks the user's admin PIN against the stored hash.
	// Returns ErrForbidden for non-admins and ErrAuthentication on a bad PIN.
	VerifyAdminPin(ctx context.Context, userID string, pin string) error
}
