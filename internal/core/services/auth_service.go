package services

import (
	"context"
	"fmt"

	"github.com/pawnsoft/pawn_ledger_app/internal/apperrors"
	portsrepo "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/services"
	"github.com/pawnsoft/pawn_ledger_app/internal/utils"
)

// authService gates admin-only ledger actions. Sessions and identity live in
// the external auth service; this only checks roles and the admin PIN.
type authService struct {
	BaseService
	userRepo portsrepo.UserReader
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo portsrepo.UserReader) portssvc.AuthVerifierSvc {
	return &authService{userRepo: userRepo}
}

var _ portssvc.AuthVerifierSvc = (*authService)(nil)

// RequireAdmin returns ErrForbidden unless the user holds the ADMIN role.
func (s *authService) RequireAdmin(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsAdmin() {
		return fmt.Errorf("%w: this action requires an admin", apperrors.ErrForbidden)
	}
	return nil
}

// VerifyAdminPin checks the user's admin PIN against the stored hash.
func (s *authService) VerifyAdminPin(ctx context.Context, userID string, pin string) error {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsAdmin() {
		return fmt.Errorf("%w: this action requires an admin", apperrors.ErrForbidden)
	}
	if user.PinHash == "" || !utils.CheckPinHash(pin, user.PinHash) {
		s.LogInfo(ctx, "admin PIN verification failed")
		return fmt.Errorf("%w: invalid admin PIN", apperrors.ErrAuthentication)
	}
	return nil
}
