package repositories

import (
	"context"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
)

// UserReader defines read operations for staff user data. User lifecycle
// management belongs to the external identity service; the ledger only reads
// roles and PIN hashes.
type UserReader interface {
	// FindUserByID retrieves a staff user by their unique identifier.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// UserRepositoryFacade is the full user repository surface.
type UserRepositoryFacade interface {
	UserReader
}
