package services

import (
	"context"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	"github.com/pawnsoft/pawn_ledger_app/internal/dto"
)

// AuditSvcFacade exposes the append-only audit trail and the one-time
// legacy notes migration.
type AuditSvcFacade interface {
	// GetAuditTrail returns a loan's audit entries, newest first.
	GetAuditTrail(ctx context.Context, loanID string) ([]domain.AuditEntry, error)

	// MigrateLegacyNotes parses a loan's legacy free-text notes into
	// structured audit entries. Idempotent: a loan already carrying a
	// LEGACY_NOTES_MIGRATED entry is reported as done and left untouched.
	MigrateLegacyNotes(ctx context.Context, loanID string, staffUserID string) (*dto.NotesMigrationResult, error)
}
