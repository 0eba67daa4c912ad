package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pawnsoft/pawn_ledger_app/internal/apperrors"
	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	portsrepo "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/services"
	"github.com/pawnsoft/pawn_ledger_app/internal/dto"
)

// Legacy note lines look like "[2023-04-12] payment received $50 by maria".
// The date and trailing actor are optional; everything else is free text.
var (
	legacyLineRe   = regexp.MustCompile(`^\s*(?:\[(\d{4}-\d{2}-\d{2})\])?\s*(.+?)\s*$`)
	legacyActorRe  = regexp.MustCompile(`\s+by\s+(\S+)\s*$`)
	legacyAmountRe = regexp.MustCompile(`\$(\d+)`)
)

// legacyActionPatterns maps recognizable legacy phrasings to structured
// action types. First match wins; unmatched lines stay free text.
var legacyActionPatterns = []struct {
	re     *regexp.Regexp
	action domain.ActionType
}{
	{regexp.MustCompile(`(?i)payment|paid`), domain.ActionPaymentProcessed},
	{regexp.MustCompile(`(?i)extend|extension`), domain.ActionExtensionApplied},
	{regexp.MustCompile(`(?i)redeem`), domain.ActionRedemptionCompleted},
	{regexp.MustCompile(`(?i)overdue\s+fee|late\s+fee`), domain.ActionOverdueFeeSet},
	{regexp.MustCompile(`(?i)discount`), domain.ActionDiscountApplied},
	{regexp.MustCompile(`(?i)void|revers`), domain.ActionPaymentVoided},
}

// auditService reads the append-only trail and performs the one-time legacy
// notes migration.
type auditService struct {
	BaseService
	loanRepo    portsrepo.LoanRepositoryFacade
	auditRepo   portsrepo.AuditReader
	activitySvc portssvc.ActivitySvcFacade
}

// NewAuditService creates a new AuditService.
func NewAuditService(loanRepo portsrepo.LoanRepositoryFacade, auditRepo portsrepo.AuditReader, activitySvc portssvc.ActivitySvcFacade) portssvc.AuditSvcFacade {
	return &auditService{
		loanRepo:    loanRepo,
		auditRepo:   auditRepo,
		activitySvc: activitySvc,
	}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

// GetAuditTrail returns a loan's audit entries, newest first.
func (s *auditService) GetAuditTrail(ctx context.Context, loanID string) ([]domain.AuditEntry, error) {
	if _, err := s.loanRepo.FindLoanByID(ctx, loanID); err != nil {
		return nil, err
	}
	entries, err := s.auditRepo.FindEntriesByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	// Repository order is oldest first; the trail reads newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// MigrateLegacyNotes backfills a loan's pre-system note blob into structured
// audit entries. Lines it cannot classify are carried into the manual notes
// channel instead of being dropped. A marker entry makes the whole operation
// idempotent.
func (s *auditService) MigrateLegacyNotes(ctx context.Context, loanID string, staffUserID string) (*dto.NotesMigrationResult, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	existing, err := s.auditRepo.FindEntriesByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if e.ActionType == domain.ActionLegacyNotesMigrated {
			return &dto.NotesMigrationResult{LoanID: loanID, AlreadyDone: true}, nil
		}
	}

	// The backfill is lossy and non-reversible. A loan that already has a
	// structured trail or manual notes is past the point where it can run.
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: loan %s already has audit entries; legacy notes cannot be migrated", apperrors.ErrBusinessRule, loan.DisplayID)
	}
	if strings.TrimSpace(loan.ManualNotes) != "" {
		return nil, fmt.Errorf("%w: loan %s already has manual notes; legacy notes cannot be migrated", apperrors.ErrBusinessRule, loan.DisplayID)
	}

	if strings.TrimSpace(loan.LegacyNotes) == "" {
		return nil, fmt.Errorf("%w: loan %s has no legacy notes to migrate", apperrors.ErrBusinessRule, loan.DisplayID)
	}

	now := time.Now().UTC()
	entries, carried := parseLegacyNotes(loan.LoanID, loan.LegacyNotes, staffUserID, now)

	marker := domain.AuditEntry{
		EntryID:     uuid.NewString(),
		LoanID:      loan.LoanID,
		ActionType:  domain.ActionLegacyNotesMigrated,
		StaffUserID: staffUserID,
		Summary:     fmt.Sprintf("Legacy notes migrated: %d entries created, %d lines carried as commentary", len(entries), len(carried)),
		CreatedAt:   now,
	}
	entries = append(entries, marker)

	if len(carried) > 0 {
		block := strings.Join(carried, "\n")
		if loan.ManualNotes == "" {
			loan.ManualNotes = block
		} else {
			loan.ManualNotes = loan.ManualNotes + "\n" + block
		}
	}
	loan.LastUpdatedAt = now
	loan.LastUpdatedBy = staffUserID

	if err := s.loanRepo.ApplyNotesMigration(ctx, *loan, entries); err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, staffUserID, "legacy_notes_migrated", "Legacy notes backfilled into audit trail",
		[]string{loan.LoanID}, map[string]any{
			"entries_created": len(entries) - 1,
			"lines_carried":   len(carried),
		})

	return &dto.NotesMigrationResult{
		LoanID:         loanID,
		EntriesCreated: len(entries) - 1,
		NotesCarried:   len(carried),
	}, nil
}

// parseLegacyNotes converts the note blob line by line. It returns the
// structured entries plus the lines that stay free text.
func parseLegacyNotes(loanID, blob, staffUserID string, now time.Time) ([]domain.AuditEntry, []string) {
	var entries []domain.AuditEntry
	var carried []string

	for _, raw := range strings.Split(blob, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		m := legacyLineRe.FindStringSubmatch(line)
		if m == nil {
			carried = append(carried, line)
			continue
		}
		dateStr, text := m[1], m[2]

		action, matched := classifyLegacyLine(text)
		if !matched {
			carried = append(carried, line)
			continue
		}

		entry := domain.AuditEntry{
			EntryID:     uuid.NewString(),
			LoanID:      loanID,
			ActionType:  action,
			StaffUserID: staffUserID,
			Summary:     text,
			CreatedAt:   now,
		}

		// The original event date, when present, is preserved in the entry
		// timestamp so the migrated trail sorts correctly.
		if dateStr != "" {
			if ts, err := time.Parse("2006-01-02", dateStr); err == nil {
				entry.CreatedAt = ts
			}
		}
		if am := legacyActorRe.FindStringSubmatch(text); am != nil {
			entry.NewValue = am[1]
		}
		if am := legacyAmountRe.FindStringSubmatch(text); am != nil {
			if dollars, err := strconv.ParseInt(am[1], 10, 64); err == nil {
				amount := domain.Money(dollars)
				entry.Amount = &amount
			}
		}

		entries = append(entries, entry)
	}

	return entries, carried
}

func classifyLegacyLine(text string) (domain.ActionType, bool) {
	for _, p := range legacyActionPatterns {
		if p.re.MatchString(text) {
			return p.action, true
		}
	}
	return "", false
}
