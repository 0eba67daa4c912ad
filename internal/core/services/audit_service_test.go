package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/pawnsoft/pawn_ledger_app/internal/apperrors"
	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	portssvc "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/services"
	"github.com/pawnsoft/pawn_ledger_app/internal/core/services"
)

type AuditServiceTestSuite struct {
	suite.Suite
	mockLoanRepo  *MockLoanRepository
	mockAuditRepo *MockAuditRepository
	service       portssvc.AuditSvcFacade
}

func (suite *AuditServiceTestSuite) SetupTest() {
	suite.mockLoanRepo = new(MockLoanRepository)
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.service = services.NewAuditService(suite.mockLoanRepo, suite.mockAuditRepo, StubActivityService{})
}

func (suite *AuditServiceTestSuite) TestTrailReadsNewestFirst() {
	ctx := context.Background()
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newTestLoan(100, 15, pawn)

	oldest := domain.AuditEntry{EntryID: "a", LoanID: loan.LoanID, ActionType: domain.ActionLoanCreated, CreatedAt: pawn}
	newest := domain.AuditEntry{EntryID: "b", LoanID: loan.LoanID, ActionType: domain.ActionPaymentProcessed, CreatedAt: pawn.AddDate(0, 0, 5)}

	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil).Once()
	suite.mockAuditRepo.On("FindEntriesByLoanID", mock.Anything, loan.LoanID).Return([]domain.AuditEntry{oldest, newest}, nil).Once()

	entries, err := suite.service.GetAuditTrail(ctx, loan.LoanID)

	suite.Require().NoError(err)
	suite.Require().Len(entries, 2)
	suite.Equal("b", entries[0].EntryID)
	suite.Equal("a", entries[1].EntryID)
}

func (suite *AuditServiceTestSuite) TestMigrationParsesLegacyLines() {
	ctx := context.Background()
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newTestLoan(100, 15, pawn)
	loan.LegacyNotes = "[2023-04-12] payment received $50 by maria\n" +
		"[2023-05-02] extended 1 month $20\n" +
		"customer prefers phone calls\n" +
		"[2023-06-01] item redeemed $75"

	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil).Once()
	suite.mockAuditRepo.On("FindEntriesByLoanID", mock.Anything, loan.LoanID).Return([]domain.AuditEntry{}, nil).Once()

	var migratedLoan domain.Loan
	var entries []domain.AuditEntry
	suite.mockLoanRepo.On("ApplyNotesMigration", mock.Anything, mock.AnythingOfType("domain.Loan"), mock.AnythingOfType("[]domain.AuditEntry")).
		Run(func(args mock.Arguments) {
			migratedLoan = args.Get(1).(domain.Loan)
			entries = args.Get(2).([]domain.AuditEntry)
		}).Return(nil).Once()

	result, err := suite.service.MigrateLegacyNotes(ctx, loan.LoanID, "admin-1")

	suite.Require().NoError(err)
	suite.False(result.AlreadyDone)
	suite.Equal(3, result.EntriesCreated)
	suite.Equal(1, result.NotesCarried)

	// Three parsed entries plus the idempotency marker.
	suite.Require().Len(entries, 4)
	suite.Equal(domain.ActionPaymentProcessed, entries[0].ActionType)
	suite.Require().NotNil(entries[0].Amount)
	suite.Equal(int64(50), entries[0].Amount.Int64())
	suite.Equal("maria", entries[0].NewValue)
	suite.Equal(time.Date(2023, 4, 12, 0, 0, 0, 0, time.UTC), entries[0].CreatedAt)
	suite.Equal(domain.ActionExtensionApplied, entries[1].ActionType)
	suite.Equal(domain.ActionRedemptionCompleted, entries[2].ActionType)
	suite.Equal(domain.ActionLegacyNotesMigrated, entries[3].ActionType)

	// The unclassifiable line lands in manual notes, not the trail.
	suite.Contains(migratedLoan.ManualNotes, "customer prefers phone calls")
}

func (suite *AuditServiceTestSuite) TestMigrationIsIdempotent() {
	ctx := context.Background()
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newTestLoan(100, 15, pawn)
	loan.LegacyNotes = "[2023-04-12] payment received $50"

	done := domain.AuditEntry{
		EntryID:    uuid.NewString(),
		LoanID:     loan.LoanID,
		ActionType: domain.ActionLegacyNotesMigrated,
	}

	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil).Once()
	suite.mockAuditRepo.On("FindEntriesByLoanID", mock.Anything, loan.LoanID).Return([]domain.AuditEntry{done}, nil).Once()

	result, err := suite.service.MigrateLegacyNotes(ctx, loan.LoanID, "admin-1")

	suite.Require().NoError(err)
	suite.True(result.AlreadyDone)
	suite.mockLoanRepo.AssertNotCalled(suite.T(), "ApplyNotesMigration", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuditServiceTestSuite) TestMigrationRefusedOnceTrailExists() {
	ctx := context.Background()
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newTestLoan(100, 15, pawn)
	loan.ManualNotes = "[2026-02-01] customer called"
	loan.LegacyNotes = "[2023-04-12] payment received $50"

	trail := domain.AuditEntry{
		EntryID:    uuid.NewString(),
		LoanID:     loan.LoanID,
		ActionType: domain.ActionPaymentProcessed,
	}

	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil).Once()
	suite.mockAuditRepo.On("FindEntriesByLoanID", mock.Anything, loan.LoanID).Return([]domain.AuditEntry{trail}, nil).Once()

	result, err := suite.service.MigrateLegacyNotes(ctx, loan.LoanID, "admin-1")

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrBusinessRule)
	suite.mockLoanRepo.AssertNotCalled(suite.T(), "ApplyNotesMigration", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuditServiceTestSuite) TestMigrationRefusedWhenManualNotesExist() {
	ctx := context.Background()
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newTestLoan(100, 15, pawn)
	loan.ManualNotes = "[2026-02-01] ring resized before storage"
	loan.LegacyNotes = "[2023-04-12] payment received $50"

	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil).Once()
	suite.mockAuditRepo.On("FindEntriesByLoanID", mock.Anything, loan.LoanID).Return([]domain.AuditEntry{}, nil).Once()

	result, err := suite.service.MigrateLegacyNotes(ctx, loan.LoanID, "admin-1")

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrBusinessRule)
	suite.mockLoanRepo.AssertNotCalled(suite.T(), "ApplyNotesMigration", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuditServiceTestSuite) TestMigrationRequiresLegacyNotes() {
	ctx := context.Background()
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newTestLoan(100, 15, pawn)

	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil).Once()
	suite.mockAuditRepo.On("FindEntriesByLoanID", mock.Anything, loan.LoanID).Return([]domain.AuditEntry{}, nil).Once()

	result, err := suite.service.MigrateLegacyNotes(ctx, loan.LoanID, "admin-1")

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrBusinessRule)
}

func TestAuditServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuditServiceTestSuite))
}
