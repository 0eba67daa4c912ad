package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/pawnsoft/pawn_ledger_app/internal/apperrors"
	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	portssvc "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/services"
	"github.com/pawnsoft/pawn_ledger_app/internal/core/services"
	"github.com/pawnsoft/pawn_ledger_app/internal/dto"
	"github.com/pawnsoft/pawn_ledger_app/internal/platform/cache"
)

type LoanServiceTestSuite struct {
	suite.Suite
	mockLoanRepo     *MockLoanRepository
	mockCustomerRepo *MockCustomerRepository
	mockAuditRepo    *MockAuditRepository
	service          portssvc.LoanSvcFacade
}

func (suite *LoanServiceTestSuite) SetupTest() {
	suite.mockLoanRepo = new(MockLoanRepository)
	suite.mockCustomerRepo = new(MockCustomerRepository)
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.service = services.NewLoanService(suite.mockLoanRepo, suite.mockCustomerRepo, suite.mockAuditRepo, StubActivityService{}, cache.Noop{}, testConfig())
}

func (suite *LoanServiceTestSuite) TestCreateLoanOpensActiveWithCounterBump() {
	ctx := context.Background()
	customer := &domain.Customer{CustomerID: "cust-1", Name: "R. Alvarez"}

	suite.mockCustomerRepo.On("FindCustomerByID", mock.Anything, "cust-1").Return(customer, nil).Once()

	var createdLoan domain.Loan
	var createdEntry domain.AuditEntry
	var createdDelta domain.CounterDelta
	suite.mockLoanRepo.On("CreateLoan", mock.Anything, mock.AnythingOfType("domain.Loan"), mock.AnythingOfType("domain.AuditEntry"), mock.AnythingOfType("domain.CounterDelta")).
		Run(func(args mock.Arguments) {
			createdLoan = args.Get(1).(domain.Loan)
			createdEntry = args.Get(2).(domain.AuditEntry)
			createdDelta = args.Get(3).(domain.CounterDelta)
		}).Return(nil).Once()

	persisted := domain.Loan{LoanID: "assigned-later", DisplayID: "PWN-000007", Status: domain.StatusActive}
	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, mock.AnythingOfType("string")).Return(&persisted, nil).Once()

	req := dto.CreateLoanRequest{
		CustomerID:            "cust-1",
		LoanAmount:            500,
		MonthlyInterestAmount: 75,
		ExtensionFeePerMonth:  25,
	}
	loan, err := suite.service.CreateLoan(ctx, req, "staff-1")

	suite.Require().NoError(err)
	suite.Equal("PWN-000007", loan.DisplayID)

	suite.Equal(domain.StatusActive, createdLoan.Status)
	suite.Equal(int64(500), createdLoan.LoanAmount.Int64())
	suite.Equal(int64(1), createdLoan.Version)
	suite.Equal(createdLoan.PawnDate.AddDate(0, 1, 0), createdLoan.MaturityDate)
	suite.Equal(createdLoan.MaturityDate.AddDate(0, 0, 30), createdLoan.GracePeriodEnd)

	suite.Equal(domain.ActionLoanCreated, createdEntry.ActionType)
	suite.Require().NotNil(createdEntry.Amount)
	suite.Equal(int64(500), createdEntry.Amount.Int64())

	suite.Equal(1, createdDelta.ActiveLoans)
	suite.Equal(int64(500), createdDelta.TotalLoanValue.Int64())
	suite.Equal(1, createdDelta.TotalTransactions)
	suite.mockLoanRepo.AssertExpectations(suite.T())
}

func (suite *LoanServiceTestSuite) TestCreateLoanUnknownCustomerRejected() {
	ctx := context.Background()
	suite.mockCustomerRepo.On("FindCustomerByID", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	req := dto.CreateLoanRequest{CustomerID: "ghost", LoanAmount: 100, MonthlyInterestAmount: 15}
	loan, err := suite.service.CreateLoan(ctx, req, "staff-1")

	suite.Require().Error(err)
	suite.Nil(loan)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockLoanRepo.AssertNotCalled(suite.T(), "CreateLoan", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LoanServiceTestSuite) TestChangeStatusToForfeitedFreesSlot() {
	ctx := context.Background()
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newTestLoan(200, 30, pawn)
	loan.Status = domain.StatusOverdue

	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil).Once()

	var updatedLoan domain.Loan
	var updatedDelta domain.CounterDelta
	suite.mockLoanRepo.On("UpdateLoan", mock.Anything, mock.AnythingOfType("domain.Loan"), mock.AnythingOfType("*domain.AuditEntry"), mock.AnythingOfType("domain.CounterDelta")).
		Run(func(args mock.Arguments) {
			updatedLoan = args.Get(1).(domain.Loan)
			updatedDelta = args.Get(3).(domain.CounterDelta)
		}).Return(nil).Once()

	req := dto.ChangeStatusRequest{LoanID: loan.LoanID, Status: "FORFEITED", Reason: "grace period expired"}
	result, err := suite.service.ChangeStatus(ctx, req, "staff-1")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusForfeited, result.Status)
	suite.Equal(domain.StatusForfeited, updatedLoan.Status)
	suite.Equal(-1, updatedDelta.ActiveLoans)
	suite.Equal(int64(-200), updatedDelta.TotalLoanValue.Int64())
}

func (suite *LoanServiceTestSuite) TestChangeStatusToRedeemedRejected() {
	ctx := context.Background()

	req := dto.ChangeStatusRequest{LoanID: "loan-1", Status: "REDEEMED"}
	result, err := suite.service.ChangeStatus(ctx, req, "staff-1")

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrBusinessRule)
	suite.mockLoanRepo.AssertNotCalled(suite.T(), "FindLoanByID", mock.Anything, mock.Anything)
}

func (suite *LoanServiceTestSuite) TestChangeStatusOnTerminalLoanRejected() {
	ctx := context.Background()
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newTestLoan(200, 30, pawn)
	loan.Status = domain.StatusRedeemed

	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil).Once()

	req := dto.ChangeStatusRequest{LoanID: loan.LoanID, Status: "ACTIVE"}
	result, err := suite.service.ChangeStatus(ctx, req, "staff-1")

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrBusinessRule)
}

func (suite *LoanServiceTestSuite) TestOverdueFeeRequiresOverdueStatus() {
	ctx := context.Background()
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newTestLoan(200, 30, pawn) // ACTIVE

	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil).Once()

	req := dto.SetOverdueFeeRequest{LoanID: loan.LoanID, Fee: 25}
	result, err := suite.service.SetOverdueFee(ctx, req, "staff-1")

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrBusinessRule)
}

func (suite *LoanServiceTestSuite) TestSetOverdueFeeAudited() {
	ctx := context.Background()
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newTestLoan(200, 30, pawn)
	loan.Status = domain.StatusOverdue

	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil).Once()

	var updatedLoan domain.Loan
	var updatedEntry *domain.AuditEntry
	suite.mockLoanRepo.On("UpdateLoan", mock.Anything, mock.AnythingOfType("domain.Loan"), mock.AnythingOfType("*domain.AuditEntry"), mock.AnythingOfType("domain.CounterDelta")).
		Run(func(args mock.Arguments) {
			updatedLoan = args.Get(1).(domain.Loan)
			updatedEntry = args.Get(2).(*domain.AuditEntry)
		}).Return(nil).Once()

	req := dto.SetOverdueFeeRequest{LoanID: loan.LoanID, Fee: 25}
	result, err := suite.service.SetOverdueFee(ctx, req, "staff-1")

	suite.Require().NoError(err)
	suite.Equal(int64(25), result.OverdueFee.Int64())
	suite.Equal(int64(25), updatedLoan.OverdueFee.Int64())
	suite.Require().NotNil(updatedEntry)
	suite.Equal(domain.ActionOverdueFeeSet, updatedEntry.ActionType)
	suite.Equal("$0", updatedEntry.PreviousValue)
	suite.Equal("$25", updatedEntry.NewValue)
}

func (suite *LoanServiceTestSuite) TestManualNotesAppendWithoutAudit() {
	ctx := context.Background()
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newTestLoan(200, 30, pawn)
	loan.ManualNotes = "[2026-01-11] customer called"

	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil).Once()

	var updatedLoan domain.Loan
	suite.mockLoanRepo.On("UpdateLoan", mock.Anything, mock.AnythingOfType("domain.Loan"), (*domain.AuditEntry)(nil), mock.AnythingOfType("domain.CounterDelta")).
		Run(func(args mock.Arguments) {
			updatedLoan = args.Get(1).(domain.Loan)
		}).Return(nil).Once()

	req := dto.AddManualNoteRequest{LoanID: loan.LoanID, Note: "will pick up Friday"}
	result, err := suite.service.AddManualNote(ctx, req, "staff-1")

	suite.Require().NoError(err)
	suite.Contains(result.ManualNotes, "customer called")
	suite.Contains(result.ManualNotes, "will pick up Friday")
	suite.Contains(updatedLoan.ManualNotes, "\n")
	suite.mockLoanRepo.AssertExpectations(suite.T())
}

func (suite *LoanServiceTestSuite) TestGetLoanAttachesAuditTrail() {
	ctx := context.Background()
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newTestLoan(200, 30, pawn)
	entries := []domain.AuditEntry{{EntryID: "e-1", LoanID: loan.LoanID, ActionType: domain.ActionLoanCreated}}

	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil).Once()
	suite.mockAuditRepo.On("FindEntriesByLoanID", mock.Anything, loan.LoanID).Return(entries, nil).Once()

	result, err := suite.service.GetLoanByID(ctx, loan.LoanID, true)

	suite.Require().NoError(err)
	suite.Len(result.AuditTrail, 1)
	suite.Equal(domain.ActionLoanCreated, result.AuditTrail[0].ActionType)
}

func TestLoanServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LoanServiceTestSuite))
}
