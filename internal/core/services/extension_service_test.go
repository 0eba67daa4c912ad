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
	"github.com/pawnsoft/pawn_ledger_app/internal/dto"
	"github.com/pawnsoft/pawn_ledger_app/internal/platform/cache"
)

type ExtensionServiceTestSuite struct {
	suite.Suite
	mockLoanRepo      *MockLoanRepository
	mockExtensionRepo *MockExtensionRepository
	service           portssvc.ExtensionSvcFacade
}

func (suite *ExtensionServiceTestSuite) SetupTest() {
	suite.mockLoanRepo = new(MockLoanRepository)
	suite.mockExtensionRepo = new(MockExtensionRepository)
	suite.service = services.NewExtensionService(suite.mockLoanRepo, suite.mockExtensionRepo, StubActivityService{}, cache.Noop{}, testConfig())
}

func (suite *ExtensionServiceTestSuite) TestProcessExtensionMovesMaturity() {
	ctx := context.Background()
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newTestLoan(100, 15, pawn)
	originalMaturity := loan.MaturityDate

	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil).Once()

	var appliedLoan domain.Loan
	var appliedExt domain.Extension
	suite.mockLoanRepo.On("ApplyExtension", mock.Anything, mock.AnythingOfType("domain.Loan"), mock.AnythingOfType("domain.Extension"), mock.AnythingOfType("domain.AuditEntry")).
		Run(func(args mock.Arguments) {
			appliedLoan = args.Get(1).(domain.Loan)
			appliedExt = args.Get(2).(domain.Extension)
		}).Return(nil).Once()

	ext, err := suite.service.ProcessExtension(ctx, dto.ProcessExtensionRequest{LoanID: loan.LoanID, Months: 2}, "staff-1")

	suite.Require().NoError(err)
	suite.Equal(2, ext.ExtensionMonths)
	suite.Equal(int64(40), ext.TotalFee.Int64())
	suite.Equal(originalMaturity, ext.OriginalMaturityDate)
	suite.Equal(originalMaturity.AddDate(0, 2, 0), ext.NewMaturityDate)

	suite.Equal(domain.StatusExtended, appliedLoan.Status)
	suite.Equal(ext.NewMaturityDate, appliedLoan.MaturityDate)
	suite.Equal(ext.NewMaturityDate.AddDate(0, 0, 30), appliedLoan.GracePeriodEnd)
	suite.Equal(appliedExt.ExtensionID, ext.ExtensionID)
	suite.mockLoanRepo.AssertExpectations(suite.T())
}

func (suite *ExtensionServiceTestSuite) TestFallbackFeeForLegacyLoans() {
	ctx := context.Background()
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newTestLoan(100, 15, pawn)
	loan.ExtensionFeePerMonth = domain.Zero

	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil).Once()
	suite.mockLoanRepo.On("ApplyExtension", mock.Anything, mock.AnythingOfType("domain.Loan"), mock.AnythingOfType("domain.Extension"), mock.AnythingOfType("domain.AuditEntry")).
		Return(nil).Once()

	ext, err := suite.service.ProcessExtension(ctx, dto.ProcessExtensionRequest{LoanID: loan.LoanID, Months: 1}, "staff-1")

	suite.Require().NoError(err)
	suite.Equal(int64(10), ext.FeePerMonth.Int64())
	suite.Equal(int64(10), ext.TotalFee.Int64())
}

func (suite *ExtensionServiceTestSuite) TestMonthsBeyondCapRejected() {
	ctx := context.Background()
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newTestLoan(100, 15, pawn)

	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil).Once()

	err := suite.service.CheckExtensionEligibility(ctx, loan.LoanID, 4)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExtensionServiceTestSuite) TestTerminalLoanNotExtendable() {
	ctx := context.Background()
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newTestLoan(100, 15, pawn)
	loan.Status = domain.StatusForfeited

	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil).Once()

	err := suite.service.CheckExtensionEligibility(ctx, loan.LoanID, 1)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrBusinessRule)
}

func (suite *ExtensionServiceTestSuite) TestSequentialExtensionsCompose() {
	ctx := context.Background()
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newTestLoan(100, 15, pawn)
	originalMaturity := loan.MaturityDate

	var appliedLoan domain.Loan
	suite.mockLoanRepo.On("ApplyExtension", mock.Anything, mock.AnythingOfType("domain.Loan"), mock.AnythingOfType("domain.Extension"), mock.AnythingOfType("domain.AuditEntry")).
		Run(func(args mock.Arguments) {
			appliedLoan = args.Get(1).(domain.Loan)
		}).Return(nil).Twice()

	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil).Once()
	first, err := suite.service.ProcessExtension(ctx, dto.ProcessExtensionRequest{LoanID: loan.LoanID, Months: 1}, "staff-1")
	suite.Require().NoError(err)

	// The second extension reads the loan as the first one left it.
	afterFirst := appliedLoan
	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(&afterFirst, nil).Once()
	second, err := suite.service.ProcessExtension(ctx, dto.ProcessExtensionRequest{LoanID: loan.LoanID, Months: 1}, "staff-1")
	suite.Require().NoError(err)

	// Two one-month extensions land where a single two-month one would:
	// same final maturity off the original date, same total fee.
	suite.Equal(first.NewMaturityDate, second.OriginalMaturityDate)
	suite.Equal(originalMaturity.AddDate(0, 2, 0), second.NewMaturityDate)
	suite.Equal(originalMaturity.AddDate(0, 2, 0), appliedLoan.MaturityDate)
	suite.Equal(int64(40), first.TotalFee.Add(second.TotalFee).Int64())
}

func (suite *ExtensionServiceTestSuite) TestCancelRestoresSchedule() {
	ctx := context.Background()
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newTestLoan(100, 15, pawn)
	originalMaturity := loan.MaturityDate

	ext := &domain.Extension{
		ExtensionID:          uuid.NewString(),
		LoanID:               loan.LoanID,
		ExtensionMonths:      1,
		FeePerMonth:          domain.Money(20),
		TotalFee:             domain.Money(20),
		OriginalMaturityDate: originalMaturity,
		NewMaturityDate:      originalMaturity.AddDate(0, 1, 0),
		AuditFields:          domain.AuditFields{CreatedAt: time.Now().UTC()},
	}
	loan.Status = domain.StatusExtended
	loan.MaturityDate = ext.NewMaturityDate
	loan.GracePeriodEnd = ext.NewMaturityDate.AddDate(0, 0, 30)

	suite.mockExtensionRepo.On("FindExtensionByID", mock.Anything, ext.ExtensionID).Return(ext, nil).Once()
	suite.mockExtensionRepo.On("FindExtensionsByLoanID", mock.Anything, loan.LoanID).Return([]domain.Extension{*ext}, nil).Once()
	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil).Once()

	var cancelledLoan domain.Loan
	var cancelledExt domain.Extension
	suite.mockLoanRepo.On("CancelExtension", mock.Anything, mock.AnythingOfType("domain.Loan"), mock.AnythingOfType("domain.Extension"), mock.AnythingOfType("domain.AuditEntry")).
		Run(func(args mock.Arguments) {
			cancelledLoan = args.Get(1).(domain.Loan)
			cancelledExt = args.Get(2).(domain.Extension)
		}).Return(nil).Once()

	req := dto.CancelExtensionRequest{ExtensionID: ext.ExtensionID, Reason: "clerk error", AdminPin: "4242"}
	result, err := suite.service.CancelExtension(ctx, req, "staff-1", nil)

	suite.Require().NoError(err)
	suite.True(result.IsCancelled)
	suite.Equal("clerk error", result.CancelReason)
	suite.True(cancelledExt.IsCancelled)
	suite.Equal(originalMaturity, cancelledLoan.MaturityDate)
	suite.NotEqual(domain.StatusExtended, cancelledLoan.Status)
}

func (suite *ExtensionServiceTestSuite) TestOnlyLatestExtensionCancellable() {
	ctx := context.Background()
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newTestLoan(100, 15, pawn)

	older := domain.Extension{
		ExtensionID:          uuid.NewString(),
		LoanID:               loan.LoanID,
		OriginalMaturityDate: loan.MaturityDate,
		NewMaturityDate:      loan.MaturityDate.AddDate(0, 1, 0),
	}
	newer := older
	newer.ExtensionID = uuid.NewString()
	newer.OriginalMaturityDate = older.NewMaturityDate
	newer.NewMaturityDate = older.NewMaturityDate.AddDate(0, 1, 0)

	suite.mockExtensionRepo.On("FindExtensionByID", mock.Anything, older.ExtensionID).Return(&older, nil).Once()
	suite.mockExtensionRepo.On("FindExtensionsByLoanID", mock.Anything, loan.LoanID).Return([]domain.Extension{older, newer}, nil).Once()

	req := dto.CancelExtensionRequest{ExtensionID: older.ExtensionID, Reason: "oops", AdminPin: "4242"}
	result, err := suite.service.CancelExtension(ctx, req, "staff-1", nil)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrBusinessRule)
}

func TestExtensionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExtensionServiceTestSuite))
}
