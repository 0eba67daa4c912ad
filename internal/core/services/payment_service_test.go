package services_test

import (
	"context"
	"encoding/json"
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

type PaymentServiceTestSuite struct {
	suite.Suite
	mockLoanRepo      *MockLoanRepository
	mockPaymentRepo   *MockPaymentRepository
	mockExtensionRepo *MockExtensionRepository
	mockAuth          *MockAuthVerifier
	service           portssvc.PaymentSvcFacade
}

func (suite *PaymentServiceTestSuite) SetupTest() {
	suite.mockLoanRepo = new(MockLoanRepository)
	suite.mockPaymentRepo = new(MockPaymentRepository)
	suite.mockExtensionRepo = new(MockExtensionRepository)
	suite.mockAuth = new(MockAuthVerifier)
	cfg := testConfig()
	balanceSvc := services.NewBalanceService(suite.mockLoanRepo, suite.mockPaymentRepo, suite.mockExtensionRepo, cache.Noop{}, cfg)
	suite.service = services.NewPaymentService(suite.mockLoanRepo, balanceSvc, suite.mockAuth, StubActivityService{}, cache.Noop{}, cfg)
}

// expectReads wires the loan read for both the payment service and the
// balance calculation underneath it.
func (suite *PaymentServiceTestSuite) expectReads(loan *domain.Loan, payments []domain.Payment, extensions []domain.Extension) {
	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil)
	suite.mockPaymentRepo.On("FindPaymentsByLoanID", mock.Anything, loan.LoanID).Return(payments, nil)
	suite.mockExtensionRepo.On("FindExtensionsByLoanID", mock.Anything, loan.LoanID).Return(extensions, nil)
}

func (suite *PaymentServiceTestSuite) TestFullPaymentRedeemsLoan() {
	ctx := context.Background()
	staffUserID := "staff-1"
	pawn := time.Now().UTC().AddDate(0, 0, -15)
	loan := newTestLoan(100, 15, pawn)
	suite.expectReads(loan, []domain.Payment{}, []domain.Extension{})

	var applied domain.Payment
	var appliedLoan domain.Loan
	var appliedDelta domain.CounterDelta
	suite.mockLoanRepo.On("ApplyPayment", mock.Anything, mock.AnythingOfType("domain.Loan"), mock.AnythingOfType("domain.Payment"), mock.AnythingOfType("[]domain.AuditEntry"), mock.AnythingOfType("domain.CounterDelta")).
		Run(func(args mock.Arguments) {
			appliedLoan = args.Get(1).(domain.Loan)
			applied = args.Get(2).(domain.Payment)
			appliedDelta = args.Get(4).(domain.CounterDelta)
		}).Return(nil).Once()

	payment, status, err := suite.service.ProcessPayment(ctx, dto.ProcessPaymentRequest{LoanID: loan.LoanID, Amount: 115}, staffUserID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusRedeemed, status)
	suite.Equal(int64(15), payment.InterestPortion.Int64())
	suite.Equal(int64(100), payment.PrincipalPortion.Int64())
	suite.Equal(int64(115), payment.BalanceBefore.Int64())
	suite.Equal(int64(0), payment.BalanceAfter.Int64())
	suite.Equal(domain.StatusActive, payment.StatusBefore)

	suite.Equal(domain.StatusRedeemed, appliedLoan.Status)
	suite.Equal(-1, appliedDelta.ActiveLoans)
	suite.Equal(int64(-100), appliedDelta.TotalLoanValue.Int64())
	suite.Equal(applied.PaymentID, payment.PaymentID)
	suite.mockLoanRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestInterestOnlyPaymentRenewsTerm() {
	ctx := context.Background()
	pawn := time.Now().UTC().AddDate(0, 0, -20)
	loan := newTestLoan(500, 75, pawn)
	originalMaturity := loan.MaturityDate
	suite.expectReads(loan, []domain.Payment{}, []domain.Extension{})

	var appliedLoan domain.Loan
	suite.mockLoanRepo.On("ApplyPayment", mock.Anything, mock.AnythingOfType("domain.Loan"), mock.AnythingOfType("domain.Payment"), mock.AnythingOfType("[]domain.AuditEntry"), mock.AnythingOfType("domain.CounterDelta")).
		Run(func(args mock.Arguments) {
			appliedLoan = args.Get(1).(domain.Loan)
		}).Return(nil).Once()

	payment, status, err := suite.service.ProcessPayment(ctx, dto.ProcessPaymentRequest{LoanID: loan.LoanID, Amount: 75}, "staff-1")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusExtended, status)
	suite.Equal(int64(75), payment.InterestPortion.Int64())
	suite.Equal(int64(0), payment.PrincipalPortion.Int64())
	// New maturity anchors to the old maturity, not the payment date.
	suite.Equal(originalMaturity.AddDate(0, 1, 0), appliedLoan.MaturityDate)
}

func (suite *PaymentServiceTestSuite) TestPartialPaymentKeepsStatus() {
	ctx := context.Background()
	pawn := time.Now().UTC().AddDate(0, 0, -10)
	loan := newTestLoan(1000, 150, pawn)
	suite.expectReads(loan, []domain.Payment{}, []domain.Extension{})

	suite.mockLoanRepo.On("ApplyPayment", mock.Anything, mock.AnythingOfType("domain.Loan"), mock.AnythingOfType("domain.Payment"), mock.AnythingOfType("[]domain.AuditEntry"), mock.AnythingOfType("domain.CounterDelta")).
		Return(nil).Once()

	payment, status, err := suite.service.ProcessPayment(ctx, dto.ProcessPaymentRequest{LoanID: loan.LoanID, Amount: 500}, "staff-1")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusActive, status)
	// Interest first, remainder to principal.
	suite.Equal(int64(150), payment.InterestPortion.Int64())
	suite.Equal(int64(350), payment.PrincipalPortion.Int64())
	suite.Equal(int64(650), payment.BalanceAfter.Int64())
}

func (suite *PaymentServiceTestSuite) TestOverdueFeeCollectedFirst() {
	ctx := context.Background()
	pawn := time.Now().UTC().AddDate(0, 0, -20)
	loan := newTestLoan(100, 15, pawn)
	loan.Status = domain.StatusOverdue
	loan.OverdueFee = domain.Money(25)
	suite.expectReads(loan, []domain.Payment{}, []domain.Extension{})

	suite.mockLoanRepo.On("ApplyPayment", mock.Anything, mock.AnythingOfType("domain.Loan"), mock.AnythingOfType("domain.Payment"), mock.AnythingOfType("[]domain.AuditEntry"), mock.AnythingOfType("domain.CounterDelta")).
		Return(nil).Once()

	payment, status, err := suite.service.ProcessPayment(ctx, dto.ProcessPaymentRequest{LoanID: loan.LoanID, Amount: 30}, "staff-1")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusOverdue, status)
	suite.Equal(int64(25), payment.OverdueFeePortion.Int64())
	suite.Equal(int64(5), payment.InterestPortion.Int64())
	suite.Equal(int64(0), payment.PrincipalPortion.Int64())
}

func (suite *PaymentServiceTestSuite) TestOverpaymentBeyondToleranceRejected() {
	ctx := context.Background()
	pawn := time.Now().UTC().AddDate(0, 0, -15)
	loan := newTestLoan(100, 15, pawn)
	suite.expectReads(loan, []domain.Payment{}, []domain.Extension{})

	payment, _, err := suite.service.ProcessPayment(ctx, dto.ProcessPaymentRequest{LoanID: loan.LoanID, Amount: 125}, "staff-1")

	suite.Require().Error(err)
	suite.Nil(payment)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLoanRepo.AssertNotCalled(suite.T(), "ApplyPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestTerminalLoanRejectsPayment() {
	ctx := context.Background()
	pawn := time.Now().UTC().AddDate(0, 0, -15)
	loan := newTestLoan(100, 15, pawn)
	loan.Status = domain.StatusRedeemed

	suite.mockLoanRepo.On("FindLoanByID", mock.Anything, loan.LoanID).Return(loan, nil)

	payment, _, err := suite.service.ProcessPayment(ctx, dto.ProcessPaymentRequest{LoanID: loan.LoanID, Amount: 10}, "staff-1")

	suite.Require().Error(err)
	suite.Nil(payment)
	suite.ErrorIs(err, apperrors.ErrBusinessRule)
}

func (suite *PaymentServiceTestSuite) TestDiscountRequiresValidPin() {
	ctx := context.Background()
	staffUserID := "staff-1"
	req := dto.DiscountPaymentRequest{
		LoanID:         "loan-1",
		Amount:         100,
		DiscountAmount: 10,
		DiscountReason: "damaged clasp",
		AdminPin:       "0000",
	}

	suite.mockAuth.On("VerifyAdminPin", mock.Anything, staffUserID, "0000").Return(apperrors.ErrAuthentication).Once()

	payment, _, err := suite.service.ProcessPaymentWithDiscount(ctx, req, staffUserID)

	suite.Require().Error(err)
	suite.Nil(payment)
	suite.ErrorIs(err, apperrors.ErrAuthentication)
	suite.mockLoanRepo.AssertNotCalled(suite.T(), "FindLoanByID", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestDiscountedPaymentRedeems() {
	ctx := context.Background()
	staffUserID := "staff-1"
	pawn := time.Now().UTC().AddDate(0, 0, -15)
	loan := newTestLoan(100, 15, pawn)
	suite.expectReads(loan, []domain.Payment{}, []domain.Extension{})
	suite.mockAuth.On("VerifyAdminPin", mock.Anything, staffUserID, "4242").Return(nil).Once()

	suite.mockLoanRepo.On("ApplyPayment", mock.Anything, mock.AnythingOfType("domain.Loan"), mock.AnythingOfType("domain.Payment"), mock.AnythingOfType("[]domain.AuditEntry"), mock.AnythingOfType("domain.CounterDelta")).
		Return(nil).Once()

	req := dto.DiscountPaymentRequest{
		LoanID:         loan.LoanID,
		Amount:         105,
		DiscountAmount: 10,
		DiscountReason: "loyal customer",
		AdminPin:       "4242",
	}
	payment, status, err := suite.service.ProcessPaymentWithDiscount(ctx, req, staffUserID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusRedeemed, status)
	suite.Equal(int64(10), payment.DiscountAmount.Int64())
	// Cash portions sum to the cash received, not the amount settled.
	suite.Equal(int64(105), payment.AllocatedTotal().Int64())
	suite.Equal(int64(0), payment.BalanceAfter.Int64())
	suite.mockAuth.AssertExpectations(suite.T())
}

// seededCache serves preloaded values, standing in for a redis whose
// invalidation never landed.
type seededCache struct {
	cache.Noop
	values map[string][]byte
}

func (c seededCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := c.values[key]; ok {
		return v, nil
	}
	return nil, cache.ErrMiss
}

func (suite *PaymentServiceTestSuite) TestPaymentIgnoresStaleCachedBalance() {
	ctx := context.Background()
	pawn := time.Now().UTC().AddDate(0, 0, -15)
	loan := newTestLoan(100, 15, pawn)

	// The rows already carry a payment that settled all but $15, but the
	// cache still holds the pre-payment breakdown of $115.
	prior := domain.Payment{
		PaymentID:        uuid.NewString(),
		LoanID:           loan.LoanID,
		PaymentAmount:    domain.Money(100),
		InterestPortion:  domain.Money(15),
		PrincipalPortion: domain.Money(85),
		PaymentDate:      time.Now().UTC().AddDate(0, 0, -1),
	}
	stale := domain.BalanceBreakdown{LoanID: loan.LoanID, AsOf: time.Now().UTC(), InterestMonths: 1}
	stale.Principal.Due = domain.Money(100)
	stale.Interest.Due = domain.Money(15)
	stale.CurrentBalance = domain.Money(115)
	raw, err := json.Marshal(stale)
	suite.Require().NoError(err)

	c := seededCache{values: map[string][]byte{cache.BalanceKey(loan.LoanID): raw}}
	cfg := testConfig()
	balanceSvc := services.NewBalanceService(suite.mockLoanRepo, suite.mockPaymentRepo, suite.mockExtensionRepo, c, cfg)
	svc := services.NewPaymentService(suite.mockLoanRepo, balanceSvc, suite.mockAuth, StubActivityService{}, c, cfg)

	suite.expectReads(loan, []domain.Payment{prior}, []domain.Extension{})

	// The cached read still answers from the stale entry.
	cached, err := balanceSvc.CalculateBalance(ctx, loan.LoanID, nil)
	suite.Require().NoError(err)
	suite.Equal(int64(115), cached.CurrentBalance.Int64())

	// The mutation path must not: $115 against the true $15 balance is an
	// overpayment far past the tolerance.
	payment, _, err := svc.ProcessPayment(ctx, dto.ProcessPaymentRequest{LoanID: loan.LoanID, Amount: 115}, "staff-1")

	suite.Require().Error(err)
	suite.Nil(payment)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLoanRepo.AssertNotCalled(suite.T(), "ApplyPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
