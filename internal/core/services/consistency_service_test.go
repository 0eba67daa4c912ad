package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	portssvc "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/services"
	"github.com/pawnsoft/pawn_ledger_app/internal/core/services"
	"github.com/pawnsoft/pawn_ledger_app/internal/platform/cache"
)

type ConsistencyServiceTestSuite struct {
	suite.Suite
	mockLoanRepo     *MockLoanRepository
	mockPaymentRepo  *MockPaymentRepository
	mockCustomerRepo *MockCustomerRepository
	service          portssvc.ConsistencySvcFacade
}

func (suite *ConsistencyServiceTestSuite) SetupTest() {
	suite.mockLoanRepo = new(MockLoanRepository)
	suite.mockPaymentRepo = new(MockPaymentRepository)
	suite.mockCustomerRepo = new(MockCustomerRepository)
	suite.service = services.NewConsistencyService(suite.mockLoanRepo, suite.mockPaymentRepo, suite.mockCustomerRepo, cache.Noop{})
}

// fixture: one active loan with a live and a voided payment, one redeemed loan.
func (suite *ConsistencyServiceTestSuite) seedCustomer(stored domain.Customer) *domain.Customer {
	pawn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	active := *newTestLoan(200, 20, pawn)
	active.CustomerID = stored.CustomerID
	redeemed := *newTestLoan(100, 15, pawn.AddDate(0, -2, 0))
	redeemed.CustomerID = stored.CustomerID
	redeemed.Status = domain.StatusRedeemed

	livePayment := domain.Payment{
		PaymentID:   uuid.NewString(),
		LoanID:      active.LoanID,
		PaymentDate: pawn.AddDate(0, 0, 5),
	}
	voidedPayment := domain.Payment{
		PaymentID:   uuid.NewString(),
		LoanID:      active.LoanID,
		IsVoided:    true,
		PaymentDate: pawn.AddDate(0, 0, 6),
	}

	suite.mockCustomerRepo.On("FindCustomerByID", mock.Anything, stored.CustomerID).Return(&stored, nil)
	suite.mockLoanRepo.On("ListLoansByCustomerID", mock.Anything, stored.CustomerID).Return([]domain.Loan{active, redeemed}, nil)
	suite.mockPaymentRepo.On("FindPaymentsByLoanID", mock.Anything, active.LoanID).Return([]domain.Payment{livePayment, voidedPayment}, nil)
	suite.mockPaymentRepo.On("FindPaymentsByLoanID", mock.Anything, redeemed.LoanID).Return([]domain.Payment{}, nil)
	return &stored
}

// Expected ground truth for the fixture: 1 slot used, $200 out, three
// transactions (two loan openings plus one live payment), newest on Jan 15.
func fixtureLastTransaction() *time.Time {
	t := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	return &t
}

func (suite *ConsistencyServiceTestSuite) TestConsistentCustomerPasses() {
	ctx := context.Background()
	customer := domain.Customer{
		CustomerID:          uuid.NewString(),
		ActiveLoans:         1,
		TotalLoanValue:      domain.Money(200),
		TotalTransactions:   3,
		LastTransactionDate: fixtureLastTransaction(),
	}
	suite.seedCustomer(customer)

	report, err := suite.service.ValidateCustomer(ctx, customer.CustomerID)

	suite.Require().NoError(err)
	suite.True(report.Consistent)
	suite.Empty(report.Discrepancies)
	suite.False(report.Fixed)
}

func (suite *ConsistencyServiceTestSuite) TestDriftedCountersDetected() {
	ctx := context.Background()
	customer := domain.Customer{
		CustomerID:          uuid.NewString(),
		ActiveLoans:         2,
		TotalLoanValue:      domain.Money(300),
		TotalTransactions:   3,
		LastTransactionDate: fixtureLastTransaction(),
	}
	suite.seedCustomer(customer)

	report, err := suite.service.ValidateCustomer(ctx, customer.CustomerID)

	suite.Require().NoError(err)
	suite.False(report.Consistent)
	suite.Len(report.Discrepancies, 2)
	suite.Equal("activeLoans", report.Discrepancies[0].Field)
	suite.Equal("2", report.Discrepancies[0].Stored)
	suite.Equal("1", report.Discrepancies[0].Computed)
}

func (suite *ConsistencyServiceTestSuite) TestStaleLastTransactionDateDetected() {
	ctx := context.Background()
	stale := fixtureLastTransaction().AddDate(0, -6, 0)
	customer := domain.Customer{
		CustomerID:          uuid.NewString(),
		ActiveLoans:         1,
		TotalLoanValue:      domain.Money(200),
		TotalTransactions:   3,
		LastTransactionDate: &stale,
	}
	suite.seedCustomer(customer)

	report, err := suite.service.ValidateCustomer(ctx, customer.CustomerID)

	suite.Require().NoError(err)
	suite.False(report.Consistent)
	suite.Require().Len(report.Discrepancies, 1)
	suite.Equal("lastTransactionDate", report.Discrepancies[0].Field)
	suite.Equal("2025-07-15T00:00:00Z", report.Discrepancies[0].Stored)
	suite.Equal("2026-01-15T00:00:00Z", report.Discrepancies[0].Computed)
}

func (suite *ConsistencyServiceTestSuite) TestRepairOverwritesCounters() {
	ctx := context.Background()
	customer := domain.Customer{
		CustomerID:        uuid.NewString(),
		ActiveLoans:       0,
		TotalLoanValue:    domain.Money(999),
		TotalTransactions: 7,
	}
	// LastTransactionDate deliberately left unset; repair must backfill it.
	suite.seedCustomer(customer)

	var repaired domain.Customer
	var entry domain.AuditEntry
	suite.mockCustomerRepo.On("RepairCounters", mock.Anything, mock.AnythingOfType("domain.Customer"), mock.AnythingOfType("domain.AuditEntry")).
		Run(func(args mock.Arguments) {
			repaired = args.Get(1).(domain.Customer)
			entry = args.Get(2).(domain.AuditEntry)
		}).Return(nil).Once()

	report, err := suite.service.RepairCustomer(ctx, customer.CustomerID, "admin-1")

	suite.Require().NoError(err)
	suite.False(report.Consistent)
	suite.True(report.Fixed)
	suite.Equal(1, repaired.ActiveLoans)
	suite.Equal(int64(200), repaired.TotalLoanValue.Int64())
	suite.Equal(3, repaired.TotalTransactions)
	suite.Require().NotNil(repaired.LastTransactionDate)
	suite.True(repaired.LastTransactionDate.Equal(*fixtureLastTransaction()))
	suite.Equal(domain.ActionCountersRepaired, entry.ActionType)
	suite.Equal(customer.CustomerID, entry.CustomerID)
	suite.mockCustomerRepo.AssertExpectations(suite.T())
}

func (suite *ConsistencyServiceTestSuite) TestRepairSkipsConsistentCustomer() {
	ctx := context.Background()
	customer := domain.Customer{
		CustomerID:          uuid.NewString(),
		ActiveLoans:         1,
		TotalLoanValue:      domain.Money(200),
		TotalTransactions:   3,
		LastTransactionDate: fixtureLastTransaction(),
	}
	suite.seedCustomer(customer)

	report, err := suite.service.RepairCustomer(ctx, customer.CustomerID, "admin-1")

	suite.Require().NoError(err)
	suite.True(report.Consistent)
	suite.False(report.Fixed)
	suite.mockCustomerRepo.AssertNotCalled(suite.T(), "RepairCounters", mock.Anything, mock.Anything, mock.Anything)
}

func TestConsistencyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ConsistencyServiceTestSuite))
}
