package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
)

// --- Mock LoanRepository ---
type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListLoansByCustomerID(ctx context.Context, customerID string) ([]domain.Loan, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) CreateLoan(ctx context.Context, loan domain.Loan, entry domain.AuditEntry, delta domain.CounterDelta) error {
	args := m.Called(ctx, loan, entry, delta)
	return args.Error(0)
}

func (m *MockLoanRepository) ApplyPayment(ctx context.Context, loan domain.Loan, payment domain.Payment, entries []domain.AuditEntry, delta domain.CounterDelta) error {
	args := m.Called(ctx, loan, payment, entries, delta)
	return args.Error(0)
}

func (m *MockLoanRepository) ApplyExtension(ctx context.Context, loan domain.Loan, extension domain.Extension, entry domain.AuditEntry) error {
	args := m.Called(ctx, loan, extension, entry)
	return args.Error(0)
}

func (m *MockLoanRepository) CancelExtension(ctx context.Context, loan domain.Loan, extension domain.Extension, entry domain.AuditEntry) error {
	args := m.Called(ctx, loan, extension, entry)
	return args.Error(0)
}

func (m *MockLoanRepository) VoidPayment(ctx context.Context, loan domain.Loan, payment domain.Payment, entry domain.AuditEntry, delta domain.CounterDelta) error {
	args := m.Called(ctx, loan, payment, entry, delta)
	return args.Error(0)
}

func (m *MockLoanRepository) UpdateLoan(ctx context.Context, loan domain.Loan, entry *domain.AuditEntry, delta domain.CounterDelta) error {
	args := m.Called(ctx, loan, entry, delta)
	return args.Error(0)
}

func (m *MockLoanRepository) ApplyNotesMigration(ctx context.Context, loan domain.Loan, entries []domain.AuditEntry) error {
	args := m.Called(ctx, loan, entries)
	return args.Error(0)
}

func (m *MockLoanRepository) CountSameDayReversals(ctx context.Context, loanID string, day time.Time) (int, error) {
	args := m.Called(ctx, loanID, day)
	return args.Int(0), args.Error(1)
}

func (m *MockLoanRepository) ListReversalsOnDay(ctx context.Context, day time.Time) ([]domain.ReversalRecord, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReversalRecord), args.Error(1)
}

// --- Mock PaymentRepository ---
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindPaymentsByLoanID(ctx context.Context, loanID string) ([]domain.Payment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

// --- Mock ExtensionRepository ---
type MockExtensionRepository struct {
	mock.Mock
}

func (m *MockExtensionRepository) FindExtensionByID(ctx context.Context, extensionID string) (*domain.Extension, error) {
	args := m.Called(ctx, extensionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Extension), args.Error(1)
}

func (m *MockExtensionRepository) FindExtensionsByLoanID(ctx context.Context, loanID string) ([]domain.Extension, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Extension), args.Error(1)
}

// --- Mock CustomerRepository ---
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) RepairCounters(ctx context.Context, customer domain.Customer, entry domain.AuditEntry) error {
	args := m.Called(ctx, customer, entry)
	return args.Error(0)
}

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- Mock AuditRepository ---
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) FindEntriesByLoanID(ctx context.Context, loanID string) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditEntry), args.Error(1)
}

func (m *MockAuditRepository) CountEntriesByLoanID(ctx context.Context, loanID string) (int, error) {
	args := m.Called(ctx, loanID)
	return args.Int(0), args.Error(1)
}

// --- Mock AuthVerifier ---
type MockAuthVerifier struct {
	mock.Mock
}

func (m *MockAuthVerifier) RequireAdmin(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAuthVerifier) VerifyAdminPin(ctx context.Context, userID string, pin string) error {
	args := m.Called(ctx, userID, pin)
	return args.Error(0)
}

// --- Stub ActivityService ---
// Activity is fire-and-forget; tests only need it to not be nil.
type StubActivityService struct{}

func (StubActivityService) Record(ctx context.Context, userID string, activityType string, description string, targetIDs []string, metadata map[string]any) {
}

func (StubActivityService) Close() {}
