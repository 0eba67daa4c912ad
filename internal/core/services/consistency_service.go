package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	portsrepo "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/services"
	"github.com/pawnsoft/pawn_ledger_app/internal/dto"
	"github.com/pawnsoft/pawn_ledger_app/internal/platform/cache"
)

// consistencyService reconciles the denormalized customer counters against a
// deterministic recomputation over the customer's loans and payments.
type consistencyService struct {
	BaseService
	loanRepo     portsrepo.LoanReader
	paymentRepo  portsrepo.PaymentReader
	customerRepo portsrepo.CustomerRepositoryFacade
	cache        cache.Cache
}

// NewConsistencyService creates a new ConsistencyService.
func NewConsistencyService(loanRepo portsrepo.LoanReader, paymentRepo portsrepo.PaymentReader, customerRepo portsrepo.CustomerRepositoryFacade, c cache.Cache) portssvc.ConsistencySvcFacade {
	return &consistencyService{
		loanRepo:     loanRepo,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		cache:        c,
	}
}

var _ portssvc.ConsistencySvcFacade = (*consistencyService)(nil)

// computedCounters is the ground truth derived from the customer's rows.
type computedCounters struct {
	activeLoans       int
	totalLoanValue    domain.Money
	totalTransactions int
	lastTransaction   *time.Time
}

func (s *consistencyService) recompute(ctx context.Context, customerID string) (computedCounters, error) {
	var c computedCounters

	loans, err := s.loanRepo.ListLoansByCustomerID(ctx, customerID)
	if err != nil {
		return c, err
	}

	for _, loan := range loans {
		if loan.Status.UsesSlot() {
			c.activeLoans++
			c.totalLoanValue = c.totalLoanValue.Add(loan.LoanAmount)
		}
		// Opening a loan counts as a transaction, as does each live payment.
		c.totalTransactions++
		c.noteTransaction(loan.PawnDate)

		payments, err := s.paymentRepo.FindPaymentsByLoanID(ctx, loan.LoanID)
		if err != nil {
			return c, err
		}
		for _, p := range payments {
			if p.IsVoided {
				continue
			}
			c.totalTransactions++
			c.noteTransaction(p.PaymentDate)
		}
	}

	return c, nil
}

func (c *computedCounters) noteTransaction(at time.Time) {
	if c.lastTransaction == nil || at.After(*c.lastTransaction) {
		t := at
		c.lastTransaction = &t
	}
}

// ValidateCustomer reports discrepancies without fixing anything.
func (s *consistencyService) ValidateCustomer(ctx context.Context, customerID string) (*dto.ConsistencyReport, error) {
	customer, err := s.customerRepo.FindCustomerByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	computed, err := s.recompute(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return buildReport(customer, computed), nil
}

// RepairCustomer overwrites drifted counters with the recomputed values.
func (s *consistencyService) RepairCustomer(ctx context.Context, customerID string, staffUserID string) (*dto.ConsistencyReport, error) {
	var report *dto.ConsistencyReport

	err := s.withConflictRetry(ctx, func() error {
		customer, err := s.customerRepo.FindCustomerByID(ctx, customerID)
		if err != nil {
			return err
		}
		computed, err := s.recompute(ctx, customerID)
		if err != nil {
			return err
		}

		report = buildReport(customer, computed)
		if report.Consistent {
			return nil
		}

		now := time.Now().UTC()
		entry := domain.AuditEntry{
			EntryID:     uuid.NewString(),
			CustomerID:  customer.CustomerID,
			ActionType:  domain.ActionCountersRepaired,
			StaffUserID: staffUserID,
			Summary: fmt.Sprintf("Counters repaired: %d field(s) corrected",
				len(report.Discrepancies)),
			PreviousValue: fmt.Sprintf("activeLoans=%d totalLoanValue=%s totalTransactions=%d",
				customer.ActiveLoans, customer.TotalLoanValue, customer.TotalTransactions),
			NewValue: fmt.Sprintf("activeLoans=%d totalLoanValue=%s totalTransactions=%d",
				computed.activeLoans, computed.totalLoanValue, computed.totalTransactions),
			CreatedAt: now,
		}

		customer.ActiveLoans = computed.activeLoans
		customer.TotalLoanValue = computed.totalLoanValue
		customer.TotalTransactions = computed.totalTransactions
		customer.LastTransactionDate = computed.lastTransaction
		customer.LastUpdatedAt = now
		customer.LastUpdatedBy = staffUserID

		if err := s.customerRepo.RepairCounters(ctx, *customer, entry); err != nil {
			return err
		}

		report.Fixed = true
		if err := s.cache.DeletePattern(ctx, cache.CustomerPattern(customerID)); err != nil {
			s.LogError(ctx, err, "failed to invalidate customer cache")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func buildReport(customer *domain.Customer, computed computedCounters) *dto.ConsistencyReport {
	report := &dto.ConsistencyReport{CustomerID: customer.CustomerID}

	if customer.ActiveLoans != computed.activeLoans {
		report.Discrepancies = append(report.Discrepancies, dto.FieldDiscrepancy{
			Field:    "activeLoans",
			Stored:   strconv.Itoa(customer.ActiveLoans),
			Computed: strconv.Itoa(computed.activeLoans),
		})
	}
	if customer.TotalLoanValue != computed.totalLoanValue {
		report.Discrepancies = append(report.Discrepancies, dto.FieldDiscrepancy{
			Field:    "totalLoanValue",
			Stored:   customer.TotalLoanValue.String(),
			Computed: computed.totalLoanValue.String(),
		})
	}
	if customer.TotalTransactions != computed.totalTransactions {
		report.Discrepancies = append(report.Discrepancies, dto.FieldDiscrepancy{
			Field:    "totalTransactions",
			Stored:   strconv.Itoa(customer.TotalTransactions),
			Computed: strconv.Itoa(computed.totalTransactions),
		})
	}
	if !sameTransactionDate(customer.LastTransactionDate, computed.lastTransaction) {
		report.Discrepancies = append(report.Discrepancies, dto.FieldDiscrepancy{
			Field:    "lastTransactionDate",
			Stored:   formatTransactionDate(customer.LastTransactionDate),
			Computed: formatTransactionDate(computed.lastTransaction),
		})
	}

	report.Consistent = len(report.Discrepancies) == 0
	return report
}

func sameTransactionDate(stored, computed *time.Time) bool {
	if stored == nil || computed == nil {
		return stored == nil && computed == nil
	}
	return stored.Equal(*computed)
}

func formatTransactionDate(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.UTC().Format(time.RFC3339)
}
