package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	loanRepo := newPgxLoanRepository(dbPool)
	paymentRepo := newPgxPaymentRepository(dbPool)
	extensionRepo := newPgxExtensionRepository(dbPool)
	customerRepo := newPgxCustomerRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)
	auditRepo := newPgxAuditRepository(dbPool)

	return portsrepo.RepositoryProvider{
		LoanRepo:      loanRepo,
		PaymentRepo:   paymentRepo,
		ExtensionRepo: extensionRepo,
		CustomerRepo:  customerRepo,
		UserRepo:      userRepo,
		AuditRepo:     auditRepo,
	}
}
