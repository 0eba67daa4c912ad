package services

import (
	portsrepo "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/services"
	"github.com/pawnsoft/pawn_ledger_app/internal/platform/cache"
	"github.com/pawnsoft/pawn_ledger_app/internal/platform/config"
	"github.com/pawnsoft/pawn_ledger_app/internal/utils"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, c cache.Cache, posthogClient *utils.PosthogClientWrapper) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Auth and activity first since the money services depend on them.
	container.Auth = NewAuthService(repos.UserRepo)
	container.Activity = NewActivityService(posthogClient)

	// Balance is the read side everything else validates against.
	container.Balance = NewBalanceService(repos.LoanRepo, repos.PaymentRepo, repos.ExtensionRepo, c, cfg)

	container.Payment = NewPaymentService(repos.LoanRepo, container.Balance, container.Auth, container.Activity, c, cfg)
	container.Extension = NewExtensionService(repos.LoanRepo, repos.ExtensionRepo, container.Activity, c, cfg)
	container.Reversal = NewReversalService(repos.LoanRepo, repos.PaymentRepo, container.Extension, container.Auth, container.Activity, c, cfg)
	container.Loan = NewLoanService(repos.LoanRepo, repos.CustomerRepo, repos.AuditRepo, container.Activity, c, cfg)
	container.Audit = NewAuditService(repos.LoanRepo, repos.AuditRepo, container.Activity)
	container.Consistency = NewConsistencyService(repos.LoanRepo, repos.PaymentRepo, repos.CustomerRepo, c)

	return container
}

// Compile-time interface checks.
var (
	_ portssvc.BalanceSvcFacade     = (*balanceService)(nil)
	_ portssvc.PaymentSvcFacade     = (*paymentService)(nil)
	_ portssvc.ExtensionSvcFacade   = (*extensionService)(nil)
	_ portssvc.ReversalSvcFacade    = (*reversalService)(nil)
	_ portssvc.LoanSvcFacade        = (*loanService)(nil)
	_ portssvc.AuditSvcFacade       = (*auditService)(nil)
	_ portssvc.ConsistencySvcFacade = (*consistencyService)(nil)
)
