package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is the key-value store the ledger uses for derived reads (balance
// breakdowns, customer stats). Mutating operations invalidate by pattern
// synchronously before returning; cache failures are logged, never allowed to
// fail a ledger mutation.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePattern removes every key matching a glob pattern, e.g.
	// "stats:customer:*".
	DeletePattern(ctx context.Context, pattern string) error
}

func BalanceKey(loanID string) string { return fmt.Sprintf("balance:loan:%s", loanID) }

func CustomerStatsKey(customerID string) string { return fmt.Sprintf("stats:customer:%s", customerID) }

// LoanPattern matches every cached derivation of a single loan.
func LoanPattern(loanID string) string { return fmt.Sprintf("balance:loan:%s*", loanID) }

// CustomerPattern matches every cached derivation of a single customer.
func CustomerPattern(customerID string) string { return fmt.Sprintf("stats:customer:%s*", customerID) }

// Noop is a Cache that stores nothing. It stands in when no redis is
// configured and in service tests.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string) ([]byte, error) { return nil, ErrMiss }

func (Noop) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error { return nil }

func (Noop) DeletePattern(ctx context.Context, pattern string) error { return nil }
