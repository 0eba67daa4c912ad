package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pawnsoft/pawn_ledger_app/internal/apperrors"
	"github.com/pawnsoft/pawn_ledger_app/internal/middleware"
)

// maxConflictRetries bounds the optimistic-concurrency retry loop. The loan
// row lock makes writes serial per loan, so a handful of attempts is enough
// even under contention on the same ticket.
const maxConflictRetries = 3

// BaseService provides common functionality for all services
type BaseService struct{}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// withConflictRetry runs op, re-invoking it when the repository reports a
// version conflict. op must re-read its entities on every attempt so each try
// computes against fresh state.
func (s *BaseService) withConflictRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
			}
			s.LogDebug(ctx, "retrying after version conflict", slog.Int("attempt", attempt+1))
		}
		err = op()
		if err == nil || !errors.Is(err, apperrors.ErrConflict) {
			return err
		}
	}
	return err
}
