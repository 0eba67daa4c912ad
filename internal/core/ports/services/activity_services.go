package services

import "context"

// ActivitySvcFacade publishes business events to the analytics sink.
// Delivery is best-effort and must never fail the originating operation.
type ActivitySvcFacade interface {
	Record(ctx context.Context, userID string, activityType string, description string, targetIDs []string, metadata map[string]any)
	Close()
}
