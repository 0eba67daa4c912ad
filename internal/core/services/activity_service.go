package services

import (
	"context"

	portssvc "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/services"
	"github.com/pawnsoft/pawn_ledger_app/internal/utils"
)

// activityService publishes business events to PostHog. When no API key is
// configured every call is a cheap no-op.
type activityService struct {
	BaseService
	client *utils.PosthogClientWrapper
}

// NewActivityService creates a new ActivityService.
func NewActivityService(client *utils.PosthogClientWrapper) portssvc.ActivitySvcFacade {
	return &activityService{client: client}
}

var _ portssvc.ActivitySvcFacade = (*activityService)(nil)

// Record sends one event. Best-effort: failures are the wrapper's problem and
// never surface to the ledger operation that produced the event.
func (s *activityService) Record(ctx context.Context, userID string, activityType string, description string, targetIDs []string, metadata map[string]any) {
	if s.client == nil || !s.client.IsInitialized() {
		return
	}
	properties := map[string]any{
		"description": description,
		"target_ids":  targetIDs,
	}
	for k, v := range metadata {
		properties[k] = v
	}
	s.client.Enqueue(userID, activityType, properties)
}

// Close flushes pending events on shutdown.
func (s *activityService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}
