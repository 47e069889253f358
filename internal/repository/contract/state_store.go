package contract

import (
	"context"

	"ai-lawmatch-be/pkg/triage"

	"github.com/google/uuid"
)

// StateStore holds per-case conversation and orchestration state as JSON
// blobs with a TTL. Missing keys return (nil, nil); callers decide whether
// that is an error.
type StateStore interface {
	SaveConversation(ctx context.Context, caseId uuid.UUID, state *triage.ConversationState) error
	GetConversation(ctx context.Context, caseId uuid.UUID) (*triage.ConversationState, error)
	SaveOrchestration(ctx context.Context, caseId uuid.UUID, state *triage.OrchestrationState) error
	GetOrchestration(ctx context.Context, caseId uuid.UUID) (*triage.OrchestrationState, error)
	Delete(ctx context.Context, caseId uuid.UUID) error
}
