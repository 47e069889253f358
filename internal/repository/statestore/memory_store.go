package statestore

import (
	"context"
	"fmt"
	"time"

	"ai-lawmatch-be/internal/repository/contract"
	"ai-lawmatch-be/pkg/triage"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// MemoryStateStore is a single-instance fallback used in tests and local
// development when Redis is not available.
type MemoryStateStore struct {
	cache *cache.Cache
}

func NewMemoryStateStore(ttl time.Duration) contract.StateStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryStateStore{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (s *MemoryStateStore) SaveConversation(ctx context.Context, caseId uuid.UUID, state *triage.ConversationState) error {
	s.cache.SetDefault(fmt.Sprintf(conversationKeyFmt, caseId), state)
	return nil
}

func (s *MemoryStateStore) GetConversation(ctx context.Context, caseId uuid.UUID) (*triage.ConversationState, error) {
	v, ok := s.cache.Get(fmt.Sprintf(conversationKeyFmt, caseId))
	if !ok {
		return nil, nil
	}
	return v.(*triage.ConversationState), nil
}

func (s *MemoryStateStore) SaveOrchestration(ctx context.Context, caseId uuid.UUID, state *triage.OrchestrationState) error {
	s.cache.SetDefault(fmt.Sprintf(orchestrationKeyFmt, caseId), state)
	return nil
}

func (s *MemoryStateStore) GetOrchestration(ctx context.Context, caseId uuid.UUID) (*triage.OrchestrationState, error) {
	v, ok := s.cache.Get(fmt.Sprintf(orchestrationKeyFmt, caseId))
	if !ok {
		return nil, nil
	}
	return v.(*triage.OrchestrationState), nil
}

func (s *MemoryStateStore) Delete(ctx context.Context, caseId uuid.UUID) error {
	s.cache.Delete(fmt.Sprintf(conversationKeyFmt, caseId))
	s.cache.Delete(fmt.Sprintf(orchestrationKeyFmt, caseId))
	return nil
}
