package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-lawmatch-be/internal/repository/contract"
	"ai-lawmatch-be/pkg/triage"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	conversationKeyFmt  = "conversation:%s"
	orchestrationKeyFmt = "orchestration:%s"
)

// RedisStateStore keeps triage state in Redis so any instance can serve the
// next turn of a conversation.
type RedisStateStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStateStore(rdb *redis.Client, ttl time.Duration) contract.StateStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStateStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStateStore) SaveConversation(ctx context.Context, caseId uuid.UUID, state *triage.ConversationState) error {
	return s.set(ctx, fmt.Sprintf(conversationKeyFmt, caseId), state)
}

func (s *RedisStateStore) GetConversation(ctx context.Context, caseId uuid.UUID) (*triage.ConversationState, error) {
	var state triage.ConversationState
	found, err := s.get(ctx, fmt.Sprintf(conversationKeyFmt, caseId), &state)
	if err != nil || !found {
		return nil, err
	}
	return &state, nil
}

func (s *RedisStateStore) SaveOrchestration(ctx context.Context, caseId uuid.UUID, state *triage.OrchestrationState) error {
	return s.set(ctx, fmt.Sprintf(orchestrationKeyFmt, caseId), state)
}

func (s *RedisStateStore) GetOrchestration(ctx context.Context, caseId uuid.UUID) (*triage.OrchestrationState, error) {
	var state triage.OrchestrationState
	found, err := s.get(ctx, fmt.Sprintf(orchestrationKeyFmt, caseId), &state)
	if err != nil || !found {
		return nil, err
	}
	return &state, nil
}

func (s *RedisStateStore) Delete(ctx context.Context, caseId uuid.UUID) error {
	return s.rdb.Del(ctx,
		fmt.Sprintf(conversationKeyFmt, caseId),
		fmt.Sprintf(orchestrationKeyFmt, caseId),
	).Err()
}

func (s *RedisStateStore) set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal state for %s: %w", key, err)
	}
	return s.rdb.Set(ctx, key, data, s.ttl).Err()
}

func (s *RedisStateStore) get(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal state for %s: %w", key, err)
	}
	return true, nil
}
