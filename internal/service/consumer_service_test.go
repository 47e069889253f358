package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"ai-lawmatch-be/internal/dto"
	"ai-lawmatch-be/pkg/ranking"
	"ai-lawmatch-be/pkg/triage"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRanker struct {
	err   error
	calls int
}

func (s *stubRanker) RankCase(ctx context.Context, req *dto.RankRequest) (*dto.RankResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &dto.RankResponse{CaseId: req.CaseId}, nil
}

func (s *stubRanker) GetMatches(ctx context.Context, caseId uuid.UUID) (*dto.RankResponse, error) {
	return &dto.RankResponse{CaseId: caseId}, nil
}

func (s *stubRanker) ListPresets() *dto.ListPresetsResponse {
	return &dto.ListPresetsResponse{}
}

func rankMessage(t *testing.T, caseId uuid.UUID) *message.Message {
	t.Helper()
	payload, err := json.Marshal(dto.PublishRankCaseMessage{CaseId: caseId})
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func assertAcked(t *testing.T, msg *message.Message) {
	t.Helper()
	select {
	case <-msg.Acked():
	case <-msg.Nacked():
		t.Fatal("message was nacked, expected ack")
	default:
		t.Fatal("message neither acked nor nacked")
	}
}

func assertNacked(t *testing.T, msg *message.Message) {
	t.Helper()
	select {
	case <-msg.Nacked():
	case <-msg.Acked():
		t.Fatal("message was acked, expected nack")
	default:
		t.Fatal("message neither acked nor nacked")
	}
}

func TestProcessMessageAcksSuccess(t *testing.T) {
	ranker := &stubRanker{}
	cs := &consumerService{topicName: "RANK_CASE", rankingService: ranker}

	msg := rankMessage(t, uuid.New())
	cs.processMessage(context.Background(), msg)

	assertAcked(t, msg)
	assert.Equal(t, 1, ranker.calls)
}

func TestProcessMessageAcksMalformedPayload(t *testing.T) {
	ranker := &stubRanker{}
	cs := &consumerService{topicName: "RANK_CASE", rankingService: ranker}

	msg := message.NewMessage(watermill.NewUUID(), []byte("not json"))
	cs.processMessage(context.Background(), msg)

	assertAcked(t, msg)
	assert.Equal(t, 0, ranker.calls)
}

func TestProcessMessageDropsPermanentFailures(t *testing.T) {
	// A case without an embedding or an unknown case cannot rank on any
	// redelivery; nacking would redeliver in a hot loop.
	cases := []struct {
		name string
		err  error
	}{
		{"no usable embedding", fmt.Errorf("rank: %w", ranking.ErrInvalidCase)},
		{"unknown case", fmt.Errorf("case lookup: %w", triage.ErrSessionNotFound)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ranker := &stubRanker{err: tc.err}
			cs := &consumerService{topicName: "RANK_CASE", rankingService: ranker}

			msg := rankMessage(t, uuid.New())
			cs.processMessage(context.Background(), msg)

			assertAcked(t, msg)
			assert.Equal(t, 1, ranker.calls)
		})
	}
}

func TestProcessMessageNacksTransientFailures(t *testing.T) {
	ranker := &stubRanker{err: errors.New("db connection reset")}
	cs := &consumerService{topicName: "RANK_CASE", rankingService: ranker}

	msg := rankMessage(t, uuid.New())
	cs.processMessage(context.Background(), msg)

	assertNacked(t, msg)
}
