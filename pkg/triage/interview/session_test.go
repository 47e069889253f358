package interview

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-lawmatch-be/pkg/llm"
	"ai-lawmatch-be/pkg/triage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	responses []string
	err       error
	calls     int
}

func (s *scriptedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	idx := s.calls - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

func (s *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (s *scriptedProvider) Name() string { return "scripted" }

func TestStartSeedsGreeting(t *testing.T) {
	iv := NewInterviewer(&scriptedProvider{}, time.Second, nil)
	state, first := iv.Start(uuid.New())

	assert.Equal(t, GreetingMessage, first)
	require.Len(t, state.Turns, 1)
	assert.Equal(t, triage.RoleAssistant, state.Turns[0].Role)
	assert.False(t, state.IsComplete)
	assert.Equal(t, triage.ComplexityLow, state.ComplexityLevel)
}

func TestContinueUpdatesEstimate(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`<analysis>{"estimated_area": "labor", "estimated_subarea": "dismissal", "complexity": "high", "confidence": 0.7, "strategy_recommendation": "ensemble", "reasoning": "multi-party"}</analysis>When did this happen?`,
	}}
	iv := NewInterviewer(provider, time.Second, nil)
	state, _ := iv.Start(uuid.New())

	reply, complete, err := iv.Continue(context.Background(), state, "I was fired along with 5 coworkers")
	require.NoError(t, err)
	assert.False(t, complete)
	assert.Equal(t, "When did this happen?", reply)
	assert.Equal(t, triage.ComplexityHigh, state.ComplexityLevel)
	assert.Equal(t, triage.StrategyEnsemble, state.RecommendedStrategy)
	assert.InDelta(t, 0.7, state.ConfidenceScore, 1e-9)
	assert.Equal(t, "labor", state.CollectedData["estimated_area"])

	// user turn + assistant turn appended
	require.Len(t, state.Turns, 3)
	assert.NotContains(t, state.Turns[2].Text, "<analysis>")
	require.NotNil(t, state.Turns[2].InternalAnalysis)
}

func TestContinueMalformedBlockKeepsPreviousEstimate(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`<analysis>{"complexity": "medium", "confidence": 0.5}</analysis>Tell me more.`,
		`no block this time, just a question?`,
	}}
	iv := NewInterviewer(provider, time.Second, nil)
	state, _ := iv.Start(uuid.New())

	_, _, err := iv.Continue(context.Background(), state, "first message")
	require.NoError(t, err)
	require.Equal(t, triage.ComplexityMedium, state.ComplexityLevel)

	_, _, err = iv.Continue(context.Background(), state, "second message")
	require.NoError(t, err)
	assert.Equal(t, triage.ComplexityMedium, state.ComplexityLevel)
	assert.InDelta(t, 0.5, state.ConfidenceScore, 1e-9)
}

func TestContinueProviderFailureReturnsApology(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("quota exceeded")}
	iv := NewInterviewer(provider, time.Second, nil)
	state, _ := iv.Start(uuid.New())
	turnsBefore := len(state.Turns)

	reply, complete, err := iv.Continue(context.Background(), state, "hello?")
	assert.Equal(t, ApologyMessage, reply)
	assert.False(t, complete)
	assert.ErrorIs(t, err, triage.ErrProvider)

	// State untouched so the turn can be retried
	assert.Len(t, state.Turns, turnsBefore)
	assert.False(t, state.IsComplete)
}

func TestContinueDetectsCompletionSentinel(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`<analysis>{"complexity": "low", "confidence": 0.9, "strategy_recommendation": "simple"}</analysis>Thank you, we have everything we need. ` + CompletionSentinel,
	}}
	iv := NewInterviewer(provider, time.Second, nil)
	state, _ := iv.Start(uuid.New())

	reply, complete, err := iv.Continue(context.Background(), state, "that is all")
	require.NoError(t, err)
	assert.True(t, complete)
	assert.True(t, state.IsComplete)
	assert.Equal(t, "Thank you, we have everything we need.", reply)
	assert.NotContains(t, reply, CompletionSentinel)
	assert.Equal(t, triage.StrategySimple, state.RecommendedStrategy)
}

func TestContinueOnCompletedSessionRejected(t *testing.T) {
	iv := NewInterviewer(&scriptedProvider{}, time.Second, nil)
	state, _ := iv.Start(uuid.New())
	state.IsComplete = true

	_, _, err := iv.Continue(context.Background(), state, "one more thing")
	assert.ErrorIs(t, err, triage.ErrInvalidState)
}

func TestForceCompleteUsesLastKnownComplexity(t *testing.T) {
	iv := NewInterviewer(&scriptedProvider{}, time.Second, nil)
	state, _ := iv.Start(uuid.New())
	state.ComplexityLevel = triage.ComplexityHigh
	state.RecommendedStrategy = ""

	strategy := iv.ForceComplete(state)
	assert.Equal(t, triage.StrategyEnsemble, strategy)
	assert.True(t, state.IsComplete)
}
