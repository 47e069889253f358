package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-lawmatch-be/pkg/embedding"
	"ai-lawmatch-be/pkg/llm"
	"ai-lawmatch-be/pkg/triage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name     string
	response string
	err      error
	calls    int
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return s.Generate(ctx, "", opts...)
}

func (s *stubProvider) Name() string { return s.name }

type stubEmbedder struct {
	err   error
	calls int
}

func (s *stubEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

const laborResult = `{"area": "labor", "subarea": "wrongful termination", "urgency_hours": 48, "summary": "Client dismissed without cause.", "keywords": ["dismissal"], "sentiment": "negative", "entities": ["ACME Corp"], "complexity_factors": ["no written contract"]}`

const taxResult = `{"area": "tax", "subarea": "audit defense", "urgency_hours": 72, "summary": "Client under audit.", "sentiment": "neutral"}`

const judgeResult = `{"area": "labor", "subarea": "collective dismissal", "urgency_hours": 24, "summary": "Group dismissal dispute.", "sentiment": "negative", "justification": "candidate A matched the facts but missed the collective aspect"}`

func sampleTurns() []triage.Turn {
	return []triage.Turn{
		{Role: triage.RoleAssistant, Text: "What happened?"},
		{Role: triage.RoleUser, Text: "I was fired without cause from ACME Corp."},
	}
}

func newEngine(a, b, judge llm.LLMProvider, embedder embedding.EmbeddingProvider) *Engine {
	return NewEngine(a, b, judge, embedder, time.Second, time.Second, nil)
}

func TestSimpleStrategySingleCall(t *testing.T) {
	a := &stubProvider{name: "a", response: laborResult}
	b := &stubProvider{name: "b", response: taxResult}

	engine := newEngine(a, b, &stubProvider{name: "judge"}, &stubEmbedder{})
	result, err := engine.Analyze(context.Background(), sampleTurns(), triage.StrategySimple)
	require.NoError(t, err)

	assert.Equal(t, "labor", result.Area)
	assert.Equal(t, triage.StrategySimple, result.StrategyUsed)
	assert.Equal(t, triage.SourceStrict, result.Source)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 0, b.calls, "simple strategy must not verify with provider B")
	assert.NotEmpty(t, result.SummaryEmbedding)
}

func TestFailoverReturnsProviderBUnchanged(t *testing.T) {
	a := &stubProvider{name: "a", err: errors.New("quota")}
	b := &stubProvider{name: "b", response: taxResult}

	engine := newEngine(a, b, &stubProvider{name: "judge"}, &stubEmbedder{})
	result, err := engine.Analyze(context.Background(), sampleTurns(), triage.StrategyFailover)
	require.NoError(t, err)

	assert.Equal(t, "tax", result.Area)
	assert.Equal(t, "audit defense", result.Subarea)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestFailoverBothFail(t *testing.T) {
	a := &stubProvider{name: "a", err: errors.New("quota")}
	b := &stubProvider{name: "b", err: errors.New("down")}

	engine := newEngine(a, b, &stubProvider{name: "judge"}, &stubEmbedder{})
	_, err := engine.Analyze(context.Background(), sampleTurns(), triage.StrategyFailover)
	assert.ErrorIs(t, err, triage.ErrAllProvidersFailed)
}

func TestUnrecognizedStrategyFallsBackToFailover(t *testing.T) {
	a := &stubProvider{name: "a", response: laborResult}
	b := &stubProvider{name: "b", response: taxResult}

	engine := newEngine(a, b, &stubProvider{name: "judge"}, &stubEmbedder{})
	result, err := engine.Analyze(context.Background(), sampleTurns(), triage.Strategy("wat"))
	require.NoError(t, err)
	assert.Equal(t, triage.StrategyFailover, result.StrategyUsed)
}

func TestEnsembleAgreementSkipsJudge(t *testing.T) {
	// Same classification, different casing/whitespace: still agreement.
	a := &stubProvider{name: "a", response: laborResult}
	b := &stubProvider{name: "b", response: `{"area": " LABOR ", "subarea": "Wrongful Termination", "urgency_hours": 96, "summary": "Different summary."}`}
	judge := &stubProvider{name: "judge", response: judgeResult}

	engine := newEngine(a, b, judge, &stubEmbedder{})
	result, err := engine.Analyze(context.Background(), sampleTurns(), triage.StrategyEnsemble)
	require.NoError(t, err)

	assert.Equal(t, 0, judge.calls, "judge must not run on agreement")
	// Provider A's result wins the tie-break
	assert.Equal(t, "Client dismissed without cause.", result.Summary)
	assert.Equal(t, 48, result.UrgencyHours)
}

func TestEnsembleDisagreementInvokesJudgeOnce(t *testing.T) {
	a := &stubProvider{name: "a", response: laborResult}
	b := &stubProvider{name: "b", response: taxResult}
	judge := &stubProvider{name: "judge", response: judgeResult}

	engine := newEngine(a, b, judge, &stubEmbedder{})
	result, err := engine.Analyze(context.Background(), sampleTurns(), triage.StrategyEnsemble)
	require.NoError(t, err)

	assert.Equal(t, 1, judge.calls)
	// Judge output is authoritative, verbatim
	assert.Equal(t, "collective dismissal", result.Subarea)
	assert.Equal(t, 24, result.UrgencyHours)
	assert.Equal(t, "candidate A matched the facts but missed the collective aspect", result.JudgedClassification)
}

func TestEnsembleSingleSurvivorSkipsJudge(t *testing.T) {
	a := &stubProvider{name: "a", err: errors.New("timeout")}
	b := &stubProvider{name: "b", response: taxResult}
	judge := &stubProvider{name: "judge", response: judgeResult}

	engine := newEngine(a, b, judge, &stubEmbedder{})
	result, err := engine.Analyze(context.Background(), sampleTurns(), triage.StrategyEnsemble)
	require.NoError(t, err)

	assert.Equal(t, 0, judge.calls)
	assert.Equal(t, "tax", result.Area)
}

func TestEnsembleBothFail(t *testing.T) {
	a := &stubProvider{name: "a", err: errors.New("timeout")}
	b := &stubProvider{name: "b", err: errors.New("down")}

	engine := newEngine(a, b, &stubProvider{name: "judge"}, &stubEmbedder{})
	_, err := engine.Analyze(context.Background(), sampleTurns(), triage.StrategyEnsemble)
	assert.ErrorIs(t, err, triage.ErrAllProvidersFailed)
}

func TestEnsembleJudgeFailureFallsBackToProviderA(t *testing.T) {
	a := &stubProvider{name: "a", response: laborResult}
	b := &stubProvider{name: "b", response: taxResult}
	judge := &stubProvider{name: "judge", err: errors.New("judge overloaded")}

	engine := newEngine(a, b, judge, &stubEmbedder{})
	result, err := engine.Analyze(context.Background(), sampleTurns(), triage.StrategyEnsemble)
	require.NoError(t, err, "judge failure must not fail the turn")

	assert.Equal(t, 1, judge.calls)
	assert.Equal(t, "labor", result.Area)
	assert.Equal(t, "wrongful termination", result.Subarea)
}

func TestEmbeddingFailureDoesNotFailTriage(t *testing.T) {
	a := &stubProvider{name: "a", response: laborResult}

	engine := newEngine(a, &stubProvider{name: "b"}, &stubProvider{name: "judge"}, &stubEmbedder{err: errors.New("all embedders down")})
	result, err := engine.Analyze(context.Background(), sampleTurns(), triage.StrategySimple)
	require.NoError(t, err)
	assert.Empty(t, result.SummaryEmbedding)
}
