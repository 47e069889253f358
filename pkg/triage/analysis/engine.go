package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-lawmatch-be/internal/pkg/logger"
	"ai-lawmatch-be/pkg/embedding"
	"ai-lawmatch-be/pkg/llm"
	"ai-lawmatch-be/pkg/triage"
)

// Engine turns a finished intake conversation into a structured case record.
// The strategy is chosen once, from the interviewer's final complexity
// estimate, before Analyze is called.
type Engine struct {
	providerA llm.LLMProvider
	providerB llm.LLMProvider
	judge     llm.LLMProvider
	embedder  embedding.EmbeddingProvider

	providerTimeout time.Duration
	judgeTimeout    time.Duration
	logger          logger.ILogger
}

func NewEngine(
	providerA, providerB, judge llm.LLMProvider,
	embedder embedding.EmbeddingProvider,
	providerTimeout, judgeTimeout time.Duration,
	log logger.ILogger,
) *Engine {
	if providerTimeout <= 0 {
		providerTimeout = 30 * time.Second
	}
	if judgeTimeout <= 0 {
		judgeTimeout = 45 * time.Second
	}
	return &Engine{
		providerA:       providerA,
		providerB:       providerB,
		judge:           judge,
		embedder:        embedder,
		providerTimeout: providerTimeout,
		judgeTimeout:    judgeTimeout,
		logger:          log,
	}
}

// Analyze runs the selected strategy over the transcript and attaches the
// summary embedding to the result.
func (e *Engine) Analyze(ctx context.Context, turns []triage.Turn, strategy triage.Strategy) (*triage.TriageResult, error) {
	transcript := renderTranscript(turns)

	var result *triage.TriageResult
	var err error

	switch strategy {
	case triage.StrategySimple:
		result, err = e.runSimple(ctx, transcript)
	case triage.StrategyEnsemble:
		result, err = e.runEnsemble(ctx, transcript)
	default:
		// failover doubles as the fallback for unrecognized strategies
		strategy = triage.StrategyFailover
		result, err = e.runFailover(ctx, transcript)
	}
	if err != nil {
		return nil, err
	}

	result.StrategyUsed = strategy
	e.attachEmbedding(result)
	return result, nil
}

// runSimple is a single fast extraction with no secondary verification.
func (e *Engine) runSimple(ctx context.Context, transcript string) (*triage.TriageResult, error) {
	result, err := e.extractWith(ctx, e.providerA, transcript)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", triage.ErrAllProvidersFailed, err)
	}
	return result, nil
}

// runFailover tries provider A, then provider B on any failure.
func (e *Engine) runFailover(ctx context.Context, transcript string) (*triage.TriageResult, error) {
	result, errA := e.extractWith(ctx, e.providerA, transcript)
	if errA == nil {
		return result, nil
	}

	if e.logger != nil {
		e.logger.Warn("AnalysisEngine", "Provider A failed, failing over", map[string]interface{}{
			"provider": e.providerA.Name(),
			"error":    errA.Error(),
		})
	}

	result, errB := e.extractWith(ctx, e.providerB, transcript)
	if errB == nil {
		return result, nil
	}

	return nil, fmt.Errorf("%w: A=%v, B=%v", triage.ErrAllProvidersFailed, errA, errB)
}

type extractOutcome struct {
	result *triage.TriageResult
	err    error
}

// runEnsemble fans out to both providers, compares their classifications and
// arbitrates disagreement through the judge.
func (e *Engine) runEnsemble(ctx context.Context, transcript string) (*triage.TriageResult, error) {
	chA := make(chan extractOutcome, 1)
	chB := make(chan extractOutcome, 1)

	go func() {
		res, err := e.extractWith(ctx, e.providerA, transcript)
		chA <- extractOutcome{res, err}
	}()
	go func() {
		res, err := e.extractWith(ctx, e.providerB, transcript)
		chB <- extractOutcome{res, err}
	}()

	outA := <-chA
	outB := <-chB

	switch {
	case outA.err != nil && outB.err != nil:
		return nil, fmt.Errorf("%w: A=%v, B=%v", triage.ErrAllProvidersFailed, outA.err, outB.err)
	case outA.err != nil:
		return outB.result, nil
	case outB.err != nil:
		return outA.result, nil
	}

	if classificationsAgree(outA.result, outB.result) {
		// Deterministic tie-break: provider A wins on agreement.
		return outA.result, nil
	}

	judged, err := e.runJudge(ctx, transcript, outA.result, outB.result)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("AnalysisEngine", "Judge failed, falling back to provider A", map[string]interface{}{
				"error": err.Error(),
			})
		}
		// Judge failure is not fatal for the turn.
		return outA.result, nil
	}
	return judged, nil
}

// classificationsAgree compares the critical fields with case-insensitive
// trimmed equality.
func classificationsAgree(a, b *triage.TriageResult) bool {
	return strings.EqualFold(strings.TrimSpace(a.Area), strings.TrimSpace(b.Area)) &&
		strings.EqualFold(strings.TrimSpace(a.Subarea), strings.TrimSpace(b.Subarea))
}

// extractWith runs one bounded extraction call against a provider and parses
// its output through the full fallback chain.
func (e *Engine) extractWith(ctx context.Context, provider llm.LLMProvider, transcript string) (*triage.TriageResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.providerTimeout)
	defer cancel()

	raw, err := provider.Generate(callCtx, extractionPrompt(transcript), llm.WithTemperature(0.2))
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s: %v", triage.ErrProviderTimeout, provider.Name(), err)
		}
		return nil, fmt.Errorf("%w: %s: %v", triage.ErrProvider, provider.Name(), err)
	}

	return ParseResult(raw, transcript)
}

// attachEmbedding embeds the summary through the cascade. Failure is logged
// but does not fail the triage; ranking will fail fast later and can be
// retried once the provider recovers.
func (e *Engine) attachEmbedding(result *triage.TriageResult) {
	if e.embedder == nil || result.Summary == "" {
		return
	}
	res, err := e.embedder.Generate(result.Summary, "RETRIEVAL_DOCUMENT")
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("AnalysisEngine", "Summary embedding failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return
	}
	result.SummaryEmbedding = res.Embedding.Values
}
