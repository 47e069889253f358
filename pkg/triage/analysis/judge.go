package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-lawmatch-be/pkg/llm"
	"ai-lawmatch-be/pkg/triage"
)

const judgePromptV1 = `You are an arbitration judge for legal case classification. Two independent classifiers disagree about the case below. Review the conversation and both candidate classifications, then emit ONE final JSON object with the same shape plus a "justification" field explaining your decision:
{"area": "...", "subarea": "...", "urgency_hours": 72, "summary": "...", "keywords": [], "sentiment": "...", "entities": [], "complexity_factors": [], "justification": "..."}
No markdown fences, no extra text.

CONVERSATION:
%s

CANDIDATE A (%s):
%s

CANDIDATE B (%s):
%s`

// runJudge invokes the higher-capability arbitration call. Its output is
// authoritative when it succeeds.
func (e *Engine) runJudge(ctx context.Context, transcript string, resA, resB *triage.TriageResult) (*triage.TriageResult, error) {
	jsonA, err := json.Marshal(resA)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal candidate A: %v", triage.ErrJudgeFailure, err)
	}
	jsonB, err := json.Marshal(resB)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal candidate B: %v", triage.ErrJudgeFailure, err)
	}

	prompt := fmt.Sprintf(judgePromptV1,
		transcript,
		e.providerA.Name(), string(jsonA),
		e.providerB.Name(), string(jsonB),
	)

	callCtx, cancel := context.WithTimeout(ctx, e.judgeTimeout)
	defer cancel()

	raw, err := e.judge.Generate(callCtx, prompt, llm.WithTemperature(0.1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", triage.ErrJudgeFailure, err)
	}

	result, err := ParseResult(raw, transcript)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", triage.ErrJudgeFailure, err)
	}
	return result, nil
}
