package interview

import (
	"testing"

	"ai-lawmatch-be/pkg/triage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAnalysis(t *testing.T) {
	tests := []struct {
		name           string
		raw            string
		wantOk         bool
		wantComplexity triage.Complexity
		wantClientText string
	}{
		{
			name:           "well formed block",
			raw:            `<analysis>{"estimated_area": "labor", "estimated_subarea": "dismissal", "complexity": "medium", "confidence": 0.6, "strategy_recommendation": "failover", "reasoning": "two parties"}</analysis>When were you dismissed?`,
			wantOk:         true,
			wantComplexity: triage.ComplexityMedium,
			wantClientText: "When were you dismissed?",
		},
		{
			name:           "missing block keeps text",
			raw:            "Could you tell me more about what happened?",
			wantOk:         false,
			wantClientText: "Could you tell me more about what happened?",
		},
		{
			name:           "malformed json is dropped but block text removed",
			raw:            `<analysis>{not json at all</analysis>What city are you in?`,
			wantOk:         false,
			wantClientText: "What city are you in?",
		},
		{
			name:           "fenced json inside block",
			raw:            "<analysis>```json\n{\"complexity\": \"high\", \"confidence\": 0.8}\n```</analysis>Understood.",
			wantOk:         true,
			wantComplexity: triage.ComplexityHigh,
			wantClientText: "Understood.",
		},
		{
			name:           "json wrapped in prose",
			raw:            `<analysis>Here is my analysis: {"complexity": "low", "confidence": 0.3} hope it helps</analysis>Okay.`,
			wantOk:         true,
			wantComplexity: triage.ComplexityLow,
			wantClientText: "Okay.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, clientText, ok := ExtractAnalysis(tt.raw)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantClientText, clientText)
			if tt.wantOk {
				require.NotNil(t, block)
				assert.Equal(t, tt.wantComplexity, block.Complexity)
			}
		})
	}
}

func TestExtractAnalysisUnknownEnumsDropped(t *testing.T) {
	raw := `<analysis>{"complexity": "extreme", "confidence": 2.5, "strategy_recommendation": "quantum"}</analysis>Next question.`
	block, _, ok := ExtractAnalysis(raw)
	require.True(t, ok)
	assert.Equal(t, triage.Complexity(""), block.Complexity)
	assert.Equal(t, triage.Strategy(""), block.StrategyRecommendation)
	assert.Equal(t, 1.0, block.Confidence)
}

func TestSplitCompletion(t *testing.T) {
	reply, complete := SplitCompletion("Thanks, we have everything we need. " + CompletionSentinel)
	assert.True(t, complete)
	assert.Equal(t, "Thanks, we have everything we need.", reply)

	reply, complete = SplitCompletion("What is your employer's name?")
	assert.False(t, complete)
	assert.Equal(t, "What is your employer's name?", reply)
}
