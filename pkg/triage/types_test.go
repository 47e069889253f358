package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrategyForComplexity(t *testing.T) {
	tests := []struct {
		complexity Complexity
		want       Strategy
	}{
		{ComplexityLow, StrategySimple},
		{ComplexityMedium, StrategyFailover},
		{ComplexityHigh, StrategyEnsemble},
		{Complexity("unknown"), StrategyFailover},
		{Complexity(""), StrategyFailover},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StrategyForComplexity(tt.complexity), "complexity %q", tt.complexity)
	}
}

func TestTranscriptStripsInternalAnalysis(t *testing.T) {
	state := &ConversationState{
		Turns: []Turn{
			{Role: RoleUser, Text: "hi", InternalAnalysis: &AnalysisBlock{Reasoning: "secret"}},
		},
	}
	out := state.Transcript()
	assert.Len(t, out, 1)
	assert.Nil(t, out[0].InternalAnalysis)
}
