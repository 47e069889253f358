package analysis

import (
	"testing"

	"ai-lawmatch-be/pkg/triage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResultStrict(t *testing.T) {
	result, err := ParseResult(laborResult, "")
	require.NoError(t, err)
	assert.Equal(t, triage.SourceStrict, result.Source)
	assert.Equal(t, "labor", result.Area)
	assert.Equal(t, 48, result.UrgencyHours)
}

func TestParseResultLenient(t *testing.T) {
	raw := "Sure! Here is the classification you asked for:\n" + laborResult + "\nLet me know if you need anything else."
	result, err := ParseResult(raw, "")
	require.NoError(t, err)
	assert.Equal(t, triage.SourceLenient, result.Source)
	assert.Equal(t, "labor", result.Area)
}

func TestParseResultStripsFences(t *testing.T) {
	raw := "```json\n" + laborResult + "\n```"
	result, err := ParseResult(raw, "")
	require.NoError(t, err)
	assert.Equal(t, triage.SourceStrict, result.Source)
}

func TestParseResultKeywordFallback(t *testing.T) {
	transcript := "CLIENT: My landlord is trying to evict me from my apartment and I am worried about the lease.\n"
	result, err := ParseResult("I cannot help with that.", transcript)
	require.NoError(t, err)

	assert.Equal(t, triage.SourceKeyword, result.Source)
	assert.Equal(t, "real estate", result.Area)
	assert.Equal(t, "negative", result.Sentiment)
	assert.NotEmpty(t, result.Summary)
}

func TestParseResultKeywordUrgency(t *testing.T) {
	transcript := "CLIENT: I was arrested yesterday and the hearing is tomorrow, this is urgent.\n"
	result, err := ParseResult("garbage", transcript)
	require.NoError(t, err)
	assert.Equal(t, "criminal", result.Area)
	assert.Equal(t, 24, result.UrgencyHours)
}

func TestParseResultNothingUsable(t *testing.T) {
	_, err := ParseResult("garbage", "")
	assert.ErrorIs(t, err, triage.ErrMalformedModelOutput)
}

func TestParseResultDefaultUrgency(t *testing.T) {
	result, err := ParseResult(`{"area": "civil", "subarea": "general", "summary": "s"}`, "")
	require.NoError(t, err)
	assert.Equal(t, 72, result.UrgencyHours)
}

func TestRenderTranscript(t *testing.T) {
	out := renderTranscript(sampleTurns())
	assert.Contains(t, out, "INTERVIEWER: What happened?")
	assert.Contains(t, out, "CLIENT: I was fired without cause from ACME Corp.")
}
