package interview

import (
	"encoding/json"
	"regexp"
	"strings"

	"ai-lawmatch-be/pkg/triage"
)

var analysisBlockRe = regexp.MustCompile(`(?s)<analysis>(.*?)</analysis>`)

// ExtractAnalysis pulls the analysis block out of a raw model reply and
// returns the client-facing remainder. The extractor is lenient: a missing
// or malformed block yields ok=false and the caller keeps its previous
// estimates. The client text never contains the block.
func ExtractAnalysis(raw string) (block *triage.AnalysisBlock, clientText string, ok bool) {
	clientText = strings.TrimSpace(raw)

	m := analysisBlockRe.FindStringSubmatchIndex(raw)
	if m == nil {
		return nil, clientText, false
	}

	inner := raw[m[2]:m[3]]
	clientText = strings.TrimSpace(raw[:m[0]] + raw[m[1]:])

	parsed, parseOk := parseAnalysisJSON(inner)
	if !parseOk {
		return nil, clientText, false
	}
	return parsed, clientText, true
}

func parseAnalysisJSON(inner string) (*triage.AnalysisBlock, bool) {
	cleaned := strings.TrimSpace(inner)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var block triage.AnalysisBlock
	if err := json.Unmarshal([]byte(cleaned), &block); err != nil {
		// Lenient second pass: models sometimes wrap the JSON in prose
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start < 0 || end <= start {
			return nil, false
		}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &block); err != nil {
			return nil, false
		}
	}

	normalizeAnalysis(&block)
	return &block, true
}

// normalizeAnalysis keeps only recognized enum values; anything else is
// dropped so the session falls back to its previous estimate.
func normalizeAnalysis(block *triage.AnalysisBlock) {
	switch triage.Complexity(strings.ToLower(string(block.Complexity))) {
	case triage.ComplexityLow, triage.ComplexityMedium, triage.ComplexityHigh:
		block.Complexity = triage.Complexity(strings.ToLower(string(block.Complexity)))
	default:
		block.Complexity = ""
	}

	switch triage.Strategy(strings.ToLower(string(block.StrategyRecommendation))) {
	case triage.StrategySimple, triage.StrategyFailover, triage.StrategyEnsemble:
		block.StrategyRecommendation = triage.Strategy(strings.ToLower(string(block.StrategyRecommendation)))
	default:
		block.StrategyRecommendation = ""
	}

	if block.Confidence < 0 {
		block.Confidence = 0
	}
	if block.Confidence > 1 {
		block.Confidence = 1
	}
}

// SplitCompletion detects the completion sentinel. When present, the text
// before it is the final reply.
func SplitCompletion(text string) (reply string, complete bool) {
	idx := strings.Index(text, CompletionSentinel)
	if idx < 0 {
		return strings.TrimSpace(text), false
	}
	return strings.TrimSpace(text[:idx]), true
}
