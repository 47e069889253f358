package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"ai-lawmatch-be/pkg/triage"
)

const extractionPromptV1 = `You are a legal case classifier. Read the intake conversation below and return ONLY a JSON object with this exact shape:
{"area": "...", "subarea": "...", "urgency_hours": 72, "summary": "...", "keywords": ["..."], "sentiment": "negative|neutral|positive", "entities": ["..."], "complexity_factors": ["..."]}
- area: the legal practice area (e.g. labor, family, criminal, tax, consumer, real estate, civil)
- subarea: the specific matter within the area
- urgency_hours: how soon a lawyer must act (24 for urgent, 72 default, 168 for low urgency)
- summary: 2-3 sentences describing the case in neutral language
No markdown fences, no extra text.

CONVERSATION:
%s`

func extractionPrompt(transcript string) string {
	return fmt.Sprintf(extractionPromptV1, transcript)
}

func renderTranscript(turns []triage.Turn) string {
	var b strings.Builder
	for _, t := range turns {
		role := "CLIENT"
		if t.Role == triage.RoleAssistant {
			role = "INTERVIEWER"
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(t.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// resultPayload is the wire shape providers and the judge emit.
type resultPayload struct {
	Area              string   `json:"area"`
	Subarea           string   `json:"subarea"`
	UrgencyHours      int      `json:"urgency_hours"`
	Summary           string   `json:"summary"`
	Keywords          []string `json:"keywords"`
	Sentiment         string   `json:"sentiment"`
	Entities          []string `json:"entities"`
	ComplexityFactors []string `json:"complexity_factors"`
	Justification     string   `json:"justification,omitempty"`
}

func (p *resultPayload) toResult(source string) *triage.TriageResult {
	urgency := p.UrgencyHours
	if urgency <= 0 {
		urgency = 72
	}
	return &triage.TriageResult{
		Area:                 strings.TrimSpace(p.Area),
		Subarea:              strings.TrimSpace(p.Subarea),
		UrgencyHours:         urgency,
		Summary:              strings.TrimSpace(p.Summary),
		Keywords:             p.Keywords,
		Sentiment:            p.Sentiment,
		Entities:             p.Entities,
		ComplexityFactors:    p.ComplexityFactors,
		JudgedClassification: p.Justification,
		Source:               source,
	}
}

// ParseResult turns raw model output into a TriageResult. Three passes:
// strict JSON decode, lenient brace extraction, and finally the keyword
// classifier over the transcript. Each result carries a source tag so the
// degradation is visible downstream.
func ParseResult(raw string, transcript string) (*triage.TriageResult, error) {
	cleaned := stripFences(raw)

	var payload resultPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err == nil && payload.Area != "" {
		return payload.toResult(triage.SourceStrict), nil
	}

	// Lenient pass: models often wrap the JSON in prose
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		payload = resultPayload{}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &payload); err == nil && payload.Area != "" {
			return payload.toResult(triage.SourceLenient), nil
		}
	}

	// Last resort: classify from the transcript itself
	if res := keywordClassify(transcript); res != nil {
		return res, nil
	}

	return nil, fmt.Errorf("%w: no usable classification in %q", triage.ErrMalformedModelOutput, truncate(raw, 120))
}

func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Keyword tables for the last-resort classifier. Coarse on purpose: the tag
// tells downstream this record is low confidence.
var areaKeywords = []struct {
	area     string
	subarea  string
	keywords []string
}{
	{"labor", "employment dispute", []string{"fired", "dismissal", "employer", "wages", "salary", "overtime", "workplace", "severance"}},
	{"family", "family matter", []string{"divorce", "custody", "alimony", "marriage", "child support", "separation"}},
	{"criminal", "criminal defense", []string{"arrested", "police", "charges", "crime", "bail", "detained"}},
	{"tax", "tax dispute", []string{"tax", "audit", "revenue service", "fiscal"}},
	{"consumer", "consumer complaint", []string{"refund", "warranty", "defective", "purchase", "airline", "cancellation fee"}},
	{"real estate", "tenancy dispute", []string{"landlord", "tenant", "lease", "eviction", "rent", "property"}},
}

var urgentKeywords = []string{"urgent", "immediately", "today", "tomorrow", "deadline", "arrested", "hearing"}

var negativeKeywords = []string{"angry", "scared", "worried", "desperate", "unfair", "afraid"}
var positiveKeywords = []string{"thank", "glad", "happy", "relieved"}

func keywordClassify(transcript string) *triage.TriageResult {
	text := strings.ToLower(transcript)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	area, subarea := "civil", "general inquiry"
	bestHits := 0
	for _, entry := range areaKeywords {
		hits := 0
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			area = entry.area
			subarea = entry.subarea
		}
	}

	urgency := 72
	for _, kw := range urgentKeywords {
		if strings.Contains(text, kw) {
			urgency = 24
			break
		}
	}

	sentiment := "neutral"
	for _, kw := range negativeKeywords {
		if strings.Contains(text, kw) {
			sentiment = "negative"
			break
		}
	}
	if sentiment == "neutral" {
		for _, kw := range positiveKeywords {
			if strings.Contains(text, kw) {
				sentiment = "positive"
				break
			}
		}
	}

	return &triage.TriageResult{
		Area:         area,
		Subarea:      subarea,
		UrgencyHours: urgency,
		Summary:      truncate(strings.TrimSpace(transcript), 280),
		Sentiment:    sentiment,
		Source:       triage.SourceKeyword,
	}
}
