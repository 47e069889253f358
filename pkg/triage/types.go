package triage

import (
	"time"

	"github.com/google/uuid"
)

// Complexity is the interviewer's running estimate of how hard the case is
// to classify.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Strategy selects how the analysis engine extracts the structured case.
type Strategy string

const (
	StrategySimple   Strategy = "simple"
	StrategyFailover Strategy = "failover"
	StrategyEnsemble Strategy = "ensemble"
)

// StrategyForComplexity maps the complexity estimate to an extraction
// strategy. Anything unrecognized gets failover, the safe middle ground.
func StrategyForComplexity(c Complexity) Strategy {
	switch c {
	case ComplexityLow:
		return StrategySimple
	case ComplexityMedium:
		return StrategyFailover
	case ComplexityHigh:
		return StrategyEnsemble
	default:
		return StrategyFailover
	}
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// AnalysisBlock is the hidden per-turn estimate the interviewer model emits
// inside its reply. It never reaches the client.
type AnalysisBlock struct {
	EstimatedArea          string     `json:"estimated_area"`
	EstimatedSubarea       string     `json:"estimated_subarea"`
	Complexity             Complexity `json:"complexity"`
	Confidence             float64    `json:"confidence"`
	StrategyRecommendation Strategy   `json:"strategy_recommendation"`
	Reasoning              string     `json:"reasoning"`
}

// Turn is one message in the intake dialogue.
type Turn struct {
	Role             string         `json:"role"`
	Text             string         `json:"text"`
	Timestamp        time.Time      `json:"timestamp"`
	InternalAnalysis *AnalysisBlock `json:"internal_analysis,omitempty"`
}

// ConversationState is the full per-case interview state. It round-trips
// through the state store as one JSON blob.
type ConversationState struct {
	SessionId           uuid.UUID         `json:"session_id"`
	UserId              uuid.UUID         `json:"user_id"`
	Turns               []Turn            `json:"turns"`
	ComplexityLevel     Complexity        `json:"complexity_level"`
	ConfidenceScore     float64           `json:"confidence_score"`
	RecommendedStrategy Strategy          `json:"recommended_strategy"`
	IsComplete          bool              `json:"is_complete"`
	CollectedData       map[string]string `json:"collected_data"`
	CreatedAt           time.Time         `json:"created_at"`
}

// Transcript returns the turns with the internal analysis stripped, safe to
// show to the client or feed to the extraction prompt.
func (s *ConversationState) Transcript() []Turn {
	out := make([]Turn, len(s.Turns))
	for i, t := range s.Turns {
		t.InternalAnalysis = nil
		out[i] = t
	}
	return out
}

// Orchestration lifecycle status.
const (
	StatusInterviewing = "interviewing"
	StatusCompleted    = "completed"
	StatusError        = "error"
)

// OrchestrationState tracks where a case sits in the triage pipeline.
type OrchestrationState struct {
	CaseId    uuid.UUID     `json:"case_id"`
	Status    string        `json:"status"`
	FlowType  string        `json:"flow_type"`
	StartedAt time.Time     `json:"started_at"`
	Result    *TriageResult `json:"result,omitempty"`
	ErrReason string        `json:"err_reason,omitempty"`
}

// Source tags how the structured result was obtained from the model output.
const (
	SourceStrict  = "strict"
	SourceLenient = "lenient"
	SourceKeyword = "keyword"
)

// Completion reasons recorded on the final result.
const (
	CompletionNatural = "natural"
	CompletionTimeout = "timeout"
)

// TriageResult is the structured case record the analysis engine produces.
type TriageResult struct {
	Area                 string    `json:"area"`
	Subarea              string    `json:"subarea"`
	UrgencyHours         int       `json:"urgency_hours"`
	Summary              string    `json:"summary"`
	Keywords             []string  `json:"keywords,omitempty"`
	Sentiment            string    `json:"sentiment,omitempty"`
	Entities             []string  `json:"entities,omitempty"`
	ComplexityFactors    []string  `json:"complexity_factors,omitempty"`
	JudgedClassification string    `json:"judged_classification,omitempty"`
	StrategyUsed         Strategy  `json:"strategy_used"`
	Source               string    `json:"source"`
	CompletionReason     string    `json:"completion_reason,omitempty"`
	SummaryEmbedding     []float32 `json:"summary_embedding,omitempty"`
}
