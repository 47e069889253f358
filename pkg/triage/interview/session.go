package interview

import (
	"context"
	"fmt"
	"time"

	"ai-lawmatch-be/internal/pkg/logger"
	"ai-lawmatch-be/pkg/llm"
	"ai-lawmatch-be/pkg/triage"

	"github.com/google/uuid"
)

// Interviewer drives the turn-based intake dialogue and keeps the running
// complexity estimate up to date. It is stateless: all per-case state lives
// in the ConversationState blob the coordinator loads and saves around each
// turn.
type Interviewer struct {
	provider    llm.LLMProvider
	callTimeout time.Duration
	logger      logger.ILogger
}

func NewInterviewer(provider llm.LLMProvider, callTimeout time.Duration, log logger.ILogger) *Interviewer {
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &Interviewer{
		provider:    provider,
		callTimeout: callTimeout,
		logger:      log,
	}
}

// Start creates a fresh conversation seeded with the greeting question.
func (iv *Interviewer) Start(userId uuid.UUID) (*triage.ConversationState, string) {
	now := time.Now()
	state := &triage.ConversationState{
		SessionId:           uuid.New(),
		UserId:              userId,
		ComplexityLevel:     triage.ComplexityLow,
		ConfidenceScore:     0,
		RecommendedStrategy: triage.StrategySimple,
		CollectedData:       map[string]string{},
		CreatedAt:           now,
		Turns: []triage.Turn{
			{Role: triage.RoleAssistant, Text: GreetingMessage, Timestamp: now},
		},
	}
	return state, GreetingMessage
}

// Continue appends the user turn, asks the model for the next question and
// refreshes the complexity estimate from the analysis block.
//
// On provider failure the state is left untouched and the apology message is
// returned together with the error; the caller replies with the apology and
// may retry the same message later.
func (iv *Interviewer) Continue(ctx context.Context, state *triage.ConversationState, userMessage string) (string, bool, error) {
	if state.IsComplete {
		return "", false, triage.ErrInvalidState
	}

	now := time.Now()
	userTurn := triage.Turn{Role: triage.RoleUser, Text: userMessage, Timestamp: now}

	history := make([]llm.Message, 0, len(state.Turns)+2)
	history = append(history, llm.Message{Role: "system", Content: SystemPromptV1})
	for _, t := range state.Turns {
		history = append(history, llm.Message{Role: t.Role, Content: t.Text})
	}
	history = append(history, llm.Message{Role: triage.RoleUser, Content: userMessage})

	callCtx, cancel := context.WithTimeout(ctx, iv.callTimeout)
	defer cancel()

	raw, err := iv.provider.Chat(callCtx, history, llm.WithTemperature(0.4))
	if err != nil {
		if iv.logger != nil {
			iv.logger.Warn("Interviewer", "Completion call failed, returning apology", map[string]interface{}{
				"session_id": state.SessionId,
				"error":      err.Error(),
			})
		}
		kind := triage.ErrProvider
		if callCtx.Err() == context.DeadlineExceeded {
			kind = triage.ErrProviderTimeout
		}
		return ApologyMessage, false, fmt.Errorf("interviewer completion: %w: %v", kind, err)
	}

	block, clientText, parsed := ExtractAnalysis(raw)
	if parsed {
		iv.applyAnalysis(state, block)
	} else if iv.logger != nil {
		// Keep the previous estimate; the reply is still usable.
		iv.logger.Warn("Interviewer", "Analysis block missing or malformed, keeping previous estimate", map[string]interface{}{
			"session_id": state.SessionId,
		})
	}

	reply, complete := SplitCompletion(clientText)
	if reply == "" {
		reply = clientText
	}

	state.Turns = append(state.Turns, userTurn)
	assistantTurn := triage.Turn{Role: triage.RoleAssistant, Text: reply, Timestamp: time.Now()}
	if parsed {
		assistantTurn.InternalAnalysis = block
	}
	state.Turns = append(state.Turns, assistantTurn)

	if complete {
		// Terminal strategy and confidence freeze here.
		state.IsComplete = true
	}

	return reply, complete, nil
}

// ForceComplete marks the session complete using the last known estimates.
// Calling it on an already completed session is a no-op.
func (iv *Interviewer) ForceComplete(state *triage.ConversationState) triage.Strategy {
	state.IsComplete = true
	if state.RecommendedStrategy == "" {
		state.RecommendedStrategy = triage.StrategyForComplexity(state.ComplexityLevel)
	}
	return state.RecommendedStrategy
}

func (iv *Interviewer) applyAnalysis(state *triage.ConversationState, block *triage.AnalysisBlock) {
	if block.Complexity != "" {
		state.ComplexityLevel = block.Complexity
	}
	if block.Confidence > 0 {
		state.ConfidenceScore = block.Confidence
	}
	if block.StrategyRecommendation != "" {
		state.RecommendedStrategy = block.StrategyRecommendation
	} else if block.Complexity != "" {
		state.RecommendedStrategy = triage.StrategyForComplexity(block.Complexity)
	}

	if state.CollectedData == nil {
		state.CollectedData = map[string]string{}
	}
	if block.EstimatedArea != "" {
		state.CollectedData["estimated_area"] = block.EstimatedArea
	}
	if block.EstimatedSubarea != "" {
		state.CollectedData["estimated_subarea"] = block.EstimatedSubarea
	}
}
