package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"ai-lawmatch-be/internal/dto"
	"ai-lawmatch-be/internal/entity"
	"ai-lawmatch-be/internal/pkg/logger"
	"ai-lawmatch-be/internal/repository/contract"
	"ai-lawmatch-be/internal/repository/unitofwork"
	"ai-lawmatch-be/internal/websocket"
	"ai-lawmatch-be/pkg/events"
	pktNats "ai-lawmatch-be/pkg/nats"
	"ai-lawmatch-be/pkg/triage"
	"ai-lawmatch-be/pkg/triage/analysis"
	"ai-lawmatch-be/pkg/triage/interview"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type ITriageService interface {
	StartTriage(ctx context.Context, userId uuid.UUID, req *dto.StartTriageRequest) (*dto.StartTriageResponse, error)
	ContinueTriage(ctx context.Context, userId uuid.UUID, req *dto.ContinueTriageRequest) (*dto.ContinueTriageResponse, error)
	ForceComplete(ctx context.Context, caseId uuid.UUID) (*dto.TriageStatusResponse, error)
	GetStatus(ctx context.Context, caseId uuid.UUID) (*dto.TriageStatusResponse, error)
	StatusSnapshot(ctx context.Context, caseId uuid.UUID) ([]byte, error)
}

// triageService coordinates the whole intake pipeline: interview turns,
// extraction on completion, case persistence, and the handoff to ranking.
type triageService struct {
	stateStore       contract.StateStore
	interviewer      *interview.Interviewer
	analysisEngine   *analysis.Engine
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	natsPublisher    *pktNats.Publisher
	wsHub            *websocket.Hub
	logger           logger.ILogger
}

func NewTriageService(
	stateStore contract.StateStore,
	interviewer *interview.Interviewer,
	analysisEngine *analysis.Engine,
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	natsPublisher *pktNats.Publisher,
	wsHub *websocket.Hub,
	log logger.ILogger,
) ITriageService {
	return &triageService{
		stateStore:       stateStore,
		interviewer:      interviewer,
		analysisEngine:   analysisEngine,
		uowFactory:       uowFactory,
		publisherService: publisherService,
		natsPublisher:    natsPublisher,
		wsHub:            wsHub,
		logger:           log,
	}
}

func (s *triageService) StartTriage(ctx context.Context, userId uuid.UUID, req *dto.StartTriageRequest) (*dto.StartTriageResponse, error) {
	caseId := uuid.New()

	state, greeting := s.interviewer.Start(userId)
	state.CollectedData["latitude"] = strconv.FormatFloat(req.Latitude, 'f', -1, 64)
	state.CollectedData["longitude"] = strconv.FormatFloat(req.Longitude, 'f', -1, 64)

	if err := s.stateStore.SaveConversation(ctx, caseId, state); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}

	orch := &triage.OrchestrationState{
		CaseId:    caseId,
		Status:    triage.StatusInterviewing,
		FlowType:  "conversational",
		StartedAt: time.Now(),
	}
	if err := s.stateStore.SaveOrchestration(ctx, caseId, orch); err != nil {
		return nil, fmt.Errorf("failed to save orchestration state: %w", err)
	}

	s.publishCaseEvent(ctx, "triage_started", caseId, map[string]interface{}{
		"status": triage.StatusInterviewing,
	})

	s.logger.Info("TriageService", "Triage started", map[string]interface{}{
		"case_id": caseId,
		"user_id": userId,
	})

	return &dto.StartTriageResponse{
		CaseId:   caseId,
		Greeting: greeting,
		Status:   triage.StatusInterviewing,
	}, nil
}

func (s *triageService) ContinueTriage(ctx context.Context, userId uuid.UUID, req *dto.ContinueTriageRequest) (*dto.ContinueTriageResponse, error) {
	state, err := s.stateStore.GetConversation(ctx, req.CaseId)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if state == nil {
		return nil, triage.ErrSessionNotFound
	}
	if state.IsComplete {
		return nil, triage.ErrInvalidState
	}

	reply, complete, err := s.interviewer.Continue(ctx, state, req.Message)
	if err != nil {
		// State was left untouched; the client sees the apology and can
		// resend the same message.
		s.logger.Warn("TriageService", "Interview turn failed", map[string]interface{}{
			"case_id": req.CaseId,
			"error":   err.Error(),
		})
		return &dto.ContinueTriageResponse{
			CaseId: req.CaseId,
			Reply:  reply,
			Status: triage.StatusInterviewing,
		}, nil
	}

	if err := s.stateStore.SaveConversation(ctx, req.CaseId, state); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}

	s.publishCaseEvent(ctx, "message_received", req.CaseId, map[string]interface{}{
		"reply":      reply,
		"complexity": string(state.ComplexityLevel),
		"confidence": state.ConfidenceScore,
	})

	status := triage.StatusInterviewing
	if complete {
		orch, finErr := s.finalize(ctx, req.CaseId, userId, state, triage.CompletionNatural)
		if finErr != nil {
			return nil, finErr
		}
		status = orch.Status
	}

	return &dto.ContinueTriageResponse{
		CaseId:     req.CaseId,
		Reply:      reply,
		Status:     status,
		Complexity: string(state.ComplexityLevel),
		Confidence: state.ConfidenceScore,
	}, nil
}

func (s *triageService) ForceComplete(ctx context.Context, caseId uuid.UUID) (*dto.TriageStatusResponse, error) {
	orch, err := s.stateStore.GetOrchestration(ctx, caseId)
	if err != nil {
		return nil, fmt.Errorf("failed to load orchestration state: %w", err)
	}
	if orch == nil {
		return nil, triage.ErrSessionNotFound
	}
	if orch.Status == triage.StatusCompleted {
		// Idempotent: a second force-complete returns the stored result.
		return orchToStatusDTO(orch), nil
	}

	state, err := s.stateStore.GetConversation(ctx, caseId)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if state == nil {
		return nil, triage.ErrSessionNotFound
	}

	s.interviewer.ForceComplete(state)
	if err := s.stateStore.SaveConversation(ctx, caseId, state); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}

	orch, err = s.finalize(ctx, caseId, state.UserId, state, triage.CompletionTimeout)
	if err != nil {
		return nil, err
	}
	return orchToStatusDTO(orch), nil
}

func (s *triageService) GetStatus(ctx context.Context, caseId uuid.UUID) (*dto.TriageStatusResponse, error) {
	orch, err := s.stateStore.GetOrchestration(ctx, caseId)
	if err != nil {
		return nil, fmt.Errorf("failed to load orchestration state: %w", err)
	}
	if orch == nil {
		return nil, triage.ErrSessionNotFound
	}
	return orchToStatusDTO(orch), nil
}

// StatusSnapshot renders the initial_state event new websocket watchers
// receive before any live event.
func (s *triageService) StatusSnapshot(ctx context.Context, caseId uuid.UUID) ([]byte, error) {
	status, err := s.GetStatus(ctx, caseId)
	if err != nil {
		return nil, err
	}
	event := websocket.NewCaseEvent("initial_state", caseId, map[string]interface{}{
		"status": status.Status,
		"result": status.Result,
	})
	return json.Marshal(event)
}

// finalize runs extraction over the finished conversation, persists the case
// and hands it off to the async ranking pipeline.
func (s *triageService) finalize(ctx context.Context, caseId, userId uuid.UUID, state *triage.ConversationState, reason string) (*triage.OrchestrationState, error) {
	strategy := state.RecommendedStrategy
	if strategy == "" {
		strategy = triage.StrategyForComplexity(state.ComplexityLevel)
	}

	orch := &triage.OrchestrationState{
		CaseId:    caseId,
		Status:    triage.StatusInterviewing,
		FlowType:  "conversational",
		StartedAt: state.CreatedAt,
	}

	result, err := s.analysisEngine.Analyze(ctx, state.Transcript(), strategy)
	if err != nil {
		orch.Status = triage.StatusError
		orch.ErrReason = err.Error()
		if saveErr := s.stateStore.SaveOrchestration(ctx, caseId, orch); saveErr != nil {
			s.logger.Error("TriageService", "Failed to save error state", map[string]interface{}{
				"case_id": caseId,
				"error":   saveErr.Error(),
			})
		}
		s.publishCaseEvent(ctx, "triage_error", caseId, map[string]interface{}{
			"reason": err.Error(),
		})
		return nil, err
	}
	result.CompletionReason = reason

	if err := s.persistCase(ctx, caseId, userId, state, result); err != nil {
		orch.Status = triage.StatusError
		orch.ErrReason = err.Error()
		_ = s.stateStore.SaveOrchestration(ctx, caseId, orch)
		return nil, err
	}

	orch.Status = triage.StatusCompleted
	orch.Result = result
	if err := s.stateStore.SaveOrchestration(ctx, caseId, orch); err != nil {
		return nil, fmt.Errorf("failed to save orchestration state: %w", err)
	}

	// Async handoff to ranking.
	payload, _ := json.Marshal(dto.PublishRankCaseMessage{CaseId: caseId})
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Error("TriageService", "Failed to publish rank request", map[string]interface{}{
			"case_id": caseId,
			"error":   err.Error(),
		})
	}

	// Cross-service notification; best effort.
	if s.natsPublisher != nil {
		event := events.NewTriageCompleted(caseId, result.Area, result.Subarea, result.UrgencyHours)
		if err := s.natsPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("TriageService", "Failed to publish TRIAGE_COMPLETED", map[string]interface{}{
				"case_id": caseId,
				"error":   err.Error(),
			})
		}
	}

	s.publishCaseEvent(ctx, "triage_completed", caseId, map[string]interface{}{
		"area":              result.Area,
		"subarea":           result.Subarea,
		"strategy_used":     string(result.StrategyUsed),
		"completion_reason": result.CompletionReason,
	})

	s.logger.Info("TriageService", "Triage completed", map[string]interface{}{
		"case_id":  caseId,
		"area":     result.Area,
		"strategy": string(result.StrategyUsed),
		"source":   result.Source,
		"reason":   reason,
	})

	return orch, nil
}

func (s *triageService) persistCase(ctx context.Context, caseId, userId uuid.UUID, state *triage.ConversationState, result *triage.TriageResult) error {
	lat, _ := strconv.ParseFloat(state.CollectedData["latitude"], 64)
	lon, _ := strconv.ParseFloat(state.CollectedData["longitude"], 64)

	caseEnt := &entity.Case{
		Id:                caseId,
		UserId:            userId,
		Area:              result.Area,
		Subarea:           result.Subarea,
		UrgencyHours:      result.UrgencyHours,
		Latitude:          lat,
		Longitude:         lon,
		Complexity:        string(state.ComplexityLevel),
		Summary:           result.Summary,
		Keywords:          result.Keywords,
		Sentiment:         result.Sentiment,
		Entities:          result.Entities,
		ComplexityFactors: result.ComplexityFactors,
		StrategyUsed:      string(result.StrategyUsed),
		Source:            result.Source,
		CompletionReason:  result.CompletionReason,
	}
	if len(result.SummaryEmbedding) > 0 {
		caseEnt.SummaryEmbedding = pgvector.NewVector(result.SummaryEmbedding)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.CaseRepository().Create(ctx, caseEnt); err != nil {
		return fmt.Errorf("failed to persist case: %w", err)
	}
	return nil
}

func (s *triageService) publishCaseEvent(ctx context.Context, eventType string, caseId uuid.UUID, data map[string]interface{}) {
	if s.wsHub == nil {
		return
	}
	s.wsHub.Publish(ctx, websocket.NewCaseEvent(eventType, caseId, data))
}

func orchToStatusDTO(orch *triage.OrchestrationState) *dto.TriageStatusResponse {
	res := &dto.TriageStatusResponse{
		CaseId:    orch.CaseId,
		Status:    orch.Status,
		StartedAt: orch.StartedAt,
		ErrReason: orch.ErrReason,
	}
	if orch.Result != nil {
		res.Result = &dto.TriageResultDTO{
			Area:              orch.Result.Area,
			Subarea:           orch.Result.Subarea,
			UrgencyHours:      orch.Result.UrgencyHours,
			Summary:           orch.Result.Summary,
			Keywords:          orch.Result.Keywords,
			Sentiment:         orch.Result.Sentiment,
			Entities:          orch.Result.Entities,
			ComplexityFactors: orch.Result.ComplexityFactors,
			StrategyUsed:      string(orch.Result.StrategyUsed),
			Source:            orch.Result.Source,
			CompletionReason:  orch.Result.CompletionReason,
		}
	}
	return res
}
