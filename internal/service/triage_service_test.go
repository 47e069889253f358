package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ai-lawmatch-be/internal/dto"
	"ai-lawmatch-be/internal/entity"
	"ai-lawmatch-be/internal/repository/contract"
	"ai-lawmatch-be/internal/repository/specification"
	"ai-lawmatch-be/internal/repository/statestore"
	"ai-lawmatch-be/internal/repository/unitofwork"
	"ai-lawmatch-be/pkg/llm"
	"ai-lawmatch-be/pkg/triage"
	"ai-lawmatch-be/pkg/triage/analysis"
	"ai-lawmatch-be/pkg/triage/interview"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	chatReplies []string
	chatIdx     int
	generateOut string
	err         error
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.chatIdx >= len(f.chatReplies) {
		return "", errors.New("no scripted reply left")
	}
	out := f.chatReplies[f.chatIdx]
	f.chatIdx++
	return out, nil
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.generateOut, nil
}

func (f *fakeProvider) Name() string { return "fake" }

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

type fakeCaseRepo struct {
	created []*entity.Case
}

func (r *fakeCaseRepo) Create(ctx context.Context, c *entity.Case) error {
	r.created = append(r.created, c)
	return nil
}
func (r *fakeCaseRepo) Update(ctx context.Context, c *entity.Case) error { return nil }
func (r *fakeCaseRepo) Delete(ctx context.Context, id uuid.UUID) error   { return nil }
func (r *fakeCaseRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Case, error) {
	if len(r.created) == 0 {
		return nil, nil
	}
	return r.created[len(r.created)-1], nil
}
func (r *fakeCaseRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Case, error) {
	return r.created, nil
}
func (r *fakeCaseRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.created)), nil
}

type fakeUow struct {
	caseRepo *fakeCaseRepo
}

func (u *fakeUow) Begin(ctx context.Context) error             { return nil }
func (u *fakeUow) Commit() error                               { return nil }
func (u *fakeUow) Rollback() error                             { return nil }
func (u *fakeUow) CaseRepository() contract.CaseRepository     { return u.caseRepo }
func (u *fakeUow) LawyerRepository() contract.LawyerRepository { return nil }
func (u *fakeUow) MatchRepository() contract.MatchRepository   { return nil }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type fakePublisher struct {
	payloads [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.payloads = append(p.payloads, payload)
	return nil
}

const completionReply = `<analysis>{"estimated_area": "labor", "estimated_subarea": "wrongful termination", "complexity": "low", "confidence": 0.9, "strategy_recommendation": "simple", "reasoning": "clear single issue"}</analysis>
Thank you, I have everything I need.
[INTAKE_COMPLETE]`

const extractionOut = `{"area": "labor", "subarea": "wrongful termination", "urgency_hours": 72, "summary": "Client was dismissed without notice.", "keywords": ["dismissal"], "sentiment": "negative", "entities": [], "complexity_factors": []}`

func newTestService(t *testing.T, provider *fakeProvider) (ITriageService, *fakeCaseRepo, *fakePublisher) {
	t.Helper()

	store := statestore.NewMemoryStateStore(time.Hour)
	log := noopLogger{}

	interviewer := interview.NewInterviewer(provider, time.Second, log)
	engine := analysis.NewEngine(provider, provider, provider, nil, time.Second, time.Second, log)

	caseRepo := &fakeCaseRepo{}
	factory := &fakeUowFactory{uow: &fakeUow{caseRepo: caseRepo}}
	publisher := &fakePublisher{}

	svc := NewTriageService(store, interviewer, engine, factory, publisher, nil, nil, log)
	return svc, caseRepo, publisher
}

func TestTriageFullFlow(t *testing.T) {
	provider := &fakeProvider{
		chatReplies: []string{completionReply},
		generateOut: extractionOut,
	}
	svc, caseRepo, publisher := newTestService(t, provider)
	ctx := context.Background()
	userId := uuid.New()

	started, err := svc.StartTriage(ctx, userId, &dto.StartTriageRequest{Latitude: 52.52, Longitude: 13.4})
	require.NoError(t, err)
	assert.Equal(t, triage.StatusInterviewing, started.Status)
	assert.NotEmpty(t, started.Greeting)

	res, err := svc.ContinueTriage(ctx, userId, &dto.ContinueTriageRequest{
		CaseId:  started.CaseId,
		Message: "I was fired without any notice last week.",
	})
	require.NoError(t, err)
	assert.Equal(t, triage.StatusCompleted, res.Status)

	// Case persisted with classification and location
	require.Len(t, caseRepo.created, 1)
	persisted := caseRepo.created[0]
	assert.Equal(t, started.CaseId, persisted.Id)
	assert.Equal(t, "labor", persisted.Area)
	assert.Equal(t, "wrongful termination", persisted.Subarea)
	assert.Equal(t, "natural", persisted.CompletionReason)
	assert.InDelta(t, 52.52, persisted.Latitude, 0.001)

	// Ranking handoff published
	require.Len(t, publisher.payloads, 1)
	var msg dto.PublishRankCaseMessage
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &msg))
	assert.Equal(t, started.CaseId, msg.CaseId)

	// Status reflects the stored result
	status, err := svc.GetStatus(ctx, started.CaseId)
	require.NoError(t, err)
	assert.Equal(t, triage.StatusCompleted, status.Status)
	require.NotNil(t, status.Result)
	assert.Equal(t, "labor", status.Result.Area)
	assert.Equal(t, "simple", status.Result.StrategyUsed)
}

func TestContinueTriageUnknownCase(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeProvider{})
	_, err := svc.ContinueTriage(context.Background(), uuid.New(), &dto.ContinueTriageRequest{
		CaseId:  uuid.New(),
		Message: "hello",
	})
	assert.ErrorIs(t, err, triage.ErrSessionNotFound)
}

func TestContinueTriageAfterCompletion(t *testing.T) {
	provider := &fakeProvider{
		chatReplies: []string{completionReply},
		generateOut: extractionOut,
	}
	svc, _, _ := newTestService(t, provider)
	ctx := context.Background()
	userId := uuid.New()

	started, err := svc.StartTriage(ctx, userId, &dto.StartTriageRequest{})
	require.NoError(t, err)

	_, err = svc.ContinueTriage(ctx, userId, &dto.ContinueTriageRequest{CaseId: started.CaseId, Message: "fired"})
	require.NoError(t, err)

	_, err = svc.ContinueTriage(ctx, userId, &dto.ContinueTriageRequest{CaseId: started.CaseId, Message: "more"})
	assert.ErrorIs(t, err, triage.ErrInvalidState)
}

func TestForceCompleteRunsAnalysisAndIsIdempotent(t *testing.T) {
	provider := &fakeProvider{
		chatReplies: []string{
			`<analysis>{"estimated_area": "labor", "estimated_subarea": "employment dispute", "complexity": "low", "confidence": 0.4, "strategy_recommendation": "simple", "reasoning": "early"}</analysis>
What happened next?`,
		},
		generateOut: extractionOut,
	}
	svc, caseRepo, _ := newTestService(t, provider)
	ctx := context.Background()
	userId := uuid.New()

	started, err := svc.StartTriage(ctx, userId, &dto.StartTriageRequest{})
	require.NoError(t, err)

	_, err = svc.ContinueTriage(ctx, userId, &dto.ContinueTriageRequest{CaseId: started.CaseId, Message: "I was fired"})
	require.NoError(t, err)

	status, err := svc.ForceComplete(ctx, started.CaseId)
	require.NoError(t, err)
	assert.Equal(t, triage.StatusCompleted, status.Status)
	require.NotNil(t, status.Result)
	assert.Equal(t, "timeout", status.Result.CompletionReason)
	require.Len(t, caseRepo.created, 1)

	// Second force-complete is a no-op returning the stored result
	again, err := svc.ForceComplete(ctx, started.CaseId)
	require.NoError(t, err)
	assert.Equal(t, triage.StatusCompleted, again.Status)
	require.Len(t, caseRepo.created, 1)
}

func TestProviderFailureLeavesSessionRetryable(t *testing.T) {
	provider := &fakeProvider{err: errors.New("upstream down")}
	svc, caseRepo, publisher := newTestService(t, provider)
	ctx := context.Background()
	userId := uuid.New()

	started, err := svc.StartTriage(ctx, userId, &dto.StartTriageRequest{})
	require.NoError(t, err)

	res, err := svc.ContinueTriage(ctx, userId, &dto.ContinueTriageRequest{CaseId: started.CaseId, Message: "help"})
	require.NoError(t, err)
	assert.Equal(t, interview.ApologyMessage, res.Reply)
	assert.Equal(t, triage.StatusInterviewing, res.Status)
	assert.Empty(t, caseRepo.created)
	assert.Empty(t, publisher.payloads)

	// Provider recovers; the same message goes through
	provider.err = nil
	provider.chatReplies = []string{completionReply}
	provider.generateOut = extractionOut

	res, err = svc.ContinueTriage(ctx, userId, &dto.ContinueTriageRequest{CaseId: started.CaseId, Message: "help"})
	require.NoError(t, err)
	assert.Equal(t, triage.StatusCompleted, res.Status)
}
