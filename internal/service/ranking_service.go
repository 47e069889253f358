package service

import (
	"context"
	"fmt"
	"sort"

	"ai-lawmatch-be/internal/dto"
	"ai-lawmatch-be/internal/entity"
	"ai-lawmatch-be/internal/pkg/logger"
	"ai-lawmatch-be/internal/repository/specification"
	"ai-lawmatch-be/internal/repository/unitofwork"
	"ai-lawmatch-be/internal/websocket"
	"ai-lawmatch-be/pkg/events"
	pktNats "ai-lawmatch-be/pkg/nats"
	"ai-lawmatch-be/pkg/ranking"
	"ai-lawmatch-be/pkg/triage"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// candidateFetchLimit caps the pre-filter so one ranking pass stays cheap
// even in dense metro areas.
const candidateFetchLimit = 200

const defaultTopN = 10

type IRankingService interface {
	RankCase(ctx context.Context, req *dto.RankRequest) (*dto.RankResponse, error)
	GetMatches(ctx context.Context, caseId uuid.UUID) (*dto.RankResponse, error)
	ListPresets() *dto.ListPresetsResponse
}

type rankingService struct {
	uowFactory    unitofwork.RepositoryFactory
	engine        *ranking.Engine
	natsPublisher *pktNats.Publisher
	wsHub         *websocket.Hub
	logger        logger.ILogger
}

func NewRankingService(
	uowFactory unitofwork.RepositoryFactory,
	engine *ranking.Engine,
	natsPublisher *pktNats.Publisher,
	wsHub *websocket.Hub,
	log logger.ILogger,
) IRankingService {
	return &rankingService{
		uowFactory:    uowFactory,
		engine:        engine,
		natsPublisher: natsPublisher,
		wsHub:         wsHub,
		logger:        log,
	}
}

func (s *rankingService) RankCase(ctx context.Context, req *dto.RankRequest) (*dto.RankResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	caseEnt, err := uow.CaseRepository().FindOne(ctx, specification.ByID{ID: req.CaseId})
	if err != nil {
		return nil, fmt.Errorf("failed to load case: %w", err)
	}
	if caseEnt == nil {
		return nil, fmt.Errorf("case %s: %w", req.CaseId, triage.ErrSessionNotFound)
	}

	rankCase := &ranking.Case{
		Id:               caseEnt.Id,
		Area:             caseEnt.Area,
		Subarea:          caseEnt.Subarea,
		UrgencyHours:     caseEnt.UrgencyHours,
		Latitude:         caseEnt.Latitude,
		Longitude:        caseEnt.Longitude,
		Complexity:       caseEnt.Complexity,
		SummaryEmbedding: caseEnt.SummaryEmbedding.Slice(),
	}

	area := caseEnt.Area
	subarea := caseEnt.Subarea
	if req.AreaOverride != "" {
		area = req.AreaOverride
	}
	if req.SubareaOverride != "" {
		subarea = req.SubareaOverride
	}

	candidates, err := s.fetchCandidates(ctx, uow, rankCase, area, subarea, req)
	if err != nil {
		return nil, err
	}

	topN := req.TopN
	if topN <= 0 {
		topN = defaultTopN
	}
	matches, err := s.engine.Rank(rankCase, candidates, ranking.Request{
		TopN:            topN,
		Preset:          req.Preset,
		AreaOverride:    req.AreaOverride,
		SubareaOverride: req.SubareaOverride,
		RadiusKm:        req.RadiusKm,
		ExcludeIds:      req.ExcludeIds,
	})
	if err != nil {
		return nil, err
	}

	if err := s.persistMatches(ctx, req.CaseId, matches); err != nil {
		return nil, err
	}

	presetUsed := ""
	lawyerIds := make([]uuid.UUID, len(matches))
	for i, m := range matches {
		lawyerIds[i] = m.LawyerId
		presetUsed = m.PresetUsed
	}

	if s.natsPublisher != nil && len(matches) > 0 {
		event := events.NewMatchesReady(req.CaseId, lawyerIds, presetUsed)
		if err := s.natsPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("RankingService", "Failed to publish MATCHES_READY", map[string]interface{}{
				"case_id": req.CaseId,
				"error":   err.Error(),
			})
		}
	}
	if s.wsHub != nil {
		s.wsHub.Publish(ctx, websocket.NewCaseEvent("matches_ready", req.CaseId, map[string]interface{}{
			"count": len(matches),
		}))
	}

	s.logger.Info("RankingService", "Ranking completed", map[string]interface{}{
		"case_id":    req.CaseId,
		"candidates": len(candidates),
		"matches":    len(matches),
	})

	return s.toRankResponse(req.CaseId, matches), nil
}

func (s *rankingService) fetchCandidates(ctx context.Context, uow unitofwork.UnitOfWork, c *ranking.Case, area, subarea string, req *dto.RankRequest) ([]*ranking.Lawyer, error) {
	tags := make([]string, 0, 2)
	if subarea != "" {
		tags = append(tags, subarea)
	}
	if area != "" {
		tags = append(tags, area)
	}

	specs := []specification.Specification{
		specification.HasAnyExpertiseTag{Tags: tags},
		specification.ExcludeIDs{IDs: req.ExcludeIds},
		specification.Pagination{Limit: candidateFetchLimit},
	}
	if c.Latitude != 0 || c.Longitude != 0 {
		specs = append(specs, specification.WithinBoundingBox{
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
			RadiusKm:  boundingRadius(req.RadiusKm),
		})
	}

	lawyers, err := uow.LawyerRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	ids := make([]uuid.UUID, len(lawyers))
	for i, l := range lawyers {
		ids[i] = l.Id
	}
	embeddings, err := uow.LawyerRepository().FindCaseEmbeddings(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load case embeddings: %w", err)
	}
	byLawyer := make(map[uuid.UUID][][]float32, len(lawyers))
	for _, e := range embeddings {
		byLawyer[e.LawyerId] = append(byLawyer[e.LawyerId], e.Embedding.Slice())
	}

	candidates := make([]*ranking.Lawyer, 0, len(lawyers))
	for _, l := range lawyers {
		candidates = append(candidates, &ranking.Lawyer{
			Id:            l.Id,
			ExpertiseTags: l.ExpertiseTags,
			Latitude:      l.Latitude,
			Longitude:     l.Longitude,
			KPI: ranking.LawyerKPI{
				SuccessRate:      l.SuccessRate,
				CasesClosed:      l.CasesClosed,
				OpenCases:        l.OpenCases,
				Capacity:         l.Capacity,
				AvgResponseHours: l.AvgResponseHours,
			},
			KPIBySubarea:             l.KPIBySubarea.Data(),
			SoftSkillScore:           l.SoftSkillScore,
			QualificationScore:       l.QualificationScore,
			FirmReputation:           l.FirmReputation,
			PriceLevel:               l.PriceLevel,
			YearsActive:              l.YearsActive,
			EngagementScore:          l.EngagementScore,
			Languages:                l.Languages,
			EventsAttended:           l.EventsAttended,
			ReviewAverage:            l.ReviewAverage,
			Exposure:                 l.Exposure,
			ProfileEmbedding:         l.ProfileEmbedding.Slice(),
			HistoricalCaseEmbeddings: byLawyer[l.Id],
		})
	}
	return candidates, nil
}

// persistMatches writes the ranked list transactionally: the old list for
// the case is replaced as a whole, and the (case_id, lawyer_id) upsert keeps
// concurrent re-ranks idempotent.
func (s *rankingService) persistMatches(ctx context.Context, caseId uuid.UUID, matches []ranking.Match) error {
	rows := make([]*entity.RankedMatch, len(matches))
	for i, m := range matches {
		rows[i] = &entity.RankedMatch{
			CaseId:           caseId,
			LawyerId:         m.LawyerId,
			FairScore:        m.FairScore,
			EquityScore:      m.EquityScore,
			RawScore:         m.RawScore,
			FeatureBreakdown: datatypes.NewJSONType(map[string]float64(m.FeatureBreakdown)),
			WeightsUsed:      datatypes.NewJSONType(map[string]float64(m.WeightsUsed)),
			PresetUsed:       m.PresetUsed,
			Position:         i + 1,
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := uow.MatchRepository().DeleteByCaseId(ctx, caseId); err != nil {
		_ = uow.Rollback()
		return fmt.Errorf("failed to clear previous matches: %w", err)
	}
	if err := uow.MatchRepository().UpsertAll(ctx, rows); err != nil {
		_ = uow.Rollback()
		return fmt.Errorf("failed to persist matches: %w", err)
	}
	return uow.Commit()
}

func (s *rankingService) GetMatches(ctx context.Context, caseId uuid.UUID) (*dto.RankResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.MatchRepository().FindAll(ctx,
		specification.ByCaseID{ID: caseId},
		specification.OrderBy{Field: "position"},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}

	res := &dto.RankResponse{CaseId: caseId, Matches: make([]dto.MatchDTO, 0, len(rows))}
	names, err := s.lawyerNames(ctx, uow, rows)
	if err != nil {
		// Best effort: matches still go out, just without display names.
		s.logger.Warn("RankingService", "Failed to load lawyer names", map[string]interface{}{
			"case_id": caseId,
			"error":   err.Error(),
		})
	}
	for _, row := range rows {
		res.Preset = row.PresetUsed
		res.Matches = append(res.Matches, dto.MatchDTO{
			LawyerId:         row.LawyerId,
			FullName:         names[row.LawyerId],
			FairScore:        row.FairScore,
			RawScore:         row.RawScore,
			EquityScore:      row.EquityScore,
			FeatureBreakdown: row.FeatureBreakdown.Data(),
			PresetUsed:       row.PresetUsed,
			Position:         row.Position,
		})
	}
	return res, nil
}

func (s *rankingService) ListPresets() *dto.ListPresetsResponse {
	names := ranking.PresetNames()
	sort.Strings(names)

	res := &dto.ListPresetsResponse{Presets: make([]dto.PresetDTO, 0, len(names))}
	for _, name := range names {
		weights, err := ranking.PresetByName(name)
		if err != nil {
			continue
		}
		res.Presets = append(res.Presets, dto.PresetDTO{Name: name, Weights: weights})
	}
	return res
}

func (s *rankingService) lawyerNames(ctx context.Context, uow unitofwork.UnitOfWork, rows []*entity.RankedMatch) (map[uuid.UUID]string, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.LawyerId
	}
	lawyers, err := uow.LawyerRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(lawyers))
	for _, l := range lawyers {
		names[l.Id] = l.FullName
	}
	return names, nil
}

func (s *rankingService) toRankResponse(caseId uuid.UUID, matches []ranking.Match) *dto.RankResponse {
	res := &dto.RankResponse{CaseId: caseId, Matches: make([]dto.MatchDTO, 0, len(matches))}
	for i, m := range matches {
		res.Preset = m.PresetUsed
		res.Matches = append(res.Matches, dto.MatchDTO{
			LawyerId:         m.LawyerId,
			FairScore:        m.FairScore,
			RawScore:         m.RawScore,
			EquityScore:      m.EquityScore,
			FeatureBreakdown: m.FeatureBreakdown,
			PresetUsed:       m.PresetUsed,
			Position:         i + 1,
		})
	}
	return res
}

// boundingRadius pads the SQL pre-filter box a little beyond the scoring
// radius so edge candidates are not cut off by the box approximation.
func boundingRadius(requested float64) float64 {
	r := requested
	if r <= 0 {
		r = 50
	}
	return r * 1.2
}
