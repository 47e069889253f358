package dto

import (
	"github.com/google/uuid"
)

type RankRequest struct {
	CaseId          uuid.UUID
	TopN            int         `json:"top_n" validate:"omitempty,min=1,max=100"`
	Preset          string      `json:"preset"`
	AreaOverride    string      `json:"area_override"`
	SubareaOverride string      `json:"subarea_override"`
	RadiusKm        float64     `json:"radius_km" validate:"omitempty,gt=0"`
	ExcludeIds      []uuid.UUID `json:"exclude_ids"`
}

// PublishRankCaseMessage is the internal bus payload that triggers an async
// ranking run after triage completes.
type PublishRankCaseMessage struct {
	CaseId uuid.UUID `json:"case_id"`
}

type MatchDTO struct {
	LawyerId         uuid.UUID          `json:"lawyer_id"`
	FullName         string             `json:"full_name,omitempty"`
	FairScore        float64            `json:"fair_score"`
	RawScore         float64            `json:"raw_score"`
	EquityScore      float64            `json:"equity_score"`
	FeatureBreakdown map[string]float64 `json:"feature_breakdown,omitempty"`
	PresetUsed       string             `json:"preset_used"`
	Position         int                `json:"position"`
}

type RankResponse struct {
	CaseId  uuid.UUID  `json:"case_id"`
	Preset  string     `json:"preset"`
	Matches []MatchDTO `json:"matches"`
}

type PresetDTO struct {
	Name    string             `json:"name"`
	Weights map[string]float64 `json:"weights"`
}

type ListPresetsResponse struct {
	Presets []PresetDTO `json:"presets"`
}
