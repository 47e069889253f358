package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RankedMatch is one (case, lawyer) ranking outcome. The composite key makes
// re-ranking idempotent: the same pair is upserted, never duplicated.
type RankedMatch struct {
	CaseId           uuid.UUID `gorm:"type:uuid;primaryKey"`
	LawyerId         uuid.UUID `gorm:"type:uuid;primaryKey"`
	FairScore        float64   `gorm:"index"`
	EquityScore      float64
	RawScore         float64
	FeatureBreakdown datatypes.JSONType[map[string]float64] `gorm:"type:jsonb"`
	WeightsUsed      datatypes.JSONType[map[string]float64] `gorm:"type:jsonb"`
	PresetUsed       string
	Position         int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (RankedMatch) TableName() string {
	return "ranked_matches"
}
