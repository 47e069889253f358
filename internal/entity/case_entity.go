package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Case is the structured record produced by triage. Immutable once written;
// ranking only reads it.
type Case struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId            uuid.UUID `gorm:"type:uuid;index"`
	Area              string    `gorm:"index"`
	Subarea           string    `gorm:"index"`
	UrgencyHours      int
	Latitude          float64
	Longitude         float64
	Complexity        string
	Summary           string                      `gorm:"type:text"`
	Keywords          datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Sentiment         string
	Entities          datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	ComplexityFactors datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	StrategyUsed      string
	Source            string
	CompletionReason  string
	SummaryEmbedding  pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 / nomic dimensions
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}

func (Case) TableName() string {
	return "cases"
}
