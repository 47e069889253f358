package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Lawyer is a ranking candidate. Profile maintenance happens in another
// service; this service only reads.
type Lawyer struct {
	Id                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName           string
	Email              string
	ExpertiseTags      datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Latitude           float64
	Longitude          float64
	SuccessRate        float64
	CasesClosed        int
	OpenCases          int
	Capacity           int
	AvgResponseHours   float64
	KPIBySubarea       datatypes.JSONType[map[string]float64] `gorm:"type:jsonb"`
	SoftSkillScore     float64
	QualificationScore float64
	FirmReputation     float64
	PriceLevel         int
	YearsActive        float64
	EngagementScore    float64
	Languages          datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	EventsAttended     int
	ReviewAverage      float64
	Exposure           float64
	ProfileEmbedding   pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

func (Lawyer) TableName() string {
	return "lawyers"
}

// LawyerCaseEmbedding stores one embedding of a past case handled by a
// lawyer, used for the semantic feature.
type LawyerCaseEmbedding struct {
	Id        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LawyerId  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Embedding pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
}

func (LawyerCaseEmbedding) TableName() string {
	return "lawyer_case_embeddings"
}
