package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartTriageRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type StartTriageResponse struct {
	CaseId   uuid.UUID `json:"case_id"`
	Greeting string    `json:"greeting"`
	Status   string    `json:"status"`
}

type ContinueTriageRequest struct {
	CaseId  uuid.UUID
	Message string `json:"message" validate:"required"`
}

type ContinueTriageResponse struct {
	CaseId     uuid.UUID `json:"case_id"`
	Reply      string    `json:"reply"`
	Status     string    `json:"status"`
	Complexity string    `json:"complexity,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
}

type TriageResultDTO struct {
	Area              string   `json:"area"`
	Subarea           string   `json:"subarea"`
	UrgencyHours      int      `json:"urgency_hours"`
	Summary           string   `json:"summary"`
	Keywords          []string `json:"keywords,omitempty"`
	Sentiment         string   `json:"sentiment,omitempty"`
	Entities          []string `json:"entities,omitempty"`
	ComplexityFactors []string `json:"complexity_factors,omitempty"`
	StrategyUsed      string   `json:"strategy_used"`
	Source            string   `json:"source"`
	CompletionReason  string   `json:"completion_reason,omitempty"`
}

type TriageStatusResponse struct {
	CaseId    uuid.UUID        `json:"case_id"`
	Status    string           `json:"status"`
	StartedAt time.Time        `json:"started_at"`
	Result    *TriageResultDTO `json:"result,omitempty"`
	ErrReason string           `json:"err_reason,omitempty"`
}
