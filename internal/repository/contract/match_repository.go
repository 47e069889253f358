package contract

import (
	"context"

	"ai-lawmatch-be/internal/entity"
	"ai-lawmatch-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MatchRepository interface {
	// UpsertAll writes the ranked list for a case. Re-ranking the same case
	// updates existing (case_id, lawyer_id) rows instead of duplicating them.
	UpsertAll(ctx context.Context, matches []*entity.RankedMatch) error
	DeleteByCaseId(ctx context.Context, caseId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RankedMatch, error)
}
