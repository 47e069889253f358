package contract

import (
	"context"

	"ai-lawmatch-be/internal/entity"
	"ai-lawmatch-be/internal/repository/specification"

	"github.com/google/uuid"
)

// LawyerRepository reads candidate profiles. Profile writes belong to the
// provider-facing service, not this one.
type LawyerRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Lawyer, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Lawyer, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	FindCaseEmbeddings(ctx context.Context, lawyerIds []uuid.UUID) ([]*entity.LawyerCaseEmbedding, error)
}
