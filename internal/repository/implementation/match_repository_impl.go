package implementation

import (
	"context"

	"ai-lawmatch-be/internal/entity"
	"ai-lawmatch-be/internal/repository/contract"
	"ai-lawmatch-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MatchRepositoryImpl struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) contract.MatchRepository {
	return &MatchRepositoryImpl{db: db}
}

func (r *MatchRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MatchRepositoryImpl) UpsertAll(ctx context.Context, matches []*entity.RankedMatch) error {
	if len(matches) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "case_id"}, {Name: "lawyer_id"}},
		UpdateAll: true,
	}).Create(&matches).Error
}

func (r *MatchRepositoryImpl) DeleteByCaseId(ctx context.Context, caseId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("case_id = ?", caseId).
		Delete(&entity.RankedMatch{}).Error
}

func (r *MatchRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RankedMatch, error) {
	var models []*entity.RankedMatch
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}
