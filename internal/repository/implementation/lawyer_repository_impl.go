package implementation

import (
	"context"
	"errors"

	"ai-lawmatch-be/internal/entity"
	"ai-lawmatch-be/internal/repository/contract"
	"ai-lawmatch-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LawyerRepositoryImpl struct {
	db *gorm.DB
}

func NewLawyerRepository(db *gorm.DB) contract.LawyerRepository {
	return &LawyerRepositoryImpl{db: db}
}

func (r *LawyerRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *LawyerRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Lawyer, error) {
	var m entity.Lawyer
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *LawyerRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Lawyer, error) {
	var models []*entity.Lawyer
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}

func (r *LawyerRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&entity.Lawyer{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *LawyerRepositoryImpl) FindCaseEmbeddings(ctx context.Context, lawyerIds []uuid.UUID) ([]*entity.LawyerCaseEmbedding, error) {
	if len(lawyerIds) == 0 {
		return nil, nil
	}
	var models []*entity.LawyerCaseEmbedding
	err := r.db.WithContext(ctx).
		Where("lawyer_id IN ?", lawyerIds).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return models, nil
}
