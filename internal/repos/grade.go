package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/policy"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

type GradeRepo interface {
	List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.Grade, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Grade, error)
	GetScoped(ctx context.Context, tx *gorm.DB, id uuid.UUID, pred policy.Predicate) (*types.Grade, error)
	Create(ctx context.Context, tx *gorm.DB, grade *types.Grade) (*types.Grade, error)
	Update(ctx context.Context, tx *gorm.DB, grade *types.Grade) (*types.Grade, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type gradeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGradeRepo(db *gorm.DB, baseLog *logger.Logger) GradeRepo {
	return &gradeRepo{db: db, log: baseLog.With("repo", "GradeRepo")}
}

func (r *gradeRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *gradeRepo) List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.Grade, error) {
	var results []*types.Grade
	if err := scoped(r.conn(tx).WithContext(ctx), pred).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *gradeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Grade, error) {
	var grade types.Grade
	if err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&grade).Error; err != nil {
		return nil, notFound(err)
	}
	return &grade, nil
}

func (r *gradeRepo) GetScoped(ctx context.Context, tx *gorm.DB, id uuid.UUID, pred policy.Predicate) (*types.Grade, error) {
	var grade types.Grade
	if err := scoped(r.conn(tx).WithContext(ctx), pred).
		Where("id = ?", id).
		First(&grade).Error; err != nil {
		return nil, notFound(err)
	}
	return &grade, nil
}

func (r *gradeRepo) Create(ctx context.Context, tx *gorm.DB, grade *types.Grade) (*types.Grade, error) {
	if err := r.conn(tx).WithContext(ctx).Create(grade).Error; err != nil {
		return nil, err
	}
	return grade, nil
}

func (r *gradeRepo) Update(ctx context.Context, tx *gorm.DB, grade *types.Grade) (*types.Grade, error) {
	if err := r.conn(tx).WithContext(ctx).Save(grade).Error; err != nil {
		return nil, err
	}
	return grade, nil
}

func (r *gradeRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := r.conn(tx).WithContext(ctx).Where("id = ?", id).Delete(&types.Grade{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return policy.ErrNotFound
	}
	return nil
}
