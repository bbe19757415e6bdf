package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/policy"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

type CourseResourceRepo interface {
	List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.CourseResource, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CourseResource, error)
	GetScoped(ctx context.Context, tx *gorm.DB, id uuid.UUID, pred policy.Predicate) (*types.CourseResource, error)
	Create(ctx context.Context, tx *gorm.DB, resource *types.CourseResource) (*types.CourseResource, error)
	Update(ctx context.Context, tx *gorm.DB, resource *types.CourseResource) (*types.CourseResource, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type courseResourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseResourceRepo(db *gorm.DB, baseLog *logger.Logger) CourseResourceRepo {
	return &courseResourceRepo{db: db, log: baseLog.With("repo", "CourseResourceRepo")}
}

func (r *courseResourceRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *courseResourceRepo) List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.CourseResource, error) {
	var results []*types.CourseResource
	if err := scoped(r.conn(tx).WithContext(ctx), pred).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseResourceRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CourseResource, error) {
	var resource types.CourseResource
	if err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&resource).Error; err != nil {
		return nil, notFound(err)
	}
	return &resource, nil
}

func (r *courseResourceRepo) GetScoped(ctx context.Context, tx *gorm.DB, id uuid.UUID, pred policy.Predicate) (*types.CourseResource, error) {
	var resource types.CourseResource
	if err := scoped(r.conn(tx).WithContext(ctx), pred).
		Where("id = ?", id).
		First(&resource).Error; err != nil {
		return nil, notFound(err)
	}
	return &resource, nil
}

func (r *courseResourceRepo) Create(ctx context.Context, tx *gorm.DB, resource *types.CourseResource) (*types.CourseResource, error) {
	if err := r.conn(tx).WithContext(ctx).Create(resource).Error; err != nil {
		return nil, err
	}
	return resource, nil
}

func (r *courseResourceRepo) Update(ctx context.Context, tx *gorm.DB, resource *types.CourseResource) (*types.CourseResource, error) {
	if err := r.conn(tx).WithContext(ctx).Save(resource).Error; err != nil {
		return nil, err
	}
	return resource, nil
}

func (r *courseResourceRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := r.conn(tx).WithContext(ctx).Where("id = ?", id).Delete(&types.CourseResource{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return policy.ErrNotFound
	}
	return nil
}
