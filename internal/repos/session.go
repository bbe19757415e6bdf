package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/policy"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

type CourseSessionRepo interface {
	List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.CourseSession, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CourseSession, error)
	GetScoped(ctx context.Context, tx *gorm.DB, id uuid.UUID, pred policy.Predicate) (*types.CourseSession, error)
	Create(ctx context.Context, tx *gorm.DB, session *types.CourseSession) (*types.CourseSession, error)
	Update(ctx context.Context, tx *gorm.DB, session *types.CourseSession) (*types.CourseSession, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type courseSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseSessionRepo(db *gorm.DB, baseLog *logger.Logger) CourseSessionRepo {
	return &courseSessionRepo{db: db, log: baseLog.With("repo", "CourseSessionRepo")}
}

func (r *courseSessionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *courseSessionRepo) List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.CourseSession, error) {
	var results []*types.CourseSession
	if err := scoped(r.conn(tx).WithContext(ctx), pred).
		Order("starts_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CourseSession, error) {
	var session types.CourseSession
	if err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, notFound(err)
	}
	return &session, nil
}

func (r *courseSessionRepo) GetScoped(ctx context.Context, tx *gorm.DB, id uuid.UUID, pred policy.Predicate) (*types.CourseSession, error) {
	var session types.CourseSession
	if err := scoped(r.conn(tx).WithContext(ctx), pred).
		Where("id = ?", id).
		First(&session).Error; err != nil {
		return nil, notFound(err)
	}
	return &session, nil
}

func (r *courseSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.CourseSession) (*types.CourseSession, error) {
	if err := r.conn(tx).WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (r *courseSessionRepo) Update(ctx context.Context, tx *gorm.DB, session *types.CourseSession) (*types.CourseSession, error) {
	if err := r.conn(tx).WithContext(ctx).Save(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (r *courseSessionRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := r.conn(tx).WithContext(ctx).Where("id = ?", id).Delete(&types.CourseSession{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return policy.ErrNotFound
	}
	return nil
}
