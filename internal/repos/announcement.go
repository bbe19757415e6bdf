package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/policy"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

type AnnouncementRepo interface {
	List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.Announcement, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Announcement, error)
	GetScoped(ctx context.Context, tx *gorm.DB, id uuid.UUID, pred policy.Predicate) (*types.Announcement, error)
	Create(ctx context.Context, tx *gorm.DB, announcement *types.Announcement) (*types.Announcement, error)
	Update(ctx context.Context, tx *gorm.DB, announcement *types.Announcement) (*types.Announcement, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type announcementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnnouncementRepo(db *gorm.DB, baseLog *logger.Logger) AnnouncementRepo {
	return &announcementRepo{db: db, log: baseLog.With("repo", "AnnouncementRepo")}
}

func (r *announcementRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *announcementRepo) List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.Announcement, error) {
	var results []*types.Announcement
	if err := scoped(r.conn(tx).WithContext(ctx), pred).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *announcementRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Announcement, error) {
	var announcement types.Announcement
	if err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&announcement).Error; err != nil {
		return nil, notFound(err)
	}
	return &announcement, nil
}

func (r *announcementRepo) GetScoped(ctx context.Context, tx *gorm.DB, id uuid.UUID, pred policy.Predicate) (*types.Announcement, error) {
	var announcement types.Announcement
	if err := scoped(r.conn(tx).WithContext(ctx), pred).
		Where("id = ?", id).
		First(&announcement).Error; err != nil {
		return nil, notFound(err)
	}
	return &announcement, nil
}

func (r *announcementRepo) Create(ctx context.Context, tx *gorm.DB, announcement *types.Announcement) (*types.Announcement, error) {
	if err := r.conn(tx).WithContext(ctx).Create(announcement).Error; err != nil {
		return nil, err
	}
	return announcement, nil
}

func (r *announcementRepo) Update(ctx context.Context, tx *gorm.DB, announcement *types.Announcement) (*types.Announcement, error) {
	if err := r.conn(tx).WithContext(ctx).Save(announcement).Error; err != nil {
		return nil, err
	}
	return announcement, nil
}

func (r *announcementRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := r.conn(tx).WithContext(ctx).Where("id = ?", id).Delete(&types.Announcement{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return policy.ErrNotFound
	}
	return nil
}
