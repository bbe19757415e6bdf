package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/policy"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

type NotificationRepo interface {
	List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.Notification, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Notification, error)
	Create(ctx context.Context, tx *gorm.DB, notification *types.Notification) (*types.Notification, error)
	MarkRead(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	MarkAllRead(ctx context.Context, tx *gorm.DB, recipientID uuid.UUID) (int64, error)
}

type notificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return &notificationRepo{db: db, log: baseLog.With("repo", "NotificationRepo")}
}

func (r *notificationRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *notificationRepo) List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.Notification, error) {
	var results []*types.Notification
	if err := scoped(r.conn(tx).WithContext(ctx), pred).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *notificationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Notification, error) {
	var notification types.Notification
	if err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&notification).Error; err != nil {
		return nil, notFound(err)
	}
	return &notification, nil
}

func (r *notificationRepo) Create(ctx context.Context, tx *gorm.DB, notification *types.Notification) (*types.Notification, error) {
	if err := r.conn(tx).WithContext(ctx).Create(notification).Error; err != nil {
		return nil, err
	}
	return notification, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := r.conn(tx).WithContext(ctx).
		Model(&types.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return policy.ErrNotFound
	}
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, tx *gorm.DB, recipientID uuid.UUID) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&types.Notification{}).
		Where("recipient_id = ? AND NOT is_read", recipientID).
		Update("is_read", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
