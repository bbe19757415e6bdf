package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/policy"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

type ChatMessageRepo interface {
	List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.ChatMessage, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ChatMessage, error)
	GetScoped(ctx context.Context, tx *gorm.DB, id uuid.UUID, pred policy.Predicate) (*types.ChatMessage, error)
	Create(ctx context.Context, tx *gorm.DB, message *types.ChatMessage) (*types.ChatMessage, error)
	MarkRead(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type chatMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatMessageRepo(db *gorm.DB, baseLog *logger.Logger) ChatMessageRepo {
	return &chatMessageRepo{db: db, log: baseLog.With("repo", "ChatMessageRepo")}
}

func (r *chatMessageRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *chatMessageRepo) List(ctx context.Context, tx *gorm.DB, pred policy.Predicate) ([]*types.ChatMessage, error) {
	var results []*types.ChatMessage
	if err := scoped(r.conn(tx).WithContext(ctx), pred).
		Order("created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *chatMessageRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ChatMessage, error) {
	var message types.ChatMessage
	if err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&message).Error; err != nil {
		return nil, notFound(err)
	}
	return &message, nil
}

func (r *chatMessageRepo) GetScoped(ctx context.Context, tx *gorm.DB, id uuid.UUID, pred policy.Predicate) (*types.ChatMessage, error) {
	var message types.ChatMessage
	if err := scoped(r.conn(tx).WithContext(ctx), pred).
		Where("id = ?", id).
		First(&message).Error; err != nil {
		return nil, notFound(err)
	}
	return &message, nil
}

func (r *chatMessageRepo) Create(ctx context.Context, tx *gorm.DB, message *types.ChatMessage) (*types.ChatMessage, error) {
	if err := r.conn(tx).WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

func (r *chatMessageRepo) MarkRead(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := r.conn(tx).WithContext(ctx).
		Model(&types.ChatMessage{}).
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
