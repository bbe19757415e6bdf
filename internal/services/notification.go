package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/policy"
	"github.com/campusconnect/campusconnect-backend/internal/repos"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

type NotificationService interface {
	List(ctx context.Context, p policy.Principal, filters []policy.Filter) ([]*types.Notification, error)
	MarkRead(ctx context.Context, p policy.Principal, id uuid.UUID) error
	MarkAllRead(ctx context.Context, p policy.Principal) (int64, error)
}

type notificationService struct {
	log              *logger.Logger
	engine           *policy.Engine
	notificationRepo repos.NotificationRepo
}

func NewNotificationService(engine *policy.Engine, notificationRepo repos.NotificationRepo, baseLog *logger.Logger) NotificationService {
	return &notificationService{
		log:              baseLog.With("service", "NotificationService"),
		engine:           engine,
		notificationRepo: notificationRepo,
	}
}

func (s *notificationService) List(ctx context.Context, p policy.Principal, filters []policy.Filter) ([]*types.Notification, error) {
	pred, err := s.engine.Scope(p, policy.KindNotification, filters)
	if err != nil {
		return nil, err
	}
	return s.notificationRepo.List(ctx, nil, pred)
}

func (s *notificationService) MarkRead(ctx context.Context, p policy.Principal, id uuid.UUID) error {
	current, err := s.notificationRepo.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}
	d := s.engine.Authorize(p, policy.ActionMarkRead, policy.Target{Kind: policy.KindNotification, Object: current})
	if d.Denied() {
		return d.Err()
	}
	return s.notificationRepo.MarkRead(ctx, nil, id)
}

// MarkAllRead flips every unread notification of the caller. No authorize
// round-trip per row: the update is bounded to the caller's own recipient id.
func (s *notificationService) MarkAllRead(ctx context.Context, p policy.Principal) (int64, error) {
	n, err := s.notificationRepo.MarkAllRead(ctx, nil, p.ID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Debug("notifications marked read", "recipient_id", p.ID, "count", n)
	}
	return n, nil
}
