package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/repos"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

// Fanout turns portal events into notification deliveries. Delivery is
// best-effort: failures are logged and never surfaced to the triggering
// operation.
type Fanout interface {
	MessageSent(ctx context.Context, msg *types.ChatMessage)
	GradePosted(ctx context.Context, grade *types.Grade)
	AnnouncementPublished(ctx context.Context, ann *types.Announcement)
}

type fanoutService struct {
	log            *logger.Logger
	dispatch       NotificationDispatch
	enrollmentRepo repos.EnrollmentRepo

	// sync forces in-line delivery, for deterministic tests.
	sync       bool
	maxWorkers int
	timeout    time.Duration
}

type FanoutOption func(*fanoutService)

// WithSyncDelivery delivers before returning instead of in a background
// goroutine.
func WithSyncDelivery() FanoutOption {
	return func(s *fanoutService) { s.sync = true }
}

func WithFanoutWorkers(n int) FanoutOption {
	return func(s *fanoutService) {
		if n > 0 {
			s.maxWorkers = n
		}
	}
}

func NewFanout(dispatch NotificationDispatch, enrollmentRepo repos.EnrollmentRepo, baseLog *logger.Logger, opts ...FanoutOption) Fanout {
	s := &fanoutService{
		log:            baseLog.With("service", "Fanout"),
		dispatch:       dispatch,
		enrollmentRepo: enrollmentRepo,
		maxWorkers:     8,
		timeout:        30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *fanoutService) MessageSent(ctx context.Context, msg *types.ChatMessage) {
	recipient := msg.RecipientID
	messageID := msg.ID
	payload := map[string]any{
		"sender_id":  msg.SenderID.String(),
		"message_id": messageID.String(),
	}
	s.run(func(ctx context.Context) {
		if err := s.dispatch.Enqueue(ctx, recipient, types.NotificationMessage, "chat_message", messageID, payload); err != nil {
			s.log.Warn("message notification failed", "recipient_id", recipient, "error", err)
		}
	})
}

func (s *fanoutService) GradePosted(ctx context.Context, grade *types.Grade) {
	recipient := grade.StudentID
	gradeID := grade.ID
	payload := map[string]any{
		"module_id": grade.ModuleID.String(),
		"grade_id":  gradeID.String(),
	}
	s.run(func(ctx context.Context) {
		if err := s.dispatch.Enqueue(ctx, recipient, types.NotificationGrade, "grade", gradeID, payload); err != nil {
			s.log.Warn("grade notification failed", "recipient_id", recipient, "error", err)
		}
	})
}

func (s *fanoutService) AnnouncementPublished(ctx context.Context, ann *types.Announcement) {
	annID := ann.ID
	payload := map[string]any{
		"announcement_id": annID.String(),
		"title":           ann.Title,
	}

	if ann.ModuleID == nil {
		s.run(func(ctx context.Context) {
			if err := s.dispatch.Broadcast(ctx, types.NotificationAnnouncement, payload); err != nil {
				s.log.Warn("announcement broadcast failed", "announcement_id", annID, "error", err)
			}
		})
		return
	}

	moduleID := *ann.ModuleID
	s.run(func(ctx context.Context) {
		studentIDs, err := s.enrollmentRepo.ActiveStudentIDs(ctx, nil, moduleID)
		if err != nil {
			s.log.Warn("announcement audience lookup failed", "module_id", moduleID, "error", err)
			return
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.maxWorkers)
		for _, studentID := range studentIDs {
			sid := studentID
			g.Go(func() error {
				if err := s.dispatch.Enqueue(gctx, sid, types.NotificationAnnouncement, "announcement", annID, payload); err != nil {
					s.log.Warn("announcement notification failed", "recipient_id", sid, "error", err)
				}
				return nil
			})
		}
		_ = g.Wait()
	})
}

func (s *fanoutService) run(fn func(ctx context.Context)) {
	if s.sync {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		fn(ctx)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		fn(ctx)
	}()
}
