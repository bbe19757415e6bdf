package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/policy"
	"github.com/campusconnect/campusconnect-backend/internal/repos"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

type ChatService interface {
	Send(ctx context.Context, p policy.Principal, recipientID uuid.UUID, body string) (*types.ChatMessage, error)
	List(ctx context.Context, p policy.Principal, filters []policy.Filter) ([]*types.ChatMessage, error)
	ListConversation(ctx context.Context, p policy.Principal, otherID uuid.UUID) ([]*types.ChatMessage, error)
	MarkRead(ctx context.Context, p policy.Principal, messageID uuid.UUID) error
}

type chatService struct {
	log         *logger.Logger
	engine      *policy.Engine
	messageRepo repos.ChatMessageRepo
	fanout      Fanout
}

func NewChatService(engine *policy.Engine, messageRepo repos.ChatMessageRepo, fanout Fanout, baseLog *logger.Logger) ChatService {
	return &chatService{
		log:         baseLog.With("service", "ChatService"),
		engine:      engine,
		messageRepo: messageRepo,
		fanout:      fanout,
	}
}

// Send always stamps the caller as sender; there is no way to send on
// another user's behalf.
func (s *chatService) Send(ctx context.Context, p policy.Principal, recipientID uuid.UUID, body string) (*types.ChatMessage, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}
	msg := &types.ChatMessage{SenderID: p.ID, RecipientID: recipientID, Body: body}
	d := s.engine.Authorize(p, policy.ActionCreate, policy.Target{Kind: policy.KindChatMessage, Object: msg})
	if d.Denied() {
		return nil, d.Err()
	}
	created, err := s.messageRepo.Create(ctx, nil, msg)
	if err != nil {
		return nil, err
	}
	s.fanout.MessageSent(ctx, created)
	return created, nil
}

func (s *chatService) List(ctx context.Context, p policy.Principal, filters []policy.Filter) ([]*types.ChatMessage, error) {
	pred, err := s.engine.Scope(p, policy.KindChatMessage, filters)
	if err != nil {
		return nil, err
	}
	return s.messageRepo.List(ctx, nil, pred)
}

// ListConversation returns the two-way thread between the caller and
// otherID. The conversation restriction is ANDed onto the caller's scope,
// so it can never expose a third party's messages.
func (s *chatService) ListConversation(ctx context.Context, p policy.Principal, otherID uuid.UUID) ([]*types.ChatMessage, error) {
	pred, err := s.engine.Scope(p, policy.KindChatMessage, nil)
	if err != nil {
		return nil, err
	}
	thread := policy.And(pred, policy.Or(
		policy.Eq("sender_id", otherID),
		policy.Eq("recipient_id", otherID),
	))
	return s.messageRepo.List(ctx, nil, thread)
}

func (s *chatService) MarkRead(ctx context.Context, p policy.Principal, messageID uuid.UUID) error {
	current, err := s.messageRepo.GetByID(ctx, nil, messageID)
	if err != nil {
		return err
	}
	d := s.engine.Authorize(p, policy.ActionMarkRead, policy.Target{Kind: policy.KindChatMessage, Object: current})
	if d.Denied() {
		return d.Err()
	}
	return s.messageRepo.MarkRead(ctx, nil, messageID)
}
