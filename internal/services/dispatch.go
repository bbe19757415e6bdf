package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/campusconnect/campusconnect-backend/internal/pkg/logger"
	"github.com/campusconnect/campusconnect-backend/internal/repos"
	"github.com/campusconnect/campusconnect-backend/internal/types"
	"github.com/campusconnect/campusconnect-backend/internal/utils"
)

// NotificationDispatch is the delivery collaborator: fire-and-forget,
// at-least-once. Broadcast covers general announcements, where enumerating
// "all users" is the dispatcher's problem, not the fan-out's.
type NotificationDispatch interface {
	Enqueue(ctx context.Context, recipientID uuid.UUID, kind types.NotificationKind, related string, relatedID uuid.UUID, payload map[string]any) error
	Broadcast(ctx context.Context, kind types.NotificationKind, payload map[string]any) error
}

// storeDispatch materializes notifications as rows in the portal's own
// notification table. It is the default in-process dispatcher.
type storeDispatch struct {
	log              *logger.Logger
	notificationRepo repos.NotificationRepo
}

func NewStoreDispatch(notificationRepo repos.NotificationRepo, baseLog *logger.Logger) NotificationDispatch {
	return &storeDispatch{
		log:              baseLog.With("service", "StoreDispatch"),
		notificationRepo: notificationRepo,
	}
}

func (d *storeDispatch) Enqueue(ctx context.Context, recipientID uuid.UUID, kind types.NotificationKind, related string, relatedID uuid.UUID, payload map[string]any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	_, err = d.notificationRepo.Create(ctx, nil, &types.Notification{
		RecipientID: recipientID,
		Kind:        kind,
		RelatedKind: related,
		RelatedID:   &relatedID,
		Payload:     raw,
	})
	return err
}

func (d *storeDispatch) Broadcast(ctx context.Context, kind types.NotificationKind, payload map[string]any) error {
	// Enumerating every account lives with the batch delivery worker, not
	// here. Rows for broadcast audiences are written by that worker.
	d.log.Debug("broadcast delegated to batch delivery", "kind", kind)
	return nil
}

// dispatchEnvelope is the wire form published to the delivery workers.
type dispatchEnvelope struct {
	RecipientID string                 `json:"recipient_id,omitempty"`
	Kind        types.NotificationKind `json:"kind"`
	RelatedKind string                 `json:"related_kind,omitempty"`
	RelatedID   string                 `json:"related_id,omitempty"`
	Payload     map[string]any         `json:"payload,omitempty"`
	Broadcast   bool                   `json:"broadcast,omitempty"`
}

// redisDispatch hands notifications to external delivery workers over a
// redis channel.
type redisDispatch struct {
	log     *logger.Logger
	rdb     *redis.Client
	channel string
}

func NewRedisDispatch(log *logger.Logger) (NotificationDispatch, error) {
	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	channel := strings.TrimSpace(utils.GetEnv("REDIS_NOTIFY_CHANNEL", "notifications", log))
	dialTimeout := utils.GetEnvAsInt("REDIS_DIAL_TIMEOUT", 5, log)

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: time.Duration(dialTimeout) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisDispatch{
		log:     log.With("service", "RedisDispatch"),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (d *redisDispatch) Enqueue(ctx context.Context, recipientID uuid.UUID, kind types.NotificationKind, related string, relatedID uuid.UUID, payload map[string]any) error {
	return d.publish(ctx, dispatchEnvelope{
		RecipientID: recipientID.String(),
		Kind:        kind,
		RelatedKind: related,
		RelatedID:   relatedID.String(),
		Payload:     payload,
	})
}

func (d *redisDispatch) Broadcast(ctx context.Context, kind types.NotificationKind, payload map[string]any) error {
	return d.publish(ctx, dispatchEnvelope{Kind: kind, Payload: payload, Broadcast: true})
}

func (d *redisDispatch) publish(ctx context.Context, env dispatchEnvelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return d.rdb.Publish(ctx, d.channel, raw).Err()
}
