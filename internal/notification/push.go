package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	platformredis "docket/internal/platform/redis"
	id "docket/pkg/domain"
)

// RedisQueue hands notification ids to the push worker through a Redis list.
type RedisQueue struct {
	client *platformredis.Client
	key    string
}

func NewRedisQueue(client *platformredis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) Enqueue(ctx context.Context, notifID id.NotificationID) error {
	return q.client.LPush(ctx, q.key, notifID.String()).Err()
}

// PushSender delivers one notification out of band (mobile push, email
// bridge). Implementations decide the channel; the worker only records the
// outcome.
type PushSender interface {
	Send(ctx context.Context, n *Notification) error
}

// LogSender is the development sender: it logs the delivery and succeeds.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(_ context.Context, n *Notification) error {
	s.Logger.Info("push notification delivered",
		"notification_id", n.ID,
		"recipient_id", n.RecipientID,
		"type", n.Type,
	)
	return nil
}

// PushWorker drains the queue and flips each notification's push state to
// sent or failed. Unknown ids are skipped: the record may have been created
// by a store that later failed, and the queue must keep moving.
type PushWorker struct {
	client   *platformredis.Client
	key      string
	popBlock time.Duration
	store    Store
	sender   PushSender
	logger   *slog.Logger
}

func NewPushWorker(client *platformredis.Client, key string, popBlock time.Duration, store Store, sender PushSender, logger *slog.Logger) *PushWorker {
	if popBlock <= 0 {
		popBlock = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PushWorker{client: client, key: key, popBlock: popBlock, store: store, sender: sender, logger: logger}
}

func (w *PushWorker) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		values, err := w.client.BRPop(ctx, w.popBlock, w.key).Result()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				continue // timeout, poll again
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Warn("push queue pop failed", "error", err)
			continue
		}
		// BRPop returns [key, value].
		if len(values) != 2 {
			continue
		}
		w.deliver(ctx, values[1])
	}
}

func (w *PushWorker) deliver(ctx context.Context, raw string) {
	notifID, err := id.ParseNotificationID(raw)
	if err != nil {
		w.logger.Warn("push queue carried invalid notification id", "value", raw)
		return
	}
	n, err := w.store.FindByID(ctx, notifID)
	if err != nil {
		w.logger.Warn("push target not found, skipping", "notification_id", notifID)
		return
	}

	state := PushSent
	if err := w.sender.Send(ctx, n); err != nil {
		w.logger.Warn("push delivery failed",
			"notification_id", notifID,
			"recipient_id", n.RecipientID,
			"error", err,
		)
		state = PushFailed
	}
	if err := w.store.SetPushState(ctx, notifID, state); err != nil {
		w.logger.Warn("failed to record push state", "notification_id", notifID, "error", err)
	}
}
