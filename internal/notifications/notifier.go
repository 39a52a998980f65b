// Package notifications delivers per-user events over Redis pub/sub and WebSockets.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"time"

	"vidtube/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Event types pushed to users.
const (
	EventSubscriberAdded = "subscriber.added"
	EventCommentCreated  = "comment.created"
	EventLikeAdded       = "like.added"
)

const (
	userChannelPrefix  = "notifications:user:"
	userChannelPattern = userChannelPrefix + "*"
)

// Event is the JSON payload delivered to a user's sockets.
type Event struct {
	Type      string    `json:"type"`
	ActorID   uint      `json:"actorId"`
	Payload   any       `json:"payload,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier publishes events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a Notifier. A nil client turns every publish into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish sends ev to userID's channel. Failures are logged and swallowed;
// notifications never fail the request that caused them.
func (n *Notifier) Publish(ctx context.Context, userID uint, ev Event) {
	if n == nil || n.rdb == nil || userID == 0 {
		return
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		slog.WarnContext(ctx, "notification marshal failed", slog.String("type", ev.Type), slog.String("error", err.Error()))
		return
	}
	if err := n.rdb.Publish(ctx, UserChannel(userID), payload).Err(); err != nil {
		slog.WarnContext(ctx, "notification publish failed",
			slog.String("type", ev.Type),
			slog.Uint64("user_id", uint64(userID)),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.NotificationsPublished.WithLabelValues(ev.Type).Inc()
}

// Subscribe listens on every user channel and calls onMessage for each message
// until ctx is cancelled.
func (n *Notifier) Subscribe(ctx context.Context, onMessage func(userID uint, payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPattern)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", userChannelPattern, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				userID, err := ParseUserChannel(msg.Channel)
				if err != nil {
					slog.Warn("invalid notification channel", slog.String("channel", msg.Channel))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("panic in notification subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(userID, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// ParseUserChannel is the inverse of UserChannel.
func ParseUserChannel(channel string) (uint, error) {
	if len(channel) <= len(userChannelPrefix) || channel[:len(userChannelPrefix)] != userChannelPrefix {
		return 0, fmt.Errorf("not a user channel: %q", channel)
	}
	id, err := strconv.ParseUint(channel[len(userChannelPrefix):], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse user id: %w", err)
	}
	return uint(id), nil
}
