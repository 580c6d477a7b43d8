// Package notify publishes issue lifecycle events for other services.
// Delivery is at-most-once; a failed publish is logged and dropped.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"issueapi/internal/config"
)

const (
	EventCreated = "issue.created"
	EventUpdated = "issue.updated"
	EventDeleted = "issue.deleted"
)

// Event is the published message body.
type Event struct {
	Type      string    `json:"type"`
	IssueID   string    `json:"issue_id"`
	ActorID   string    `json:"actor_id,omitempty"`
	Status    string    `json:"status,omitempty"`
	Changes   []string  `json:"changes,omitempty"`
	Timestamp time.Time `json:"ts"`
}

// Publisher sends events. Implementations must not block the caller for long
// and must not return delivery failures.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) {}

type publishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher publishes JSON events on a Redis pub/sub channel.
type RedisPublisher struct {
	client  publishClient
	channel string
	timeout time.Duration
	log     *zap.Logger
}

// NewRedis returns a Redis publisher, or Noop when cfg.Addr is empty. The
// returned close function releases the client.
func NewRedis(cfg config.RedisConfig, log *zap.Logger) (Publisher, func() error) {
	if cfg.Addr == "" {
		return Noop{}, func() error { return nil }
	}
	cli := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return newRedisPublisher(cli, cfg.Channel, log), cli.Close
}

func newRedisPublisher(cli publishClient, channel string, log *zap.Logger) *RedisPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisPublisher{client: cli, channel: channel, timeout: 2 * time.Second, log: log}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("notify_marshal_failed", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		p.log.Warn("notify_publish_failed",
			zap.String("channel", p.channel),
			zap.String("type", ev.Type),
			zap.String("issue_id", ev.IssueID),
			zap.Error(err),
		)
	}
}
