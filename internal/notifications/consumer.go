package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/shelflife/shelflife-backend/pkg/db"
	"github.com/shelflife/shelflife-backend/pkg/logger"
)

const consumerName = "notifications"

type dedupeStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

// Consumer persists notices published by PubSubSender.
type Consumer struct {
	repo         Repository
	subscription *pubsub.Subscriber
	dedupe       dedupeStore
	dedupeTTL    time.Duration
	logg         *logger.Logger
}

func NewConsumer(repo Repository, subscription *pubsub.Subscriber, dedupe dedupeStore, dedupeTTL time.Duration, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("notification subscription required")
	}
	if dedupe == nil {
		return nil, fmt.Errorf("dedupe store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		dedupe:       dedupe,
		dedupeTTL:    dedupeTTL,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.handle(ctx, msg.ID, msg.Data) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// handle returns true when the message should be acked. Undecodable
// messages are acked so they do not redeliver forever.
func (c *Consumer) handle(ctx context.Context, messageID string, data []byte) bool {
	logCtx := c.logg.WithField(ctx, "message_id", messageID)

	var notice Notice
	if err := json.Unmarshal(data, &notice); err != nil {
		c.logg.Error(logCtx, "failed to decode notice", err)
		return true
	}
	if notice.UserID == uuid.Nil || !notice.Type.IsValid() {
		c.logg.Warn(logCtx, "dropping notice without recipient or type")
		return true
	}
	if notice.ID == uuid.Nil {
		notice.ID = uuid.New()
	}

	key := "dedupe:" + consumerName + ":" + notice.ID.String()
	fresh, err := c.dedupe.SetNX(ctx, key, messageID, c.dedupeTTL)
	if err != nil {
		c.logg.Error(logCtx, "dedupe check failed", err)
		return false
	}
	if !fresh {
		c.logg.Info(logCtx, "notice already processed")
		return true
	}

	if err := c.repo.Create(ctx, notice.model()); err != nil {
		if db.IsUniqueViolation(err, "") {
			return true
		}
		c.logg.Error(logCtx, "failed to persist notice", err)
		_ = c.dedupe.Del(ctx, key)
		return false
	}
	return true
}
