package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/shelflife/shelflife-backend/pkg/db/models"
	"github.com/shelflife/shelflife-backend/pkg/enums"
	"github.com/shelflife/shelflife-backend/pkg/logger"
)

// Notice is a notification about to be delivered to one user.
type Notice struct {
	ID               uuid.UUID              `json:"id"`
	UserID           uuid.UUID              `json:"user_id"`
	Type             enums.NotificationType `json:"type"`
	Title            string                 `json:"title"`
	Message          string                 `json:"message"`
	RelatedProductID *uuid.UUID             `json:"related_product_id,omitempty"`
	RelatedBatchID   *uuid.UUID             `json:"related_batch_id,omitempty"`
}

func (n Notice) model() *models.Notification {
	return &models.Notification{
		ID:               n.ID,
		UserID:           n.UserID,
		Type:             n.Type,
		Title:            n.Title,
		Message:          n.Message,
		RelatedProductID: n.RelatedProductID,
		RelatedBatchID:   n.RelatedBatchID,
	}
}

// Notifier delivers notices without reporting failure to the caller. The
// operation that triggered a notice has already committed.
type Notifier interface {
	Notify(ctx context.Context, notices ...Notice)
}

// Sender is a transport that can fail.
type Sender interface {
	Send(ctx context.Context, notices []Notice) error
}

// Dispatcher adapts a Sender into a Notifier, logging delivery failures.
type Dispatcher struct {
	sender Sender
	logg   *logger.Logger
}

func NewDispatcher(sender Sender, logg *logger.Logger) (*Dispatcher, error) {
	if sender == nil {
		return nil, fmt.Errorf("notification sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{sender: sender, logg: logg}, nil
}

func (d *Dispatcher) Notify(ctx context.Context, notices ...Notice) {
	if len(notices) == 0 {
		return
	}
	for i := range notices {
		if notices[i].ID == uuid.Nil {
			notices[i].ID = uuid.New()
		}
	}
	if err := d.sender.Send(ctx, notices); err != nil {
		logCtx := d.logg.WithFields(ctx, map[string]any{
			"notification_type":  string(notices[0].Type),
			"notification_count": len(notices),
		})
		d.logg.Error(logCtx, "notification delivery failed", err)
	}
}

// StoreSender writes notices straight to the notifications table.
type StoreSender struct {
	repo Repository
}

func NewStoreSender(repo Repository) (*StoreSender, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &StoreSender{repo: repo}, nil
}

func (s *StoreSender) Send(ctx context.Context, notices []Notice) error {
	rows := make([]*models.Notification, 0, len(notices))
	for _, n := range notices {
		rows = append(rows, n.model())
	}
	return s.repo.Create(ctx, rows...)
}

const attrNotificationType = "notification_type"

type publisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
}

// PubSubSender publishes one message per notice for the notification worker.
type PubSubSender struct {
	publisher publisher
}

func NewPubSubSender(p *pubsub.Publisher) (*PubSubSender, error) {
	if p == nil {
		return nil, fmt.Errorf("notification publisher required")
	}
	return &PubSubSender{publisher: p}, nil
}

func (s *PubSubSender) Send(ctx context.Context, notices []Notice) error {
	results := make([]*pubsub.PublishResult, 0, len(notices))
	for _, n := range notices {
		data, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("encode notice: %w", err)
		}
		results = append(results, s.publisher.Publish(ctx, &pubsub.Message{
			Data:       data,
			Attributes: map[string]string{attrNotificationType: string(n.Type)},
		}))
	}
	for _, res := range results {
		if _, err := res.Get(ctx); err != nil {
			return fmt.Errorf("publish notice: %w", err)
		}
	}
	return nil
}

// NopNotifier drops every notice.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, ...Notice) {}
