// Package pubsub wraps the Pub/Sub v2 client used to fan notifications out
// from the API to the notification worker.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/shelflife/shelflife-backend/pkg/config"
	"github.com/shelflife/shelflife-backend/pkg/logger"
)

// Role selects which resource the client must be able to reach. The API
// only publishes; the notification worker only receives.
type Role int

const (
	RolePublisher Role = iota + 1
	RoleSubscriber
)

func (r Role) String() string {
	switch r {
	case RolePublisher:
		return "publisher"
	case RoleSubscriber:
		return "subscriber"
	default:
		return "unknown"
	}
}

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

type Client struct {
	ps        *pubsub.Client
	projectID string
	cfg       config.PubSubConfig
	role      Role

	mu        sync.Mutex
	publisher *pubsub.Publisher
}

// NewClient connects and verifies that the topic (publisher) or
// subscription (subscriber) exists.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, role Role, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}
	if role != RolePublisher && role != RoleSubscriber {
		return nil, fmt.Errorf("unsupported pubsub role %d", role)
	}

	ps, err := pubsub.NewClient(ctx, projectID, gcp.ClientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	c := &Client{ps: ps, projectID: projectID, cfg: cfg, role: role}
	if err := c.Ping(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"role":         role.String(),
			"topic":        cfg.NotificationTopic,
			"subscription": cfg.NotificationSubscription,
		}), "pubsub client initialized")
	}
	return c, nil
}

// Ping checks the resource this client's role depends on.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.ps == nil {
		return errNotInitialized
	}
	switch c.role {
	case RolePublisher:
		name, err := c.resource("topics", c.cfg.NotificationTopic)
		if err != nil {
			return err
		}
		_, err = c.ps.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: name})
		return describe("topic", c.cfg.NotificationTopic, err)
	default:
		name, err := c.resource("subscriptions", c.cfg.NotificationSubscription)
		if err != nil {
			return err
		}
		_, err = c.ps.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{Subscription: name})
		return describe("subscription", c.cfg.NotificationSubscription, err)
	}
}

func describe(kind, name string, err error) error {
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("%s %q does not exist", kind, name)
	default:
		return fmt.Errorf("checking %s %q: %w", kind, name, err)
	}
}

// NotificationPublisher returns the shared publisher for the notification
// topic. It is flushed and stopped by Close.
func (c *Client) NotificationPublisher() (*pubsub.Publisher, error) {
	if c == nil || c.ps == nil {
		return nil, errNotInitialized
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publisher != nil {
		return c.publisher, nil
	}
	name, err := c.resource("topics", c.cfg.NotificationTopic)
	if err != nil {
		return nil, err
	}
	c.publisher = c.ps.Publisher(name)
	return c.publisher, nil
}

// NotificationSubscriber returns a receiver for the notification
// subscription with flow control applied.
func (c *Client) NotificationSubscriber() (*pubsub.Subscriber, error) {
	if c == nil || c.ps == nil {
		return nil, errNotInitialized
	}
	name, err := c.resource("subscriptions", c.cfg.NotificationSubscription)
	if err != nil {
		return nil, err
	}
	sub := c.ps.Subscriber(name)
	if c.cfg.MaxOutstanding > 0 {
		sub.ReceiveSettings.MaxOutstandingMessages = c.cfg.MaxOutstanding
	}
	return sub, nil
}

func (c *Client) Close() error {
	if c == nil || c.ps == nil {
		return nil
	}
	c.mu.Lock()
	if c.publisher != nil {
		c.publisher.Stop()
		c.publisher = nil
	}
	c.mu.Unlock()
	return c.ps.Close()
}

func (c *Client) resource(kind, name string) (string, error) {
	full := resourceName(c.projectID, kind, name)
	if full == "" {
		return "", fmt.Errorf("pubsub %s name is required", strings.TrimSuffix(kind, "s"))
	}
	return full, nil
}

// resourceName expands a bare ID into projects/<p>/<kind>/<id>; full
// resource names pass through unchanged.
func resourceName(projectID, kind, name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/"+kind+"/") {
		return n
	}
	p := strings.TrimSpace(projectID)
	if p == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/%s/%s", p, kind, n)
}
