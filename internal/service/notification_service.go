package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/crisis-service/internal/config"
	"github.com/spec-kit/crisis-service/internal/events"
)

// NotificationService forwards crisis events to external listeners.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	webhookURL string
	http       *resty.Client
	redis      *redis.Client
	channel    string
}

// NotificationDependencies bundles collaborators for notifications.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Config     config.NotificationConfig
	// Redis is optional; nil disables fan-out.
	Redis         *redis.Client
	RedisChannel  string
	WebhookClient *resty.Client
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	client := deps.WebhookClient
	if client == nil {
		client = resty.New().
			SetTimeout(deps.Config.WebhookTimeout()).
			SetRetryCount(0).
			SetHeader("Content-Type", "application/json")
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		webhookURL: strings.TrimSpace(deps.Config.WebhookURL),
		http:       client,
		redis:      deps.Redis,
		channel:    deps.RedisChannel,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		n.dispatcher.Subscribe(eventType, n.handleEvent)
	}
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.Int64("crisis_id", event.CrisisID),
		zap.String("event_id", event.ID),
		zap.Any("payload", event.Payload))

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}

	var failures []string
	if err := n.sendWebhook(ctx, event, body); err != nil {
		failures = append(failures, err.Error())
	}
	if err := n.publishRedis(ctx, event, body); err != nil {
		failures = append(failures, err.Error())
	}
	if len(failures) > 0 {
		return fmt.Errorf("notify %s: %s", event.Type, strings.Join(failures, "; "))
	}
	return nil
}

func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event, body []byte) error {
	if n.webhookURL == "" {
		return nil
	}
	resp, err := n.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Event-Type", string(event.Type)).
		SetBody(body).
		Post(n.webhookURL)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode())
	}
	n.logger.Debug("webhook delivered",
		zap.String("event_id", event.ID),
		zap.Int("status", resp.StatusCode()))
	return nil
}

func (n *NotificationService) publishRedis(ctx context.Context, event events.Event, body []byte) error {
	if n.redis == nil || n.channel == "" {
		return nil
	}
	if err := n.redis.Publish(ctx, n.channel, body).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	n.logger.Debug("event published to redis",
		zap.String("event_id", event.ID),
		zap.String("channel", n.channel))
	return nil
}
