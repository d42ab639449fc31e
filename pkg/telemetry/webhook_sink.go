package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/furfolio/enginekit/pkg/audit"
	"github.com/furfolio/enginekit/pkg/webhook"
)

// WebhookConfig configures a WebhookSink.
type WebhookConfig struct {
	URL        string        `env:"TELEMETRY_WEBHOOK_URL"`
	Secret     string        `env:"TELEMETRY_WEBHOOK_SECRET"`
	Timeout    time.Duration `env:"TELEMETRY_WEBHOOK_TIMEOUT" envDefault:"5s"`
	MaxRetries int           `env:"TELEMETRY_WEBHOOK_MAX_RETRIES" envDefault:"2"`
}

// WebhookSink posts events to an HTTP collector as {"events": [...]}.
type WebhookSink struct {
	url    string
	sender *webhook.Sender
}

var _ audit.BatchSink = (*WebhookSink)(nil)

type webhookPayload struct {
	Events []Document `json:"events"`
}

// NewWebhookSink builds a sink from cfg. Extra options are applied after
// the ones derived from cfg.
func NewWebhookSink(cfg WebhookConfig, opts ...webhook.Option) (*WebhookSink, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	base := []webhook.Option{
		webhook.WithTimeout(cfg.Timeout),
		webhook.WithRetries(cfg.MaxRetries, nil),
		webhook.WithCircuitBreaker(webhook.NewCircuitBreaker(5, 1, time.Minute)),
	}
	if cfg.Secret != "" {
		base = append(base, webhook.WithSecret(cfg.Secret))
	}
	return &WebhookSink{url: cfg.URL, sender: webhook.NewSender(append(base, opts...)...)}, nil
}

func (s *WebhookSink) TestMode() bool { return false }

func (s *WebhookSink) LogEvent(ctx context.Context, e audit.Event) error {
	return s.LogBatch(ctx, []audit.Event{e})
}

func (s *WebhookSink) LogBatch(ctx context.Context, events []audit.Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := s.sender.Send(ctx, s.url, webhookPayload{Events: newDocuments(events)}); err != nil {
		return errors.Join(ErrWebhookFailure, err)
	}
	return nil
}
