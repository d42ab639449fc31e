// Package webhook delivers JSON payloads over HTTP with retries, backoff,
// HMAC signing and a per-endpoint circuit breaker. The telemetry package
// uses it to forward engine events to an external collector.
//
//	sender := webhook.NewSender(
//		webhook.WithSecret(os.Getenv("TELEMETRY_WEBHOOK_SECRET")),
//		webhook.WithRetries(3, webhook.DefaultBackoff()),
//		webhook.WithCircuitBreaker(webhook.NewCircuitBreaker(5, 1, time.Minute)),
//	)
//	err := sender.Send(ctx, url, event)
//
// Receivers verify deliveries with ParseSignature and Verify.
package webhook
