package telemetry

import "errors"

var (
	ErrNoSinks        = errors.New("telemetry: at least one sink is required")
	ErrMissingURL     = errors.New("telemetry: webhook url is required")
	ErrMissingIndex   = errors.New("telemetry: opensearch index is required")
	ErrBulkRequest    = errors.New("telemetry: opensearch bulk request failed")
	ErrBulkRejected   = errors.New("telemetry: opensearch rejected documents")
	ErrWebhookFailure = errors.New("telemetry: webhook delivery failed")
)
