// Package opensearch builds opensearch-go clients for indexing engine events.
// The client is consumed by telemetry.OpenSearchSink.
package opensearch
