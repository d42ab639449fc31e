// Package telemetry provides the production analytics sinks for engine
// events: an HTTP webhook collector, an OpenSearch index, structured logs
// and a fan-out over several of them. Remote sinks implement
// audit.BatchSink so they can sit behind an audit.AsyncSink.
package telemetry
