// Package audit implements the recording path shared by every Furfolio engine.
//
// A Recorder turns a domain occurrence into an Event and keeps the most recent
// ones for diagnostics. RecordEvent performs these steps:
//
//  1. classify the text and metadata with an escalation.Classifier;
//  2. resolve the (role, staff ID, subsystem) identity from the call context
//     or the session;
//  3. build an immutable Event;
//  4. forward it to the analytics Sink and wait for it, bounded by a timeout;
//  5. append it to a fixed-capacity ring buffer, whatever the sink did;
//  6. mirror it into the persisted audit trail, if one is configured.
//
// Logging never fails from the caller's point of view. Sink and trail errors
// are reported through slog and the Prometheus collectors in Metrics.
//
//	rec, err := audit.NewRecorder("PupdateEngine", audit.NewNullSink(true),
//		audit.WithCapacity(20),
//		audit.WithSession(session),
//	)
//	if err != nil {
//		return err
//	}
//	rec.RecordEvent(ctx, "AnalysisStarted", metadata.Map{"photo": metadata.String(id)})
//	fmt.Println(rec.DiagnosticsSummary()) // PupdateEngine: 1 recent events (test mode: true)
//
// # Sinks
//
// NullSink prints one console line per event in test mode and nothing
// otherwise. AsyncSink decouples a slow BatchSink from the recorder by
// queueing events for a background worker. Production sinks live in the
// telemetry package.
//
// # Redaction
//
// MetadataFilter removes, hashes or masks sensitive fields before an event is
// stored or forwarded. Escalation is decided before redaction, so a hashed
// field can still trigger it.
package audit
