package telemetry

import "github.com/furfolio/enginekit/pkg/audit"

// Document is the wire form of an event sent to remote backends.
type Document struct {
	audit.Event
	Hash string `json:"fingerprint"`
}

func newDocument(e audit.Event) Document {
	return Document{Event: e, Hash: e.Fingerprint()}
}

func newDocuments(events []audit.Event) []Document {
	docs := make([]Document, len(events))
	for i, e := range events {
		docs[i] = newDocument(e)
	}
	return docs
}
