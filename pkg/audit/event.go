package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/furfolio/enginekit/pkg/metadata"
)

// Event is one recorded engine occurrence. The recorder hands out events with
// their own metadata maps, so writes through Event.Metadata never reach a
// stored record.
type Event struct {
	ID        uuid.UUID    `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Text      string       `json:"text"`
	Metadata  metadata.Map `json:"metadata,omitempty"`
	Role      string       `json:"role,omitempty"`
	StaffID   string       `json:"staff_id,omitempty"`
	Subsystem string       `json:"subsystem"`
	Escalate  bool         `json:"escalate"`
}

// MetadataCopy returns a deep copy of the event metadata.
func (e Event) MetadataCopy() metadata.Map {
	return e.Metadata.Clone()
}

// clone returns e with its own copy of the metadata.
func (e Event) clone() Event {
	e.Metadata = e.Metadata.Clone()
	return e
}

// Fingerprint returns a stable sha256 over the event's canonical fields.
// Two events with the same content and timestamp share a fingerprint
// regardless of their IDs.
func (e Event) Fingerprint() string {
	data := strings.Join([]string{
		strconv.FormatInt(e.Timestamp.UnixNano(), 10),
		e.Subsystem,
		e.Role,
		e.StaffID,
		e.Text,
		e.Metadata.String(),
		strconv.FormatBool(e.Escalate),
	}, "|")

	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// TrailLine renders the event in the persisted audit trail format:
//
//	2025-01-02T15:04:05.123Z | BadgeEngine | groomer | staff-7 | BadgeAwarded
func (e Event) TrailLine() string {
	line := fmt.Sprintf("%s | %s | %s | %s | %s",
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		orDash(e.Subsystem),
		orDash(e.Role),
		orDash(e.StaffID),
		e.Text,
	)
	if e.Escalate {
		line += " | ESCALATE"
	}
	return line
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
