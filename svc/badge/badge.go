package badge

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/furfolio/enginekit/pkg/audit"
	"github.com/furfolio/enginekit/pkg/metadata"
	"github.com/furfolio/enginekit/pkg/trail"
)

// Subsystem is the audit subsystem name of the badge engine.
const Subsystem = "BadgeEngine"

// Badge is an award a pet owner earns by visit count.
type Badge struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MinVisits int    `json:"min_visits"`
}

// Catalog is the default set of badges, ordered by MinVisits.
var Catalog = []Badge{
	{ID: "first-visit", Name: "First Visit", MinVisits: 1},
	{ID: "regular", Name: "Regular", MinVisits: 5},
	{ID: "loyal", Name: "Loyal Companion", MinVisits: 10},
	{ID: "vip", Name: "VIP Pup", MinVisits: 25},
}

// Engine awards and revokes badges. Every operation records an audit event
// and mirrors it into the persisted trail.
type Engine struct {
	*audit.Recorder

	trail   *trail.Trail
	catalog map[string]Badge

	mu     sync.RWMutex
	awards map[string]map[string]struct{}
}

// New builds the engine. Without WithTrail the trail lives in memory.
func New(sink audit.Sink, opts ...Option) (*Engine, error) {
	o := options{catalog: Catalog}
	for _, opt := range opts {
		opt(&o)
	}

	tr := o.trail
	if tr == nil {
		var err error
		if tr, err = trail.New(trail.NewMemoryStore(), Subsystem); err != nil {
			return nil, err
		}
	}

	rec, err := audit.NewRecorder(Subsystem, sink, append(o.recorder, audit.WithTrail(tr))...)
	if err != nil {
		return nil, err
	}

	catalog := make(map[string]Badge, len(o.catalog))
	for _, b := range o.catalog {
		catalog[b.ID] = b
	}

	return &Engine{
		Recorder: rec,
		trail:    tr,
		catalog:  catalog,
		awards:   make(map[string]map[string]struct{}),
	}, nil
}

// Award gives badgeID to ownerID. Awarding a badge the owner already holds
// is recorded and otherwise ignored.
func (e *Engine) Award(ctx context.Context, ownerID, badgeID string) error {
	b, err := e.lookup(ctx, "BadgeAwardRejected", ownerID, badgeID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	held := e.awards[ownerID]
	if held == nil {
		held = make(map[string]struct{})
		e.awards[ownerID] = held
	}
	_, already := held[b.ID]
	held[b.ID] = struct{}{}
	e.mu.Unlock()

	text := "BadgeAwarded"
	if already {
		text = "BadgeAlreadyAwarded"
	}
	e.RecordEvent(ctx, text, badgeMetadata(ownerID, b))
	return nil
}

// Revoke removes badgeID from ownerID.
func (e *Engine) Revoke(ctx context.Context, ownerID, badgeID string) error {
	b, err := e.lookup(ctx, "BadgeRevokeRejected", ownerID, badgeID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	_, held := e.awards[ownerID][b.ID]
	if held {
		delete(e.awards[ownerID], b.ID)
	}
	e.mu.Unlock()

	if !held {
		md := badgeMetadata(ownerID, b)
		md["reason"] = metadata.String("not awarded")
		e.RecordEvent(ctx, "BadgeRevokeRejected", md)
		return ErrNotAwarded
	}
	e.RecordEvent(ctx, "BadgeRevoked", badgeMetadata(ownerID, b))
	return nil
}

// Evaluate returns the catalog badges an owner with the given visit count
// qualifies for but does not hold yet. It does not award them.
func (e *Engine) Evaluate(ctx context.Context, ownerID string, visits int) []Badge {
	e.mu.RLock()
	held := e.awards[ownerID]
	var eligible []Badge
	for _, b := range e.catalog {
		if _, ok := held[b.ID]; !ok && visits >= b.MinVisits {
			eligible = append(eligible, b)
		}
	}
	e.mu.RUnlock()
	sortBadges(eligible)

	ids := make([]string, len(eligible))
	for i, b := range eligible {
		ids[i] = b.ID
	}
	e.RecordEvent(ctx, "BadgeEvaluated", metadata.Map{
		"owner":    metadata.String(ownerID),
		"visits":   metadata.Int(visits),
		"eligible": metadata.String(strings.Join(ids, ",")),
	})
	return eligible
}

// Awards returns the badges ownerID holds, ordered by MinVisits.
func (e *Engine) Awards(ownerID string) []Badge {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Badge, 0, len(e.awards[ownerID]))
	for id := range e.awards[ownerID] {
		out = append(out, e.catalog[id])
	}
	sortBadges(out)
	return out
}

// AuditTrail returns the persisted trail, oldest first.
func (e *Engine) AuditTrail(ctx context.Context) ([]string, error) {
	return e.trail.Entries(ctx)
}

func (e *Engine) lookup(ctx context.Context, rejected, ownerID, badgeID string) (Badge, error) {
	if strings.TrimSpace(ownerID) == "" {
		e.RecordEvent(ctx, rejected, metadata.Map{"badge": metadata.String(badgeID), "reason": metadata.String("missing owner")})
		return Badge{}, ErrEmptyOwner
	}
	b, ok := e.catalog[badgeID]
	if !ok {
		e.RecordEvent(ctx, rejected, metadata.Map{
			"owner":  metadata.String(ownerID),
			"badge":  metadata.String(badgeID),
			"reason": metadata.String("unknown badge"),
		})
		return Badge{}, errors.Join(ErrUnknownBadge, errors.New(badgeID))
	}
	return b, nil
}

func badgeMetadata(ownerID string, b Badge) metadata.Map {
	return metadata.Map{
		"owner": metadata.String(ownerID),
		"badge": metadata.String(b.ID),
		"name":  metadata.String(b.Name),
	}
}

func sortBadges(bs []Badge) {
	slices.SortFunc(bs, func(a, b Badge) int {
		if a.MinVisits != b.MinVisits {
			return a.MinVisits - b.MinVisits
		}
		return strings.Compare(a.ID, b.ID)
	})
}
