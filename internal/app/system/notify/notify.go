// Package notify publishes chapter domain events to NATS so that other
// services (mailers, calendars, chat bridges) can react to workflow
// transitions. Publishing is fire-and-forget: a failed publish is logged and
// never fails the request that caused it.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Event types. The subject is "<prefix>.<type>".
const (
	ChapterCreated          = "chapter.created"
	ChapterUpdated          = "chapter.updated"
	ChapterDeleted          = "chapter.deleted"
	ChapterRequestSubmitted = "chapter_request.submitted"
	ChapterRequestApproved  = "chapter_request.approved"
	ChapterRequestRejected  = "chapter_request.rejected"
	MemberAdded             = "member.added"
	MemberRemoved           = "member.removed"
	OrganizerPromoted       = "organizer.promoted"
	OrganizerDemoted        = "organizer.demoted"
	JoinRequested           = "join.requested"
	JoinApproved            = "join.approved"
	JoinRejected            = "join.rejected"
	EventCreated            = "event.created"
	EventUpdated            = "event.updated"
	EventDeleted            = "event.deleted"
	RSVPSubmitted           = "rsvp.submitted"
	SupportRequested        = "support_request.created"
	SupportApproved         = "support_request.approved"
	SupportRejected         = "support_request.rejected"
)

// Event is the JSON payload published for each transition.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Chapter   string    `json:"chapter,omitempty"` // chapter slug
	SubjectID string    `json:"subject_id,omitempty"`
	ActorID   string    `json:"actor_id,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher sends domain events somewhere.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Subject builds the NATS subject for an event type.
func Subject(prefix, eventType string) string {
	prefix = strings.Trim(prefix, ". ")
	if prefix == "" {
		return eventType
	}
	return prefix + "." + eventType
}

// stamp fills ID and At when unset.
func stamp(e Event) Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	return e
}

/*─────────────────────────────────────────────────────────────────────────────*
| NATS                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// ConnectConfig holds NATS connection tuning.
type ConnectConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// Connect dials NATS with reconnect handling wired to zap.
func Connect(cfg ConnectConfig, logger *zap.Logger) (*nats.Conn, error) {
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = 10
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}

	options := []nats.Option{
		nats.Name("meetuphub"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("nats connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}
	return nc, nil
}

// NATSPublisher publishes events as JSON on a NATS connection.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
	log    *zap.Logger
}

// NewNATSPublisher wraps an established connection.
func NewNATSPublisher(nc *nats.Conn, prefix string, logger *zap.Logger) *NATSPublisher {
	return &NATSPublisher{nc: nc, prefix: prefix, log: logger}
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(ctx context.Context, e Event) {
	e = stamp(e)
	subject := Subject(p.prefix, e.Type)

	data, err := json.Marshal(e)
	if err != nil {
		p.log.Error("marshal domain event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.log.Warn("publish domain event failed",
			zap.String("subject", subject),
			zap.String("event_id", e.ID),
			zap.Error(err))
		return
	}
	p.log.Debug("published domain event", zap.String("subject", subject), zap.String("event_id", e.ID))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Nop & Recorder                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// Nop drops every event. Used when NATS is not configured.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) {}

// Recorder keeps published events in memory. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish implements Publisher.
func (r *Recorder) Publish(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, stamp(e))
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
