// Package workflow holds the guarded state transitions of the portal: the
// chapter registry, chapter requests, the event catalog, the RSVP ledger,
// support requests and comment attachment.
//
// Every operation takes the acting principal explicitly and enforces its
// own fine-grained checks (organizer, author, staff). HTTP handlers only
// decide whether someone is signed in.
package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/meetuphub/internal/app/store/audit"
	chapterrequeststore "github.com/dalemusser/meetuphub/internal/app/store/chapterrequests"
	chapterstore "github.com/dalemusser/meetuphub/internal/app/store/chapters"
	commentstore "github.com/dalemusser/meetuphub/internal/app/store/comments"
	eventstore "github.com/dalemusser/meetuphub/internal/app/store/events"
	locationstore "github.com/dalemusser/meetuphub/internal/app/store/locations"
	rsvpstore "github.com/dalemusser/meetuphub/internal/app/store/rsvps"
	supportstore "github.com/dalemusser/meetuphub/internal/app/store/supportrequests"
	userstore "github.com/dalemusser/meetuphub/internal/app/store/users"
	"github.com/dalemusser/meetuphub/internal/app/system/auditlog"
	"github.com/dalemusser/meetuphub/internal/app/system/notify"
	"github.com/dalemusser/meetuphub/internal/app/system/txn"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Actor is the authenticated principal performing an operation.
type Actor struct {
	ID       primitive.ObjectID
	Username string
	IsStaff  bool
}

// Service wires the stores together behind the workflow operations.
type Service struct {
	client *mongo.Client

	Users     *userstore.Store
	Locations *locationstore.Store
	Chapters  *chapterstore.Store
	Requests  *chapterrequeststore.Store
	Events    *eventstore.Store
	RSVPs     *rsvpstore.Store
	Support   *supportstore.Store
	Comments  *commentstore.Store
	History   *audit.Store

	Audit  *auditlog.Logger
	Notify notify.Publisher
	Log    *zap.Logger

	// Now is the clock used for "today" in event listings.
	Now func() time.Time
}

// New builds a Service over db. auditLog and pub may be nil.
func New(db *mongo.Database, auditLog *auditlog.Logger, pub notify.Publisher, logger *zap.Logger) *Service {
	if pub == nil {
		pub = notify.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:    db.Client(),
		Users:     userstore.New(db),
		Locations: locationstore.New(db),
		Chapters:  chapterstore.New(db),
		Requests:  chapterrequeststore.New(db),
		Events:    eventstore.New(db),
		RSVPs:     rsvpstore.New(db),
		Support:   supportstore.New(db),
		Comments:  commentstore.New(db),
		History:   audit.New(db),
		Audit:     auditLog,
		Notify:    pub,
		Log:       logger,
		Now:       time.Now,
	}
}

func (s *Service) today() time.Time {
	return eventstore.Day(s.Now())
}

// inTxn runs fn as one unit of work.
func (s *Service) inTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	return txn.Run(ctx, s.client, s.Log, fn)
}

// record emits the audit entry (when auditType is set) and the domain event
// for a completed transition.
func (s *Service) record(ctx context.Context, auditType, eventType string, ch *models.Chapter, actor Actor, subject primitive.ObjectID, details map[string]string) {
	var chapterID primitive.ObjectID
	var slug string
	if ch != nil {
		chapterID = ch.ID
		slug = ch.Slug
	}
	if auditType != "" {
		var target *primitive.ObjectID
		if !subject.IsZero() {
			target = &subject
		}
		s.Audit.ChapterAction(ctx, auditType, chapterID, actor.ID, target, details)
	}
	e := notify.Event{Type: eventType, Chapter: slug, ActorID: actor.ID.Hex()}
	if !subject.IsZero() {
		e.SubjectID = subject.Hex()
	}
	s.Notify.Publish(ctx, e)
}

// chapter resolves a slug.
func (s *Service) chapter(ctx context.Context, slug string) (*models.Chapter, error) {
	ch, err := s.Chapters.GetBySlug(ctx, slug)
	if errors.Is(err, chapterstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	return ch, err
}

// user resolves a username.
func (s *Service) user(ctx context.Context, username string) (*models.User, error) {
	u, err := s.Users.GetByUsername(ctx, username)
	if errors.Is(err, userstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	return u, err
}

// event resolves a chapter/event slug pair. An event that exists under a
// different chapter is ErrNotFound.
func (s *Service) event(ctx context.Context, chapterSlug, eventSlug string) (*models.Chapter, *models.Event, error) {
	ch, err := s.chapter(ctx, chapterSlug)
	if err != nil {
		return nil, nil, err
	}
	ev, err := s.Events.GetByChapterAndSlug(ctx, ch.ID, eventSlug)
	if errors.Is(err, eventstore.ErrNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return ch, ev, nil
}
