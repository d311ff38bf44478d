package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/meetuphub/internal/app/store/audit"
	eventstore "github.com/dalemusser/meetuphub/internal/app/store/events"
	"github.com/dalemusser/meetuphub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/meetuphub/internal/app/system/normalize"
	"github.com/dalemusser/meetuphub/internal/app/system/notify"
	"github.com/dalemusser/meetuphub/internal/app/system/status"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventInput is the editable part of an event. Date is a calendar day; any
// time-of-day component is dropped.
type EventInput struct {
	Title       string
	Slug        string
	Date        time.Time
	Time        string
	Description string
}

// EventView is an event with its approved support requests and comments.
type EventView struct {
	Chapter  *models.Chapter         `json:"chapter"`
	Event    *models.Event           `json:"event"`
	Support  []models.SupportRequest `json:"support_requests"`
	Comments []models.Comment        `json:"comments"`
}

// Event loads an event by chapter and event slug.
func (s *Service) Event(ctx context.Context, chapterSlug, eventSlug string) (*EventView, error) {
	ch, ev, err := s.event(ctx, chapterSlug, eventSlug)
	if err != nil {
		return nil, err
	}
	support, err := s.Support.List(ctx, ev.ID, true)
	if err != nil {
		return nil, err
	}
	comments, err := s.Comments.List(ctx, models.EventOwner(ev.ID))
	if err != nil {
		return nil, err
	}
	return &EventView{Chapter: ch, Event: ev, Support: support, Comments: comments}, nil
}

// ListUpcoming returns the chapter's events dated today or later.
func (s *Service) ListUpcoming(ctx context.Context, chapterSlug string) ([]models.Event, error) {
	ch, err := s.chapter(ctx, chapterSlug)
	if err != nil {
		return nil, err
	}
	return s.Events.ListUpcoming(ctx, ch.ID, s.today())
}

// ListPast returns the chapter's events dated before today, newest first.
func (s *Service) ListPast(ctx context.Context, chapterSlug string) ([]models.Event, error) {
	ch, err := s.chapter(ctx, chapterSlug)
	if err != nil {
		return nil, err
	}
	return s.Events.ListPast(ctx, ch.ID, s.today())
}

// CreateEvent schedules an event. The slug must be unique in the chapter.
func (s *Service) CreateEvent(ctx context.Context, actor Actor, chapterSlug string, in EventInput) (*models.Event, error) {
	ch, err := s.organizerOf(ctx, actor, chapterSlug)
	if err != nil {
		return nil, err
	}
	slug := normalize.Slug(in.Slug)
	ev, err := s.Events.Create(ctx, models.Event{
		ChapterID:   ch.ID,
		Title:       in.Title,
		Slug:        slug,
		Date:        in.Date,
		Time:        in.Time,
		Description: htmlsanitize.Sanitize(in.Description),
		CreatedBy:   actor.ID,
	})
	if errors.Is(err, eventstore.ErrDuplicateSlug) {
		return nil, conflict(status.SlugAlreadyExists, slug)
	}
	if err != nil {
		return nil, err
	}
	s.record(ctx, audit.EventEventCreated, notify.EventCreated, ch, actor, ev.ID,
		map[string]string{"event": ev.Slug})
	return &ev, nil
}

// EditEvent rewrites an event and stamps last_updated.
func (s *Service) EditEvent(ctx context.Context, actor Actor, chapterSlug, eventSlug string, in EventInput) (*models.Event, error) {
	ch, err := s.organizerOf(ctx, actor, chapterSlug)
	if err != nil {
		return nil, err
	}
	ev, err := s.Events.GetByChapterAndSlug(ctx, ch.ID, eventSlug)
	if errors.Is(err, eventstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	slug := normalize.Slug(in.Slug)
	err = s.Events.Update(ctx, ev.ID, eventstore.Update{
		Title:       in.Title,
		Slug:        slug,
		Date:        in.Date,
		Time:        in.Time,
		Description: htmlsanitize.Sanitize(in.Description),
	})
	switch {
	case errors.Is(err, eventstore.ErrDuplicateSlug):
		return nil, conflict(status.SlugAlreadyExists, slug)
	case errors.Is(err, eventstore.ErrNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}
	s.record(ctx, audit.EventEventUpdated, notify.EventUpdated, ch, actor, ev.ID,
		map[string]string{"event": slug})
	return s.Events.GetByChapterAndSlug(ctx, ch.ID, slug)
}

// DeleteEvent removes an event with its RSVPs, support requests and
// comments.
func (s *Service) DeleteEvent(ctx context.Context, actor Actor, chapterSlug, eventSlug string) error {
	ch, err := s.organizerOf(ctx, actor, chapterSlug)
	if err != nil {
		return err
	}
	ev, err := s.Events.GetByChapterAndSlug(ctx, ch.ID, eventSlug)
	if errors.Is(err, eventstore.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	err = s.inTxn(ctx, func(ctx context.Context) error {
		if err := s.purgeEvents(ctx, []primitive.ObjectID{ev.ID}); err != nil {
			return err
		}
		if err := s.Events.Delete(ctx, ev.ID); err != nil {
			if errors.Is(err, eventstore.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("delete event: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.record(ctx, audit.EventEventDeleted, notify.EventDeleted, ch, actor, ev.ID,
		map[string]string{"event": ev.Slug})
	return nil
}
