package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/meetuphub/internal/app/policy/chapterpolicy"
	"github.com/dalemusser/meetuphub/internal/app/store/audit"
	supportstore "github.com/dalemusser/meetuphub/internal/app/store/supportrequests"
	"github.com/dalemusser/meetuphub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/meetuphub/internal/app/system/notify"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SupportView is one support request with its comments.
type SupportView struct {
	Chapter  *models.Chapter        `json:"chapter"`
	Event    *models.Event          `json:"event"`
	Request  *models.SupportRequest `json:"support_request"`
	Comments []models.Comment       `json:"comments"`
}

type supportTarget struct {
	ch *models.Chapter
	ev *models.Event
	sr *models.SupportRequest
}

func (s *Service) supportRequest(ctx context.Context, chapterSlug, eventSlug string, id primitive.ObjectID) (supportTarget, error) {
	ch, ev, err := s.event(ctx, chapterSlug, eventSlug)
	if err != nil {
		return supportTarget{}, err
	}
	sr, err := s.Support.Get(ctx, ev.ID, id)
	if errors.Is(err, supportstore.ErrNotFound) {
		return supportTarget{}, ErrNotFound
	}
	if err != nil {
		return supportTarget{}, err
	}
	return supportTarget{ch: ch, ev: ev, sr: sr}, nil
}

func supportText(description string) (string, error) {
	text := htmlsanitize.StripTags(description)
	if text == "" {
		return "", invalid("Description is required.")
	}
	return text, nil
}

// CreateSupportRequest records a volunteer offer from a chapter member.
func (s *Service) CreateSupportRequest(ctx context.Context, actor Actor, chapterSlug, eventSlug, description string) (*models.SupportRequest, error) {
	ch, ev, err := s.event(ctx, chapterSlug, eventSlug)
	if err != nil {
		return nil, err
	}
	if !chapterpolicy.IsMember(ch, actor.ID) {
		return nil, ErrForbidden
	}
	text, err := supportText(description)
	if err != nil {
		return nil, err
	}
	sr, err := s.Support.Create(ctx, ev.ID, actor.ID, text)
	if err != nil {
		return nil, err
	}
	s.record(ctx, "", notify.SupportRequested, ch, actor, sr.ID, nil)
	return &sr, nil
}

// SupportRequest loads one support request with its comments.
func (s *Service) SupportRequest(ctx context.Context, chapterSlug, eventSlug string, id primitive.ObjectID) (*SupportView, error) {
	t, err := s.supportRequest(ctx, chapterSlug, eventSlug, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.Comments.List(ctx, models.SupportRequestOwner(t.sr.ID))
	if err != nil {
		return nil, err
	}
	return &SupportView{Chapter: t.ch, Event: t.ev, Request: t.sr, Comments: comments}, nil
}

// EditSupportRequest rewrites the description. Only the volunteer may.
func (s *Service) EditSupportRequest(ctx context.Context, actor Actor, chapterSlug, eventSlug string, id primitive.ObjectID, description string) error {
	t, err := s.supportRequest(ctx, chapterSlug, eventSlug, id)
	if err != nil {
		return err
	}
	if t.sr.VolunteerID != actor.ID {
		return ErrForbidden
	}
	text, err := supportText(description)
	if err != nil {
		return err
	}
	if err := s.Support.UpdateDescription(ctx, t.sr.ID, text); err != nil {
		if errors.Is(err, supportstore.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// DeleteSupportRequest removes the volunteer's own request and its comments.
func (s *Service) DeleteSupportRequest(ctx context.Context, actor Actor, chapterSlug, eventSlug string, id primitive.ObjectID) error {
	t, err := s.supportRequest(ctx, chapterSlug, eventSlug, id)
	if err != nil {
		return err
	}
	if t.sr.VolunteerID != actor.ID {
		return ErrForbidden
	}
	return s.removeSupport(ctx, t.sr.ID)
}

// ListApprovedSupport returns the event's approved support requests.
func (s *Service) ListApprovedSupport(ctx context.Context, chapterSlug, eventSlug string) ([]models.SupportRequest, error) {
	_, ev, err := s.event(ctx, chapterSlug, eventSlug)
	if err != nil {
		return nil, err
	}
	return s.Support.List(ctx, ev.ID, true)
}

// ListUnapprovedSupport returns pending support requests to an organizer.
func (s *Service) ListUnapprovedSupport(ctx context.Context, actor Actor, chapterSlug, eventSlug string) ([]models.SupportRequest, error) {
	ch, ev, err := s.event(ctx, chapterSlug, eventSlug)
	if err != nil {
		return nil, err
	}
	if !chapterpolicy.IsOrganizer(ch, actor.ID) {
		return nil, ErrForbidden
	}
	return s.Support.List(ctx, ev.ID, false)
}

// ApproveSupportRequest marks a request approved.
func (s *Service) ApproveSupportRequest(ctx context.Context, actor Actor, chapterSlug, eventSlug string, id primitive.ObjectID) error {
	t, err := s.supportRequest(ctx, chapterSlug, eventSlug, id)
	if err != nil {
		return err
	}
	if !chapterpolicy.IsOrganizer(t.ch, actor.ID) {
		return ErrForbidden
	}
	if err := s.Support.Approve(ctx, t.sr.ID); err != nil {
		if errors.Is(err, supportstore.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.record(ctx, audit.EventSupportApproved, notify.SupportApproved, t.ch, actor, t.sr.ID,
		map[string]string{"event": t.ev.Slug})
	return nil
}

// RejectSupportRequest deletes a request. No rejected state is kept.
func (s *Service) RejectSupportRequest(ctx context.Context, actor Actor, chapterSlug, eventSlug string, id primitive.ObjectID) error {
	t, err := s.supportRequest(ctx, chapterSlug, eventSlug, id)
	if err != nil {
		return err
	}
	if !chapterpolicy.IsOrganizer(t.ch, actor.ID) {
		return ErrForbidden
	}
	if err := s.removeSupport(ctx, t.sr.ID); err != nil {
		return err
	}
	s.record(ctx, audit.EventSupportRejected, notify.SupportRejected, t.ch, actor, t.sr.ID,
		map[string]string{"event": t.ev.Slug})
	return nil
}

func (s *Service) removeSupport(ctx context.Context, id primitive.ObjectID) error {
	return s.inTxn(ctx, func(ctx context.Context) error {
		if _, err := s.Comments.DeleteByOwners(ctx, models.OwnerSupportRequest, []primitive.ObjectID{id}); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := s.Support.Delete(ctx, id); err != nil {
			if errors.Is(err, supportstore.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		return nil
	})
}
