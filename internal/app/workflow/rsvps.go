package workflow

import (
	"context"

	"github.com/dalemusser/meetuphub/internal/app/policy/chapterpolicy"
	"github.com/dalemusser/meetuphub/internal/app/system/notify"
	"github.com/dalemusser/meetuphub/internal/domain/models"
)

// SubmitRSVP appends a response for actor. Repeat submissions add rows;
// nothing is updated in place.
func (s *Service) SubmitRSVP(ctx context.Context, actor Actor, chapterSlug, eventSlug string, coming, plusOne bool) (*models.RSVP, error) {
	ch, ev, err := s.event(ctx, chapterSlug, eventSlug)
	if err != nil {
		return nil, err
	}
	r, err := s.RSVPs.Create(ctx, ev.ID, actor.ID, coming, plusOne)
	if err != nil {
		return nil, err
	}
	s.record(ctx, "", notify.RSVPSubmitted, ch, actor, ev.ID, nil)
	return &r, nil
}

// ListGoing returns every coming=true response for the event.
func (s *Service) ListGoing(ctx context.Context, actor Actor, chapterSlug, eventSlug string) ([]models.RSVP, error) {
	ch, ev, err := s.event(ctx, chapterSlug, eventSlug)
	if err != nil {
		return nil, err
	}
	if !chapterpolicy.IsOrganizer(ch, actor.ID) {
		return nil, ErrForbidden
	}
	return s.RSVPs.ListGoing(ctx, ev.ID)
}
