package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/meetuphub/internal/app/policy/chapterpolicy"
	"github.com/dalemusser/meetuphub/internal/app/store/audit"
	chapterstore "github.com/dalemusser/meetuphub/internal/app/store/chapters"
	locationstore "github.com/dalemusser/meetuphub/internal/app/store/locations"
	"github.com/dalemusser/meetuphub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/meetuphub/internal/app/system/inputval"
	"github.com/dalemusser/meetuphub/internal/app/system/normalize"
	"github.com/dalemusser/meetuphub/internal/app/system/notify"
	"github.com/dalemusser/meetuphub/internal/app/system/status"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ChapterInput is the user-editable part of a chapter.
type ChapterInput struct {
	Name        string
	Slug        string
	LocationID  primitive.ObjectID
	Description string
	Sponsors    string
}

// ChapterListing is one row of the chapter directory.
type ChapterListing struct {
	Chapter  models.Chapter   `json:"chapter"`
	Location *models.Location `json:"location,omitempty"`
	Upcoming []models.Event   `json:"upcoming"`
}

// Roster is a chapter's member and organizer lists with user records.
type Roster struct {
	Chapter    *models.Chapter `json:"chapter"`
	Members    []models.User   `json:"members"`
	Organizers []models.User   `json:"organizers"`
}

func (s *Service) requireLocation(ctx context.Context, id primitive.ObjectID) (*models.Location, error) {
	loc, err := s.Locations.GetByID(ctx, id)
	if errors.Is(err, locationstore.ErrNotFound) {
		return nil, invalid("Location is not in the directory.")
	}
	return loc, err
}

// organizerOf loads the chapter and fails with ErrForbidden unless actor
// organizes it.
func (s *Service) organizerOf(ctx context.Context, actor Actor, slug string) (*models.Chapter, error) {
	ch, err := s.chapter(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !chapterpolicy.IsOrganizer(ch, actor.ID) {
		return nil, ErrForbidden
	}
	return ch, nil
}

// checkChapterSlug refuses slugs the /meetup router reserves.
func checkChapterSlug(slug string) error {
	if inputval.IsReservedChapterSlug(slug) {
		return invalid(fmt.Sprintf("Slug %q is reserved. Choose another.", normalize.Slug(slug)))
	}
	return nil
}

// CreateChapter creates a chapter directly. The creator becomes its first
// member and organizer.
func (s *Service) CreateChapter(ctx context.Context, actor Actor, in ChapterInput) (*models.Chapter, error) {
	if err := checkChapterSlug(in.Slug); err != nil {
		return nil, err
	}
	if _, err := s.requireLocation(ctx, in.LocationID); err != nil {
		return nil, err
	}
	slug := normalize.Slug(in.Slug)
	if taken, err := s.Chapters.ExistsBySlug(ctx, slug); err != nil {
		return nil, err
	} else if taken {
		return nil, conflict(status.SlugAlreadyExists, slug)
	}

	ch, err := s.Chapters.Create(ctx, models.Chapter{
		Name:         in.Name,
		Slug:         slug,
		LocationID:   in.LocationID,
		Description:  htmlsanitize.Sanitize(in.Description),
		Sponsors:     htmlsanitize.Sanitize(in.Sponsors),
		MemberIDs:    []primitive.ObjectID{actor.ID},
		OrganizerIDs: []primitive.ObjectID{actor.ID},
	})
	if errors.Is(err, chapterstore.ErrDuplicateSlug) {
		return nil, conflict(status.SlugAlreadyExists, slug)
	}
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.EventChapterCreated, notify.ChapterCreated, &ch, actor, ch.ID, nil)
	return &ch, nil
}

// ListChapters returns every chapter with its location and upcoming events.
func (s *Service) ListChapters(ctx context.Context) ([]ChapterListing, error) {
	chapters, err := s.Chapters.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(chapters))
	locIDs := make([]primitive.ObjectID, len(chapters))
	for i, ch := range chapters {
		ids[i] = ch.ID
		locIDs[i] = ch.LocationID
	}

	upcoming, err := s.Events.UpcomingByChapter(ctx, ids, s.today())
	if err != nil {
		return nil, err
	}
	locs, err := s.Locations.MapByIDs(ctx, locIDs)
	if err != nil {
		return nil, err
	}

	out := make([]ChapterListing, len(chapters))
	for i, ch := range chapters {
		out[i] = ChapterListing{Chapter: ch, Upcoming: upcoming[ch.ID]}
		if out[i].Upcoming == nil {
			out[i].Upcoming = []models.Event{}
		}
		if loc, ok := locs[ch.LocationID]; ok {
			out[i].Location = &loc
		}
	}
	return out, nil
}

// About returns a chapter with its location and upcoming events.
func (s *Service) About(ctx context.Context, slug string) (*ChapterListing, error) {
	ch, err := s.chapter(ctx, slug)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.Events.ListUpcoming(ctx, ch.ID, s.today())
	if err != nil {
		return nil, err
	}
	out := &ChapterListing{Chapter: *ch, Upcoming: upcoming}
	loc, err := s.Locations.GetByID(ctx, ch.LocationID)
	switch {
	case err == nil:
		out.Location = loc
	case !errors.Is(err, locationstore.ErrNotFound):
		return nil, err
	}
	return out, nil
}

// ListLocations returns the location directory chapters are placed in.
func (s *Service) ListLocations(ctx context.Context) ([]models.Location, error) {
	return s.Locations.List(ctx)
}

// historyLimit caps how much of the audit trail an organizer sees.
const historyLimit = 100

// ChapterHistory returns the chapter's recent audit trail, newest first.
// Only organizers may read it.
func (s *Service) ChapterHistory(ctx context.Context, actor Actor, slug string) ([]audit.Event, error) {
	ch, err := s.organizerOf(ctx, actor, slug)
	if err != nil {
		return nil, err
	}
	events, err := s.History.GetByChapter(ctx, ch.ID, historyLimit)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []audit.Event{}
	}
	return events, nil
}

// Members returns the chapter roster.
func (s *Service) Members(ctx context.Context, slug string) (*Roster, error) {
	ch, err := s.chapter(ctx, slug)
	if err != nil {
		return nil, err
	}
	members, err := s.Users.ListByIDs(ctx, ch.MemberIDs)
	if err != nil {
		return nil, err
	}
	organizers, err := s.Users.ListByIDs(ctx, ch.OrganizerIDs)
	if err != nil {
		return nil, err
	}
	return &Roster{Chapter: ch, Members: members, Organizers: organizers}, nil
}

// EditChapter updates name, description, sponsors and location. The slug
// never changes.
func (s *Service) EditChapter(ctx context.Context, actor Actor, slug string, in ChapterInput) (*models.Chapter, error) {
	ch, err := s.organizerOf(ctx, actor, slug)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireLocation(ctx, in.LocationID); err != nil {
		return nil, err
	}
	err = s.Chapters.Update(ctx, ch.ID, chapterstore.Update{
		Name:        in.Name,
		Description: htmlsanitize.Sanitize(in.Description),
		Sponsors:    htmlsanitize.Sanitize(in.Sponsors),
		LocationID:  in.LocationID,
	})
	if errors.Is(err, chapterstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.EventChapterUpdated, notify.ChapterUpdated, ch, actor, primitive.NilObjectID, nil)
	return s.Chapters.GetByID(ctx, ch.ID)
}

// DeleteChapter removes the chapter and everything it owns: events, their
// RSVPs, support requests, and the comments on both.
func (s *Service) DeleteChapter(ctx context.Context, actor Actor, slug string) error {
	ch, err := s.organizerOf(ctx, actor, slug)
	if err != nil {
		return err
	}

	err = s.inTxn(ctx, func(ctx context.Context) error {
		eventIDs, err := s.Events.IDsByChapter(ctx, ch.ID)
		if err != nil {
			return fmt.Errorf("list events: %w", err)
		}
		if err := s.purgeEvents(ctx, eventIDs); err != nil {
			return err
		}
		if _, err := s.Events.DeleteByChapter(ctx, ch.ID); err != nil {
			return fmt.Errorf("delete events: %w", err)
		}
		n, err := s.Chapters.Delete(ctx, ch.ID)
		if err != nil {
			return fmt.Errorf("delete chapter: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Log.Info("chapter deleted", zap.String("chapter", ch.Slug), zap.String("user_id", actor.ID.Hex()))
	s.record(ctx, audit.EventChapterDeleted, notify.ChapterDeleted, ch, actor, primitive.NilObjectID, nil)
	return nil
}

// purgeEvents removes what hangs off the given events but not the events
// themselves.
func (s *Service) purgeEvents(ctx context.Context, eventIDs []primitive.ObjectID) error {
	if len(eventIDs) == 0 {
		return nil
	}
	supportIDs, err := s.Support.IDsByEvents(ctx, eventIDs)
	if err != nil {
		return fmt.Errorf("list support requests: %w", err)
	}
	if _, err := s.Comments.DeleteByOwners(ctx, models.OwnerSupportRequest, supportIDs); err != nil {
		return fmt.Errorf("delete support comments: %w", err)
	}
	if _, err := s.Comments.DeleteByOwners(ctx, models.OwnerEvent, eventIDs); err != nil {
		return fmt.Errorf("delete event comments: %w", err)
	}
	if _, err := s.Support.DeleteByEvents(ctx, eventIDs); err != nil {
		return fmt.Errorf("delete support requests: %w", err)
	}
	if _, err := s.RSVPs.DeleteByEvents(ctx, eventIDs); err != nil {
		return fmt.Errorf("delete rsvps: %w", err)
	}
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Membership                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// AddMember adds username to the chapter. Adding an existing member is a
// no-op reported as status.AlreadyMember.
func (s *Service) AddMember(ctx context.Context, actor Actor, slug, username string) (status.Flag, error) {
	ch, err := s.organizerOf(ctx, actor, slug)
	if err != nil {
		return "", err
	}
	u, err := s.user(ctx, username)
	if err != nil {
		return "", err
	}
	added, err := s.Chapters.AddMember(ctx, ch.ID, u.ID)
	if err != nil {
		return "", mapChapterErr(err)
	}
	if !added {
		return status.AlreadyMember, nil
	}
	s.record(ctx, audit.EventMemberAdded, notify.MemberAdded, ch, actor, u.ID, nil)
	return status.OK, nil
}

// RemoveMember drops username from members and organizers. An organizer
// removing themselves is a no-op.
func (s *Service) RemoveMember(ctx context.Context, actor Actor, slug, username string) error {
	ch, err := s.organizerOf(ctx, actor, slug)
	if err != nil {
		return err
	}
	u, err := s.user(ctx, username)
	if err != nil {
		return err
	}
	if u.ID == actor.ID {
		return nil
	}
	if !chapterpolicy.IsMember(ch, u.ID) {
		return ErrNotFound
	}
	if _, err := s.Chapters.RemoveMember(ctx, ch.ID, u.ID); err != nil {
		return mapChapterErr(err)
	}
	s.record(ctx, audit.EventMemberRemoved, notify.MemberRemoved, ch, actor, u.ID, nil)
	return nil
}

// PromoteOrganizer makes a member an organizer. Promoting an organizer
// again is a no-op.
func (s *Service) PromoteOrganizer(ctx context.Context, actor Actor, slug, username string) error {
	ch, err := s.organizerOf(ctx, actor, slug)
	if err != nil {
		return err
	}
	u, err := s.user(ctx, username)
	if err != nil {
		return err
	}
	changed, err := s.Chapters.AddOrganizer(ctx, ch.ID, u.ID)
	if err != nil {
		return mapChapterErr(err)
	}
	if changed {
		s.record(ctx, audit.EventOrganizerPromoted, notify.OrganizerPromoted, ch, actor, u.ID, nil)
	}
	return nil
}

// DemoteOrganizer removes organizer status but keeps membership. Demoting
// yourself is a no-op.
func (s *Service) DemoteOrganizer(ctx context.Context, actor Actor, slug, username string) error {
	ch, err := s.organizerOf(ctx, actor, slug)
	if err != nil {
		return err
	}
	u, err := s.user(ctx, username)
	if err != nil {
		return err
	}
	if u.ID == actor.ID {
		return nil
	}
	if !chapterpolicy.IsOrganizer(ch, u.ID) {
		return ErrNotFound
	}
	if _, err := s.Chapters.RemoveOrganizer(ctx, ch.ID, u.ID); err != nil {
		return mapChapterErr(err)
	}
	s.record(ctx, audit.EventOrganizerDemoted, notify.OrganizerDemoted, ch, actor, u.ID, nil)
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Join requests                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// RequestJoin queues actor for membership. Existing members and users
// already queued get a warning flag and nothing changes.
func (s *Service) RequestJoin(ctx context.Context, actor Actor, slug string) (status.Flag, error) {
	ch, err := s.chapter(ctx, slug)
	if err != nil {
		return "", err
	}
	outcome := chapterpolicy.JoinOutcome(ch, actor.ID)
	if outcome.Warning() {
		return outcome, nil
	}
	queued, err := s.Chapters.AddJoinRequest(ctx, ch.ID, actor.ID)
	if err != nil {
		return "", mapChapterErr(err)
	}
	if !queued {
		return status.AlreadyRequested, nil
	}
	s.record(ctx, audit.EventJoinRequested, notify.JoinRequested, ch, actor, actor.ID, nil)
	return status.JoinRequested, nil
}

// ListJoinRequests returns the users waiting to join.
func (s *Service) ListJoinRequests(ctx context.Context, actor Actor, slug string) ([]models.User, error) {
	ch, err := s.organizerOf(ctx, actor, slug)
	if err != nil {
		return nil, err
	}
	return s.Users.ListByIDs(ctx, ch.JoinRequestIDs)
}

// ApproveJoin moves username from the join queue into members.
func (s *Service) ApproveJoin(ctx context.Context, actor Actor, slug, username string) error {
	return s.resolveJoin(ctx, actor, slug, username, true)
}

// RejectJoin drops username from the join queue.
func (s *Service) RejectJoin(ctx context.Context, actor Actor, slug, username string) error {
	return s.resolveJoin(ctx, actor, slug, username, false)
}

func (s *Service) resolveJoin(ctx context.Context, actor Actor, slug, username string, approve bool) error {
	ch, err := s.organizerOf(ctx, actor, slug)
	if err != nil {
		return err
	}
	u, err := s.user(ctx, username)
	if err != nil {
		return err
	}

	auditType, eventType := audit.EventJoinApproved, notify.JoinApproved
	if approve {
		err = s.Chapters.ApproveJoin(ctx, ch.ID, u.ID)
	} else {
		auditType, eventType = audit.EventJoinRejected, notify.JoinRejected
		err = s.Chapters.RejectJoin(ctx, ch.ID, u.ID)
	}
	if err != nil {
		return mapChapterErr(err)
	}
	s.record(ctx, auditType, eventType, ch, actor, u.ID, nil)
	return nil
}

func mapChapterErr(err error) error {
	switch {
	case errors.Is(err, chapterstore.ErrNotFound),
		errors.Is(err, chapterstore.ErrNotMember),
		errors.Is(err, chapterstore.ErrNoJoinRequest):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
