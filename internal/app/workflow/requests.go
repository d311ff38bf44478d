package workflow

import (
	"context"
	"errors"

	"github.com/dalemusser/meetuphub/internal/app/policy/requestpolicy"
	"github.com/dalemusser/meetuphub/internal/app/store/audit"
	chapterrequeststore "github.com/dalemusser/meetuphub/internal/app/store/chapterrequests"
	chapterstore "github.com/dalemusser/meetuphub/internal/app/store/chapters"
	"github.com/dalemusser/meetuphub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/meetuphub/internal/app/system/notify"
	"github.com/dalemusser/meetuphub/internal/app/system/status"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RequestInput describes a proposed chapter.
type RequestInput struct {
	Name        string
	Slug        string
	LocationID  primitive.ObjectID
	Description string
}

func requireStaff(actor Actor) error {
	if !actor.IsStaff {
		return ErrForbidden
	}
	return nil
}

// SubmitRequest files a chapter request on behalf of actor. It always lands
// in the pending state; conflicts are only checked at approval.
func (s *Service) SubmitRequest(ctx context.Context, actor Actor, in RequestInput) (*models.ChapterRequest, error) {
	if err := checkChapterSlug(in.Slug); err != nil {
		return nil, err
	}
	if _, err := s.requireLocation(ctx, in.LocationID); err != nil {
		return nil, err
	}
	req, err := s.Requests.Create(ctx, models.ChapterRequest{
		Name:        in.Name,
		Slug:        in.Slug,
		LocationID:  in.LocationID,
		Description: htmlsanitize.Sanitize(in.Description),
		UserID:      actor.ID,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, audit.EventChapterRequested, notify.ChapterRequestSubmitted, nil, actor, req.ID,
		map[string]string{"slug": req.Slug})
	return &req, nil
}

// ListPending returns requests awaiting a staff decision.
func (s *Service) ListPending(ctx context.Context, actor Actor) ([]models.ChapterRequest, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	return s.Requests.ListPending(ctx)
}

// Request loads one request for staff review.
func (s *Service) Request(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.ChapterRequest, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	req, err := s.Requests.GetByID(ctx, id)
	if errors.Is(err, chapterrequeststore.ErrNotFound) {
		return nil, ErrNotFound
	}
	return req, err
}

// EditRequest lets staff correct a pending request, typically after an
// approval was refused for a name, slug or location conflict.
func (s *Service) EditRequest(ctx context.Context, actor Actor, id primitive.ObjectID, in RequestInput) (*models.ChapterRequest, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := checkChapterSlug(in.Slug); err != nil {
		return nil, err
	}
	if _, err := s.requireLocation(ctx, in.LocationID); err != nil {
		return nil, err
	}
	err := s.Requests.Update(ctx, id, chapterrequeststore.Update{
		Name:        in.Name,
		Slug:        in.Slug,
		LocationID:  in.LocationID,
		Description: htmlsanitize.Sanitize(in.Description),
	})
	if errors.Is(err, chapterrequeststore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.Requests.GetByID(ctx, id)
}

// ApproveRequest turns a pending request into a chapter owned by the
// requester. It is refused with a *ConflictError when the live registry
// already has a chapter with the same name, slug or location (checked in
// that order). The check and the create run in one transaction and the
// unique slug index backs it up when transactions are unavailable.
func (s *Service) ApproveRequest(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Chapter, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	req, err := s.Requests.GetByID(ctx, id)
	if errors.Is(err, chapterrequeststore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if req.IsApproved {
		return nil, ErrNotFound
	}

	var created models.Chapter
	err = s.inTxn(ctx, func(ctx context.Context) error {
		flag, err := requestpolicy.CheckApproval(ctx, s.Chapters, *req)
		if err != nil {
			return err
		}
		if flag != status.OK {
			return conflict(flag, subjectFor(flag, req))
		}

		created, err = s.Chapters.Create(ctx, models.Chapter{
			Name:         req.Name,
			Slug:         req.Slug,
			LocationID:   req.LocationID,
			Description:  req.Description,
			MemberIDs:    []primitive.ObjectID{req.UserID},
			OrganizerIDs: []primitive.ObjectID{req.UserID},
		})
		if errors.Is(err, chapterstore.ErrDuplicateSlug) {
			return conflict(status.SlugAlreadyExists, req.Slug)
		}
		if err != nil {
			return err
		}

		if err := s.Requests.MarkApproved(ctx, req.ID); err != nil {
			if errors.Is(err, chapterrequeststore.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		var ce *ConflictError
		if errors.As(err, &ce) {
			s.Log.Info("chapter request approval refused",
				zap.String("request_id", req.ID.Hex()),
				zap.String("status", string(ce.Status)))
		}
		return nil, err
	}

	s.record(ctx, audit.EventChapterRequestApproved, notify.ChapterRequestApproved, &created, actor, req.ID, nil)
	s.record(ctx, audit.EventChapterCreated, notify.ChapterCreated, &created, Actor{ID: req.UserID}, created.ID, nil)
	return &created, nil
}

// RejectRequest deletes a pending request. Nothing is retained.
func (s *Service) RejectRequest(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	err := s.Requests.Delete(ctx, id)
	if errors.Is(err, chapterrequeststore.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	s.record(ctx, audit.EventChapterRequestRejected, notify.ChapterRequestRejected, nil, actor, id, nil)
	return nil
}

func subjectFor(flag status.Flag, req *models.ChapterRequest) string {
	switch flag {
	case status.NameAlreadyExists:
		return req.Name
	case status.SlugAlreadyExists:
		return req.Slug
	}
	return req.LocationID.Hex()
}
