package workflow

import (
	"context"
	"errors"

	commentstore "github.com/dalemusser/meetuphub/internal/app/store/comments"
	"github.com/dalemusser/meetuphub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventCommentOwner resolves the owner reference for comments on an event.
func (s *Service) EventCommentOwner(ctx context.Context, chapterSlug, eventSlug string) (models.OwnerRef, error) {
	_, ev, err := s.event(ctx, chapterSlug, eventSlug)
	if err != nil {
		return models.OwnerRef{}, err
	}
	return models.EventOwner(ev.ID), nil
}

// SupportCommentOwner resolves the owner reference for comments on a
// support request.
func (s *Service) SupportCommentOwner(ctx context.Context, chapterSlug, eventSlug string, id primitive.ObjectID) (models.OwnerRef, error) {
	t, err := s.supportRequest(ctx, chapterSlug, eventSlug, id)
	if err != nil {
		return models.OwnerRef{}, err
	}
	return models.SupportRequestOwner(t.sr.ID), nil
}

func commentText(body string) (string, error) {
	text := htmlsanitize.StripTags(body)
	if text == "" {
		return "", invalid("Comment is required.")
	}
	return text, nil
}

// AddComment attaches a comment by actor to owner.
func (s *Service) AddComment(ctx context.Context, actor Actor, owner models.OwnerRef, body string) (*models.Comment, error) {
	text, err := commentText(body)
	if err != nil {
		return nil, err
	}
	c, err := s.Comments.Create(ctx, owner, actor.ID, text)
	if errors.Is(err, commentstore.ErrBadOwner) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// authored loads a comment under owner and checks that actor wrote it.
func (s *Service) authored(ctx context.Context, actor Actor, owner models.OwnerRef, id primitive.ObjectID) (*models.Comment, error) {
	c, err := s.Comments.Get(ctx, owner, id)
	if errors.Is(err, commentstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.AuthorID != actor.ID {
		return nil, ErrForbidden
	}
	return c, nil
}

// EditComment rewrites a comment. Only its author may.
func (s *Service) EditComment(ctx context.Context, actor Actor, owner models.OwnerRef, id primitive.ObjectID, body string) error {
	c, err := s.authored(ctx, actor, owner, id)
	if err != nil {
		return err
	}
	text, err := commentText(body)
	if err != nil {
		return err
	}
	if err := s.Comments.UpdateBody(ctx, c.ID, text); err != nil {
		if errors.Is(err, commentstore.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// DeleteComment removes a comment. Only its author may.
func (s *Service) DeleteComment(ctx context.Context, actor Actor, owner models.OwnerRef, id primitive.ObjectID) error {
	c, err := s.authored(ctx, actor, owner, id)
	if err != nil {
		return err
	}
	if err := s.Comments.Delete(ctx, c.ID); err != nil {
		if errors.Is(err, commentstore.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
