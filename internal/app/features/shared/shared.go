// Package shared holds request plumbing common to the meetup feature
// handlers.
package shared

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/meetuphub/internal/app/features/errors"
	"github.com/dalemusser/meetuphub/internal/app/system/authz"
	"github.com/dalemusser/meetuphub/internal/app/system/timeouts"
	"github.com/dalemusser/meetuphub/internal/app/workflow"
	"go.uber.org/zap"
)

// Begin resolves the signed-in actor and opens an operation context sized
// for single writes and membership changes. It answers 401 and returns
// ok=false when nobody is signed in; otherwise the caller must defer cancel.
func Begin(w http.ResponseWriter, r *http.Request) (workflow.Actor, context.Context, context.CancelFunc, bool) {
	return begin(w, r, func(parent context.Context) (context.Context, context.CancelFunc) {
		return context.WithTimeout(parent, timeouts.Medium())
	})
}

// BeginLong is Begin for transactional and cascading operations. A cancel
// after the deadline passed logs op as timed out.
func BeginLong(w http.ResponseWriter, r *http.Request, log *zap.Logger, op string) (workflow.Actor, context.Context, context.CancelFunc, bool) {
	return begin(w, r, func(parent context.Context) (context.Context, context.CancelFunc) {
		return timeouts.WithTimeout(parent, timeouts.Long(), log, op)
	})
}

func begin(w http.ResponseWriter, r *http.Request, open func(context.Context) (context.Context, context.CancelFunc)) (workflow.Actor, context.Context, context.CancelFunc, bool) {
	actor, ok := authz.Actor(r)
	if !ok {
		uierrors.Unauthorized(w)
		return workflow.Actor{}, nil, nil, false
	}
	ctx, cancel := open(r.Context())
	return actor, ctx, cancel, true
}

// Read opens a short operation context for a public single-document read.
func Read(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeouts.Short())
}

// List opens an operation context for a public list query.
func List(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeouts.Medium())
}

// ParseForm parses the request body, answering 400 on failure.
func ParseForm(w http.ResponseWriter, r *http.Request, errLog *uierrors.ErrorLogger) bool {
	if err := r.ParseForm(); err != nil {
		errLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.")
		return false
	}
	return true
}
