package errors_test

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/meetuphub/internal/app/features/errors"
	"github.com/dalemusser/meetuphub/internal/app/system/status"
	"github.com/dalemusser/meetuphub/internal/app/workflow"
	"go.uber.org/zap"
)

func TestRespond(t *testing.T) {
	errLog := uierrors.NewErrorLogger(zap.NewNop())

	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStatus string
	}{
		{"forbidden", workflow.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"not found", workflow.ErrNotFound, http.StatusNotFound, "not_found"},
		{"wrapped not found", fmt.Errorf("%w: chapter", workflow.ErrNotFound), http.StatusNotFound, "not_found"},
		{"conflict", &workflow.ConflictError{Status: status.NameAlreadyExists, Subject: "Go"}, http.StatusConflict, "name_already_exists"},
		{"invalid", &workflow.InvalidError{Message: "Comment is required."}, http.StatusBadRequest, "invalid"},
		{"unknown", stderrors.New("socket closed"), http.StatusInternalServerError, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/meetup/x", nil)
			rec := httptest.NewRecorder()
			errLog.Respond(rec, req, "test", tt.err)

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			var body uierrors.Body
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", body.Status, tt.wantStatus)
			}
		})
	}
}

func TestRedirect(t *testing.T) {
	tests := []struct {
		target string
		flag   status.Flag
		want   string
	}{
		{"/meetup/go", status.OK, "/meetup/go?status=success"},
		{"/meetup/go?tab=members", status.AlreadyMember, "/meetup/go?status=already_member&tab=members"},
		{"/meetup/go", "", "/meetup/go"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()
		uierrors.Redirect(rec, req, tt.target, tt.flag)
		if rec.Code != http.StatusSeeOther {
			t.Errorf("%s: code = %d, want 303", tt.target, rec.Code)
		}
		if got := rec.Header().Get("Location"); got != tt.want {
			t.Errorf("Location = %q, want %q", got, tt.want)
		}
	}
}
