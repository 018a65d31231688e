package errors_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/voyager/internal/app/features/errors"
	"github.com/dalemusser/voyager/internal/app/system/apperr"
	"github.com/dalemusser/voyager/internal/testutil"
	"go.uber.org/zap"
)

func TestWrite_StatusByKind(t *testing.T) {
	tests := []struct {
		err  error
		want int
		code string
	}{
		{apperr.NotFound("trip not found"), http.StatusNotFound, "NOT_FOUND"},
		{apperr.Forbidden("no"), http.StatusForbidden, "FORBIDDEN"},
		{apperr.Conflict("dup"), http.StatusConflict, "CONFLICT"},
		{apperr.InvalidOperation("solo"), http.StatusUnprocessableEntity, "INVALID_OPERATION"},
		{apperr.Validation("bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{apperr.RateLimited("slow down"), http.StatusTooManyRequests, "RATE_LIMITED"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			uierrors.Write(rec, req, zap.NewNop(), tc.err)

			testutil.AssertStatus(t, rec, tc.want)
			if got := testutil.ErrorCode(t, rec); got != tc.code {
				t.Errorf("code: got %q, want %q", got, tc.code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type: got %q", ct)
			}
		})
	}
}

func TestWrite_InternalHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	uierrors.Write(rec, req, zap.NewNop(), apperr.Internal(errors.New("connection refused to mongo-0:27017")))

	testutil.AssertStatus(t, rec, http.StatusInternalServerError)
	if strings.Contains(rec.Body.String(), "mongo-0") {
		t.Errorf("body leaks cause: %s", rec.Body.String())
	}
}

func TestHandler_Fallbacks(t *testing.T) {
	h := uierrors.NewHandler(zap.NewNop())

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	testutil.AssertStatus(t, rec, http.StatusNotFound)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodPut, "/health", nil))
	testutil.AssertStatus(t, rec, http.StatusMethodNotAllowed)
	if got := testutil.ErrorCode(t, rec); got != "METHOD_NOT_ALLOWED" {
		t.Errorf("code: got %q", got)
	}
}
