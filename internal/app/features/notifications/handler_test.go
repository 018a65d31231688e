package notifications_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/voyager/internal/app/features/notifications"
	notifsvc "github.com/dalemusser/voyager/internal/app/services/notifications"
	joinrequeststore "github.com/dalemusser/voyager/internal/app/store/joinrequests"
	tripstore "github.com/dalemusser/voyager/internal/app/store/trips"
	"github.com/dalemusser/voyager/internal/domain/models"
	"github.com/dalemusser/voyager/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (http.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	feed := notifsvc.New(joinrequeststore.New(db), tripstore.New(db), nil, nil, nil, zap.NewNop())
	r := chi.NewRouter()
	r.Mount("/notifications", notifications.Routes(notifications.NewHandler(feed, zap.NewNop())))
	return r, testutil.NewFixtures(t, db)
}

func TestListAndCount(t *testing.T) {
	router, fixtures := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	trip := fixtures.CreateGroupTrip(ctx, "Alps", "alice")
	now := time.Now()
	fixtures.CreateJoinRequest(ctx, trip, "bob", models.RequestPending, now.Add(-time.Minute))
	fixtures.CreateJoinRequest(ctx, trip, "carol", models.RequestPending, now)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications/alice", nil))
	testutil.AssertStatus(t, rec, http.StatusOK)

	var list struct {
		Notifications []struct {
			Type     string `json:"type"`
			Username string `json:"username"`
		} `json:"notifications"`
	}
	testutil.DecodeBody(t, rec, &list)
	if len(list.Notifications) != 2 {
		t.Fatalf("notifications: got %d, want 2", len(list.Notifications))
	}
	if list.Notifications[0].Username != "carol" || list.Notifications[0].Type != "JOIN_REQUEST" {
		t.Errorf("first entry: got %+v", list.Notifications[0])
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications/alice/count", nil))
	testutil.AssertStatus(t, rec, http.StatusOK)
	var count struct {
		Count int64 `json:"count"`
	}
	testutil.DecodeBody(t, rec, &count)
	if count.Count != 2 {
		t.Errorf("count: got %d, want 2", count.Count)
	}
}

func TestDismiss(t *testing.T) {
	router, fixtures := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	trip := fixtures.CreateGroupTrip(ctx, "Alps", "alice")
	approved := fixtures.CreateJoinRequest(ctx, trip, "bob", models.RequestApproved, time.Now())
	pending := fixtures.CreateJoinRequest(ctx, trip, "carol", models.RequestPending, time.Now())

	tests := []struct {
		name string
		path string
		want int
	}{
		{"pending", "/notifications/carol/" + pending.ID.Hex(), http.StatusUnprocessableEntity},
		{"not owner", "/notifications/carol/" + approved.ID.Hex(), http.StatusNotFound},
		{"bad id", "/notifications/bob/xyz", http.StatusBadRequest},
		{"ok", "/notifications/bob/" + approved.ID.Hex(), http.StatusNoContent},
		{"again", "/notifications/bob/" + approved.ID.Hex(), http.StatusNotFound},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, tc.path, nil))
		if rec.Code != tc.want {
			t.Errorf("%s: got %d, want %d (body %s)", tc.name, rec.Code, tc.want, rec.Body.String())
		}
	}
}
