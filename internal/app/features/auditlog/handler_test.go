package auditlog_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/voyager/internal/app/features/auditlog"
	"github.com/dalemusser/voyager/internal/app/store/audit"
	tripstore "github.com/dalemusser/voyager/internal/app/store/trips"
	"github.com/dalemusser/voyager/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (http.Handler, *audit.Store, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	r := chi.NewRouter()
	r.Mount("/trips/{tripID}/activity", auditlog.Routes(auditlog.NewHandler(store, tripstore.New(db), zap.NewNop())))
	return r, store, testutil.NewFixtures(t, db)
}

type listBody struct {
	Items []struct {
		EventType string `json:"event_type"`
		Actor     string `json:"actor"`
	} `json:"items"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func TestServeList(t *testing.T) {
	router, store, fixtures := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	trip := fixtures.CreateGroupTrip(ctx, "Alps", "alice")
	other := fixtures.CreateGroupTrip(ctx, "Andes", "alice")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seed := []audit.Event{
		{Timestamp: base, Category: audit.CategoryTrips, EventType: audit.EventJoinRequestCreated, TripID: &trip.ID, Actor: "bob", Success: true},
		{Timestamp: base.Add(time.Hour), Category: audit.CategoryTrips, EventType: audit.EventJoinRequestApproved, TripID: &trip.ID, Actor: "alice", Subject: "bob", Success: true},
		{Timestamp: base.Add(48 * time.Hour), Category: audit.CategoryChats, EventType: audit.EventChatMessagePosted, TripID: &trip.ID, Actor: "bob", Success: true},
		{Timestamp: base, Category: audit.CategoryTrips, EventType: audit.EventJoinRequestCreated, TripID: &other.ID, Actor: "carol", Success: true},
	}
	for _, e := range seed {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	get := func(query string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trips/"+trip.ID.Hex()+"/activity"+query, nil))
		return rec
	}

	rec := get("?username=alice")
	testutil.AssertStatus(t, rec, http.StatusOK)
	var body listBody
	testutil.DecodeBody(t, rec, &body)
	if body.Total != 3 || len(body.Items) != 3 {
		t.Fatalf("total: got %d (%d items), want 3", body.Total, len(body.Items))
	}
	if body.Items[0].EventType != audit.EventChatMessagePosted {
		t.Errorf("newest first: got %q", body.Items[0].EventType)
	}

	rec = get("?username=alice&category=trips")
	testutil.AssertStatus(t, rec, http.StatusOK)
	body = listBody{}
	testutil.DecodeBody(t, rec, &body)
	if body.Total != 2 {
		t.Errorf("trips category: got %d, want 2", body.Total)
	}

	rec = get("?username=alice&start_date=2026-03-01&end_date=2026-03-01")
	testutil.AssertStatus(t, rec, http.StatusOK)
	body = listBody{}
	testutil.DecodeBody(t, rec, &body)
	if body.Total != 2 {
		t.Errorf("date range: got %d, want 2", body.Total)
	}
}

func TestServeList_Errors(t *testing.T) {
	router, _, fixtures := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	trip := fixtures.CreateGroupTrip(ctx, "Alps", "alice")
	base := "/trips/" + trip.ID.Hex() + "/activity"

	tests := []struct {
		name string
		path string
		want int
	}{
		{"not creator", base + "?username=bob", http.StatusForbidden},
		{"no caller", base, http.StatusBadRequest},
		{"bad category", base + "?username=alice&category=admin", http.StatusBadRequest},
		{"bad event type", base + "?username=alice&category=chats&event_type=join_request_created", http.StatusBadRequest},
		{"bad date", base + "?username=alice&start_date=March", http.StatusBadRequest},
		{"missing trip", "/trips/" + primitive.NewObjectID().Hex() + "/activity?username=alice", http.StatusNotFound},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != tc.want {
			t.Errorf("%s: got %d, want %d (body %s)", tc.name, rec.Code, tc.want, rec.Body.String())
		}
	}
}
