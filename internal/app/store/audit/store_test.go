package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/voyager/internal/app/store/audit"
	"github.com/dalemusser/voyager/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_LogAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tripID := primitive.NewObjectID()
	otherTrip := primitive.NewObjectID()

	events := []audit.Event{
		{Category: audit.CategoryTrips, EventType: audit.EventJoinRequestCreated, TripID: &tripID, Actor: "bob", Success: true},
		{Category: audit.CategoryTrips, EventType: audit.EventJoinRequestApproved, TripID: &tripID, Actor: "alice", Subject: "bob", Success: true},
		{Category: audit.CategoryTrips, EventType: audit.EventJoinRequestCreated, TripID: &otherTrip, Actor: "carol", Success: true},
	}
	for i, e := range events {
		e.Timestamp = time.Now().UTC().Add(time.Duration(i) * time.Second)
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	got, err := store.GetByTrip(ctx, tripID, 10)
	if err != nil {
		t.Fatalf("GetByTrip failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].EventType != audit.EventJoinRequestApproved {
		t.Errorf("newest event: got %q, want %q", got[0].EventType, audit.EventJoinRequestApproved)
	}
	if got[0].Subject != "bob" {
		t.Errorf("Subject: got %q, want %q", got[0].Subject, "bob")
	}

	n, err := store.CountByFilter(ctx, audit.QueryFilter{EventType: audit.EventJoinRequestCreated})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if n != 2 {
		t.Errorf("created count: got %d, want 2", n)
	}
}

func TestStore_Log_FillsIDAndTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Log(ctx, audit.Event{Category: audit.CategoryChats, EventType: audit.EventChatMessagePosted, Actor: "dave"}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	got, err := store.Query(ctx, audit.QueryFilter{Actor: "dave"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].ID.IsZero() {
		t.Error("expected ID to be assigned")
	}
	if got[0].Timestamp.IsZero() {
		t.Error("expected Timestamp to be assigned")
	}
}
