package groupchatstore_test

import (
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	groupchatstore "github.com/dalemusser/voyager/internal/app/store/groupchats"
	"github.com/dalemusser/voyager/internal/domain/models"
	"github.com/dalemusser/voyager/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func TestStore_AddParticipants_CreatesThenGrows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupchatstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tripID := primitive.NewObjectID()

	chat, err := store.AddParticipants(ctx, tripID, "alice", "alice", "bob")
	if err != nil {
		t.Fatalf("AddParticipants failed: %v", err)
	}
	if chat.ID.IsZero() {
		t.Error("expected chat ID")
	}
	if chat.CreatorUsername != "alice" {
		t.Errorf("CreatorUsername: got %q, want %q", chat.CreatorUsername, "alice")
	}
	if got := sorted(chat.Participants); len(got) != 2 || got[0] != "alice" || got[1] != "bob" {
		t.Errorf("participants: got %v, want [alice bob]", got)
	}
	if chat.Messages == nil || len(chat.Messages) != 0 {
		t.Errorf("messages: got %v, want empty", chat.Messages)
	}

	// Same pair again is a no-op; a new requester is added.
	if _, err := store.AddParticipants(ctx, tripID, "alice", "alice", "bob"); err != nil {
		t.Fatalf("repeat AddParticipants failed: %v", err)
	}
	chat, err = store.AddParticipants(ctx, tripID, "alice", "alice", "carol")
	if err != nil {
		t.Fatalf("AddParticipants failed: %v", err)
	}
	if got := sorted(chat.Participants); len(got) != 3 {
		t.Errorf("participants: got %v, want 3 members", got)
	}

	n, err := db.Collection("group_chats").CountDocuments(ctx, bson.M{"trip_id": tripID})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 1 {
		t.Errorf("chat documents: got %d, want 1", n)
	}
}

func TestStore_AddParticipants_ConcurrentFirstApprovals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupchatstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tripID := primitive.NewObjectID()
	users := []string{"bob", "carol", "dave", "erin", "frank"}

	var wg sync.WaitGroup
	errs := make([]error, len(users))
	for i, u := range users {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			_, errs[i] = store.AddParticipants(ctx, tripID, "alice", "alice", u)
		}(i, u)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			t.Fatalf("AddParticipants failed: %v", err)
		}
	}

	chat, err := store.GetByTrip(ctx, tripID)
	if err != nil {
		t.Fatalf("GetByTrip failed: %v", err)
	}
	if len(chat.Participants) != len(users)+1 {
		t.Errorf("participants: got %v, want %d", chat.Participants, len(users)+1)
	}
}

func TestStore_AppendMessage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupchatstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	trip := fixtures.CreateGroupTrip(ctx, "Alps", "alice")
	fixtures.CreateGroupChat(ctx, trip, "alice", "bob")

	msg := models.ChatMessage{ID: "m1", Sender: "bob", Content: "hello", Timestamp: time.Now().UTC()}
	if err := store.AppendMessage(ctx, trip.ID, msg); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	outsider := models.ChatMessage{ID: "m2", Sender: "mallory", Content: "hi", Timestamp: time.Now().UTC()}
	if err := store.AppendMessage(ctx, trip.ID, outsider); !errors.Is(err, groupchatstore.ErrNotParticipant) {
		t.Errorf("outsider: got %v, want ErrNotParticipant", err)
	}

	chat, err := store.GetByTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("GetByTrip failed: %v", err)
	}
	if len(chat.Messages) != 1 || chat.Messages[0].Content != "hello" {
		t.Errorf("messages: got %+v", chat.Messages)
	}
}

func TestStore_GetByTrip_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupchatstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByTrip(ctx, primitive.NewObjectID()); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_SummariesForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupchatstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	t1 := fixtures.CreateGroupTrip(ctx, "Alps", "alice")
	t2 := fixtures.CreateGroupTrip(ctx, "Andes", "carol")
	fixtures.CreateGroupChat(ctx, t1, "alice", "bob")
	fixtures.CreateGroupChat(ctx, t2, "carol", "bob")

	for i, content := range []string{"first", "second"} {
		msg := models.ChatMessage{ID: content, Sender: "bob", Content: content, Timestamp: time.Now().UTC().Add(time.Duration(i) * time.Second)}
		if err := store.AppendMessage(ctx, t1.ID, msg); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	got, err := store.SummariesForUser(ctx, "bob")
	if err != nil {
		t.Fatalf("SummariesForUser failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("bob's chats: got %d, want 2", len(got))
	}

	byTrip := map[primitive.ObjectID]groupchatstore.Summary{}
	for _, s := range got {
		byTrip[s.TripID] = s
	}
	if s := byTrip[t1.ID]; s.MessageCount != 2 || s.LastMessage == nil || s.LastMessage.Content != "second" {
		t.Errorf("t1 summary: count=%d last=%+v", s.MessageCount, s.LastMessage)
	}
	if s := byTrip[t2.ID]; s.MessageCount != 0 || s.LastMessage != nil {
		t.Errorf("t2 summary: count=%d last=%+v, want 0/nil", s.MessageCount, s.LastMessage)
	}

	got, err = store.SummariesForUser(ctx, "alice")
	if err != nil {
		t.Fatalf("SummariesForUser failed: %v", err)
	}
	if len(got) != 1 || got[0].TripID != t1.ID {
		t.Errorf("alice's chats: got %+v", got)
	}
}
