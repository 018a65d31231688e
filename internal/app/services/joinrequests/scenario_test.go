package joinrequests_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/dalemusser/voyager/internal/app/services/groupchats"
	"github.com/dalemusser/voyager/internal/app/services/joinrequests"
	"github.com/dalemusser/voyager/internal/app/services/notifications"
	groupchatstore "github.com/dalemusser/voyager/internal/app/store/groupchats"
	joinrequeststore "github.com/dalemusser/voyager/internal/app/store/joinrequests"
	tripstore "github.com/dalemusser/voyager/internal/app/store/trips"
	"github.com/dalemusser/voyager/internal/app/system/apperr"
	"github.com/dalemusser/voyager/internal/domain/models"
	"github.com/dalemusser/voyager/internal/testutil"
	"go.uber.org/zap"
)

// TestTripLifecycle walks one group trip from first request through chat
// membership, rejection and dismissal.
func TestTripLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	trips := tripstore.New(db)
	requests := joinrequeststore.New(db)
	chats := groupchats.New(groupchatstore.New(db), requests, nil, nil, zap.NewNop())
	feed := notifications.New(requests, trips, nil, nil, nil, zap.NewNop())
	wf := joinrequests.New(joinrequests.Deps{
		Trips:    trips,
		Requests: requests,
		Chats:    chats,
		Log:      zap.NewNop(),
	})

	trip := fixtures.CreateGroupTrip(ctx, "Alps Hike", "carl")

	// 1. Request, then a duplicate.
	req, err := wf.Create(ctx, trip.ID, "rita", "can I come?")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if req.Status != models.RequestPending {
		t.Errorf("status: got %q, want pending", req.Status)
	}
	if _, err := wf.Create(ctx, trip.ID, "rita", "again"); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("duplicate Create: got %v, want CONFLICT", err)
	}

	// 2. Approve. Chat holds both and the requester sees the approval.
	out, err := wf.Respond(ctx, trip.ID, req.ID, "approve", "carl")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if !out.ChatSynced {
		t.Error("expected ChatSynced=true")
	}
	chat, err := chats.Get(ctx, trip.ID)
	if err != nil {
		t.Fatalf("Get chat failed: %v", err)
	}
	assertParticipants(t, chat.Participants, "carl", "rita")

	ritaFeed, err := feed.List(ctx, "rita")
	if err != nil {
		t.Fatalf("List rita failed: %v", err)
	}
	if len(ritaFeed) != 1 || ritaFeed[0].Kind != notifications.KindRequestApproved {
		t.Fatalf("rita feed: got %+v, want one REQUEST_APPROVED", ritaFeed)
	}
	if !strings.Contains(ritaFeed[0].Message, "Alps Hike") {
		t.Errorf("message %q does not mention the trip title", ritaFeed[0].Message)
	}

	// 3. A second requester is rejected. Chat membership is unchanged.
	req2, err := wf.Create(ctx, trip.ID, "rob", "")
	if err != nil {
		t.Fatalf("Create rob failed: %v", err)
	}
	if _, err := wf.Respond(ctx, trip.ID, req2.ID, "reject", "carl"); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	robFeed, err := feed.List(ctx, "rob")
	if err != nil {
		t.Fatalf("List rob failed: %v", err)
	}
	if len(robFeed) != 1 || robFeed[0].Kind != notifications.KindRequestRejected {
		t.Fatalf("rob feed: got %+v, want one REQUEST_REJECTED", robFeed)
	}
	chat, err = chats.Get(ctx, trip.ID)
	if err != nil {
		t.Fatalf("Get chat failed: %v", err)
	}
	assertParticipants(t, chat.Participants, "carl", "rita")

	// 4. Non-members cannot post.
	if _, err := chats.AppendMessage(ctx, trip.ID, "rob", "hi"); apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("rob post: got %v, want FORBIDDEN", err)
	}
	if _, err := chats.AppendMessage(ctx, trip.ID, "rita", "hi all"); err != nil {
		t.Errorf("rita post: %v", err)
	}

	// 5. Dismissing the approval drops it from the feed and the count.
	before, err := feed.Count(ctx, "rita")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if err := feed.Dismiss(ctx, "rita", req.ID); err != nil {
		t.Fatalf("Dismiss failed: %v", err)
	}
	ritaFeed, err = feed.List(ctx, "rita")
	if err != nil {
		t.Fatalf("List rita failed: %v", err)
	}
	for _, n := range ritaFeed {
		if n.RequestID == req.ID {
			t.Error("dismissed notification still listed")
		}
	}
	after, err := feed.Count(ctx, "rita")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if after != before-1 {
		t.Errorf("count: got %d, want %d", after, before-1)
	}

	// Chat membership survives the dismissal.
	chat, err = chats.Get(ctx, trip.ID)
	if err != nil {
		t.Fatalf("Get chat failed: %v", err)
	}
	assertParticipants(t, chat.Participants, "carl", "rita")
}

func assertParticipants(t *testing.T, got []string, want ...string) {
	t.Helper()
	g := append([]string(nil), got...)
	sort.Strings(g)
	sort.Strings(want)
	if strings.Join(g, ",") != strings.Join(want, ",") {
		t.Errorf("participants: got %v, want %v", g, want)
	}
}
