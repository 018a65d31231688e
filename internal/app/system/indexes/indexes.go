// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Index names referenced outside this package.
const (
	// PendingRequestPerPair enforces at most one pending join request per
	// (trip, requester). Inserting a second one fails with a duplicate key.
	PendingRequestPerPair = "uniq_join_requests_trip_requester_pending"
	// ChatPerTrip enforces exactly one group chat per trip.
	ChatPerTrip = "uniq_group_chats_trip"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureTrips(ctx, db); err != nil {
		problems = append(problems, "trips: "+err.Error())
	}
	if err := ensureJoinRequests(ctx, db); err != nil {
		problems = append(problems, "join_requests: "+err.Error())
	}
	if err := ensureGroupChats(ctx, db); err != nil {
		problems = append(problems, "group_chats: "+err.Error())
	}
	if err := ensureAuditEvents(ctx, db); err != nil {
		problems = append(problems, "audit_events: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name    string `bson:"name"`
	Key     bson.D `bson:"key"`
	Unique  *bool  `bson:"unique,omitempty"`
	Partial bson.D `bson:"partialFilterExpression,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func partialSig(v interface{}) string {
	if v == nil {
		return ""
	}
	switch p := v.(type) {
	case bson.D:
		return keySig(p)
	case bson.M:
		d := make(bson.D, 0, len(p))
		for k, val := range p {
			d = append(d, bson.E{Key: k, Value: val})
		}
		return keySig(d)
	}
	return fmt.Sprintf("%v", v)
}

func boolVal(b *bool) bool {
	return b != nil && *b
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{} // key sig -> index
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

// Mongo/DocDB returns IndexOptionsConflict when another index already holds
// the desired name with different keys; that surfaces as a plain error here.
func createErr(coll *mongo.Collection, name string, unique bool, err error) string {
	if unique && wafflemongo.IsDup(err) {
		return fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name)
	}
	return fmt.Sprintf("%s(%s): %v", coll.Name(), name, err)
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	existing := listExisting(ctx, coll)

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		var desiredPartial interface{}
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
			desiredPartial = m.Options.PartialFilterExpression
		}
		desiredSig := keySig(m.Keys.(bson.D))
		unique := boolVal(desiredUnique)

		start := time.Now()
		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", unique),
		}

		if ex, ok := existing[desiredSig]; ok {
			sameOpts := unique == boolVal(ex.Unique) && partialSig(desiredPartial) == partialSig(ex.Partial)
			if sameOpts && (desiredName == "" || ex.Name == desiredName) {
				zap.L().Info("reusing existing index", append(fields, zap.String("took", time.Since(start).String()))...)
				continue
			}

			// Options or name differ: drop and recreate with the desired shape.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				zap.L().Warn("drop existing index failed", append(fields, zap.String("existing", ex.Name), zap.Error(err))...)
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
			if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
				errs = append(errs, createErr(coll, desiredName, unique, err))
				continue
			}
			zap.L().Info("index dropped and recreated", append(fields, zap.String("took", time.Since(start).String()))...)
			continue
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err != nil {
			zap.L().Warn("index ensure failed", append(fields, zap.String("took", time.Since(start).String()), zap.Error(err))...)
			errs = append(errs, createErr(coll, desiredName, unique, err))
			continue
		}
		zap.L().Info("index ensured", append(fields,
			zap.String("created_name", created),
			zap.String("took", time.Since(start).String()))...)
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureTrips(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("trips"), []mongo.IndexModel{
		// Trips by creator, newest first
		{
			Keys:    bson.D{{Key: "creator_username", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_trips_creator_created"),
		},
	})
}

func ensureJoinRequests(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("join_requests"), []mongo.IndexModel{
		// 1) At most one pending request per (trip, requester). Resolved
		//    requests fall out of the partial filter so re-requesting works.
		{
			Keys: bson.D{{Key: "trip_id", Value: 1}, {Key: "requester_username", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName(PendingRequestPerPair).
				SetPartialFilterExpression(bson.D{{Key: "status", Value: "pending"}}),
		},

		// 2) Trip history (ListJoinRequests, approved scan for chat reconcile)
		{
			Keys:    bson.D{{Key: "trip_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_join_requests_trip_status_created"),
		},

		// 3) Incoming feed: pending requests on trips I created
		{
			Keys:    bson.D{{Key: "trip_creator_username", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_join_requests_creator_status"),
		},

		// 4) Outgoing feed: my resolved requests
		{
			Keys:    bson.D{{Key: "requester_username", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_join_requests_requester_status"),
		},
	})
}

func ensureGroupChats(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("group_chats"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trip_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(ChatPerTrip),
		},
		// Chats a user belongs to (multikey)
		{
			Keys:    bson.D{{Key: "participants", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_group_chats_participants_updated"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "trip_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_trip_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "actor", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_actor_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_category_type_timestamp"),
		},
	})
}
