// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, step := range []struct {
		name string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"users", ensureUsers},
		{"locations", ensureLocations},
		{"chapters", ensureChapters},
		{"chapter_requests", ensureChapterRequests},
		{"events", ensureEvents},
		{"rsvps", ensureRSVPs},
		{"support_requests", ensureSupportRequests},
		{"comments", ensureComments},
		{"audit_events", ensureAuditEvents},
		{"login_records", ensureLoginRecords},
	} {
		if err := step.fn(ctx, db); err != nil {
			problems = append(problems, step.name+": "+err.Error())
		}
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
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
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

// recreate drops the index called oldName and creates m in its place.
func recreate(ctx context.Context, coll *mongo.Collection, oldName string, m mongo.IndexModel, desiredName string, unique bool) error {
	if _, err := coll.Indexes().DropOne(ctx, oldName); err != nil {
		return fmt.Errorf("%s(%s): drop failed: %v", coll.Name(), desiredName, err)
	}
	if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
		if isDuplicateKeyErr(err) && unique {
			return fmt.Errorf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName)
		}
		return fmt.Errorf("%s(%s): %v", coll.Name(), desiredName, err)
	}
	return nil
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		unique := desiredUnique != nil && *desiredUnique
		desiredSig := keySig(m.Keys.(bson.D))

		start := time.Now()
		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", unique),
		}
		zap.L().Debug("ensuring index", fields...)

		existing := listExisting(ctx, coll)

		if ex, ok := existing[desiredSig]; ok {
			switch {
			case sameBoolPtr(desiredUnique, ex.Unique) && (desiredName == "" || ex.Name == desiredName):
				zap.L().Debug("reusing existing index", fields...)
			case sameBoolPtr(desiredUnique, ex.Unique):
				// Same keys and options under another name: align the name.
				if err := recreate(ctx, coll, ex.Name, m, desiredName, unique); err != nil {
					errs = append(errs, err.Error())
					continue
				}
				zap.L().Info("index renamed", append(fields, zap.String("from", ex.Name), zap.Duration("took", time.Since(start)))...)
			default:
				// Options mismatch (e.g., upgrading to unique).
				if err := recreate(ctx, coll, ex.Name, m, desiredName, unique); err != nil {
					errs = append(errs, err.Error())
					continue
				}
				zap.L().Info("index dropped and recreated", append(fields, zap.Duration("took", time.Since(start)))...)
			}
			continue
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err == nil {
			zap.L().Info("index ensured", append(fields, zap.String("created_name", created), zap.Duration("took", time.Since(start)))...)
			continue
		}

		if isOptionsConflictErr(err) {
			if ex, ok := listExisting(ctx, coll)[desiredSig]; ok {
				if sameBoolPtr(desiredUnique, ex.Unique) {
					zap.L().Debug("reusing existing index (post-conflict)", fields...)
					continue
				}
				if rerr := recreate(ctx, coll, ex.Name, m, desiredName, unique); rerr != nil {
					errs = append(errs, rerr.Error())
				}
				continue
			}
		}

		zap.L().Warn("index ensure failed", append(fields, zap.Duration("took", time.Since(start)), zap.Error(err))...)
		errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_usernameci"),
		},
	})
}

func ensureLocations(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("locations"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "country", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_locations_country_name"),
		},
	})
}

func ensureChapters(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("chapters"), []mongo.IndexModel{
		// Slug is the public identifier; uniqueness here closes the
		// check-then-insert window on concurrent approvals.
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_chapters_slug"),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_chapters_nameci"),
		},
		{
			Keys:    bson.D{{Key: "location_id", Value: 1}},
			Options: options.Index().SetName("idx_chapters_location"),
		},
		{
			Keys:    bson.D{{Key: "member_ids", Value: 1}},
			Options: options.Index().SetName("idx_chapters_members"),
		},
	})
}

func ensureChapterRequests(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("chapter_requests"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "is_approved", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_chapterreq_approved_created"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_chapterreq_user"),
		},
	})
}

func ensureEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "chapter_id", Value: 1}, {Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_events_chapter_slug"),
		},
		// Upcoming/past partitions sort by date within a chapter.
		{
			Keys:    bson.D{{Key: "chapter_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("idx_events_chapter_date"),
		},
		{
			Keys:    bson.D{{Key: "date", Value: 1}},
			Options: options.Index().SetName("idx_events_date"),
		},
	})
}

// RSVPs deliberately have no unique (event_id, user_id) index.
func ensureRSVPs(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("rsvps"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "coming", Value: 1}},
			Options: options.Index().SetName("idx_rsvps_event_coming"),
		},
	})
}

func ensureSupportRequests(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("support_requests"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "is_approved", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_support_event_approved_created"),
		},
	})
}

func ensureComments(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("comments"), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "owner.kind", Value: 1},
				{Key: "owner.id", Value: 1},
				{Key: "created_at", Value: 1},
			},
			Options: options.Index().SetName("idx_comments_owner_created"),
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
			Keys:    bson.D{{Key: "chapter_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_chapter_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_user_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_category_type_timestamp"),
		},
	})
}

func ensureLoginRecords(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("login_records"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_logins_user_created"),
		},
	})
}
