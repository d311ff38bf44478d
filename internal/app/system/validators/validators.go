// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/meetuphub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
//
// Collections are created up front because approval inserts into chapters
// inside a transaction, and older servers refuse to create a namespace there.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
			return
		}
		logger.Debug("validator ensured", zap.String("collection", coll))
	}

	ensure("users", usersSchema())
	ensure("locations", locationsSchema())
	ensure("chapters", chaptersSchema())
	ensure("chapter_requests", chapterRequestsSchema())
	ensure("events", eventsSchema())
	ensure("rsvps", rsvpsSchema())
	ensure("support_requests", supportRequestsSchema())
	ensure("comments", commentsSchema())
	ensure("login_records", loginRecordsSchema())

	// Written by the audit logger; shape is free-form details.
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure name exists.
// Returns created==true only if this call created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	if exists, listErr := collectionExists(ctx, db, name); listErr == nil && exists {
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	return db.RunCommand(ctx, cmd).Decode(&out)
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank  = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	objectID  = bson.M{"bsonType": "objectId"}
	date      = bson.M{"bsonType": "date"}
	boolean   = bson.M{"bsonType": "bool"}
	str       = bson.M{"bsonType": "string"}
	idList    = bson.M{"bsonType": bson.A{"array", "null"}, "items": objectID}
	slugShape = bson.M{"bsonType": "string", "pattern": "^[a-z0-9]+(?:[-_][a-z0-9]+)*$"}
)

func schema(required bson.A, props bson.M) bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":   "object",
			"required":   required,
			"properties": props,
		},
	}
}

func usersSchema() bson.M {
	return schema(bson.A{"username", "username_ci", "status"}, bson.M{
		"username":    nonBlank,
		"username_ci": nonBlank,
		"full_name":   str,
		"is_staff":    boolean,
		"status":      bson.M{"enum": bson.A{"active", "disabled"}},
	})
}

func locationsSchema() bson.M {
	return schema(bson.A{"name"}, bson.M{
		"name":         nonBlank,
		"display_name": str,
		"country":      str,
	})
}

func chaptersSchema() bson.M {
	return schema(bson.A{"name", "name_ci", "slug", "location_id"}, bson.M{
		"name":             nonBlank,
		"name_ci":          nonBlank,
		"slug":             slugShape,
		"location_id":      objectID,
		"description":      str,
		"sponsors":         str,
		"member_ids":       idList,
		"organizer_ids":    idList,
		"join_request_ids": idList,
	})
}

func chapterRequestsSchema() bson.M {
	return schema(bson.A{"name", "slug", "location_id", "user_id", "is_approved"}, bson.M{
		"name":        nonBlank,
		"slug":        slugShape,
		"location_id": objectID,
		"user_id":     objectID,
		"is_approved": boolean,
	})
}

func eventsSchema() bson.M {
	return schema(bson.A{"chapter_id", "title", "slug", "date"}, bson.M{
		"chapter_id": objectID,
		"title":      nonBlank,
		"slug":       slugShape,
		"date":       date,
		"time":       str,
		"created_by": objectID,
	})
}

func rsvpsSchema() bson.M {
	return schema(bson.A{"event_id", "user_id", "coming", "plus_one"}, bson.M{
		"event_id": objectID,
		"user_id":  objectID,
		"coming":   boolean,
		"plus_one": boolean,
	})
}

func supportRequestsSchema() bson.M {
	return schema(bson.A{"event_id", "volunteer_id", "is_approved"}, bson.M{
		"event_id":     objectID,
		"volunteer_id": objectID,
		"description":  str,
		"is_approved":  boolean,
	})
}

func commentsSchema() bson.M {
	return schema(bson.A{"owner", "author_id", "body"}, bson.M{
		"owner": bson.M{
			"bsonType": "object",
			"required": bson.A{"kind", "id"},
			"properties": bson.M{
				"kind": bson.M{"enum": bson.A{string(models.OwnerEvent), string(models.OwnerSupportRequest)}},
				"id":   objectID,
			},
		},
		"author_id":   objectID,
		"body":        str,
		"is_approved": boolean,
	})
}

func loginRecordsSchema() bson.M {
	return schema(bson.A{"user_id", "created_at"}, bson.M{
		"user_id":    objectID,
		"username":   str,
		"ip":         str,
		"created_at": date,
	})
}
