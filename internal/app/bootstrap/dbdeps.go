// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/nats-io/nats.go"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// NATS is nil when domain-event publishing is disabled or the
	// server was unreachable at startup.
	NATS *nats.Conn
}
