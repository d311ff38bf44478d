// Package txn runs multi-document writes inside a MongoDB transaction when
// the deployment supports one, and falls back to sequential execution on
// standalone servers.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Command error codes returned by servers that cannot run transactions.
const (
	codeIllegalOperation      = 20
	codeNoSuchTransaction     = 51
	codeOperationNotSupported = 263
)

// IsNotSupported reports whether err indicates the server cannot run
// multi-document transactions (standalone mongod, old versions).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case codeIllegalOperation, codeNoSuchTransaction, codeOperationNotSupported:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }

	switch {
	case has("transaction") && has("replica set"):
		return true
	case has("session") && has("not supported"):
		return true
	case has("transaction") && has("session"):
		return true
	case has("illegal operation"):
		return true
	}
	return false
}

// Run executes fn inside a transaction. If the server rejects transactions,
// fn is executed once more without one using the caller's context, and a
// debug line is logged. fn must therefore be safe to retry from scratch.
func Run(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return runWithout(ctx, log, fn)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return runWithout(ctx, log, fn)
	}
	return err
}

func runWithout(ctx context.Context, log *zap.Logger, fn func(ctx context.Context) error) error {
	if log != nil {
		log.Debug("transactions not supported; running without")
	}
	return fn(ctx)
}
