// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	userstore "github.com/dalemusser/meetuphub/internal/app/store/users"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// MeetupHub uses it to promote the configured staff account.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.StaffUsername == "" {
		return nil
	}
	return ensureStaff(ctx, deps, appCfg.StaffUsername, logger)
}

// ensureStaff sets the staff flag on an existing account. A missing account
// is not fatal: the operator may register it later and restart.
func ensureStaff(ctx context.Context, deps DBDeps, username string, logger *zap.Logger) error {
	err := userstore.New(deps.MongoDatabase).SetStaff(ctx, username, true)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		logger.Warn("staff user not found; skipping promotion", zap.String("username", username))
		return nil
	case err != nil:
		logger.Error("promote staff user failed", zap.String("username", username), zap.Error(err))
		return err
	}
	logger.Info("staff user ensured", zap.String("username", username))
	return nil
}
