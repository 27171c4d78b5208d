// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/stratarefer/internal/app/resources"
	profilestore "github.com/dalemusser/stratarefer/internal/app/store/profiles"
	"github.com/dalemusser/stratarefer/internal/app/system/seeding"
	"github.com/dalemusser/stratarefer/internal/app/system/timeouts"
	"github.com/dalemusser/stratarefer/internal/app/system/viewdata"
	"github.com/dalemusser/stratarefer/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after the schema is in place and before the handler is
// built. A returned error aborts startup.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()
	viewdata.Init(appCfg.MailFromName)

	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Upload: appCfg.TimeoutUpload,
	})

	profiles := profilestore.New(deps.MongoDatabase, logger)
	admin := seeding.Admin{
		Email:    appCfg.SeedAdminEmail,
		Name:     appCfg.SeedAdminName,
		Password: appCfg.SeedAdminPassword,
	}
	if err := seeding.EnsureAdmin(ctx, profiles, admin, logger); err != nil {
		logger.Error("failed to seed admin profile", zap.Error(err))
		return err
	}

	if n, err := profiles.CountByRol(ctx, models.RolAdministrador); err == nil && n == 0 {
		logger.Warn("no active administrador profile exists; set seed_admin_email and seed_admin_password")
	}
	return nil
}
