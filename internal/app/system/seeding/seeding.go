// internal/app/system/seeding/seeding.go
package seeding

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/stratarefer/internal/app/system/authutil"
	"github.com/dalemusser/stratarefer/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Profiles is the profile persistence the seeder needs.
type Profiles interface {
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	Create(ctx context.Context, p models.Profile) (models.Profile, error)
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	SetRol(ctx context.Context, id primitive.ObjectID, rol string) error
}

// Admin describes the administrator to ensure on startup.
type Admin struct {
	Email    string
	Name     string
	Password string
}

// EnsureAdmin makes sure a profile with a.Email exists and carries the
// administrador rol. An existing password is never overwritten; a.Password
// is only applied to a profile that has none.
func EnsureAdmin(ctx context.Context, profiles Profiles, a Admin, logger *zap.Logger) error {
	if a.Email == "" {
		return nil
	}
	if a.Name == "" {
		a.Name = "Admin"
	}

	var hash *string
	if a.Password != "" {
		if err := authutil.ValidatePassword(a.Password); err != nil {
			return fmt.Errorf("seed admin password: %w", err)
		}
		h, err := authutil.HashPassword(a.Password)
		if err != nil {
			return err
		}
		hash = &h
	}

	existing, err := profiles.GetByEmail(ctx, a.Email)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		p, err := profiles.Create(ctx, models.Profile{
			Email:        a.Email,
			FullName:     a.Name,
			Rol:          models.RolAdministrador,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}
		if hash == nil {
			logger.Warn("created admin profile without a password; it cannot sign in until one is set",
				zap.String("email", p.Email))
		}
		logger.Info("created admin profile", zap.String("email", p.Email), zap.String("profile_id", p.ID.Hex()))
		return nil
	case err != nil:
		return err
	}

	if existing.Rol != models.RolAdministrador {
		if err := profiles.SetRol(ctx, existing.ID, models.RolAdministrador); err != nil {
			return err
		}
		logger.Info("promoted existing profile to admin",
			zap.String("email", existing.Email),
			zap.String("previous_rol", existing.Rol))
	}
	if existing.PasswordHash == nil && hash != nil {
		if err := profiles.SetPassword(ctx, existing.ID, *hash); err != nil {
			return err
		}
		logger.Info("set initial admin password", zap.String("email", existing.Email))
	}
	return nil
}
