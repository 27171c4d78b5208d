// internal/app/store/profiles/profilestore.go
package profilestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratarefer/internal/app/system/gate"
	"github.com/dalemusser/stratarefer/internal/app/system/normalize"
	"github.com/dalemusser/stratarefer/internal/app/system/timeouts"
	"github.com/dalemusser/stratarefer/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection holds user profiles.
const Collection = "usuarios"

var (
	// ErrDuplicateEmail is returned when a profile with the same email exists.
	ErrDuplicateEmail = errors.New("a profile with this email already exists")
	errEmptyEmail     = errors.New("email is required")
)

type Store struct {
	c      *mongo.Collection
	logger *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{c: db.Collection(Collection), logger: logger}
}

// GetByID loads a profile by ObjectID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByEmail looks up a profile by case/diacritic-insensitive email.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(normalize.Email(email))}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new profile after normalizing its fields.
func (s *Store) Create(ctx context.Context, p models.Profile) (models.Profile, error) {
	p.Email = normalize.Email(p.Email)
	if p.Email == "" {
		return models.Profile{}, errEmptyEmail
	}
	p.ID = primitive.NewObjectID()
	p.EmailCI = text.Fold(p.Email)
	p.FullName = normalize.Name(p.FullName)
	if p.Status == "" {
		p.Status = models.StatusActive
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Profile{}, ErrDuplicateEmail
		}
		return models.Profile{}, err
	}
	return p, nil
}

// SetPassword replaces a profile's password hash.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	return err
}

// SetRol overwrites the stored rol of a profile.
func (s *Store) SetRol(ctx context.Context, id primitive.ObjectID, rol string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"rol":        rol,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// CountByRol returns the number of active profiles whose stored rol is rol.
func (s *Store) CountByRol(ctx context.Context, rol string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"rol": rol, "status": models.StatusActive})
}

// ResolveRole implements gate.RoleResolver. A missing or disabled profile and
// an unrecognized rol all yield ok=false with a nil error; only a failed
// lookup returns an error.
func (s *Store) ResolveRole(ctx context.Context, principalID string) (gate.Role, bool, error) {
	oid, err := primitive.ObjectIDFromHex(principalID)
	if err != nil {
		return "", false, nil
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), s.logger, "profiles.ResolveRole")
	defer cancel()

	var p models.Profile
	proj := options.FindOne().SetProjection(bson.M{"_id": 1, "rol": 1, "status": 1})
	if err := s.c.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", false, nil
		}
		return "", false, err
	}
	if !p.IsActive() {
		return "", false, nil
	}

	role, ok := gate.ParseRole(p.Rol)
	if !ok && p.Rol != "" {
		s.logger.Debug("profile carries an unrecognized rol",
			zap.String("principal_id", principalID),
			zap.String("rol", p.Rol))
	}
	return role, ok, nil
}
