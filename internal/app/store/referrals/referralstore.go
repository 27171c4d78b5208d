// internal/app/store/referrals/referralstore.go
package referralstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/stratarefer/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection holds referrals.
const Collection = "referencias"

var (
	// ErrNotFound is returned when no referral matches the given id.
	ErrNotFound = errors.New("referral not found")
	// ErrInvalidEstado is returned for a process state outside models.AllEstados.
	ErrInvalidEstado = errors.New("invalid estado_proceso")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	// Q is a case-insensitive substring matched against the candidate name,
	// candidate email and referrer name.
	Q string
	// Estado restricts results to one process state.
	Estado string
	// VacanteID restricts results to one vacancy.
	VacanteID primitive.ObjectID
}

func (f Filter) bson() bson.M {
	m := bson.M{}
	if f.Q != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Q), Options: "i"}
		m["$or"] = bson.A{
			bson.M{"candidato_nombre": re},
			bson.M{"candidato_email": re},
			bson.M{"referidor_nombre": re},
		}
	}
	if f.Estado != "" {
		m["estado_proceso"] = f.Estado
	}
	if !f.VacanteID.IsZero() {
		m["vacante_id"] = f.VacanteID
	}
	return m
}

// Create inserts a referral. EstadoProceso defaults to pendiente.
func (s *Store) Create(ctx context.Context, r models.Referral) (models.Referral, error) {
	if r.EstadoProceso == "" {
		r.EstadoProceso = models.EstadoPendiente
	}
	if !models.IsValidEstado(r.EstadoProceso) {
		return models.Referral{}, ErrInvalidEstado
	}
	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	r.CreatedAt = now
	r.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Referral{}, err
	}
	return r, nil
}

// Get loads a referral by id.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*models.Referral, error) {
	var r models.Referral
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// List returns referrals matching f, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Referral, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, f.bson(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	referrals := []models.Referral{}
	if err := cur.All(ctx, &referrals); err != nil {
		return nil, err
	}
	return referrals, nil
}

// Recent returns the n newest referrals.
func (s *Store) Recent(ctx context.Context, n int64) ([]models.Referral, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).SetLimit(n)
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	referrals := []models.Referral{}
	if err := cur.All(ctx, &referrals); err != nil {
		return nil, err
	}
	return referrals, nil
}

// ListByVacancy returns the referrals of one vacancy, newest first.
func (s *Store) ListByVacancy(ctx context.Context, vacanteID primitive.ObjectID) ([]models.Referral, error) {
	return s.List(ctx, Filter{VacanteID: vacanteID})
}

// Count returns the number of referrals matching f.
func (s *Store) Count(ctx context.Context, f Filter) (int64, error) {
	return s.c.CountDocuments(ctx, f.bson())
}

// CountByEstado returns the number of referrals per process state. States
// with no referrals are present with a zero count.
func (s *Store) CountByEstado(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(models.AllEstados()))
	for _, e := range models.AllEstados() {
		out[e] = 0
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$estado_proceso"},
			{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			Estado string `bson:"_id"`
			N      int64  `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.Estado] = row.N
	}
	return out, cur.Err()
}

// UpdateStatus sets a referral's estado_proceso.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, estado string) error {
	if !models.IsValidEstado(estado) {
		return ErrInvalidEstado
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"estado_proceso": estado,
		"updated_at":     time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a referral.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
