// internal/app/store/vacancies/vacancystore.go
package vacancystore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratarefer/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection holds vacancies.
const Collection = "vacantes"

// ErrNotFound is returned when no vacancy matches the given id.
var ErrNotFound = errors.New("vacancy not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// ListActive returns active vacancies, newest publication first.
func (s *Store) ListActive(ctx context.Context) ([]models.Vacancy, error) {
	return s.find(ctx, bson.M{"esta_activa": true})
}

// ListAll returns every vacancy, newest publication first.
func (s *Store) ListAll(ctx context.Context) ([]models.Vacancy, error) {
	return s.find(ctx, bson.M{})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Vacancy, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fecha_publicacion", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	vacancies := []models.Vacancy{}
	if err := cur.All(ctx, &vacancies); err != nil {
		return nil, err
	}
	return vacancies, nil
}

// Get loads a vacancy by id.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*models.Vacancy, error) {
	var v models.Vacancy
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// Create inserts a vacancy. FechaPublicacion defaults to now.
func (s *Store) Create(ctx context.Context, v models.Vacancy) (models.Vacancy, error) {
	now := time.Now().UTC()
	v.ID = primitive.NewObjectID()
	if v.FechaPublicacion.IsZero() {
		v.FechaPublicacion = now
	}
	if v.TecnologiasRequeridas == nil {
		v.TecnologiasRequeridas = []string{}
	}
	v.VistasCount = 0
	v.AplicacionesCount = 0
	v.CreatedAt = now
	v.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, v); err != nil {
		return models.Vacancy{}, err
	}
	return v, nil
}

// Update replaces the editable fields of a vacancy. Counters, the author and
// the publication date are left untouched.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, v models.Vacancy) error {
	if v.TecnologiasRequeridas == nil {
		v.TecnologiasRequeridas = []string{}
	}
	set := bson.M{
		"titulo_puesto":          v.TituloPuesto,
		"departamento":           v.Departamento,
		"ubicacion":              v.Ubicacion,
		"modalidad":              v.Modalidad,
		"descripcion_puesto":     v.DescripcionPuesto,
		"responsabilidades":      v.Responsabilidades,
		"requisitos":             v.Requisitos,
		"beneficios":             v.Beneficios,
		"tecnologias_requeridas": v.TecnologiasRequeridas,
		"moneda":                 v.Moneda,
		"esta_activa":            v.EstaActiva,
		"updated_at":             time.Now().UTC(),
	}
	unset := bson.M{}
	optional := func(key string, val any, present bool) {
		if present {
			set[key] = val
		} else {
			unset[key] = ""
		}
	}
	optional("salario_rango_min", v.SalarioRangoMin, v.SalarioRangoMin != nil)
	optional("salario_rango_max", v.SalarioRangoMax, v.SalarioRangoMax != nil)
	optional("fecha_cierre", v.FechaCierre, v.FechaCierre != nil)

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a vacancy. Referrals that point at it are kept.
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

// IncrementApplications adds one to a vacancy's aplicaciones_count.
func (s *Store) IncrementApplications(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"aplicaciones_count": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountActive returns the number of active vacancies.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"esta_activa": true})
}

// TitlesByID returns id → titulo_puesto for the given ids. Unknown ids are
// simply absent from the map.
func (s *Store) TitlesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1, "titulo_puesto": 1})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var v models.Vacancy
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out[v.ID] = v.TituloPuesto
	}
	return out, cur.Err()
}
