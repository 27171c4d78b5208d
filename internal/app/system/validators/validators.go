// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, log, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, log, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				log.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("usuarios", usuariosSchema())
	ensure("vacantes", vacantesSchema())
	ensure("referencias", referenciasSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, log *zap.Logger, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		log.Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			log.Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		log.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	log.Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, log *zap.Logger, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	log.Info("validator ensured", zap.String("collection", name))
	return nil
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

// rol stays a plain string: unknown values must be storable so the role
// resolver can treat them as "no role".
func usuariosSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"email", "email_ci", "rol"},
			"properties": bson.M{
				"email":         bson.M{"bsonType": "string", "minLength": 3},
				"email_ci":      bson.M{"bsonType": "string", "minLength": 3},
				"full_name":     bson.M{"bsonType": "string"},
				"password_hash": bson.M{"bsonType": bson.A{"string", "null"}},
				"rol":           bson.M{"bsonType": "string"},
				"status":        bson.M{"enum": bson.A{"active", "disabled"}},
			},
		},
	}
}

func vacantesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"titulo_puesto", "departamento", "modalidad", "esta_activa", "fecha_publicacion"},
			"properties": bson.M{
				"titulo_puesto":          bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"departamento":           bson.M{"bsonType": "string", "minLength": 1},
				"modalidad":              bson.M{"enum": bson.A{"remoto", "presencial", "hibrido"}},
				"moneda":                 bson.M{"enum": bson.A{"USD", "MXN", "EUR", ""}},
				"tecnologias_requeridas": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"salario_rango_min":      bson.M{"bsonType": bson.A{"double", "int", "long", "null"}, "minimum": 0},
				"salario_rango_max":      bson.M{"bsonType": bson.A{"double", "int", "long", "null"}, "minimum": 0},
				"esta_activa":            bson.M{"bsonType": "bool"},
				"fecha_publicacion":      bson.M{"bsonType": "date"},
				"aplicaciones_count":     bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
			},
		},
	}
}

func referenciasSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{
				"vacante_id", "referidor_nombre", "referidor_email",
				"candidato_nombre", "candidato_email", "relacion_con_candidato",
				"justificacion_recomendacion", "estado_proceso",
			},
			"properties": bson.M{
				"vacante_id":                  bson.M{"bsonType": "objectId"},
				"referidor_email":             bson.M{"bsonType": "string", "minLength": 3},
				"candidato_email":             bson.M{"bsonType": "string", "minLength": 3},
				"justificacion_recomendacion": bson.M{"bsonType": "string", "minLength": 1},
				"años_conociendo":             bson.M{"bsonType": bson.A{"int", "long", "null"}, "minimum": 0},
				"cv_url":                      bson.M{"bsonType": bson.A{"string", "null"}},
				"estado_proceso":              bson.M{"enum": bson.A{"pendiente", "en revision", "contactado", "descartado", "contratado"}},
			},
		},
	}
}
