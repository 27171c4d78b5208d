// Package vacancyapi serves vacancies as JSON at /api/vacantes.
//
// Listing is public. Reading one vacancy and every mutation sit behind the
// admin middleware passed to Routes, which checks the caller's role on each
// request without relying on the /admin gate.
package vacancyapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/stratarefer/internal/app/features/errors"
	"github.com/dalemusser/stratarefer/internal/app/features/vacancies"
	vacancystore "github.com/dalemusser/stratarefer/internal/app/store/vacancies"
	"github.com/dalemusser/stratarefer/internal/app/system/authz"
	"github.com/dalemusser/stratarefer/internal/app/system/jsonutil"
	"github.com/dalemusser/stratarefer/internal/app/system/timeouts"
	"github.com/dalemusser/stratarefer/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is the vacancy persistence behind the API.
type Store interface {
	ListActive(ctx context.Context) ([]models.Vacancy, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Vacancy, error)
	Create(ctx context.Context, v models.Vacancy) (models.Vacancy, error)
	Update(ctx context.Context, id primitive.ObjectID, v models.Vacancy) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Handler struct {
	store  Store
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
	now    func() time.Time
}

func NewHandler(store Store, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{store: store, errLog: errLog, logger: logger, now: time.Now}
}

// Routes mounts the API. requireAdmin guards everything except the list.
func Routes(h *Handler, requireAdmin func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
	return r
}

const (
	msgNotFound = "Vacante no encontrada."
	msgInvalid  = "Revisa los campos marcados."
	msgBadJSON  = "El cuerpo de la solicitud no es JSON válido."
	msgInternal = "Error interno del servidor."
)

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "vacancyapi.ListActive")
	defer cancel()

	all, err := h.store.ListActive(ctx)
	if err != nil {
		h.errLog.Log(r, "failed to list vacancies", err)
		jsonutil.InternalError(w, msgInternal)
		return
	}
	now := h.now()
	open := make([]models.Vacancy, 0, len(all))
	for _, v := range all {
		if v.IsOpen(now) {
			open = append(open, v)
		}
	}
	jsonutil.OK(w, open)
}

// vacancyID parses {id}. It answers 404 itself when the id is malformed.
func vacancyID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgNotFound)
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*models.Vacancy, bool) {
	id, ok := vacancyID(w, r)
	if !ok {
		return nil, false
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "vacancyapi.Get")
	defer cancel()

	v, err := h.store.Get(ctx, id)
	switch {
	case errors.Is(err, vacancystore.ErrNotFound):
		jsonutil.NotFound(w, msgNotFound)
		return nil, false
	case err != nil:
		h.errLog.Log(r, "failed to load vacancy", err)
		jsonutil.InternalError(w, msgInternal)
		return nil, false
	}
	return v, true
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	if v, ok := h.load(w, r); ok {
		jsonutil.OK(w, v)
	}
}

// decode reads and validates a vacancy body.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (vacancies.Input, bool) {
	var in vacancies.Input
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, msgBadJSON)
		return in, false
	}
	in.Normalize()
	if res := in.Validate(h.now()); res.HasErrors() {
		jsonutil.ValidationError(w, msgInvalid, res.Fields())
		return in, false
	}
	return in, true
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	_, _, adminID, _ := authz.UserCtx(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "vacancyapi.Create")
	defer cancel()

	v, err := h.store.Create(ctx, in.Model(adminID))
	if err != nil {
		h.errLog.Log(r, "failed to create vacancy", err)
		jsonutil.InternalError(w, msgInternal)
		return
	}
	jsonutil.Created(w, "Vacante creada", v)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	cur, ok := h.load(w, r)
	if !ok {
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "vacancyapi.Update")
	defer cancel()

	if err := h.store.Update(ctx, cur.ID, in.Model(cur.CreadaPorAdminID)); err != nil {
		if errors.Is(err, vacancystore.ErrNotFound) {
			jsonutil.NotFound(w, msgNotFound)
			return
		}
		h.errLog.Log(r, "failed to update vacancy", err)
		jsonutil.InternalError(w, msgInternal)
		return
	}

	v, err := h.store.Get(ctx, cur.ID)
	if err != nil {
		h.errLog.Log(r, "failed to reload vacancy", err)
		jsonutil.InternalError(w, msgInternal)
		return
	}
	jsonutil.OK(w, v)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := vacancyID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "vacancyapi.Delete")
	defer cancel()

	if err := h.store.Delete(ctx, id); err != nil {
		if errors.Is(err, vacancystore.ErrNotFound) {
			jsonutil.NotFound(w, msgNotFound)
			return
		}
		h.errLog.Log(r, "failed to delete vacancy", err)
		jsonutil.InternalError(w, msgInternal)
		return
	}

	_, email, _, _ := authz.UserCtx(r)
	h.logger.Info("vacancy deleted via api", zap.String("vacante_id", id.Hex()), zap.String("admin", email))
	jsonutil.JSON(w, http.StatusOK, jsonutil.Envelope{Success: true, Message: "Vacante eliminada"})
}
