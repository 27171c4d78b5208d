// internal/app/features/vacancies/vacancies.go
package vacancies

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	errorsfeature "github.com/dalemusser/stratarefer/internal/app/features/errors"
	vacancystore "github.com/dalemusser/stratarefer/internal/app/store/vacancies"
	"github.com/dalemusser/stratarefer/internal/app/system/authz"
	"github.com/dalemusser/stratarefer/internal/app/system/inputval"
	"github.com/dalemusser/stratarefer/internal/app/system/timeouts"
	"github.com/dalemusser/stratarefer/internal/app/system/viewdata"
	"github.com/dalemusser/stratarefer/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is the vacancy persistence the admin pages and the JSON API use.
type Store interface {
	ListAll(ctx context.Context) ([]models.Vacancy, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Vacancy, error)
	Create(ctx context.Context, v models.Vacancy) (models.Vacancy, error)
	Update(ctx context.Context, id primitive.ObjectID, v models.Vacancy) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ReferralLister lists the referrals of one vacancy.
type ReferralLister interface {
	ListByVacancy(ctx context.Context, vacanteID primitive.ObjectID) ([]models.Referral, error)
}

// Handler serves the vacancy admin pages.
type Handler struct {
	store     Store
	referrals ReferralLister
	errLog    *errorsfeature.ErrorLogger
	errPages  *errorsfeature.Handler
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandler creates a new vacancies Handler.
func NewHandler(store Store, referrals ReferralLister, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		store:     store,
		referrals: referrals,
		errLog:    errLog,
		errPages:  errorsfeature.NewHandler(),
		logger:    logger,
		now:       time.Now,
	}
}

// Routes mounts the pages under /admin/vacantes. Every route re-checks the
// administrator role.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(authz.RequireAdminPage)
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/nueva", h.showNew)
	r.Get("/{id}/editar", h.showEdit)
	r.Post("/{id}", h.update)
	r.Post("/{id}/eliminar", h.delete)
	r.Get("/{id}/referidos", h.referidos)
	return r
}

type listRow struct {
	ID           string
	Titulo       string
	Departamento string
	Modalidad    string
	Activa       bool
	Abierta      bool
	Aplicaciones int64
	Publicada    string
}

// ListVM is the view model for the vacancy list.
type ListVM struct {
	viewdata.BaseVM
	Rows []listRow
}

// FormVM is the view model for the create and edit forms.
type FormVM struct {
	viewdata.BaseVM
	ID          string
	Action      string
	Input       Input
	Techs       string
	Active      bool
	Fields      map[string]string
	Modalidades []string
	Monedas     []string
}

// ReferidosVM lists the referrals of one vacancy.
type ReferidosVM struct {
	viewdata.BaseVM
	Vacancy   *models.Vacancy
	Referrals []models.Referral
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "vacancies.ListAll")
	defer cancel()

	all, err := h.store.ListAll(ctx)
	if err != nil {
		h.errLog.Log(r, "failed to list vacancies", err)
		h.errPages.InternalError(w, r)
		return
	}

	vm := ListVM{BaseVM: viewdata.New(r, "Vacantes", "/admin/dashboard")}
	vm.Notice = noticeFor(r.URL.Query().Get("ok"))
	now := h.now()
	for i := range all {
		v := &all[i]
		vm.Rows = append(vm.Rows, listRow{
			ID:           v.ID.Hex(),
			Titulo:       v.TituloPuesto,
			Departamento: v.Departamento,
			Modalidad:    v.Modalidad,
			Activa:       v.EstaActiva,
			Abierta:      v.IsOpen(now),
			Aplicaciones: v.AplicacionesCount,
			Publicada:    v.FechaPublicacion.Format("02/01/2006"),
		})
	}
	templates.Render(w, r, tplList, vm)
}

func noticeFor(code string) string {
	switch code {
	case "creada":
		return "Vacante creada."
	case "actualizada":
		return "Vacante actualizada."
	case "eliminada":
		return "Vacante eliminada."
	}
	return ""
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, id string, in Input, res *inputval.Result) {
	title, action := "Nueva vacante", "/admin/vacantes"
	if id != "" {
		title, action = "Editar vacante", "/admin/vacantes/"+id
	}
	vm := FormVM{
		BaseVM:      viewdata.New(r, title, "/admin/vacantes"),
		ID:          id,
		Action:      action,
		Input:       in,
		Techs:       strings.Join(in.TecnologiasRequeridas, ", "),
		Active:      in.EstaActiva == nil || *in.EstaActiva,
		Modalidades: models.AllModalidades(),
		Monedas:     models.AllMonedas(),
	}
	if res != nil && res.HasErrors() {
		vm.Error = "Revisa los campos marcados."
		vm.Fields = res.Fields()
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, tplForm, vm)
}

func (h *Handler) showNew(w http.ResponseWriter, r *http.Request) {
	active := true
	h.renderForm(w, r, http.StatusOK, "", Input{Modalidad: models.ModalidadRemoto, EstaActiva: &active}, nil)
}

// readForm parses and validates the submitted form.
func (h *Handler) readForm(r *http.Request) (Input, *inputval.Result, error) {
	if err := r.ParseForm(); err != nil {
		return Input{}, nil, err
	}
	in, parseRes := FromForm(r)
	in.Normalize()
	res := in.Validate(h.now())
	res.Errors = append(parseRes.Errors, res.Errors...)
	return in, res, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	in, res, err := h.readForm(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if res.HasErrors() {
		h.renderForm(w, r, http.StatusBadRequest, "", in, res)
		return
	}

	_, _, adminID, _ := authz.UserCtx(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "vacancies.Create")
	defer cancel()

	if _, err := h.store.Create(ctx, in.Model(adminID)); err != nil {
		h.errLog.Log(r, "failed to create vacancy", err)
		h.errPages.InternalError(w, r)
		return
	}
	http.Redirect(w, r, "/admin/vacantes?ok=creada", http.StatusSeeOther)
}

// load resolves {id}. It writes the error response itself and returns nil
// when the vacancy cannot be shown.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) *models.Vacancy {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.errPages.NotFound(w, r)
		return nil
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "vacancies.Get")
	defer cancel()

	v, err := h.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, vacancystore.ErrNotFound) {
			h.errPages.NotFound(w, r)
			return nil
		}
		h.errLog.Log(r, "failed to load vacancy", err)
		h.errPages.InternalError(w, r)
		return nil
	}
	return v
}

func (h *Handler) showEdit(w http.ResponseWriter, r *http.Request) {
	v := h.load(w, r)
	if v == nil {
		return
	}
	h.renderForm(w, r, http.StatusOK, v.ID.Hex(), FromVacancy(v), nil)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	v := h.load(w, r)
	if v == nil {
		return
	}
	in, res, err := h.readForm(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if res.HasErrors() {
		h.renderForm(w, r, http.StatusBadRequest, v.ID.Hex(), in, res)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "vacancies.Update")
	defer cancel()

	if err := h.store.Update(ctx, v.ID, in.Model(v.CreadaPorAdminID)); err != nil {
		if errors.Is(err, vacancystore.ErrNotFound) {
			h.errPages.NotFound(w, r)
			return
		}
		h.errLog.Log(r, "failed to update vacancy", err)
		h.errPages.InternalError(w, r)
		return
	}
	http.Redirect(w, r, "/admin/vacantes?ok=actualizada", http.StatusSeeOther)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.errPages.NotFound(w, r)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "vacancies.Delete")
	defer cancel()

	if err := h.store.Delete(ctx, id); err != nil {
		if errors.Is(err, vacancystore.ErrNotFound) {
			h.errPages.NotFound(w, r)
			return
		}
		h.errLog.Log(r, "failed to delete vacancy", err)
		h.errPages.InternalError(w, r)
		return
	}
	h.logger.Info("vacancy deleted", zap.String("vacante_id", id.Hex()))
	http.Redirect(w, r, "/admin/vacantes?ok=eliminada", http.StatusSeeOther)
}

func (h *Handler) referidos(w http.ResponseWriter, r *http.Request) {
	v := h.load(w, r)
	if v == nil {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "vacancies.ListByVacancy")
	defer cancel()

	refs, err := h.referrals.ListByVacancy(ctx, v.ID)
	if err != nil {
		h.errLog.Log(r, "failed to list referrals of vacancy", err)
		h.errPages.InternalError(w, r)
		return
	}

	vm := ReferidosVM{
		BaseVM:    viewdata.New(r, "Referidos: "+v.TituloPuesto, "/admin/vacantes"),
		Vacancy:   v,
		Referrals: refs,
	}
	templates.Render(w, r, tplReferidos, vm)
}
