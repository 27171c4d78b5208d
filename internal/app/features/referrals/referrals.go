// internal/app/features/referrals/referrals.go
package referrals

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	errorsfeature "github.com/dalemusser/stratarefer/internal/app/features/errors"
	referralstore "github.com/dalemusser/stratarefer/internal/app/store/referrals"
	"github.com/dalemusser/stratarefer/internal/app/system/authz"
	"github.com/dalemusser/stratarefer/internal/app/system/normalize"
	"github.com/dalemusser/stratarefer/internal/app/system/timeouts"
	"github.com/dalemusser/stratarefer/internal/app/system/viewdata"
	"github.com/dalemusser/stratarefer/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is the referral persistence used by the admin list.
type Store interface {
	List(ctx context.Context, f referralstore.Filter) ([]models.Referral, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, estado string) error
}

// TitleLookup maps vacancy ids to titles.
type TitleLookup interface {
	TitlesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
}

type Handler struct {
	store     Store
	vacancies TitleLookup
	errLog    *errorsfeature.ErrorLogger
	errPages  *errorsfeature.Handler
	logger    *zap.Logger
}

func NewHandler(store Store, vacancies TitleLookup, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		store:     store,
		vacancies: vacancies,
		errLog:    errLog,
		errPages:  errorsfeature.NewHandler(),
		logger:    logger,
	}
}

// Routes mounts the referral admin pages under /admin/referencias.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(authz.RequireAdminPage)
	r.Get("/", h.list)
	r.Post("/{id}/estado", h.updateStatus)
	return r
}

type row struct {
	models.Referral
	TituloVacante string
}

// ListVM is the view model for the referral list.
type ListVM struct {
	viewdata.BaseVM
	Q       string
	Estado  string
	Estados []string
	Rows    []row
	Total   int
	// Return is the current list URL so status forms land back on the same
	// filtered view.
	Return string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f := referralstore.Filter{
		Q:      normalize.QueryParam(query.Get(r, "q")),
		Estado: normalize.Status(query.Get(r, "estado")),
	}
	if f.Estado != "" && !models.IsValidEstado(f.Estado) {
		f.Estado = ""
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "referrals.List")
	defer cancel()

	refs, err := h.store.List(ctx, f)
	if err != nil {
		h.errLog.Log(r, "failed to list referrals", err)
		h.errPages.InternalError(w, r)
		return
	}

	titles := h.titles(ctx, r, refs)

	vm := ListVM{
		BaseVM:  viewdata.New(r, "Referencias", "/admin/dashboard"),
		Q:       f.Q,
		Estado:  f.Estado,
		Estados: models.AllEstados(),
		Total:   len(refs),
		Return:  r.URL.RequestURI(),
	}
	switch query.Get(r, "ok") {
	case "estado":
		vm.Notice = "Estado actualizado."
	}
	for _, ref := range refs {
		t, ok := titles[ref.VacanteID]
		if !ok {
			t = "Vacante eliminada"
		}
		vm.Rows = append(vm.Rows, row{Referral: ref, TituloVacante: t})
	}
	templates.Render(w, r, "referrals/list", vm)
}

// titles resolves vacancy titles. A failure only degrades the page.
func (h *Handler) titles(ctx context.Context, r *http.Request, refs []models.Referral) map[primitive.ObjectID]string {
	if len(refs) == 0 {
		return nil
	}
	seen := make(map[primitive.ObjectID]struct{}, len(refs))
	ids := make([]primitive.ObjectID, 0, len(refs))
	for _, ref := range refs {
		if _, dup := seen[ref.VacanteID]; !dup {
			seen[ref.VacanteID] = struct{}{}
			ids = append(ids, ref.VacanteID)
		}
	}
	titles, err := h.vacancies.TitlesByID(ctx, ids)
	if err != nil {
		h.errLog.Warn(r, "vacancy titles unavailable", err)
		return nil
	}
	return titles
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.errPages.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	estado := normalize.Status(r.PostFormValue("estado"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "referrals.UpdateStatus")
	defer cancel()

	switch err := h.store.UpdateStatus(ctx, id, estado); {
	case errors.Is(err, referralstore.ErrInvalidEstado):
		http.Error(w, "Estado no válido", http.StatusBadRequest)
		return
	case errors.Is(err, referralstore.ErrNotFound):
		h.errPages.NotFound(w, r)
		return
	case err != nil:
		h.errLog.Log(r, "failed to update referral status", err)
		h.errPages.InternalError(w, r)
		return
	}

	_, email, _, _ := authz.UserCtx(r)
	h.logger.Info("referral status updated",
		zap.String("referral_id", id.Hex()),
		zap.String("estado", estado),
		zap.String("admin", email))

	http.Redirect(w, r, returnURL(r.PostFormValue("return")), http.StatusSeeOther)
}

// returnURL keeps redirects inside the referral list and flags the update.
func returnURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" || u.Path != "/admin/referencias" {
		return "/admin/referencias?ok=estado"
	}
	q := u.Query()
	q.Set("ok", "estado")
	u.RawQuery = q.Encode()
	return u.RequestURI()
}
