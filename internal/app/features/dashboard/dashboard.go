// internal/app/features/dashboard/dashboard.go
package dashboard

import (
	"context"
	"net/http"

	errorsfeature "github.com/dalemusser/stratarefer/internal/app/features/errors"
	referralstore "github.com/dalemusser/stratarefer/internal/app/store/referrals"
	"github.com/dalemusser/stratarefer/internal/app/system/timeouts"
	"github.com/dalemusser/stratarefer/internal/app/system/viewdata"
	"github.com/dalemusser/stratarefer/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ReferralStats is the slice of the referral store the dashboard reads.
type ReferralStats interface {
	Count(ctx context.Context, f referralstore.Filter) (int64, error)
	CountByEstado(ctx context.Context) (map[string]int64, error)
	Recent(ctx context.Context, n int64) ([]models.Referral, error)
}

// VacancyStats is the slice of the vacancy store the dashboard reads.
type VacancyStats interface {
	CountActive(ctx context.Context) (int64, error)
	TitlesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
}

// Handler provides dashboard handlers.
type Handler struct {
	referrals ReferralStats
	vacancies VacancyStats
	errLog    *errorsfeature.ErrorLogger
	logger    *zap.Logger
}

// NewHandler creates a new dashboard Handler.
func NewHandler(referrals ReferralStats, vacancies VacancyStats, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		referrals: referrals,
		vacancies: vacancies,
		errLog:    errLog,
		logger:    logger,
	}
}

// EstadoCount is one row of the per-state breakdown.
type EstadoCount struct {
	Estado string
	Count  int64
}

type recentRow struct {
	ID        string
	Candidato string
	Referidor string
	Vacante   string
	Estado    string
	Fecha     string
}

// DashboardVM is the view model for the dashboard.
type DashboardVM struct {
	viewdata.BaseVM
	TotalReferrals  int64
	ActiveVacancies int64
	ByEstado        []EstadoCount
	Recent          []recentRow
}

// recentLimit is how many referrals the dashboard lists.
const recentLimit = 5

// Routes returns a chi.Router with dashboard routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.showDashboard)
	return r
}

// RedirectRoot sends /admin to the dashboard.
func RedirectRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

func (h *Handler) showDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "dashboard.stats")
	defer cancel()

	vm := DashboardVM{BaseVM: viewdata.New(r, "Panel", "/admin/dashboard")}

	total, err := h.referrals.Count(ctx, referralstore.Filter{})
	if err != nil {
		h.fail(w, r, "failed to count referrals", err)
		return
	}
	active, err := h.vacancies.CountActive(ctx)
	if err != nil {
		h.fail(w, r, "failed to count active vacancies", err)
		return
	}
	byEstado, err := h.referrals.CountByEstado(ctx)
	if err != nil {
		h.fail(w, r, "failed to count referrals by estado", err)
		return
	}
	recent, err := h.referrals.Recent(ctx, recentLimit)
	if err != nil {
		h.fail(w, r, "failed to load recent referrals", err)
		return
	}

	vm.TotalReferrals = total
	vm.ActiveVacancies = active
	for _, e := range models.AllEstados() {
		vm.ByEstado = append(vm.ByEstado, EstadoCount{Estado: e, Count: byEstado[e]})
	}

	ids := make([]primitive.ObjectID, 0, len(recent))
	for _, ref := range recent {
		ids = append(ids, ref.VacanteID)
	}
	titles, err := h.vacancies.TitlesByID(ctx, ids)
	if err != nil {
		// Titles are decoration; the list is still useful without them.
		h.errLog.Warn(r, "failed to load vacancy titles", err)
		titles = nil
	}
	for _, ref := range recent {
		vm.Recent = append(vm.Recent, recentRow{
			ID:        ref.ID.Hex(),
			Candidato: ref.CandidatoNombre,
			Referidor: ref.ReferidorNombre,
			Vacante:   titleOr(titles, ref.VacanteID),
			Estado:    ref.EstadoProceso,
			Fecha:     ref.CreatedAt.Format("02/01/2006"),
		})
	}

	templates.Render(w, r, "dashboard/index", vm)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.errLog.Log(r, msg, err)
	errorsfeature.NewHandler().InternalError(w, r)
}

func titleOr(titles map[primitive.ObjectID]string, id primitive.ObjectID) string {
	if t, ok := titles[id]; ok {
		return t
	}
	return "Vacante eliminada"
}
