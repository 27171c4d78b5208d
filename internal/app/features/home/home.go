// internal/app/features/home/home.go
package home

import (
	"context"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/stratarefer/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratarefer/internal/app/system/timeouts"
	"github.com/dalemusser/stratarefer/internal/app/system/viewdata"
	"github.com/dalemusser/stratarefer/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// VacancyLister is the slice of the vacancy store the public page needs.
type VacancyLister interface {
	ListActive(ctx context.Context) ([]models.Vacancy, error)
}

// Handler provides the public landing page.
type Handler struct {
	vacancies VacancyLister
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandler creates a new home Handler.
func NewHandler(vacancies VacancyLister, logger *zap.Logger) *Handler {
	return &Handler{
		vacancies: vacancies,
		logger:    logger,
		now:       time.Now,
	}
}

// Option is a value/label pair for a select input.
type Option struct {
	Value string
	Label string
}

// RelationOptions are the choices for relacion_con_candidato.
var RelationOptions = []Option{
	{"colega_actual", "Colega actual"},
	{"ex_colega", "Ex colega"},
	{"amigo_conocido", "Amigo o conocido personal"},
	{"contacto_profesional", "Contacto profesional"},
	{"mentor_mentee", "Mentor o mentee"},
	{"familiar", "Familiar"},
	{"otro", "Otro"},
}

type vacancyRow struct {
	ID           string
	Titulo       string
	Departamento string
	Ubicacion    string
	Modalidad    string
	Salario      string
	Tecnologias  []string
	Excerpt      string
	Descripcion  template.HTML
	Publicada    string
}

// HomeVM is the view model for the landing page.
type HomeVM struct {
	viewdata.BaseVM
	Vacancies []vacancyRow
	Relations []Option
	Selected  string
}

// Routes returns a chi.Router with home routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	return r
}

// Index lists the open vacancies with the referral form. A store failure
// renders the page with no vacancies rather than an error page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	vm := HomeVM{
		BaseVM:    viewdata.New(r, "Vacantes abiertas", "/"),
		Relations: RelationOptions,
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "home.ListActive")
	defer cancel()

	list, err := h.vacancies.ListActive(ctx)
	if err != nil {
		h.logger.Warn("failed to load active vacancies", zap.Error(err))
		vm.Error = "No pudimos cargar las vacantes. Intenta de nuevo más tarde."
	}

	now := h.now()
	for i := range list {
		v := &list[i]
		if !v.IsOpen(now) {
			continue
		}
		vm.Vacancies = append(vm.Vacancies, vacancyRow{
			ID:           v.ID.Hex(),
			Titulo:       v.TituloPuesto,
			Departamento: v.Departamento,
			Ubicacion:    v.Ubicacion,
			Modalidad:    v.Modalidad,
			Salario:      SalaryRange(v.SalarioRangoMin, v.SalarioRangoMax, v.Moneda),
			Tecnologias:  v.TecnologiasRequeridas,
			Excerpt:      htmlsanitize.Excerpt(v.DescripcionPuesto, 180),
			Descripcion:  htmlsanitize.PrepareForDisplay(v.DescripcionPuesto),
			Publicada:    v.FechaPublicacion.Format("02/01/2006"),
		})
	}

	// Preselect a vacancy linked as /?vacante=<id>.
	vm.Selected = strings.TrimSpace(r.URL.Query().Get("vacante"))

	templates.Render(w, r, "home/index", vm)
}

// SalaryRange formats optional salary bounds for display. It returns "" when
// neither bound is set.
func SalaryRange(lo, hi *float64, moneda string) string {
	var s string
	switch {
	case lo != nil && hi != nil:
		s = money(*lo) + " - " + money(*hi)
	case lo != nil:
		s = "Desde " + money(*lo)
	case hi != nil:
		s = "Hasta " + money(*hi)
	default:
		return ""
	}
	if moneda != "" {
		s += " " + moneda
	}
	return s
}

// money renders a whole amount with thousands separators.
func money(f float64) string {
	digits := strconv.FormatInt(int64(f), 10)
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}
