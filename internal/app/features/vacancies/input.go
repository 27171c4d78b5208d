package vacancies

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/stratarefer/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratarefer/internal/app/system/inputval"
	"github.com/dalemusser/stratarefer/internal/app/system/normalize"
	"github.com/dalemusser/stratarefer/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Input is a vacancy as submitted by the admin form or the JSON API.
type Input struct {
	TituloPuesto          string   `json:"titulo_puesto" validate:"required,max=200" label:"Título del puesto"`
	Departamento          string   `json:"departamento" validate:"required,max=120" label:"Departamento"`
	Ubicacion             string   `json:"ubicacion" validate:"max=120" label:"Ubicación"`
	Modalidad             string   `json:"modalidad" validate:"required,modalidad" label:"Modalidad"`
	DescripcionPuesto     string   `json:"descripcion_puesto" validate:"required,min=50" label:"Descripción del puesto"`
	Responsabilidades     string   `json:"responsabilidades" label:"Responsabilidades"`
	Requisitos            string   `json:"requisitos" label:"Requisitos"`
	Beneficios            string   `json:"beneficios" label:"Beneficios"`
	TecnologiasRequeridas []string `json:"tecnologias_requeridas" label:"Tecnologías requeridas"`
	SalarioRangoMin       *float64 `json:"salario_rango_min" label:"Salario mínimo"`
	SalarioRangoMax       *float64 `json:"salario_rango_max" label:"Salario máximo"`
	Moneda                string   `json:"moneda" validate:"moneda" label:"Moneda"`
	FechaCierre           string   `json:"fecha_cierre" label:"Fecha de cierre"`
	EstaActiva            *bool    `json:"esta_activa" label:"Activa"`
}

// dateLayout is the format of the HTML date input.
const dateLayout = "2006-01-02"

// Normalize trims text fields and drops empty technologies.
func (in *Input) Normalize() {
	in.TituloPuesto = normalize.Name(in.TituloPuesto)
	in.Departamento = normalize.Name(in.Departamento)
	in.Ubicacion = normalize.Name(in.Ubicacion)
	in.Modalidad = strings.ToLower(strings.TrimSpace(in.Modalidad))
	in.DescripcionPuesto = strings.TrimSpace(in.DescripcionPuesto)
	in.Responsabilidades = strings.TrimSpace(in.Responsabilidades)
	in.Requisitos = strings.TrimSpace(in.Requisitos)
	in.Beneficios = strings.TrimSpace(in.Beneficios)
	in.Moneda = strings.ToUpper(strings.TrimSpace(in.Moneda))
	in.FechaCierre = strings.TrimSpace(in.FechaCierre)

	var techs []string
	for _, t := range in.TecnologiasRequeridas {
		if t = strings.TrimSpace(t); t != "" {
			techs = append(techs, t)
		}
	}
	in.TecnologiasRequeridas = techs
}

// Validate runs the tag rules plus the cross-field checks. now is used for
// the closing-date check.
func (in *Input) Validate(now time.Time) *inputval.Result {
	res := inputval.Validate(in)

	if len(in.TecnologiasRequeridas) == 0 {
		res.Add("tecnologias_requeridas", "Tecnologías requeridas", "Indica al menos una tecnología.")
	}
	if in.SalarioRangoMin != nil && *in.SalarioRangoMin < 0 {
		res.Add("salario_rango_min", "Salario mínimo", "El salario mínimo no puede ser negativo.")
	}
	if in.SalarioRangoMax != nil && *in.SalarioRangoMax < 0 {
		res.Add("salario_rango_max", "Salario máximo", "El salario máximo no puede ser negativo.")
	}
	if in.SalarioRangoMin != nil && in.SalarioRangoMax != nil && *in.SalarioRangoMax < *in.SalarioRangoMin {
		res.Add("salario_rango_max", "Salario máximo", "El salario máximo debe ser mayor o igual al mínimo.")
	}
	if in.FechaCierre != "" {
		d, err := parseDate(in.FechaCierre)
		switch {
		case err != nil:
			res.Add("fecha_cierre", "Fecha de cierre", "La fecha de cierre no es válida.")
		case endOfDay(d).Before(now):
			res.Add("fecha_cierre", "Fecha de cierre", "La fecha de cierre no puede estar en el pasado.")
		}
	}
	return res
}

// Model converts a validated input into a vacancy. Rich text fields are
// sanitized here so stored HTML is always safe to render.
func (in *Input) Model(adminID primitive.ObjectID) models.Vacancy {
	v := models.Vacancy{
		TituloPuesto:          in.TituloPuesto,
		Departamento:          in.Departamento,
		Ubicacion:             in.Ubicacion,
		Modalidad:             in.Modalidad,
		DescripcionPuesto:     htmlsanitize.Sanitize(in.DescripcionPuesto),
		Responsabilidades:     htmlsanitize.Sanitize(in.Responsabilidades),
		Requisitos:            htmlsanitize.Sanitize(in.Requisitos),
		Beneficios:            htmlsanitize.Sanitize(in.Beneficios),
		TecnologiasRequeridas: in.TecnologiasRequeridas,
		SalarioRangoMin:       in.SalarioRangoMin,
		SalarioRangoMax:       in.SalarioRangoMax,
		Moneda:                in.Moneda,
		EstaActiva:            in.EstaActiva == nil || *in.EstaActiva,
		CreadaPorAdminID:      adminID,
	}
	if d, err := parseDate(in.FechaCierre); err == nil {
		eod := endOfDay(d)
		v.FechaCierre = &eod
	}
	return v
}

// FromVacancy fills an Input for the edit form.
func FromVacancy(v *models.Vacancy) Input {
	in := Input{
		TituloPuesto:          v.TituloPuesto,
		Departamento:          v.Departamento,
		Ubicacion:             v.Ubicacion,
		Modalidad:             v.Modalidad,
		DescripcionPuesto:     v.DescripcionPuesto,
		Responsabilidades:     v.Responsabilidades,
		Requisitos:            v.Requisitos,
		Beneficios:            v.Beneficios,
		TecnologiasRequeridas: v.TecnologiasRequeridas,
		SalarioRangoMin:       v.SalarioRangoMin,
		SalarioRangoMax:       v.SalarioRangoMax,
		Moneda:                v.Moneda,
		EstaActiva:            &v.EstaActiva,
	}
	if v.FechaCierre != nil {
		in.FechaCierre = v.FechaCierre.Format(dateLayout)
	}
	return in
}

// FromForm reads an Input from a parsed urlencoded form. Unparseable salary
// values are reported in the returned result.
func FromForm(r *http.Request) (Input, *inputval.Result) {
	bad := &inputval.Result{}
	in := Input{
		TituloPuesto:          r.PostFormValue("titulo_puesto"),
		Departamento:          r.PostFormValue("departamento"),
		Ubicacion:             r.PostFormValue("ubicacion"),
		Modalidad:             r.PostFormValue("modalidad"),
		DescripcionPuesto:     r.PostFormValue("descripcion_puesto"),
		Responsabilidades:     r.PostFormValue("responsabilidades"),
		Requisitos:            r.PostFormValue("requisitos"),
		Beneficios:            r.PostFormValue("beneficios"),
		TecnologiasRequeridas: normalize.List(r.PostFormValue("tecnologias_requeridas")),
		Moneda:                r.PostFormValue("moneda"),
		FechaCierre:           r.PostFormValue("fecha_cierre"),
	}
	active := r.PostFormValue("esta_activa") != ""
	in.EstaActiva = &active

	in.SalarioRangoMin = parseAmount(bad, "salario_rango_min", "Salario mínimo", r.PostFormValue("salario_rango_min"))
	in.SalarioRangoMax = parseAmount(bad, "salario_rango_max", "Salario máximo", r.PostFormValue("salario_rango_max"))
	return in, bad
}

func parseAmount(res *inputval.Result, field, label, raw string) *float64 {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		res.Add(field, label, label+" debe ser un número.")
		return nil
	}
	return &f
}

// parseDate accepts a plain date or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
