package referralapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/stratarefer/internal/app/system/inputval"
	"github.com/dalemusser/stratarefer/internal/app/system/normalize"
	"github.com/dalemusser/stratarefer/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// referralInput holds the text fields of a submission.
type referralInput struct {
	VacanteID        string `json:"vacante_id" validate:"required,objectid" label:"Vacante"`
	ReferidorNombre  string `json:"referidor_nombre" validate:"required,max=120" label:"Tu nombre"`
	ReferidorEmail   string `json:"referidor_email" validate:"required,email,max=254" label:"Tu email"`
	ReferidorEmpresa string `json:"referidor_empresa" validate:"max=120" label:"Tu empresa"`

	CandidatoNombre   string `json:"candidato_nombre" validate:"required,max=120" label:"Nombre del candidato"`
	CandidatoEmail    string `json:"candidato_email" validate:"required,email,max=254" label:"Email del candidato"`
	CandidatoTelefono string `json:"candidato_telefono" validate:"max=40" label:"Teléfono del candidato"`
	CandidatoLinkedin string `json:"candidato_linkedin" validate:"max=300" label:"LinkedIn del candidato"`

	RelacionConCandidato       string   `json:"relacion_con_candidato" validate:"required,max=60" label:"Relación con el candidato"`
	AnosConociendo             string   `json:"años_conociendo" label:"Años conociéndolo"`
	JustificacionRecomendacion string   `json:"justificacion_recomendacion" validate:"required,min=50,max=5000" label:"Justificación"`
	FortalezasPrincipales      []string `json:"fortalezas_principales"`
}

func readInput(r *http.Request) referralInput {
	return referralInput{
		VacanteID:                  strings.TrimSpace(r.FormValue("vacante_id")),
		ReferidorNombre:            normalize.Name(r.FormValue("referidor_nombre")),
		ReferidorEmail:             normalize.Email(r.FormValue("referidor_email")),
		ReferidorEmpresa:           normalize.Name(r.FormValue("referidor_empresa")),
		CandidatoNombre:            normalize.Name(r.FormValue("candidato_nombre")),
		CandidatoEmail:             normalize.Email(r.FormValue("candidato_email")),
		CandidatoTelefono:          strings.TrimSpace(r.FormValue("candidato_telefono")),
		CandidatoLinkedin:          strings.TrimSpace(r.FormValue("candidato_linkedin")),
		RelacionConCandidato:       strings.TrimSpace(r.FormValue("relacion_con_candidato")),
		AnosConociendo:             strings.TrimSpace(r.FormValue("años_conociendo")),
		JustificacionRecomendacion: strings.TrimSpace(r.FormValue("justificacion_recomendacion")),
		FortalezasPrincipales:      normalize.List(r.FormValue("fortalezas_principales")),
	}
}

func (in referralInput) validate() *inputval.Result {
	res := inputval.Validate(in)
	if in.CandidatoLinkedin != "" && !inputval.IsValidHTTPURL(in.CandidatoLinkedin) {
		res.Add("candidato_linkedin", "LinkedIn del candidato", "LinkedIn del candidato debe ser una URL que empiece con http:// o https://.")
	}
	if in.AnosConociendo != "" {
		if n, err := strconv.Atoi(in.AnosConociendo); err != nil || n < 0 {
			res.Add("años_conociendo", "Años conociéndolo", "Años conociéndolo debe ser un número entero no negativo.")
		}
	}
	return res
}

// model builds the referral document. The caller has validated in.
func (in referralInput) model(vacanteID primitive.ObjectID) models.Referral {
	ref := models.Referral{
		VacanteID:                  vacanteID,
		ReferidorNombre:            in.ReferidorNombre,
		ReferidorEmail:             in.ReferidorEmail,
		ReferidorEmpresa:           in.ReferidorEmpresa,
		CandidatoNombre:            in.CandidatoNombre,
		CandidatoEmail:             in.CandidatoEmail,
		CandidatoTelefono:          in.CandidatoTelefono,
		CandidatoLinkedin:          in.CandidatoLinkedin,
		RelacionConCandidato:       in.RelacionConCandidato,
		JustificacionRecomendacion: in.JustificacionRecomendacion,
		FortalezasPrincipales:      in.FortalezasPrincipales,
		EstadoProceso:              models.EstadoPendiente,
	}
	if n, err := strconv.Atoi(in.AnosConociendo); err == nil {
		ref.AnosConociendo = &n
	}
	return ref
}
