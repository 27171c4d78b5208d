// internal/domain/models/referral.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Referral is a candidate recommendation (referencia) submitted by an employee.
type Referral struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VacanteID primitive.ObjectID `bson:"vacante_id" json:"vacante_id"`

	ReferidorNombre  string `bson:"referidor_nombre" json:"referidor_nombre"`
	ReferidorEmail   string `bson:"referidor_email" json:"referidor_email"`
	ReferidorEmpresa string `bson:"referidor_empresa,omitempty" json:"referidor_empresa,omitempty"`

	CandidatoNombre   string `bson:"candidato_nombre" json:"candidato_nombre"`
	CandidatoEmail    string `bson:"candidato_email" json:"candidato_email"`
	CandidatoTelefono string `bson:"candidato_telefono,omitempty" json:"candidato_telefono,omitempty"`
	CandidatoLinkedin string `bson:"candidato_linkedin,omitempty" json:"candidato_linkedin,omitempty"`

	RelacionConCandidato       string   `bson:"relacion_con_candidato" json:"relacion_con_candidato"`
	AnosConociendo             *int     `bson:"años_conociendo,omitempty" json:"años_conociendo,omitempty"`
	JustificacionRecomendacion string   `bson:"justificacion_recomendacion" json:"justificacion_recomendacion"`
	FortalezasPrincipales      []string `bson:"fortalezas_principales,omitempty" json:"fortalezas_principales,omitempty"`

	// Résumé; all nil when no file was attached.
	CVURL         *string `bson:"cv_url" json:"cv_url"`
	CVFilename    *string `bson:"cv_filename,omitempty" json:"cv_filename,omitempty"`
	CVSizeBytes   *int64  `bson:"cv_size_bytes,omitempty" json:"cv_size_bytes,omitempty"`
	CVStoragePath string  `bson:"cv_storage_path,omitempty" json:"-"`

	EstadoProceso string `bson:"estado_proceso" json:"estado_proceso"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Referral process states.
const (
	EstadoPendiente  = "pendiente"
	EstadoEnRevision = "en revision"
	EstadoContactado = "contactado"
	EstadoDescartado = "descartado"
	EstadoContratado = "contratado"
)

// AllEstados returns every referral process state in workflow order.
func AllEstados() []string {
	return []string{
		EstadoPendiente,
		EstadoEnRevision,
		EstadoContactado,
		EstadoDescartado,
		EstadoContratado,
	}
}

// IsValidEstado checks if a process state is valid.
func IsValidEstado(estado string) bool {
	for _, e := range AllEstados() {
		if e == estado {
			return true
		}
	}
	return false
}

// HasCV reports whether a résumé was uploaded with the referral.
func (r *Referral) HasCV() bool {
	return r.CVURL != nil && *r.CVURL != ""
}
