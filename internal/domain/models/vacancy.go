// internal/domain/models/vacancy.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vacancy is a job posting (vacante) that referrals are submitted against.
type Vacancy struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	TituloPuesto      string `bson:"titulo_puesto" json:"titulo_puesto"`
	Departamento      string `bson:"departamento" json:"departamento"`
	Ubicacion         string `bson:"ubicacion,omitempty" json:"ubicacion,omitempty"`
	Modalidad         string `bson:"modalidad" json:"modalidad"`                   // remoto, presencial, hibrido
	DescripcionPuesto string `bson:"descripcion_puesto" json:"descripcion_puesto"` // sanitized rich text
	Responsabilidades string `bson:"responsabilidades,omitempty" json:"responsabilidades,omitempty"`
	Requisitos        string `bson:"requisitos,omitempty" json:"requisitos,omitempty"`
	Beneficios        string `bson:"beneficios,omitempty" json:"beneficios,omitempty"`

	TecnologiasRequeridas []string `bson:"tecnologias_requeridas" json:"tecnologias_requeridas"`

	SalarioRangoMin *float64 `bson:"salario_rango_min,omitempty" json:"salario_rango_min,omitempty"`
	SalarioRangoMax *float64 `bson:"salario_rango_max,omitempty" json:"salario_rango_max,omitempty"`
	Moneda          string   `bson:"moneda,omitempty" json:"moneda,omitempty"` // USD, MXN, EUR or empty

	FechaPublicacion time.Time  `bson:"fecha_publicacion" json:"fecha_publicacion"`
	FechaCierre      *time.Time `bson:"fecha_cierre,omitempty" json:"fecha_cierre,omitempty"`
	EstaActiva       bool       `bson:"esta_activa" json:"esta_activa"`

	CreadaPorAdminID  primitive.ObjectID `bson:"creada_por_admin_id,omitempty" json:"creada_por_admin_id,omitempty"`
	VistasCount       int64              `bson:"vistas_count" json:"vistas_count"`
	AplicacionesCount int64              `bson:"aplicaciones_count" json:"aplicaciones_count"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Work modes.
const (
	ModalidadRemoto     = "remoto"
	ModalidadPresencial = "presencial"
	ModalidadHibrido    = "hibrido"
)

// AllModalidades returns the accepted work modes.
func AllModalidades() []string {
	return []string{ModalidadRemoto, ModalidadPresencial, ModalidadHibrido}
}

// AllMonedas returns the accepted salary currencies. An empty currency is
// also accepted and means "not stated".
func AllMonedas() []string {
	return []string{"USD", "MXN", "EUR"}
}

// IsOpen reports whether the vacancy accepts referrals at t.
func (v *Vacancy) IsOpen(t time.Time) bool {
	if !v.EstaActiva {
		return false
	}
	if v.FechaCierre != nil && v.FechaCierre.Before(t) {
		return false
	}
	return true
}

// IsValidModalidad reports whether m is an accepted work mode.
func IsValidModalidad(m string) bool {
	for _, v := range AllModalidades() {
		if v == m {
			return true
		}
	}
	return false
}

// IsValidMoneda reports whether c is an accepted currency or empty.
func IsValidMoneda(c string) bool {
	if c == "" {
		return true
	}
	for _, v := range AllMonedas() {
		if v == c {
			return true
		}
	}
	return false
}
