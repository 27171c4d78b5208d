// internal/domain/models/profile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile is the user-profile record of a back-office principal.
// The _id is the principal identifier carried in the session cookie.
//
// Rol is stored as a raw string; it is only trusted after it passes
// gate.ParseRole at the Role Resolver boundary.
type Profile struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email    string             `bson:"email" json:"email"`       // lowercase
	EmailCI  string             `bson:"email_ci" json:"-"`        // folded for matching
	FullName string             `bson:"full_name" json:"full_name"`

	PasswordHash *string `bson:"password_hash,omitempty" json:"-"` // bcrypt hash (never in JSON)

	Rol    string `bson:"rol" json:"rol"`                           // administrador, referidor
	Status string `bson:"status,omitempty" json:"status,omitempty"` // active, disabled

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Profile role values as stored in the rol field.
const (
	RolAdministrador = "administrador"
	RolReferidor     = "referidor"
)

// Profile status values.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// IsActive reports whether the profile may sign in.
func (p *Profile) IsActive() bool {
	return p.Status == "" || p.Status == StatusActive
}
