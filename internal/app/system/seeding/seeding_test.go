package seeding

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/stratarefer/internal/app/system/authutil"
	"github.com/dalemusser/stratarefer/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeProfiles struct {
	byEmail  map[string]*models.Profile
	created  []models.Profile
	password map[primitive.ObjectID]string
	rol      map[primitive.ObjectID]string
	getErr   error
}

func newFake(ps ...*models.Profile) *fakeProfiles {
	f := &fakeProfiles{
		byEmail:  map[string]*models.Profile{},
		password: map[primitive.ObjectID]string{},
		rol:      map[primitive.ObjectID]string{},
	}
	for _, p := range ps {
		f.byEmail[p.Email] = p
	}
	return f
}

func (f *fakeProfiles) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.byEmail[email]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return p, nil
}

func (f *fakeProfiles) Create(_ context.Context, p models.Profile) (models.Profile, error) {
	p.ID = primitive.NewObjectID()
	f.created = append(f.created, p)
	return p, nil
}

func (f *fakeProfiles) SetPassword(_ context.Context, id primitive.ObjectID, hash string) error {
	f.password[id] = hash
	return nil
}

func (f *fakeProfiles) SetRol(_ context.Context, id primitive.ObjectID, rol string) error {
	f.rol[id] = rol
	return nil
}

const strongPassword = "correcto-caballo-bateria"

func TestEnsureAdmin_NoEmail(t *testing.T) {
	f := newFake()
	if err := EnsureAdmin(context.Background(), f, Admin{}, zap.NewNop()); err != nil {
		t.Fatal(err)
	}
	if len(f.created) != 0 {
		t.Error("profile created without an email")
	}
}

func TestEnsureAdmin_Creates(t *testing.T) {
	f := newFake()
	err := EnsureAdmin(context.Background(), f, Admin{Email: "admin@example.com", Password: strongPassword}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(f.created) != 1 {
		t.Fatalf("created %d profiles, want 1", len(f.created))
	}
	p := f.created[0]
	if p.Rol != models.RolAdministrador || p.FullName != "Admin" {
		t.Errorf("created %+v", p)
	}
	if p.PasswordHash == nil || !authutil.CheckPassword(strongPassword, *p.PasswordHash) {
		t.Error("password not hashed onto the new profile")
	}
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	hash := "$2a$12$existing"
	p := &models.Profile{ID: primitive.NewObjectID(), Email: "ana@example.com", Rol: models.RolReferidor, PasswordHash: &hash}
	f := newFake(p)

	if err := EnsureAdmin(context.Background(), f, Admin{Email: "ana@example.com", Password: strongPassword}, zap.NewNop()); err != nil {
		t.Fatal(err)
	}
	if f.rol[p.ID] != models.RolAdministrador {
		t.Errorf("rol = %q, want %q", f.rol[p.ID], models.RolAdministrador)
	}
	if _, changed := f.password[p.ID]; changed {
		t.Error("existing password overwritten")
	}
}

func TestEnsureAdmin_SetsMissingPassword(t *testing.T) {
	p := &models.Profile{ID: primitive.NewObjectID(), Email: "admin@example.com", Rol: models.RolAdministrador}
	f := newFake(p)

	if err := EnsureAdmin(context.Background(), f, Admin{Email: "admin@example.com", Password: strongPassword}, zap.NewNop()); err != nil {
		t.Fatal(err)
	}
	if !authutil.CheckPassword(strongPassword, f.password[p.ID]) {
		t.Error("initial password not set")
	}
	if _, changed := f.rol[p.ID]; changed {
		t.Error("rol rewritten for an existing admin")
	}
}

func TestEnsureAdmin_Errors(t *testing.T) {
	tests := []struct {
		name  string
		f     *fakeProfiles
		admin Admin
	}{
		{"weak password", newFake(), Admin{Email: "admin@example.com", Password: "corta"}},
		{"lookup failure", &fakeProfiles{getErr: errors.New("timeout")}, Admin{Email: "admin@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := EnsureAdmin(context.Background(), tt.f, tt.admin, zap.NewNop()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
