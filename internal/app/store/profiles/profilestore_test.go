package profilestore

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/stratarefer/internal/app/system/gate"
	"github.com/dalemusser/stratarefer/internal/domain/models"
	"github.com/dalemusser/stratarefer/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Profile{
		Email:    "  Ana.Lopez@Example.COM ",
		FullName: "Ana   López",
		Rol:      models.RolAdministrador,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID.IsZero() {
		t.Error("Create() did not assign ID")
	}
	if created.Email != "ana.lopez@example.com" {
		t.Errorf("Email = %q", created.Email)
	}
	if created.EmailCI == "" {
		t.Error("Create() did not set EmailCI")
	}
	if created.FullName != "Ana López" {
		t.Errorf("FullName = %q", created.FullName)
	}
	if created.Status != models.StatusActive {
		t.Errorf("Status = %q, want %q", created.Status, models.StatusActive)
	}
}

func TestStore_Create_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Profile{Email: "ana@example.com"}); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}
	_, err := store.Create(ctx, models.Profile{Email: "ANA@example.com"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("second Create() error = %v, want ErrDuplicateEmail", err)
	}
}

func TestStore_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, _ := store.Create(ctx, models.Profile{Email: "ana@example.com"})

	got, err := store.GetByEmail(ctx, " ANA@Example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail() ID = %v, want %v", got.ID, created.ID)
	}

	_, err = store.GetByEmail(ctx, "nadie@example.com")
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("GetByEmail() missing error = %v, want ErrNoDocuments", err)
	}
}

func TestStore_ResolveRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mk := func(email, rol, status string) string {
		p, err := store.Create(ctx, models.Profile{Email: email, Rol: rol, Status: status})
		if err != nil {
			t.Fatalf("Create(%s) error = %v", email, err)
		}
		return p.ID.Hex()
	}

	tests := []struct {
		name     string
		id       string
		wantRole gate.Role
		wantOK   bool
	}{
		{"administrator", mk("admin@example.com", "administrador", ""), gate.RoleAdministrator, true},
		{"referrer", mk("ref@example.com", "referidor", ""), gate.RoleReferrer, true},
		{"mixed case rol", mk("mixed@example.com", " Administrador ", ""), gate.RoleAdministrator, true},
		{"unknown rol", mk("other@example.com", "superuser", ""), "", false},
		{"empty rol", mk("none@example.com", "", ""), "", false},
		{"disabled", mk("off@example.com", "administrador", models.StatusDisabled), "", false},
		{"missing profile", primitive.NewObjectID().Hex(), "", false},
		{"malformed id", "not-an-id", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, ok, err := store.ResolveRole(ctx, tt.id)
			if err != nil {
				t.Fatalf("ResolveRole() error = %v", err)
			}
			if role != tt.wantRole || ok != tt.wantOK {
				t.Errorf("ResolveRole() = (%q, %v), want (%q, %v)", role, ok, tt.wantRole, tt.wantOK)
			}
		})
	}
}

func TestStore_ResolveRole_LookupError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := store.ResolveRole(ctx, primitive.NewObjectID().Hex())
	if err == nil {
		t.Fatal("ResolveRole() with cancelled context should return an error")
	}
	if ok {
		t.Error("ResolveRole() ok should be false on error")
	}
}

func TestStore_SetPasswordAndCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, _ := store.Create(ctx, models.Profile{Email: "admin@example.com", Rol: models.RolAdministrador})
	if err := store.SetPassword(ctx, p.ID, "$2a$12$hash"); err != nil {
		t.Fatalf("SetPassword() error = %v", err)
	}
	got, _ := store.GetByID(ctx, p.ID)
	if got.PasswordHash == nil || *got.PasswordHash != "$2a$12$hash" {
		t.Errorf("PasswordHash = %v", got.PasswordHash)
	}

	n, err := store.CountByRol(ctx, models.RolAdministrador)
	if err != nil || n != 1 {
		t.Errorf("CountByRol() = (%d, %v), want (1, nil)", n, err)
	}
}
