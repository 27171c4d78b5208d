package vacancystore

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/stratarefer/internal/domain/models"
	"github.com/dalemusser/stratarefer/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sample(title string, active bool, published time.Time) models.Vacancy {
	return models.Vacancy{
		TituloPuesto:          title,
		Departamento:          "Ingeniería",
		Modalidad:             models.ModalidadRemoto,
		DescripcionPuesto:     "Buscamos una persona con experiencia construyendo servicios distribuidos.",
		TecnologiasRequeridas: []string{"Go", "MongoDB"},
		FechaPublicacion:      published,
		EstaActiva:            active,
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Vacancy{TituloPuesto: "Backend", EstaActiva: true})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID.IsZero() || created.FechaPublicacion.IsZero() || created.CreatedAt.IsZero() {
		t.Errorf("Create() did not fill defaults: %+v", created)
	}
	if created.TecnologiasRequeridas == nil {
		t.Error("Create() left TecnologiasRequeridas nil")
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TituloPuesto != "Backend" {
		t.Errorf("Get() TituloPuesto = %q", got.TituloPuesto)
	}

	if _, err := store.Get(ctx, primitive.NewObjectID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() missing error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListActive_SortedByPublication(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().Add(-72 * time.Hour).UTC()
	for _, v := range []models.Vacancy{
		sample("vieja", true, base),
		sample("nueva", true, base.Add(48*time.Hour)),
		sample("cerrada", false, base.Add(60*time.Hour)),
		sample("media", true, base.Add(24*time.Hour)),
	} {
		if _, err := store.Create(ctx, v); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	active, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	want := []string{"nueva", "media", "vieja"}
	if len(active) != len(want) {
		t.Fatalf("ListActive() returned %d vacancies, want %d", len(active), len(want))
	}
	for i, w := range want {
		if active[i].TituloPuesto != w {
			t.Errorf("ListActive()[%d] = %q, want %q", i, active[i].TituloPuesto, w)
		}
	}

	all, _ := store.ListAll(ctx)
	if len(all) != 4 || all[0].TituloPuesto != "cerrada" {
		t.Errorf("ListAll() = %d items, first %q", len(all), all[0].TituloPuesto)
	}

	n, err := store.CountActive(ctx)
	if err != nil || n != 3 {
		t.Errorf("CountActive() = (%d, %v), want (3, nil)", n, err)
	}
}

func TestStore_ListActive_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	got, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ListActive() = %v, want empty non-nil slice", got)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	lo, hi := 1000.0, 2000.0
	v := sample("Backend", true, time.Now().UTC())
	v.SalarioRangoMin, v.SalarioRangoMax, v.Moneda = &lo, &hi, "USD"
	created, _ := store.Create(ctx, v)
	_ = store.IncrementApplications(ctx, created.ID)

	upd := sample("Backend Senior", false, time.Time{})
	if err := store.Update(ctx, created.ID, upd); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, _ := store.Get(ctx, created.ID)
	if got.TituloPuesto != "Backend Senior" || got.EstaActiva {
		t.Errorf("Update() not applied: %+v", got)
	}
	if got.SalarioRangoMin != nil || got.SalarioRangoMax != nil {
		t.Error("Update() should clear omitted salary bounds")
	}
	if got.AplicacionesCount != 1 {
		t.Errorf("AplicacionesCount = %d, want 1 (kept across updates)", got.AplicacionesCount)
	}
	if !got.FechaPublicacion.Equal(created.FechaPublicacion.Truncate(time.Millisecond)) {
		t.Errorf("FechaPublicacion changed: %v -> %v", created.FechaPublicacion, got.FechaPublicacion)
	}

	if err := store.Update(ctx, primitive.NewObjectID(), upd); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() missing error = %v, want ErrNotFound", err)
	}
}

func TestStore_IncrementAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, _ := store.Create(ctx, sample("QA", true, time.Now().UTC()))
	for i := 0; i < 3; i++ {
		if err := store.IncrementApplications(ctx, created.ID); err != nil {
			t.Fatalf("IncrementApplications() error = %v", err)
		}
	}
	got, _ := store.Get(ctx, created.ID)
	if got.AplicacionesCount != 3 {
		t.Errorf("AplicacionesCount = %d, want 3", got.AplicacionesCount)
	}

	if err := store.IncrementApplications(ctx, primitive.NewObjectID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("IncrementApplications() missing error = %v", err)
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestStore_TitlesByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, _ := store.Create(ctx, sample("Backend", true, time.Now().UTC()))
	b, _ := store.Create(ctx, sample("Frontend", true, time.Now().UTC()))

	titles, err := store.TitlesByID(ctx, []primitive.ObjectID{a.ID, b.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("TitlesByID() error = %v", err)
	}
	if len(titles) != 2 || titles[a.ID] != "Backend" || titles[b.ID] != "Frontend" {
		t.Errorf("TitlesByID() = %v", titles)
	}
}
