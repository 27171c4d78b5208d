package vacancyapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/stratarefer/internal/app/features/errors"
	vacancystore "github.com/dalemusser/stratarefer/internal/app/store/vacancies"
	"github.com/dalemusser/stratarefer/internal/app/system/authz"
	"github.com/dalemusser/stratarefer/internal/app/system/gate"
	"github.com/dalemusser/stratarefer/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeStore struct {
	items   map[primitive.ObjectID]models.Vacancy
	created []models.Vacancy
	listErr error
}

func newFakeStore(vs ...models.Vacancy) *fakeStore {
	f := &fakeStore{items: map[primitive.ObjectID]models.Vacancy{}}
	for _, v := range vs {
		f.items[v.ID] = v
	}
	return f
}

func (f *fakeStore) ListActive(context.Context) ([]models.Vacancy, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Vacancy
	for _, v := range f.items {
		if v.EstaActiva {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeStore) Get(_ context.Context, id primitive.ObjectID) (*models.Vacancy, error) {
	v, ok := f.items[id]
	if !ok {
		return nil, vacancystore.ErrNotFound
	}
	return &v, nil
}

func (f *fakeStore) Create(_ context.Context, v models.Vacancy) (models.Vacancy, error) {
	v.ID = primitive.NewObjectID()
	f.created = append(f.created, v)
	f.items[v.ID] = v
	return v, nil
}

func (f *fakeStore) Update(_ context.Context, id primitive.ObjectID, v models.Vacancy) error {
	cur, ok := f.items[id]
	if !ok {
		return vacancystore.ErrNotFound
	}
	v.ID = id
	v.AplicacionesCount = cur.AplicacionesCount
	f.items[id] = v
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.items[id]; !ok {
		return vacancystore.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeSessions struct{ p *gate.Principal }

func (f fakeSessions) Resolve(http.ResponseWriter, *http.Request) (*gate.Principal, bool) {
	return f.p, f.p != nil
}

func (fakeSessions) DestroySession(http.ResponseWriter, *http.Request) {}

type fakeRoles struct {
	role gate.Role
	err  error
}

func (f fakeRoles) ResolveRole(context.Context, string) (gate.Role, bool, error) {
	return f.role, f.role != "", f.err
}

var admin = &gate.Principal{ID: primitive.NewObjectID().Hex(), Email: "admin@example.com"}

func server(store Store, sessions gate.SessionResolver, roles gate.RoleResolver) http.Handler {
	logger := zap.NewNop()
	h := NewHandler(store, errorsfeature.NewErrorLogger(logger), logger)
	h.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return Routes(h, authz.RequireAdminAPI(sessions, roles, logger))
}

func adminServer(store Store) http.Handler {
	return server(store, fakeSessions{admin}, fakeRoles{role: gate.RoleAdministrator})
}

func sample(active bool) models.Vacancy {
	return models.Vacancy{
		ID:                    primitive.NewObjectID(),
		TituloPuesto:          "Backend Engineer",
		Departamento:          "Ingeniería",
		Modalidad:             models.ModalidadRemoto,
		TecnologiasRequeridas: []string{"Go"},
		EstaActiva:            active,
	}
}

const validBody = `{
	"titulo_puesto": "Data Engineer",
	"departamento": "Datos",
	"modalidad": "presencial",
	"descripcion_puesto": "Diseñar y operar pipelines de datos para todo el negocio, con foco en calidad.",
	"tecnologias_requeridas": ["Go", "Kafka"],
	"salario_rango_min": 1000,
	"salario_rango_max": 3000,
	"moneda": "MXN",
	"fecha_cierre": "2026-06-30"
}`

type envelope struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
	Data    json.RawMessage   `json:"data"`
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v; body: %s", err, rec.Body.String())
		}
	}
	return rec, env
}

func TestList_PublicAndOpenOnly(t *testing.T) {
	past := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	open := sample(true)
	closed := sample(true)
	closed.FechaCierre = &past
	inactive := sample(false)

	h := server(newFakeStore(open, closed, inactive), fakeSessions{}, fakeRoles{})
	rec, env := do(t, h, http.MethodGet, "/", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got []models.Vacancy
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != open.ID {
		t.Errorf("listed %d vacancies, want only the open one", len(got))
	}
}

func TestList_Empty(t *testing.T) {
	rec, env := do(t, server(newFakeStore(), fakeSessions{}, fakeRoles{}), http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if string(env.Data) != "[]" {
		t.Errorf("data = %s, want []", env.Data)
	}
}

func TestList_StoreError(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("connection reset")
	rec, env := do(t, server(store, fakeSessions{}, fakeRoles{}), http.MethodGet, "/", "")

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if strings.Contains(env.Error, "connection") {
		t.Error("internal error leaked")
	}
}

func TestMutations_RequireAdmin(t *testing.T) {
	v := sample(true)
	target := "/" + v.ID.Hex()

	callers := []struct {
		name     string
		sessions fakeSessions
		roles    fakeRoles
		want     int
	}{
		{"anonymous", fakeSessions{}, fakeRoles{}, http.StatusUnauthorized},
		{"referrer", fakeSessions{admin}, fakeRoles{role: gate.RoleReferrer}, http.StatusForbidden},
		{"no profile", fakeSessions{admin}, fakeRoles{}, http.StatusForbidden},
		{"lookup error", fakeSessions{admin}, fakeRoles{err: errors.New("timeout")}, http.StatusInternalServerError},
	}
	requests := []struct {
		method, target, body string
	}{
		{http.MethodGet, target, ""},
		{http.MethodPost, "/", validBody},
		{http.MethodPut, target, validBody},
		{http.MethodDelete, target, ""},
	}

	for _, c := range callers {
		for _, rq := range requests {
			t.Run(c.name+" "+rq.method, func(t *testing.T) {
				store := newFakeStore(v)
				rec, _ := do(t, server(store, c.sessions, c.roles), rq.method, rq.target, rq.body)
				if rec.Code != c.want {
					t.Errorf("status = %d, want %d", rec.Code, c.want)
				}
				if len(store.created) != 0 || len(store.items) != 1 {
					t.Error("store changed for a rejected caller")
				}
			})
		}
	}
}

func TestGet(t *testing.T) {
	v := sample(false)
	h := adminServer(newFakeStore(v))

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"existing", "/" + v.ID.Hex(), http.StatusOK},
		{"unknown", "/" + primitive.NewObjectID().Hex(), http.StatusNotFound},
		{"malformed", "/zzz", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := do(t, h, http.MethodGet, tt.target, "")
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestCreate(t *testing.T) {
	store := newFakeStore()
	rec, env := do(t, adminServer(store), http.MethodPost, "/", validBody)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if !env.Success || len(store.created) != 1 {
		t.Fatalf("created %d, success=%v", len(store.created), env.Success)
	}
	got := store.created[0]
	if got.CreadaPorAdminID.Hex() != admin.ID {
		t.Errorf("CreadaPorAdminID = %s, want %s", got.CreadaPorAdminID.Hex(), admin.ID)
	}
	if !got.EstaActiva {
		t.Error("esta_activa should default to true")
	}
}

func TestCreate_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"negative salary", strings.Replace(validBody, `"salario_rango_min": 1000`, `"salario_rango_min": -5`, 1), "salario_rango_min"},
		{"max below min", strings.Replace(validBody, `"salario_rango_max": 3000`, `"salario_rango_max": 10`, 1), "salario_rango_max"},
		{"no technologies", strings.Replace(validBody, `["Go", "Kafka"]`, `[]`, 1), "tecnologias_requeridas"},
		{"bad currency", strings.Replace(validBody, `"MXN"`, `"BTC"`, 1), "moneda"},
		{"past closing date", strings.Replace(validBody, `"2026-06-30"`, `"2025-12-31"`, 1), "fecha_cierre"},
		{"short description", strings.Replace(validBody, `"Diseñar y operar pipelines de datos para todo el negocio, con foco en calidad."`, `"Corta"`, 1), "descripcion_puesto"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			rec, env := do(t, adminServer(store), http.MethodPost, "/", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if _, ok := env.Fields[tt.field]; !ok {
				t.Errorf("fields = %v, want %q", env.Fields, tt.field)
			}
			if len(store.created) != 0 {
				t.Error("invalid vacancy stored")
			}
		})
	}
}

func TestCreate_BadJSON(t *testing.T) {
	for _, body := range []string{"", "{", `{"titulo": "x"}`} {
		rec, _ := do(t, adminServer(newFakeStore()), http.MethodPost, "/", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want %d", body, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestUpdate(t *testing.T) {
	v := sample(true)
	v.CreadaPorAdminID = primitive.NewObjectID()
	v.AplicacionesCount = 7
	store := newFakeStore(v)

	rec, env := do(t, adminServer(store), http.MethodPut, "/"+v.ID.Hex(), validBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var got models.Vacancy
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatal(err)
	}
	if got.TituloPuesto != "Data Engineer" || got.AplicacionesCount != 7 {
		t.Errorf("updated vacancy = %+v", got)
	}
	if got.CreadaPorAdminID != v.CreadaPorAdminID {
		t.Error("creator changed on update")
	}

	rec, _ = do(t, adminServer(store), http.MethodPut, "/"+primitive.NewObjectID().Hex(), validBody)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDelete(t *testing.T) {
	v := sample(true)
	store := newFakeStore(v)

	rec, _ := do(t, adminServer(store), http.MethodDelete, "/"+v.ID.Hex(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if len(store.items) != 0 {
		t.Error("vacancy not deleted")
	}

	rec, _ = do(t, adminServer(store), http.MethodDelete, "/"+v.ID.Hex(), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
