package referrals

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/stratarefer/internal/app/features/errors"
	referralstore "github.com/dalemusser/stratarefer/internal/app/store/referrals"
	"github.com/dalemusser/stratarefer/internal/domain/models"
	"github.com/dalemusser/stratarefer/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeStore struct {
	refs      []models.Referral
	gotFilter referralstore.Filter
	updatedID primitive.ObjectID
	updatedTo string
	listErr   error
	updateErr error
}

func (f *fakeStore) List(_ context.Context, flt referralstore.Filter) ([]models.Referral, error) {
	f.gotFilter = flt
	return f.refs, f.listErr
}

func (f *fakeStore) UpdateStatus(_ context.Context, id primitive.ObjectID, estado string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if !models.IsValidEstado(estado) {
		return referralstore.ErrInvalidEstado
	}
	f.updatedID, f.updatedTo = id, estado
	return nil
}

type fakeTitles map[primitive.ObjectID]string

func (f fakeTitles) TitlesByID(context.Context, []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	return f, nil
}

func newHandler(store Store, titles TitleLookup) *Handler {
	logger := zap.NewNop()
	return NewHandler(store, titles, errorsfeature.NewErrorLogger(logger), logger)
}

func TestList_FiltersAndTitles(t *testing.T) {
	testutil.MustBootTemplates(t)

	vid := primitive.NewObjectID()
	store := &fakeStore{refs: []models.Referral{
		{ID: primitive.NewObjectID(), VacanteID: vid, CandidatoNombre: "Marta Ruiz", ReferidorNombre: "Ana", EstadoProceso: models.EstadoEnRevision, CreatedAt: time.Now()},
		{ID: primitive.NewObjectID(), VacanteID: primitive.NewObjectID(), CandidatoNombre: "Pablo Gil", EstadoProceso: models.EstadoPendiente, CreatedAt: time.Now()},
	}}

	req := testutil.NewAuthenticatedRequestWithCSRF(http.MethodGet, "/admin/referencias?q=+marta+&estado=En+Revision", testutil.AdminUser())
	rec := httptest.NewRecorder()
	newHandler(store, fakeTitles{vid: "Backend Engineer"}).list(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if store.gotFilter.Q != "marta" {
		t.Errorf("Filter.Q = %q, want %q", store.gotFilter.Q, "marta")
	}
	if store.gotFilter.Estado != models.EstadoEnRevision {
		t.Errorf("Filter.Estado = %q, want %q", store.gotFilter.Estado, models.EstadoEnRevision)
	}
	body := rec.Body.String()
	for _, want := range []string{"Marta Ruiz", "Backend Engineer", "Vacante eliminada", "2 resultado(s)"} {
		if !strings.Contains(body, want) {
			t.Errorf("body does not contain %q", want)
		}
	}
}

func TestList_UnknownEstadoIgnored(t *testing.T) {
	testutil.MustBootTemplates(t)

	store := &fakeStore{}
	req := testutil.NewAuthenticatedRequestWithCSRF(http.MethodGet, "/admin/referencias?estado=archivado", testutil.AdminUser())
	rec := httptest.NewRecorder()
	newHandler(store, fakeTitles{}).list(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if store.gotFilter.Estado != "" {
		t.Errorf("Filter.Estado = %q, want empty", store.gotFilter.Estado)
	}
}

func TestList_StoreError(t *testing.T) {
	testutil.MustBootTemplates(t)

	req := testutil.NewAuthenticatedRequestWithCSRF(http.MethodGet, "/admin/referencias", testutil.AdminUser())
	rec := httptest.NewRecorder()
	newHandler(&fakeStore{listErr: errors.New("boom")}, fakeTitles{}).list(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func statusRequest(id string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/admin/referencias/"+id+"/estado", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = testutil.WithUser(req, testutil.AdminUser())
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestUpdateStatus(t *testing.T) {
	testutil.MustBootTemplates(t)

	id := primitive.NewObjectID()

	tests := []struct {
		name      string
		id        string
		form      url.Values
		updateErr error
		wantCode  int
		wantLoc   string
	}{
		{
			name:     "valid estado",
			id:       id.Hex(),
			form:     url.Values{"estado": {"Contactado"}, "return": {"/admin/referencias?q=ana"}},
			wantCode: http.StatusSeeOther,
			wantLoc:  "/admin/referencias?ok=estado&q=ana",
		},
		{
			name:     "foreign return target",
			id:       id.Hex(),
			form:     url.Values{"estado": {"contactado"}, "return": {"https://evil.example/admin/referencias"}},
			wantCode: http.StatusSeeOther,
			wantLoc:  "/admin/referencias?ok=estado",
		},
		{
			name:     "invalid estado",
			id:       id.Hex(),
			form:     url.Values{"estado": {"archivado"}},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed id",
			id:       "xyz",
			form:     url.Values{"estado": {"contactado"}},
			wantCode: http.StatusNotFound,
		},
		{
			name:      "unknown referral",
			id:        id.Hex(),
			form:      url.Values{"estado": {"contactado"}},
			updateErr: referralstore.ErrNotFound,
			wantCode:  http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{updateErr: tt.updateErr}
			rec := httptest.NewRecorder()
			newHandler(store, fakeTitles{}).updateStatus(rec, statusRequest(tt.id, tt.form))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantLoc != "" {
				if loc := rec.Header().Get("Location"); loc != tt.wantLoc {
					t.Errorf("Location = %q, want %q", loc, tt.wantLoc)
				}
				if store.updatedTo != models.EstadoContactado || store.updatedID != id {
					t.Errorf("updated %v to %q", store.updatedID, store.updatedTo)
				}
			}
		})
	}
}
