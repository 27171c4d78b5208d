package resources

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAssetsHandler(t *testing.T) {
	h := AssetsHandler("/assets")

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantType string
	}{
		{"stylesheet", "/assets/css/app.css", http.StatusOK, "text/css"},
		{"script", "/assets/js/app.js", http.StatusOK, "javascript"},
		{"missing", "/assets/css/none.css", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantType != "" && !strings.Contains(rec.Header().Get("Content-Type"), tt.wantType) {
				t.Errorf("Content-Type = %q, want it to contain %q", rec.Header().Get("Content-Type"), tt.wantType)
			}
		})
	}
}

func TestLoadSharedTemplates_Idempotent(t *testing.T) {
	LoadSharedTemplates()
	LoadSharedTemplates()
}
