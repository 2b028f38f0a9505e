package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/coursehub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func TestReadyz(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		checks     map[string]handlers.Pinger
		wantStatus int
	}{
		{"no checks", nil, http.StatusOK},
		{"store up", map[string]handlers.Pinger{"store": func(context.Context) error { return nil }}, http.StatusOK},
		{"store down", map[string]handlers.Pinger{"store": func(context.Context) error { return errors.New("refused") }}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewHealthHandler(nil, tt.checks)

			r := gin.New()
			r.GET("/readyz", h.Readyz)
			r.GET("/healthz", h.Healthz)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if w.Code != tt.wantStatus {
				t.Fatalf("readyz: got status %d, want %d", w.Code, tt.wantStatus)
			}

			// liveness never depends on the store
			w = httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			if w.Code != http.StatusOK {
				t.Fatalf("healthz: got status %d", w.Code)
			}
		})
	}
}
