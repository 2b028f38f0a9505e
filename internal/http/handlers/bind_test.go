package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/geocoder89/coursehub/internal/http/handlers"
	"github.com/geocoder89/coursehub/internal/validation"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
		Details   struct {
			JSON   string                 `json:"json"`
			Field  string                 `json:"field"`
			Fields []validation.FieldError `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}
	return resp
}

func bindRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/users", func(ctx *gin.Context) {
		var req user.CreateUserRequest
		if !handlers.BindAndValidate(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})
	return r
}

func TestBindAndValidate_ReportsEveryField(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			bindRouter().ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
			}

			resp := decodeError(t, w)
			if resp.Error.Code != "invalid_request" {
				t.Fatalf("unexpected code: %s", resp.Error.Code)
			}

			want := map[string]string{
				"firstName":    `Please provide a value for "first name"`,
				"lastName":     `Please provide a value for "last name"`,
				"emailAddress": `Please provide a value for "email"`,
				"password":     `Please provide a value for "password"`,
			}

			if len(resp.Error.Details.Fields) != len(want) {
				t.Fatalf("got %d field errors, want %d: %+v", len(resp.Error.Details.Fields), len(want), resp.Error.Details.Fields)
			}

			for _, f := range resp.Error.Details.Fields {
				if want[f.Field] != f.Message {
					t.Fatalf("field %s: got message %q, want %q", f.Field, f.Message, want[f.Field])
				}
			}
		})
	}
}

func TestBindAndValidate_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(`{"firstName":`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	bindRouter().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}

	if got := decodeError(t, w).Error.Details.JSON; got != "invalid_json_syntax" {
		t.Fatalf("details.json = %q, want invalid_json_syntax", got)
	}
}

func TestBindAndValidate_TypeMismatchUsesJSONName(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(`{"emailAddress": 42}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	bindRouter().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}

	resp := decodeError(t, w)
	if resp.Error.Details.JSON != "invalid_json_type" {
		t.Fatalf("details.json = %q, want invalid_json_type", resp.Error.Details.JSON)
	}
	if resp.Error.Details.Field != "emailAddress" {
		t.Fatalf("details.field = %q, want emailAddress", resp.Error.Details.Field)
	}
}

func TestBindAndValidate_Valid(t *testing.T) {
	body := `{"firstName":"Ada","lastName":"Lovelace","emailAddress":"ada@example.com","password":"password1"}`
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	bindRouter().ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}
}
