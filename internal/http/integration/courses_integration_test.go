package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/coursehub/internal/cache"
	"github.com/geocoder89/coursehub/internal/config"
	apphttp "github.com/geocoder89/coursehub/internal/http"
	"github.com/geocoder89/coursehub/internal/observability"
	"github.com/geocoder89/coursehub/internal/repo/memory"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type credentials struct {
	email    string
	password string
}

func testConfig() config.Config {
	return config.Config{
		Env:          "test",
		Store:        config.StoreMemory,
		BcryptCost:   4,
		MaxBodyBytes: 1 << 20,
	}
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	users := memory.NewUsersRepo()

	return apphttp.NewRouter(apphttp.Deps{
		Log:     logger,
		Config:  testConfig(),
		Users:   users,
		Courses: memory.NewCoursesRepo(users),
		Cache:   cache.New(0),
		Metrics: observability.NewProm(),
	})
}

func doRequest(router http.Handler, method, path, body string, creds *credentials) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if method == http.MethodPost || method == http.MethodPut {
		req.Header.Set("Content-Type", "application/json")
	}

	if creds != nil {
		req.SetBasicAuth(creds.email, creds.password)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

func register(t *testing.T, router http.Handler, email, password string) *credentials {
	t.Helper()

	body := `{"firstName":"A","lastName":"B","emailAddress":"` + email + `","password":"` + password + `"}`
	w := doRequest(router, http.MethodPost, "/api/users", body, nil)
	require.Equal(t, http.StatusCreated, w.Code, "register %s: %s", email, w.Body.String())

	return &credentials{email: email, password: password}
}

func createCourse(t *testing.T, router http.Handler, creds *credentials) string {
	t.Helper()

	w := doRequest(router, http.MethodPost, "/api/courses", `{"title":"Intro","description":"Basics"}`, creds)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	loc := w.Header().Get("Location")
	require.NotEmpty(t, loc)
	return loc
}

func TestRegisterTwice_DuplicateEmail(t *testing.T) {
	router := setupRouter(t)

	body := `{"firstName":"A","lastName":"B","emailAddress":"a@b.com","password":"abcdefgh"}`

	w := doRequest(router, http.MethodPost, "/api/users", body, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = doRequest(router, http.MethodPost, "/api/users", body, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error struct {
			Details struct {
				Fields []struct {
					Field   string `json:"field"`
					Message string `json:"message"`
				} `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	mustReadJSON(t, w, &resp)
	require.Len(t, resp.Error.Details.Fields, 1)
	assert.Equal(t, "emailAddress", resp.Error.Details.Fields[0].Field)
	assert.Equal(t, "Email must be unique. This email already exists.", resp.Error.Details.Fields[0].Message)
}

func TestRegister_MultibytePasswords(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name       string
		email      string
		password   string
		wantStatus int
	}{
		// twenty characters, eighty bytes
		{"over the hash limit", "emoji@b.com", strings.Repeat("😀", 20), http.StatusBadRequest},
		{"within the hash limit", "accent@b.com", strings.Repeat("é", 20), http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"firstName":"A","lastName":"B","emailAddress":"` + tt.email + `","password":"` + tt.password + `"}`

			w := doRequest(router, http.MethodPost, "/api/users", body, nil)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantStatus == http.StatusBadRequest {
				assert.Contains(t, w.Body.String(), "Password length must be between 8 and 20 characters")
				return
			}

			// the stored hash must verify the same multibyte password
			me := doRequest(router, http.MethodGet, "/api/users", "", &credentials{email: tt.email, password: tt.password})
			assert.Equal(t, http.StatusOK, me.Code)
		})
	}
}

func TestCurrentUser(t *testing.T) {
	router := setupRouter(t)
	creds := register(t, router, "a@b.com", "abcdefgh")

	w := doRequest(router, http.MethodGet, "/api/users", "", creds)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "$2a$")

	var got struct {
		ID           int64  `json:"id"`
		EmailAddress string `json:"emailAddress"`
	}
	mustReadJSON(t, w, &got)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "a@b.com", got.EmailAddress)

	w = doRequest(router, http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOwnerUpdatesCourse(t *testing.T) {
	router := setupRouter(t)
	owner := register(t, router, "owner@b.com", "abcdefgh")
	loc := createCourse(t, router, owner)
	assert.Equal(t, "/api/courses/1", loc)

	w := doRequest(router, http.MethodPut, "/api/courses/1", `{"title":"T","description":"D"}`, owner)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = doRequest(router, http.MethodGet, "/api/courses/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		UserID      int64  `json:"userId"`
		User        struct {
			EmailAddress string `json:"emailAddress"`
		} `json:"user"`
	}
	mustReadJSON(t, w, &got)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "D", got.Description)
	assert.Equal(t, int64(1), got.UserID)
	assert.Equal(t, "owner@b.com", got.User.EmailAddress)
}

func TestNonOwnerCannotDelete(t *testing.T) {
	router := setupRouter(t)
	owner := register(t, router, "owner@b.com", "abcdefgh")
	other := register(t, router, "other@b.com", "abcdefgh")
	createCourse(t, router, owner)
	// owning a course of their own grants nothing on course 1
	createCourse(t, router, other)

	w := doRequest(router, http.MethodDelete, "/api/courses/1", "", other)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, http.MethodGet, "/api/courses/1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateMissingCourse(t *testing.T) {
	router := setupRouter(t)
	owner := register(t, router, "owner@b.com", "abcdefgh")

	w := doRequest(router, http.MethodPut, "/api/courses/999", `{"title":"T","description":"D"}`, owner)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteTwice(t *testing.T) {
	router := setupRouter(t)
	owner := register(t, router, "owner@b.com", "abcdefgh")
	createCourse(t, router, owner)

	w := doRequest(router, http.MethodDelete, "/api/courses/1", "", owner)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/courses/1", "", owner)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRejectedCredentialsLookTheSame(t *testing.T) {
	router := setupRouter(t)
	register(t, router, "a@b.com", "abcdefgh")

	body := `{"title":"T","description":"D"}`

	unknown := doRequest(router, http.MethodPost, "/api/courses", body, &credentials{email: "nobody@b.com", password: "abcdefgh"})
	wrong := doRequest(router, http.MethodPost, "/api/courses", body, &credentials{email: "a@b.com", password: "not-it-at-all"})
	missing := doRequest(router, http.MethodPost, "/api/courses", body, nil)

	for _, w := range []*httptest.ResponseRecorder{unknown, wrong, missing} {
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	assert.Equal(t, unknown.Body.String(), missing.Body.String())
}

func TestValidationPrecedesAuthentication(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/api/courses", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCourseListReflectsMutations(t *testing.T) {
	router := setupRouter(t)
	owner := register(t, router, "owner@b.com", "abcdefgh")

	type list struct {
		Count int `json:"count"`
	}

	w := doRequest(router, http.MethodGet, "/api/courses", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var before list
	mustReadJSON(t, w, &before)
	assert.Equal(t, 0, before.Count)

	createCourse(t, router, owner)

	w = doRequest(router, http.MethodGet, "/api/courses", "", nil)
	var after list
	mustReadJSON(t, w, &after)
	assert.Equal(t, 1, after.Count)
}

func TestMetricsExposed(t *testing.T) {
	router := setupRouter(t)

	doRequest(router, http.MethodGet, "/api/users", "", nil)

	w := doRequest(router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "auth_attempts_total")
}
