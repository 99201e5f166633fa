package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/cropcareai/cropcare/internal/credentials"
	"github.com/cropcareai/cropcare/pkg/models"
)

// --- mock CredentialChecker ---

type mockCredentials struct {
	registerFn     func(username, password string) (*models.User, error)
	authenticateFn func(username, password string) (*models.User, error)
}

func (m *mockCredentials) Register(_ context.Context, username, password string) (*models.User, error) {
	return m.registerFn(username, password)
}

func (m *mockCredentials) Authenticate(_ context.Context, username, password string) (*models.User, error) {
	return m.authenticateFn(username, password)
}

func credentialsReq(t *testing.T, path string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(b)))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// --- register ---

func TestRegisterHandler_Success(t *testing.T) {
	mock := &mockCredentials{registerFn: func(username, password string) (*models.User, error) {
		if password != "s3cret" {
			t.Errorf("unexpected password: %q", password)
		}
		return &models.User{ID: uuid.New(), Username: username}, nil
	}}

	h := NewRegisterHandler(mock)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, credentialsReq(t, "/api/register", map[string]string{
		"username": "alice",
		"password": "s3cret",
	}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data["username"] != "alice" {
		t.Errorf("unexpected username: %v", env.Data["username"])
	}
}

func TestRegisterHandler_UsernameTaken(t *testing.T) {
	mock := &mockCredentials{registerFn: func(_, _ string) (*models.User, error) {
		return nil, credentials.ErrUsernameTaken
	}}

	h := NewRegisterHandler(mock)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, credentialsReq(t, "/api/register", map[string]string{
		"username": "alice",
		"password": "s3cret",
	}))

	status, code := parseErr(t, rec)
	if status != http.StatusConflict || code != "USERNAME_TAKEN" {
		t.Errorf("got %d %s", status, code)
	}
}

func TestRegisterHandler_InvalidBody(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"malformed json", "{not json"},
		{"missing username", `{"password":"s3cret"}`},
		{"missing password", `{"username":"alice"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewRegisterHandler(&mockCredentials{})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(tc.body))
			h.ServeHTTP(rec, req)

			status, code := parseErr(t, rec)
			if status != http.StatusBadRequest || code != "INVALID_REQUEST" {
				t.Errorf("got %d %s", status, code)
			}
		})
	}
}

func TestRegisterHandler_StoreFailure(t *testing.T) {
	mock := &mockCredentials{registerFn: func(_, _ string) (*models.User, error) {
		return nil, errors.New("db down")
	}}

	h := NewRegisterHandler(mock)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, credentialsReq(t, "/api/register", map[string]string{
		"username": "alice",
		"password": "s3cret",
	}))

	status, code := parseErr(t, rec)
	if status != http.StatusInternalServerError || code != "INTERNAL_ERROR" {
		t.Errorf("got %d %s", status, code)
	}
}

// --- login ---

func TestLoginHandler_Success(t *testing.T) {
	mock := &mockCredentials{authenticateFn: func(username, password string) (*models.User, error) {
		return &models.User{ID: uuid.New(), Username: username}, nil
	}}

	h := NewLoginHandler(mock)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, credentialsReq(t, "/api/login", map[string]string{
		"username": "alice",
		"password": "s3cret",
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	mock := &mockCredentials{authenticateFn: func(_, _ string) (*models.User, error) {
		return nil, credentials.ErrInvalidCredentials
	}}

	h := NewLoginHandler(mock)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, credentialsReq(t, "/api/login", map[string]string{
		"username": "alice",
		"password": "wrong",
	}))

	status, code := parseErr(t, rec)
	if status != http.StatusUnauthorized || code != "INVALID_CREDENTIALS" {
		t.Errorf("got %d %s", status, code)
	}
}
