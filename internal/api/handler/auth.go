package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cropcareai/cropcare/internal/api/response"
	"github.com/cropcareai/cropcare/internal/credentials"
	"github.com/cropcareai/cropcare/pkg/models"
)

// CredentialChecker defines the account operations the handlers depend on.
type CredentialChecker interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// NewRegisterHandler returns an http.HandlerFunc for POST /api/register.
func NewRegisterHandler(svc CredentialChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeCredentials(w, r)
		if !ok {
			return
		}

		user, err := svc.Register(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, credentials.ErrUsernameTaken) {
				response.Error(w, http.StatusConflict, "USERNAME_TAKEN",
					"Username already exists", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.Created(w, map[string]string{"username": user.Username})
	}
}

// NewLoginHandler returns an http.HandlerFunc for POST /api/login.
func NewLoginHandler(svc CredentialChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeCredentials(w, r)
		if !ok {
			return
		}

		user, err := svc.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, credentials.ErrInvalidCredentials) {
				response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS",
					"Invalid username or password", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, map[string]string{"username": user.Username})
	}
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return req, false
	}
	if req.Username == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "username is required", nil)
		return req, false
	}
	if req.Password == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "password is required", nil)
		return req, false
	}
	return req, true
}
