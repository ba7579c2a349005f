package overflow

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/auth"
	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/models"
	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/store"
)

// authedHandler is an http.HandlerFunc that additionally receives the
// authenticated user's ID, resolved from the Authorization header by
// requireAuth.
type authedHandler func(w http.ResponseWriter, r *http.Request, userID models.UserID)

// requireAuth gates a handler behind token authentication. A missing token
// and an invalid token are reported separately, but neither reveals why
// validation failed.
func (a *App) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.auth.Authenticate(r.Header.Get("Authorization"))
		if err != nil {
			if errors.Is(err, auth.ErrMissingToken) {
				respondError(w, http.StatusUnauthorized, codeMissingToken, "Access denied. No token provided")
				return
			}
			respondError(w, http.StatusUnauthorized, codeInvalidToken, "Invalid token")
			return
		}
		next(w, r, userID)
	}
}

type registerPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister creates an account and returns a token so the client is
// signed in immediately.
func (a *App) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidPayload, "Invalid request payload")
		return
	}

	token, _, err := a.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			respondError(w, http.StatusBadRequest, codeDuplicateEmail, "User already registered")
			return
		}
		a.respondInternal(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully",
		"token":   token,
	})
}

// handleLogin verifies credentials and issues a token. Unknown email and
// wrong password produce the same response.
func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidPayload, "Invalid request payload")
		return
	}

	token, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthenticationFailed) {
			respondError(w, http.StatusUnauthorized, codeAuthFailed, "Invalid email or password")
			return
		}
		a.respondInternal(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}
