package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kalambet/skillmap/internal/auth"
	"github.com/kalambet/skillmap/internal/storage"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in"` // seconds
	User      storage.User `json:"user"`
}

// firstAdminMu serializes create-first-admin so two concurrent calls cannot
// both see an empty admin set.
var firstAdminMu sync.Mutex

func handleRegister(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if !decodeBody(w, r, &req) {
			return
		}
		u, ok := createAccount(w, deps, req, storage.RoleUser)
		if !ok {
			return
		}
		slog.Info("user registered", "user_id", u.ID)
		respondWithToken(w, deps, http.StatusCreated, u)
	}
}

func handleCreateFirstAdmin(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if !decodeBody(w, r, &req) {
			return
		}

		firstAdminMu.Lock()
		defer firstAdminMu.Unlock()

		n, err := deps.Store.CountUsers(storage.RoleAdmin)
		if err != nil {
			httpError(w, http.StatusInternalServerError, errAPI, "failed to count admins: %v", err)
			return
		}
		if n > 0 {
			httpError(w, http.StatusConflict, errConflict, "an admin account already exists")
			return
		}
		u, ok := createAccount(w, deps, req, storage.RoleAdmin)
		if !ok {
			return
		}
		slog.Info("first admin created", "user_id", u.ID)
		respondWithToken(w, deps, http.StatusCreated, u)
	}
}

// createAccount validates req and stores a new user. On failure it writes
// the error response and returns false.
func createAccount(w http.ResponseWriter, deps AppDeps, req RegisterRequest, role storage.Role) (storage.User, bool) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" {
		httpError(w, http.StatusBadRequest, errInvalidRequest, "name is required")
		return storage.User{}, false
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		httpError(w, http.StatusBadRequest, errInvalidRequest, "a valid email is required")
		return storage.User{}, false
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httpError(w, http.StatusBadRequest, errInvalidRequest, "%v", err)
		return storage.User{}, false
	}

	u := storage.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    deps.now().UTC(),
	}
	if err := deps.Store.CreateUser(u); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			httpError(w, http.StatusConflict, errConflict, "email already registered")
			return storage.User{}, false
		}
		httpError(w, http.StatusInternalServerError, errAPI, "failed to create user: %v", err)
		return storage.User{}, false
	}
	deps.Dashboard.Invalidate()
	return u, true
}

func handleLogin(deps AppDeps, adminOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeBody(w, r, &req) {
			return
		}

		u, err := deps.Store.GetUserByEmail(req.Email)
		if errors.Is(err, storage.ErrNotFound) {
			writeAuthError(w, auth.ErrInvalidCredentials)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, errAPI, "failed to look up user: %v", err)
			return
		}
		if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
			writeAuthError(w, err)
			return
		}
		if adminOnly && u.Role != storage.RoleAdmin {
			httpError(w, http.StatusForbidden, errPermission, "admin access required")
			return
		}

		now := deps.now().UTC()
		if err := deps.Store.TouchLastLogin(u.ID, now); err != nil {
			slog.Warn("failed to record login", "user_id", u.ID, "error", err)
		} else {
			u.LastLogin = &now
		}
		respondWithToken(w, deps, http.StatusOK, u)
	}
}

func handleMe(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.FromContext(r.Context())
		u, err := deps.Store.GetUser(claims.UserID())
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, errNotFound, "user not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, errAPI, "failed to get user: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

func respondWithToken(w http.ResponseWriter, deps AppDeps, code int, u storage.User) {
	token, err := deps.Issuer.Issue(u.ID, string(u.Role))
	if err != nil {
		httpError(w, http.StatusInternalServerError, errAPI, "failed to issue token: %v", err)
		return
	}
	writeJSON(w, code, AuthResponse{
		Token:     token,
		ExpiresIn: int64(deps.Issuer.TTL().Seconds()),
		User:      u,
	})
}
