package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/skillmap/internal/auth"
	"github.com/kalambet/skillmap/internal/skill"
	"github.com/kalambet/skillmap/internal/storage"
)

type UserDetail struct {
	User       storage.User       `json:"user"`
	Activities []storage.Activity `json:"activities"`
	Skills     []skill.Count      `json:"skills"`
}

func handleDashboard(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := deps.Dashboard.Get()
		if err != nil {
			httpError(w, http.StatusInternalServerError, errAPI, "failed to build dashboard: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func handleListUsers(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := parseIntParam(r, "page", 1, 0)
		limit := parseIntParam(r, "limit", 10, 100)

		p, err := deps.Store.ListUsers(page, limit, r.URL.Query().Get("search"))
		if err != nil {
			httpError(w, http.StatusInternalServerError, errAPI, "failed to list users: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleGetUser(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "userID")

		u, err := deps.Store.GetUser(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, errNotFound, "user not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, errAPI, "failed to get user: %v", err)
			return
		}
		acts, counts, err := userSkills(deps, id)
		if err != nil {
			httpError(w, http.StatusInternalServerError, errAPI, "failed to list activities: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, UserDetail{User: u, Activities: acts, Skills: counts.Rank()})
	}
}

func handleDeleteUser(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "userID")

		if claims, _ := auth.FromContext(r.Context()); claims != nil && claims.UserID() == id {
			httpError(w, http.StatusBadRequest, errInvalidRequest, "admins cannot delete their own account")
			return
		}

		err := deps.Store.DeleteUser(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, errNotFound, "user not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, errAPI, "failed to delete user: %v", err)
			return
		}
		deps.Assistant.Clear(id)
		deps.Dashboard.Invalidate()
		slog.Info("user deleted", "user_id", id)

		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
