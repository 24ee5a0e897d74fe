package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kalambet/skillmap/internal/skill"
	"github.com/kalambet/skillmap/internal/storage"
)

type CreateActivityRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"` // RFC 3339 or YYYY-MM-DD; empty means now
	Type        string `json:"type"`
	Duration    int    `json:"duration"` // minutes
}

type CreateActivityResponse struct {
	Activity storage.Activity `json:"activity"`
	Skills   []string         `json:"skills"`
}

func handleCreateActivity(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		var req CreateActivityRequest
		if !decodeBody(w, r, &req) {
			return
		}
		req.Title = strings.TrimSpace(req.Title)
		if req.Title == "" {
			httpError(w, http.StatusBadRequest, errInvalidRequest, "title is required")
			return
		}
		if req.Duration < 1 {
			httpError(w, http.StatusBadRequest, errInvalidRequest, "duration must be at least 1 minute")
			return
		}
		typ, ok := deps.Catalog.ActivityType(req.Type)
		if !ok {
			httpError(w, http.StatusBadRequest, errInvalidRequest,
				"unknown activity type %q; expected one of: %s", req.Type, strings.Join(deps.Catalog.TypeNames(), ", "))
			return
		}
		now := deps.now().UTC()
		date, err := parseActivityDate(req.Date, now)
		if err != nil {
			httpError(w, http.StatusBadRequest, errInvalidRequest, "invalid date %q: use YYYY-MM-DD or RFC 3339", req.Date)
			return
		}

		if _, err := deps.Store.GetUser(userID); errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, errNotFound, "user not found")
			return
		} else if err != nil {
			httpError(w, http.StatusInternalServerError, errAPI, "failed to get user: %v", err)
			return
		}

		cats := deps.Extractor.Extract(r.Context(), req.Description, typ.Name)
		a := storage.Activity{
			ID:          uuid.New().String(),
			UserID:      userID,
			Title:       req.Title,
			Description: strings.TrimSpace(req.Description),
			Type:        typ.Name,
			Date:        date,
			Duration:    req.Duration,
			Categories:  cats,
			CreatedAt:   now,
		}
		if err := deps.Store.SaveActivity(a); err != nil {
			httpError(w, http.StatusInternalServerError, errAPI, "failed to save activity: %v", err)
			return
		}
		deps.Dashboard.Invalidate()
		slog.Info("activity created", "user_id", userID, "activity_id", a.ID, "skills", len(cats))

		writeJSON(w, http.StatusCreated, CreateActivityResponse{Activity: a, Skills: skill.Labels(cats)})
	}
}

func handleListActivities(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acts, err := deps.Store.ListActivitiesByUser(chi.URLParam(r, "userID"))
		if err != nil {
			httpError(w, http.StatusInternalServerError, errAPI, "failed to list activities: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, acts)
	}
}

func parseActivityDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, s)
}
