package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kalambet/skillmap/internal/assistant"
	"github.com/kalambet/skillmap/internal/auth"
	"github.com/kalambet/skillmap/internal/catalog"
	"github.com/kalambet/skillmap/internal/dashboard"
	"github.com/kalambet/skillmap/internal/extract"
	"github.com/kalambet/skillmap/internal/learning"
	"github.com/kalambet/skillmap/internal/logging"
	"github.com/kalambet/skillmap/internal/recommend"
	"github.com/kalambet/skillmap/internal/skill"
	"github.com/kalambet/skillmap/internal/storage"
)

// AppDeps holds everything the HTTP handlers need. All fields are required
// except AllowedOrigins and Now.
type AppDeps struct {
	Store     *storage.Store
	Issuer    *auth.Issuer
	Catalog   *catalog.Catalog
	Extractor *extract.Extractor
	Assistant *assistant.Service
	Selector  *recommend.Selector
	Analyzer  *learning.Analyzer
	Dashboard *dashboard.Manager

	// AllowedOrigins lists the browser origins that may open the chat
	// websocket. Requests without an Origin header are always accepted.
	AllowedOrigins []string

	// Now defaults to time.Now.
	Now func() time.Time
}

func (d AppDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.AccessLog)
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth(deps))
	r.Get("/ws/chat", handleChatSocket(deps))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handleRegister(deps))
			r.Post("/login", handleLogin(deps, false))
			r.Post("/admin/login", handleLogin(deps, true))
			r.Post("/admin/create-first", handleCreateFirstAdmin(deps))
			r.With(BearerAuth(deps.Issuer)).Get("/me", handleMe(deps))
		})

		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(deps.Issuer))

			r.Route("/users/{userID}", func(r chi.Router) {
				r.Use(RequireSelf)
				r.Post("/activities", handleCreateActivity(deps))
				r.Get("/activities", handleListActivities(deps))
				r.Post("/chat", handleChat(deps))
				r.Get("/chat/history", handleChatHistory(deps))
				r.Delete("/chat/history", handleClearChatHistory(deps))
				r.Get("/suggestions", handleSuggestions(deps))
				r.Get("/skill-analysis", handleSkillAnalysis(deps))
				r.Get("/learning-analysis", handleLearningAnalysis(deps))
			})

			r.Get("/skills", handleListSkills(deps))
			r.Get("/skills/recommendation/{skill}/{level}", handleSkillRecommendation(deps))
			r.Post("/skills/extract", handleExtractSkills(deps))
			r.Get("/activity-types", handleActivityTypes(deps))
			r.Get("/agents/status", handleAgentsStatus(deps))

			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Get("/dashboard", handleDashboard(deps))
				r.Get("/users", handleListUsers(deps))
				r.Get("/users/{userID}", handleGetUser(deps))
				r.Delete("/users/{userID}", handleDeleteUser(deps))
			})
		})
	})

	return r
}

// handleHealth reports 503 when the database stops answering.
func handleHealth(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.Ping(r.Context()); err != nil {
			slog.Warn("health check: database unreachable", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "unreachable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
	}
}

// userSkills loads a user's activities and the tally over them.
func userSkills(deps AppDeps, userID string) ([]storage.Activity, skill.Counts, error) {
	acts, err := deps.Store.ListActivitiesByUser(userID)
	if err != nil {
		return nil, nil, err
	}
	return acts, skill.Tally(acts), nil
}

// assistantContext builds what the dispatcher knows about userID.
func assistantContext(deps AppDeps, userID string) (assistant.Context, error) {
	acts, counts, err := userSkills(deps, userID)
	if err != nil {
		return assistant.Context{}, err
	}
	return assistant.Context{Categories: counts.Ranked(), ActivityCount: len(acts)}, nil
}

// ParseOrigins splits a comma-separated origin list.
func ParseOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, strings.TrimRight(o, "/"))
		}
	}
	return out
}
