package skillapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/skillmap/internal/classifier"
	"github.com/kalambet/skillmap/internal/skill"
)

const maxAnalyzeBody = 64 << 10

// NewHandler serves the classification protocol from cls.
func NewHandler(cls *classifier.Classifier[skill.Category]) http.Handler {
	r := chi.NewRouter()
	r.Post("/analyze", handleAnalyze(cls))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "skill-extractor"})
	})
	return r
}

func handleAnalyze(cls *classifier.Classifier[skill.Category]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxAnalyzeBody)
		defer r.Body.Close()

		var req AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, AnalyzeResponse{Skills: []string{}, Error: "invalid request body"})
			return
		}

		cats := cls.Classify(req.Text)
		slog.Debug("analyzed text", "chars", len(req.Text), "skills", len(cats))
		labels := skill.Labels(cats)
		writeJSON(w, http.StatusOK, AnalyzeResponse{Skills: labels})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
