package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/skillmap/internal/extract"
	"github.com/kalambet/skillmap/internal/skill"
)

type SkillInfo struct {
	Key      skill.Category `json:"key"`
	Label    string         `json:"label"`
	Keywords []string       `json:"keywords"`
}

type RecommendationResponse struct {
	Skill          skill.Category `json:"skill"`
	Label          string         `json:"label"`
	Level          skill.Level    `json:"level"`
	LevelLabel     string         `json:"level_label"`
	Recommendation string         `json:"recommendation"`
}

type ExtractRequest struct {
	Description string `json:"description"`
	Type        string `json:"type"`
}

type ExtractResponse struct {
	Skills     []skill.Category           `json:"skills"`
	Labels     []string                   `json:"labels"`
	Confidence map[skill.Category]float64 `json:"confidence"`
}

type AgentsStatus struct {
	Assistant string `json:"assistant"`
	Learning  string `json:"learning"`
	Extractor string `json:"extractor"`
}

func handleListSkills(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := make([]SkillInfo, 0, len(skill.All()))
		for _, c := range skill.All() {
			kw := deps.Catalog.Categories[c].Keywords
			if kw == nil {
				kw = []string{}
			}
			out = append(out, SkillInfo{Key: c, Label: c.Label(), Keywords: kw})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleActivityTypes(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, deps.Catalog.ActivityTypes)
	}
}

// handleSkillRecommendation accepts category keys or Turkish labels for
// {skill} and level keys or labels for {level}.
func handleSkillRecommendation(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat, ok := skill.Parse(chi.URLParam(r, "skill"))
		if !ok {
			httpError(w, http.StatusNotFound, errNotFound, "unknown skill %q", chi.URLParam(r, "skill"))
			return
		}
		level, ok := skill.ParseLevel(chi.URLParam(r, "level"))
		if !ok {
			httpError(w, http.StatusBadRequest, errInvalidRequest, "unknown level %q", chi.URLParam(r, "level"))
			return
		}
		writeJSON(w, http.StatusOK, RecommendationResponse{
			Skill:          cat,
			Label:          cat.Label(),
			Level:          level,
			LevelLabel:     level.Label(),
			Recommendation: deps.Selector.Recommendation(cat, level),
		})
	}
}

func handleExtractSkills(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExtractRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Description) == "" && strings.TrimSpace(req.Type) == "" {
			httpError(w, http.StatusBadRequest, errInvalidRequest, "description or type is required")
			return
		}
		cats := deps.Extractor.Extract(r.Context(), req.Description, req.Type)
		writeJSON(w, http.StatusOK, ExtractResponse{
			Skills:     cats,
			Labels:     skill.Labels(cats),
			Confidence: deps.Extractor.Scores(cats, req.Description),
		})
	}
}

func handleAgentsStatus(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, AgentsStatus{
			Assistant: extract.StatusActive,
			Learning:  extract.StatusActive,
			Extractor: deps.Extractor.Status(r.Context()),
		})
	}
}
