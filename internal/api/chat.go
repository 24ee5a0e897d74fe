package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/skillmap/internal/assistant"
	"github.com/kalambet/skillmap/internal/learning"
	"github.com/kalambet/skillmap/internal/skill"
)

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	assistant.Reply
	UserSkills      []string `json:"user_skills"`
	TotalActivities int      `json:"total_activities"`
}

type SuggestionsResponse struct {
	Suggestions  []string `json:"suggestions"`
	Personalized []string `json:"personalized"`
	Motivation   string   `json:"motivation"`
}

type SkillAnalysisResponse struct {
	learning.Summary
	TotalActivities int    `json:"total_activities"`
	LevelComment    string `json:"level_comment"`
	PersonalAdvice  string `json:"personal_advice,omitempty"`
}

func handleChat(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		var req ChatRequest
		if !decodeBody(w, r, &req) {
			return
		}
		c, err := assistantContext(deps, userID)
		if err != nil {
			httpError(w, http.StatusInternalServerError, errAPI, "failed to load user skills: %v", err)
			return
		}
		reply := deps.Assistant.Process(userID, req.Message, c)
		writeJSON(w, http.StatusOK, ChatResponse{
			Reply:           reply,
			UserSkills:      skill.Labels(c.Categories),
			TotalActivities: c.ActivityCount,
		})
	}
}

func handleChatHistory(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		turns := deps.Assistant.History(chi.URLParam(r, "userID"))
		if turns == nil {
			turns = []assistant.Turn{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"history": turns,
			"limit":   deps.Assistant.HistoryLimit(),
		})
	}
}

func handleClearChatHistory(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := deps.Assistant.Clear(chi.URLParam(r, "userID"))
		writeJSON(w, http.StatusOK, map[string]any{"status": "cleared", "removed": n})
	}
}

func handleSuggestions(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := assistantContext(deps, chi.URLParam(r, "userID"))
		if err != nil {
			httpError(w, http.StatusInternalServerError, errAPI, "failed to load user skills: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, SuggestionsResponse{
			Suggestions:  deps.Selector.Suggestions(c.Categories),
			Personalized: deps.Selector.PersonalizedSuggestions(c.ActivityCount),
			Motivation:   deps.Selector.Motivation(c.ActivityCount),
		})
	}
}

func handleSkillAnalysis(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acts, counts, err := userSkills(deps, chi.URLParam(r, "userID"))
		if err != nil {
			httpError(w, http.StatusInternalServerError, errAPI, "failed to load user skills: %v", err)
			return
		}
		resp := SkillAnalysisResponse{
			Summary:         learning.Summarize(counts),
			TotalActivities: len(acts),
			LevelComment:    deps.Selector.LevelComment(counts.Distinct()),
		}
		if ranked := counts.Ranked(); len(ranked) > 0 {
			resp.PersonalAdvice = deps.Selector.PersonalAdvice(ranked[0])
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleLearningAnalysis(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		acts, counts, err := userSkills(deps, userID)
		if err != nil {
			httpError(w, http.StatusInternalServerError, errAPI, "failed to load user skills: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, deps.Analyzer.Analyze(userID, counts, len(acts), deps.now()))
	}
}
