// Package learning derives progress reports from a user's skill tally:
// per-skill levels, gaps, growth recommendations, and milestones.
package learning

import (
	"fmt"
	"math"
	"time"

	"github.com/kalambet/skillmap/internal/recommend"
	"github.com/kalambet/skillmap/internal/skill"
)

// Recommendation kinds and priorities.
const (
	KindDevelop = "develop"
	KindNew     = "new"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

// developBelow is the count under which a present skill is flagged for growth.
const developBelow = 3

// newSkillSuggestions caps how many missing skills are suggested.
const newSkillSuggestions = 3

// Recommendation is one growth action for a category.
type Recommendation struct {
	Category skill.Category `json:"skill"`
	Label    string         `json:"label"`
	Kind     string         `json:"type"`
	Message  string         `json:"message"`
	Priority string         `json:"priority"`
}

// Milestone is a count target and whether it has been reached.
type Milestone struct {
	Name     string `json:"name"`
	Achieved bool   `json:"achieved"`
	Target   int    `json:"target"`
	Current  int    `json:"current"`
}

// Analysis is the full learning report for one user.
type Analysis struct {
	UserID             string                         `json:"user_id"`
	TotalActivities    int                            `json:"total_activities"`
	TotalSkills        int                            `json:"total_skills"`
	SkillCounts        skill.Counts                   `json:"skill_counts"`
	SkillLevels        map[skill.Category]skill.Level `json:"skill_levels"`
	MissingSkills      []skill.Category               `json:"missing_skills"`
	Recommendations    []Recommendation               `json:"recommendations"`
	Milestones         []Milestone                    `json:"milestones"`
	ProgressPercentage int                            `json:"progress_percentage"`
	Motivation         string                         `json:"motivation_message"`
	LastUpdated        time.Time                      `json:"last_updated"`
}

// Summary is the short top/weak view of a tally.
type Summary struct {
	TopSkills   []skill.Count `json:"top_skills"`
	WeakSkills  []skill.Count `json:"weak_skills"`
	AllSkills   skill.Counts  `json:"all_skills"`
	Suggestions []string      `json:"suggestions"`
}

// Analyzer builds reports. It holds no per-user state.
type Analyzer struct {
	sel *recommend.Selector
}

// NewAnalyzer returns an Analyzer that takes motivation texts from sel.
func NewAnalyzer(sel *recommend.Selector) *Analyzer {
	return &Analyzer{sel: sel}
}

// Analyze reports on counts, the tally over a user's activities.
func (a *Analyzer) Analyze(userID string, counts skill.Counts, activities int, now time.Time) Analysis {
	if counts == nil {
		counts = skill.Counts{}
	}
	distinct := counts.Distinct()
	missing := counts.Missing()
	milestones := Milestones(activities, distinct)

	achieved := 0
	for _, m := range milestones {
		if m.Achieved {
			achieved++
		}
	}

	return Analysis{
		UserID:             userID,
		TotalActivities:    activities,
		TotalSkills:        distinct,
		SkillCounts:        counts,
		SkillLevels:        counts.Levels(),
		MissingSkills:      missing,
		Recommendations:    Recommendations(counts, missing),
		Milestones:         milestones,
		ProgressPercentage: int(math.Round(float64(achieved) / float64(len(milestones)) * 100)),
		Motivation:         a.sel.Motivation(activities),
		LastUpdated:        now.UTC(),
	}
}

// Recommendations flags each present skill below the develop threshold,
// strongest first, then suggests the first few missing skills.
func Recommendations(counts skill.Counts, missing []skill.Category) []Recommendation {
	var out []Recommendation
	for _, c := range counts.Rank() {
		if c.Count < developBelow {
			out = append(out, Recommendation{
				Category: c.Category,
				Label:    c.Label,
				Kind:     KindDevelop,
				Message:  fmt.Sprintf("%s yetkinliğini geliştirmek için daha fazla faaliyet yap", c.Label),
				Priority: PriorityHigh,
			})
		}
	}
	for _, m := range missing[:min(newSkillSuggestions, len(missing))] {
		out = append(out, Recommendation{
			Category: m,
			Label:    m.Label(),
			Kind:     KindNew,
			Message:  fmt.Sprintf("%s yetkinliğini kazanmak için yeni faaliyetler dene", m.Label()),
			Priority: PriorityMedium,
		})
	}
	return out
}

// Milestones evaluates the fixed activity and skill-breadth targets.
func Milestones(activities, distinct int) []Milestone {
	ms := []Milestone{
		{Name: "İlk Faaliyet", Target: 1, Current: activities},
		{Name: "5 Faaliyet", Target: 5, Current: activities},
		{Name: "10 Faaliyet", Target: 10, Current: activities},
		{Name: "3 Yetkinlik", Target: 3, Current: distinct},
		{Name: "5 Yetkinlik", Target: 5, Current: distinct},
	}
	for i := range ms {
		ms[i].Achieved = ms[i].Current >= ms[i].Target
	}
	return ms
}

// Summarize returns the two strongest and two weakest skills, with a
// suggestion for each weak one.
func Summarize(counts skill.Counts) Summary {
	if counts == nil {
		counts = skill.Counts{}
	}
	weak := counts.BottomN(2)
	suggestions := make([]string, 0, len(weak))
	for _, w := range weak {
		suggestions = append(suggestions,
			fmt.Sprintf("%s yetkinliğini geliştirmek için ilgili faaliyetler ekleyebilirsiniz.", w.Label))
	}
	return Summary{
		TopSkills:   counts.TopN(2),
		WeakSkills:  weak,
		AllSkills:   counts,
		Suggestions: suggestions,
	}
}
