package learning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/skillmap/internal/catalog"
	"github.com/kalambet/skillmap/internal/recommend"
	"github.com/kalambet/skillmap/internal/skill"
)

func newAnalyzer() *Analyzer {
	cat := catalog.Default()
	return NewAnalyzer(recommend.NewSelector(cat, recommend.NewRand(1)))
}

func TestAnalyze_Empty(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a := newAnalyzer().Analyze("u1", nil, 0, now)

	assert.Equal(t, "u1", a.UserID)
	assert.Zero(t, a.TotalSkills)
	assert.Zero(t, a.ProgressPercentage)
	assert.Len(t, a.MissingSkills, len(skill.All()))
	assert.Equal(t, catalog.Default().Motivation.None, a.Motivation)
	assert.Equal(t, now, a.LastUpdated)

	require.Len(t, a.Recommendations, 3)
	for _, r := range a.Recommendations {
		assert.Equal(t, KindNew, r.Kind)
		assert.Equal(t, PriorityMedium, r.Priority)
	}
	assert.Equal(t, skill.Teamwork, a.Recommendations[0].Category)
}

func TestAnalyze_LevelsAndRecommendations(t *testing.T) {
	counts := skill.Counts{skill.Leadership: 5, skill.Empathy: 2, skill.Planning: 1}
	a := newAnalyzer().Analyze("u2", counts, 6, time.Now())

	assert.Equal(t, 3, a.TotalSkills)
	assert.Equal(t, skill.LevelExpert, a.SkillLevels[skill.Leadership])
	assert.Equal(t, skill.LevelBeginner, a.SkillLevels[skill.Empathy])
	assert.Equal(t, catalog.Default().Motivation.Experienced, a.Motivation)

	require.Len(t, a.Recommendations, 5)
	assert.Equal(t, skill.Empathy, a.Recommendations[0].Category)
	assert.Equal(t, KindDevelop, a.Recommendations[0].Kind)
	assert.Equal(t, PriorityHigh, a.Recommendations[0].Priority)
	assert.Equal(t, "Empati yetkinliğini geliştirmek için daha fazla faaliyet yap", a.Recommendations[0].Message)
	assert.Equal(t, skill.Planning, a.Recommendations[1].Category)

	assert.Equal(t, skill.Teamwork, a.Recommendations[2].Category)
	assert.Equal(t, KindNew, a.Recommendations[2].Kind)
	assert.Equal(t, skill.Communication, a.Recommendations[3].Category)
	assert.Equal(t, skill.ProblemSolving, a.Recommendations[4].Category)

	// İlk Faaliyet, 5 Faaliyet and 3 Yetkinlik reached: 3 of 5.
	assert.Equal(t, 60, a.ProgressPercentage)
}

func TestMilestones(t *testing.T) {
	ms := Milestones(10, 5)
	require.Len(t, ms, 5)
	for _, m := range ms {
		assert.True(t, m.Achieved, m.Name)
	}

	ms = Milestones(4, 2)
	assert.True(t, ms[0].Achieved)
	assert.False(t, ms[1].Achieved)
	assert.False(t, ms[3].Achieved)
	assert.Equal(t, 2, ms[3].Current)
}

func TestProgressRounding(t *testing.T) {
	// One of five milestones.
	a := newAnalyzer().Analyze("u", skill.Counts{skill.Teamwork: 1}, 1, time.Now())
	assert.Equal(t, 20, a.ProgressPercentage)
}

func TestSummarize(t *testing.T) {
	s := Summarize(skill.Counts{skill.Teamwork: 4, skill.Empathy: 1, skill.Technical: 2, skill.Leadership: 4})

	require.Len(t, s.TopSkills, 2)
	assert.Equal(t, skill.Teamwork, s.TopSkills[0].Category)
	assert.Equal(t, skill.Leadership, s.TopSkills[1].Category)

	require.Len(t, s.WeakSkills, 2)
	assert.Equal(t, skill.Technical, s.WeakSkills[0].Category)
	assert.Equal(t, skill.Empathy, s.WeakSkills[1].Category)

	assert.Equal(t, []string{
		"Teknik Yetkinlik yetkinliğini geliştirmek için ilgili faaliyetler ekleyebilirsiniz.",
		"Empati yetkinliğini geliştirmek için ilgili faaliyetler ekleyebilirsiniz.",
	}, s.Suggestions)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Empty(t, s.TopSkills)
	assert.Empty(t, s.WeakSkills)
	assert.Empty(t, s.Suggestions)
	assert.NotNil(t, s.AllSkills)
}
