package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/skillmap/internal/classifier"
	"github.com/kalambet/skillmap/internal/skill"
)

func TestDefault_Valid(t *testing.T) {
	c := Default()

	for cat := range c.Categories {
		assert.True(t, cat.Valid(), "category %q", cat)
	}
	assert.Len(t, c.Responses.Greetings, 3)
	assert.Len(t, c.Responses.Clarifications, 3)
	assert.Len(t, c.Responses.Explanations, 2)
	assert.Len(t, c.Responses.Encouragements, 5)
	assert.Len(t, c.Responses.Fallbacks, 5)
	assert.Len(t, c.Defaults.Suggestions, 4)
	assert.Equal(t, skill.Responsibility, c.Defaults.Skill)

	for _, name := range []string{"greeting", "suggestion", "advice", "explanation", "motivation", "analysis"} {
		assert.NotEmpty(t, c.Intents[name], "intent %s", name)
	}
}

func TestSkillTable_CanonicalOrder(t *testing.T) {
	table := Default().SkillTable()
	require.Len(t, table, len(skill.All()))
	for i, e := range table {
		assert.Equal(t, skill.All()[i], e.Label)
	}
}

func TestSkillTable_TeamworkSingleton(t *testing.T) {
	cls := classifier.New(Default().SkillTable())
	assert.Equal(t, []skill.Category{skill.Teamwork}, cls.Classify("bugün ekip ile çalıştım"))
}

func TestActivityTypes(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{
		"eğitim", "sağlık", "çevre", "sosyal", "kültür", "spor",
		"teknoloji", "afet", "hayvan", "proje", "etkinlik", "diğer",
	}, c.TypeNames())

	at, ok := c.ActivityType("EĞİTİM")
	require.True(t, ok)
	assert.Equal(t, "eğitim", at.Name)

	assert.Equal(t, []skill.Category{skill.Teamwork, skill.Leadership}, c.TypeDefaults("spor"))
	assert.Equal(t, []skill.Category{skill.Responsibility}, c.TypeDefaults("afet"))
	assert.Equal(t, []skill.Category{skill.Responsibility}, c.TypeDefaults("uzay"))
}

func TestParse_RejectsUnknownCategory(t *testing.T) {
	_, err := Parse([]byte(`
categories:
  juggling:
    keywords: [top]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown category "juggling"`)
}

func TestParse_RejectsUnknownLevel(t *testing.T) {
	_, err := Parse([]byte(`
categories:
  empathy:
    recommendations:
      grandmaster: "x"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown level "grandmaster"`)
}

func TestParse_RejectsBadIntents(t *testing.T) {
	_, err := Parse([]byte(`
intents:
  greetings: [merhaba]
  suggestion: ["  "]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown intent "greetings"`)
	assert.Contains(t, err.Error(), "intents.greeting has no keywords")
	assert.Contains(t, err.Error(), "intents.suggestion has no keywords")
	assert.Contains(t, err.Error(), "intents.analysis has no keywords")
}

func TestParse_MissingIntentsSection(t *testing.T) {
	data := strings.Replace(string(embedded), "\nintents:", "\nintent_table:", 1)
	_, err := Parse([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "intents.greeting has no keywords")
}

func TestLoad_FileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, embedded, 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().TypeNames(), c.TypeNames())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_EmptyPathIsEmbedded(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Same(t, Default(), c)
}
