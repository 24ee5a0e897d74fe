// Package catalog holds the static lookup tables behind skill extraction,
// intent detection, and response selection. Tables are declarative YAML,
// embedded at build time and optionally replaced by a file on disk.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kalambet/skillmap/internal/classifier"
	"github.com/kalambet/skillmap/internal/skill"
)

//go:embed catalog.yaml
var embedded []byte

// CategoryEntry is everything known about one skill category.
type CategoryEntry struct {
	Keywords        []string               `yaml:"keywords"`
	Suggestions     []string               `yaml:"suggestions"`
	Advice          string                 `yaml:"advice"`
	PersonalAdvice  string                 `yaml:"personal_advice"`
	Recommendations map[skill.Level]string `yaml:"recommendations"`
}

// Defaults are used when a category has no entry of its own.
type Defaults struct {
	Suggestions     []string               `yaml:"suggestions"`
	Advice          string                 `yaml:"advice"`
	PersonalAdvice  string                 `yaml:"personal_advice"`
	Recommendations map[skill.Level]string `yaml:"recommendations"`
	UnknownLevel    string                 `yaml:"unknown_level"`
	Skill           skill.Category         `yaml:"skill"`
}

// Responses are the flavor pools the assistant picks from.
type Responses struct {
	Greetings      []string `yaml:"greetings"`
	Clarifications []string `yaml:"clarifications"`
	Explanations   []string `yaml:"explanations"`
	Encouragements []string `yaml:"encouragements"`
	Fallbacks      []string `yaml:"fallbacks"`
	GeneralAdvice  string   `yaml:"general_advice"`
	NoAnalysis     string   `yaml:"no_analysis"`
}

// Motivation messages keyed by activity-count tier.
type Motivation struct {
	None        string `yaml:"none"`
	Starting    string `yaml:"starting"`
	Experienced string `yaml:"experienced"`
	Expert      string `yaml:"expert"`
}

// LevelComments describe breadth of skills.
type LevelComments struct {
	Expert  string `yaml:"expert"`
	Good    string `yaml:"good"`
	Growing string `yaml:"growing"`
	New     string `yaml:"new"`
}

// Personalized suggestion lists keyed by activity-count tier.
type Personalized struct {
	None        []string `yaml:"none"`
	Starting    []string `yaml:"starting"`
	Experienced []string `yaml:"experienced"`
}

// ActivityType is an accepted activity type and the categories it implies
// when text classification finds nothing.
type ActivityType struct {
	Name   string           `yaml:"name" json:"name"`
	Skills []skill.Category `yaml:"skills" json:"skills"`
}

// intentKeys are the keys the intents section must define, in the order
// the assistant tests them.
var intentKeys = []string{"greeting", "suggestion", "advice", "explanation", "motivation", "analysis"}

// IntentKeys returns the intent names in priority order.
func IntentKeys() []string { return slices.Clone(intentKeys) }

// Catalog is read-only after Load returns.
type Catalog struct {
	Categories    map[skill.Category]CategoryEntry `yaml:"categories"`
	Defaults      Defaults                         `yaml:"defaults"`
	Intents       map[string][]string              `yaml:"intents"`
	Responses     Responses                        `yaml:"responses"`
	Motivation    Motivation                       `yaml:"motivation"`
	LevelComments LevelComments                    `yaml:"level_comments"`
	Personalized  Personalized                     `yaml:"personalized"`
	ActivityTypes []ActivityType                   `yaml:"activity_types"`

	types map[string]ActivityType
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return Parse(embedded)
})

// Default returns the embedded catalog. It panics if the embedded tables are
// invalid, which is a build defect caught by tests.
func Default() *Catalog {
	c, err := defaultCatalog()
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads the catalog at path, or returns the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return defaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.types = make(map[string]ActivityType, len(c.ActivityTypes))
	for _, t := range c.ActivityTypes {
		c.types[classifier.Normalize(t.Name)] = t
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	var errs []error
	for cat, e := range c.Categories {
		if !cat.Valid() {
			errs = append(errs, fmt.Errorf("unknown category %q", cat))
		}
		errs = append(errs, checkLevels(string(cat), e.Recommendations)...)
	}
	errs = append(errs, checkLevels("defaults", c.Defaults.Recommendations)...)
	if !c.Defaults.Skill.Valid() {
		errs = append(errs, fmt.Errorf("defaults.skill %q is not a category", c.Defaults.Skill))
	}
	if len(c.Defaults.Suggestions) == 0 {
		errs = append(errs, errors.New("defaults.suggestions is empty"))
	}
	for name, pool := range map[string][]string{
		"greetings":      c.Responses.Greetings,
		"clarifications": c.Responses.Clarifications,
		"explanations":   c.Responses.Explanations,
		"encouragements": c.Responses.Encouragements,
		"fallbacks":      c.Responses.Fallbacks,
	} {
		if len(pool) == 0 {
			errs = append(errs, fmt.Errorf("responses.%s is empty", name))
		}
	}
	errs = append(errs, c.checkIntents()...)
	seen := make(map[string]bool)
	for _, t := range c.ActivityTypes {
		key := classifier.Normalize(t.Name)
		if key == "" {
			errs = append(errs, errors.New("activity type with empty name"))
		}
		if seen[key] {
			errs = append(errs, fmt.Errorf("duplicate activity type %q", t.Name))
		}
		seen[key] = true
		for _, s := range t.Skills {
			if !s.Valid() {
				errs = append(errs, fmt.Errorf("activity type %q: unknown category %q", t.Name, s))
			}
		}
	}
	return errors.Join(errs...)
}

// checkIntents rejects unknown intent keys and intents without a usable
// keyword, either of which would silently route chat to the fallback reply.
func (c *Catalog) checkIntents() []error {
	var errs []error
	for name := range c.Intents {
		if !slices.Contains(intentKeys, name) {
			errs = append(errs, fmt.Errorf("unknown intent %q", name))
		}
	}
	for _, name := range intentKeys {
		if !slices.ContainsFunc(c.Intents[name], func(k string) bool { return classifier.Normalize(k) != "" }) {
			errs = append(errs, fmt.Errorf("intents.%s has no keywords", name))
		}
	}
	return errs
}

func checkLevels(owner string, m map[skill.Level]string) []error {
	var errs []error
	for l := range m {
		if l.Rank() < 0 {
			errs = append(errs, fmt.Errorf("%s: unknown level %q", owner, l))
		}
	}
	return errs
}

// SkillTable returns the keyword table for skill categories in canonical
// order. Categories without keywords are omitted.
func (c *Catalog) SkillTable() classifier.Table[skill.Category] {
	var t classifier.Table[skill.Category]
	for _, cat := range skill.All() {
		if e, ok := c.Categories[cat]; ok && len(e.Keywords) > 0 {
			t = append(t, classifier.Entry[skill.Category]{Label: cat, Keywords: e.Keywords})
		}
	}
	return t
}

// ActivityType looks up an activity type by name, ignoring case.
func (c *Catalog) ActivityType(name string) (ActivityType, bool) {
	t, ok := c.types[classifier.Normalize(name)]
	return t, ok
}

// TypeNames lists accepted activity types in catalog order.
func (c *Catalog) TypeNames() []string {
	out := make([]string, len(c.ActivityTypes))
	for i, t := range c.ActivityTypes {
		out[i] = t.Name
	}
	return out
}

// TypeDefaults returns the categories implied by an activity type, falling
// back to the default category for unknown types or types with none listed.
func (c *Catalog) TypeDefaults(name string) []skill.Category {
	if t, ok := c.ActivityType(name); ok && len(t.Skills) > 0 {
		return append([]skill.Category(nil), t.Skills...)
	}
	return []skill.Category{c.Defaults.Skill}
}
