// Package skill defines the closed set of volunteer skill categories,
// experience levels, and the per-user tally derived from tagged activities.
package skill

import (
	"slices"

	"github.com/kalambet/skillmap/internal/classifier"
)

// Category is one of the fixed skill categories an activity can be tagged with.
// The zero value is not a valid category.
type Category string

const (
	Teamwork       Category = "teamwork"
	Leadership     Category = "leadership"
	Communication  Category = "communication"
	Empathy        Category = "empathy"
	ProblemSolving Category = "problem_solving"
	Planning       Category = "planning"
	Responsibility Category = "responsibility"
	Volunteering   Category = "volunteering"
	Creativity     Category = "creativity"
	Technical      Category = "technical"
)

// canonical is the enumeration order. Ranking ties are broken by it.
var canonical = []Category{
	Teamwork,
	Leadership,
	Communication,
	Empathy,
	ProblemSolving,
	Planning,
	Responsibility,
	Volunteering,
	Creativity,
	Technical,
}

var labels = map[Category]string{
	Teamwork:       "Takım Çalışması",
	Leadership:     "Liderlik",
	Communication:  "İletişim",
	Empathy:        "Empati",
	ProblemSolving: "Problem Çözme",
	Planning:       "Planlama",
	Responsibility: "Sorumluluk",
	Volunteering:   "Gönüllülük",
	Creativity:     "Yaratıcılık",
	Technical:      "Teknik Yetkinlik",
}

var byName = func() map[string]Category {
	m := make(map[string]Category, 2*len(canonical))
	for _, c := range canonical {
		m[fold(string(c))] = c
		m[fold(labels[c])] = c
	}
	return m
}()

// All returns every category in canonical order.
func All() []Category {
	return slices.Clone(canonical)
}

// Valid reports whether c is a member of the enumeration.
func (c Category) Valid() bool {
	_, ok := labels[c]
	return ok
}

// Label returns the Turkish display name.
func (c Category) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

func (c Category) String() string { return string(c) }

// Index returns the position of c in the canonical order, or -1.
func (c Category) Index() int {
	return slices.Index(canonical, c)
}

// Parse resolves a category key ("teamwork") or display label
// ("Takım Çalışması"). Matching ignores case using Turkish casing rules.
func Parse(s string) (Category, bool) {
	c, ok := byName[fold(s)]
	return c, ok
}

// Sort orders cats canonically in place and drops duplicates.
func Sort(cats []Category) []Category {
	slices.SortFunc(cats, func(a, b Category) int { return a.Index() - b.Index() })
	return slices.Compact(cats)
}

// Labels maps cats to their display names.
func Labels(cats []Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.Label()
	}
	return out
}

func fold(s string) string { return classifier.Normalize(s) }
