// Package recommend selects suggestion, advice, and encouragement texts from
// the catalog for a user's skill set. Randomized picks go through an
// injected Rand so results are reproducible under a fixed seed.
package recommend

import (
	"fmt"
	"strings"

	"github.com/kalambet/skillmap/internal/catalog"
	"github.com/kalambet/skillmap/internal/skill"
)

// SampleSize is how many activity suggestions a reply carries.
const SampleSize = 2

const (
	suggestionReply = "🎯 Sana uygun faaliyet önerileri:\n\n%s\n\nBu faaliyetler senin yeteneklerini geliştirmene yardımcı olacak! Hangisi ilgini çekiyor? 😊"
	adviceReply     = "💡 %s yetkinliğin için tavsiyem:\n\n%s\n\nSürekli pratik yaparak kendini geliştirebilirsin! 💪"
	summaryReply    = "📊 Yetkinlik analizin:\n\n🏆 En güçlü yönün: %s\n📈 Toplam faaliyet: %d\n💯 Genel durum: %s\n\n%s\n\nDevam et, gelişimin harika! 🚀"
)

// Selector is safe for concurrent use when its Rand is.
type Selector struct {
	cat *catalog.Catalog
	rnd Rand
}

// NewSelector builds a Selector over cat drawing randomness from r.
func NewSelector(cat *catalog.Catalog, r Rand) *Selector {
	return &Selector{cat: cat, rnd: r}
}

// Suggestions returns up to SampleSize activity ideas drawn without
// replacement from the union of the suggestion lists of present. When none
// of present has suggestions the default list is used.
func (s *Selector) Suggestions(present []skill.Category) []string {
	var pool []string
	for _, c := range present {
		pool = append(pool, s.cat.Categories[c].Suggestions...)
	}
	if len(pool) == 0 {
		pool = s.cat.Defaults.Suggestions
	}
	return Sample(s.rnd, pool, SampleSize)
}

// SuggestionReply wraps Suggestions in the chat reply template.
func (s *Selector) SuggestionReply(present []skill.Category) string {
	return fmt.Sprintf(suggestionReply, strings.Join(s.Suggestions(present), "\n"))
}

// Advice picks one of present at random and returns its advice line. A
// category without its own advice gets the default line. ok is false when
// present is empty.
func (s *Selector) Advice(present []skill.Category) (cat skill.Category, advice string, ok bool) {
	if len(present) == 0 {
		return "", "", false
	}
	cat = present[s.rnd.IntN(len(present))]
	advice = s.cat.Categories[cat].Advice
	if advice == "" {
		advice = s.cat.Defaults.Advice
	}
	return cat, advice, true
}

// AdviceReply renders Advice for chat, or the general advice text when the
// user has no categories yet.
func (s *Selector) AdviceReply(present []skill.Category) string {
	cat, advice, ok := s.Advice(present)
	if !ok {
		return s.cat.Responses.GeneralAdvice
	}
	return fmt.Sprintf(adviceReply, cat.Label(), advice)
}

// Recommendation returns the growth tip for cat at level. Categories
// without their own table use the generic per-level table, and a level
// missing from both yields a fixed line.
func (s *Selector) Recommendation(cat skill.Category, level skill.Level) string {
	if msg, ok := s.cat.Categories[cat].Recommendations[level]; ok {
		return msg
	}
	if msg, ok := s.cat.Defaults.Recommendations[level]; ok {
		return msg
	}
	return s.cat.Defaults.UnknownLevel
}

// Motivation is deterministic in the number of activities logged.
func (s *Selector) Motivation(activities int) string {
	m := s.cat.Motivation
	switch {
	case activities <= 0:
		return m.None
	case activities < 3:
		return m.Starting
	case activities < 10:
		return m.Experienced
	default:
		return m.Expert
	}
}

// LevelComment describes how many distinct categories a user has.
func (s *Selector) LevelComment(distinct int) string {
	lc := s.cat.LevelComments
	switch {
	case distinct >= 5:
		return lc.Expert
	case distinct >= 3:
		return lc.Good
	case distinct >= 1:
		return lc.Growing
	default:
		return lc.New
	}
}

// PersonalAdvice is the next-step tip for a user's strongest category.
func (s *Selector) PersonalAdvice(top skill.Category) string {
	if a := s.cat.Categories[top].PersonalAdvice; a != "" {
		return a
	}
	return s.cat.Defaults.PersonalAdvice
}

// Summary renders a self-analysis for a user whose categories are ranked
// strongest first. With no categories it returns the "no analysis yet" text.
func (s *Selector) Summary(ranked []skill.Category, activities int) string {
	if len(ranked) == 0 {
		return s.cat.Responses.NoAnalysis
	}
	top := ranked[0]
	return fmt.Sprintf(summaryReply,
		top.Label(), activities, s.LevelComment(len(ranked)), s.PersonalAdvice(top))
}

// PersonalizedSuggestions returns the fixed next-step list for a user's
// activity count.
func (s *Selector) PersonalizedSuggestions(activities int) []string {
	p := s.cat.Personalized
	var list []string
	switch {
	case activities <= 0:
		list = p.None
	case activities < 3:
		list = p.Starting
	default:
		list = p.Experienced
	}
	return append([]string(nil), list...)
}

func (s *Selector) Greeting() string      { return Pick(s.rnd, s.cat.Responses.Greetings) }
func (s *Selector) Clarify() string       { return Pick(s.rnd, s.cat.Responses.Clarifications) }
func (s *Selector) Explanation() string   { return Pick(s.rnd, s.cat.Responses.Explanations) }
func (s *Selector) Encouragement() string { return Pick(s.rnd, s.cat.Responses.Encouragements) }
func (s *Selector) Fallback() string      { return Pick(s.rnd, s.cat.Responses.Fallbacks) }
