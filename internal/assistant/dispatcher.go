// Package assistant implements the scripted volunteering chat assistant: a
// priority-ordered intent dispatcher over the recommendation selector and a
// bounded, per-user conversation log.
package assistant

import (
	"strings"
	"time"

	"github.com/kalambet/skillmap/internal/catalog"
	"github.com/kalambet/skillmap/internal/classifier"
	"github.com/kalambet/skillmap/internal/recommend"
	"github.com/kalambet/skillmap/internal/skill"
)

// Context is what the dispatcher knows about the user.
type Context struct {
	// Categories are the user's skills ranked strongest first.
	Categories    []skill.Category
	ActivityCount int
}

// Reply is one dispatcher answer.
type Reply struct {
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Intent    Intent    `json:"intent"`
	Timestamp time.Time `json:"timestamp"`
}

// Dispatcher is stateless apart from its random source and safe for
// concurrent use.
type Dispatcher struct {
	intents *classifier.Classifier[Intent]
	sel     *recommend.Selector
	now     func() time.Time
}

// NewDispatcher wires a dispatcher to the catalog's intent keywords and sel.
func NewDispatcher(cat *catalog.Catalog, sel *recommend.Selector) *Dispatcher {
	return &Dispatcher{
		intents: newIntentClassifier(cat),
		sel:     sel,
		now:     time.Now,
	}
}

// Detect returns the first intent in priority order that msg matches.
func (d *Dispatcher) Detect(msg string) Intent {
	if strings.TrimSpace(msg) == "" {
		return IntentEmpty
	}
	for _, in := range priority {
		if d.intents.Matches(msg, in) {
			return in
		}
	}
	return IntentFallback
}

// Dispatch answers msg. Exactly one branch produces the response.
func (d *Dispatcher) Dispatch(msg string, c Context) Reply {
	in := d.Detect(msg)
	var resp string
	switch in {
	case IntentEmpty:
		resp = d.sel.Clarify()
	case IntentGreeting:
		resp = d.sel.Greeting()
	case IntentSuggestion:
		resp = d.sel.SuggestionReply(c.Categories)
	case IntentAdvice:
		resp = d.sel.AdviceReply(c.Categories)
	case IntentExplanation:
		resp = d.sel.Explanation()
	case IntentMotivation:
		resp = d.sel.Encouragement()
	case IntentAnalysis:
		resp = d.sel.Summary(c.Categories, c.ActivityCount)
	default:
		resp = d.sel.Fallback()
	}
	return Reply{
		Message:   msg,
		Response:  resp,
		Intent:    in,
		Timestamp: d.now().UTC(),
	}
}
