package assistant

import (
	"github.com/kalambet/skillmap/internal/catalog"
	"github.com/kalambet/skillmap/internal/classifier"
)

// Intent is what a chat message is asking for.
type Intent string

const (
	IntentEmpty       Intent = "empty"
	IntentGreeting    Intent = "greeting"
	IntentSuggestion  Intent = "suggestion"
	IntentAdvice      Intent = "advice"
	IntentExplanation Intent = "explanation"
	IntentMotivation  Intent = "motivation"
	IntentAnalysis    Intent = "analysis"
	IntentFallback    Intent = "fallback"
)

// priority is the order intents are tested in. The first match wins, so a
// message that is both a greeting and a request is answered as a greeting.
var priority = []Intent{
	IntentGreeting,
	IntentSuggestion,
	IntentAdvice,
	IntentExplanation,
	IntentMotivation,
	IntentAnalysis,
}

// newIntentClassifier builds the keyword classifier for intents from the
// catalog, in priority order.
func newIntentClassifier(cat *catalog.Catalog) *classifier.Classifier[Intent] {
	table := make(classifier.Table[Intent], 0, len(priority))
	for _, in := range priority {
		table = append(table, classifier.Entry[Intent]{Label: in, Keywords: cat.Intents[string(in)]})
	}
	return classifier.New(table)
}
