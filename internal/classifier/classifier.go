// Package classifier assigns labels to free text by keyword containment.
//
// A Classifier is built from an ordered table of (label, keywords) entries.
// A label matches when any of its keywords occurs as a substring of the
// normalized input. There is no tokenization or stemming, so "ekip" matches
// "ekiple" as well. The same machinery serves skill categories and chat
// intents.
package classifier

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Entry binds a label to the keywords that select it.
type Entry[L comparable] struct {
	Label    L
	Keywords []string
}

// Table is an ordered keyword table. Order determines result order.
type Table[L comparable] []Entry[L]

// Classifier is immutable after construction and safe for concurrent use.
type Classifier[L comparable] struct {
	entries []Entry[L]
	index   map[L][]string
}

// New normalizes every keyword once. Keywords that normalize to the empty
// string are dropped, since they would match any input.
func New[L comparable](table Table[L]) *Classifier[L] {
	c := &Classifier[L]{index: make(map[L][]string, len(table))}
	for _, e := range table {
		var kws []string
		for _, k := range e.Keywords {
			if n := Normalize(k); n != "" && !slices.Contains(kws, n) {
				kws = append(kws, n)
			}
		}
		c.entries = append(c.entries, Entry[L]{Label: e.Label, Keywords: kws})
		c.index[e.Label] = append(c.index[e.Label], kws...)
	}
	return c
}

// Normalize trims s and lower-cases it with Turkish casing, so "İ" becomes
// "i" and "I" becomes "ı".
func Normalize(s string) string {
	return cases.Lower(language.Turkish).String(strings.TrimSpace(s))
}

// forms returns the lower-cased readings of text that keywords are matched
// against: Turkish casing first, then language-neutral casing when it
// differs. "EKIP" typed with a plain I reads as "ekıp" in Turkish and
// "ekip" otherwise, and either reading may hold the keyword.
func forms(text string) []string {
	tr := Normalize(text)
	if tr == "" {
		return nil
	}
	und := cases.Lower(language.Und).String(strings.TrimSpace(text))
	if und == tr {
		return []string{tr}
	}
	return []string{tr, und}
}

// Classify returns every label with at least one keyword contained in text,
// in table order. Empty or whitespace-only text yields an empty result.
func (c *Classifier[L]) Classify(text string) []L {
	fs := forms(text)
	if fs == nil {
		return nil
	}
	var out []L
	for _, e := range c.entries {
		if slices.Contains(out, e.Label) {
			continue
		}
		if containsAny(fs, e.Keywords) {
			out = append(out, e.Label)
		}
	}
	return out
}

// Matches reports whether text selects label.
func (c *Classifier[L]) Matches(text string, label L) bool {
	return containsAny(forms(text), c.index[label])
}

// Hits counts how many distinct keywords of label occur in text.
func (c *Classifier[L]) Hits(text string, label L) int {
	fs := forms(text)
	n := 0
	for _, k := range c.index[label] {
		if containsAny(fs, []string{k}) {
			n++
		}
	}
	return n
}

// Labels returns the distinct labels of the table in order.
func (c *Classifier[L]) Labels() []L {
	var out []L
	for _, e := range c.entries {
		if !slices.Contains(out, e.Label) {
			out = append(out, e.Label)
		}
	}
	return out
}

// Keywords returns the normalized keywords for label.
func (c *Classifier[L]) Keywords(label L) []string {
	return slices.Clone(c.index[label])
}

func containsAny(readings []string, keywords []string) bool {
	for _, k := range keywords {
		for _, f := range readings {
			if strings.Contains(f, k) {
				return true
			}
		}
	}
	return false
}
