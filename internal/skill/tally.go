package skill

import "slices"

// Tagged is anything that carries assigned categories, typically an activity.
type Tagged interface {
	Skills() []Category
}

// Counts maps each category to how many activities carry it. Categories
// with zero occurrences are absent.
type Counts map[Category]int

// Count is a single ranked entry.
type Count struct {
	Category Category `json:"skill"`
	Label    string   `json:"label"`
	Count    int      `json:"count"`
}

// Tally folds the categories of items into per-category counts. The result
// does not depend on the order of items.
func Tally[T Tagged](items []T) Counts {
	c := make(Counts)
	for _, it := range items {
		for _, cat := range it.Skills() {
			if cat.Valid() {
				c[cat]++
			}
		}
	}
	return c
}

// Add increments cat by n, ignoring categories outside the enumeration.
func (c Counts) Add(cat Category, n int) {
	if cat.Valid() && n > 0 {
		c[cat] += n
	}
}

// Rank orders present categories by count descending. Equal counts keep
// canonical enumeration order.
func (c Counts) Rank() []Count {
	out := make([]Count, 0, len(c))
	for _, cat := range canonical {
		if n := c[cat]; n > 0 {
			out = append(out, Count{Category: cat, Label: cat.Label(), Count: n})
		}
	}
	slices.SortStableFunc(out, func(a, b Count) int { return b.Count - a.Count })
	return out
}

// Ranked returns just the categories from Rank.
func (c Counts) Ranked() []Category {
	r := c.Rank()
	out := make([]Category, len(r))
	for i, e := range r {
		out[i] = e.Category
	}
	return out
}

// TopN returns the first n ranked entries.
func (c Counts) TopN(n int) []Count {
	r := c.Rank()
	if n < 0 {
		n = 0
	}
	return r[:min(n, len(r))]
}

// BottomN returns the last n ranked entries, still in ranked order. It may
// overlap TopN when fewer than 2n categories are present.
func (c Counts) BottomN(n int) []Count {
	r := c.Rank()
	if n < 0 {
		n = 0
	}
	return r[len(r)-min(n, len(r)):]
}

// Distinct is the number of categories with at least one occurrence.
func (c Counts) Distinct() int {
	n := 0
	for _, v := range c {
		if v > 0 {
			n++
		}
	}
	return n
}

// Levels maps each present category to its level band.
func (c Counts) Levels() map[Category]Level {
	out := make(map[Category]Level, len(c))
	for cat, n := range c {
		if n > 0 {
			out[cat] = LevelFor(n)
		}
	}
	return out
}

// Missing returns the enumeration minus every category present in c, in
// canonical order.
func (c Counts) Missing() []Category {
	var out []Category
	for _, cat := range canonical {
		if c[cat] == 0 {
			out = append(out, cat)
		}
	}
	return out
}
