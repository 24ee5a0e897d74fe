// Package extract assigns skill categories to an activity description. It
// asks the remote classification service first and falls back to the local
// keyword classifier on any failure, so activity creation never blocks on it.
package extract

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/kalambet/skillmap/internal/catalog"
	"github.com/kalambet/skillmap/internal/classifier"
	"github.com/kalambet/skillmap/internal/skill"
)

// DefaultTimeout bounds a remote classification call.
const DefaultTimeout = 10 * time.Second

// Status values reported by Extractor.Status.
const (
	StatusActive   = "active"
	StatusFallback = "fallback"
)

// Remote is the remote classification service.
type Remote interface {
	Analyze(ctx context.Context, text string) ([]string, error)
	Healthy(ctx context.Context) bool
}

// Extractor is safe for concurrent use.
type Extractor struct {
	remote  Remote
	local   *classifier.Classifier[skill.Category]
	cat     *catalog.Catalog
	timeout time.Duration
}

// New creates an Extractor. remote may be nil to classify locally only. A
// non-positive timeout uses DefaultTimeout.
func New(remote Remote, cat *catalog.Catalog, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Extractor{
		remote:  remote,
		local:   classifier.New(cat.SkillTable()),
		cat:     cat,
		timeout: timeout,
	}
}

// Extract returns the categories for an activity. An empty description
// yields the defaults for activityType. Otherwise the remote service is
// asked first. If it fails or returns nothing usable, the local classifier
// runs, the default category is used when that also finds nothing, and the
// type defaults are merged in. The result is in canonical order without
// duplicates and is never empty.
func (e *Extractor) Extract(ctx context.Context, description, activityType string) []skill.Category {
	if classifier.Normalize(description) == "" {
		return skill.Sort(e.cat.TypeDefaults(activityType))
	}

	if cats := e.fromRemote(ctx, description); len(cats) > 0 {
		return cats
	}

	cats := e.local.Classify(description)
	if len(cats) == 0 {
		cats = []skill.Category{e.cat.Defaults.Skill}
	}
	if activityType != "" {
		cats = append(cats, e.cat.TypeDefaults(activityType)...)
	}
	slog.Debug("skills from local classifier", "skills", cats)
	return skill.Sort(cats)
}

func (e *Extractor) fromRemote(ctx context.Context, text string) []skill.Category {
	if e.remote == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	names, err := e.remote.Analyze(ctx, text)
	if err != nil {
		slog.Warn("remote skill extraction failed, using local classifier", "error", err)
		return nil
	}
	var cats []skill.Category
	for _, n := range names {
		if c, ok := skill.Parse(n); ok {
			cats = append(cats, c)
		} else {
			slog.Debug("dropping unknown remote skill", "name", n)
		}
	}
	return skill.Sort(cats)
}

// Classify runs only the local classifier.
func (e *Extractor) Classify(text string) []skill.Category {
	return e.local.Classify(text)
}

// Scores rates how strongly text supports each category: 0.5 base plus 0.2
// per matching keyword, capped at 1.0.
func (e *Extractor) Scores(cats []skill.Category, text string) map[skill.Category]float64 {
	out := make(map[skill.Category]float64, len(cats))
	for _, c := range cats {
		s := 0.5 + 0.2*float64(e.local.Hits(text, c))
		out[c] = math.Round(math.Min(s, 1.0)*100) / 100
	}
	return out
}

// Status reports whether the remote service is reachable.
func (e *Extractor) Status(ctx context.Context) string {
	if e.remote != nil && e.remote.Healthy(ctx) {
		return StatusActive
	}
	return StatusFallback
}
