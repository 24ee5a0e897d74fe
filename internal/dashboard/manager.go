// Package dashboard assembles and caches the admin statistics view.
package dashboard

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kalambet/skillmap/internal/skill"
	"github.com/kalambet/skillmap/internal/storage"
)

const (
	recentUsers      = 5
	recentActivities = 10
	topSkills        = 10
	trendMonths      = 6
)

// StatsStore defines the storage queries the Manager needs.
// Implemented by storage.Store.
type StatsStore interface {
	CountUsers(role storage.Role) (int, error)
	RecentUsers(limit int) ([]storage.User, error)
	CountActivities() (int, error)
	ActivitiesByType() ([]storage.TypeCount, error)
	CategoryCounts() (skill.Counts, error)
	RecentActivities(limit int) ([]storage.ActivityWithUser, error)
	MonthlyTrend(since time.Time) ([]storage.MonthCount, error)
	UserDistribution() ([]storage.Bucket, error)
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Manager provides cached access to the dashboard.
type Manager struct {
	store StatsStore
	clock Clock
	ttl   time.Duration

	mu       sync.RWMutex
	cached   *Dashboard
	cachedAt time.Time
}

// NewManager creates a Manager with a 60-second cache TTL.
func NewManager(store StatsStore) *Manager {
	return NewManagerWithClock(store, realClock{}, 60*time.Second)
}

// NewManagerWithClock creates a Manager with a custom clock (for testing).
func NewManagerWithClock(store StatsStore, clock Clock, ttl time.Duration) *Manager {
	return &Manager{store: store, clock: clock, ttl: ttl}
}

// Get returns the dashboard from cache, or rebuilds it when the cache is
// empty or older than the TTL.
func (m *Manager) Get() (Dashboard, error) {
	m.mu.RLock()
	if m.cached != nil && m.clock.Now().Before(m.cachedAt.Add(m.ttl)) {
		d := deepCopy(m.cached)
		m.mu.RUnlock()
		return d, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock.
	if m.cached != nil && m.clock.Now().Before(m.cachedAt.Add(m.ttl)) {
		return deepCopy(m.cached), nil
	}

	d, err := m.build()
	if err != nil {
		return Dashboard{}, err
	}
	m.cached = &d
	m.cachedAt = d.GeneratedAt
	return deepCopy(&d), nil
}

// Invalidate drops the cached dashboard. Call it after writes that change
// the statistics.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.cached = nil
	m.mu.Unlock()
}

func (m *Manager) build() (Dashboard, error) {
	now := m.clock.Now().UTC()
	var d Dashboard
	var counts skill.Counts

	var g errgroup.Group
	g.Go(func() (err error) {
		d.Users.Total, err = m.store.CountUsers(storage.RoleUser)
		return wrap("counting users", err)
	})
	g.Go(func() (err error) {
		d.Users.Admins, err = m.store.CountUsers(storage.RoleAdmin)
		return wrap("counting admins", err)
	})
	g.Go(func() (err error) {
		d.Users.Recent, err = m.store.RecentUsers(recentUsers)
		return wrap("loading recent users", err)
	})
	g.Go(func() (err error) {
		d.Activities.Total, err = m.store.CountActivities()
		return wrap("counting activities", err)
	})
	g.Go(func() (err error) {
		d.Activities.ByType, err = m.store.ActivitiesByType()
		return wrap("counting activity types", err)
	})
	g.Go(func() (err error) {
		counts, err = m.store.CategoryCounts()
		return wrap("counting skills", err)
	})
	g.Go(func() (err error) {
		d.RecentActivities, err = m.store.RecentActivities(recentActivities)
		return wrap("loading recent activities", err)
	})
	g.Go(func() (err error) {
		d.MonthlyTrend, err = m.store.MonthlyTrend(trendStart(now))
		return wrap("loading monthly trend", err)
	})
	g.Go(func() (err error) {
		d.UserDistribution, err = m.store.UserDistribution()
		return wrap("loading user distribution", err)
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	d.TopSkills = counts.TopN(topSkills)
	d.GeneratedAt = now
	slog.Debug("dashboard rebuilt", "users", d.Users.Total, "activities", d.Activities.Total)
	return d, nil
}

// trendStart is the first day of the month trendMonths-1 months before now,
// so the trend covers the current month and the five before it.
func trendStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()-(trendMonths-1), 1, 0, 0, 0, 0, time.UTC)
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}
