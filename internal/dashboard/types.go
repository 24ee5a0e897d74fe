package dashboard

import (
	"time"

	"github.com/kalambet/skillmap/internal/skill"
	"github.com/kalambet/skillmap/internal/storage"
)

// Dashboard is the admin overview of the whole platform.
type Dashboard struct {
	Users            UserStats                  `json:"users"`
	Activities       ActivityStats              `json:"activities"`
	TopSkills        []skill.Count              `json:"top_skills"`
	RecentActivities []storage.ActivityWithUser `json:"recent_activities"`
	MonthlyTrend     []storage.MonthCount       `json:"monthly_trend"`
	UserDistribution []storage.Bucket           `json:"user_distribution"`
	GeneratedAt      time.Time                  `json:"generated_at"`
}

type UserStats struct {
	Total  int            `json:"total"`
	Admins int            `json:"admins"`
	Recent []storage.User `json:"recent"`
}

type ActivityStats struct {
	Total  int                 `json:"total"`
	ByType []storage.TypeCount `json:"by_type"`
}

func deepCopy(d *Dashboard) Dashboard {
	cp := *d
	cp.Users.Recent = append([]storage.User(nil), d.Users.Recent...)
	cp.Activities.ByType = append([]storage.TypeCount(nil), d.Activities.ByType...)
	cp.TopSkills = append([]skill.Count(nil), d.TopSkills...)
	cp.RecentActivities = make([]storage.ActivityWithUser, len(d.RecentActivities))
	for i, a := range d.RecentActivities {
		a.Categories = append([]skill.Category(nil), a.Categories...)
		cp.RecentActivities[i] = a
	}
	cp.MonthlyTrend = append([]storage.MonthCount(nil), d.MonthlyTrend...)
	cp.UserDistribution = append([]storage.Bucket(nil), d.UserDistribution...)
	return cp
}
