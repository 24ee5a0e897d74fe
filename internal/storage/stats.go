package storage

import (
	"fmt"
	"time"

	"github.com/kalambet/skillmap/internal/skill"
)

func (s *Store) CountActivities() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM activities`).Scan(&n)
	return n, err
}

// ActivitiesByType counts activities per type, largest first.
func (s *Store) ActivitiesByType() ([]TypeCount, error) {
	rows, err := s.db.Query(`SELECT type, COUNT(*) AS n FROM activities
		GROUP BY type ORDER BY n DESC, type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TypeCount{}
	for rows.Next() {
		var tc TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// CategoryCounts counts how many activities, across all users, carry each
// category. Unknown keys in stored rows are ignored.
func (s *Store) CategoryCounts() (skill.Counts, error) {
	rows, err := s.db.Query(`SELECT j.value, COUNT(*) FROM activities, json_each(activities.categories) AS j
		GROUP BY j.value`)
	if err != nil {
		return nil, fmt.Errorf("counting categories: %w", err)
	}
	defer rows.Close()

	counts := skill.Counts{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		if c := skill.Category(key); c.Valid() {
			counts[c] += n
		}
	}
	return counts, rows.Err()
}

// RecentActivities returns the newest activities across all users together
// with each owner's name and email.
func (s *Store) RecentActivities(limit int) ([]ActivityWithUser, error) {
	rows, err := s.db.Query(`
		SELECT a.id, a.user_id, a.title, a.description, a.type, a.date, a.duration, a.categories, a.created_at,
		       u.name, u.email
		FROM activities a JOIN users u ON u.id = a.user_id
		ORDER BY a.created_at DESC, a.id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ActivityWithUser{}
	for rows.Next() {
		var aw ActivityWithUser
		a, err := scanActivity(rows, &aw.UserName, &aw.UserEmail)
		if err != nil {
			return nil, err
		}
		aw.Activity = a
		out = append(out, aw)
	}
	return out, rows.Err()
}

// MonthlyTrend counts activities created at or after since, per month in
// ascending order. Months without activities are omitted.
func (s *Store) MonthlyTrend(since time.Time) ([]MonthCount, error) {
	rows, err := s.db.Query(`SELECT substr(created_at, 1, 7) AS month, COUNT(*) FROM activities
		WHERE created_at >= ? GROUP BY month ORDER BY month`, formatTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MonthCount{}
	for rows.Next() {
		var mc MonthCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, err
		}
		out = append(out, mc)
	}
	return out, rows.Err()
}

// UserDistribution groups regular users by how many activities they have
// logged. Users with no activities land in the zero bucket.
func (s *Store) UserDistribution() ([]Bucket, error) {
	rows, err := s.db.Query(`
		SELECT n, COUNT(*) FROM (
			SELECT u.id, COUNT(a.id) AS n
			FROM users u LEFT JOIN activities a ON a.user_id = u.id
			WHERE u.role = ?
			GROUP BY u.id
		) GROUP BY n ORDER BY n`, string(RoleUser))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Bucket{}
	for rows.Next() {
		var b Bucket
		if err := rows.Scan(&b.Activities, &b.Users); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
