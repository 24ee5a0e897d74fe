package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kalambet/skillmap/internal/skill"
)

const activityColumns = `id, user_id, title, description, type, date, duration, categories, created_at`

// SaveActivity inserts a new activity. Categories are stored as a JSON array
// of category keys.
func (s *Store) SaveActivity(a Activity) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	cats := a.Categories
	if cats == nil {
		cats = []skill.Category{}
	}
	encoded, err := json.Marshal(cats)
	if err != nil {
		return fmt.Errorf("encoding categories: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO activities (`+activityColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Title, a.Description, a.Type,
		formatTime(a.Date), a.Duration, string(encoded), formatTime(a.CreatedAt),
	)
	return err
}

// ListActivitiesByUser returns a user's activities, most recent date first.
func (s *Store) ListActivitiesByUser(userID string) ([]Activity, error) {
	rows, err := s.db.Query(`SELECT `+activityColumns+` FROM activities
		WHERE user_id = ? ORDER BY date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) CountActivitiesByUser(userID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM activities WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}

func scanActivity(row rowScanner, extra ...any) (Activity, error) {
	var a Activity
	var date, cats, createdAt string
	dest := append([]any{&a.ID, &a.UserID, &a.Title, &a.Description, &a.Type,
		&date, &a.Duration, &cats, &createdAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		if err == sql.ErrNoRows {
			return Activity{}, ErrNotFound
		}
		return Activity{}, err
	}
	var err error
	if a.Date, err = parseTime(date); err != nil {
		return Activity{}, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return Activity{}, err
	}
	if err := json.Unmarshal([]byte(cats), &a.Categories); err != nil {
		return Activity{}, fmt.Errorf("decoding categories for activity %s: %w", a.ID, err)
	}
	return a, nil
}
