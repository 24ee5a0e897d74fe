package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const userColumns = `id, name, email, password_hash, role, created_at, last_login`

func (s *Store) CreateUser(u User) error {
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, strings.ToLower(strings.TrimSpace(u.Email)), u.PasswordHash, string(u.Role), formatTime(u.CreatedAt),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
		return ErrDuplicateEmail
	}
	return err
}

func (s *Store) GetUser(id string) (User, error) {
	return scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (s *Store) GetUserByEmail(email string) (User, error) {
	return scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email))))
}

// TouchLastLogin records a successful login.
func (s *Store) TouchLastLogin(id string, at time.Time) error {
	res, err := s.db.Exec(`UPDATE users SET last_login = ? WHERE id = ?`, formatTime(at), id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// CountUsers counts users with role, or all users when role is empty.
func (s *Store) CountUsers(role Role) (int, error) {
	var n int
	var err error
	if role == "" {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n)
	} else {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM users WHERE role = ?`, string(role)).Scan(&n)
	}
	return n, err
}

// RecentUsers returns the newest users first.
func (s *Store) RecentUsers(limit int) ([]User, error) {
	rows, err := s.db.Query(`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// ListUsers pages through users, newest first. search filters by a
// case-insensitive substring of name or email. page starts at 1.
func (s *Store) ListUsers(page, limit int, search string) (UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	where := ""
	var args []any
	if q := strings.TrimSpace(search); q != "" {
		where = ` WHERE name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\'`
		pattern := "%" + escapeLike(q) + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return UserPage{}, fmt.Errorf("counting users: %w", err)
	}

	rows, err := s.db.Query(`SELECT `+userColumns+` FROM users`+where+
		` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, limit, (page-1)*limit)...)
	if err != nil {
		return UserPage{}, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users, err := collectUsers(rows)
	if err != nil {
		return UserPage{}, err
	}
	if users == nil {
		users = []User{}
	}
	return UserPage{Users: users, Total: total, Page: page, Limit: limit}, nil
}

// DeleteUser removes a user and every activity they own.
func (s *Store) DeleteUser(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM activities WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("deleting activities: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if err := expectOne(res); err != nil {
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	var role, createdAt string
	var lastLogin sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &createdAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.Role = Role(role)
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return User{}, err
	}
	if lastLogin.Valid {
		t, err := parseTime(lastLogin.String)
		if err != nil {
			return User{}, err
		}
		u.LastLogin = &t
	}
	return u, nil
}

func collectUsers(rows *sql.Rows) ([]User, error) {
	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
