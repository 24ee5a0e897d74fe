package storage

import (
	"errors"
	"time"

	"github.com/kalambet/skillmap/internal/skill"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when registering an email that is taken.
var ErrDuplicateEmail = errors.New("email already registered")

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// Activity is one logged volunteering activity. Categories are assigned
// when the activity is created and never recomputed.
type Activity struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Type        string           `json:"type"`
	Date        time.Time        `json:"date"`
	Duration    int              `json:"duration"` // minutes
	Categories  []skill.Category `json:"skills"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Skills lets activities feed skill.Tally.
func (a Activity) Skills() []skill.Category { return a.Categories }

// ActivityWithUser is an activity joined with its owner's contact fields.
type ActivityWithUser struct {
	Activity
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// UserPage is one page of a user listing.
type UserPage struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

// TypeCount is the number of activities of one type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// MonthCount is the number of activities created in a month ("2026-04").
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Bucket says how many users have logged exactly Activities activities.
type Bucket struct {
	Activities int `json:"activities"`
	Users      int `json:"users"`
}
