package model

import (
	"errors"
	"time"
)

var (
	ErrNoConfiguration    = errors.New("database filename not set")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateTitle     = errors.New("title already on watchlist")
)

// Status is the watch status of an entry.
type Status string

const (
	StatusWatching    Status = "Watching"
	StatusCompleted   Status = "Completed"
	StatusPlanToWatch Status = "Plan to Watch"
)

// Statuses lists every valid status, in display order.
func Statuses() []Status {
	return []Status{StatusWatching, StatusCompleted, StatusPlanToWatch}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusWatching, StatusCompleted, StatusPlanToWatch:
		return true
	}
	return false
}

// User represents a registered account.
type User struct {
	// ID is the store-assigned identifier.
	ID int64 `db:"id" json:"id"`
	// Email is unique across accounts.
	Email string `db:"email" json:"email"`
	// Password holds the bcrypt hash, never serialized.
	Password string `db:"password" json:"-"`
	// Created is the time the account was registered.
	Created time.Time `db:"created" json:"-"`
}

// Entry is one tracked anime title, owned by exactly one account.
type Entry struct {
	ID     int64  `db:"id" json:"id"`
	UserID int64  `db:"user_id" json:"user_id"`
	Title  string `db:"title" json:"title"`
	Status Status `db:"status" json:"status"`
	// Rating is 0-10, 0 meaning unrated.
	Rating int `db:"rating" json:"rating"`
}
