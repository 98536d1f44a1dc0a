package sqlite

import (
	"log"

	"github.com/jmoiron/sqlx"
)

func dbInitSchema(d *sqlx.DB) error {
	schema := []string{
		// This is needed to improve concurrent reads and writes.
		`PRAGMA journal_mode = WAL;`,

		`CREATE TABLE IF NOT EXISTS users (
id INTEGER PRIMARY KEY AUTOINCREMENT,
email TEXT NOT NULL,
password TEXT NOT NULL,
created DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP);`,

		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_idx ON users (email);`,

		// The unique index on (user_id, lower(title)) enforces the
		// one-title-per-account rule in the store itself, so two
		// concurrent adds cannot both slip past a pre-check.
		`CREATE TABLE IF NOT EXISTS watchlist (
id INTEGER PRIMARY KEY AUTOINCREMENT,
user_id INTEGER NOT NULL,
title TEXT NOT NULL,
status TEXT NOT NULL CHECK (status IN ('Watching', 'Completed', 'Plan to Watch')),
rating INTEGER NOT NULL DEFAULT 0 CHECK (rating BETWEEN 0 AND 10),
FOREIGN KEY (user_id) REFERENCES users(id));`,

		`CREATE UNIQUE INDEX IF NOT EXISTS watchlist_user_title_idx ON watchlist (user_id, lower(title));`,
	}

	for _, query := range schema {
		if _, err := d.Exec(query); err != nil {
			log.Printf("dbInitSchema error: %s\n", err)
			return err
		}
	}
	return nil
}
