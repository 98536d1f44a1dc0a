package sqlite

import (
	"context"

	"github.com/aniwatch/aniwatch-server/database/model"
)

const entryColumns = `id, user_id, title, status, rating`

// List returns all watchlist entries of an account in insertion order.
func (s *SqliteRepo) List(ctx context.Context, userID int64) ([]model.Entry, error) {
	entries := []model.Entry{}
	const query = `SELECT ` + entryColumns + ` FROM watchlist WHERE user_id=? ORDER BY id ASC`
	if err := s.dbReadHandle.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, err
	}
	return entries, nil
}

// Get retrieves a single entry by its ID.
func (s *SqliteRepo) Get(ctx context.Context, entryID int64) (*model.Entry, error) {
	var entry model.Entry
	const query = `SELECT ` + entryColumns + ` FROM watchlist WHERE id=? LIMIT 1`
	if err := s.dbReadHandle.GetContext(ctx, &entry, query, entryID); err != nil {
		return nil, model.ErrNotFound
	}
	return &entry, nil
}

// Insert adds a new entry and returns it with the store-assigned ID.
func (s *SqliteRepo) Insert(ctx context.Context, entry *model.Entry) (*model.Entry, error) {
	const query = `INSERT INTO watchlist (user_id, title, status, rating) VALUES (?, ?, ?, ?)`
	result, err := s.dbWriteHandle.ExecContext(ctx, query,
		entry.UserID,
		entry.Title,
		entry.Status,
		entry.Rating)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrDuplicateTitle
		}
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	inserted := *entry
	inserted.ID = id
	return &inserted, nil
}

// Update rewrites title, status and rating of an entry. Owner and ID
// are immutable.
func (s *SqliteRepo) Update(ctx context.Context, entryID int64, title string, status model.Status, rating int) (*model.Entry, error) {
	const query = `UPDATE watchlist SET title=?, status=?, rating=? WHERE id=?`
	result, err := s.dbWriteHandle.ExecContext(ctx, query, title, status, rating, entryID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrDuplicateTitle
		}
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, model.ErrNotFound
	}
	return s.Get(ctx, entryID)
}

// Delete removes an entry by its ID.
func (s *SqliteRepo) Delete(ctx context.Context, entryID int64) error {
	const query = `DELETE FROM watchlist WHERE id=?`
	result, err := s.dbWriteHandle.ExecContext(ctx, query, entryID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return model.ErrNotFound
	}
	return nil
}
