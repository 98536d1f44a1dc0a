package database

import (
	"context"

	"github.com/aniwatch/aniwatch-server/database/model"
	"github.com/aniwatch/aniwatch-server/database/sqlite"
)

type (
	Options struct {
		Filename string
	}

	// Repository bundles the per-entity repositories backed by one store.
	Repository struct {
		Users     UserRepo
		Watchlist WatchlistRepo
		store     *sqlite.SqliteRepo
	}

	// UserRepo defines account operations.
	UserRepo interface {
		// Register inserts a new account with a hashed password.
		Register(ctx context.Context, email, password string) (*model.User, error)
		// Validate checks the email/password pair and returns the account.
		Validate(ctx context.Context, email, password string) (*model.User, error)
		// GetByID retrieves an account by its identifier.
		GetByID(ctx context.Context, userID int64) (*model.User, error)
	}

	// WatchlistRepo defines watchlist entry operations.
	WatchlistRepo interface {
		// List returns all entries of one account, ordered by id ascending.
		List(ctx context.Context, userID int64) ([]model.Entry, error)
		// Get retrieves a single entry by its identifier.
		Get(ctx context.Context, entryID int64) (*model.Entry, error)
		// Insert adds an entry and returns it with the store-assigned id.
		Insert(ctx context.Context, entry *model.Entry) (*model.Entry, error)
		// Update rewrites title, status and rating of an existing entry.
		Update(ctx context.Context, entryID int64, title string, status model.Status, rating int) (*model.Entry, error)
		// Delete removes an entry.
		Delete(ctx context.Context, entryID int64) error
	}
)

// New opens the sqlite store and returns the repository bundle.
func New(o *Options) (*Repository, error) {
	if o == nil || o.Filename == "" {
		return nil, model.ErrNoConfiguration
	}
	store, err := sqlite.New(&sqlite.Options{
		Filename: o.Filename,
	})
	if err != nil {
		return nil, err
	}
	return &Repository{
		Users:     store,
		Watchlist: store,
		store:     store,
	}, nil
}

// Close releases the underlying database handles.
func (r *Repository) Close() error {
	return r.store.Close()
}
