package sqlite

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/aniwatch/aniwatch-server/database/model"
)

type Options struct {
	Filename string
}

// SqliteRepo implements the user and watchlist repositories on sqlite.
type SqliteRepo struct {
	// Read db handle
	dbReadHandle *sqlx.DB
	// Handle specifically for writes
	dbWriteHandle *sqlx.DB
}

// New initializes a sqlite database and creates schema if necessary.
func New(o *Options) (*SqliteRepo, error) {
	if o == nil || o.Filename == "" {
		return nil, model.ErrNoConfiguration
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", o.Filename)

	dbHandle, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	dbHandle.SetMaxOpenConns(max(4, runtime.NumCPU()))

	writeDB, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite needs to have a single writer
	writeDB.SetMaxOpenConns(1)

	if err := dbInitSchema(writeDB); err != nil {
		return nil, err
	}

	return &SqliteRepo{
		dbReadHandle:  dbHandle,
		dbWriteHandle: writeDB,
	}, nil
}

// Close closes both database handles.
func (s *SqliteRepo) Close() error {
	rerr := s.dbReadHandle.Close()
	werr := s.dbWriteHandle.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}

// isUniqueViolation reports whether err is a sqlite unique constraint error.
func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique
}
