package sqlite

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/aniwatch/aniwatch-server/database/model"
)

// Register inserts a new account. The password is stored bcrypt-hashed.
func (s *SqliteRepo) Register(ctx context.Context, email, password string) (*model.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	const query = `INSERT INTO users (email, password) VALUES (?, ?)`
	result, err := s.dbWriteHandle.ExecContext(ctx, query, email, string(hashedPassword))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrDuplicateEmail
		}
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.User{
		ID:    id,
		Email: email,
	}, nil
}

// Validate checks if the account exists and the password is correct.
func (s *SqliteRepo) Validate(ctx context.Context, email, password string) (*model.User, error) {
	var user model.User
	const query = `SELECT id, email, password, created FROM users WHERE email=? LIMIT 1`
	if err := s.dbReadHandle.GetContext(ctx, &user, query, email); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	// No need to return hashed pw
	user.Password = ""
	return &user, nil
}

// GetByID retrieves an account from the database by its ID.
func (s *SqliteRepo) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	const query = `SELECT id, email, password, created FROM users WHERE id=? LIMIT 1`
	if err := s.dbReadHandle.GetContext(ctx, &user, query, userID); err != nil {
		return nil, model.ErrNotFound
	}
	user.Password = ""
	return &user, nil
}
