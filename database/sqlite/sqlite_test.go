package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniwatch/aniwatch-server/database/model"
)

func newTestRepo(t *testing.T) *SqliteRepo {
	t.Helper()
	repo, err := New(&Options{
		Filename: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func registerTestUser(t *testing.T, repo *SqliteRepo, email string) *model.User {
	t.Helper()
	user, err := repo.Register(context.Background(), email, "secret")
	require.NoError(t, err)
	return user
}

func TestNewRequiresFilename(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, model.ErrNoConfiguration)

	_, err = New(&Options{})
	assert.ErrorIs(t, err, model.ErrNoConfiguration)
}

func TestRegister(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user, err := repo.Register(ctx, "a@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Empty(t, user.Password)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	registerTestUser(t, repo, "a@x.com")

	_, err := repo.Register(ctx, "a@x.com", "othersecret")
	assert.ErrorIs(t, err, model.ErrDuplicateEmail)
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := registerTestUser(t, repo, "a@x.com")

	var stored string
	err := repo.dbReadHandle.GetContext(ctx, &stored,
		"SELECT password FROM users WHERE id=?", user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret", stored)
	assert.NotEmpty(t, stored)
}

func TestValidate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	registered := registerTestUser(t, repo, "a@x.com")

	user, err := repo.Validate(ctx, "a@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Empty(t, user.Password)
}

func TestValidateWrongPassword(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	registerTestUser(t, repo, "a@x.com")

	_, err := repo.Validate(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestValidateUnknownEmail(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Validate(context.Background(), "nobody@x.com", "secret")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestGetByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	registered := registerTestUser(t, repo, "a@x.com")

	user, err := repo.GetByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestInsertAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := registerTestUser(t, repo, "a@x.com")

	first, err := repo.Insert(ctx, &model.Entry{
		UserID: user.ID,
		Title:  "Naruto",
		Status: model.StatusWatching,
		Rating: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	second, err := repo.Insert(ctx, &model.Entry{
		UserID: user.ID,
		Title:  "Bleach",
		Status: model.StatusPlanToWatch,
	})
	require.NoError(t, err)

	entries, err := repo.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, second.ID, entries[1].ID)
	assert.Equal(t, "Naruto", entries[0].Title)
	assert.Equal(t, model.StatusWatching, entries[0].Status)
	assert.Equal(t, 8, entries[0].Rating)
}

func TestListEmpty(t *testing.T) {
	repo := newTestRepo(t)

	user := registerTestUser(t, repo, "a@x.com")

	entries, err := repo.List(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestInsertDuplicateTitle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := registerTestUser(t, repo, "a@x.com")

	_, err := repo.Insert(ctx, &model.Entry{
		UserID: user.ID,
		Title:  "Bleach",
		Status: model.StatusWatching,
	})
	require.NoError(t, err)

	// Duplicates are case-insensitive per account.
	_, err = repo.Insert(ctx, &model.Entry{
		UserID: user.ID,
		Title:  "bleach",
		Status: model.StatusCompleted,
	})
	assert.ErrorIs(t, err, model.ErrDuplicateTitle)
}

func TestInsertSameTitleDifferentAccounts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	alice := registerTestUser(t, repo, "alice@x.com")
	bob := registerTestUser(t, repo, "bob@x.com")

	_, err := repo.Insert(ctx, &model.Entry{
		UserID: alice.ID,
		Title:  "Bleach",
		Status: model.StatusWatching,
	})
	require.NoError(t, err)

	_, err = repo.Insert(ctx, &model.Entry{
		UserID: bob.ID,
		Title:  "Bleach",
		Status: model.StatusPlanToWatch,
	})
	assert.NoError(t, err)
}

func TestUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := registerTestUser(t, repo, "a@x.com")
	entry, err := repo.Insert(ctx, &model.Entry{
		UserID: user.ID,
		Title:  "Naruto",
		Status: model.StatusWatching,
	})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, entry.ID, "Naruto Shippuden", model.StatusCompleted, 9)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, updated.ID)
	assert.Equal(t, "Naruto Shippuden", updated.Title)
	assert.Equal(t, model.StatusCompleted, updated.Status)
	assert.Equal(t, 9, updated.Rating)
}

func TestUpdateNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Update(context.Background(), 999, "Naruto", model.StatusWatching, 5)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdateToDuplicateTitle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := registerTestUser(t, repo, "a@x.com")
	_, err := repo.Insert(ctx, &model.Entry{
		UserID: user.ID,
		Title:  "Naruto",
		Status: model.StatusWatching,
	})
	require.NoError(t, err)
	entry, err := repo.Insert(ctx, &model.Entry{
		UserID: user.ID,
		Title:  "Bleach",
		Status: model.StatusWatching,
	})
	require.NoError(t, err)

	_, err = repo.Update(ctx, entry.ID, "naruto", model.StatusWatching, 0)
	assert.ErrorIs(t, err, model.ErrDuplicateTitle)

	// The losing update must not have changed the row.
	kept, err := repo.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bleach", kept.Title)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := registerTestUser(t, repo, "a@x.com")
	entry, err := repo.Insert(ctx, &model.Entry{
		UserID: user.ID,
		Title:  "Naruto",
		Status: model.StatusWatching,
	})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, entry.ID))

	_, err = repo.Get(ctx, entry.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteNotFound(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Delete(context.Background(), 999)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeletedTitleCanBeReadded(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := registerTestUser(t, repo, "a@x.com")
	entry, err := repo.Insert(ctx, &model.Entry{
		UserID: user.ID,
		Title:  "Naruto",
		Status: model.StatusWatching,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, entry.ID))

	_, err = repo.Insert(ctx, &model.Entry{
		UserID: user.ID,
		Title:  "Naruto",
		Status: model.StatusPlanToWatch,
	})
	assert.NoError(t, err)
}
