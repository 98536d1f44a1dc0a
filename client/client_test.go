package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "a@x.com", creds.Email)
		assert.Equal(t, "secret", creds.Password)

		json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{"id": 1, "email": "a@x.com"},
		})
	}))
	defer server.Close()

	c := New(server.URL, nil)
	user, err := c.Register(context.Background(), "a@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "a@x.com", user.Email)
}

func TestLoginInvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	}))
	defer server.Close()

	c := New(server.URL, nil)
	_, err := c.Login(context.Background(), "a@x.com", "wrong")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.Equal(t, "Invalid credentials", apiErr.Error())
}

func TestWatchlist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/watchlist/7", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "user_id": 7, "title": "Naruto", "status": "Watching", "rating": 8},
			{"id": 2, "user_id": 7, "title": "Bleach", "status": "Plan to Watch", "rating": 0},
		})
	}))
	defer server.Close()

	c := New(server.URL, nil)
	entries, err := c.Watchlist(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Naruto", entries[0].Title)
	assert.Equal(t, "Plan to Watch", entries[1].Status)
}

func TestAddReturnsServerRow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/watchlist", r.URL.Path)

		var payload struct {
			UserID int64  `json:"user_id"`
			Title  string `json:"title"`
			Status string `json:"status"`
			Rating int    `json:"rating"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, int64(7), payload.UserID)

		json.NewEncoder(w).Encode(map[string]any{
			"id": 42, "user_id": 7, "title": payload.Title,
			"status": payload.Status, "rating": payload.Rating,
		})
	}))
	defer server.Close()

	c := New(server.URL, nil)
	entry, err := c.Add(context.Background(), 7, "Naruto", "Watching", 8)
	require.NoError(t, err)
	assert.Equal(t, int64(42), entry.ID)
	assert.Equal(t, "Naruto", entry.Title)
}

func TestUpdateOmitsUserID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/watchlist/42", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.NotContains(t, payload, "user_id")

		json.NewEncoder(w).Encode(map[string]any{
			"id": 42, "user_id": 7, "title": "Naruto", "status": "Completed", "rating": 9,
		})
	}))
	defer server.Close()

	c := New(server.URL, nil)
	entry, err := c.Update(context.Background(), 42, "Naruto", "Completed", 9)
	require.NoError(t, err)
	assert.Equal(t, "Completed", entry.Status)
}

func TestDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/watchlist/42", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"message": "Anime deleted."})
	}))
	defer server.Close()

	c := New(server.URL, nil)
	assert.NoError(t, c.Delete(context.Background(), 42))
}

func TestErrorBodyNotJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>502 Bad Gateway</html>"))
	}))
	defer server.Close()

	c := New(server.URL, nil)
	_, err := c.Watchlist(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotJSON)
}

func TestSuccessBodyNotJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := New(server.URL, nil)
	_, err := c.Watchlist(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotJSON)
}

func TestTransportErrorIsWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := New(server.URL, nil)
	_, err := c.Watchlist(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}
