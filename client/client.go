// Package client is the typed Go client for the aniwatch backend API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrNotJSON is returned when a response body cannot be parsed as JSON.
var ErrNotJSON = errors.New("server did not return JSON")

// APIError is a JSON error payload returned by the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// User mirrors the backend account payload.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Entry mirrors one backend watchlist row.
type Entry struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Title  string `json:"title"`
	Status string `json:"status"`
	Rating int    `json:"rating"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userEnvelope struct {
	User User `json:"user"`
}

type entryPayload struct {
	UserID int64  `json:"user_id,omitempty"`
	Title  string `json:"title"`
	Status string `json:"status"`
	Rating int    `json:"rating"`
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, email, password string) (*User, error) {
	var out userEnvelope
	err := c.do(ctx, http.MethodPost, "/users/register", credentials{email, password}, &out)
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Login validates credentials and returns the account.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var out userEnvelope
	err := c.do(ctx, http.MethodPost, "/users/login", credentials{email, password}, &out)
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Watchlist returns all entries of an account, ordered by id ascending.
func (c *Client) Watchlist(ctx context.Context, userID int64) ([]Entry, error) {
	var out []Entry
	path := fmt.Sprintf("/watchlist/%d", userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Add inserts a new entry and returns the server-assigned row.
func (c *Client) Add(ctx context.Context, userID int64, title, status string, rating int) (*Entry, error) {
	var out Entry
	payload := entryPayload{UserID: userID, Title: title, Status: status, Rating: rating}
	if err := c.do(ctx, http.MethodPost, "/watchlist", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update rewrites title, status and rating of an entry.
func (c *Client) Update(ctx context.Context, entryID int64, title, status string, rating int) (*Entry, error) {
	var out Entry
	payload := entryPayload{Title: title, Status: status, Rating: rating}
	path := fmt.Sprintf("/watchlist/%d", entryID)
	if err := c.do(ctx, http.MethodPut, path, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes an entry.
func (c *Client) Delete(ctx context.Context, entryID int64) error {
	path := fmt.Sprintf("/watchlist/%d", entryID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do sends one JSON request. Non-2xx responses become an *APIError
// carrying the server message, bodies that are not JSON become
// ErrNotJSON, and transport failures are returned wrapped.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &payload) != nil {
			return ErrNotJSON
		}
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return ErrNotJSON
	}
	return nil
}
