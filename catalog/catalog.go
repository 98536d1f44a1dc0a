// Package catalog is a read-only client for the Jikan anime catalog API.
//
// Response types based on https://docs.api.jikan.moe/
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.jikan.moe/v4"

// Jikan rejects clients above ~3 requests per second.
const requestsPerSecond = 3

var ErrEmptyQuery = errors.New("search query is empty")

type Options struct {
	BaseURL string
	Client  *http.Client
}

// Client issues listing and search queries against the catalog.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func New(o *Options) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(requestsPerSecond, 1),
	}
	if o != nil && o.BaseURL != "" {
		c.baseURL = strings.TrimSuffix(o.BaseURL, "/")
	}
	if o != nil && o.Client != nil {
		c.httpClient = o.Client
	}
	return c
}

// Anime is one catalog record. Never persisted locally.
type Anime struct {
	ID           int64   `json:"mal_id"`
	Title        string  `json:"title"`
	TitleEnglish string  `json:"title_english"`
	Score        float64 `json:"score"`
	Images       struct {
		JPG struct {
			ImageURL string `json:"image_url"`
		} `json:"jpg"`
	} `json:"images"`
}

// DisplayTitle prefers the localized title over the primary one.
func (a Anime) DisplayTitle() string {
	if a.TitleEnglish != "" {
		return a.TitleEnglish
	}
	return a.Title
}

// TitleEquals reports an exact case-insensitive match on the primary or
// localized title.
func (a Anime) TitleEquals(title string) bool {
	return strings.EqualFold(a.Title, title) ||
		(a.TitleEnglish != "" && strings.EqualFold(a.TitleEnglish, title))
}

// TitleMatches reports a loose case-insensitive match on the primary or
// localized title: exact, or substring in either direction.
func (a Anime) TitleMatches(title string) bool {
	want := strings.ToLower(strings.TrimSpace(title))
	if want == "" {
		return false
	}
	for _, have := range []string{a.Title, a.TitleEnglish} {
		if have == "" {
			continue
		}
		have = strings.ToLower(have)
		if have == want || strings.Contains(have, want) || strings.Contains(want, have) {
			return true
		}
	}
	return false
}

type animePage struct {
	Data       []Anime `json:"data"`
	Pagination struct {
		HasNextPage bool `json:"has_next_page"`
	} `json:"pagination"`
}

// List returns one page of the catalog ordered by score, plus a flag
// indicating whether more pages follow.
func (c *Client) List(ctx context.Context, page int) ([]Anime, bool, error) {
	if page < 1 {
		page = 1
	}
	query := url.Values{}
	query.Set("order_by", "score")
	query.Set("sort", "desc")
	query.Set("page", strconv.Itoa(page))

	var result animePage
	if err := c.get(ctx, "/anime?"+query.Encode(), &result); err != nil {
		return nil, false, err
	}
	return result.Data, result.Pagination.HasNextPage, nil
}

// Search returns up to limit records matching the free-text query. An
// empty query is rejected before any request is made.
func (c *Client) Search(ctx context.Context, searchTerm string, limit int) ([]Anime, error) {
	searchTerm = strings.TrimSpace(searchTerm)
	if searchTerm == "" {
		return nil, ErrEmptyQuery
	}
	if limit < 1 {
		limit = 1
	}
	query := url.Values{}
	query.Set("q", searchTerm)
	query.Set("limit", strconv.Itoa(limit))

	var result animePage
	if err := c.get(ctx, "/anime?"+query.Encode(), &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating catalog request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding catalog response: %w", err)
	}
	return nil
}
