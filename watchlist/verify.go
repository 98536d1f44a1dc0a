package watchlist

import (
	"context"

	"github.com/aniwatch/aniwatch-server/catalog"
)

// Verifier decides whether a hand-typed title refers to a real anime.
// It is pluggable so the add flow can be tested without the catalog.
type Verifier interface {
	Verify(ctx context.Context, title string) (bool, error)
}

// CatalogVerifier verifies titles against the catalog's search
// endpoint: the top result's primary or localized title must match
// case-insensitively, exactly or as a substring in either direction.
type CatalogVerifier struct {
	catalog *catalog.Client
}

func NewCatalogVerifier(c *catalog.Client) *CatalogVerifier {
	return &CatalogVerifier{catalog: c}
}

func (v *CatalogVerifier) Verify(ctx context.Context, title string) (bool, error) {
	results, err := v.catalog.Search(ctx, title, 1)
	if err != nil {
		return false, err
	}
	if len(results) == 0 {
		return false, nil
	}
	return results[0].TitleMatches(title), nil
}
