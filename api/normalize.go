package api

import (
	"net/http"
	"strings"
)

// NormalizePath is middleware improving compatibility with clients that
// send sloppy request paths: duplicate slashes are collapsed and a
// trailing slash is stripped before routing.
func NormalizePath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		for strings.Contains(path, "//") {
			path = strings.ReplaceAll(path, "//", "/")
		}
		if path != "/" && strings.HasSuffix(path, "/") {
			path = strings.TrimSuffix(path, "/")
		}

		if path != r.URL.Path {
			r2 := r.Clone(r.Context())
			r2.URL.Path = path
			r = r2
		}
		next.ServeHTTP(w, r)
	})
}
