// Package api exposes the account and watchlist HTTP surface.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/aniwatch/aniwatch-server/covers"
	"github.com/aniwatch/aniwatch-server/database"
)

type Options struct {
	Repo   *database.Repository
	Covers *covers.Cache
}

type API struct {
	repo   *database.Repository
	covers *covers.Cache
}

func New(o *Options) *API {
	return &API{
		repo:   o.Repo,
		covers: o.Covers,
	}
}

func (a *API) RegisterHandlers(r *mux.Router) {
	gzip := handlers.CompressHandler

	r.HandleFunc("/users/register", a.registerHandler).Methods(http.MethodPost)
	r.HandleFunc("/users/login", a.loginHandler).Methods(http.MethodPost)

	r.Handle("/watchlist/{userId:[0-9]+}", gzip(http.HandlerFunc(a.watchlistHandler))).Methods(http.MethodGet)
	r.HandleFunc("/watchlist", a.watchlistAddHandler).Methods(http.MethodPost)
	r.HandleFunc("/watchlist/{id:[0-9]+}", a.watchlistUpdateHandler).Methods(http.MethodPut)
	r.HandleFunc("/watchlist/{id:[0-9]+}", a.watchlistDeleteHandler).Methods(http.MethodDelete)

	if a.covers != nil {
		r.HandleFunc("/covers", a.covers.ServeCover).Methods(http.MethodGet)
	}

	// Everything unmatched gets a JSON body, the clients never expect HTML.
	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	r.MethodNotAllowedHandler = http.HandlerFunc(notFoundHandler)
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	serveMessage(w, http.StatusNotFound, "Not found")
}

func serveJSON(obj any, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	j := json.NewEncoder(w)
	j.SetIndent("", "  ")
	j.Encode(obj)
}

// serveMessage writes the {"message": ...} error payload every failure
// path uses.
func serveMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
