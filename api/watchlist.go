package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/aniwatch/aniwatch-server/database/model"
)

type entryRequest struct {
	UserID int64  `json:"user_id"`
	Title  string `json:"title"`
	Status string `json:"status"`
	Rating int    `json:"rating"`
}

// validate applies the field checks shared by add and update. needUser
// is set for add, where the owning account must be part of the payload.
func (e *entryRequest) validate(needUser bool) (status int, message string) {
	if (needUser && e.UserID == 0) || strings.TrimSpace(e.Title) == "" || e.Status == "" {
		return http.StatusBadRequest, "Missing required fields."
	}
	if !model.Status(e.Status).Valid() {
		return http.StatusBadRequest, "Invalid status."
	}
	if e.Rating < 0 || e.Rating > 10 {
		return http.StatusBadRequest, "Rating must be between 0 and 10."
	}
	return http.StatusOK, ""
}

// GET /watchlist/{userId}
//
// watchlistHandler returns all entries of an account, oldest first.
func (a *API) watchlistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil {
		serveMessage(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	entries, err := a.repo.Watchlist.List(r.Context(), userID)
	if err != nil {
		log.Printf("watchlistHandler: %s", err)
		serveMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	serveJSON(entries, w)
}

// POST /watchlist
//
// watchlistAddHandler inserts a new entry for an account.
func (a *API) watchlistAddHandler(w http.ResponseWriter, r *http.Request) {
	var request entryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		serveMessage(w, http.StatusBadRequest, "Missing required fields.")
		return
	}
	if status, message := request.validate(true); message != "" {
		serveMessage(w, status, message)
		return
	}

	entry, err := a.repo.Watchlist.Insert(r.Context(), &model.Entry{
		UserID: request.UserID,
		Title:  request.Title,
		Status: model.Status(request.Status),
		Rating: request.Rating,
	})
	if err != nil {
		if errors.Is(err, model.ErrDuplicateTitle) {
			serveMessage(w, http.StatusBadRequest, "This anime is already in your watchlist.")
			return
		}
		log.Printf("watchlistAddHandler: %s", err)
		serveMessage(w, http.StatusBadRequest, "Failed to add anime to watchlist.")
		return
	}
	serveJSON(entry, w)
}

// PUT /watchlist/{id}
//
// watchlistUpdateHandler rewrites title, status and rating of an entry.
func (a *API) watchlistUpdateHandler(w http.ResponseWriter, r *http.Request) {
	entryID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		serveMessage(w, http.StatusBadRequest, "Invalid entry id")
		return
	}

	var request entryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		serveMessage(w, http.StatusBadRequest, "Missing required fields.")
		return
	}
	if status, message := request.validate(false); message != "" {
		serveMessage(w, status, message)
		return
	}

	entry, err := a.repo.Watchlist.Update(r.Context(), entryID,
		request.Title, model.Status(request.Status), request.Rating)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			serveMessage(w, http.StatusNotFound, "Anime not found.")
		case errors.Is(err, model.ErrDuplicateTitle):
			serveMessage(w, http.StatusBadRequest, "This anime is already in your watchlist.")
		default:
			log.Printf("watchlistUpdateHandler: %s", err)
			serveMessage(w, http.StatusBadRequest, "Failed to update anime.")
		}
		return
	}
	serveJSON(entry, w)
}

// DELETE /watchlist/{id}
//
// watchlistDeleteHandler removes an entry.
func (a *API) watchlistDeleteHandler(w http.ResponseWriter, r *http.Request) {
	entryID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		serveMessage(w, http.StatusBadRequest, "Invalid entry id")
		return
	}

	if err := a.repo.Watchlist.Delete(r.Context(), entryID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			serveMessage(w, http.StatusNotFound, "Anime not found.")
			return
		}
		log.Printf("watchlistDeleteHandler: %s", err)
		serveMessage(w, http.StatusBadRequest, "Failed to delete anime.")
		return
	}
	serveJSON(map[string]string{"message": "Anime deleted."}, w)
}
