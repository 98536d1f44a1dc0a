package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/aniwatch/aniwatch-server/database/model"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	User *model.User `json:"user"`
}

// POST /users/register
//
// registerHandler creates a new account and returns {user:{id,email}}.
// The password is never echoed back.
func (a *API) registerHandler(w http.ResponseWriter, r *http.Request) {
	var request credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		serveMessage(w, http.StatusBadRequest, "Invalid registration data")
		return
	}
	if len(request.Email) == 0 || len(request.Password) == 0 {
		serveMessage(w, http.StatusBadRequest, "Email and password required")
		return
	}

	user, err := a.repo.Users.Register(r.Context(), request.Email, request.Password)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateEmail) {
			serveMessage(w, http.StatusBadRequest, "Registration failed. Email may already exist.")
			return
		}
		log.Printf("registerHandler: %s", err)
		serveMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	serveJSON(userResponse{User: user}, w)
}

// POST /users/login
//
// loginHandler validates the email/password pair.
func (a *API) loginHandler(w http.ResponseWriter, r *http.Request) {
	var request credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		serveMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	user, err := a.repo.Users.Validate(r.Context(), request.Email, request.Password)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			serveMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Printf("loginHandler: %s", err)
		serveMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	serveJSON(userResponse{User: user}, w)
}
