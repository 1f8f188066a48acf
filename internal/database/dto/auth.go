package dto

import (
	"kanban/internal/database/models"
	"net/mail"
	"strings"
	"time"
)

type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (l *LoginCredentials) Validate() error {
	l.Email = strings.TrimSpace(strings.ToLower(l.Email))
	v := validator{}
	v.require("email", l.Email)
	v.require("password", l.Password)
	return v.err()
}

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

const minPasswordLength = 8

func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	v := validator{}
	if v.require("email", r.Email) {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			v.add("email", "must be a valid email address")
		}
	}
	if len(r.Password) < minPasswordLength {
		v.add("password", "must be at least 8 characters")
	}
	v.maxLen("firstName", r.FirstName, 100)
	v.maxLen("lastName", r.LastName, 100)
	return v.err()
}

// Session is the persisted-session contract handed to clients after login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is no longer usable at now.
func (s Session) Expired(now time.Time) bool {
	return s.Token == "" || !now.Before(s.ExpiresAt)
}


// AuthResponse is returned by register and login.
type AuthResponse struct {
	User *models.User `json:"user"`
	Session
}
