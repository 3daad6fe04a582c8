package entities

import (
	"regexp"
	"strings"
	"time"
)

const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	ErrMissingFields    = ValidationError{Field: "form", Reason: "Please fill in all fields."}
	ErrInvalidEmail     = ValidationError{Field: "email", Reason: "Please enter a valid email address."}
	ErrPasswordTooShort = ValidationError{Field: "password", Reason: "Password must be at least 6 characters long."}
	ErrPasswordMismatch = ValidationError{Field: "confirm_password", Reason: "Passwords do not match."}
)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Credentials) Validate() error {
	c.Email = strings.TrimSpace(c.Email)
	if c.Email == "" || c.Password == "" {
		return ErrMissingFields
	}
	if !ValidEmail(c.Email) {
		return ErrInvalidEmail
	}
	if len(c.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

type Registration struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *Registration) Validate() error {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)

	if r.FirstName == "" || r.LastName == "" || r.Email == "" || r.Password == "" || r.ConfirmPassword == "" {
		return ErrMissingFields
	}
	if !ValidEmail(r.Email) {
		return ErrInvalidEmail
	}
	if len(r.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if r.Password != r.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

type Profile struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// ProfileUpdate leaves the password unchanged when Password is empty.
type ProfileUpdate struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
}

func (u *ProfileUpdate) Validate() error {
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.Email = strings.TrimSpace(u.Email)

	if u.FirstName == "" || u.LastName == "" || u.Email == "" {
		return ErrMissingFields
	}
	if !ValidEmail(u.Email) {
		return ErrInvalidEmail
	}
	if u.Password != "" && len(u.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// LoginResult is what the backend reports for a successful login.
type LoginResult struct {
	UserID   string
	FullName string
}

// Session is the authenticated context of one client. It is created at
// login, looked up per request and handed to whoever needs it.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
