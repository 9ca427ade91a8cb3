package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// User represents an account. Email is the login identifier; username is the
// public handle used in profile URLs.
type User struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	Username       string    `db:"username" json:"username"`
	Name           string    `db:"name" json:"name"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	AvatarURL      *string   `db:"avatar_url" json:"avatar"`
	AvatarKey      *string   `db:"avatar_key" json:"-"`
	BannerURL      *string   `db:"banner_url" json:"banner"`
	BannerKey      *string   `db:"banner_key" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// UserSummary is the reduced shape embedded in comments, follow lists and
// community member lists.
type UserSummary struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Name      string    `db:"name" json:"name"`
	AvatarURL *string   `db:"avatar_url" json:"avatar"`
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest represents the data needed to log in. Login is by email,
// matching the original product behavior.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserStats aggregates a user's engagement footprint for the profile page.
type UserStats struct {
	Assistidos int `json:"assistidos"`
	Likes      int `json:"likes"`
	Criticas   int `json:"criticas"`
	Seguidores int `json:"seguidores"`
	Seguindo   int `json:"seguindo"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when attempting to register an email that is taken
	ErrEmailExists = errors.New("email already registered")

	// ErrUsernameExists is returned when attempting to register a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")
)
