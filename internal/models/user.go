package models

import (
	"time"

	"github.com/google/uuid"
)

// User представляет пользователя в системе
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	FullName      string    `json:"full_name"`
	PhoneNumber   string    `json:"phone_number,omitempty"`
	PhoneVerified bool      `json:"phone_verified"`

	// Локация пользователя
	ZipCode string `json:"zip_code,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`

	// Привязка к социальной авторизации
	GoogleID string `json:"-"`

	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	IsActive  bool   `json:"is_active"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// UserProfile представляет минимальную информацию о пользователе для API
type UserProfile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username,omitempty"`
	FullName  string    `json:"full_name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}
