package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrInactiveUser       = apperror.New(http.StatusForbidden, "user is inactive")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password is too short")
)

// User is a hotel guest or a staff member with admin rights.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	DisplayName  *string
	IsActive     bool
	IsAdmin      bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// Name returns the display name, falling back to the email.
func (u *User) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Email
}

// Filter defines filter options for listing users.
type Filter struct {
	Email       string
	DisplayName string
	IsActive    *bool // nil means "any"
	IsAdmin     *bool

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
