package user

import (
	"net/http"
	"time"

	"github.com/courtline/court-reservation/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password must be at least 8 characters")
	ErrFullNameTooLong    = apperror.New(http.StatusBadRequest, "full_name must be at most 100 characters")
	ErrPhoneTooLong       = apperror.New(http.StatusBadRequest, "phone must be at most 30 characters")
)

// User is a profile: identity plus the privileged flag consulted by booking authorization.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	FullName     *string
	Phone        *string
	IsActive     bool
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// DisplayName returns the full name when set, otherwise the email.
func (u *User) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Email
}

// Filter defines filter options for listing users.
type Filter struct {
	Email    string
	FullName string
	IsActive *bool
	IsAdmin  *bool

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ProfileUpdate is a self-service change to the caller's own profile.
type ProfileUpdate struct {
	FullName *string
	Phone    *string
}

// AdminUpdate is a privileged change to any profile.
type AdminUpdate struct {
	FullName *string
	Phone    *string
	IsActive *bool
	IsAdmin  *bool
}
