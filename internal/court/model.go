package court

import (
	"net/http"
	"time"

	"github.com/courtline/court-reservation/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "court not found")
	ErrEmptyName          = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrNameTooLong        = apperror.New(http.StatusBadRequest, "name must be at most 100 characters")
	ErrInvalidColor       = apperror.New(http.StatusBadRequest, "color must be a hex value like #3B82F6")
	ErrDescriptionTooLong = apperror.New(http.StatusBadRequest, "description must be at most 500 characters")
	ErrInUse              = apperror.New(http.StatusConflict, "court has bookings; deactivate it instead")
)

const DefaultColor = "#3B82F6"

// Court is a bookable resource.
type Court struct {
	ID          string
	Name        string
	Color       string
	Description *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter defines parameters for listing courts.
type Filter struct {
	ActiveOnly bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
