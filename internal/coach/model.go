package coach

import (
	"net/http"
	"time"

	"github.com/courtline/court-reservation/internal/pkg/apperror"
)

var (
	ErrNotFound    = apperror.New(http.StatusNotFound, "coach not found")
	ErrEmptyID     = apperror.New(http.StatusBadRequest, "coach id cannot be empty")
	ErrNameTooLong = apperror.New(http.StatusBadRequest, "coach name must be at most 100 characters")
)

// Coach is an optional secondary resource on a booking. Records are created
// lazily the first time a booking names an unknown coach.
type Coach struct {
	ID        string
	Name      *string
	CreatedAt time.Time
}
