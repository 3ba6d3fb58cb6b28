package message

import (
	"net/http"
	"time"

	"github.com/courtline/court-reservation/internal/pkg/apperror"
)

var (
	ErrNameRequired = apperror.New(http.StatusBadRequest, "name is required")
	ErrNameTooLong  = apperror.New(http.StatusBadRequest, "name must be at most 100 characters")
	ErrInvalidEmail = apperror.New(http.StatusBadRequest, "a valid email is required")
	ErrBodyRequired = apperror.New(http.StatusBadRequest, "message is required")
	ErrBodyTooLong  = apperror.New(http.StatusBadRequest, "message must be at most 1000 characters")
)

// Message is a contact-form submission from a site visitor.
type Message struct {
	ID        string
	Name      string
	Email     string
	Body      string
	CreatedAt time.Time
}

type Filter struct {
	Keyword  string
	Page     int
	PageSize int
}
