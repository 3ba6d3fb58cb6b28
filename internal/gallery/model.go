package gallery

import (
	"net/http"
	"time"

	"github.com/courtline/court-reservation/internal/pkg/apperror"
)

var (
	ErrNotFound             = apperror.New(http.StatusNotFound, "image not found")
	ErrThumbnailUnavailable = apperror.New(http.StatusNotFound, "thumbnail not available for this image")
	ErrTitleRequired        = apperror.New(http.StatusBadRequest, "title is required")
	ErrTitleTooLong         = apperror.New(http.StatusBadRequest, "title must be at most 100 characters")
	ErrDescriptionTooLong   = apperror.New(http.StatusBadRequest, "description must be at most 500 characters")
	ErrUnsupportedType      = apperror.New(http.StatusUnsupportedMediaType, "only jpeg, png, gif and webp images are accepted")
	ErrTooLarge             = apperror.New(http.StatusRequestEntityTooLarge, "image exceeds the upload limit")
)

// MaxUploadBytes caps a single gallery upload.
const MaxUploadBytes = 10 << 20

// Image is one gallery entry. Paths are storage-relative and never exposed.
type Image struct {
	ID            string
	Title         string
	Description   *string
	ContentType   string
	Size          int64
	StoragePath   string
	ThumbnailPath *string
	UploadedBy    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ImageURL returns the public URL serving the original upload.
func ImageURL(id string) string {
	return "/v1/gallery/" + id + "/image"
}

// ThumbnailURL returns the public URL serving the image's thumbnail.
func ThumbnailURL(id string) string {
	return "/v1/gallery/" + id + "/thumbnail"
}

type Filter struct {
	Page      int
	PageSize  int
	SortOrder string
}
