package http

import (
	"time"

	"github.com/courtline/court-reservation/internal/gallery"
	"github.com/courtline/court-reservation/internal/pkg/request"
)

type ImageResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewImageResponse(img *gallery.Image) ImageResponse {
	resp := ImageResponse{
		ID:          img.ID,
		Title:       img.Title,
		Description: img.Description,
		ContentType: img.ContentType,
		Size:        img.Size,
		URL:         gallery.ImageURL(img.ID),
		CreatedAt:   img.CreatedAt,
		UpdatedAt:   img.UpdatedAt,
	}
	if img.ThumbnailPath != nil {
		u := gallery.ThumbnailURL(img.ID)
		resp.ThumbnailURL = &u
	}
	return resp
}

type ListImagesRequest struct {
	request.ListParams
}

// UploadForm is the multipart form of an upload; the file travels in "image".
type UploadForm struct {
	Title       string  `form:"title" binding:"required,max=100"`
	Description *string `form:"description" binding:"omitempty,max=500"`
}

type UpdateImageRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}
