package http

import (
	"time"

	"github.com/courtline/court-reservation/internal/court"
	"github.com/courtline/court-reservation/internal/pkg/request"
)

type CourtResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewResponse(c *court.Court) CourtResponse {
	return CourtResponse{
		ID:          c.ID,
		Name:        c.Name,
		Color:       c.Color,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type ListCourtsRequest struct {
	request.ListParams
	// All includes inactive courts; honored for admins only.
	All    bool   `form:"all"`
	SortBy string `form:"sort_by" binding:"omitempty,oneof=name created_at"`
}

type CreateRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Color       string  `json:"color" binding:"omitempty"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

type UpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Color       *string `json:"color"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}
