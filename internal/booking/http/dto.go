package http

import (
	"time"

	"github.com/courtline/court-reservation/internal/booking"
	"github.com/courtline/court-reservation/internal/pkg/request"
)

type CreateBookingRequest struct {
	CourtID    string  `json:"court_id" binding:"required,uuid"`
	Date       string  `json:"booking_date" binding:"required"`
	StartTime  string  `json:"start_time" binding:"required"`
	EndTime    string  `json:"end_time" binding:"required"`
	Membership string  `json:"membership_status" binding:"required"`
	CoachID    *string `json:"coach_id" binding:"omitempty,max=100"`
	CoachName  *string `json:"coach_name"`
	Notes      *string `json:"notes"`
}

// UpdateBookingRequest accepts only the fields a booking may change.
type UpdateBookingRequest struct {
	CourtID    *string `json:"court_id" binding:"omitempty,uuid"`
	Date       *string `json:"booking_date"`
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
	Notes      *string `json:"notes"`
	CoachID    *string `json:"coach_id" binding:"omitempty,max=100"`
	CoachName  *string `json:"coach_name"`
	Membership *string `json:"membership_status"`
	Status     *string `json:"status"`
}

type ListOwnRequest struct {
	Upcoming *bool `form:"upcoming"`
}

type ListAllRequest struct {
	request.ListParams
	CourtID  string `form:"court_id" binding:"omitempty,uuid"`
	UserID   string `form:"user_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=confirmed cancelled"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
}

type AvailabilityRequest struct {
	CourtID string `form:"court_id"`
	Date    string `form:"date"`
}

type CourtTag struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type OwnerTag struct {
	Email    string  `json:"email"`
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
}

type BookingResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CourtID    string    `json:"court_id"`
	Date       string    `json:"booking_date"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	CoachID    *string   `json:"coach_id"`
	CoachName  *string   `json:"coach_name"`
	Membership string    `json:"membership_status"`
	Status     string    `json:"status"`
	Notes      *string   `json:"notes"`
	Court      *CourtTag `json:"court"`
	Owner      *OwnerTag `json:"owner,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	resp := BookingResponse{
		ID:         b.ID,
		UserID:     b.UserID,
		CourtID:    b.CourtID,
		Date:       b.Date,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		CoachID:    b.CoachID,
		CoachName:  b.CoachName,
		Membership: string(b.Membership),
		Status:     string(b.Status),
		Notes:      b.Notes,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
	if b.Court != nil {
		resp.Court = &CourtTag{Name: b.Court.Name, Color: b.Court.Color}
	}
	if b.Owner != nil {
		resp.Owner = &OwnerTag{Email: b.Owner.Email, FullName: b.Owner.FullName, Phone: b.Owner.Phone}
	}
	return resp
}

func newBookingResponses(items []*booking.Booking) []BookingResponse {
	out := make([]BookingResponse, len(items))
	for i, b := range items {
		out[i] = NewBookingResponse(b)
	}
	return out
}

// SlotResponse is the public view of an occupied window.
type SlotResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type AvailabilityResponse struct {
	CourtID string         `json:"court_id"`
	Date    string         `json:"date"`
	Booked  []SlotResponse `json:"booked"`
}
