package booking

import (
	"net/http"
	"time"

	"github.com/courtline/court-reservation/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "booking not found")
	ErrCourtNotFound     = apperror.New(http.StatusNotFound, "court not found")
	ErrPermissionDenied  = apperror.New(http.StatusForbidden, "not authorized to access this booking")
	ErrInvalidDate       = apperror.New(http.StatusBadRequest, "booking_date must be a date in YYYY-MM-DD format")
	ErrInvalidTime       = apperror.New(http.StatusBadRequest, "time must be in HH:MM format")
	ErrInvalidTimeRange  = apperror.New(http.StatusBadRequest, "start_time must be before end_time")
	ErrInvalidMembership = apperror.New(http.StatusBadRequest, "membership_status must be member or non_member")
	ErrInvalidStatus     = apperror.New(http.StatusBadRequest, "status must be confirmed or cancelled")
	ErrNotesTooLong      = apperror.New(http.StatusBadRequest, "notes must be at most 500 characters")
	ErrCoachNameTooLong  = apperror.New(http.StatusBadRequest, "coach_name must be at most 100 characters")
	ErrMissingField      = apperror.New(http.StatusBadRequest, "court_id, booking_date, start_time and end_time are required")
	ErrMissingQuery      = apperror.New(http.StatusBadRequest, "court_id and date are required")

	ErrResourceUnavailable = apperror.New(http.StatusConflict, "time slot not available")
	ErrCoachUnavailable    = apperror.New(http.StatusConflict, "coach not available at this time")
	ErrCooldownActive      = apperror.New(http.StatusConflict, "must wait before booking again")
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

type Membership string

const (
	MembershipMember    Membership = "member"
	MembershipNonMember Membership = "non_member"
)

func (m Membership) Valid() bool {
	return m == MembershipMember || m == MembershipNonMember
}

const (
	maxNotesLength     = 500
	maxCoachNameLength = 100
)

// Booking is a reservation of one court for a time window on one day,
// optionally with a coach.
type Booking struct {
	ID         string
	UserID     string
	CourtID    string
	Date       string // YYYY-MM-DD
	StartTime  string // HH:MM
	EndTime    string // HH:MM
	CoachID    *string
	CoachName  *string
	Membership Membership
	Status     Status
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Resolved on read, not stored with the booking.
	Court *CourtInfo
	Owner *OwnerInfo
}

// Window returns the slot the booking occupies.
func (b *Booking) Window() Window {
	w := Window{CourtID: b.CourtID, Date: b.Date, Start: b.StartTime, End: b.EndTime}
	if b.CoachID != nil {
		w.CoachID = *b.CoachID
	}
	return w
}

// Active reports whether the booking participates in conflict and cooldown checks.
func (b *Booking) Active() bool {
	return b.Status != StatusCancelled
}

type CourtInfo struct {
	Name  string
	Color string
}

type OwnerInfo struct {
	Email    string
	FullName *string
	Phone    *string
}

// Slot is the public view of an occupied window, used by availability.
type Slot struct {
	ID        string
	UserID    string
	StartTime string
	EndTime   string
}

// Filter defines the admin listing parameters. Dates are inclusive.
type Filter struct {
	CourtID   string
	UserID    string
	Status    string
	DateFrom  string
	DateTo    string
	Page      int
	PageSize  int
	SortOrder string
}
