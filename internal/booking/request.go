package booking

import (
	"strings"
	"unicode/utf8"
)

type CreateRequest struct {
	UserID     string
	CourtID    string
	Date       string
	StartTime  string
	EndTime    string
	CoachID    *string
	CoachName  *string
	Membership string
	Notes      *string
}

// UpdateRequest is a partial update. Nil fields are left unchanged; an empty
// string clears the optional fields (notes, coach_id, coach_name).
type UpdateRequest struct {
	CourtID    *string
	Date       *string
	StartTime  *string
	EndTime    *string
	Notes      *string
	CoachID    *string
	CoachName  *string
	Membership *string
	Status     *string
}

// newBooking validates req and returns a normalized, confirmed booking.
func newBooking(req CreateRequest) (*Booking, error) {
	if strings.TrimSpace(req.CourtID) == "" || strings.TrimSpace(req.Date) == "" ||
		strings.TrimSpace(req.StartTime) == "" || strings.TrimSpace(req.EndTime) == "" {
		return nil, ErrMissingField
	}

	w, err := Window{CourtID: req.CourtID, Date: req.Date, Start: req.StartTime, End: req.EndTime}.Normalize()
	if err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	membership := Membership(strings.TrimSpace(req.Membership))
	if !membership.Valid() {
		return nil, ErrInvalidMembership
	}

	b := &Booking{
		UserID:     req.UserID,
		CourtID:    w.CourtID,
		Date:       w.Date,
		StartTime:  w.Start,
		EndTime:    w.End,
		Membership: membership,
		Status:     StatusConfirmed,
	}
	if req.CoachID != nil {
		b.CoachID = optional(*req.CoachID)
	}
	if req.CoachName != nil {
		b.CoachName = optional(*req.CoachName)
	}
	if req.Notes != nil {
		b.Notes = optional(*req.Notes)
	}
	if err := validateText(b); err != nil {
		return nil, err
	}
	return b, nil
}

// apply merges the patch into b, normalizing every field it touches.
func (r UpdateRequest) apply(b *Booking) error {
	if r.CourtID != nil {
		id := strings.TrimSpace(*r.CourtID)
		if id == "" {
			return ErrMissingField
		}
		b.CourtID = id
	}
	if r.Date != nil {
		d, err := NormalizeDate(*r.Date)
		if err != nil {
			return err
		}
		b.Date = d
	}
	if r.StartTime != nil {
		t, err := NormalizeTime(*r.StartTime)
		if err != nil {
			return err
		}
		b.StartTime = t
	}
	if r.EndTime != nil {
		t, err := NormalizeTime(*r.EndTime)
		if err != nil {
			return err
		}
		b.EndTime = t
	}
	if err := b.Window().Validate(); err != nil {
		return err
	}

	if r.Membership != nil {
		m := Membership(strings.TrimSpace(*r.Membership))
		if !m.Valid() {
			return ErrInvalidMembership
		}
		b.Membership = m
	}
	if r.Status != nil {
		st := Status(strings.TrimSpace(*r.Status))
		if !st.Valid() {
			return ErrInvalidStatus
		}
		b.Status = st
	}
	if r.CoachID != nil {
		b.CoachID = optional(*r.CoachID)
	}
	if r.CoachName != nil {
		b.CoachName = optional(*r.CoachName)
	}
	if r.Notes != nil {
		b.Notes = optional(*r.Notes)
	}
	return validateText(b)
}

func validateText(b *Booking) error {
	if b.Notes != nil && utf8.RuneCountInString(*b.Notes) > maxNotesLength {
		return ErrNotesTooLong
	}
	if b.CoachName != nil && utf8.RuneCountInString(*b.CoachName) > maxCoachNameLength {
		return ErrCoachNameTooLong
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func ptrValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
