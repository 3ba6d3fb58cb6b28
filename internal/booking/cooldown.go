package booking

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/courtline/court-reservation/internal/pkg/apperror"
)

const DefaultCooldownDays = 2

// latestFinder returns the user's most recent active booking by
// (date desc, created_at desc), or nil when there is none.
type latestFinder interface {
	LatestActiveForUser(ctx context.Context, userID, excludeID string) (*Booking, error)
}

// CooldownError is returned when the user booked too recently. It unwraps to
// ErrCooldownActive.
type CooldownError struct {
	LastDate      string
	NextAvailable string
	Days          int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("must wait %d days between bookings; next available date is %s", e.Days, e.NextAvailable)
}

func (e *CooldownError) Unwrap() error {
	return ErrCooldownActive
}

// AppError exposes the HTTP form with the date the client can retry from.
func (e *CooldownError) AppError() *apperror.AppError {
	return apperror.Wrap(e, http.StatusConflict, e.Error()).WithDetails(map[string]any{
		"last_booking_date":   e.LastDate,
		"next_available_date": e.NextAvailable,
	})
}

// CooldownPolicy enforces a minimum number of whole days between a user's
// consecutive bookings.
type CooldownPolicy struct {
	store latestFinder
	days  int
}

func NewCooldownPolicy(store latestFinder, days int) *CooldownPolicy {
	return &CooldownPolicy{store: store, days: days}
}

func (p *CooldownPolicy) Days() int {
	return p.days
}

// Check admits date for userID when the user has no active booking, or when
// date is at least N days after the most recent one. A date earlier than the
// most recent booking is always rejected.
func (p *CooldownPolicy) Check(ctx context.Context, userID, date, excludeID string) error {
	if p.days <= 0 {
		return nil
	}

	last, err := p.store.LatestActiveForUser(ctx, userID, excludeID)
	if err != nil {
		return err
	}
	if last == nil {
		return nil
	}
	return evaluateCooldown(last.Date, date, p.days)
}

func evaluateCooldown(lastDate, candidate string, days int) error {
	last, err := ParseDate(lastDate)
	if err != nil {
		return err
	}
	cand, err := ParseDate(candidate)
	if err != nil {
		return err
	}

	// Both are UTC midnights, so the difference is a whole number of days.
	diff := int(cand.Sub(last) / (24 * time.Hour))
	if diff >= days {
		return nil
	}

	e := &CooldownError{
		LastDate:      lastDate,
		NextAvailable: last.AddDate(0, 0, days).Format(DateLayout),
		Days:          days,
	}
	return e.AppError()
}
