package booking

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Dimension names the column a conflict is searched on.
type Dimension int

const (
	DimensionCourt Dimension = iota
	DimensionCoach
)

// overlapFinder returns the first active booking on the given dimension and
// day whose window overlaps w, or nil.
type overlapFinder interface {
	FindOverlap(ctx context.Context, dim Dimension, w Window, excludeID string) (*Booking, error)
}

// Conflict lists the bookings blocking a candidate window, per dimension.
type Conflict struct {
	Court *Booking
	Coach *Booking
}

// Err returns the error for the first blocking dimension, court before coach.
func (c Conflict) Err() error {
	switch {
	case c.Court != nil:
		return ErrResourceUnavailable.WithDetails(conflictDetails(c.Court))
	case c.Coach != nil:
		return ErrCoachUnavailable.WithDetails(conflictDetails(c.Coach))
	}
	return nil
}

func conflictDetails(b *Booking) map[string]any {
	return map[string]any{
		"booking_date":        b.Date,
		"conflict_start_time": b.StartTime,
		"conflict_end_time":   b.EndTime,
	}
}

type ConflictChecker struct {
	store overlapFinder
}

func NewConflictChecker(store overlapFinder) *ConflictChecker {
	return &ConflictChecker{store: store}
}

// Check searches both dimensions for w. The coach dimension is only searched
// when w names a coach. excludeID skips the booking being re-validated.
func (c *ConflictChecker) Check(ctx context.Context, w Window, excludeID string) (Conflict, error) {
	var out Conflict

	court, err := c.store.FindOverlap(ctx, DimensionCourt, w, excludeID)
	if err != nil {
		return out, err
	}
	out.Court = court

	if w.CoachID != "" {
		coach, err := c.store.FindOverlap(ctx, DimensionCoach, w, excludeID)
		if err != nil {
			return out, err
		}
		out.Coach = coach
	}

	if out.Court != nil || out.Coach != nil {
		ev := log.Ctx(ctx).Info().Str("court_id", w.CourtID).Str("date", w.Date).
			Str("start", w.Start).Str("end", w.End)
		if out.Court != nil {
			ev = ev.Str("court_conflict_id", out.Court.ID)
		}
		if out.Coach != nil {
			ev = ev.Str("coach_id", w.CoachID).Str("coach_conflict_id", out.Coach.ID)
		}
		ev.Msg("booking conflict detected")
	}
	return out, nil
}
