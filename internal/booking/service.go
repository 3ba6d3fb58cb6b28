package booking

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/courtline/court-reservation/internal/court"
	"github.com/courtline/court-reservation/internal/notify"
	"github.com/courtline/court-reservation/internal/pkg/apperror"
	"github.com/courtline/court-reservation/internal/pkg/clock"
	"github.com/courtline/court-reservation/internal/pkg/metrics"
	"github.com/courtline/court-reservation/internal/user"
)

// CourtLookup resolves court display data.
type CourtLookup interface {
	GetByID(ctx context.Context, id string) (*court.Court, error)
}

// ProfileLookup resolves booking owners for notifications and admin listings.
type ProfileLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// CoachRegistry provisions unknown coaches on first use.
type CoachRegistry interface {
	EnsureExists(ctx context.Context, id string, name *string) error
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id, actorID string, isAdmin bool) (*Booking, error)
	ListForUser(ctx context.Context, userID string, upcomingOnly bool) ([]*Booking, error)
	Availability(ctx context.Context, courtID, date string) ([]Slot, error)
	ListAll(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Update(ctx context.Context, id string, req UpdateRequest, actorID string, isAdmin bool) (*Booking, error)
	Cancel(ctx context.Context, id, actorID string, isAdmin bool) (*Booking, error)
	Delete(ctx context.Context, id, actorID string, isAdmin bool) error
}

type Option func(*service)

// WithCooldownDays sets the minimum whole days between a user's bookings.
func WithCooldownDays(days int) Option {
	return func(s *service) { s.cooldownDays = days }
}

func WithClock(c clock.Clock) Option {
	return func(s *service) { s.clock = c }
}

// WithNotifier sets the dispatcher for booking events. It should not block.
func WithNotifier(d notify.Dispatcher) Option {
	return func(s *service) { s.notifier = d }
}

// WithAdminEmail sets the recipient of admin notices.
func WithAdminEmail(email string) Option {
	return func(s *service) { s.adminEmail = email }
}

type service struct {
	repo     Repository
	courts   CourtLookup
	profiles ProfileLookup
	coaches  CoachRegistry

	conflicts *ConflictChecker
	cooldown  *CooldownPolicy

	cooldownDays int
	clock        clock.Clock
	notifier     notify.Dispatcher
	adminEmail   string
}

func NewService(repo Repository, courts CourtLookup, profiles ProfileLookup, coaches CoachRegistry, opts ...Option) Service {
	s := &service{
		repo:         repo,
		courts:       courts,
		profiles:     profiles,
		coaches:      coaches,
		cooldownDays: DefaultCooldownDays,
		clock:        clock.NewSystem(),
		notifier:     notify.LogDispatcher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.conflicts = NewConflictChecker(repo)
	s.cooldown = NewCooldownPolicy(repo, s.cooldownDays)
	return s
}

// Create admits a booking when the user is out of cooldown and neither the
// court nor the coach is taken. Checks and insert run under advisory locks in
// one transaction, so concurrent requests for the same slot serialize.
func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	b, err := newBooking(req)
	if err != nil {
		metrics.RecordRejection(metrics.ReasonValidation)
		return nil, err
	}
	w := b.Window()

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Lock(txCtx, lockKeys(b.UserID, w)...); err != nil {
			return err
		}
		if err := s.cooldown.Check(txCtx, b.UserID, w.Date, ""); err != nil {
			return err
		}
		conflict, err := s.conflicts.Check(txCtx, w, "")
		if err != nil {
			return err
		}
		if err := conflict.Err(); err != nil {
			return err
		}
		return s.repo.Create(txCtx, b)
	})
	if err != nil {
		recordRejection(err)
		return nil, err
	}
	// Runs after commit; bookings carry no foreign key to coaches.
	if b.CoachID != nil {
		s.ensureCoach(ctx, *b.CoachID, b.CoachName)
	}

	metrics.BookingsCreated.Inc()
	log.Ctx(ctx).Info().Str("booking_id", b.ID).Str("court_id", b.CourtID).
		Str("date", b.Date).Str("start", b.StartTime).Str("end", b.EndTime).
		Msg("booking created")

	s.resolveCourts(ctx, []*Booking{b})
	s.notifyCreated(ctx, b)
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id, actorID string, isAdmin bool) (*Booking, error) {
	b, err := s.authorize(ctx, id, actorID, isAdmin)
	if err != nil {
		return nil, err
	}
	s.resolveCourts(ctx, []*Booking{b})
	return b, nil
}

// ListForUser returns the user's bookings, oldest first. With upcomingOnly,
// days before today are dropped.
func (s *service) ListForUser(ctx context.Context, userID string, upcomingOnly bool) ([]*Booking, error) {
	from := ""
	if upcomingOnly {
		from = s.today()
	}
	items, err := s.repo.ListForUser(ctx, userID, from)
	if err != nil {
		return nil, err
	}
	s.resolveCourts(ctx, items)
	return items, nil
}

// Availability lists the occupied slots of a court on a day. Cancelled
// bookings free their slot and are omitted.
func (s *service) Availability(ctx context.Context, courtID, date string) ([]Slot, error) {
	w, err := Window{CourtID: courtID, Date: date}.normalizeDay()
	if err != nil {
		return nil, err
	}
	return s.repo.ListSlots(ctx, w.CourtID, w.Date)
}

func (s *service) ListAll(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	var err error
	if filter.DateFrom != "" {
		if filter.DateFrom, err = NormalizeDate(filter.DateFrom); err != nil {
			return nil, 0, err
		}
	}
	if filter.DateTo != "" {
		if filter.DateTo, err = NormalizeDate(filter.DateTo); err != nil {
			return nil, 0, err
		}
	}
	if filter.Status != "" && !Status(filter.Status).Valid() {
		return nil, 0, ErrInvalidStatus
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	s.resolveCourts(ctx, items)
	s.resolveOwners(ctx, items)
	return items, total, nil
}

// Update applies a partial update. Changes to the slot, the coach, or a
// cancelled booking being confirmed again are re-checked against every other
// booking; a date change is also re-checked against the owner's cooldown.
func (s *service) Update(ctx context.Context, id string, req UpdateRequest, actorID string, isAdmin bool) (*Booking, error) {
	var (
		updated     *Booking
		cancelled   bool
		coachChange bool
	)
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.authorize(txCtx, id, actorID, isAdmin)
		if err != nil {
			return err
		}
		before := *b

		if err := req.apply(b); err != nil {
			return err
		}

		reactivated := !before.Active() && b.Active()
		if b.Active() && (reactivated || before.Window() != b.Window()) {
			w := b.Window()
			if err := s.repo.Lock(txCtx, lockKeys(b.UserID, w)...); err != nil {
				return err
			}
			if reactivated || before.Date != b.Date {
				if err := s.cooldown.Check(txCtx, b.UserID, b.Date, b.ID); err != nil {
					return err
				}
			}
			conflict, err := s.conflicts.Check(txCtx, w, b.ID)
			if err != nil {
				return err
			}
			if err := conflict.Err(); err != nil {
				return err
			}
			coachChange = b.CoachID != nil && ptrValue(before.CoachID) != *b.CoachID
		}

		if err := s.repo.Update(txCtx, b); err != nil {
			return err
		}
		cancelled = before.Active() && !b.Active()
		updated = b
		return nil
	})
	if err != nil {
		recordRejection(err)
		return nil, err
	}

	if coachChange {
		s.ensureCoach(ctx, *updated.CoachID, updated.CoachName)
	}
	s.resolveCourts(ctx, []*Booking{updated})
	if cancelled {
		metrics.BookingsCancelled.Inc()
		log.Ctx(ctx).Info().Str("booking_id", updated.ID).Str("actor_id", actorID).Msg("booking cancelled")
		s.notifyCancelled(ctx, updated)
	}
	return updated, nil
}

func (s *service) Cancel(ctx context.Context, id, actorID string, isAdmin bool) (*Booking, error) {
	status := string(StatusCancelled)
	return s.Update(ctx, id, UpdateRequest{Status: &status}, actorID, isAdmin)
}

// Delete removes the booking record entirely.
func (s *service) Delete(ctx context.Context, id, actorID string, isAdmin bool) error {
	if _, err := s.authorize(ctx, id, actorID, isAdmin); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("booking_id", id).Str("actor_id", actorID).Msg("booking deleted")
	return nil
}

// authorize loads the booking and applies the owner-or-admin gate. A missing
// booking is reported as not found before any permission check.
func (s *service) authorize(ctx context.Context, id, actorID string, isAdmin bool) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccess(b, actorID, isAdmin) {
		return nil, ErrPermissionDenied
	}
	return b, nil
}

func (s *service) today() string {
	return s.clock.Now().UTC().Format(DateLayout)
}

func (s *service) ensureCoach(ctx context.Context, id string, name *string) {
	if s.coaches == nil {
		return
	}
	if err := s.coaches.EnsureExists(ctx, id, name); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("coach_id", id).Msg("failed to register coach")
	}
}

// resolveCourts attaches court name and color. Lookups are best effort.
func (s *service) resolveCourts(ctx context.Context, items []*Booking) {
	if s.courts == nil {
		return
	}
	cache := map[string]*CourtInfo{}
	for _, b := range items {
		info, seen := cache[b.CourtID]
		if !seen {
			c, err := s.courts.GetByID(ctx, b.CourtID)
			if err != nil {
				log.Ctx(ctx).Debug().Err(err).Str("court_id", b.CourtID).Msg("court lookup failed")
			} else {
				info = &CourtInfo{Name: c.Name, Color: c.Color}
			}
			cache[b.CourtID] = info
		}
		b.Court = info
	}
}

func (s *service) resolveOwners(ctx context.Context, items []*Booking) {
	if s.profiles == nil {
		return
	}
	cache := map[string]*OwnerInfo{}
	for _, b := range items {
		info, seen := cache[b.UserID]
		if !seen {
			u, err := s.profiles.GetByID(ctx, b.UserID)
			if err != nil {
				log.Ctx(ctx).Debug().Err(err).Str("user_id", b.UserID).Msg("profile lookup failed")
			} else {
				info = &OwnerInfo{Email: u.Email, FullName: u.FullName, Phone: u.Phone}
			}
			cache[b.UserID] = info
		}
		b.Owner = info
	}
}

func (s *service) notifyCreated(ctx context.Context, b *Booking) {
	owner, ok := s.owner(ctx, b)
	if !ok {
		return
	}
	payload := s.payload(b, owner)
	_ = s.notifier.Dispatch(ctx, notify.Event{
		Type:      notify.EventBookingConfirmation,
		Recipient: owner.Email,
		Payload:   payload,
	})
	_ = s.notifier.Dispatch(ctx, notify.Event{
		Type:      notify.EventBookingAdminNotice,
		Recipient: s.adminEmail,
		Payload:   payload,
	})
}

func (s *service) notifyCancelled(ctx context.Context, b *Booking) {
	owner, ok := s.owner(ctx, b)
	if !ok {
		return
	}
	_ = s.notifier.Dispatch(ctx, notify.Event{
		Type:      notify.EventBookingCancelled,
		Recipient: owner.Email,
		Payload:   s.payload(b, owner),
	})
}

func (s *service) owner(ctx context.Context, b *Booking) (*user.User, bool) {
	if s.profiles == nil {
		return nil, false
	}
	u, err := s.profiles.GetByID(ctx, b.UserID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("booking_id", b.ID).Msg("skipping notification: owner lookup failed")
		return nil, false
	}
	return u, true
}

func (s *service) payload(b *Booking, owner *user.User) notify.BookingPayload {
	p := notify.BookingPayload{
		BookingID:  b.ID,
		UserID:     b.UserID,
		UserEmail:  owner.Email,
		UserName:   owner.DisplayName(),
		CourtID:    b.CourtID,
		Date:       b.Date,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		CoachName:  b.CoachName,
		Membership: string(b.Membership),
		Status:     string(b.Status),
		Notes:      b.Notes,
	}
	if b.Court != nil {
		p.CourtName = b.Court.Name
	}
	return p
}

// lockKeys lists the advisory locks guarding w for userID, in the fixed
// namespace order every caller uses.
func lockKeys(userID string, w Window) []LockKey {
	keys := []LockKey{
		{Namespace: LockUser, Key: userID},
		{Namespace: LockCourtDay, Key: w.CourtID + "|" + w.Date},
	}
	if w.CoachID != "" {
		keys = append(keys, LockKey{Namespace: LockCoachDay, Key: w.CoachID + "|" + w.Date})
	}
	return keys
}

func recordRejection(err error) {
	switch {
	case errors.Is(err, ErrCooldownActive):
		metrics.RecordRejection(metrics.ReasonCooldown)
	case errors.Is(err, ErrResourceUnavailable):
		metrics.RecordRejection(metrics.ReasonResourceConflict)
	case errors.Is(err, ErrCoachUnavailable):
		metrics.RecordRejection(metrics.ReasonCoachConflict)
	default:
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == http.StatusBadRequest {
			metrics.RecordRejection(metrics.ReasonValidation)
		}
	}
}
