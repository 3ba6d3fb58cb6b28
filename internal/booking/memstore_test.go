package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory Repository. WithTx holds a single mutex, which
// gives the same serialization the advisory locks give in Postgres.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	bookings map[string]*Booking
	seq      int
	now      time.Time
	locks    [][]LockKey
	inTx     bool
	failNext error
}

func newMemStore() *memStore {
	return &memStore{
		bookings: map[string]*Booking{},
		now:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

type memTxKey struct{}

func (m *memStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(context.WithValue(ctx, memTxKey{}, true))
}

func (m *memStore) Lock(ctx context.Context, keys ...LockKey) error {
	if ctx.Value(memTxKey{}) == nil {
		return errLockOutsideTx
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks = append(m.locks, keys)
	return nil
}

func (m *memStore) Create(_ context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.seq++
	m.now = m.now.Add(time.Second)
	b.ID = fmt.Sprintf("b-%03d", m.seq)
	b.CreatedAt = m.now
	b.UpdatedAt = m.now
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) Update(_ context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	m.now = m.now.Add(time.Second)
	b.UpdatedAt = m.now
	cp := *b
	cp.Court, cp.Owner = nil, nil
	m.bookings[b.ID] = &cp
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(m.bookings, id)
	return nil
}

func (m *memStore) FindOverlap(_ context.Context, dim Dimension, w Window, excludeID string) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var hits []*Booking
	for _, b := range m.bookings {
		if !b.Active() || b.ID == excludeID || b.Date != w.Date {
			continue
		}
		switch dim {
		case DimensionCourt:
			if b.CourtID != w.CourtID {
				continue
			}
		case DimensionCoach:
			if b.CoachID == nil || *b.CoachID != w.CoachID {
				continue
			}
		}
		if b.Window().Overlaps(w) {
			hits = append(hits, b)
		}
	}
	if len(hits) == 0 {
		return nil, nil
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].StartTime < hits[j].StartTime })
	cp := *hits[0]
	return &cp, nil
}

func (m *memStore) LatestActiveForUser(_ context.Context, userID, excludeID string) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *Booking
	for _, b := range m.bookings {
		if b.UserID != userID || !b.Active() || b.ID == excludeID {
			continue
		}
		if latest == nil || b.Date > latest.Date ||
			(b.Date == latest.Date && b.CreatedAt.After(latest.CreatedAt)) {
			latest = b
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (m *memStore) ListForUser(_ context.Context, userID, fromDate string) ([]*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Booking
	for _, b := range m.bookings {
		if b.UserID != userID || (fromDate != "" && b.Date < fromDate) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (m *memStore) ListSlots(_ context.Context, courtID, date string) ([]Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Slot
	for _, b := range m.bookings {
		if b.CourtID == courtID && b.Date == date && b.Active() {
			out = append(out, Slot{ID: b.ID, UserID: b.UserID, StartTime: b.StartTime, EndTime: b.EndTime})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (m *memStore) List(_ context.Context, f Filter) ([]*Booking, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Booking
	for _, b := range m.bookings {
		if f.CourtID != "" && b.CourtID != f.CourtID {
			continue
		}
		if f.Status != "" && string(b.Status) != f.Status {
			continue
		}
		if f.DateFrom != "" && b.Date < f.DateFrom {
			continue
		}
		if f.DateTo != "" && b.Date > f.DateTo {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].StartTime > out[j].StartTime
	})
	return out, len(out), nil
}
