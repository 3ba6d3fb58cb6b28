package user

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/courtline/court-reservation/internal/auth"
	"github.com/courtline/court-reservation/internal/pkg/clock"
)

type memRepo struct {
	mu    sync.Mutex
	users map[string]*User
	seq   int
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]*User{}}
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) GetByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrEmailAlreadyUsed
		}
	}
	m.seq++
	u.ID = fmt.Sprintf("user-%d", m.seq)
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memRepo) UpdateLastLogin(_ context.Context, id string, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLoginAt = &t
	return nil
}

func (m *memRepo) List(_ context.Context, _ Filter) ([]*User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *memRepo) Update(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func newTestService() (Service, *memRepo) {
	repo := newMemRepo()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return NewService(repo, auth.NewBcryptPasswordHasher(bcrypt.MinCost), clock.NewFixed(now)), repo
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Alice@Example.com ", "password1", " Alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	require.NotNil(t, u.FullName)
	assert.Equal(t, "Alice", *u.FullName)
	assert.False(t, u.IsAdmin)

	_, err = svc.Register(ctx, "alice@example.com", "password2", "")
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)

	logged, err := svc.Login(ctx, "ALICE@example.com", "password1")
	require.NoError(t, err)
	require.NotNil(t, logged.LastLoginAt)

	_, err = svc.Login(ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_RegisterValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, " ", "password1", "")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.Register(ctx, "bob@example.com", "short", "")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestService_InactiveUserCannotLoginOrBeAdmin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "carol@example.com", "password1", "")
	require.NoError(t, err)

	yes := true
	no := false
	_, err = svc.AdminUpdate(ctx, u.ID, AdminUpdate{IsAdmin: &yes})
	require.NoError(t, err)

	isAdmin, err := svc.IsAdmin(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	_, err = svc.AdminUpdate(ctx, u.ID, AdminUpdate{IsActive: &no})
	require.NoError(t, err)

	isAdmin, err = svc.IsAdmin(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	_, err = svc.Login(ctx, "carol@example.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	isAdmin, err = svc.IsAdmin(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, isAdmin)
}

func TestService_UpdateProfile(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "dan@example.com", "password1", "Dan")
	require.NoError(t, err)

	phone := "0912-345-678"
	blank := "  "
	updated, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdate{FullName: &blank, Phone: &phone})
	require.NoError(t, err)
	assert.Nil(t, updated.FullName)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, phone, *updated.Phone)
	assert.Equal(t, "dan@example.com", updated.DisplayName())

	long := "0123456789012345678901234567890123"
	_, err = svc.UpdateProfile(ctx, u.ID, ProfileUpdate{Phone: &long})
	assert.ErrorIs(t, err, ErrPhoneTooLong)
}
