package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/courtline/court-reservation/internal/auth"
	"github.com/courtline/court-reservation/internal/pkg/clock"
)

const (
	minPasswordLength = 8
	maxFullNameLength = 100
	maxPhoneLength    = 30
)

// Service defines business logic related to profiles.
type Service interface {
	Register(ctx context.Context, email, password, fullName string) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	IsAdmin(ctx context.Context, id string) (bool, error)
	UpdateProfile(ctx context.Context, id string, req ProfileUpdate) (*User, error)
	List(ctx context.Context, filter Filter) ([]*User, int, error)
	AdminUpdate(ctx context.Context, id string, req AdminUpdate) (*User, error)
}

type service struct {
	repo   Repository
	hasher auth.PasswordHasher
	clock  clock.Clock
}

// NewService creates a new user Service.
func NewService(repo Repository, hasher auth.PasswordHasher, clk clock.Clock) Service {
	return &service{
		repo:   repo,
		hasher: hasher,
		clock:  clk,
	}
}

func (s *service) Register(ctx context.Context, email, password, fullName string) (*User, error) {
	cleanEmail := normalizeEmail(email)
	if cleanEmail == "" {
		return nil, ErrEmailRequired
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	name := optionalString(fullName)
	if err := validateProfile(name, nil); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		Email:        cleanEmail,
		PasswordHash: hash,
		FullName:     name,
		IsActive:     true,
	}

	// The unique index on email decides races between concurrent registrations.
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	cleanEmail := normalizeEmail(email)
	if cleanEmail == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, cleanEmail)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}

	// Inactive accounts get the same answer as a wrong password.
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.clock.Now()
	if err := s.repo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("user_id", u.ID).Msg("failed to record last login")
	} else {
		u.LastLoginAt = &now
	}
	return u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// IsAdmin reports the privileged flag. Unknown or inactive users are never admins.
func (s *service) IsAdmin(ctx context.Context, id string) (bool, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return u.IsActive && u.IsAdmin, nil
}

func (s *service) UpdateProfile(ctx context.Context, id string, req ProfileUpdate) (*User, error) {
	return s.AdminUpdate(ctx, id, AdminUpdate{FullName: req.FullName, Phone: req.Phone})
}

func (s *service) List(ctx context.Context, filter Filter) ([]*User, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) AdminUpdate(ctx context.Context, id string, req AdminUpdate) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		u.FullName = optionalString(*req.FullName)
	}
	if req.Phone != nil {
		u.Phone = optionalString(*req.Phone)
	}
	if err := validateProfile(u.FullName, u.Phone); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.IsAdmin != nil {
		u.IsAdmin = *req.IsAdmin
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func validateProfile(fullName, phone *string) error {
	if fullName != nil && utf8.RuneCountInString(*fullName) > maxFullNameLength {
		return ErrFullNameTooLong
	}
	if phone != nil && utf8.RuneCountInString(*phone) > maxPhoneLength {
		return ErrPhoneTooLong
	}
	return nil
}

// optionalString trims s and maps blank input to nil.
func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// normalizeEmail trims spaces and lowercases the email.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
