package court

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 500
)

var colorPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

type CreateRequest struct {
	Name        string
	Color       string
	Description *string
	IsActive    *bool
}

type UpdateRequest struct {
	Name        *string
	Color       *string
	Description *string
	IsActive    *bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Court, error)
	GetByID(ctx context.Context, id string) (*Court, error)
	List(ctx context.Context, filter Filter) ([]*Court, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Court, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Court, error) {
	c := &Court{
		Name:        strings.TrimSpace(req.Name),
		Color:       strings.TrimSpace(req.Color),
		Description: req.Description,
		IsActive:    true,
	}
	if c.Color == "" {
		c.Color = DefaultColor
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := validate(c); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Court, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Court, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Court, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Color != nil {
		c.Color = strings.TrimSpace(*req.Color)
	}
	if req.Description != nil {
		if d := strings.TrimSpace(*req.Description); d == "" {
			c.Description = nil
		} else {
			c.Description = &d
		}
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := validate(c); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a court. Courts referenced by bookings cannot be removed.
func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validate(c *Court) error {
	if c.Name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(c.Name) > maxNameLength {
		return ErrNameTooLong
	}
	if !colorPattern.MatchString(c.Color) {
		return ErrInvalidColor
	}
	if c.Description != nil && utf8.RuneCountInString(*c.Description) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}
