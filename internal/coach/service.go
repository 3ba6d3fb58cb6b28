package coach

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

const maxNameLength = 100

type Service interface {
	List(ctx context.Context) ([]*Coach, error)
	GetByID(ctx context.Context, id string) (*Coach, error)
	// EnsureExists registers the coach if it is unknown. Calling it for an
	// existing coach is a no-op, so concurrent callers never fail each other.
	EnsureExists(ctx context.Context, id string, name *string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]*Coach, error) {
	return s.repo.List(ctx)
}

func (s *service) GetByID(ctx context.Context, id string) (*Coach, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) EnsureExists(ctx context.Context, id string, name *string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrEmptyID
	}

	c := &Coach{ID: id}
	if name != nil {
		if n := strings.TrimSpace(*name); n != "" {
			if utf8.RuneCountInString(n) > maxNameLength {
				return ErrNameTooLong
			}
			c.Name = &n
		}
	}

	created, err := s.repo.InsertIfMissing(ctx, c)
	if err != nil {
		return err
	}
	if created {
		log.Ctx(ctx).Info().Str("coach_id", id).Msg("coach registered")
	}
	return nil
}
