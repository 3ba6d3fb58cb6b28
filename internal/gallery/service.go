package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/courtline/court-reservation/internal/pkg/storage"
)

const (
	maxTitleLength       = 100
	maxDescriptionLength = 500
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UploadInput carries one image upload. The content type is sniffed from the
// bytes; whatever the client declared is ignored.
type UploadInput struct {
	Title       string
	Description *string
	Content     io.Reader
	UploadedBy  string
}

type UpdateRequest struct {
	Title       *string
	Description *string
}

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*Image, error)
	GetByID(ctx context.Context, id string) (*Image, error)
	List(ctx context.Context, filter Filter) ([]*Image, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Image, error)
	Delete(ctx context.Context, id string) error
	Open(ctx context.Context, id string) (io.ReadCloser, *Image, error)
	OpenThumbnail(ctx context.Context, id string) (io.ReadCloser, *Image, error)
}

type thumbnailer interface {
	Thumbnail(content io.Reader) (*bytes.Buffer, error)
}

type service struct {
	repo    Repository
	storage storage.Storage
	thumbs  thumbnailer
}

func NewService(repo Repository, store storage.Storage) Service {
	return &service{
		repo:    repo,
		storage: store,
		thumbs:  storage.NewImageProcessor(),
	}
}

func (s *service) Upload(ctx context.Context, in UploadInput) (*Image, error) {
	img := &Image{
		Title:       strings.TrimSpace(in.Title),
		Description: trimOptional(in.Description),
	}
	if in.UploadedBy != "" {
		uploader := in.UploadedBy
		img.UploadedBy = &uploader
	}
	if err := validate(img); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(in.Content, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}
	mt := mimetype.Detect(data)
	if !allowedTypes[mt.String()] {
		return nil, ErrUnsupportedType
	}

	img.ID = uuid.NewString()
	img.ContentType = mt.String()
	img.Size = int64(len(data))

	// Sharded by id prefix: gallery/ab/<uuid>.png
	shard := img.ID[:2]
	img.StoragePath = fmt.Sprintf("gallery/%s/%s%s", shard, img.ID, mt.Extension())
	if err := s.storage.Save(ctx, img.StoragePath, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	if thumb, err := s.thumbs.Thumbnail(bytes.NewReader(data)); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("image_id", img.ID).Msg("thumbnail generation failed")
	} else {
		path := fmt.Sprintf("gallery/%s/%s_thumb.jpg", shard, img.ID)
		if err := s.storage.Save(ctx, path, thumb); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("image_id", img.ID).Msg("thumbnail store failed")
		} else {
			img.ThumbnailPath = &path
		}
	}

	if err := s.repo.Create(ctx, img); err != nil {
		s.removeBlobs(ctx, img)
		return nil, err
	}

	log.Ctx(ctx).Info().Str("image_id", img.ID).Str("content_type", img.ContentType).
		Int64("size", img.Size).Msg("gallery image uploaded")
	return img, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Image, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Image, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Image, error) {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		img.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		img.Description = trimOptional(req.Description)
	}
	if err := validate(img); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

// Delete drops the record first; stored blobs are removed best effort.
func (s *service) Delete(ctx context.Context, id string) error {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeBlobs(ctx, img)
	return nil
}

func (s *service) Open(ctx context.Context, id string) (io.ReadCloser, *Image, error) {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.storage.Get(ctx, img.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return rc, img, nil
}

func (s *service) OpenThumbnail(ctx context.Context, id string) (io.ReadCloser, *Image, error) {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if img.ThumbnailPath == nil {
		return nil, nil, ErrThumbnailUnavailable
	}
	rc, err := s.storage.Get(ctx, *img.ThumbnailPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrThumbnailUnavailable
		}
		return nil, nil, err
	}
	return rc, img, nil
}

func (s *service) removeBlobs(ctx context.Context, img *Image) {
	paths := []string{img.StoragePath}
	if img.ThumbnailPath != nil {
		paths = append(paths, *img.ThumbnailPath)
	}
	for _, p := range paths {
		if err := s.storage.Delete(ctx, p); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("path", p).Msg("failed to remove stored blob")
		}
	}
}

func validate(img *Image) error {
	if img.Title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(img.Title) > maxTitleLength {
		return ErrTitleTooLong
	}
	if img.Description != nil && utf8.RuneCountInString(*img.Description) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

func trimOptional(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
