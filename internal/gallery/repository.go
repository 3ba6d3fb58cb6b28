package gallery

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courtline/court-reservation/internal/db"
)

type Repository interface {
	Create(ctx context.Context, img *Image) error
	GetByID(ctx context.Context, id string) (*Image, error)
	List(ctx context.Context, filter Filter) ([]*Image, int, error)
	Update(ctx context.Context, img *Image) error
	Delete(ctx context.Context, id string) error
}

var imageColumns = []string{
	"id", "title", "description", "content_type", "size",
	"storage_path", "thumbnail_path", "uploaded_by", "created_at", "updated_at",
}

type pgxRepository struct {
	pool *pgxpool.Pool
	psql squirrel.StatementBuilderType
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{
		pool: pool,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanImage(row pgx.Row, extra ...any) (*Image, error) {
	var img Image
	dest := []any{
		&img.ID, &img.Title, &img.Description, &img.ContentType, &img.Size,
		&img.StoragePath, &img.ThumbnailPath, &img.UploadedBy, &img.CreatedAt, &img.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *pgxRepository) Create(ctx context.Context, img *Image) error {
	query, args, err := r.psql.Insert("gallery_images").
		Columns("id", "title", "description", "content_type", "size", "storage_path", "thumbnail_path", "uploaded_by").
		Values(img.ID, img.Title, img.Description, img.ContentType, img.Size, img.StoragePath, img.ThumbnailPath, img.UploadedBy).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create image query failed: %w", err)
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&img.CreatedAt, &img.UpdatedAt); err != nil {
		return fmt.Errorf("create image record failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Image, error) {
	query, args, err := r.psql.Select(imageColumns...).From("gallery_images").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get image query failed: %w", err)
	}
	img, err := scanImage(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidText(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get image failed: %w", err)
	}
	return img, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Image, int, error) {
	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	sql, args, err := r.psql.Select(append(imageColumns, "count(*) OVER() AS total_count")...).
		From("gallery_images").
		OrderBy("created_at " + orderDir).
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list images query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list images failed: %w", err)
	}
	defer rows.Close()

	var result []*Image
	var total int
	for rows.Next() {
		img, err := scanImage(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan image failed: %w", err)
		}
		result = append(result, img)
	}
	return result, total, rows.Err()
}

func (r *pgxRepository) Update(ctx context.Context, img *Image) error {
	query, args, err := r.psql.Update("gallery_images").
		Set("title", img.Title).
		Set("description", img.Description).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": img.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update image query failed: %w", err)
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&img.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update image failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM gallery_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete image record failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
