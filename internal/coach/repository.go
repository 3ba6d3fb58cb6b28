package coach

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
	List(ctx context.Context) ([]*Coach, error)
	GetByID(ctx context.Context, id string) (*Coach, error)
	// InsertIfMissing creates the coach and reports whether a row was added.
	InsertIfMissing(ctx context.Context, c *Coach) (bool, error)
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

func (r *pgxRepository) List(ctx context.Context) ([]*Coach, error) {
	query, args, err := r.psql.Select("id", "name", "created_at").
		From("coaches").
		OrderBy("COALESCE(name, id) ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list coaches query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list coaches failed: %w", err)
	}
	defer rows.Close()

	var out []*Coach
	for rows.Next() {
		var c Coach
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan coach failed: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Coach, error) {
	var c Coach
	err := db.Conn(ctx, r.pool).
		QueryRow(ctx, `SELECT id, name, created_at FROM coaches WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get coach failed: %w", err)
	}
	return &c, nil
}

func (r *pgxRepository) InsertIfMissing(ctx context.Context, c *Coach) (bool, error) {
	query, args, err := r.psql.Insert("coaches").
		Columns("id", "name").
		Values(c.ID, c.Name).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert coach query failed: %w", err)
	}

	ct, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert coach failed: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}
