package message

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, m *Message) error
	List(ctx context.Context, filter Filter) ([]*Message, int, error)
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

func (r *pgxRepository) Create(ctx context.Context, m *Message) error {
	query, args, err := r.psql.Insert("messages").
		Columns("name", "email", "body").
		Values(m.Name, m.Email, m.Body).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create message query failed: %w", err)
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&m.ID, &m.CreatedAt); err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Message, int, error) {
	query := r.psql.Select("id", "name", "email", "body", "created_at", "count(*) OVER() AS total_count").
		From("messages")
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"name": like},
			squirrel.ILike{"email": like},
			squirrel.ILike{"body": like},
		})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	query = query.OrderBy("created_at DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list messages query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages failed: %w", err)
	}
	defer rows.Close()

	var result []*Message
	var total int
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Body, &m.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan message failed: %w", err)
		}
		result = append(result, &m)
	}
	return result, total, rows.Err()
}
