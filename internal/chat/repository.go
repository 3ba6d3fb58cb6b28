package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courtline/court-reservation/internal/db"
)

type Repository interface {
	// FindOrCreate returns the chat between the ordered pair low < high,
	// creating it and both memberships when missing.
	FindOrCreate(ctx context.Context, low, high string) (id string, created bool, err error)
	// GetByID loads a chat with its participants and viewerID's unread count.
	GetByID(ctx context.Context, id, viewerID string) (*Chat, error)
	// ListForUser orders by last activity, newest first.
	ListForUser(ctx context.Context, userID string) ([]*Chat, error)
	Delete(ctx context.Context, id string) error

	// ListMessages returns messages newest first.
	ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*Message, error)
	// CreateMessage stores m, moves the chat's last message and bumps the
	// unread count of every other member, in one transaction.
	CreateMessage(ctx context.Context, m *Message) error
	MarkRead(ctx context.Context, chatID, userID string, at time.Time) error

	// SearchUsers lists active users other than excludeID. An empty query
	// matches everyone.
	SearchUsers(ctx context.Context, excludeID, query string, limit int) ([]Participant, error)
}

var chatColumns = []string{
	"c.id", "c.last_message", "c.last_sender_id", "c.last_message_at", "c.created_at", "c.updated_at",
	"COALESCE(m.unread_count, 0)",
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

func (r *pgxRepository) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *pgxRepository) FindOrCreate(ctx context.Context, low, high string) (string, bool, error) {
	var (
		id      string
		created bool
	)
	err := db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		insert, args, err := r.psql.Insert("chats").
			Columns("user_low", "user_high").
			Values(low, high).
			Suffix("ON CONFLICT (user_low, user_high) DO NOTHING RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("build create chat query failed: %w", err)
		}
		err = r.conn(ctx).QueryRow(ctx, insert, args...).Scan(&id)
		switch {
		case err == nil:
			created = true
		case errors.Is(err, pgx.ErrNoRows):
			// Someone else owns the row; it is committed by the time the insert returns.
			if err := r.conn(ctx).QueryRow(ctx,
				`SELECT id FROM chats WHERE user_low = $1 AND user_high = $2`, low, high,
			).Scan(&id); err != nil {
				return fmt.Errorf("find chat failed: %w", err)
			}
		default:
			return mapUserError(err)
		}

		members, args, err := r.psql.Insert("chat_members").
			Columns("chat_id", "user_id").
			Values(id, low).
			Values(id, high).
			Suffix("ON CONFLICT DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("build chat members query failed: %w", err)
		}
		if _, err := r.conn(ctx).Exec(ctx, members, args...); err != nil {
			return mapUserError(err)
		}
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return id, created, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id, viewerID string) (*Chat, error) {
	query, args, err := r.psql.Select(chatColumns...).
		From("chats c").
		LeftJoin("chat_members m ON m.chat_id = c.id AND m.user_id = ?", viewerID).
		Where(squirrel.Eq{"c.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get chat query failed: %w", err)
	}

	c, err := scanChat(r.conn(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidText(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get chat failed: %w", err)
	}
	if err := r.attachParticipants(ctx, []*Chat{c}); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *pgxRepository) ListForUser(ctx context.Context, userID string) ([]*Chat, error) {
	query, args, err := r.psql.Select(chatColumns...).
		From("chat_members m").
		Join("chats c ON c.id = m.chat_id").
		Where(squirrel.Eq{"m.user_id": userID}).
		OrderBy("c.last_message_at DESC NULLS LAST", "c.updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list chats query failed: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chats failed: %w", err)
	}
	defer rows.Close()

	var result []*Chat
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat failed: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachParticipants(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM chats WHERE id = $1`, id)
	if err != nil {
		if db.IsInvalidText(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete chat failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*Message, error) {
	query, args, err := r.psql.Select(
		"msg.id", "msg.chat_id", "msg.sender_id", "msg.content", "msg.kind", "msg.created_at",
		"u.full_name", "u.email",
	).
		From("chat_messages msg").
		Join("users u ON u.id = msg.sender_id").
		Where(squirrel.Eq{"msg.chat_id": chatID}).
		OrderBy("msg.created_at DESC", "msg.id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list chat messages query failed: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chat messages failed: %w", err)
	}
	defer rows.Close()

	var result []*Message
	for rows.Next() {
		var (
			m    Message
			kind string
			s    Participant
		)
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &kind, &m.CreatedAt, &s.FullName, &s.Email); err != nil {
			return nil, fmt.Errorf("scan chat message failed: %w", err)
		}
		m.Kind = Kind(kind)
		s.UserID = m.SenderID
		m.Sender = &s
		result = append(result, &m)
	}
	return result, rows.Err()
}

func (r *pgxRepository) CreateMessage(ctx context.Context, m *Message) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		insert, args, err := r.psql.Insert("chat_messages").
			Columns("chat_id", "sender_id", "content", "kind").
			Values(m.ChatID, m.SenderID, m.Content, string(m.Kind)).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build create chat message query failed: %w", err)
		}
		if err := r.conn(ctx).QueryRow(ctx, insert, args...).Scan(&m.ID, &m.CreatedAt); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation &&
				pgErr.ConstraintName == "chat_messages_chat_id_fkey" {
				return ErrNotFound
			}
			return fmt.Errorf("create chat message failed: %w", err)
		}

		update, args, err := r.psql.Update("chats").
			Set("last_message", m.Content).
			Set("last_sender_id", m.SenderID).
			Set("last_message_at", m.CreatedAt).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": m.ChatID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build touch chat query failed: %w", err)
		}
		if _, err := r.conn(ctx).Exec(ctx, update, args...); err != nil {
			return fmt.Errorf("touch chat failed: %w", err)
		}

		unread, args, err := r.psql.Update("chat_members").
			Set("unread_count", squirrel.Expr("unread_count + 1")).
			Where(squirrel.Eq{"chat_id": m.ChatID}).
			Where(squirrel.NotEq{"user_id": m.SenderID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build unread query failed: %w", err)
		}
		if _, err := r.conn(ctx).Exec(ctx, unread, args...); err != nil {
			return fmt.Errorf("bump unread count failed: %w", err)
		}
		return nil
	})
}

func (r *pgxRepository) MarkRead(ctx context.Context, chatID, userID string, at time.Time) error {
	query, args, err := r.psql.Update("chat_members").
		Set("unread_count", 0).
		Set("last_read_at", at).
		Where(squirrel.Eq{"chat_id": chatID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark read query failed: %w", err)
	}
	if _, err := r.conn(ctx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("mark chat read failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) SearchUsers(ctx context.Context, excludeID, query string, limit int) ([]Participant, error) {
	q := r.psql.Select("id", "full_name", "email").
		From("users").
		Where(squirrel.NotEq{"id": excludeID}).
		Where(squirrel.Eq{"is_active": true})
	if query != "" {
		like := "%" + query + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"full_name": like},
			squirrel.ILike{"email": like},
		})
	}
	sql, args, err := q.OrderBy("full_name NULLS LAST", "email").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search users query failed: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search users failed: %w", err)
	}
	defer rows.Close()

	var result []Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.UserID, &p.FullName, &p.Email); err != nil {
			return nil, fmt.Errorf("scan user failed: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *pgxRepository) attachParticipants(ctx context.Context, chats []*Chat) error {
	if len(chats) == 0 {
		return nil
	}
	byID := make(map[string]*Chat, len(chats))
	ids := make([]string, len(chats))
	for i, c := range chats {
		byID[c.ID] = c
		ids[i] = c.ID
	}

	query, args, err := r.psql.Select("m.chat_id", "u.id", "u.full_name", "u.email").
		From("chat_members m").
		Join("users u ON u.id = m.user_id").
		Where(squirrel.Eq{"m.chat_id": ids}).
		OrderBy("u.email").
		ToSql()
	if err != nil {
		return fmt.Errorf("build chat participants query failed: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("list chat participants failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			chatID string
			p      Participant
		)
		if err := rows.Scan(&chatID, &p.UserID, &p.FullName, &p.Email); err != nil {
			return fmt.Errorf("scan chat participant failed: %w", err)
		}
		if c, ok := byID[chatID]; ok {
			c.Participants = append(c.Participants, p)
		}
	}
	return rows.Err()
}

func scanChat(row pgx.Row) (*Chat, error) {
	var (
		c        Chat
		content  *string
		senderID *string
		sentAt   *time.Time
	)
	if err := row.Scan(&c.ID, &content, &senderID, &sentAt, &c.CreatedAt, &c.UpdatedAt, &c.UnreadCount); err != nil {
		return nil, err
	}
	if sentAt != nil {
		c.LastMessage = &LastMessage{SentAt: *sentAt}
		if content != nil {
			c.LastMessage.Content = *content
		}
		if senderID != nil {
			c.LastMessage.SenderID = *senderID
		}
	}
	return &c, nil
}

// mapUserError turns a missing or malformed participant id into ErrUserNotFound.
func mapUserError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ForeignKeyViolation, pgerrcode.InvalidTextRepresentation:
			return ErrUserNotFound
		}
	}
	return fmt.Errorf("create chat failed: %w", err)
}
