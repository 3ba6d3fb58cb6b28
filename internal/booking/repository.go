package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courtline/court-reservation/internal/db"
)

// Advisory lock namespaces. Keys are always taken in this order.
const (
	LockUser int32 = iota + 1
	LockCourtDay
	LockCoachDay
)

// LockKey identifies one advisory lock inside a namespace.
type LockKey struct {
	Namespace int32
	Key       string
}

type Repository interface {
	// WithTx runs fn in one transaction; repository calls made with the
	// context passed to fn join it.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// Lock takes transaction-scoped advisory locks, in the order given.
	Lock(ctx context.Context, keys ...LockKey) error

	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	Update(ctx context.Context, b *Booking) error
	Delete(ctx context.Context, id string) error

	FindOverlap(ctx context.Context, dim Dimension, w Window, excludeID string) (*Booking, error)
	LatestActiveForUser(ctx context.Context, userID, excludeID string) (*Booking, error)

	// ListForUser returns the user's bookings ordered by (date, start)
	// ascending. fromDate, when set, drops earlier days.
	ListForUser(ctx context.Context, userID, fromDate string) ([]*Booking, error)
	ListSlots(ctx context.Context, courtID, date string) ([]Slot, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
}

var errLockOutsideTx = errors.New("booking: advisory locks require a transaction")

var bookingColumns = []string{
	"id", "user_id", "court_id", "booking_date", "start_time", "end_time",
	"coach_id", "coach_name", "membership_status", "status", "notes",
	"created_at", "updated_at",
}

var dimensionColumns = map[Dimension]string{
	DimensionCourt: "court_id",
	DimensionCoach: "coach_id",
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

func (r *pgxRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.WithTx(ctx, r.pool, fn)
}

func (r *pgxRepository) Lock(ctx context.Context, keys ...LockKey) error {
	tx := db.TxFromContext(ctx)
	if tx == nil {
		return errLockOutsideTx
	}
	for _, k := range keys {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1, hashtext($2))`, k.Namespace, k.Key); err != nil {
			return fmt.Errorf("advisory lock %d/%s failed: %w", k.Namespace, k.Key, err)
		}
	}
	return nil
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := []any{
		&b.ID, &b.UserID, &b.CourtID, &b.Date, &b.StartTime, &b.EndTime,
		&b.CoachID, &b.CoachName, &b.Membership, &b.Status, &b.Notes,
		&b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &b, nil
}

// mapWriteError turns constraint failures on court_id into ErrCourtNotFound.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ForeignKeyViolation:
			if pgErr.ConstraintName == "bookings_court_id_fkey" {
				return ErrCourtNotFound
			}
		case pgerrcode.InvalidTextRepresentation:
			return ErrCourtNotFound
		}
	}
	return err
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	query, args, err := r.psql.Insert("bookings").
		Columns("user_id", "court_id", "booking_date", "start_time", "end_time",
			"coach_id", "coach_name", "membership_status", "status", "notes").
		Values(b.UserID, b.CourtID, b.Date, b.StartTime, b.EndTime,
			b.CoachID, b.CoachName, b.Membership, b.Status, b.Notes).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := r.psql.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.conn(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidText(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking) error {
	query, args, err := r.psql.Update("bookings").
		Set("court_id", b.CourtID).
		Set("booking_date", b.Date).
		Set("start_time", b.StartTime).
		Set("end_time", b.EndTime).
		Set("coach_id", b.CoachID).
		Set("coach_name", b.CoachName).
		Set("membership_status", b.Membership).
		Set("status", b.Status).
		Set("notes", b.Notes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": b.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.conn(ctx).Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		if db.IsInvalidText(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindOverlap uses the half-open rule start < w.End AND end > w.Start.
// Zero-padded HH:MM strings compare in time order.
func (r *pgxRepository) FindOverlap(ctx context.Context, dim Dimension, w Window, excludeID string) (*Booking, error) {
	col, ok := dimensionColumns[dim]
	if !ok {
		return nil, fmt.Errorf("unknown conflict dimension %d", dim)
	}
	key := w.CourtID
	if dim == DimensionCoach {
		key = w.CoachID
	}

	query := r.psql.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{col: key, "booking_date": w.Date}).
		Where(squirrel.NotEq{"status": StatusCancelled}).
		Where(squirrel.Lt{"start_time": w.End}).
		Where(squirrel.Gt{"end_time": w.Start}).
		OrderBy("start_time ASC").
		Limit(1)
	if excludeID != "" {
		query = query.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build overlap query failed: %w", err)
	}

	b, err := scanBooking(r.conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if db.IsInvalidText(err) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("overlap query failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) LatestActiveForUser(ctx context.Context, userID, excludeID string) (*Booking, error) {
	query := r.psql.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.NotEq{"status": StatusCancelled}).
		OrderBy("booking_date DESC", "created_at DESC").
		Limit(1)
	if excludeID != "" {
		query = query.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build latest booking query failed: %w", err)
	}

	b, err := scanBooking(r.conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest booking query failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) ListForUser(ctx context.Context, userID, fromDate string) ([]*Booking, error) {
	query := r.psql.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("booking_date ASC", "start_time ASC")
	if fromDate != "" {
		query = query.Where(squirrel.GtOrEq{"booking_date": fromDate})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user bookings query failed: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list user bookings failed: %w", err)
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *pgxRepository) ListSlots(ctx context.Context, courtID, date string) ([]Slot, error) {
	sql, args, err := r.psql.Select("id", "user_id", "start_time", "end_time").
		From("bookings").
		Where(squirrel.Eq{"court_id": courtID, "booking_date": date}).
		Where(squirrel.NotEq{"status": StatusCancelled}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build availability query failed: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		if db.IsInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("availability query failed: %w", err)
	}
	defer rows.Close()

	var out []Slot
	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.ID, &s.UserID, &s.StartTime, &s.EndTime); err != nil {
			return nil, fmt.Errorf("scan slot failed: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		if db.IsInvalidText(err) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := r.psql.Select(append(bookingColumns, "count(*) OVER() AS total_count")...).From("bookings")

	if filter.CourtID != "" {
		query = query.Where(squirrel.Eq{"court_id": filter.CourtID})
	}
	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.DateFrom != "" {
		query = query.Where(squirrel.GtOrEq{"booking_date": filter.DateFrom})
	}
	if filter.DateTo != "" {
		query = query.Where(squirrel.LtOrEq{"booking_date": filter.DateTo})
	}

	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	query = query.OrderBy("booking_date "+orderDir, "start_time "+orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64((filter.Page - 1) * filter.PageSize))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var out []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}
