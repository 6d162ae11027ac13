package booking

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
)

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	GetByNumber(ctx context.Context, number string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	// Update persists the dates, price and status of b.
	Update(ctx context.Context, b *Booking) error
	// ListConfirmed returns the confirmed bookings of the given rooms that overlap [from, to).
	ListConfirmed(ctx context.Context, roomIDs []string, from, to time.Time) ([]*Booking, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var bookingColumns = []string{
	"b.id", "b.booking_number", "b.room_id", "r.number", "r.name",
	"b.user_id", "COALESCE(u.display_name, u.email)",
	"b.check_in", "b.check_out", "b.guests_count", "b.total_price::float8",
	"b.special_requests", "b.status", "b.created_at", "b.updated_at",
}

func selectBookings(columns ...string) squirrel.SelectBuilder {
	return psql.Select(columns...).
		From("public.bookings b").
		Join("public.rooms r ON r.id = b.room_id").
		Join("public.users u ON u.id = b.user_id")
}

// overlapCond matches stays sharing at least one night with [from, to).
// It is the SQL form of Overlaps and is shared by every date-window query.
func overlapCond(from, to time.Time) squirrel.Sqlizer {
	return squirrel.And{
		squirrel.Lt{"b.check_in": to},
		squirrel.Gt{"b.check_out": from},
	}
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := []any{
		&b.ID, &b.BookingNumber, &b.RoomID, &b.RoomNumber, &b.RoomName,
		&b.UserID, &b.UserName,
		&b.CheckIn, &b.CheckOut, &b.GuestsCount, &b.TotalPrice,
		&b.SpecialRequests, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &b, nil
}

// userForeignKey is the Postgres default name of the bookings.user_id reference.
const userForeignKey = "bookings_user_id_fkey"

// constraintError translates constraint violations into domain errors.
func constraintError(err error) (error, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil, false
	}
	switch pgErr.Code {
	case pgerrcode.ExclusionViolation:
		// Another confirmed stay committed first.
		return ErrRoomUnavailable, true
	case pgerrcode.UniqueViolation:
		return errDuplicateNumber, true
	case pgerrcode.CheckViolation:
		return ErrInvalidDateRange, true
	case pgerrcode.ForeignKeyViolation:
		if pgErr.ConstraintName == userForeignKey {
			return ErrUserNotFound, true
		}
		return ErrRoomNotFound, true
	}
	return nil, false
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	query, args, err := psql.Insert("public.bookings").
		Columns("booking_number", "room_id", "user_id", "check_in", "check_out",
			"guests_count", "total_price", "special_requests", "status").
		Values(b.BookingNumber, b.RoomID, b.UserID, b.CheckIn, b.CheckOut,
			b.GuestsCount, b.TotalPrice, b.SpecialRequests, b.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if mapped, ok := constraintError(err); ok {
			return mapped
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) getOne(ctx context.Context, cond squirrel.Sqlizer) (*Booking, error) {
	query, args, err := selectBookings(bookingColumns...).Where(cond).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"b.id": id})
}

func (r *pgxRepository) GetByNumber(ctx context.Context, number string) (*Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"b.booking_number": number})
}

var sortableColumns = map[string]string{
	"check_in":    "b.check_in",
	"check_out":   "b.check_out",
	"created_at":  "b.created_at",
	"total_price": "b.total_price",
}

// listQuery applies filter to the base booking select, without paging.
func listQuery(filter Filter) squirrel.SelectBuilder {
	query := selectBookings(append(bookingColumns, "count(*) OVER() AS total_count")...)

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"b.user_id": filter.UserID})
	}
	if filter.RoomID != "" {
		query = query.Where(squirrel.Eq{"b.room_id": filter.RoomID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	if filter.BookingNumber != "" {
		query = query.Where(squirrel.Eq{"b.booking_number": filter.BookingNumber})
	}
	if filter.From != nil {
		query = query.Where(squirrel.Gt{"b.check_out": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.Lt{"b.check_in": *filter.To})
	}

	orderBy, ok := sortableColumns[filter.SortBy]
	if !ok {
		orderBy = "b.created_at"
	}
	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	return query.OrderBy(orderBy+" "+orderDir, "b.id")
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	sql, args, err := listQuery(filter).
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var result []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}

	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking) error {
	query, args, err := psql.Update("public.bookings").
		Set("check_in", b.CheckIn).
		Set("check_out", b.CheckOut).
		Set("total_price", b.TotalPrice).
		Set("status", b.Status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if mapped, ok := constraintError(err); ok {
			return mapped
		}
		return fmt.Errorf("update booking failed: %w", err)
	}
	return nil
}

// confirmedQuery selects the confirmed stays of roomIDs overlapping [from, to).
func confirmedQuery(roomIDs []string, from, to time.Time) squirrel.SelectBuilder {
	return selectBookings(bookingColumns...).
		Where(squirrel.Eq{"b.room_id": roomIDs}).
		Where(squirrel.Eq{"b.status": StatusConfirmed}).
		Where(overlapCond(from, to)).
		OrderBy("b.check_in ASC", "b.id")
}

func (r *pgxRepository) ListConfirmed(ctx context.Context, roomIDs []string, from, to time.Time) ([]*Booking, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}

	sql, args, err := confirmedQuery(roomIDs, from, to).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list confirmed bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list confirmed bookings failed: %w", err)
	}
	defer rows.Close()

	var result []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}
