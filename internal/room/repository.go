package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, room *Room) error
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	// ListBookable returns every active room that fits at least minCapacity guests, ordered by price.
	ListBookable(ctx context.Context, minCapacity int) ([]*Room, error)
	Update(ctx context.Context, room *Room) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var roomColumns = []string{
	"id", "number", "name", "room_type", "description", "status", "capacity",
	"price_per_night::float8", "created_at", "updated_at",
}

func scanRoom(row pgx.Row, extra ...any) (*Room, error) {
	var r Room
	dest := []any{
		&r.ID, &r.Number, &r.Name, &r.RoomType, &r.Description, &r.Status, &r.Capacity,
		&r.PricePerNight, &r.CreatedAt, &r.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &r, nil
}

// constraintError translates constraint violations into domain errors.
func constraintError(err error) (error, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ErrNumberTaken, true
		case pgerrcode.ForeignKeyViolation:
			return ErrHasBookings, true
		}
	}
	return nil, false
}

func (r *pgxRepository) Create(ctx context.Context, rm *Room) error {
	query, args, err := psql.Insert("public.rooms").
		Columns("number", "name", "room_type", "description", "status", "capacity", "price_per_night").
		Values(rm.Number, rm.Name, rm.RoomType, rm.Description, rm.Status, rm.Capacity, rm.PricePerNight).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create room query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&rm.ID, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
		if mapped, ok := constraintError(err); ok {
			return mapped
		}
		return fmt.Errorf("create room failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Room, error) {
	query, args, err := psql.Select(roomColumns...).
		From("public.rooms").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get room query failed: %w", err)
	}

	rm, err := scanRoom(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room failed: %w", err)
	}
	return rm, nil
}

var sortableColumns = map[string]string{
	"number":          "number",
	"name":            "name",
	"capacity":        "capacity",
	"price_per_night": "price_per_night",
	"created_at":      "created_at",
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	query := psql.Select(append(roomColumns, "count(*) OVER() AS total_count")...).
		From("public.rooms")

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.RoomType != "" {
		query = query.Where(squirrel.Eq{"room_type": filter.RoomType})
	}
	if filter.MinCapacity > 0 {
		query = query.Where(squirrel.GtOrEq{"capacity": filter.MinCapacity})
	}

	orderBy, ok := sortableColumns[filter.SortBy]
	if !ok {
		orderBy = "number"
	}
	orderDir := "ASC"
	if filter.SortOrder == "DESC" {
		orderDir = "DESC"
	}
	query = query.OrderBy(orderBy + " " + orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64((filter.Page - 1) * filter.PageSize))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list rooms query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list rooms failed: %w", err)
	}
	defer rows.Close()

	var result []*Room
	var total int
	for rows.Next() {
		rm, err := scanRoom(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan room failed: %w", err)
		}
		result = append(result, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate rooms failed: %w", err)
	}

	return result, total, nil
}

func (r *pgxRepository) ListBookable(ctx context.Context, minCapacity int) ([]*Room, error) {
	sql, args, err := psql.Select(roomColumns...).
		From("public.rooms").
		Where(squirrel.Eq{"status": StatusActive}).
		Where(squirrel.GtOrEq{"capacity": minCapacity}).
		OrderBy("price_per_night ASC", "number ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookable rooms query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookable rooms failed: %w", err)
	}
	defer rows.Close()

	var result []*Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room failed: %w", err)
		}
		result = append(result, rm)
	}
	return result, rows.Err()
}

func (r *pgxRepository) Update(ctx context.Context, rm *Room) error {
	query, args, err := psql.Update("public.rooms").
		Set("number", rm.Number).
		Set("name", rm.Name).
		Set("room_type", rm.RoomType).
		Set("description", rm.Description).
		Set("status", rm.Status).
		Set("capacity", rm.Capacity).
		Set("price_per_night", rm.PricePerNight).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": rm.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update room query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&rm.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if mapped, ok := constraintError(err); ok {
			return mapped
		}
		return fmt.Errorf("update room failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.rooms").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete room query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if mapped, ok := constraintError(err); ok {
			return mapped
		}
		return fmt.Errorf("delete room failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
