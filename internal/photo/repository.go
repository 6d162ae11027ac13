package photo

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
	Create(ctx context.Context, p *Photo) error
	GetByID(ctx context.Context, id string) (*Photo, error)
	ListByRoom(ctx context.Context, roomID string) ([]*Photo, error)
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var photoColumns = []string{
	"id", "room_id", "uploaded_by", "filename", "storage_path", "thumbnail_path", "content_type", "size", "created_at",
}

func scanPhoto(row pgx.Row) (*Photo, error) {
	var p Photo
	if err := row.Scan(&p.ID, &p.RoomID, &p.UploadedBy, &p.Filename, &p.StoragePath, &p.ThumbnailPath,
		&p.ContentType, &p.Size, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pgxRepository) Create(ctx context.Context, p *Photo) error {
	query, args, err := psql.Insert("public.room_photos").
		Columns("id", "room_id", "uploaded_by", "filename", "storage_path", "thumbnail_path", "content_type", "size").
		Values(p.ID, p.RoomID, p.UploadedBy, p.Filename, p.StoragePath, p.ThumbnailPath, p.ContentType, p.Size).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create photo query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&p.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrRoomNotFound
		}
		return fmt.Errorf("create photo failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Photo, error) {
	query, args, err := psql.Select(photoColumns...).
		From("public.room_photos").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get photo query failed: %w", err)
	}

	p, err := scanPhoto(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get photo failed: %w", err)
	}
	return p, nil
}

func (r *pgxRepository) ListByRoom(ctx context.Context, roomID string) ([]*Photo, error) {
	query, args, err := psql.Select(photoColumns...).
		From("public.room_photos").
		Where(squirrel.Eq{"room_id": roomID}).
		OrderBy("created_at ASC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list photos query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list photos failed: %w", err)
	}
	defer rows.Close()

	var result []*Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo failed: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.room_photos").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete photo query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete photo failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
