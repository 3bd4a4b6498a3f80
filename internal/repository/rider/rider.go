package rider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"dispatch/internal/entities"
	"dispatch/internal/repository"
	riderservice "dispatch/internal/service/rider"
)

const riderColumns = `
	id, name, phone, vehicle_type, image_url, presence, last_seen_at, created_at, updated_at
`

type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	querier Querier
}

func New(querier Querier) *Repository {
	return &Repository{
		querier: querier,
	}
}

func (r *Repository) Create(ctx context.Context, modify entities.RiderModify) (int64, error) {
	query := `
		INSERT INTO riders (name, phone, vehicle_type, image_url, presence)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.querier.QueryRow(
		ctx,
		query,
		modify.Name,
		modify.Phone,
		(*string)(modify.VehicleType),
		orEmpty(modify.ImageURL),
		entities.DefaultPresenceType.String(),
	).Scan(&id)
	if err != nil {
		if repository.IsPgErrorWithCode(err, repository.PgErrUniqueViolation) {
			return 0, riderservice.ErrConflict
		}
		return 0, fmt.Errorf("unexpected rider repository create error: %w", err)
	}

	return id, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*entities.Rider, error) {
	query := `SELECT` + riderColumns + `FROM riders WHERE id = $1`

	riderDB, err := scanRider(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, riderservice.ErrRiderNotFound
		}
		return nil, fmt.Errorf("unexpected rider repository get error: %w", err)
	}

	return ToDomain(riderDB), nil
}

func (r *Repository) Update(ctx context.Context, modify entities.RiderModify) (*entities.Rider, error) {
	if modify.ID == nil {
		return nil, riderservice.ErrInvalidRiderID
	}

	query := `
		UPDATE riders
		SET name = COALESCE($2, name),
		    phone = COALESCE($3, phone),
		    vehicle_type = COALESCE($4, vehicle_type),
		    image_url = COALESCE($5, image_url),
		    presence = COALESCE($6, presence),
		    last_seen_at = CASE WHEN $6 IS NOT NULL THEN NOW() ELSE last_seen_at END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING` + riderColumns

	riderDB, err := scanRider(r.querier.QueryRow(
		ctx,
		query,
		*modify.ID,
		modify.Name,
		modify.Phone,
		(*string)(modify.VehicleType),
		modify.ImageURL,
		(*string)(modify.Presence),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, riderservice.ErrRiderNotFound
		}
		return nil, fmt.Errorf("unexpected rider repository update error: %w", err)
	}

	return ToDomain(riderDB), nil
}

// Heartbeat продлевает присутствие и возвращает актуальную запись.
func (r *Repository) Heartbeat(ctx context.Context, id int64) (*entities.Rider, error) {
	query := `
		UPDATE riders
		SET presence = CASE WHEN presence = 'offline' THEN 'online' ELSE presence END,
		    last_seen_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING` + riderColumns

	riderDB, err := scanRider(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, riderservice.ErrRiderNotFound
		}
		return nil, fmt.Errorf("unexpected rider repository heartbeat error: %w", err)
	}

	return ToDomain(riderDB), nil
}

// ListOnlineIDs - пул райдеров, которым виден broadcast: presence online
// и живой heartbeat.
func (r *Repository) ListOnlineIDs(ctx context.Context, seenWithin time.Duration) ([]int64, error) {
	query := `
		SELECT id
		FROM riders
		WHERE presence = 'online'
		  AND last_seen_at >= NOW() - $1::interval
		ORDER BY id
	`

	rows, err := r.querier.Query(ctx, query, seenWithin.String())
	if err != nil {
		return nil, fmt.Errorf("unexpected rider repository list online error: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan online rider id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate online riders: %w", err)
	}

	return ids, nil
}

// MarkStaleOffline переводит в offline райдеров с протухшим heartbeat.
func (r *Repository) MarkStaleOffline(ctx context.Context, seenWithin time.Duration) (int64, error) {
	query := `
		UPDATE riders
		SET presence = 'offline',
		    updated_at = NOW()
		WHERE presence IN ('online', 'busy')
		  AND last_seen_at < NOW() - $1::interval
	`

	result, err := r.querier.Exec(ctx, query, seenWithin.String())
	if err != nil {
		return 0, fmt.Errorf("unexpected rider repository stale offline error: %w", err)
	}

	return result.RowsAffected(), nil
}

func scanRider(row pgx.Row) (*RiderDB, error) {
	var riderDB RiderDB
	err := row.Scan(
		&riderDB.ID,
		&riderDB.Name,
		&riderDB.Phone,
		&riderDB.VehicleType,
		&riderDB.ImageURL,
		&riderDB.Presence,
		&riderDB.LastSeenAt,
		&riderDB.CreatedAt,
		&riderDB.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &riderDB, nil
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
