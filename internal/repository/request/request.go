package request

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"dispatch/internal/entities"
	"dispatch/internal/repository"
	"dispatch/internal/service/dispatch"
)

const requestColumns = `
	id, order_ref, customer_id, rider_id,
	pickup_lat, pickup_lon, pickup_address,
	dropoff_lat, dropoff_lon, dropoff_address,
	item_description,
	total_cents, rider_earning_cents, commission_cents, distance_meters,
	status, created_at, updated_at
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

func (r *Repository) Create(ctx context.Context, modify entities.DeliveryRequestModify) (*entities.DeliveryRequest, error) {
	if modify.Pickup == nil || modify.Dropoff == nil || modify.ItemDescription == nil || modify.Fare == nil {
		return nil, dispatch.ErrMissingRequiredFields
	}

	query := `
		INSERT INTO delivery_requests (
			order_ref, customer_id,
			pickup_lat, pickup_lon, pickup_address,
			dropoff_lat, dropoff_lon, dropoff_address,
			item_description,
			total_cents, rider_earning_cents, commission_cents, distance_meters,
			status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 'placed')
		RETURNING` + requestColumns

	row := r.querier.QueryRow(
		ctx,
		query,
		modify.OrderRef,
		modify.CustomerID,
		modify.Pickup.Point.Lat,
		modify.Pickup.Point.Lon,
		modify.Pickup.Address,
		modify.Dropoff.Point.Lat,
		modify.Dropoff.Point.Lon,
		modify.Dropoff.Address,
		*modify.ItemDescription,
		modify.Fare.TotalCents,
		modify.Fare.RiderEarningCents,
		modify.Fare.CommissionCents,
		modify.Fare.DistanceMeters,
	)

	requestDB, err := scanRequest(row)
	if err != nil {
		if repository.IsPgErrorWithCode(err, repository.PgErrUniqueViolation) {
			return nil, dispatch.ErrOrderAlreadyDispatched
		}
		return nil, fmt.Errorf("unexpected request repository create error: %w", err)
	}

	return ToDomain(requestDB), nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*entities.DeliveryRequest, error) {
	query := `SELECT` + requestColumns + `FROM delivery_requests WHERE id = $1`

	requestDB, err := scanRequest(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dispatch.ErrRequestNotFound
		}
		return nil, fmt.Errorf("unexpected request repository get error: %w", err)
	}

	return ToDomain(requestDB), nil
}

func (r *Repository) GetByOrderRef(ctx context.Context, orderRef string) (*entities.DeliveryRequest, error) {
	query := `SELECT` + requestColumns + `FROM delivery_requests WHERE order_ref = $1`

	requestDB, err := scanRequest(r.querier.QueryRow(ctx, query, orderRef))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dispatch.ErrRequestNotFound
		}
		return nil, fmt.Errorf("unexpected request repository get by order ref error: %w", err)
	}

	return ToDomain(requestDB), nil
}

// ListOpen возвращает заявки, доступные для клейма, новые сверху.
func (r *Repository) ListOpen(ctx context.Context, limit int) ([]entities.DeliveryRequest, error) {
	builder := sq.Select(
		"id", "order_ref", "customer_id", "rider_id",
		"pickup_lat", "pickup_lon", "pickup_address",
		"dropoff_lat", "dropoff_lon", "dropoff_address",
		"item_description",
		"total_cents", "rider_earning_cents", "commission_cents", "distance_meters",
		"status", "created_at", "updated_at",
	).
		From("delivery_requests").
		Where(sq.Eq{"status": entities.RequestPlaced.String()}).
		Where("rider_id IS NULL").
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build open requests query: %w", err)
	}

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("unexpected request repository list open error: %w", err)
	}
	defer rows.Close()

	var result []entities.DeliveryRequest
	for rows.Next() {
		requestDB, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan open request: %w", err)
		}
		result = append(result, *ToDomain(requestDB))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate open requests: %w", err)
	}

	return result, nil
}

// ClaimByRider - атомарный условный UPDATE. Победителя определяет
// порядок применения UPDATE-ов в Postgres; никакого read-then-write
// на уровне приложения.
func (r *Repository) ClaimByRider(ctx context.Context, requestID, riderID int64) (*entities.DeliveryRequest, error) {
	query := `
		UPDATE delivery_requests
		SET rider_id = $2,
		    status = 'accepted',
		    updated_at = NOW()
		WHERE id = $1
		  AND rider_id IS NULL
		  AND status = 'placed'
		RETURNING` + requestColumns

	requestDB, err := scanRequest(r.querier.QueryRow(ctx, query, requestID, riderID))
	if err == nil {
		return ToDomain(requestDB), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("unexpected request repository claim error: %w", err)
	}

	// Условие не сработало: либо заявки нет, либо гонка уже проиграна.
	current, getErr := r.GetByID(ctx, requestID)
	if getErr != nil {
		return nil, getErr
	}
	return current, dispatch.ErrAlreadyClaimed
}

// CancelUnclaimed переводит заявку в cancelled, только если райдер всё
// ещё не назначен. Успевший раньше клейм делает отмену no-op-ом.
func (r *Repository) CancelUnclaimed(ctx context.Context, requestID int64) (*entities.DeliveryRequest, error) {
	query := `
		UPDATE delivery_requests
		SET status = 'cancelled',
		    updated_at = NOW()
		WHERE id = $1
		  AND rider_id IS NULL
		  AND status = 'placed'
		RETURNING` + requestColumns

	requestDB, err := scanRequest(r.querier.QueryRow(ctx, query, requestID))
	if err == nil {
		return ToDomain(requestDB), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("unexpected request repository cancel error: %w", err)
	}

	current, getErr := r.GetByID(ctx, requestID)
	if getErr != nil {
		return nil, getErr
	}
	if current.Claimed() {
		return current, dispatch.ErrAlreadyClaimed
	}
	// Уже cancelled: повторная отмена идемпотентна.
	return current, nil
}

// CancelStalePlaced зачищает "зомби"-заявки, у которых клиентский
// countdown умер вместе с клиентом.
func (r *Repository) CancelStalePlaced(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		UPDATE delivery_requests
		SET status = 'cancelled',
		    updated_at = NOW()
		WHERE status = 'placed'
		  AND rider_id IS NULL
		  AND created_at < NOW() - $1::interval
	`

	result, err := r.querier.Exec(ctx, query, olderThan.String())
	if err != nil {
		return 0, fmt.Errorf("unexpected request repository stale cancel error: %w", err)
	}

	return result.RowsAffected(), nil
}

func scanRequest(row pgx.Row) (*RequestDB, error) {
	var requestDB RequestDB
	err := row.Scan(
		&requestDB.ID,
		&requestDB.OrderRef,
		&requestDB.CustomerID,
		&requestDB.RiderID,
		&requestDB.PickupLat,
		&requestDB.PickupLon,
		&requestDB.PickupAddress,
		&requestDB.DropoffLat,
		&requestDB.DropoffLon,
		&requestDB.DropoffAddress,
		&requestDB.ItemDescription,
		&requestDB.TotalCents,
		&requestDB.RiderEarningCents,
		&requestDB.CommissionCents,
		&requestDB.DistanceMeters,
		&requestDB.Status,
		&requestDB.CreatedAt,
		&requestDB.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &requestDB, nil
}
