package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlekSi/pointer"

	"dispatch/internal/entities"
)

const defaultOpenLimit = 50

// Dispatch - координатор гонки райдеров за заявку. Единственность
// победителя обеспечивают условные UPDATE-ы репозитория, здесь только
// бизнес-правила вокруг них.
type Dispatch struct {
	repository Repository
	presence   Presence
	publisher  Publisher
	pricer     Pricer
	txManager  TxManager
}

func New(
	repository Repository,
	presence Presence,
	publisher Publisher,
	pricer Pricer,
	txManager TxManager,
) *Dispatch {
	return &Dispatch{
		repository: repository,
		presence:   presence,
		publisher:  publisher,
		pricer:     pricer,
		txManager:  txManager,
	}
}

// CreateBroadcast создаёт заявку в статусе placed без назначенного
// райдера. Требует хотя бы одного райдера онлайн: broadcast в пустоту
// гарантированно закончится таймаутом.
func (d *Dispatch) CreateBroadcast(ctx context.Context, order entities.BroadcastOrder) (*entities.DeliveryRequest, error) {
	if err := d.validateOrder(order); err != nil {
		return nil, err
	}

	if err := d.requireOnlinePool(ctx); err != nil {
		return nil, err
	}

	fare := d.pricer.Quote(order.Pickup, order.Dropoff)

	created, err := d.repository.Create(ctx, entities.DeliveryRequestModify{
		OrderRef:        order.OrderRef,
		CustomerID:      order.CustomerID,
		Pickup:          pointer.To(order.Pickup),
		Dropoff:         pointer.To(order.Dropoff),
		ItemDescription: pointer.To(order.ItemDescription),
		Fare:            pointer.To(fare),
	})
	if err != nil {
		return nil, fmt.Errorf("create broadcast request: %w", err)
	}

	d.publisher.RequestChanged(ctx, *created)
	RequestsCreatedTotal.Inc()

	return created, nil
}

// Claim - попытка райдера забрать заявку. Выигрывает тот, чей условный
// UPDATE применился первым; проигравший получает ErrAlreadyClaimed, и
// это не ошибка системы, а нормальный исход гонки.
func (d *Dispatch) Claim(ctx context.Context, requestID, riderID int64) (*entities.DeliveryRequest, error) {
	if !isValidID(requestID) {
		return nil, ErrInvalidRequestID
	}
	if !isValidID(riderID) {
		return nil, ErrInvalidRiderID
	}

	claimed, err := d.repository.ClaimByRider(ctx, requestID, riderID)
	if err != nil {
		if errors.Is(err, ErrAlreadyClaimed) {
			ClaimsTotal.WithLabelValues(claimLost).Inc()
			return nil, ErrAlreadyClaimed
		}
		return nil, fmt.Errorf("claim request: %w", err)
	}

	d.publisher.RequestChanged(ctx, *claimed)
	ClaimsTotal.WithLabelValues(claimWon).Inc()

	return claimed, nil
}

// Expire отменяет заявку по истечении дедлайна, если райдер так и не
// назначен. Клейм, успевший раньше, делает отмену no-op-ом: вызывающий
// смотрит на Claimed() вернувшейся записи.
func (d *Dispatch) Expire(ctx context.Context, requestID int64) (*entities.DeliveryRequest, error) {
	if !isValidID(requestID) {
		return nil, ErrInvalidRequestID
	}

	cancelled, err := d.repository.CancelUnclaimed(ctx, requestID)
	if err != nil {
		if errors.Is(err, ErrAlreadyClaimed) {
			return cancelled, nil
		}
		return nil, fmt.Errorf("expire request: %w", err)
	}

	d.publisher.RequestChanged(ctx, *cancelled)
	RequestsExpiredTotal.Inc()

	return cancelled, nil
}

// RetryBroadcast атомарно гасит старую заявку и создаёт свежую с тем же
// маршрутом и описанием. Если старую уже заклеймили - возвращает
// ErrAlreadyClaimed, ретрай не нужен.
func (d *Dispatch) RetryBroadcast(ctx context.Context, staleID int64) (*entities.DeliveryRequest, error) {
	if !isValidID(staleID) {
		return nil, ErrInvalidRequestID
	}

	if err := d.requireOnlinePool(ctx); err != nil {
		return nil, err
	}

	var stale, fresh *entities.DeliveryRequest
	err := d.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		stale, err = d.repository.CancelUnclaimed(ctx, staleID)
		if err != nil {
			return err
		}

		// OrderRef не переносим: ссылку маркетплейса несёт только
		// первая заявка, уникальный индекс не даст продублировать.
		fresh, err = d.repository.Create(ctx, entities.DeliveryRequestModify{
			CustomerID:      stale.CustomerID,
			Pickup:          pointer.To(stale.Pickup),
			Dropoff:         pointer.To(stale.Dropoff),
			ItemDescription: pointer.To(stale.ItemDescription),
			Fare:            pointer.To(stale.Fare),
		})
		if err != nil {
			return fmt.Errorf("create retry request: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyClaimed) {
			return nil, ErrAlreadyClaimed
		}
		return nil, fmt.Errorf("retry broadcast: %w", err)
	}

	d.publisher.RequestChanged(ctx, *stale)
	d.publisher.RequestChanged(ctx, *fresh)
	RequestsCreatedTotal.Inc()

	return fresh, nil
}

func (d *Dispatch) GetRequest(ctx context.Context, requestID int64) (*entities.DeliveryRequest, error) {
	if !isValidID(requestID) {
		return nil, ErrInvalidRequestID
	}
	return d.repository.GetByID(ctx, requestID)
}

func (d *Dispatch) GetRequestByOrderRef(ctx context.Context, orderRef string) (*entities.DeliveryRequest, error) {
	if orderRef == "" {
		return nil, ErrMissingRequiredFields
	}
	return d.repository.GetByOrderRef(ctx, orderRef)
}

func (d *Dispatch) ListOpen(ctx context.Context, limit int) ([]entities.DeliveryRequest, error) {
	if limit <= 0 {
		limit = defaultOpenLimit
	}
	return d.repository.ListOpen(ctx, limit)
}

// CancelStale - зачистка placed-заявок, чей клиент умер вместе со своим
// countdown-ом.
func (d *Dispatch) CancelStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	rowsAffected, err := d.repository.CancelStalePlaced(ctx, olderThan)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, fmt.Errorf("stale cancel timed out: %w", err)
		}
		return 0, fmt.Errorf("stale cancel: %w", err)
	}
	return rowsAffected, nil
}

func (d *Dispatch) validateOrder(order entities.BroadcastOrder) error {
	if !isValidWaypoint(order.Pickup) || !isValidWaypoint(order.Dropoff) {
		return ErrInvalidWaypoint
	}
	if !isValidDescription(order.ItemDescription) {
		return ErrEmptyDescription
	}
	return nil
}

func (d *Dispatch) requireOnlinePool(ctx context.Context) error {
	pool, err := d.presence.OnlineRiderIDs(ctx)
	if err != nil {
		return fmt.Errorf("online rider pool: %w", err)
	}
	if len(pool) == 0 {
		return ErrNoRidersOnline
	}
	return nil
}
