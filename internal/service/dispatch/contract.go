package dispatch

import (
	"context"
	"time"

	"dispatch/internal/entities"
)

type Repository interface {
	Create(ctx context.Context, modify entities.DeliveryRequestModify) (*entities.DeliveryRequest, error)
	GetByID(ctx context.Context, id int64) (*entities.DeliveryRequest, error)
	GetByOrderRef(ctx context.Context, orderRef string) (*entities.DeliveryRequest, error)
	ListOpen(ctx context.Context, limit int) ([]entities.DeliveryRequest, error)

	ClaimByRider(ctx context.Context, requestID, riderID int64) (*entities.DeliveryRequest, error)
	CancelUnclaimed(ctx context.Context, requestID int64) (*entities.DeliveryRequest, error)
	CancelStalePlaced(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Presence - внешний пул онлайн-райдеров; диспетчер его только читает.
type Presence interface {
	OnlineRiderIDs(ctx context.Context) ([]int64, error)
}

// Publisher раздаёт зафиксированные изменения заявки подписчикам.
// Доставка best-effort: закоммиченное состояние первично, у ожидающего
// клиента всегда есть собственный таймаут.
type Publisher interface {
	RequestChanged(ctx context.Context, request entities.DeliveryRequest)
}

// Pricer считает тариф один раз при создании заявки.
type Pricer interface {
	Quote(pickup, dropoff entities.Waypoint) entities.Fare
}

type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
