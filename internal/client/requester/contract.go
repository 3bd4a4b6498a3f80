package requester

import (
	"context"

	"dispatch/internal/entities"
	"dispatch/pkg/watch"
)

// Coordinator - серверная сторона гонки; сессия заказчика ходит в неё
// за созданием, отменой и ретраем заявки.
type Coordinator interface {
	CreateBroadcast(ctx context.Context, order entities.BroadcastOrder) (*entities.DeliveryRequest, error)
	Expire(ctx context.Context, requestID int64) (*entities.DeliveryRequest, error)
	RetryBroadcast(ctx context.Context, staleID int64) (*entities.DeliveryRequest, error)
	GetRequest(ctx context.Context, requestID int64) (*entities.DeliveryRequest, error)
}

// Profiles отдаёт публичную карточку назначенного райдера.
type Profiles interface {
	GetProfile(ctx context.Context, riderID int64) (*entities.RiderProfile, error)
}

// Watcher - шина уведомлений об изменениях заявки.
type Watcher = watch.Bus[entities.DeliveryRequest]
