package intake

import (
	"context"

	"dispatch/internal/entities"
	"dispatch/pkg/logger"
	"dispatch/pkg/watch"
)

type serviceLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

// Coordinator - операции гонки, которые дергает воркер маркетплейса.
// Надмножество requester.Coordinator: headless-сессии нужны те же
// операции, что и живому заказчику.
type Coordinator interface {
	CreateBroadcast(ctx context.Context, order entities.BroadcastOrder) (*entities.DeliveryRequest, error)
	RetryBroadcast(ctx context.Context, staleID int64) (*entities.DeliveryRequest, error)
	Expire(ctx context.Context, requestID int64) (*entities.DeliveryRequest, error)
	GetRequest(ctx context.Context, requestID int64) (*entities.DeliveryRequest, error)
	GetRequestByOrderRef(ctx context.Context, orderRef string) (*entities.DeliveryRequest, error)
}

// Profiles отдаёт публичную карточку назначенного райдера.
type Profiles interface {
	GetProfile(ctx context.Context, riderID int64) (*entities.RiderProfile, error)
}

// Watcher - шина изменений заявок, питается из request.changed.
type Watcher = watch.Bus[entities.DeliveryRequest]
