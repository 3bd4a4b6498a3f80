package order_events

import (
	"context"

	"dispatch/internal/entities"
	"dispatch/pkg/logger"
)

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

type Service interface {
	HandleOrderPlaced(ctx context.Context, order entities.Order) error
	HandleOrderCancelled(ctx context.Context, order entities.Order) error
}
