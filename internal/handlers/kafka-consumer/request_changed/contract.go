package request_changed

import (
	"dispatch/internal/entities"
	"dispatch/pkg/logger"
	"dispatch/pkg/watch"
)

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

// Sink - локальная шина, в которую складываются прилетевшие из Kafka
// изменения заявок.
type Sink = watch.Sink[entities.DeliveryRequest]
