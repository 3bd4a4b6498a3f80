package order_events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/IBM/sarama"

	"dispatch/internal/entities"
	"dispatch/pkg/logger"
)

// orderEvent - событие маркетплейса. Payload самодостаточен, ходить за
// деталями заказа никуда не нужно.
type orderEvent struct {
	OrderID         string    `json:"order_id"`
	Status          string    `json:"status"`
	CustomerID      *int64    `json:"customer_id,omitempty"`
	PickupLat       float64   `json:"pickup_lat"`
	PickupLon       float64   `json:"pickup_lon"`
	PickupAddress   string    `json:"pickup_address"`
	DropoffLat      float64   `json:"dropoff_lat"`
	DropoffLon      float64   `json:"dropoff_lon"`
	DropoffAddress  string    `json:"dropoff_address"`
	ItemDescription string    `json:"item_description"`
	CreatedAt       time.Time `json:"created_at"`
}

type Handler struct {
	intakeService            Service
	log                      handlerLogger
	messageProcessingTimeout time.Duration
}

func New(log handlerLogger, intakeService Service, timeout time.Duration) *Handler {
	handlerLog := log.With()

	return &Handler{
		intakeService:            intakeService,
		log:                      handlerLog,
		messageProcessingTimeout: timeout,
	}
}

func (h *Handler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *Handler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *Handler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				h.log.Info("order.events: claim.Messages() closed, exiting ConsumeClaim")
				return nil
			}

			shouldExit := h.messageProcessing(sess, message)
			if shouldExit {
				return nil
			}

		case <-sess.Context().Done():
			// Сессия закрыта (rebalance или остановка consumer group) — выходим
			h.log.Info("order.events: session context done, exiting ConsumeClaim")
			return nil
		}
	}
}

// messageProcessing обрабатывает одно сообщение из Kafka.
// Возвращает true, если нужно прервать ConsumeClaim (при отмене контекста).
func (h *Handler) messageProcessing(sess sarama.ConsumerGroupSession, message *sarama.ConsumerMessage) bool {
	ctx, cancel := context.WithTimeout(sess.Context(), h.messageProcessingTimeout)
	defer cancel()

	var event orderEvent
	err := json.Unmarshal(message.Value, &event)
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("order.events handler received bad message")
		sess.MarkMessage(message, "")
		return false
	}

	msgLog := h.log.With(
		logger.NewField("order", event.OrderID),
		logger.NewField("status", event.Status),
		logger.NewField("offset", message.Offset),
	)

	msgLog.Info("order.events processing")

	order := entities.Order{
		ID:         event.OrderID,
		Status:     entities.OrderStatusType(event.Status),
		CustomerID: event.CustomerID,
		Pickup: entities.Waypoint{
			Point:   entities.GeoPoint{Lat: event.PickupLat, Lon: event.PickupLon},
			Address: event.PickupAddress,
		},
		Dropoff: entities.Waypoint{
			Point:   entities.GeoPoint{Lat: event.DropoffLat, Lon: event.DropoffLon},
			Address: event.DropoffAddress,
		},
		ItemDescription: event.ItemDescription,
		CreatedAt:       event.CreatedAt,
	}

	switch order.Status {
	case entities.OrderPlaced:
		err = h.intakeService.HandleOrderPlaced(ctx, order)
	case entities.OrderCancelled:
		err = h.intakeService.HandleOrderCancelled(ctx, order)
	default:
		msgLog.Warn("order.events handler unknown status, skipping")
		sess.MarkMessage(message, "")
		return false
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			msgLog.With(
				logger.NewField("error", err),
			).Warn("order.events handler context cancelled, message will be reprocessed")
			return true
		}

		msgLog.With(
			logger.NewField("error", err),
		).Warn("order.events handler failed to process order")
		sess.MarkMessage(message, "")
		return false
	}

	msgLog.Info("order.events: processed")

	sess.MarkMessage(message, "")
	return false
}
