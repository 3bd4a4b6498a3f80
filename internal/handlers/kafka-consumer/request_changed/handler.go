// Package request_changed раздаёт изменения заявок ожидающим клиентам
// этого процесса. Kafka несёт события между инстансами, локально их
// дальше развозит watch.Hub. Дубли безопасны: подписчики идемпотентны.
package request_changed

import (
	"encoding/json"

	"github.com/IBM/sarama"

	"dispatch/internal/dto"
	"dispatch/pkg/logger"
)

type Handler struct {
	sink Sink
	log  handlerLogger
}

func New(log handlerLogger, sink Sink) *Handler {
	handlerLog := log.With()

	return &Handler{
		sink: sink,
		log:  handlerLog,
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
				h.log.Info("request.changed: claim.Messages() closed, exiting ConsumeClaim")
				return nil
			}

			h.messageProcessing(sess, message)

		case <-sess.Context().Done():
			h.log.Info("request.changed: session context done, exiting ConsumeClaim")
			return nil
		}
	}
}

// messageProcessing раскладывает событие в локальную шину. Ошибок
// обработки тут нет: кривое сообщение логируем и пропускаем, состояние
// в store первично.
func (h *Handler) messageProcessing(sess sarama.ConsumerGroupSession, message *sarama.ConsumerMessage) {
	var event dto.DeliveryRequest
	err := json.Unmarshal(message.Value, &event)
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("request.changed handler received bad message")
		sess.MarkMessage(message, "")
		return
	}

	request := dto.ToRequestEntity(event)
	h.sink.Publish(request.ID, request)

	sess.MarkMessage(message, "")
}
