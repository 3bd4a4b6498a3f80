// Package publisher - раздача событий request.changed. Сервис публикует
// каждое зафиксированное изменение заявки; локальный Hub будит ожидающих
// клиентов этого процесса, Kafka доносит событие до остальных инстансов.
// Доставка best-effort: потерянное событие компенсирует таймаут клиента.
package publisher

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/IBM/sarama"

	"dispatch/internal/dto"
	"dispatch/internal/entities"
	"dispatch/pkg/logger"
	"dispatch/pkg/watch"
)

type publisherLogger interface {
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

// Kafka шлёт событие в топик request.changed. Ключ - id заявки, чтобы
// события одной заявки ехали по порядку в одну партицию.
type Kafka struct {
	log      publisherLogger
	producer sarama.SyncProducer
	topic    string
}

func NewKafka(log publisherLogger, producer sarama.SyncProducer, topic string) *Kafka {
	return &Kafka{
		log:      log,
		producer: producer,
		topic:    topic,
	}
}

func (p *Kafka) RequestChanged(_ context.Context, request entities.DeliveryRequest) {
	payload, err := json.Marshal(dto.FromRequestEntity(request))
	if err != nil {
		p.log.With(
			logger.NewField("request_id", request.ID),
			logger.NewField("error", err),
		).Error("marshal request.changed event")
		return
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(request.ID, 10)),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		p.log.With(
			logger.NewField("request_id", request.ID),
			logger.NewField("error", err),
		).Error("publish request.changed event")
	}
}

// Hub будит подписчиков внутри процесса, минуя брокер.
type Hub struct {
	sink watch.Sink[entities.DeliveryRequest]
}

func NewHub(sink watch.Sink[entities.DeliveryRequest]) *Hub {
	return &Hub{
		sink: sink,
	}
}

func (p *Hub) RequestChanged(_ context.Context, request entities.DeliveryRequest) {
	p.sink.Publish(request.ID, request)
}

// Fanout размножает событие по всем издателям.
type Fanout struct {
	publishers []Publisher
}

type Publisher interface {
	RequestChanged(ctx context.Context, request entities.DeliveryRequest)
}

func NewFanout(publishers ...Publisher) *Fanout {
	return &Fanout{
		publishers: publishers,
	}
}

func (p *Fanout) RequestChanged(ctx context.Context, request entities.DeliveryRequest) {
	for _, pub := range p.publishers {
		pub.RequestChanged(ctx, request)
	}
}
