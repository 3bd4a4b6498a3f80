package kafka

import (
	"fmt"

	"github.com/IBM/sarama"
)

// NewSyncProducer - producer для событий request.changed. Синхронный и с
// подтверждением от всех реплик: уведомление теряется только вместе с
// брокером, а не по дороге к нему.
func NewSyncProducer(cfg *sarama.Config, brokers []string) (sarama.SyncProducer, error) {
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create sync producer: %w", err)
	}
	return producer, nil
}
