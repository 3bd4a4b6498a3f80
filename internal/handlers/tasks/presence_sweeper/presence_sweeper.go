// Package presence_sweeper переводит в offline райдеров с протухшим
// heartbeat, чтобы пул онлайн-райдеров не врал диспетчеру.
package presence_sweeper

import (
	"context"
	"time"

	"dispatch/pkg/logger"
)

type Service interface {
	MarkStaleOffline(ctx context.Context) (int64, error)
}

type PresenceSweeper struct {
	log      logger.Logger
	service  Service
	interval time.Duration
}

func New(log logger.Logger, service Service, interval time.Duration) *PresenceSweeper {
	return &PresenceSweeper{
		log:      log,
		service:  service,
		interval: interval,
	}
}

func (s *PresenceSweeper) Interval() time.Duration {
	return s.interval
}

func (s *PresenceSweeper) Run(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	rowsAffected, err := s.service.MarkStaleOffline(ctxWithTimeout)

	if rowsAffected > 0 {
		s.log.With(
			logger.NewField("offline_riders", rowsAffected),
		).Info("presence sweep")
	}

	return err
}

func (s *PresenceSweeper) Name() string {
	return "presence sweeper"
}
