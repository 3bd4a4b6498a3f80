// Package request_sweeper гасит "зомби"-заявки: клиент разместил broadcast
// и пропал, его countdown умер вместе с ним, заявка навсегда зависла в
// placed. Подметаем всё старше StaleRequestAge.
package request_sweeper

import (
	"context"
	"time"

	"dispatch/pkg/logger"
)

type Service interface {
	CancelStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type RequestSweeper struct {
	log      logger.Logger
	service  Service
	interval time.Duration
	maxAge   time.Duration
}

func New(log logger.Logger, service Service, interval, maxAge time.Duration) *RequestSweeper {
	return &RequestSweeper{
		log:      log,
		service:  service,
		interval: interval,
		maxAge:   maxAge,
	}
}

func (s *RequestSweeper) Interval() time.Duration {
	return s.interval
}

func (s *RequestSweeper) Run(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	rowsAffected, err := s.service.CancelStale(ctxWithTimeout, s.maxAge)

	if rowsAffected > 0 {
		s.log.With(
			logger.NewField("cancelled_requests", rowsAffected),
		).Info("request sweep")
	}

	return err
}

func (s *RequestSweeper) Name() string {
	return "request sweeper"
}
