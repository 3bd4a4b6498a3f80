// Package intake превращает события маркетплейса в broadcast-заявки и
// ведёт за каждую headless-сессию заказчика: ожидание исхода гонки и
// один повтор после тишины. Кафка доставляет at-least-once, поэтому
// каждая операция идемпотентна: ключ дедупликации - ссылка на заказ
// маркетплейса.
package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AlekSi/pointer"

	"dispatch/internal/client/requester"
	"dispatch/internal/entities"
	"dispatch/internal/service/dispatch"
	"dispatch/pkg/logger"
	"dispatch/pkg/retrier"
)

type Service struct {
	coordinator   Coordinator
	profiles      Profiles
	watcher       Watcher
	expireRetrier retrier.Retrier
	log           serviceLogger
	waitTimeout   time.Duration

	// watchCtx живёт дольше таймаута обработки сообщения: сессия ждёт
	// исход гонки, а не коммит offset-а.
	watchCtx context.Context
	sessions sync.WaitGroup
}

func New(
	watchCtx context.Context,
	log serviceLogger,
	coordinator Coordinator,
	profiles Profiles,
	watcher Watcher,
	expireRetrier retrier.Retrier,
	waitTimeout time.Duration,
) *Service {
	return &Service{
		coordinator:   coordinator,
		profiles:      profiles,
		watcher:       watcher,
		expireRetrier: expireRetrier,
		log:           log,
		waitTimeout:   waitTimeout,
		watchCtx:      watchCtx,
	}
}

// HandleOrderPlaced создаёт заявку по заказу маркетплейса и ставит за
// ней headless-сессию. Дубль события не ошибка: заявка уже размещена,
// её сессия уже ждёт, offset можно коммитить.
func (s *Service) HandleOrderPlaced(ctx context.Context, order entities.Order) error {
	if order.ID == "" {
		return errors.New("order event without id")
	}
	if order.Status != entities.OrderPlaced {
		return fmt.Errorf("unexpected order status %q", order.Status)
	}

	created, err := s.coordinator.CreateBroadcast(ctx, entities.BroadcastOrder{
		OrderRef:        pointer.To(order.ID),
		CustomerID:      order.CustomerID,
		Pickup:          order.Pickup,
		Dropoff:         order.Dropoff,
		ItemDescription: order.ItemDescription,
	})
	if err != nil {
		if errors.Is(err, dispatch.ErrOrderAlreadyDispatched) {
			// Сессия первого события уже ведёт эту заявку. Осиротевшую
			// после рестарта воркера заявку закроет фоновая зачистка.
			return nil
		}
		return fmt.Errorf("dispatch marketplace order %s: %w", order.ID, err)
	}

	s.watch(created)

	return nil
}

// HandleOrderCancelled гасит заявку отменённого заказа. Если райдер уже
// назначен, отмена превращается в no-op: доставку решают люди, не воркер.
func (s *Service) HandleOrderCancelled(ctx context.Context, order entities.Order) error {
	if order.ID == "" {
		return errors.New("order event without id")
	}

	request, err := s.coordinator.GetRequestByOrderRef(ctx, order.ID)
	if err != nil {
		if errors.Is(err, dispatch.ErrRequestNotFound) {
			// Отмена до того, как placed-событие доехало. Ничего гасить.
			return nil
		}
		return fmt.Errorf("lookup request for order %s: %w", order.ID, err)
	}

	if _, err := s.coordinator.Expire(ctx, request.ID); err != nil {
		return fmt.Errorf("cancel request for order %s: %w", order.ID, err)
	}

	return nil
}

// Drain дожидается завершения активных сессий. Зовётся на shutdown
// после отмены watch-контекста.
func (s *Service) Drain() {
	s.sessions.Wait()
}

// watch ставит за заявкой headless-сессию в отдельной горутине.
func (s *Service) watch(created *entities.DeliveryRequest) {
	session := requester.NewSession(
		s.coordinator,
		s.profiles,
		s.watcher,
		s.expireRetrier,
		s.log,
		created.CustomerID,
		s.waitTimeout,
	)
	if err := session.Resume(created); err != nil {
		s.log.With(
			logger.NewField("request_id", created.ID),
			logger.NewField("error", err),
		).Error("resume dispatched request session")
		return
	}

	s.sessions.Add(1)
	go func() {
		defer s.sessions.Done()
		s.awaitOutcome(session, created.ID)
	}()
}

// awaitOutcome ждёт исход гонки. После подтверждённой отмены заявка
// перевыставляется ровно один раз: вторая тишина означает пустой пул,
// дальше заказ перевыставляют руками через REST.
func (s *Service) awaitOutcome(session *requester.Session, requestID int64) {
	watchLog := s.log.With(logger.NewField("request_id", requestID))

	outcome, err := session.Wait(s.watchCtx)
	if err != nil {
		watchLog.Warn("request watch interrupted", logger.NewField("error", err))
		return
	}

	if outcome.Expired {
		fresh, err := session.Retry(s.watchCtx)
		if err != nil {
			watchLog.Warn("retry stale request", logger.NewField("error", err))
			return
		}
		watchLog = s.log.With(logger.NewField("request_id", fresh.ID))

		outcome, err = session.Wait(s.watchCtx)
		if err != nil {
			watchLog.Warn("request watch interrupted", logger.NewField("error", err))
			return
		}
	}

	if outcome.Expired {
		watchLog.Warn("request expired after retry")
		return
	}

	watchLog.Info("request assigned",
		logger.NewField("rider_id", *outcome.Request.RiderID),
	)
}
