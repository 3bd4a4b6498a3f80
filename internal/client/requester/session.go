// Package requester - сессия заказчика: пошаговый ввод маршрута, broadcast
// и ожидание исхода гонки. Одна сессия - одна цепочка заявок одного
// заказчика; методы можно звать из разных горутин.
package requester

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dispatch/internal/entities"
	"dispatch/pkg/logger"
	"dispatch/pkg/retrier"
)

type Stage string

const (
	// StagePickup - ждём точку забора.
	StagePickup Stage = "pickup"
	// StageDropoff - ждём точку доставки.
	StageDropoff Stage = "dropoff"
	// StageDetails - ждём описание посылки.
	StageDetails Stage = "details"
	// StageWaiting - заявка размещена, идёт гонка.
	StageWaiting Stage = "waiting"
	// StageAssigned - райдер назначен, терминальная стадия.
	StageAssigned Stage = "assigned"
	// StageExpired - дедлайн прошёл, отмена подтверждена. Отсюда можно
	// в ретрай.
	StageExpired Stage = "expired"
)

// Outcome - итог ожидания: либо назначенный райдер, либо подтверждённая
// отмена по таймауту.
type Outcome struct {
	Request entities.DeliveryRequest
	Rider   *entities.RiderProfile
	Expired bool
}

type Session struct {
	coordinator Coordinator
	profiles    Profiles
	watcher     Watcher
	retrier     retrier.Retrier
	logger      sessionLogger

	waitTimeout time.Duration

	mu          sync.Mutex
	stage       Stage
	customerID  *int64
	pickup      entities.Waypoint
	dropoff     entities.Waypoint
	description string
	request     *entities.DeliveryRequest
}

type sessionLogger interface {
	Warn(msg string, fields ...logger.Field)
}

func NewSession(
	coordinator Coordinator,
	profiles Profiles,
	watcher Watcher,
	expireRetrier retrier.Retrier,
	log sessionLogger,
	customerID *int64,
	waitTimeout time.Duration,
) *Session {
	return &Session{
		coordinator: coordinator,
		profiles:    profiles,
		watcher:     watcher,
		retrier:     expireRetrier,
		logger:      log,
		customerID:  customerID,
		waitTimeout: waitTimeout,
		stage:       StagePickup,
	}
}

func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

func (s *Session) Request() *entities.DeliveryRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.request
}

func (s *Session) SetPickup(wp entities.Waypoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StagePickup {
		return ErrWrongStage
	}
	s.pickup = wp
	s.stage = StageDropoff
	return nil
}

func (s *Session) SetDropoff(wp entities.Waypoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageDropoff {
		return ErrWrongStage
	}
	s.dropoff = wp
	s.stage = StageDetails
	return nil
}

// Broadcast размещает заявку и переводит сессию в ожидание. Отсчёт
// таймаута начинается не здесь, а в Wait: до вызова Wait заявка висит
// открытой, её подберёт фоновая зачистка.
func (s *Session) Broadcast(ctx context.Context, description string) (*entities.DeliveryRequest, error) {
	s.mu.Lock()
	if s.stage != StageDetails {
		s.mu.Unlock()
		return nil, ErrWrongStage
	}
	order := entities.BroadcastOrder{
		CustomerID:      s.customerID,
		Pickup:          s.pickup,
		Dropoff:         s.dropoff,
		ItemDescription: description,
	}
	s.mu.Unlock()

	created, err := s.coordinator.CreateBroadcast(ctx, order)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.description = description
	s.request = created
	s.stage = StageWaiting
	s.mu.Unlock()

	return created, nil
}

// Resume подхватывает уже размещённую заявку и переводит сессию сразу
// в ожидание. Путь intake-воркера: broadcast там создаётся идемпотентно
// по ссылке на заказ, пошаговый ввод маршрута не нужен.
func (s *Session) Resume(request *entities.DeliveryRequest) error {
	if request == nil {
		return ErrNoActiveRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StagePickup {
		return ErrWrongStage
	}
	s.pickup = request.Pickup
	s.dropoff = request.Dropoff
	s.description = request.ItemDescription
	s.request = request
	s.stage = StageWaiting
	return nil
}

// Wait блокируется до исхода гонки. Уведомление о назначении завершает
// ожидание досрочно; молчание завершается по таймауту через подтверждённую
// отмену на сервере. Дубли уведомлений безвредны: терминальное состояние
// фиксируется один раз.
func (s *Session) Wait(ctx context.Context) (*Outcome, error) {
	s.mu.Lock()
	if s.stage != StageWaiting {
		s.mu.Unlock()
		return nil, ErrWrongStage
	}
	requestID := s.request.ID
	s.mu.Unlock()

	updates, cancel := s.watcher.Subscribe(requestID)
	defer cancel()

	// Шина могла потерять событие до подписки - сверяемся со store.
	current, err := s.coordinator.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("refresh request state: %w", err)
	}
	if outcome := s.terminalOutcome(ctx, *current); outcome != nil {
		return outcome, nil
	}

	timer := time.NewTimer(s.waitTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case state := <-updates:
			if outcome := s.terminalOutcome(ctx, state); outcome != nil {
				return outcome, nil
			}

		case <-timer.C:
			return s.expire(ctx, requestID)
		}
	}
}

// Retry размещает свежую заявку вместо протухшей. Разрешён только после
// подтверждённой отмены: без неё старая заявка могла бы выиграть гонку
// параллельно с новой.
func (s *Session) Retry(ctx context.Context) (*entities.DeliveryRequest, error) {
	s.mu.Lock()
	if s.request == nil {
		s.mu.Unlock()
		return nil, ErrNoActiveRequest
	}
	if s.stage != StageExpired {
		s.mu.Unlock()
		return nil, ErrNotExpired
	}
	staleID := s.request.ID
	s.mu.Unlock()

	fresh, err := s.coordinator.RetryBroadcast(ctx, staleID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.request = fresh
	s.stage = StageWaiting
	s.mu.Unlock()

	return fresh, nil
}

// expire подтверждает отмену на сервере. Отмена обязана состояться до
// возврата: без неё заявка осталась бы claimable после ухода заказчика.
// Гонка с клеймом решается в пользу клейма.
func (s *Session) expire(ctx context.Context, requestID int64) (*Outcome, error) {
	var record *entities.DeliveryRequest
	err := s.retrier.ExecuteWithContext(ctx, func(ctx context.Context) error {
		var err error
		record, err = s.coordinator.Expire(ctx, requestID)
		if err != nil {
			s.logger.Warn("expire attempt failed", logger.NewField("error", err))
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("confirm expiry: %w", err)
	}

	if outcome := s.terminalOutcome(ctx, *record); outcome != nil {
		return outcome, nil
	}
	return nil, fmt.Errorf("request %d neither claimed nor cancelled after expire", requestID)
}

// terminalOutcome переводит сессию в терминальную стадию, если состояние
// заявки того требует. Возвращает nil для нетерминальных состояний.
func (s *Session) terminalOutcome(ctx context.Context, state entities.DeliveryRequest) *Outcome {
	switch {
	case state.Claimed():
		s.setStage(StageAssigned, state)
		return &Outcome{
			Request: state,
			Rider:   s.fetchProfile(ctx, *state.RiderID),
		}

	case state.Status == entities.RequestCancelled:
		s.setStage(StageExpired, state)
		return &Outcome{
			Request: state,
			Expired: true,
		}

	default:
		return nil
	}
}

func (s *Session) setStage(stage Stage, state entities.DeliveryRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage = stage
	s.request = &state
}

// fetchProfile - best-effort: назначение валидно и без карточки райдера.
func (s *Session) fetchProfile(ctx context.Context, riderID int64) *entities.RiderProfile {
	profile, err := s.profiles.GetProfile(ctx, riderID)
	if err != nil {
		s.logger.Warn("fetch assigned rider profile",
			logger.NewField("rider_id", riderID),
			logger.NewField("error", err),
		)
		return nil
	}
	return profile
}
