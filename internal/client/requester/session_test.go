package requester_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/client/requester"
	"dispatch/internal/entities"
	"dispatch/internal/pkg/factory/pricing"
	"dispatch/internal/repository/requesttest"
	"dispatch/internal/service/dispatch"
	"dispatch/pkg/logger"
	"dispatch/pkg/watch"
)

// hubPublisher мостит события диспетчера в локальную шину, как это
// делает продовый fanout.
type hubPublisher struct {
	hub *watch.Hub[entities.DeliveryRequest]
}

func (p *hubPublisher) RequestChanged(_ context.Context, request entities.DeliveryRequest) {
	p.hub.Publish(request.ID, request)
}

type staticProfiles struct {
	profile entities.RiderProfile
}

func (p *staticProfiles) GetProfile(_ context.Context, riderID int64) (*entities.RiderProfile, error) {
	profile := p.profile
	profile.ID = riderID
	return &profile, nil
}

type failingProfiles struct{}

func (failingProfiles) GetProfile(context.Context, int64) (*entities.RiderProfile, error) {
	return nil, errors.New("profiles unavailable")
}

// immediateRetrier ретраит без пауз, чтобы тесты не спали.
type immediateRetrier struct {
	attempts int
}

func (r immediateRetrier) ExecuteWithContext(ctx context.Context, fn func(context.Context) error) error {
	var err error
	for i := 0; i < r.attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
	}
	return err
}

type env struct {
	store       *requesttest.Store
	coordinator *dispatch.Dispatch
	hub         *watch.Hub[entities.DeliveryRequest]
}

func newEnv() *env {
	store := requesttest.NewStore()
	hub := watch.NewHub[entities.DeliveryRequest]()
	coordinator := dispatch.New(
		store,
		&requesttest.RiderDirectory{IDs: []int64{1, 2, 3}},
		&hubPublisher{hub: hub},
		pricing.New(),
		requesttest.TxManager{},
	)
	return &env{store: store, coordinator: coordinator, hub: hub}
}

func (e *env) newSession(waitTimeout time.Duration, profiles requester.Profiles) *requester.Session {
	return requester.NewSession(
		e.coordinator,
		profiles,
		e.hub,
		immediateRetrier{attempts: 3},
		logger.Nop{},
		pointer.To(int64(42)),
		waitTimeout,
	)
}

func pickupPoint() entities.Waypoint {
	return entities.Waypoint{
		Point:   entities.GeoPoint{Lat: 55.7558, Lon: 37.6173},
		Address: "Тверская, 1",
	}
}

func dropoffPoint() entities.Waypoint {
	return entities.Waypoint{
		Point:   entities.GeoPoint{Lat: 55.8000, Lon: 37.7000},
		Address: "Измайловский проспект, 73",
	}
}

func placed(t *testing.T, session *requester.Session) *entities.DeliveryRequest {
	t.Helper()
	require.NoError(t, session.SetPickup(pickupPoint()))
	require.NoError(t, session.SetDropoff(dropoffPoint()))

	created, err := session.Broadcast(context.Background(), "коробка с книгами")
	require.NoError(t, err)
	return created
}

func TestSessionStages(t *testing.T) {
	e := newEnv()

	t.Run("этапы строго по порядку", func(t *testing.T) {
		session := e.newSession(time.Minute, &staticProfiles{})

		require.ErrorIs(t, session.SetDropoff(dropoffPoint()), requester.ErrWrongStage)

		_, err := session.Broadcast(context.Background(), "что угодно")
		require.ErrorIs(t, err, requester.ErrWrongStage)

		require.NoError(t, session.SetPickup(pickupPoint()))
		require.ErrorIs(t, session.SetPickup(pickupPoint()), requester.ErrWrongStage)

		assert.Equal(t, requester.StageDropoff, session.Stage())
	})

	t.Run("broadcast переводит в ожидание", func(t *testing.T) {
		session := e.newSession(time.Minute, &staticProfiles{})

		created := placed(t, session)

		assert.True(t, created.Open())
		assert.Equal(t, requester.StageWaiting, session.Stage())
	})

	t.Run("ретрай до истечения не разрешён", func(t *testing.T) {
		session := e.newSession(time.Minute, &staticProfiles{})
		placed(t, session)

		_, err := session.Retry(context.Background())
		require.ErrorIs(t, err, requester.ErrNotExpired)
	})
}

func TestSessionResume(t *testing.T) {
	t.Run("resume переводит сразу в ожидание", func(t *testing.T) {
		e := newEnv()
		created, err := e.coordinator.CreateBroadcast(context.Background(), entities.BroadcastOrder{
			OrderRef:        pointer.To("mp-resume"),
			Pickup:          pickupPoint(),
			Dropoff:         dropoffPoint(),
			ItemDescription: "коробка с книгами",
		})
		require.NoError(t, err)

		session := e.newSession(time.Minute, &staticProfiles{})
		require.NoError(t, session.Resume(created))
		assert.Equal(t, requester.StageWaiting, session.Stage())

		go func() {
			time.Sleep(20 * time.Millisecond)
			_, _ = e.coordinator.Claim(context.Background(), created.ID, 1)
		}()

		outcome, err := session.Wait(context.Background())
		require.NoError(t, err)
		assert.False(t, outcome.Expired)
		assert.Equal(t, requester.StageAssigned, session.Stage())
	})

	t.Run("resume без заявки не разрешён", func(t *testing.T) {
		e := newEnv()
		session := e.newSession(time.Minute, &staticProfiles{})

		require.ErrorIs(t, session.Resume(nil), requester.ErrNoActiveRequest)
	})

	t.Run("resume после начала ввода не разрешён", func(t *testing.T) {
		e := newEnv()
		session := e.newSession(time.Minute, &staticProfiles{})
		require.NoError(t, session.SetPickup(pickupPoint()))

		created, err := e.coordinator.CreateBroadcast(context.Background(), entities.BroadcastOrder{
			Pickup:          pickupPoint(),
			Dropoff:         dropoffPoint(),
			ItemDescription: "коробка с книгами",
		})
		require.NoError(t, err)

		require.ErrorIs(t, session.Resume(created), requester.ErrWrongStage)
	})
}

func TestSessionAssigned(t *testing.T) {
	t.Run("уведомление о клейме завершает ожидание", func(t *testing.T) {
		e := newEnv()
		session := e.newSession(time.Minute, &staticProfiles{
			profile: entities.RiderProfile{Name: "Саша", VehicleType: entities.Motorbike},
		})
		created := placed(t, session)

		go func() {
			// Даём Wait подписаться до клейма.
			time.Sleep(20 * time.Millisecond)
			_, _ = e.coordinator.Claim(context.Background(), created.ID, 2)
		}()

		outcome, err := session.Wait(context.Background())
		require.NoError(t, err)

		assert.False(t, outcome.Expired)
		require.NotNil(t, outcome.Rider)
		assert.Equal(t, int64(2), outcome.Rider.ID)
		assert.Equal(t, "Саша", outcome.Rider.Name)
		assert.Equal(t, requester.StageAssigned, session.Stage())
	})

	t.Run("клейм до подписки находится через store", func(t *testing.T) {
		e := newEnv()
		session := e.newSession(time.Minute, &staticProfiles{})
		created := placed(t, session)

		// Клейм состоялся, но событие сессия не видела.
		_, err := e.coordinator.Claim(context.Background(), created.ID, 1)
		require.NoError(t, err)

		outcome, err := session.Wait(context.Background())
		require.NoError(t, err)
		assert.False(t, outcome.Expired)
	})

	t.Run("дубли уведомлений безвредны", func(t *testing.T) {
		e := newEnv()
		session := e.newSession(time.Minute, &staticProfiles{})
		created := placed(t, session)

		go func() {
			time.Sleep(20 * time.Millisecond)
			claimed, err := e.coordinator.Claim(context.Background(), created.ID, 1)
			if err != nil {
				return
			}
			// Повторная доставка того же события.
			e.hub.Publish(claimed.ID, *claimed)
			e.hub.Publish(claimed.ID, *claimed)
		}()

		outcome, err := session.Wait(context.Background())
		require.NoError(t, err)
		assert.False(t, outcome.Expired)

		// Терминальная стадия зафиксирована, повторное ожидание не стартует.
		_, err = session.Wait(context.Background())
		require.ErrorIs(t, err, requester.ErrWrongStage)
	})

	t.Run("назначение валидно и без карточки райдера", func(t *testing.T) {
		e := newEnv()
		session := e.newSession(time.Minute, failingProfiles{})
		created := placed(t, session)

		_, err := e.coordinator.Claim(context.Background(), created.ID, 3)
		require.NoError(t, err)

		outcome, err := session.Wait(context.Background())
		require.NoError(t, err)
		assert.False(t, outcome.Expired)
		assert.Nil(t, outcome.Rider)
	})
}

func TestSessionExpired(t *testing.T) {
	t.Run("таймаут без клейма подтверждает отмену", func(t *testing.T) {
		e := newEnv()
		session := e.newSession(30*time.Millisecond, &staticProfiles{})
		created := placed(t, session)

		outcome, err := session.Wait(context.Background())
		require.NoError(t, err)

		assert.True(t, outcome.Expired)
		assert.Equal(t, requester.StageExpired, session.Stage())

		// Отмена дошла до store: заявку больше не заклеймить.
		_, err = e.coordinator.Claim(context.Background(), created.ID, 1)
		require.ErrorIs(t, err, dispatch.ErrAlreadyClaimed)
	})

	t.Run("клейм на флажке побеждает отмену", func(t *testing.T) {
		e := newEnv()
		session := e.newSession(30*time.Millisecond, &staticProfiles{})
		created := placed(t, session)

		// Клейм успевает раньше серверной отмены, но уведомление теряется.
		_, err := e.coordinator.Claim(context.Background(), created.ID, 2)
		require.NoError(t, err)

		outcome, err := session.Wait(context.Background())
		require.NoError(t, err)

		assert.False(t, outcome.Expired)
		assert.Equal(t, requester.StageAssigned, session.Stage())
	})

	t.Run("после подтверждённой отмены разрешён ретрай", func(t *testing.T) {
		e := newEnv()
		session := e.newSession(30*time.Millisecond, &staticProfiles{})
		created := placed(t, session)

		outcome, err := session.Wait(context.Background())
		require.NoError(t, err)
		require.True(t, outcome.Expired)

		fresh, err := session.Retry(context.Background())
		require.NoError(t, err)

		assert.NotEqual(t, created.ID, fresh.ID)
		assert.True(t, fresh.Open())
		assert.Equal(t, requester.StageWaiting, session.Stage())

		// Новая гонка решается как обычно.
		go func() {
			time.Sleep(20 * time.Millisecond)
			_, _ = e.coordinator.Claim(context.Background(), fresh.ID, 1)
		}()

		next, err := session.Wait(context.Background())
		require.NoError(t, err)
		assert.False(t, next.Expired)
	})

	t.Run("отмена контекста прерывает ожидание без отмены заявки", func(t *testing.T) {
		e := newEnv()
		session := e.newSession(time.Minute, &staticProfiles{})
		created := placed(t, session)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		_, err := session.Wait(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)

		// Заявка осталась открытой, подберёт либо повторный Wait, либо зачистка.
		current, err := e.coordinator.GetRequest(context.Background(), created.ID)
		require.NoError(t, err)
		assert.True(t, current.Open())
	})
}
