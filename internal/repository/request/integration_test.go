//go:build integration

package request_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/entities"
	"dispatch/internal/repository/integration_test"
	"dispatch/internal/repository/request"
	service "dispatch/internal/service/dispatch"

	"github.com/AlekSi/pointer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModify(orderRef *string) entities.DeliveryRequestModify {
	return entities.DeliveryRequestModify{
		OrderRef:   orderRef,
		CustomerID: pointer.To(int64(42)),
		Pickup: pointer.To(entities.Waypoint{
			Point:   entities.GeoPoint{Lat: 55.7558, Lon: 37.6173},
			Address: "Тверская, 1",
		}),
		Dropoff: pointer.To(entities.Waypoint{
			Point:   entities.GeoPoint{Lat: 55.8000, Lon: 37.7000},
			Address: "Первомайская, 10",
		}),
		ItemDescription: pointer.To("документы"),
		Fare: pointer.To(entities.Fare{
			TotalCents:        1030,
			RiderEarningCents: 824,
			CommissionCents:   206,
			DistanceMeters:    6500,
		}),
	}
}

func TestRepository_Create_Success(t *testing.T) {
	defer integration_test.TeardownDB(t)

	q := integration_test.GetQuerier()
	repo := request.New(q)
	ctx := context.Background()

	t.Run("Успешное создание заявки в статусе placed без райдера", func(t *testing.T) {
		actual, err := repo.Create(ctx, testModify(pointer.To("order-1")))
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.Equal(t, entities.RequestPlaced, actual.Status)
		assert.Nil(t, actual.RiderID)
		assert.Equal(t, "order-1", *actual.OrderRef)
		assert.Equal(t, int64(42), *actual.CustomerID)
		assert.Equal(t, "Тверская, 1", actual.Pickup.Address)
		assert.Equal(t, "Первомайская, 10", actual.Dropoff.Address)
		assert.Equal(t, int64(1030), actual.Fare.TotalCents)
		assert.Equal(t, int64(824), actual.Fare.RiderEarningCents)
		assert.Equal(t, int64(206), actual.Fare.CommissionCents)
		assert.WithinDuration(t, time.Now(), actual.CreatedAt, 5*time.Second)
	})
}

func TestRepository_Create_DuplicateOrderRef(t *testing.T) {
	setupSql := `
        INSERT INTO delivery_requests (order_ref, customer_id, pickup_lat, pickup_lon, pickup_address,
            dropoff_lat, dropoff_lon, dropoff_address, item_description,
            total_cents, rider_earning_cents, commission_cents, distance_meters, status)
        VALUES ('order-dup', 42, 55.7558, 37.6173, 'A', 55.8, 37.7, 'B', 'коробка', 1000, 800, 200, 5000, 'placed');
    `

	integration_test.SetupDB(t, setupSql)
	defer integration_test.TeardownDB(t)

	q := integration_test.GetQuerier()
	repo := request.New(q)
	ctx := context.Background()

	t.Run("Ошибка при повторной заявке по тому же заказу", func(t *testing.T) {
		actual, err := repo.Create(ctx, testModify(pointer.To("order-dup")))
		require.Error(t, err)
		require.Nil(t, actual)
		assert.ErrorIs(t, err, service.ErrOrderAlreadyDispatched)
	})
}

func TestRepository_GetByOrderRef(t *testing.T) {
	setupSql := `
        INSERT INTO delivery_requests (id, order_ref, customer_id, pickup_lat, pickup_lon, pickup_address,
            dropoff_lat, dropoff_lon, dropoff_address, item_description,
            total_cents, rider_earning_cents, commission_cents, distance_meters, status)
        VALUES (10, 'order-ref-1', 42, 55.75, 37.61, 'A', 55.8, 37.7, 'B', 'коробка', 1000, 800, 200, 5000, 'placed');

        SELECT setval('delivery_requests_id_seq', 10);
    `

	integration_test.SetupDB(t, setupSql)
	defer integration_test.TeardownDB(t)

	q := integration_test.GetQuerier()
	repo := request.New(q)
	ctx := context.Background()

	t.Run("Успешный поиск заявки по ссылке на заказ", func(t *testing.T) {
		actual, err := repo.GetByOrderRef(ctx, "order-ref-1")
		require.NoError(t, err)
		require.NotNil(t, actual)
		assert.Equal(t, int64(10), actual.ID)
	})

	t.Run("Ошибка при поиске по неизвестной ссылке", func(t *testing.T) {
		actual, err := repo.GetByOrderRef(ctx, "no-such-order")
		require.Error(t, err)
		require.Nil(t, actual)
		assert.ErrorIs(t, err, service.ErrRequestNotFound)
	})
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	defer integration_test.TeardownDB(t)

	q := integration_test.GetQuerier()
	repo := request.New(q)
	ctx := context.Background()

	t.Run("Ошибка при поиске несуществующей заявки", func(t *testing.T) {
		actual, err := repo.GetByID(ctx, 9000)
		require.Error(t, err)
		require.Nil(t, actual)
		assert.ErrorIs(t, err, service.ErrRequestNotFound)
	})
}

func TestRepository_ClaimByRider_Race(t *testing.T) {
	setupSql := `
        INSERT INTO riders (id, name, phone, presence)
        VALUES
            (1, 'Rider 1', '+79991112233', 'online'),
            (2, 'Rider 2', '+79991112234', 'online');

        INSERT INTO delivery_requests (id, customer_id, pickup_lat, pickup_lon, pickup_address,
            dropoff_lat, dropoff_lon, dropoff_address, item_description,
            total_cents, rider_earning_cents, commission_cents, distance_meters, status)
        VALUES (10, 42, 55.7558, 37.6173, 'A', 55.8, 37.7, 'B', 'коробка', 1000, 800, 200, 5000, 'placed');

        SELECT setval('delivery_requests_id_seq', 10);
        SELECT setval('riders_id_seq', 2);
    `

	integration_test.SetupDB(t, setupSql)
	defer integration_test.TeardownDB(t)

	q := integration_test.GetQuerier()
	repo := request.New(q)
	ctx := context.Background()

	t.Run("Первый клейм выигрывает, второй получает отказ с победителем", func(t *testing.T) {
		won, err := repo.ClaimByRider(ctx, 10, 1)
		require.NoError(t, err)
		require.NotNil(t, won)
		assert.Equal(t, entities.RequestAccepted, won.Status)
		assert.Equal(t, int64(1), *won.RiderID)

		lost, err := repo.ClaimByRider(ctx, 10, 2)
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrAlreadyClaimed)
		require.NotNil(t, lost)
		assert.Equal(t, int64(1), *lost.RiderID)
	})
}

func TestRepository_ClaimByRider_NotFound(t *testing.T) {
	setupSql := `
        INSERT INTO riders (id, name, phone, presence)
        VALUES (1, 'Rider 1', '+79991112233', 'online');
    `

	integration_test.SetupDB(t, setupSql)
	defer integration_test.TeardownDB(t)

	q := integration_test.GetQuerier()
	repo := request.New(q)
	ctx := context.Background()

	t.Run("Ошибка при клейме несуществующей заявки", func(t *testing.T) {
		actual, err := repo.ClaimByRider(ctx, 9000, 1)
		require.Error(t, err)
		require.Nil(t, actual)
		assert.ErrorIs(t, err, service.ErrRequestNotFound)
	})
}

func TestRepository_CancelUnclaimed(t *testing.T) {
	setupSql := `
        INSERT INTO riders (id, name, phone, presence)
        VALUES (1, 'Rider 1', '+79991112233', 'online');

        INSERT INTO delivery_requests (id, customer_id, rider_id, pickup_lat, pickup_lon, pickup_address,
            dropoff_lat, dropoff_lon, dropoff_address, item_description,
            total_cents, rider_earning_cents, commission_cents, distance_meters, status)
        VALUES
            (10, 42, NULL, 55.7558, 37.6173, 'A', 55.8, 37.7, 'B', 'коробка', 1000, 800, 200, 5000, 'placed'),
            (11, 42, 1,    55.7558, 37.6173, 'A', 55.8, 37.7, 'B', 'цветы',   1000, 800, 200, 5000, 'accepted');

        SELECT setval('delivery_requests_id_seq', 11);
        SELECT setval('riders_id_seq', 1);
    `

	integration_test.SetupDB(t, setupSql)
	defer integration_test.TeardownDB(t)

	q := integration_test.GetQuerier()
	repo := request.New(q)
	ctx := context.Background()

	t.Run("Успешная отмена незаклеймленной заявки", func(t *testing.T) {
		actual, err := repo.CancelUnclaimed(ctx, 10)
		require.NoError(t, err)
		require.NotNil(t, actual)
		assert.Equal(t, entities.RequestCancelled, actual.Status)
		assert.Nil(t, actual.RiderID)
	})

	t.Run("Повторная отмена идемпотентна", func(t *testing.T) {
		actual, err := repo.CancelUnclaimed(ctx, 10)
		require.NoError(t, err)
		require.NotNil(t, actual)
		assert.Equal(t, entities.RequestCancelled, actual.Status)
	})

	t.Run("Отмена не трогает заклеймленную заявку", func(t *testing.T) {
		actual, err := repo.CancelUnclaimed(ctx, 11)
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrAlreadyClaimed)
		require.NotNil(t, actual)
		assert.Equal(t, entities.RequestAccepted, actual.Status)
		assert.Equal(t, int64(1), *actual.RiderID)
	})
}

func TestRepository_AssignmentConstraint(t *testing.T) {
	setupSql := `
        INSERT INTO riders (id, name, phone, presence)
        VALUES (1, 'Rider 1', '+79991112233', 'online');

        SELECT setval('riders_id_seq', 1);
    `

	integration_test.SetupDB(t, setupSql)
	defer integration_test.TeardownDB(t)

	q := integration_test.GetQuerier()
	ctx := context.Background()

	t.Run("Отменённая заявка с райдером не проходит ограничение", func(t *testing.T) {
		_, err := q.Exec(ctx, `
            INSERT INTO delivery_requests (customer_id, rider_id, pickup_lat, pickup_lon, pickup_address,
                dropoff_lat, dropoff_lon, dropoff_address, item_description,
                total_cents, rider_earning_cents, commission_cents, distance_meters, status)
            VALUES (42, 1, 55.75, 37.61, 'A', 55.8, 37.7, 'B', 'коробка', 1000, 800, 200, 5000, 'cancelled')
        `)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "delivery_requests_assignment_check")
	})
}

func TestRepository_ListOpen(t *testing.T) {
	setupSql := `
        INSERT INTO riders (id, name, phone, presence)
        VALUES (1, 'Rider 1', '+79991112233', 'online');

        INSERT INTO delivery_requests (id, customer_id, rider_id, pickup_lat, pickup_lon, pickup_address,
            dropoff_lat, dropoff_lon, dropoff_address, item_description,
            total_cents, rider_earning_cents, commission_cents, distance_meters, status, created_at)
        VALUES
            (10, 42, NULL, 55.75, 37.61, 'A', 55.8, 37.7, 'B', 'старая',       1000, 800, 200, 5000, 'placed',    NOW() - INTERVAL '2 minutes'),
            (11, 42, NULL, 55.75, 37.61, 'A', 55.8, 37.7, 'B', 'свежая',       1000, 800, 200, 5000, 'placed',    NOW() - INTERVAL '1 minute'),
            (12, 42, 1,    55.75, 37.61, 'A', 55.8, 37.7, 'B', 'разобранная',  1000, 800, 200, 5000, 'accepted',  NOW()),
            (13, 42, NULL, 55.75, 37.61, 'A', 55.8, 37.7, 'B', 'отменённая',   1000, 800, 200, 5000, 'cancelled', NOW());

        SELECT setval('delivery_requests_id_seq', 13);
        SELECT setval('riders_id_seq', 1);
    `

	integration_test.SetupDB(t, setupSql)
	defer integration_test.TeardownDB(t)

	q := integration_test.GetQuerier()
	repo := request.New(q)
	ctx := context.Background()

	t.Run("Видны только открытые заявки, новые сверху", func(t *testing.T) {
		actual, err := repo.ListOpen(ctx, 10)
		require.NoError(t, err)
		require.Len(t, actual, 2)

		assert.Equal(t, int64(11), actual[0].ID)
		assert.Equal(t, int64(10), actual[1].ID)
	})

	t.Run("Лимит ограничивает выдачу", func(t *testing.T) {
		actual, err := repo.ListOpen(ctx, 1)
		require.NoError(t, err)
		require.Len(t, actual, 1)
		assert.Equal(t, int64(11), actual[0].ID)
	})
}

func TestRepository_CancelStalePlaced(t *testing.T) {
	setupSql := `
        INSERT INTO riders (id, name, phone, presence)
        VALUES (1, 'Rider 1', '+79991112233', 'online');

        INSERT INTO delivery_requests (id, customer_id, rider_id, pickup_lat, pickup_lon, pickup_address,
            dropoff_lat, dropoff_lon, dropoff_address, item_description,
            total_cents, rider_earning_cents, commission_cents, distance_meters, status, created_at)
        VALUES
            (10, 42, NULL, 55.75, 37.61, 'A', 55.8, 37.7, 'B', 'зомби',     1000, 800, 200, 5000, 'placed',   NOW() - INTERVAL '10 minutes'),
            (11, 42, NULL, 55.75, 37.61, 'A', 55.8, 37.7, 'B', 'свежая',    1000, 800, 200, 5000, 'placed',   NOW()),
            (12, 42, 1,    55.75, 37.61, 'A', 55.8, 37.7, 'B', 'в работе',  1000, 800, 200, 5000, 'accepted', NOW() - INTERVAL '10 minutes');

        SELECT setval('delivery_requests_id_seq', 12);
        SELECT setval('riders_id_seq', 1);
    `

	integration_test.SetupDB(t, setupSql)
	defer integration_test.TeardownDB(t)

	q := integration_test.GetQuerier()
	repo := request.New(q)
	ctx := context.Background()

	t.Run("Зачистка отменяет только старые placed-заявки без райдера", func(t *testing.T) {
		cancelled, err := repo.CancelStalePlaced(ctx, 5*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), cancelled)

		var status10, status11, status12 string

		err = q.QueryRow(ctx, "SELECT status FROM delivery_requests WHERE id = 10").Scan(&status10)
		require.NoError(t, err)
		assert.Equal(t, "cancelled", status10)

		err = q.QueryRow(ctx, "SELECT status FROM delivery_requests WHERE id = 11").Scan(&status11)
		require.NoError(t, err)
		assert.Equal(t, "placed", status11)

		err = q.QueryRow(ctx, "SELECT status FROM delivery_requests WHERE id = 12").Scan(&status12)
		require.NoError(t, err)
		assert.Equal(t, "accepted", status12)
	})
}
