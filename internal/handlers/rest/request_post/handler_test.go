package request_post_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlekSi/pointer"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"dispatch/internal/entities"
	"dispatch/internal/handlers/rest/request_post"
	"dispatch/internal/service/dispatch"
)

type mock struct {
	*MockService
	*MockhandlerLogger
}

func newMock(ctrl *gomock.Controller) *mock {
	return &mock{
		MockService:       NewMockService(ctrl),
		MockhandlerLogger: NewMockhandlerLogger(ctrl),
	}
}

func placedRequest() *entities.DeliveryRequest {
	return &entities.DeliveryRequest{
		ID:         1,
		CustomerID: pointer.To(int64(7)),
		Pickup: entities.Waypoint{
			Point:   entities.GeoPoint{Lat: 55.75, Lon: 37.61},
			Address: "Тверская, 1",
		},
		Dropoff: entities.Waypoint{
			Point:   entities.GeoPoint{Lat: 55.80, Lon: 37.70},
			Address: "Измайловский проспект, 73",
		},
		ItemDescription: "пакет документов",
		Fare:            entities.Fare{TotalCents: 1030, RiderEarningCents: 824, CommissionCents: 206},
		Status:          entities.RequestPlaced,
	}
}

func TestRequestPostHandler(t *testing.T) {
	t.Parallel()

	validBody := `{
		"customer_id": 7,
		"pickup": {"lat": 55.75, "lon": 37.61, "address": "Тверская, 1"},
		"dropoff": {"lat": 55.80, "lon": 37.70, "address": "Измайловский проспект, 73"},
		"item_description": "пакет документов"
	}`

	tests := []struct {
		name           string
		requestBody    string
		mockSetup      func(m *mock)
		expectedStatus int
	}{
		{
			name:        "Успешное создание заявки",
			requestBody: validBody,
			mockSetup: func(m *mock) {
				m.MockService.EXPECT().
					CreateBroadcast(gomock.Any(), gomock.Any()).
					Return(placedRequest(), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Невалидный JSON в теле запроса",
			requestBody:    "invalid json",
			mockSetup:      nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Невалидные координаты",
			requestBody: validBody,
			mockSetup: func(m *mock) {
				m.MockService.EXPECT().
					CreateBroadcast(gomock.Any(), gomock.Any()).
					Return(nil, dispatch.ErrInvalidWaypoint)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Пустое описание посылки",
			requestBody: validBody,
			mockSetup: func(m *mock) {
				m.MockService.EXPECT().
					CreateBroadcast(gomock.Any(), gomock.Any()).
					Return(nil, dispatch.ErrEmptyDescription)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Нет райдеров онлайн",
			requestBody: validBody,
			mockSetup: func(m *mock) {
				m.MockService.EXPECT().
					CreateBroadcast(gomock.Any(), gomock.Any()).
					Return(nil, dispatch.ErrNoRidersOnline)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:        "Ошибка сервиса",
			requestBody: validBody,
			mockSetup: func(m *mock) {
				m.MockService.EXPECT().
					CreateBroadcast(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("database connection error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)

			m := newMock(ctrl)

			m.MockhandlerLogger.EXPECT().
				With(gomock.Any()).
				Return(m.MockhandlerLogger).
				AnyTimes()

			if tt.mockSetup != nil {
				tt.mockSetup(m)
			}

			handler := request_post.New(m.MockhandlerLogger, m.MockService)

			req := httptest.NewRequest(http.MethodPost, "/request", bytes.NewReader([]byte(tt.requestBody)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code, "unexpected status code")

			if tt.expectedStatus == http.StatusCreated {
				assert.Contains(t, w.Body.String(), `"status":"placed"`)
			}
		})
	}
}
