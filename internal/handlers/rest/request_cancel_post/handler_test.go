package request_cancel_post_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlekSi/pointer"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"dispatch/internal/entities"
	"dispatch/internal/handlers/rest/request_cancel_post"
	"dispatch/internal/service/dispatch"
	"dispatch/pkg/logger"
)

type fakeService struct {
	record *entities.DeliveryRequest
	err    error
}

func (f *fakeService) Expire(context.Context, int64) (*entities.DeliveryRequest, error) {
	return f.record, f.err
}

func do(t *testing.T, service *fakeService, requestID string) *httptest.ResponseRecorder {
	t.Helper()

	handler := request_cancel_post.New(logger.Nop{}, service)

	router := mux.NewRouter()
	router.Handle("/request/{id}/cancel", handler).Methods(http.MethodPost)

	req := httptest.NewRequest(http.MethodPost, "/request/"+requestID+"/cancel", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequestCancelPostHandler(t *testing.T) {
	t.Parallel()

	t.Run("Успешная отмена по таймауту", func(t *testing.T) {
		t.Parallel()

		w := do(t, &fakeService{
			record: &entities.DeliveryRequest{ID: 5, Status: entities.RequestCancelled},
		}, "5")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"cancelled"`)
	})

	t.Run("Клейм успел раньше - в ответе назначение", func(t *testing.T) {
		t.Parallel()

		w := do(t, &fakeService{
			record: &entities.DeliveryRequest{
				ID:      5,
				RiderID: pointer.To(int64(2)),
				Status:  entities.RequestAccepted,
			},
		}, "5")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"accepted"`)
		assert.Contains(t, w.Body.String(), `"rider_id":2`)
	})

	t.Run("Невалидный id в пути", func(t *testing.T) {
		t.Parallel()

		w := do(t, &fakeService{}, "abc")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Заявка не найдена", func(t *testing.T) {
		t.Parallel()

		w := do(t, &fakeService{err: dispatch.ErrRequestNotFound}, "404")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
