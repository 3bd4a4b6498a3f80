package request_retry_post_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"dispatch/internal/entities"
	"dispatch/internal/handlers/rest/request_retry_post"
	"dispatch/internal/service/dispatch"
	"dispatch/pkg/logger"
)

type fakeService struct {
	record *entities.DeliveryRequest
	err    error
}

func (f *fakeService) RetryBroadcast(context.Context, int64) (*entities.DeliveryRequest, error) {
	return f.record, f.err
}

func do(t *testing.T, service *fakeService, requestID string) *httptest.ResponseRecorder {
	t.Helper()

	handler := request_retry_post.New(logger.Nop{}, service)

	router := mux.NewRouter()
	router.Handle("/request/{id}/retry", handler).Methods(http.MethodPost)

	req := httptest.NewRequest(http.MethodPost, "/request/"+requestID+"/retry", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequestRetryPostHandler(t *testing.T) {
	t.Parallel()

	t.Run("Успешное перевыставление после отмены", func(t *testing.T) {
		t.Parallel()

		w := do(t, &fakeService{
			record: &entities.DeliveryRequest{ID: 6, Status: entities.RequestPlaced},
		}, "5")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"id":6`)
		assert.Contains(t, w.Body.String(), `"status":"placed"`)
	})

	t.Run("Невалидный id в пути", func(t *testing.T) {
		t.Parallel()

		w := do(t, &fakeService{}, "abc")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Старая заявка не найдена", func(t *testing.T) {
		t.Parallel()

		w := do(t, &fakeService{err: dispatch.ErrRequestNotFound}, "404")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Старую заявку уже заклеймили", func(t *testing.T) {
		t.Parallel()

		w := do(t, &fakeService{err: dispatch.ErrAlreadyClaimed}, "5")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Онлайн-райдеров нет", func(t *testing.T) {
		t.Parallel()

		w := do(t, &fakeService{err: dispatch.ErrNoRidersOnline}, "5")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Ошибка сервиса", func(t *testing.T) {
		t.Parallel()

		w := do(t, &fakeService{err: errors.New("database connection error")}, "5")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
