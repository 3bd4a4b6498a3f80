package ping_get_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"dispatch/internal/handlers/rest/ping_get"
	"dispatch/pkg/logger"
)

func TestPingGetHandler(t *testing.T) {
	t.Parallel()

	handler := ping_get.New(logger.Nop{})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}
