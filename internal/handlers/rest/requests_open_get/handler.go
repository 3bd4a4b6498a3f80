package requests_open_get

import (
	"encoding/json"
	"net/http"
	"strconv"

	"dispatch/internal/dto"
	"dispatch/pkg/logger"
)

type Handler struct {
	log     handlerLogger
	service Service
}

func New(log handlerLogger, service Service) *Handler {
	handlerLog := log.With()

	return &Handler{
		log:     handlerLog,
		service: service,
	}
}

// Лента гонки: открытые заявки, новые сверху.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	open, err := h.service.ListOpen(r.Context(), limit)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	response := dto.RequestsOpenResponse{
		Requests: make([]dto.DeliveryRequest, len(open)),
	}
	for i, request := range open {
		response.Requests[i] = dto.FromRequestEntity(request)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err = json.NewEncoder(w).Encode(response)
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}
