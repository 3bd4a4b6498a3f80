package request_post

import (
	"encoding/json"
	"errors"
	"net/http"

	"dispatch/internal/dto"
	"dispatch/internal/entities"
	"dispatch/internal/service/dispatch"
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

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var requestCreateDTO dto.RequestCreate
	err := json.NewDecoder(r.Body).Decode(&requestCreateDTO)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	order := entities.BroadcastOrder{
		CustomerID:      requestCreateDTO.CustomerID,
		Pickup:          dto.ToWaypointEntity(requestCreateDTO.Pickup),
		Dropoff:         dto.ToWaypointEntity(requestCreateDTO.Dropoff),
		ItemDescription: requestCreateDTO.ItemDescription,
	}

	created, err := h.service.CreateBroadcast(r.Context(), order)
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrInvalidWaypoint),
			errors.Is(err, dispatch.ErrEmptyDescription),
			errors.Is(err, dispatch.ErrMissingRequiredFields):
			w.WriteHeader(http.StatusBadRequest)
		case errors.Is(err, dispatch.ErrNoRidersOnline):
			w.WriteHeader(http.StatusConflict)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	response := dto.FromRequestEntity(*created)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	err = json.NewEncoder(w).Encode(response)
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}
