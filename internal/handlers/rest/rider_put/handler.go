package rider_put

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/AlekSi/pointer"
	"github.com/gorilla/mux"

	"dispatch/internal/dto"
	"dispatch/internal/entities"
	"dispatch/internal/service/rider"
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
	riderID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var riderUpdateDTO dto.RiderUpdate
	err = json.NewDecoder(r.Body).Decode(&riderUpdateDTO)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	modify := entities.RiderModify{
		ID:          pointer.To(riderID),
		Name:        riderUpdateDTO.Name,
		Phone:       riderUpdateDTO.Phone,
		VehicleType: (*entities.RiderVehicleType)(riderUpdateDTO.VehicleType),
		ImageURL:    riderUpdateDTO.ImageURL,
		Presence:    (*entities.RiderPresenceType)(riderUpdateDTO.Presence),
	}

	updated, err := h.service.UpdateRider(r.Context(), modify)
	if err != nil {
		switch {
		case errors.Is(err, rider.ErrInvalidRiderID),
			errors.Is(err, rider.ErrMissingRequiredFields),
			errors.Is(err, rider.ErrInvalidPhone),
			errors.Is(err, rider.ErrInvalidVehicleType),
			errors.Is(err, rider.ErrInvalidPresence):
			w.WriteHeader(http.StatusBadRequest)
		case errors.Is(err, rider.ErrRiderNotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, rider.ErrConflict):
			w.WriteHeader(http.StatusConflict)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	response := dto.FromRiderEntity(*updated)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err = json.NewEncoder(w).Encode(response)
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}
