package rider

import "dispatch/internal/entities"

func ToDomain(r *RiderDB) *entities.Rider {
	if r == nil {
		return nil
	}
	return &entities.Rider{
		ID:          r.ID,
		Name:        r.Name,
		Phone:       r.Phone,
		VehicleType: entities.RiderVehicleType(r.VehicleType),
		ImageURL:    r.ImageURL,
		Presence:    entities.RiderPresenceType(r.Presence),
		LastSeenAt:  r.LastSeenAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
