package request

import "dispatch/internal/entities"

func ToDomain(r *RequestDB) *entities.DeliveryRequest {
	if r == nil {
		return nil
	}
	return &entities.DeliveryRequest{
		ID:         r.ID,
		OrderRef:   r.OrderRef,
		CustomerID: r.CustomerID,
		RiderID:    r.RiderID,
		Pickup: entities.Waypoint{
			Point:   entities.GeoPoint{Lat: r.PickupLat, Lon: r.PickupLon},
			Address: r.PickupAddress,
		},
		Dropoff: entities.Waypoint{
			Point:   entities.GeoPoint{Lat: r.DropoffLat, Lon: r.DropoffLon},
			Address: r.DropoffAddress,
		},
		ItemDescription: r.ItemDescription,
		Fare: entities.Fare{
			TotalCents:        r.TotalCents,
			RiderEarningCents: r.RiderEarningCents,
			CommissionCents:   r.CommissionCents,
			DistanceMeters:    r.DistanceMeters,
		},
		Status:    entities.RequestStatusType(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
