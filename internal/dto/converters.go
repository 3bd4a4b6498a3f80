package dto

import "dispatch/internal/entities"

func FromRequestEntity(request entities.DeliveryRequest) DeliveryRequest {
	return DeliveryRequest{
		ID:         request.ID,
		OrderRef:   request.OrderRef,
		CustomerID: request.CustomerID,
		RiderID:    request.RiderID,
		Pickup: Waypoint{
			Lat:     request.Pickup.Point.Lat,
			Lon:     request.Pickup.Point.Lon,
			Address: request.Pickup.Address,
		},
		Dropoff: Waypoint{
			Lat:     request.Dropoff.Point.Lat,
			Lon:     request.Dropoff.Point.Lon,
			Address: request.Dropoff.Address,
		},
		ItemDescription: request.ItemDescription,
		Fare: Fare{
			TotalCents:        request.Fare.TotalCents,
			RiderEarningCents: request.Fare.RiderEarningCents,
			CommissionCents:   request.Fare.CommissionCents,
			DistanceMeters:    request.Fare.DistanceMeters,
		},
		Status:    request.Status.String(),
		CreatedAt: request.CreatedAt,
		UpdatedAt: request.UpdatedAt,
	}
}

func ToRequestEntity(request DeliveryRequest) entities.DeliveryRequest {
	return entities.DeliveryRequest{
		ID:              request.ID,
		OrderRef:        request.OrderRef,
		CustomerID:      request.CustomerID,
		RiderID:         request.RiderID,
		Pickup:          ToWaypointEntity(request.Pickup),
		Dropoff:         ToWaypointEntity(request.Dropoff),
		ItemDescription: request.ItemDescription,
		Fare: entities.Fare{
			TotalCents:        request.Fare.TotalCents,
			RiderEarningCents: request.Fare.RiderEarningCents,
			CommissionCents:   request.Fare.CommissionCents,
			DistanceMeters:    request.Fare.DistanceMeters,
		},
		Status:    entities.RequestStatusType(request.Status),
		CreatedAt: request.CreatedAt,
		UpdatedAt: request.UpdatedAt,
	}
}

func ToWaypointEntity(wp Waypoint) entities.Waypoint {
	return entities.Waypoint{
		Point: entities.GeoPoint{
			Lat: wp.Lat,
			Lon: wp.Lon,
		},
		Address: wp.Address,
	}
}

func FromRiderEntity(rider entities.Rider) Rider {
	return Rider{
		ID:          rider.ID,
		Name:        rider.Name,
		Phone:       rider.Phone,
		VehicleType: rider.VehicleType.String(),
		ImageURL:    rider.ImageURL,
		Presence:    rider.Presence.String(),
		LastSeenAt:  rider.LastSeenAt,
	}
}

func FromProfileEntity(profile entities.RiderProfile) RiderProfile {
	return RiderProfile{
		ID:          profile.ID,
		Name:        profile.Name,
		VehicleType: profile.VehicleType.String(),
		ImageURL:    profile.ImageURL,
	}
}
