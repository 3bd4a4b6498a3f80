package request

import "time"

type RequestDB struct {
	ID                int64
	OrderRef          *string
	CustomerID        *int64
	RiderID           *int64
	PickupLat         float64
	PickupLon         float64
	PickupAddress     string
	DropoffLat        float64
	DropoffLon        float64
	DropoffAddress    string
	ItemDescription   string
	TotalCents        int64
	RiderEarningCents int64
	CommissionCents   int64
	DistanceMeters    float64
	Status            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
