package rider

import "time"

type RiderDB struct {
	ID          int64
	Name        string
	Phone       string
	VehicleType string
	ImageURL    string
	Presence    string
	LastSeenAt  time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
