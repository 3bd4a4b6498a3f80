package entities

import "time"

type Rider struct {
	ID          int64
	Name        string
	Phone       string
	VehicleType RiderVehicleType
	ImageURL    string
	Presence    RiderPresenceType
	LastSeenAt  time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type RiderVehicleType string

const (
	Bicycle   RiderVehicleType = "bicycle"
	Motorbike RiderVehicleType = "motorbike"
	Car       RiderVehicleType = "car"
)

const DefaultVehicleType = Bicycle

func (t RiderVehicleType) String() string {
	return string(t)
}

type RiderPresenceType string

const (
	RiderOnline  RiderPresenceType = "online"
	RiderBusy    RiderPresenceType = "busy"
	RiderOffline RiderPresenceType = "offline"
)

const DefaultPresenceType = RiderOffline

func (t RiderPresenceType) String() string {
	return string(t)
}

type RiderModify struct {
	ID          *int64
	Name        *string
	Phone       *string
	VehicleType *RiderVehicleType
	ImageURL    *string
	Presence    *RiderPresenceType
}

// RiderProfile - публичная карточка райдера для заказчика.
// Телефон и прочие контакты сюда не попадают никогда.
type RiderProfile struct {
	ID          int64
	Name        string
	VehicleType RiderVehicleType
	ImageURL    string
}

func (r *Rider) PublicProfile() RiderProfile {
	return RiderProfile{
		ID:          r.ID,
		Name:        r.Name,
		VehicleType: r.VehicleType,
		ImageURL:    r.ImageURL,
	}
}
