package entities

import "time"

// GeoPoint - координаты WGS84.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// Waypoint - точка маршрута: координаты плюс адрес, как его ввёл клиент.
type Waypoint struct {
	Point   GeoPoint
	Address string
}

type RequestStatusType string

const (
	// RequestPlaced - заявка создана и видна всем онлайн-райдерам.
	RequestPlaced RequestStatusType = "placed"
	// RequestAccepted - райдер выиграл гонку, назначение неизменяемо.
	RequestAccepted RequestStatusType = "accepted"
	// RequestCancelled - дедлайн прошёл без клейма.
	RequestCancelled RequestStatusType = "cancelled"
)

func (s RequestStatusType) String() string {
	return string(s)
}

// Fare - коммерческие условия заявки, считаются один раз при создании.
// Все деньги в центах.
type Fare struct {
	TotalCents        int64
	RiderEarningCents int64
	CommissionCents   int64
	DistanceMeters    float64
}

// DeliveryRequest - broadcast-заявка на доставку. RiderID == nil пока
// никто не заклеймил; после клейма назначение в рамках гонки не меняется.
type DeliveryRequest struct {
	ID              int64
	OrderRef        *string
	CustomerID      *int64
	RiderID         *int64
	Pickup          Waypoint
	Dropoff         Waypoint
	ItemDescription string
	Fare            Fare
	Status          RequestStatusType
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Claimed сообщает, назначен ли райдер.
func (r *DeliveryRequest) Claimed() bool {
	return r.RiderID != nil
}

// Open сообщает, доступна ли заявка для клейма.
func (r *DeliveryRequest) Open() bool {
	return r.Status == RequestPlaced && r.RiderID == nil
}

// BroadcastOrder - входные данные для создания заявки. Тариф и статус
// проставляет диспетчер.
type BroadcastOrder struct {
	OrderRef        *string
	CustomerID      *int64
	Pickup          Waypoint
	Dropoff         Waypoint
	ItemDescription string
}

// DeliveryRequestModify - частичное обновление для репозитория.
type DeliveryRequestModify struct {
	ID              *int64
	OrderRef        *string
	CustomerID      *int64
	RiderID         *int64
	Pickup          *Waypoint
	Dropoff         *Waypoint
	ItemDescription *string
	Fare            *Fare
	Status          *RequestStatusType
}
