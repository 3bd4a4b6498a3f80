// Package dto - формы REST API. Поддерживаются вручную: OpenAPI-спеки
// у сервиса нет, контракт фиксируют тесты хендлеров.
package dto

import "time"

type Waypoint struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address"`
}

type Fare struct {
	TotalCents        int64   `json:"total_cents"`
	RiderEarningCents int64   `json:"rider_earning_cents"`
	CommissionCents   int64   `json:"commission_cents"`
	DistanceMeters    float64 `json:"distance_meters"`
}

type DeliveryRequest struct {
	ID              int64     `json:"id"`
	OrderRef        *string   `json:"order_ref,omitempty"`
	CustomerID      *int64    `json:"customer_id,omitempty"`
	RiderID         *int64    `json:"rider_id,omitempty"`
	Pickup          Waypoint  `json:"pickup"`
	Dropoff         Waypoint  `json:"dropoff"`
	ItemDescription string    `json:"item_description"`
	Fare            Fare      `json:"fare"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type RequestCreate struct {
	CustomerID      *int64   `json:"customer_id,omitempty"`
	Pickup          Waypoint `json:"pickup"`
	Dropoff         Waypoint `json:"dropoff"`
	ItemDescription string   `json:"item_description"`
}

type RequestClaim struct {
	RiderID int64 `json:"rider_id"`
}

type RequestsOpenResponse struct {
	Requests []DeliveryRequest `json:"requests"`
}

type RiderProfile struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	VehicleType string `json:"vehicle_type"`
	ImageURL    string `json:"image_url,omitempty"`
}

type RiderCreate struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	VehicleType string `json:"vehicle_type"`
	ImageURL    string `json:"image_url,omitempty"`
}

type RiderCreateResponse struct {
	ID int64 `json:"id"`
}

type RiderUpdate struct {
	Name        *string `json:"name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	VehicleType *string `json:"vehicle_type,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	Presence    *string `json:"presence,omitempty"`
}

type Rider struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	VehicleType string    `json:"vehicle_type"`
	ImageURL    string    `json:"image_url,omitempty"`
	Presence    string    `json:"presence"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

type RidersOnlineResponse struct {
	RiderIDs []int64 `json:"rider_ids"`
}

type PingResponse struct {
	Message *string `json:"message,omitempty"`
}
