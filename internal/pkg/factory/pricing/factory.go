// Package pricing считает тариф заявки по прямому расстоянию между
// точками маршрута. Тариф фиксируется один раз при создании заявки и
// дальше не пересчитывается.
package pricing

import (
	"math"

	"dispatch/internal/entities"
)

const (
	baseFareCents     = 250
	perKilometerCents = 120
	minFareCents      = 400

	// Доля платформы от итоговой суммы, остальное - заработок райдера.
	commissionPercent = 20

	earthRadiusMeters = 6371000.0
)

type Factory struct{}

func New() *Factory {
	return &Factory{}
}

// Quote - базовый тариф плюс покилометровая ставка по haversine-дистанции,
// но не меньше минималки.
func (f *Factory) Quote(pickup, dropoff entities.Waypoint) entities.Fare {
	distance := haversineMeters(pickup.Point, dropoff.Point)

	total := int64(baseFareCents + distance/1000*perKilometerCents)
	if total < minFareCents {
		total = minFareCents
	}

	commission := total * commissionPercent / 100

	return entities.Fare{
		TotalCents:        total,
		RiderEarningCents: total - commission,
		CommissionCents:   commission,
		DistanceMeters:    distance,
	}
}

func haversineMeters(a, b entities.GeoPoint) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
