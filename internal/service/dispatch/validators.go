package dispatch

import (
	"strings"

	"dispatch/internal/entities"
)

func isValidID(id int64) bool {
	return id > 0
}

func isValidWaypoint(wp entities.Waypoint) bool {
	if strings.TrimSpace(wp.Address) == "" {
		return false
	}
	if wp.Point.Lat < -90 || wp.Point.Lat > 90 {
		return false
	}
	if wp.Point.Lon < -180 || wp.Point.Lon > 180 {
		return false
	}
	return true
}

func isValidDescription(description string) bool {
	return strings.TrimSpace(description) != ""
}
