package rider

import (
	"regexp"
	"strings"

	"dispatch/internal/entities"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

func isValidID(id int64) bool {
	return id > 0
}

func isValidName(name string) bool {
	return strings.TrimSpace(name) != ""
}

func isValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

func isValidVehicleType(vehicleType entities.RiderVehicleType) bool {
	switch vehicleType {
	case entities.Bicycle, entities.Motorbike, entities.Car:
		return true
	default:
		return false
	}
}

func isValidPresence(presence entities.RiderPresenceType) bool {
	switch presence {
	case entities.RiderOnline, entities.RiderBusy, entities.RiderOffline:
		return true
	default:
		return false
	}
}
