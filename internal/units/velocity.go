// Package units provides shared constants and conversion for speed units
package units

// Unit constants
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// KmhPerMps is the factor from metres per second to kilometres per hour.
// Intensity zone thresholds are conventionally stated in km/h while
// tracking coordinates are metres and timestamps seconds, so internal
// speeds are always m/s.
const KmhPerMps = 3.6

// ValidUnits contains all valid unit values
var ValidUnits = []string{MPS, MPH, KMPH, KPH}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "mps, mph, kmph, kph"
}

// KmhFromMps converts a speed in m/s to km/h.
func KmhFromMps(speedMPS float64) float64 {
	return speedMPS * KmhPerMps
}

// ConvertSpeed converts a speed from metres per second to the target units.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedMPS * 2.23694
	case KMPH, KPH:
		return speedMPS * KmhPerMps
	case MPS:
		return speedMPS
	default:
		return speedMPS
	}
}
