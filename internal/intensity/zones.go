// Package intensity buckets kinematic samples into speed-defined intensity
// zones, detects sprint intervals, and reduces both into per-player
// physical performance metrics.
package intensity

import (
	"fmt"
	"math"

	"github.com/banshee-data/pitch.report/internal/kinematics"
)

// Zone is a named half-open speed interval [MinKmh, MaxKmh) in km/h. The
// top zone uses +Inf as its upper bound so the table covers [0, ∞).
type Zone struct {
	Name   string
	MinKmh float64
	MaxKmh float64
}

// DefaultZones returns the conventional football intensity table.
func DefaultZones() []Zone {
	return []Zone{
		{Name: "standing", MinKmh: 0, MaxKmh: 2},
		{Name: "walking", MinKmh: 2, MaxKmh: 7},
		{Name: "jogging", MinKmh: 7, MaxKmh: 14},
		{Name: "running", MinKmh: 14, MaxKmh: 20},
		{Name: "sprint", MinKmh: 20, MaxKmh: math.Inf(1)},
	}
}

// HighIntensityMinKmh is the lower bound of "high intensity" work: the
// running and sprint zones of the default table.
const HighIntensityMinKmh = 14.0

// ValidateZones checks that the table is non-empty, starts at zero, is
// contiguous and non-overlapping, and that the last zone is open-ended.
// Every sample speed must map to exactly one zone.
func ValidateZones(zones []Zone) error {
	if len(zones) == 0 {
		return fmt.Errorf("intensity zone table is empty")
	}
	if zones[0].MinKmh != 0 {
		return fmt.Errorf("first zone %q starts at %g km/h, must start at 0", zones[0].Name, zones[0].MinKmh)
	}
	for i, z := range zones {
		if z.Name == "" {
			return fmt.Errorf("zone %d has no name", i)
		}
		if z.MaxKmh <= z.MinKmh {
			return fmt.Errorf("zone %q has empty interval [%g, %g)", z.Name, z.MinKmh, z.MaxKmh)
		}
		if i > 0 && z.MinKmh != zones[i-1].MaxKmh {
			return fmt.Errorf("zone %q starts at %g km/h, previous zone ends at %g", z.Name, z.MinKmh, zones[i-1].MaxKmh)
		}
	}
	if !math.IsInf(zones[len(zones)-1].MaxKmh, 1) {
		return fmt.Errorf("last zone %q must be open-ended", zones[len(zones)-1].Name)
	}
	return nil
}

// Totals holds distance (metres) and elapsed time (seconds) aggregated per
// zone name.
type Totals struct {
	DistanceByZone map[string]float64 `json:"distance_by_zone"`
	TimeByZone     map[string]float64 `json:"time_by_zone"`
}

// Classify aggregates each sample's distance and dt into the zone
// containing its speed. When inPlayOnly is set, dead-ball samples are
// skipped: stationary restart time does not reflect match-intensity effort.
func Classify(samples []kinematics.Sample, zones []Zone, inPlayOnly bool) Totals {
	totals := Totals{
		DistanceByZone: make(map[string]float64, len(zones)),
		TimeByZone:     make(map[string]float64, len(zones)),
	}
	for _, z := range zones {
		totals.DistanceByZone[z.Name] = 0
		totals.TimeByZone[z.Name] = 0
	}

	for _, s := range samples {
		if inPlayOnly && !inPlay(s) {
			continue
		}
		z, ok := zoneFor(zones, s.SpeedKmh)
		if !ok {
			continue
		}
		totals.DistanceByZone[z.Name] += s.Distance
		totals.TimeByZone[z.Name] += s.DT
	}
	return totals
}

// zoneFor returns the zone whose half-open interval contains the speed.
func zoneFor(zones []Zone, speedKmh float64) (Zone, bool) {
	for _, z := range zones {
		if speedKmh >= z.MinKmh && speedKmh < z.MaxKmh {
			return z, true
		}
	}
	return Zone{}, false
}
