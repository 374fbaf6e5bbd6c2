package intensity

import (
	"math"

	"github.com/banshee-data/pitch.report/internal/config"
)

// ZonesFromConfig builds a zone table from a loaded AnalysisConfig. An
// omitted max on the last band maps to an open-ended interval.
func ZonesFromConfig(cfg *config.AnalysisConfig) []Zone {
	bands := cfg.GetIntensityZones()
	zones := make([]Zone, 0, len(bands))
	for _, b := range bands {
		max := math.Inf(1)
		if b.MaxKmh != nil {
			max = *b.MaxKmh
		}
		zones = append(zones, Zone{Name: b.Name, MinKmh: b.MinKmh, MaxKmh: max})
	}
	return zones
}
