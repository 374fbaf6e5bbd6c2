package possession

import "github.com/banshee-data/pitch.report/internal/config"

// ConfigFromAnalysis builds a possession Config from a loaded AnalysisConfig.
func ConfigFromAnalysis(cfg *config.AnalysisConfig) Config {
	return Config{
		DistanceThreshold:   cfg.GetPossessionDistanceThreshold(),
		ConfidenceThreshold: cfg.GetPossessionConfidenceThreshold(),
		UseVelocity:         cfg.GetPossessionUseVelocity(),
	}
}
