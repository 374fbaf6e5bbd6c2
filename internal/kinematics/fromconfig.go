package kinematics

import "github.com/banshee-data/pitch.report/internal/config"

// ConfigFromAnalysis builds a kinematics Config from a loaded AnalysisConfig.
// Use this in production code where the AnalysisConfig is already loaded.
func ConfigFromAnalysis(cfg *config.AnalysisConfig) Config {
	return Config{
		FrameInterval: cfg.GetFrameInterval(),
	}
}
