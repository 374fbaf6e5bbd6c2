package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical analysis defaults file.
// This is the single source of truth for all default analysis values.
const DefaultConfigPath = "config/analysis.defaults.json"

// ZoneConfig describes a single speed zone band in km/h. MaxKmh omitted
// means the band is open-ended at the top.
type ZoneConfig struct {
	Name   string   `json:"name"`
	MinKmh float64  `json:"min_kmh"`
	MaxKmh *float64 `json:"max_kmh,omitempty"`
}

// AnalysisConfig represents the root configuration for the analysis
// pipeline. Fields are pointers so that partial JSON configs can be
// layered over the built-in defaults.
type AnalysisConfig struct {
	// Kinematics params
	FrameInterval *float64 `json:"frame_interval,omitempty"` // seconds, fallback dt when timestamps repeat

	// Intensity params
	SprintSpeedThresholdKmh *float64     `json:"sprint_speed_threshold_kmh,omitempty"`
	InPlayOnly              *bool        `json:"in_play_only,omitempty"`
	IntensityZones          []ZoneConfig `json:"intensity_zones,omitempty"`

	// Possession params
	PossessionDistanceThreshold   *float64 `json:"possession_distance_threshold,omitempty"` // metres
	PossessionConfidenceThreshold *float64 `json:"possession_confidence_threshold,omitempty"`
	PossessionUseVelocity         *bool    `json:"possession_use_velocity,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }

// EmptyAnalysisConfig returns an AnalysisConfig with all fields set to nil.
// Use LoadAnalysisConfig to load actual values from the defaults file.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyAnalysisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical analysis defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *AnalysisConfig {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadAnalysisConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *AnalysisConfig) Validate() error {
	if c.FrameInterval != nil {
		if *c.FrameInterval <= 0 {
			return fmt.Errorf("frame_interval must be positive, got %f", *c.FrameInterval)
		}
	}

	if c.SprintSpeedThresholdKmh != nil {
		if *c.SprintSpeedThresholdKmh <= 0 {
			return fmt.Errorf("sprint_speed_threshold_kmh must be positive, got %f", *c.SprintSpeedThresholdKmh)
		}
	}

	if c.PossessionDistanceThreshold != nil {
		if *c.PossessionDistanceThreshold <= 0 {
			return fmt.Errorf("possession_distance_threshold must be positive, got %f", *c.PossessionDistanceThreshold)
		}
	}

	if c.PossessionConfidenceThreshold != nil {
		if *c.PossessionConfidenceThreshold < 0 || *c.PossessionConfidenceThreshold > 1 {
			return fmt.Errorf("possession_confidence_threshold must be between 0 and 1, got %f", *c.PossessionConfidenceThreshold)
		}
	}

	// Zone bands must start at zero, be contiguous, and end open-ended.
	if len(c.IntensityZones) > 0 {
		if c.IntensityZones[0].MinKmh != 0 {
			return fmt.Errorf("first intensity zone must start at 0 km/h, got %f", c.IntensityZones[0].MinKmh)
		}
		for i, z := range c.IntensityZones {
			if z.Name == "" {
				return fmt.Errorf("intensity zone %d has empty name", i)
			}
			last := i == len(c.IntensityZones)-1
			if last {
				if z.MaxKmh != nil {
					return fmt.Errorf("last intensity zone %q must be open-ended", z.Name)
				}
				continue
			}
			if z.MaxKmh == nil {
				return fmt.Errorf("intensity zone %q must have max_kmh (only the last zone is open-ended)", z.Name)
			}
			if *z.MaxKmh <= z.MinKmh {
				return fmt.Errorf("intensity zone %q has max_kmh %f <= min_kmh %f", z.Name, *z.MaxKmh, z.MinKmh)
			}
			if c.IntensityZones[i+1].MinKmh != *z.MaxKmh {
				return fmt.Errorf("intensity zone %q ends at %f but next zone starts at %f", z.Name, *z.MaxKmh, c.IntensityZones[i+1].MinKmh)
			}
		}
	}

	return nil
}

// GetFrameInterval returns the frame_interval value or the default.
func (c *AnalysisConfig) GetFrameInterval() float64 {
	if c.FrameInterval == nil {
		return 0.04 // default: 25 Hz tracking feed
	}
	return *c.FrameInterval
}

// GetSprintSpeedThresholdKmh returns the sprint_speed_threshold_kmh value or the default.
func (c *AnalysisConfig) GetSprintSpeedThresholdKmh() float64 {
	if c.SprintSpeedThresholdKmh == nil {
		return 20.0
	}
	return *c.SprintSpeedThresholdKmh
}

// GetInPlayOnly returns the in_play_only value or the default.
func (c *AnalysisConfig) GetInPlayOnly() bool {
	if c.InPlayOnly == nil {
		return true
	}
	return *c.InPlayOnly
}

// GetPossessionDistanceThreshold returns the possession_distance_threshold value or the default.
func (c *AnalysisConfig) GetPossessionDistanceThreshold() float64 {
	if c.PossessionDistanceThreshold == nil {
		return 1.5 // metres
	}
	return *c.PossessionDistanceThreshold
}

// GetPossessionConfidenceThreshold returns the possession_confidence_threshold value or the default.
func (c *AnalysisConfig) GetPossessionConfidenceThreshold() float64 {
	if c.PossessionConfidenceThreshold == nil {
		return 0.7
	}
	return *c.PossessionConfidenceThreshold
}

// GetPossessionUseVelocity returns the possession_use_velocity value or the default.
func (c *AnalysisConfig) GetPossessionUseVelocity() bool {
	if c.PossessionUseVelocity == nil {
		return true
	}
	return *c.PossessionUseVelocity
}

// GetIntensityZones returns the configured zone table or the default
// five-band table.
func (c *AnalysisConfig) GetIntensityZones() []ZoneConfig {
	if len(c.IntensityZones) == 0 {
		return []ZoneConfig{
			{Name: "standing", MinKmh: 0, MaxKmh: ptrFloat64(2)},
			{Name: "walking", MinKmh: 2, MaxKmh: ptrFloat64(7)},
			{Name: "jogging", MinKmh: 7, MaxKmh: ptrFloat64(14)},
			{Name: "running", MinKmh: 14, MaxKmh: ptrFloat64(20)},
			{Name: "sprint", MinKmh: 20},
		}
	}
	return c.IntensityZones
}
