// Package pipeline runs the full analysis chain over a tracked match:
// per-entity kinematics, intensity and sprint metrics, and frame-level
// ball possession.
package pipeline

import (
	"fmt"

	"github.com/banshee-data/pitch.report/internal/config"
	"github.com/banshee-data/pitch.report/internal/intensity"
	"github.com/banshee-data/pitch.report/internal/kinematics"
	"github.com/banshee-data/pitch.report/internal/possession"
	"github.com/banshee-data/pitch.report/internal/tracking"
)

// Input bundles everything needed for one analysis run.
type Input struct {
	Source string // free-form label for the tracking feed (file name, provider id)
	Frames []tracking.Frame
	Roster *tracking.Roster // optional; nil means analyze every tracked entity
}

// Result holds the derived outputs of one run.
type Result struct {
	Source     string
	FrameCount int
	Players    []intensity.PlayerMetrics
	Possession []possession.Assignment
	Shares     []possession.PlayerShare
}

// Run executes the analysis chain over in.Frames using cfg. Frames are
// sorted into period and timestamp order before any derivation, so
// callers can pass feeds in arbitrary order.
func Run(in Input, cfg *config.AnalysisConfig) (*Result, error) {
	if len(in.Frames) == 0 {
		return nil, fmt.Errorf("no frames to analyze")
	}
	if cfg == nil {
		cfg = config.EmptyAnalysisConfig()
	}

	zones := intensity.ZonesFromConfig(cfg)
	if err := intensity.ValidateZones(zones); err != nil {
		return nil, fmt.Errorf("invalid zone table: %w", err)
	}

	frames := make([]tracking.Frame, len(in.Frames))
	copy(frames, in.Frames)
	tracking.SortFrames(frames)

	roster := in.Roster
	if roster == nil || roster.Len() == 0 {
		// No team sheet: analyze every tracked entity under bare ids.
		players := make([]tracking.Player, 0)
		for _, id := range tracking.EntityIDs(frames) {
			players = append(players, tracking.Player{ID: id})
		}
		roster = tracking.NewRoster(players)
	}

	kcfg := kinematics.ConfigFromAnalysis(cfg)
	kin := kinematics.ComputeAll(frames, roster.IDs(), kcfg)
	ball := kinematics.ComputeBall(frames, kcfg)

	players := intensity.AnalyzeAll(kin, roster,
		zones, cfg.GetSprintSpeedThresholdKmh(), cfg.GetInPlayOnly())

	var src possession.VelocitySource
	if cfg.GetPossessionUseVelocity() {
		src = possession.FromKinematics(kin, ball)
	}
	assignments := possession.Detect(frames, possession.ConfigFromAnalysis(cfg), src)

	return &Result{
		Source:     in.Source,
		FrameCount: len(frames),
		Players:    players,
		Possession: assignments,
		Shares:     possession.Summarize(assignments),
	}, nil
}
