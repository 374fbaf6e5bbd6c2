package intensity

import (
	"github.com/banshee-data/pitch.report/internal/kinematics"
	"github.com/banshee-data/pitch.report/internal/tracking"
)

// DefaultSprintThresholdKmh is the conventional sprint cutoff in football
// analysis.
const DefaultSprintThresholdKmh = 20.0

// SprintInterval summarises one maximal run of consecutive in-play samples
// above the sprint threshold.
type SprintInterval struct {
	PeriodID       int     `json:"period_id"`
	StartTimestamp float64 `json:"start_timestamp"` // timestamp of the first sprinting sample
	Duration       float64 `json:"duration"`        // seconds, sum of dt over the run
	Distance       float64 `json:"distance"`        // metres, sum of distance over the run
	PeakSpeedKmh   float64 `json:"peak_speed_kmh"`
}

// DetectSprints scans the in-play samples with a two-state machine. A run
// opens on the first sample whose speed exceeds the threshold and closes on
// the first that does not; a run still open when the samples end is flushed
// rather than dropped. Single-sample runs carry no closing observation and
// are discarded.
func DetectSprints(samples []kinematics.Sample, thresholdKmh float64) []SprintInterval {
	var out []SprintInterval

	var cur SprintInterval
	open := false
	count := 0

	flush := func() {
		if open && count > 1 && cur.Duration > 0 {
			out = append(out, cur)
		}
		open = false
		count = 0
	}

	for _, s := range samples {
		if !inPlay(s) {
			flush()
			continue
		}
		sprinting := s.SpeedKmh > thresholdKmh
		switch {
		case sprinting && !open:
			cur = SprintInterval{
				PeriodID:       s.PeriodID,
				StartTimestamp: s.Timestamp,
				Duration:       s.DT,
				Distance:       s.Distance,
				PeakSpeedKmh:   s.SpeedKmh,
			}
			open = true
			count = 1
		case sprinting && open:
			cur.Duration += s.DT
			cur.Distance += s.Distance
			if s.SpeedKmh > cur.PeakSpeedKmh {
				cur.PeakSpeedKmh = s.SpeedKmh
			}
			count++
		case !sprinting && open:
			flush()
		}
	}
	flush()

	return out
}

func inPlay(s kinematics.Sample) bool {
	return s.BallState == tracking.BallAlive
}
