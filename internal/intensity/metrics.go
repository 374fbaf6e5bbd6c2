package intensity

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/pitch.report/internal/kinematics"
	"github.com/banshee-data/pitch.report/internal/tracking"
)

// PlayerMetrics aggregates one player's physical output over a match (or
// any analysed stretch of it). Roster fields are labels only; they come
// from explicitly passed metadata, never from the math.
type PlayerMetrics struct {
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name,omitempty"`
	JerseyNo int    `json:"jersey_no,omitempty"`
	TeamID   int64  `json:"team_id,omitempty"`
	TeamName string `json:"team_name,omitempty"`
	Position string `json:"position,omitempty"`

	TotalDistance  float64 `json:"total_distance"`   // metres, all samples
	InPlayDistance float64 `json:"in_play_distance"` // metres, ball alive only

	MaxSpeedKmh     float64 `json:"max_speed_kmh"`
	AvgSpeedKmh     float64 `json:"avg_speed_kmh"`
	MaxAcceleration float64 `json:"max_acceleration"` // m/s², most positive value
	MaxDeceleration float64 `json:"max_deceleration"` // m/s², most negative value

	Zones Totals `json:"zones"`

	SprintCount           int              `json:"sprint_count"`
	Sprints               []SprintInterval `json:"sprints,omitempty"`
	AvgSprintDistance     float64          `json:"avg_sprint_distance"`
	AvgSprintDuration     float64          `json:"avg_sprint_duration"`
	HighestSprintSpeedKmh float64          `json:"highest_sprint_speed_kmh"`

	// HighIntensityDistance sums in-play distance covered in zones at or
	// above HighIntensityMinKmh (running + sprint in the default table).
	HighIntensityDistance float64 `json:"high_intensity_distance"`
}

// AnalyzePlayer reduces a player's kinematic series into summary metrics.
// The boolean is false when the series is empty — nothing to analyse.
// Speed and acceleration statistics are taken over in-play samples, as is
// zone classification when inPlayOnly is set.
func AnalyzePlayer(samples []kinematics.Sample, zones []Zone, sprintThresholdKmh float64, inPlayOnly bool, player tracking.Player) (PlayerMetrics, bool) {
	if len(samples) == 0 {
		return PlayerMetrics{}, false
	}

	m := PlayerMetrics{
		PlayerID: player.ID,
		Name:     player.Name,
		JerseyNo: player.JerseyNo,
		TeamID:   player.TeamID,
		TeamName: player.TeamName,
		Position: player.Position,
	}

	var speeds, accels []float64
	for _, s := range samples {
		m.TotalDistance += s.Distance
		if !inPlay(s) {
			continue
		}
		m.InPlayDistance += s.Distance
		speeds = append(speeds, s.SpeedKmh)
		accels = append(accels, s.Acceleration)
	}

	if len(speeds) > 0 {
		m.MaxSpeedKmh = floats.Max(speeds)
		m.AvgSpeedKmh = stat.Mean(speeds, nil)
	}
	if len(accels) > 0 {
		m.MaxAcceleration = floats.Max(accels)
		m.MaxDeceleration = floats.Min(accels)
	}

	m.Zones = Classify(samples, zones, inPlayOnly)
	for _, z := range zones {
		if z.MinKmh >= HighIntensityMinKmh {
			m.HighIntensityDistance += m.Zones.DistanceByZone[z.Name]
		}
	}

	m.Sprints = DetectSprints(samples, sprintThresholdKmh)
	m.SprintCount = len(m.Sprints)
	if m.SprintCount > 0 {
		dists := make([]float64, m.SprintCount)
		durs := make([]float64, m.SprintCount)
		peaks := make([]float64, m.SprintCount)
		for i, sp := range m.Sprints {
			dists[i] = sp.Distance
			durs[i] = sp.Duration
			peaks[i] = sp.PeakSpeedKmh
		}
		m.AvgSprintDistance = stat.Mean(dists, nil)
		m.AvgSprintDuration = stat.Mean(durs, nil)
		m.HighestSprintSpeedKmh = floats.Max(peaks)
	}

	return m, true
}

// AnalyzeAll reduces the per-entity kinematics map into metrics for every
// rostered player with a computable series. Results are ordered by team,
// then jersey number, to match a team sheet.
func AnalyzeAll(kin map[int64][]kinematics.Sample, roster *tracking.Roster, zones []Zone, sprintThresholdKmh float64, inPlayOnly bool) []PlayerMetrics {
	out := make([]PlayerMetrics, 0, roster.Len())
	for _, id := range roster.IDs() {
		samples, ok := kin[id]
		if !ok {
			continue
		}
		player, _ := roster.Player(id)
		if m, ok := AnalyzePlayer(samples, zones, sprintThresholdKmh, inPlayOnly, player); ok {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TeamID != out[j].TeamID {
			return out[i].TeamID < out[j].TeamID
		}
		if out[i].JerseyNo != out[j].JerseyNo {
			return out[i].JerseyNo < out[j].JerseyNo
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}
