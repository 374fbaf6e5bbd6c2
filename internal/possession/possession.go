// Package possession assigns a likely ball possessor to each tracking
// frame using a distance heuristic, optionally refined by how well the
// candidate's velocity vector aligns with the ball's.
//
// The detector is deliberately stateless and frame-local: each frame is
// scored independently and no possession state is smoothed across frames,
// so assignments can flicker between nearby players. A hysteresis or
// hidden-state smoother over the confidence sequence is a known extension
// point, not something this package quietly applies.
package possession

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/pitch.report/internal/tracking"
)

// Blend weights when velocity refinement is available for a candidate.
const (
	distanceWeight = 0.7
	velocityWeight = 0.3
)

// Config holds the possession heuristic parameters.
type Config struct {
	// DistanceThreshold is the maximum ball distance in metres for a
	// player to be a candidate at all; beyond it the player cannot win
	// the frame.
	DistanceThreshold float64
	// ConfidenceThreshold is the minimum winning confidence for a frame
	// to receive an assignment.
	ConfidenceThreshold float64
	// UseVelocity enables the velocity-alignment blend when both the
	// candidate's and the ball's velocity vectors are available.
	UseVelocity bool
}

// DefaultConfig returns the tuned football defaults.
func DefaultConfig() Config {
	return Config{
		DistanceThreshold:   1.5,
		ConfidenceThreshold: 0.7,
		UseVelocity:         true,
	}
}

// Vec3 is a velocity vector in m/s. Z is zero for planar sources.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// Assignment is the detector output for one frame. HasPossessor is false
// when no candidate cleared the confidence threshold or the frame carried
// no usable ball position.
type Assignment struct {
	FrameID      int64   `json:"frame_id"`
	EntityID     int64   `json:"entity_id,omitempty"`
	HasPossessor bool    `json:"has_possessor"`
	Confidence   float64 `json:"confidence,omitempty"`
}

// VelocitySource supplies instantaneous velocity vectors for the blend.
// Sources report false for frames where no vector is available (tracking
// gaps, the first frame of a period); the detector then scores that
// candidate on distance alone.
type VelocitySource interface {
	EntityVelocity(frameID, entityID int64) (Vec3, bool)
	BallVelocity(frameID int64) (Vec3, bool)
}

// Detect scores every frame independently. The returned slice is parallel
// to frames. src may be nil when cfg.UseVelocity is false.
func Detect(frames []tracking.Frame, cfg Config, src VelocitySource) []Assignment {
	out := make([]Assignment, len(frames))
	for i := range frames {
		out[i] = DetectFrame(frames[i], cfg, src)
	}
	return out
}

// DetectFrame assigns the most likely possessor for a single frame.
// Candidates are visited in ascending entity id order and a later candidate
// must score strictly higher to displace the incumbent, making the
// documented arbitrary tie-break deterministic.
func DetectFrame(frame tracking.Frame, cfg Config, src VelocitySource) Assignment {
	out := Assignment{FrameID: frame.FrameID}

	ball, ok := frame.BallPosition()
	if !ok {
		// No reference point: the frame contributes no assignment.
		return out
	}

	var ballVel Vec3
	haveBallVel := false
	if cfg.UseVelocity && src != nil {
		ballVel, haveBallVel = src.BallVelocity(frame.FrameID)
	}

	var bestID int64
	best := 0.0
	found := false
	for _, id := range sortedEntityIDs(frame.Entities) {
		pos, ok := frame.EntityPosition(id)
		if !ok {
			continue
		}
		dist := ballDistance(pos, ball)
		if dist > cfg.DistanceThreshold {
			continue
		}
		conf := 1 - dist/cfg.DistanceThreshold
		if conf <= 0 {
			continue
		}

		if haveBallVel {
			if vel, ok := src.EntityVelocity(frame.FrameID, id); ok {
				if sim, ok := cosineSimilarity(vel, ballVel); ok {
					conf = distanceWeight*conf + velocityWeight*(sim+1)/2
				}
			}
		}

		if conf > best {
			best = conf
			bestID = id
			found = true
		}
	}

	if !found || best < cfg.ConfidenceThreshold {
		return out
	}
	out.EntityID = bestID
	out.HasPossessor = true
	out.Confidence = best
	return out
}

// ballDistance is the Euclidean distance from a player to the ball: 3D when
// both positions carry a height, otherwise planar.
func ballDistance(p, ball tracking.Position) float64 {
	v := []float64{p.X - ball.X, p.Y - ball.Y, 0}
	if p.HasZ && ball.HasZ {
		v[2] = p.Z - ball.Z
	}
	return floats.Norm(v, 2)
}

// cosineSimilarity returns the cosine of the angle between two velocity
// vectors, or false when either has zero magnitude (direction undefined,
// the blend is skipped).
func cosineSimilarity(a, b Vec3) (float64, bool) {
	av := []float64{a.X, a.Y, a.Z}
	bv := []float64{b.X, b.Y, b.Z}
	na := floats.Norm(av, 2)
	nb := floats.Norm(bv, 2)
	if na == 0 || nb == 0 {
		return 0, false
	}
	return floats.Dot(av, bv) / (na * nb), true
}

func sortedEntityIDs(entities map[int64]tracking.Position) []int64 {
	ids := make([]int64, 0, len(entities))
	for id := range entities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
