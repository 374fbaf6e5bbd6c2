// Package tracking defines the in-memory frame store shared by the
// kinematics, intensity and possession components.
//
// A frame store is an ordered sequence of tracking frames, each carrying a
// period id, a timestamp in seconds since the start of that period, the ball
// state and position, and a map from entity id to tracked position. Frames
// arrive from an external tracking-data provider and are treated as
// immutable input: every derived structure is recomputed from the store,
// never written back into it.
package tracking

import (
	"math"
	"sort"
)

// BallState indicates whether the ball is in play for a frame.
type BallState string

const (
	BallAlive BallState = "alive"
	BallDead  BallState = "dead"
)

// Position is a tracked location on the pitch in metres.
// HasZ marks whether the height component was provided; broadcast tracking
// vendors typically supply z for the ball only.
type Position struct {
	X    float64
	Y    float64
	Z    float64
	HasZ bool
}

// Finite reports whether the planar coordinates are usable numbers.
func (p Position) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Frame is a single tracking sample: the ball plus every entity the
// provider could resolve at that instant. Entities absent from the map were
// simply not tracked in this frame; that is the normal case, not an error.
type Frame struct {
	FrameID   int64
	PeriodID  int
	Timestamp float64 // seconds since period start, non-decreasing within a period
	BallState BallState
	Ball      *Position // nil when the ball was not tracked this frame
	Entities  map[int64]Position
}

// EntityPosition returns the tracked position for an entity in this frame.
// The second return is false when the entity was untracked or the position
// is not finite.
func (f *Frame) EntityPosition(id int64) (Position, bool) {
	pos, ok := f.Entities[id]
	if !ok || !pos.Finite() {
		return Position{}, false
	}
	return pos, true
}

// InPlay reports whether the ball was in play for this frame.
func (f *Frame) InPlay() bool {
	return f.BallState == BallAlive
}

// BallPosition returns the ball position when it is present and finite.
func (f *Frame) BallPosition() (Position, bool) {
	if f.Ball == nil || !f.Ball.Finite() {
		return Position{}, false
	}
	return *f.Ball, true
}

// SortFrames orders frames by period, then timestamp, then frame id. The
// derivation code assumes this ordering; providers normally deliver frames
// sorted already so the sort is stable and cheap.
func SortFrames(frames []Frame) {
	sort.SliceStable(frames, func(i, j int) bool {
		if frames[i].PeriodID != frames[j].PeriodID {
			return frames[i].PeriodID < frames[j].PeriodID
		}
		if frames[i].Timestamp != frames[j].Timestamp {
			return frames[i].Timestamp < frames[j].Timestamp
		}
		return frames[i].FrameID < frames[j].FrameID
	})
}

// FilterInPlay returns the subset of frames where the ball is in play.
func FilterInPlay(frames []Frame) []Frame {
	out := make([]Frame, 0, len(frames))
	for _, f := range frames {
		if f.InPlay() {
			out = append(out, f)
		}
	}
	return out
}

// EntityIDs returns the sorted set of entity ids appearing in any frame.
func EntityIDs(frames []Frame) []int64 {
	seen := make(map[int64]struct{})
	for i := range frames {
		for id := range frames[i].Entities {
			seen[id] = struct{}{}
		}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
