// Package kinematics derives per-entity motion samples from a tracking
// frame store: displacement, instantaneous speed and acceleration between
// temporally adjacent samples.
//
// The engine never fabricates motion across a discontinuity. A pair of
// retained frames that spans a period boundary or a tracking gap produces a
// zeroed sample (dx=dy=dt=0, speed=0, acceleration=0) rather than an
// inflated speed from the raw positional jump. Missing positions mid-match
// are skipped transparently; they are the expected normal case for
// broadcast tracking, not a failure.
package kinematics

import (
	"math"
	"sync"

	"github.com/banshee-data/pitch.report/internal/tracking"
	"github.com/banshee-data/pitch.report/internal/units"
)

// Config holds kinematics computation parameters.
type Config struct {
	// FrameInterval is the nominal spacing between adjacent frames in
	// seconds. It is the dt fallback for frame pairs whose timestamps do
	// not produce a positive delta (duplicated or coarsely quantised
	// provider timestamps).
	FrameInterval float64
}

// DefaultConfig returns the kinematics defaults: 25 fps broadcast tracking.
func DefaultConfig() Config {
	return Config{FrameInterval: 0.04}
}

// Sample is the finite-difference motion estimate for one entity over one
// consecutive pair of positioned frames. The sample carries the trailing
// frame's identity so it can be joined back to the store.
type Sample struct {
	FrameID   int64
	PeriodID  int
	Timestamp float64
	BallState tracking.BallState

	DX       float64 // metres
	DY       float64 // metres
	DT       float64 // seconds; zero at discontinuities
	Distance float64 // metres, Euclidean norm of (DX, DY)

	Speed        float64 // m/s
	SpeedKmh     float64 // Speed × 3.6, for zone classification
	Acceleration float64 // m/s²
}

// positioned pairs a frame with its index in the store so gap detection can
// distinguish "next retained frame" from "next frame in the store".
type positioned struct {
	storeIdx  int
	frameID   int64
	periodID  int
	timestamp float64
	ballState tracking.BallState
	pos       tracking.Position
}

// Compute derives motion samples for one entity across the frame store.
// Frames where the entity has no finite position are skipped. Returns nil
// when fewer than two positioned frames exist — "not computable", not an
// error.
func Compute(frames []tracking.Frame, entityID int64, cfg Config) []Sample {
	pts := collect(frames, func(f *tracking.Frame) (tracking.Position, bool) {
		return f.EntityPosition(entityID)
	})
	return derive(pts, cfg)
}

// ComputeBall derives motion samples for the ball. The ball is one more
// tracked entity as far as the math is concerned; its samples feed the
// possession detector's velocity blend.
func ComputeBall(frames []tracking.Frame, cfg Config) []Sample {
	pts := collect(frames, func(f *tracking.Frame) (tracking.Position, bool) {
		return f.BallPosition()
	})
	return derive(pts, cfg)
}

// ComputeAll derives samples for every listed entity. Per-entity
// computations are independent and read-only over the shared store, so each
// runs on its own goroutine. Entities with fewer than two positioned frames
// are omitted from the result.
func ComputeAll(frames []tracking.Frame, entityIDs []int64, cfg Config) map[int64][]Sample {
	out := make(map[int64][]Sample, len(entityIDs))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, id := range entityIDs {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			samples := Compute(frames, id, cfg)
			if samples == nil {
				return
			}
			mu.Lock()
			out[id] = samples
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	return out
}

func collect(frames []tracking.Frame, at func(*tracking.Frame) (tracking.Position, bool)) []positioned {
	pts := make([]positioned, 0, len(frames))
	for i := range frames {
		pos, ok := at(&frames[i])
		if !ok {
			continue
		}
		pts = append(pts, positioned{
			storeIdx:  i,
			frameID:   frames[i].FrameID,
			periodID:  frames[i].PeriodID,
			timestamp: frames[i].Timestamp,
			ballState: frames[i].BallState,
			pos:       pos,
		})
	}
	return pts
}

func derive(pts []positioned, cfg Config) []Sample {
	if len(pts) < 2 {
		return nil
	}

	samples := make([]Sample, 0, len(pts)-1)
	prevSpeed := 0.0
	for i := 1; i < len(pts); i++ {
		prev, curr := pts[i-1], pts[i]
		s := Sample{
			FrameID:   curr.frameID,
			PeriodID:  curr.periodID,
			Timestamp: curr.timestamp,
			BallState: curr.ballState,
		}

		// Period boundary or tracking gap: the pair is not a real
		// motion observation. Emit the zeroed sample and reset the
		// acceleration baseline.
		if curr.periodID != prev.periodID || curr.storeIdx != prev.storeIdx+1 {
			prevSpeed = 0
			samples = append(samples, s)
			continue
		}

		dt := curr.timestamp - prev.timestamp
		if dt <= 0 {
			dt = cfg.FrameInterval
		}
		if dt <= 0 {
			prevSpeed = 0
			samples = append(samples, s)
			continue
		}

		s.DX = curr.pos.X - prev.pos.X
		s.DY = curr.pos.Y - prev.pos.Y
		s.DT = dt
		s.Distance = math.Hypot(s.DX, s.DY)
		s.Speed = s.Distance / dt
		s.SpeedKmh = units.KmhFromMps(s.Speed)
		s.Acceleration = (s.Speed - prevSpeed) / dt
		prevSpeed = s.Speed

		samples = append(samples, s)
	}
	return samples
}
