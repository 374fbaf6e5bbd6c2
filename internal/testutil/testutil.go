// Package testutil provides shared test assertions and tracking fixtures.
package testutil

import (
	"testing"

	"github.com/banshee-data/pitch.report/internal/tracking"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// ConstantVelocityFrames builds n in-play frames at interval dt where each
// entity moves from its start position at its velocity and the ball does the
// same. Starts and velocities are keyed by entity id; the ball uses id 0 if
// present.
func ConstantVelocityFrames(n int, dt float64, starts, velocities map[int64]tracking.Position) []tracking.Frame {
	frames := make([]tracking.Frame, 0, n)
	for i := 0; i < n; i++ {
		ts := float64(i) * dt
		f := tracking.Frame{
			FrameID:   int64(i),
			PeriodID:  1,
			Timestamp: ts,
			BallState: tracking.BallAlive,
			Entities:  make(map[int64]tracking.Position, len(starts)),
		}
		for id, start := range starts {
			v := velocities[id]
			pos := tracking.Position{X: start.X + v.X*ts, Y: start.Y + v.Y*ts}
			if id == 0 {
				f.Ball = &pos
				continue
			}
			f.Entities[id] = pos
		}
		frames = append(frames, f)
	}
	return frames
}
