package possession

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pitch.report/internal/kinematics"
	"github.com/banshee-data/pitch.report/internal/tracking"
)

// stubSource is a fixed-vector VelocitySource for tests.
type stubSource struct {
	entity map[int64]Vec3
	ball   *Vec3
}

func (s *stubSource) EntityVelocity(_ int64, entityID int64) (Vec3, bool) {
	v, ok := s.entity[entityID]
	return v, ok
}

func (s *stubSource) BallVelocity(int64) (Vec3, bool) {
	if s.ball == nil {
		return Vec3{}, false
	}
	return *s.ball, true
}

func distanceOnly() Config {
	return Config{DistanceThreshold: 1.5, ConfidenceThreshold: 0.3, UseVelocity: false}
}

func TestDetectFrameDistanceConfidence(t *testing.T) {
	// Ball at (50,30,0); A at 0.5 m, B at 1.0 m, threshold 1.5 m →
	// confidences 0.667 and 0.333; A wins on distance alone.
	frame := tracking.Frame{
		FrameID: 1,
		Ball:    &tracking.Position{X: 50, Y: 30, Z: 0, HasZ: true},
		Entities: map[int64]tracking.Position{
			1: {X: 50.5, Y: 30, Z: 0, HasZ: true}, // A
			2: {X: 50, Y: 31, Z: 0, HasZ: true},   // B
		},
	}

	a := DetectFrame(frame, distanceOnly(), nil)
	require.True(t, a.HasPossessor)
	assert.Equal(t, int64(1), a.EntityID)
	assert.InDelta(t, 1-0.5/1.5, a.Confidence, 1e-9)
}

func TestDetectFrameThresholds(t *testing.T) {
	t.Run("beyond distance threshold excluded", func(t *testing.T) {
		frame := tracking.Frame{
			FrameID:  1,
			Ball:     &tracking.Position{X: 0, Y: 0},
			Entities: map[int64]tracking.Position{1: {X: 2, Y: 0}},
		}
		a := DetectFrame(frame, distanceOnly(), nil)
		assert.False(t, a.HasPossessor)
		assert.Zero(t, a.Confidence)
	})

	t.Run("below confidence threshold no assignment", func(t *testing.T) {
		cfg := Config{DistanceThreshold: 1.5, ConfidenceThreshold: 0.8}
		frame := tracking.Frame{
			FrameID:  1,
			Ball:     &tracking.Position{X: 0, Y: 0},
			Entities: map[int64]tracking.Position{1: {X: 1, Y: 0}}, // confidence 1/3
		}
		a := DetectFrame(frame, cfg, nil)
		assert.False(t, a.HasPossessor)
	})

	t.Run("winning confidence within bounds", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.UseVelocity = false
		frame := tracking.Frame{
			FrameID:  1,
			Ball:     &tracking.Position{X: 0, Y: 0},
			Entities: map[int64]tracking.Position{1: {X: 0.1, Y: 0}},
		}
		a := DetectFrame(frame, cfg, nil)
		require.True(t, a.HasPossessor)
		assert.GreaterOrEqual(t, a.Confidence, cfg.ConfidenceThreshold)
		assert.LessOrEqual(t, a.Confidence, 1.0)
	})
}

func TestDetectFrameMissingBall(t *testing.T) {
	frame := tracking.Frame{
		FrameID:  9,
		Entities: map[int64]tracking.Position{1: {X: 0, Y: 0}},
	}
	a := DetectFrame(frame, distanceOnly(), nil)
	assert.False(t, a.HasPossessor)
	assert.Equal(t, int64(9), a.FrameID)
}

func TestDetectFrameTieBreak(t *testing.T) {
	// Equidistant candidates: first-seen (lowest entity id) keeps the
	// frame because a later candidate must score strictly higher.
	frame := tracking.Frame{
		FrameID: 1,
		Ball:    &tracking.Position{X: 0, Y: 0},
		Entities: map[int64]tracking.Position{
			7: {X: 0.5, Y: 0},
			3: {X: -0.5, Y: 0},
		},
	}
	a := DetectFrame(frame, distanceOnly(), nil)
	require.True(t, a.HasPossessor)
	assert.Equal(t, int64(3), a.EntityID)
}

func TestDetectFrameVelocityBlend(t *testing.T) {
	frame := tracking.Frame{
		FrameID: 1,
		Ball:    &tracking.Position{X: 0, Y: 0},
		Entities: map[int64]tracking.Position{
			1: {X: 0.75, Y: 0},
		},
	}
	cfg := Config{DistanceThreshold: 1.5, ConfidenceThreshold: 0.3, UseVelocity: true}
	distConf := 0.5

	t.Run("aligned vectors raise confidence", func(t *testing.T) {
		src := &stubSource{
			entity: map[int64]Vec3{1: {X: 4, Y: 0}},
			ball:   &Vec3{X: 6, Y: 0},
		}
		a := DetectFrame(frame, cfg, src)
		require.True(t, a.HasPossessor)
		// cosine 1 → similarity 1 → 0.7×0.5 + 0.3×1 = 0.65
		assert.InDelta(t, 0.7*distConf+0.3, a.Confidence, 1e-9)
	})

	t.Run("opposed vectors lower confidence", func(t *testing.T) {
		src := &stubSource{
			entity: map[int64]Vec3{1: {X: 4, Y: 0}},
			ball:   &Vec3{X: -6, Y: 0},
		}
		a := DetectFrame(frame, cfg, src)
		require.True(t, a.HasPossessor)
		// cosine -1 → similarity 0 → 0.7×0.5 = 0.35
		assert.InDelta(t, 0.7*distConf, a.Confidence, 1e-9)
	})

	t.Run("zero magnitude skips blend", func(t *testing.T) {
		src := &stubSource{
			entity: map[int64]Vec3{1: {}},
			ball:   &Vec3{X: 6, Y: 0},
		}
		a := DetectFrame(frame, cfg, src)
		require.True(t, a.HasPossessor)
		assert.InDelta(t, distConf, a.Confidence, 1e-9)
	})

	t.Run("no ball velocity skips blend", func(t *testing.T) {
		src := &stubSource{entity: map[int64]Vec3{1: {X: 4, Y: 0}}}
		a := DetectFrame(frame, cfg, src)
		require.True(t, a.HasPossessor)
		assert.InDelta(t, distConf, a.Confidence, 1e-9)
	})
}

func TestDetectDeterministic(t *testing.T) {
	frames := []tracking.Frame{
		{
			FrameID: 1,
			Ball:    &tracking.Position{X: 0, Y: 0},
			Entities: map[int64]tracking.Position{
				1: {X: 0.2, Y: 0},
				2: {X: 1.0, Y: 0},
			},
		},
		{FrameID: 2}, // no ball
	}
	cfg := distanceOnly()

	first := Detect(frames, cfg, nil)
	second := Detect(frames, cfg, nil)
	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.True(t, first[0].HasPossessor)
	assert.False(t, first[1].HasPossessor)
}

func TestFromKinematics(t *testing.T) {
	entitySamples := map[int64][]kinematics.Sample{
		1: {
			{FrameID: 2, DX: 0.4, DY: 0, DT: 0.04},
			{FrameID: 3, DT: 0}, // discontinuity: no vector
		},
	}
	ballSamples := []kinematics.Sample{
		{FrameID: 2, DX: 0.8, DY: 0.4, DT: 0.04},
	}

	src := FromKinematics(entitySamples, ballSamples)

	v, ok := src.EntityVelocity(2, 1)
	require.True(t, ok)
	assert.InDelta(t, 10.0, v.X, 1e-9)
	assert.Zero(t, v.Y)

	_, ok = src.EntityVelocity(3, 1)
	assert.False(t, ok)

	_, ok = src.EntityVelocity(2, 99)
	assert.False(t, ok)

	bv, ok := src.BallVelocity(2)
	require.True(t, ok)
	assert.InDelta(t, 20.0, bv.X, 1e-9)
	assert.InDelta(t, 10.0, bv.Y, 1e-9)

	_, ok = src.BallVelocity(9)
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	assignments := []Assignment{
		{FrameID: 1, EntityID: 10, HasPossessor: true, Confidence: 0.9},
		{FrameID: 2, EntityID: 10, HasPossessor: true, Confidence: 0.8},
		{FrameID: 3, EntityID: 20, HasPossessor: true, Confidence: 0.7},
		{FrameID: 4},
	}

	shares := Summarize(assignments)
	require.Len(t, shares, 2)
	assert.Equal(t, int64(10), shares[0].PlayerID)
	assert.Equal(t, 2, shares[0].Frames)
	assert.InDelta(t, 2.0/3.0, shares[0].Share, 1e-9)
	assert.Equal(t, int64(20), shares[1].PlayerID)
	assert.InDelta(t, 1.0/3.0, shares[1].Share, 1e-9)

	assert.Empty(t, Summarize(nil))
}
