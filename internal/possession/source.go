package possession

import "github.com/banshee-data/pitch.report/internal/kinematics"

// kinematicSource answers velocity lookups from pre-computed finite-
// difference samples: vx = dx/dt, vy = dy/dt, z always zero. Samples
// zeroed at a discontinuity have dt = 0 and yield no vector.
type kinematicSource struct {
	entities map[int64]map[int64]Vec3 // entity id → frame id → velocity
	ball     map[int64]Vec3
}

// FromKinematics builds a VelocitySource from per-entity and ball
// kinematic sample series, typically the output of kinematics.ComputeAll
// and kinematics.ComputeBall over the same frame store.
func FromKinematics(entities map[int64][]kinematics.Sample, ball []kinematics.Sample) VelocitySource {
	src := &kinematicSource{
		entities: make(map[int64]map[int64]Vec3, len(entities)),
		ball:     vectorsByFrame(ball),
	}
	for id, samples := range entities {
		src.entities[id] = vectorsByFrame(samples)
	}
	return src
}

func vectorsByFrame(samples []kinematics.Sample) map[int64]Vec3 {
	out := make(map[int64]Vec3, len(samples))
	for _, s := range samples {
		if s.DT <= 0 {
			continue
		}
		out[s.FrameID] = Vec3{X: s.DX / s.DT, Y: s.DY / s.DT}
	}
	return out
}

func (s *kinematicSource) EntityVelocity(frameID, entityID int64) (Vec3, bool) {
	vecs, ok := s.entities[entityID]
	if !ok {
		return Vec3{}, false
	}
	v, ok := vecs[frameID]
	return v, ok
}

func (s *kinematicSource) BallVelocity(frameID int64) (Vec3, bool) {
	v, ok := s.ball[frameID]
	return v, ok
}
