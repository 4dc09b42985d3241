// Package spring provides a damped spring that eases a vector toward a moving target.
package spring

import "github.com/Carmen-Shannon/oxy-scene/common"

// SnapDistance is the distance to the target at or below which a spring settles.
const SnapDistance = 0.01

// Spring pulls Value toward Target. It is an explicit Euler integrator meant for small
// per-frame steps; large deltas can overshoot or diverge.
type Spring struct {
	Target   common.Vec3
	Value    common.Vec3
	Velocity common.Vec3
	// Strength scales the pull toward the target, per unit of distance.
	Strength float32
	// Damper scales the drag opposing the current velocity.
	Damper float32
}

// New creates a spring at rest on value.
//
// Parameters:
//   - value: the initial value and target
//   - strength: the pull per unit of distance
//   - damper: the drag per unit of velocity
//
// Returns:
//   - *Spring: the resting spring
func New(value common.Vec3, strength, damper float32) *Spring {
	return &Spring{Target: value, Value: value, Strength: strength, Damper: damper}
}

// Update advances the spring by deltaTime seconds. Once within SnapDistance of the target
// the spring snaps onto it and stops.
//
// Parameters:
//   - deltaTime: the step length in seconds
func (s *Spring) Update(deltaTime float32) {
	diff := s.Target.Sub(s.Value)
	if diff.Length() <= SnapDistance {
		s.Value = s.Target
		s.Velocity = common.Vec3{}
		return
	}
	force := diff.Abs().Scale(s.Strength)
	acceleration := force.Mul(diff.Normalize()).Sub(s.Velocity.Scale(s.Damper))
	s.Velocity = s.Velocity.Add(acceleration.Scale(deltaTime))
	s.Value = s.Value.Add(s.Velocity)
}

// Settled reports whether the spring rests on its target.
//
// Returns:
//   - bool: true when Value equals Target and Velocity is zero
func (s *Spring) Settled() bool {
	return s.Value == s.Target && s.Velocity == common.Vec3{}
}
