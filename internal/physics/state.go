package physics

import "gonum.org/v1/gonum/spatial/r3"

// ProjectileState is (x, y, z, vx, vy, vz) in a right-handed frame with y up.
type ProjectileState [6]float64

func NewProjectileState(pos, vel r3.Vec) ProjectileState {
	return ProjectileState{pos.X, pos.Y, pos.Z, vel.X, vel.Y, vel.Z}
}

func (s ProjectileState) Add(other ProjectileState) ProjectileState {
	for i := range s {
		s[i] += other[i]
	}
	return s
}

func (s ProjectileState) Scale(factor float64) ProjectileState {
	for i := range s {
		s[i] *= factor
	}
	return s
}

func (s ProjectileState) Slice() []float64 { return s[:] }

func (s ProjectileState) Position() r3.Vec { return r3.Vec{X: s[0], Y: s[1], Z: s[2]} }
func (s ProjectileState) Velocity() r3.Vec { return r3.Vec{X: s[3], Y: s[4], Z: s[5]} }

// PendulumState is (theta1, omega1, theta2, omega2). Angles are measured from
// the downward vertical and are not wrapped.
type PendulumState [4]float64

func (s PendulumState) Add(other PendulumState) PendulumState {
	for i := range s {
		s[i] += other[i]
	}
	return s
}

func (s PendulumState) Scale(factor float64) PendulumState {
	for i := range s {
		s[i] *= factor
	}
	return s
}

func (s PendulumState) Slice() []float64 { return s[:] }

func (s PendulumState) Angles() (theta1, theta2 float64) { return s[0], s[2] }
