package physics

import (
	"math"

	"github.com/san-kum/mechsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	DefaultMass   = 1.0
	DefaultLength = 1.0
)

type PendulumParams struct {
	M1, M2  float64
	L1, L2  float64
	Gravity float64
}

func DefaultPendulumParams() PendulumParams {
	return PendulumParams{
		M1: DefaultMass, M2: DefaultMass,
		L1: DefaultLength, L2: DefaultLength,
		Gravity: DefaultGravity,
	}
}

func (p PendulumParams) Validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"m1", p.M1}, {"m2", p.M2}, {"l1", p.L1}, {"l2", p.L2},
	} {
		if !(v.value > 0) || math.IsInf(v.value, 0) {
			return dynamo.BoundsError(v.name, v.value, "positive and finite")
		}
	}
	if math.IsNaN(p.Gravity) || math.IsInf(p.Gravity, 0) {
		return dynamo.BoundsError("gravity", p.Gravity, "finite")
	}
	return nil
}

// DoublePendulum is two point masses on rigid massless rods hanging from a
// fixed pivot, without friction.
type DoublePendulum struct {
	params PendulumParams
}

func NewDoublePendulum(params PendulumParams) (*DoublePendulum, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &DoublePendulum{params: params}, nil
}

func (d *DoublePendulum) Params() PendulumParams { return d.params }

// Derive evaluates the closed-form equations of motion. Both angular
// accelerations share the denominator (m1+m2)L1 - m2 L1 cos^2(delta), which
// stays positive for positive masses and lengths.
func (d *DoublePendulum) Derive(t float64, x PendulumState) PendulumState {
	theta1, omega1, theta2, omega2 := x[0], x[1], x[2], x[3]
	m1, m2, l1, l2, g := d.params.M1, d.params.M2, d.params.L1, d.params.L2, d.params.Gravity

	delta := theta2 - theta1
	sinD, cosD := math.Sincos(delta)
	sin1, sin2 := math.Sin(theta1), math.Sin(theta2)

	den := (m1+m2)*l1 - m2*l1*cosD*cosD

	alpha1 := (m2*l1*omega1*omega1*sinD*cosD +
		m2*g*sin2*cosD +
		m2*l2*omega2*omega2*sinD -
		(m1+m2)*g*sin1) / den

	alpha2 := (-m2*l2*omega2*omega2*sinD*cosD +
		(m1+m2)*(g*sin1*cosD-l1*omega1*omega1*sinD-g*sin2)) / den

	return PendulumState{omega1, alpha1, omega2, alpha2}
}

// Energy is kinetic plus potential energy with the pivot as zero height.
func (d *DoublePendulum) Energy(x PendulumState) float64 {
	theta1, omega1, theta2, omega2 := x[0], x[1], x[2], x[3]
	m1, m2, l1, l2, g := d.params.M1, d.params.M2, d.params.L1, d.params.L2, d.params.Gravity

	v1sq := l1 * l1 * omega1 * omega1
	v2sq := l1*l1*omega1*omega1 + l2*l2*omega2*omega2 +
		2*l1*l2*omega1*omega2*math.Cos(theta1-theta2)

	ke := 0.5*m1*v1sq + 0.5*m2*v2sq
	y1 := -l1 * math.Cos(theta1)
	y2 := y1 - l2*math.Cos(theta2)
	pe := m1*g*y1 + m2*g*y2

	return ke + pe
}

// Positions returns the Cartesian positions of both bobs, pivot at the
// origin and y pointing up.
func (d *DoublePendulum) Positions(theta1, theta2 float64) (bob1, bob2 r2.Vec) {
	bob1 = r2.Vec{
		X: d.params.L1 * math.Sin(theta1),
		Y: -d.params.L1 * math.Cos(theta1),
	}
	bob2 = r2.Vec{
		X: bob1.X + d.params.L2*math.Sin(theta2),
		Y: bob1.Y - d.params.L2*math.Cos(theta2),
	}
	return bob1, bob2
}
