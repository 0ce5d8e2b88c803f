package physics

import (
	"math"

	"github.com/san-kum/mechsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Body describes the projectile. Defaults are a regulation baseball.
type Body struct {
	Mass            float64 // kg
	Radius          float64 // m
	SpinRate        float64 // rad/s, about +y
	DragCoefficient float64
	LiftCoefficient float64
}

func DefaultBody() Body {
	return Body{
		Mass:            0.145,
		Radius:          0.037,
		SpinRate:        50.0,
		DragCoefficient: 0.47,
		LiftCoefficient: 0.33,
	}
}

// Area is the cross-sectional area pi*r^2.
func (b Body) Area() float64 {
	return math.Pi * b.Radius * b.Radius
}

func (b Body) Validate() error {
	if !(b.Mass > 0) || math.IsInf(b.Mass, 0) {
		return dynamo.BoundsError("mass", b.Mass, "positive and finite")
	}
	if !(b.Radius > 0) || math.IsInf(b.Radius, 0) {
		return dynamo.BoundsError("radius", b.Radius, "positive and finite")
	}
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"spin_rate", b.SpinRate},
		{"drag_coefficient", b.DragCoefficient},
		{"lift_coefficient", b.LiftCoefficient},
	} {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return dynamo.BoundsError(p.name, p.value, "finite")
		}
	}
	return nil
}

// Projectile is a spinning point mass under gravity, quadratic drag, Magnus
// lift and the Coriolis pseudo-force. It is immutable once built.
type Projectile struct {
	body       Body
	env        Environment
	atmosphere Atmosphere
	area       float64
	spin       r3.Vec
	rotation   r3.Vec
}

func NewProjectile(body Body, env Environment) (*Projectile, error) {
	if err := body.Validate(); err != nil {
		return nil, err
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return &Projectile{
		body:       body,
		env:        env,
		atmosphere: env.Atmosphere(),
		area:       body.Area(),
		spin:       r3.Vec{Y: body.SpinRate},
		rotation:   env.EarthRotation(),
	}, nil
}

func (p *Projectile) Body() Body               { return p.body }
func (p *Projectile) Environment() Environment { return p.env }

// ForceBreakdown lists the individual forces acting on the body, in newtons.
type ForceBreakdown struct {
	Drag     r3.Vec
	Magnus   r3.Vec
	Coriolis r3.Vec
	Gravity  r3.Vec
}

func (f ForceBreakdown) Total() r3.Vec {
	return r3.Add(r3.Add(f.Drag, f.Magnus), r3.Add(f.Coriolis, f.Gravity))
}

// Forces evaluates each force term at x. At zero velocity the drag and
// Magnus terms are exactly zero.
func (p *Projectile) Forces(x ProjectileState) ForceBreakdown {
	v := x.Velocity()
	speed := r3.Norm(v)

	var vHat r3.Vec
	if speed > 0 {
		vHat = r3.Scale(1/speed, v)
	}

	rho := p.atmosphere.Density(x[1])
	m := p.body.Mass

	return ForceBreakdown{
		Drag:     r3.Scale(-0.5*rho*p.area*p.body.DragCoefficient*speed*speed, vHat),
		Magnus:   r3.Scale(p.body.LiftCoefficient*p.area*rho*speed, r3.Cross(p.spin, v)),
		Coriolis: r3.Scale(-2*m, r3.Cross(p.rotation, v)),
		Gravity:  r3.Vec{Y: -m * p.env.Gravity},
	}
}

// Derive returns (v, a). The system is autonomous; t is ignored.
func (p *Projectile) Derive(t float64, x ProjectileState) ProjectileState {
	a := r3.Scale(1/p.body.Mass, p.Forces(x).Total())
	return NewProjectileState(x.Velocity(), a)
}

// Energy is the mechanical energy m(|v|^2/2 + g*y). Only drag does work, so
// it is constant when the drag coefficient is zero.
func (p *Projectile) Energy(x ProjectileState) float64 {
	return p.body.Mass * (0.5*r3.Norm2(x.Velocity()) + p.env.Gravity*x[1])
}

// LaunchState places the body at the origin moving at speed in the x-y
// plane, angleDeg above the horizontal.
func LaunchState(speed, angleDeg float64) ProjectileState {
	rad := angleDeg * math.Pi / 180
	return ProjectileState{0, 0, 0, speed * math.Cos(rad), speed * math.Sin(rad), 0}
}
