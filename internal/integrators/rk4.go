package integrators

import "github.com/san-kum/mechsim/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta method. It is stateless, so
// one value may be shared by concurrent runs.
type RK4[V dynamo.Vector[V]] struct{}

func NewRK4[V dynamo.Vector[V]]() *RK4[V] {
	return &RK4[V]{}
}

func (r *RK4[V]) Step(dyn dynamo.System[V], t float64, x V, dt float64) V {
	half := dt * 0.5

	k1 := dyn.Derive(t, x)
	k2 := dyn.Derive(t+half, x.Add(k1.Scale(half)))
	k3 := dyn.Derive(t+half, x.Add(k2.Scale(half)))
	k4 := dyn.Derive(t+dt, x.Add(k3.Scale(dt)))

	sum := k1.Add(k2.Scale(2)).Add(k3.Scale(2)).Add(k4)
	return x.Add(sum.Scale(dt / 6.0))
}
