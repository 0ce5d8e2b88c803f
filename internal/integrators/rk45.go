package integrators

import (
	"math"

	"github.com/san-kum/mechsim/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
const (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// DefaultTolerance is used by Step, which has no tolerance argument.
const DefaultTolerance = 1e-6

type RK45[V dynamo.Vector[V]] struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45[V dynamo.Vector[V]]() *RK45[V] {
	return &RK45[V]{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// Step takes one fifth-order step of exactly dt, accepting it whatever the
// error estimate.
func (r *RK45[V]) Step(dyn dynamo.System[V], t float64, x V, dt float64) V {
	xNew, _ := r.trial(dyn, t, x, dt)
	return xNew
}

// StepAdaptive attempts a step of size dt. When the scaled error estimate
// exceeds tol the original state is returned with a smaller proposal and
// dynamo.ErrStepRejected. A NaN error estimate fails with dynamo.ErrUnstable.
func (r *RK45[V]) StepAdaptive(dyn dynamo.System[V], t float64, x V, dt, tol float64) (V, float64, error) {
	xNew, errEst := r.trial(dyn, t, x, dt)

	errMax := 0.0
	xs, ns, es := x.Slice(), xNew.Slice(), errEst.Slice()
	for i := range es {
		scale := tol * (1 + math.Max(math.Abs(xs[i]), math.Abs(ns[i])))
		ratio := math.Abs(es[i]) / scale
		if math.IsNaN(ratio) {
			return xNew, dt, dynamo.ErrUnstable
		}
		errMax = math.Max(errMax, ratio)
	}
	if math.IsInf(errMax, 0) {
		return xNew, dt, dynamo.ErrUnstable
	}

	if errMax > 1 {
		factor := math.Max(r.minScale, r.safety*math.Pow(errMax, -0.25))
		return x, dt * factor, dynamo.ErrStepRejected
	}

	factor := r.maxScale
	if errMax > 0 {
		factor = math.Min(r.maxScale, r.safety*math.Pow(errMax, -0.2))
	}
	return xNew, dt * factor, nil
}

// trial evaluates the seven stages and returns the fifth-order solution with
// its embedded error estimate.
func (r *RK45[V]) trial(dyn dynamo.System[V], t float64, x V, dt float64) (V, V) {
	k1 := dyn.Derive(t, x)
	k2 := dyn.Derive(t+a2*dt, x.Add(k1.Scale(dt*b21)))
	k3 := dyn.Derive(t+a3*dt, x.Add(k1.Scale(dt*b31).Add(k2.Scale(dt*b32))))
	k4 := dyn.Derive(t+a4*dt, x.Add(
		k1.Scale(dt*b41).Add(k2.Scale(dt*b42)).Add(k3.Scale(dt*b43))))
	k5 := dyn.Derive(t+a5*dt, x.Add(
		k1.Scale(dt*b51).Add(k2.Scale(dt*b52)).Add(k3.Scale(dt*b53)).Add(k4.Scale(dt*b54))))
	k6 := dyn.Derive(t+dt, x.Add(
		k1.Scale(dt*b61).Add(k2.Scale(dt*b62)).Add(k3.Scale(dt*b63)).Add(k4.Scale(dt*b64)).Add(k5.Scale(dt*b65))))

	xNew := x.Add(
		k1.Scale(dt * c1).Add(k3.Scale(dt * c3)).Add(k4.Scale(dt * c4)).Add(k5.Scale(dt * c5)).Add(k6.Scale(dt * c6)))

	k7 := dyn.Derive(t+dt, xNew)

	errEst := k1.Scale(dt * dc1).Add(k3.Scale(dt * dc3)).Add(k4.Scale(dt * dc4)).
		Add(k5.Scale(dt * dc5)).Add(k6.Scale(dt * dc6)).Add(k7.Scale(dt * dc7))

	return xNew, errEst
}
