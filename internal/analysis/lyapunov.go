package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/mechsim/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent from two nearby
// trajectories started at x0 and x0p. A positive value indicates chaos.
//
// Algorithm (Benettin):
// 1. Step both trajectories by dt
// 2. Accumulate ln(d/d0), d being their separation
// 3. Pull the perturbed state back to distance d0 along the separation
// 4. λ = Σ ln(d/d0) / elapsed time
func LyapunovExponent[V dynamo.Vector[V]](
	dyn dynamo.System[V],
	integ dynamo.Integrator[V],
	x0, x0p V,
	dt, duration float64,
) (float64, error) {
	d0 := floats.Distance(x0p.Slice(), x0.Slice(), 2)
	if !(d0 > 0) || math.IsInf(d0, 0) {
		return 0, dynamo.BoundsError("separation", d0, "positive and finite")
	}
	if !(dt > 0) {
		return 0, dynamo.BoundsError("dt", dt, "positive")
	}
	if n := duration / dt; n > dynamo.MaxSamples {
		return 0, dynamo.BoundsError("duration/dt", n, fmt.Sprintf("at most %d", dynamo.MaxSamples))
	}

	steps := dynamo.SampleCount(dt, duration) - 1
	if steps <= 0 {
		return 0, dynamo.BoundsError("duration", duration, "at least one step")
	}

	x, xp := x0, x0p
	sumLog := 0.0

	for k := 0; k < steps; k++ {
		t := float64(k) * dt
		x = integ.Step(dyn, t, x, dt)
		xp = integ.Step(dyn, t, xp, dt)

		sep := floats.Distance(xp.Slice(), x.Slice(), 2)
		if !dynamo.IsFinite(x) || !dynamo.IsFinite(xp) || math.IsInf(sep, 0) {
			return 0, &dynamo.SimulationError{
				Step:    k + 1,
				Time:    t + dt,
				State:   x.Slice(),
				Wrapped: dynamo.ErrUnstable,
			}
		}
		if sep == 0 {
			return 0, fmt.Errorf("trajectories merged at t=%g", t+dt)
		}

		sumLog += math.Log(sep / d0)
		xp = x.Add(dynamo.Sub(xp, x).Scale(d0 / sep))
	}

	return sumLog / (float64(steps) * dt), nil
}
