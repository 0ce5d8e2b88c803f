package dynamo_test

import (
	"math"

	"github.com/san-kum/mechsim/internal/dynamo"
)

type scalar [1]float64

func (s scalar) Add(o scalar) scalar { return scalar{s[0] + o[0]} }

func (s scalar) Scale(f float64) scalar { return scalar{s[0] * f} }

func (s scalar) Slice() []float64 { return s[:] }

// growth is x' = rate*x.
type growth struct{ rate float64 }

func (g growth) Derive(t float64, x scalar) scalar { return x.Scale(g.rate) }

// blowup is x' = x^2, which reaches infinity at t = 1/x0.
type blowup struct{}

func (blowup) Derive(t float64, x scalar) scalar { return scalar{x[0] * x[0]} }

// drifting has an energy that follows the state.
type drifting struct{ growth }

func (d drifting) Energy(x scalar) float64 { return math.Abs(x[0]) }

// euler keeps the driver tests independent of the real integrators.
type euler struct{}

func (euler) Step(dyn dynamo.System[scalar], t float64, x scalar, dt float64) scalar {
	return x.Add(dyn.Derive(t, x).Scale(dt))
}

type counter struct {
	observed int
}

func (c *counter) Name() string { return "samples" }

func (c *counter) Observe(t float64, x scalar) { c.observed++ }

func (c *counter) Value() float64 { return float64(c.observed) }

func (c *counter) Reset() { c.observed = 0 }
