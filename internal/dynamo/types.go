package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Vector is a fixed-dimension state value. Implementations are small arrays
// with value receivers, so Add and Scale never alias their operands.
type Vector[V any] interface {
	Add(other V) V
	Scale(factor float64) V
	Slice() []float64
}

// IsFinite reports whether every component of x is a real number.
func IsFinite[V Vector[V]](x V) bool {
	for _, v := range x.Slice() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean norm of x.
func Norm[V Vector[V]](x V) float64 {
	return floats.Norm(x.Slice(), 2)
}

// Sub returns a - b.
func Sub[V Vector[V]](a, b V) V {
	return a.Add(b.Scale(-1))
}

// System is an autonomous or time-dependent ODE dx/dt = f(t, x).
type System[V Vector[V]] interface {
	Derive(t float64, x V) V
}

type Hamiltonian[V Vector[V]] interface {
	Energy(x V) float64
}

type Integrator[V Vector[V]] interface {
	Step(dyn System[V], t float64, x V, dt float64) V
}

// AdaptiveIntegrator takes one trial step and proposes the next step size.
// A step whose local error exceeds tol comes back with ErrStepRejected and
// must be retried with the returned size.
type AdaptiveIntegrator[V Vector[V]] interface {
	Integrator[V]
	StepAdaptive(dyn System[V], t float64, x V, dt, tol float64) (V, float64, error)
}

type Metric[V Vector[V]] interface {
	Name() string
	Observe(t float64, x V)
	Value() float64
	Reset()
}

type Config struct {
	Dt        float64
	Duration  float64
	Tolerance float64
	MaxDt     float64
	MinDt     float64
	Adaptive  bool
}

func DefaultConfig() Config {
	return Config{
		Dt:        0.01,
		Duration:  10.0,
		Tolerance: 1e-8,
		MaxDt:     0.1,
		MinDt:     1e-10,
		Adaptive:  false,
	}
}

// Trajectory holds uniformly spaced samples of one run.
type Trajectory[V Vector[V]] struct {
	Times         []float64
	States        []V
	Metrics       map[string]float64
	EnergyDrift   float64
	StepsTaken    int
	StepsRejected int
}

func (tr *Trajectory[V]) Len() int { return len(tr.Times) }

func (tr *Trajectory[V]) At(i int) (float64, V) {
	return tr.Times[i], tr.States[i]
}

// Final returns the last recorded sample.
func (tr *Trajectory[V]) Final() (float64, V) {
	n := len(tr.Times) - 1
	return tr.Times[n], tr.States[n]
}

// Column extracts component idx of every sample.
func (tr *Trajectory[V]) Column(idx int) []float64 {
	col := make([]float64, len(tr.States))
	for i, s := range tr.States {
		col[i] = s.Slice()[idx]
	}
	return col
}
