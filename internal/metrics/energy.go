package metrics

import (
	"math"

	"github.com/san-kum/mechsim/internal/dynamo"
)

// Energy is the mean total energy over the observed samples.
type Energy[V dynamo.Vector[V]] struct {
	name        string
	dyn         dynamo.Hamiltonian[V]
	samples     int
	totalEnergy float64
}

func NewEnergy[V dynamo.Vector[V]](dyn dynamo.Hamiltonian[V]) *Energy[V] {
	return &Energy[V]{
		name: "energy",
		dyn:  dyn,
	}
}

func (e *Energy[V]) Name() string { return e.name }

func (e *Energy[V]) Observe(t float64, x V) {
	e.totalEnergy += e.dyn.Energy(x)
	e.samples++
}

func (e *Energy[V]) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy[V]) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative deviation from the first observed
// energy. A zero initial energy leaves the drift at zero.
type EnergyDrift[V dynamo.Vector[V]] struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
	dyn           dynamo.Hamiltonian[V]
}

func NewEnergyDrift[V dynamo.Vector[V]](dyn dynamo.Hamiltonian[V]) *EnergyDrift[V] {
	return &EnergyDrift[V]{
		name: "energy_drift",
		dyn:  dyn,
	}
}

func (e *EnergyDrift[V]) Name() string { return e.name }

func (e *EnergyDrift[V]) Observe(t float64, x V) {
	energy := e.dyn.Energy(x)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift[V]) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift[V]) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
