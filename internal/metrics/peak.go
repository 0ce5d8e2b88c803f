package metrics

import (
	"math"

	"github.com/san-kum/mechsim/internal/dynamo"
)

// Peak tracks the largest value of one state component, e.g. the apex
// height of a projectile.
type Peak[V dynamo.Vector[V]] struct {
	name  string
	index int
	max   float64
	time  float64
}

func NewPeak[V dynamo.Vector[V]](name string, index int) *Peak[V] {
	p := &Peak[V]{name: name, index: index}
	p.Reset()
	return p
}

func (p *Peak[V]) Name() string {
	return p.name
}

func (p *Peak[V]) Observe(t float64, x V) {
	if v := x.Slice()[p.index]; v > p.max {
		p.max = v
		p.time = t
	}
}

// Value is the peak, or NaN before any sample.
func (p *Peak[V]) Value() float64 {
	if math.IsInf(p.max, -1) {
		return math.NaN()
	}
	return p.max
}

// Time is when the peak was first reached.
func (p *Peak[V]) Time() float64 {
	return p.time
}

func (p *Peak[V]) Reset() {
	p.max = math.Inf(-1)
	p.time = 0
}
