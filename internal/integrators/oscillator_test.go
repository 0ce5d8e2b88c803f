package integrators

// oscState is (position, velocity) of a unit harmonic oscillator.
type oscState [2]float64

func (s oscState) Add(o oscState) oscState {
	return oscState{s[0] + o[0], s[1] + o[1]}
}

func (s oscState) Scale(f float64) oscState {
	return oscState{s[0] * f, s[1] * f}
}

func (s oscState) Slice() []float64 { return s[:] }

type harmonicOscillator struct{}

func (h *harmonicOscillator) Derive(t float64, x oscState) oscState {
	return oscState{x[1], -x[0]}
}

func (h *harmonicOscillator) Energy(x oscState) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

// stiffDecay is x' = -k x, which punishes large steps.
type stiffDecay struct{ k float64 }

func (s *stiffDecay) Derive(t float64, x oscState) oscState {
	return x.Scale(-s.k)
}
