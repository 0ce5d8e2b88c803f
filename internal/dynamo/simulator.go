package dynamo

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// sampleEps absorbs representation error in Duration/Dt so that 10/0.01
// counts 1000 intervals.
const sampleEps = 1e-9

// MaxSamples bounds Duration/Dt for a single run.
const MaxSamples = math.MaxInt32

type Simulator[V Vector[V]] struct {
	dyn        System[V]
	integrator Integrator[V]
	metrics    []Metric[V]
	logger     zerolog.Logger
}

func New[V Vector[V]](dyn System[V], integrator Integrator[V]) *Simulator[V] {
	return &Simulator[V]{
		dyn:        dyn,
		integrator: integrator,
		metrics:    make([]Metric[V], 0),
		logger:     zerolog.Nop(),
	}
}

func (s *Simulator[V]) AddMetric(m Metric[V]) {
	s.metrics = append(s.metrics, m)
}

// SetLogger replaces the default no-op logger.
func (s *Simulator[V]) SetLogger(logger zerolog.Logger) {
	s.logger = logger
}

// Run integrates from x0 and samples the state every cfg.Dt up to and
// including cfg.Duration.
//
// On a numerical failure the samples recorded so far are returned together
// with a *SimulationError wrapping ErrUnstable or ErrStepTooSmall; the caller
// decides whether a truncated trajectory is useful.
func (s *Simulator[V]) Run(ctx context.Context, x0 V, cfg Config) (*Trajectory[V], error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if !IsFinite(x0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, x0.Slice())
	}

	var adaptive AdaptiveIntegrator[V]
	if cfg.Adaptive {
		a, ok := s.integrator.(AdaptiveIntegrator[V])
		if !ok {
			return nil, fmt.Errorf("integrator %T does not support adaptive stepping", s.integrator)
		}
		adaptive = a
	}

	steps := SampleCount(cfg.Dt, cfg.Duration) - 1
	traj := &Trajectory[V]{
		Times:   make([]float64, 0, steps+1),
		States:  make([]V, 0, steps+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0
	s.record(traj, 0, x)

	initialEnergy := s.computeEnergy(x)
	h := cfg.Dt

	for k := 0; k < steps; k++ {
		select {
		case <-ctx.Done():
			s.finish(traj, initialEnergy)
			return traj, ctx.Err()
		default:
		}

		t := float64(k) * cfg.Dt
		tNext := float64(k+1) * cfg.Dt

		var next V
		if adaptive != nil {
			var err error
			next, h, err = s.advance(adaptive, t, tNext, x, h, cfg, traj)
			if err != nil {
				return traj, s.fail(traj, initialEnergy, k+1, tNext, next, err)
			}
		} else {
			next = s.integrator.Step(s.dyn, t, x, cfg.Dt)
			traj.StepsTaken++
		}

		if !IsFinite(next) {
			return traj, s.fail(traj, initialEnergy, k+1, tNext, next, ErrUnstable)
		}

		x = next
		s.record(traj, tNext, x)
	}

	s.finish(traj, initialEnergy)
	s.logger.Debug().
		Int("samples", traj.Len()).
		Int("steps", traj.StepsTaken).
		Int("rejected", traj.StepsRejected).
		Float64("energy_drift", traj.EnergyDrift).
		Msg("run complete")

	return traj, nil
}

// SampleCount returns the number of samples a run over duration produces.
func SampleCount(dt, duration float64) int {
	return int(math.Floor(duration/dt+sampleEps)) + 1
}

// advance sub-steps from t to exactly tEnd. h is the proposed step size,
// carried across sample intervals; the updated proposal is returned.
func (s *Simulator[V]) advance(a AdaptiveIntegrator[V], t, tEnd float64, x V, h float64, cfg Config, traj *Trajectory[V]) (V, float64, error) {
	for t < tEnd {
		trial := h
		if cfg.MaxDt > 0 && trial > cfg.MaxDt {
			trial = cfg.MaxDt
		}

		remaining := tEnd - t
		landing := false
		if trial >= remaining || remaining-trial < cfg.MinDt {
			trial = remaining
			landing = true
		}

		next, hNext, err := a.StepAdaptive(s.dyn, t, x, trial, cfg.Tolerance)
		if errors.Is(err, ErrStepRejected) {
			traj.StepsRejected++
			h = hNext
			if h < cfg.MinDt {
				return x, h, ErrStepTooSmall
			}
			continue
		}
		if err != nil {
			return next, h, err
		}

		traj.StepsTaken++
		x = next
		if landing {
			t = tEnd
		} else {
			t += trial
			h = hNext
		}
	}
	return x, h, nil
}

func (s *Simulator[V]) record(traj *Trajectory[V], t float64, x V) {
	traj.Times = append(traj.Times, t)
	traj.States = append(traj.States, x)
	for _, m := range s.metrics {
		m.Observe(t, x)
	}
}

func (s *Simulator[V]) finish(traj *Trajectory[V], initialEnergy float64) {
	if _, x := traj.Final(); initialEnergy != 0 {
		traj.EnergyDrift = math.Abs(s.computeEnergy(x)-initialEnergy) / math.Abs(initialEnergy)
	}
	for _, m := range s.metrics {
		traj.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator[V]) fail(traj *Trajectory[V], initialEnergy float64, step int, t float64, x V, err error) error {
	s.finish(traj, initialEnergy)
	simErr := &SimulationError{Step: step, Time: t, State: x.Slice(), Wrapped: err}
	s.logger.Warn().
		Err(err).
		Int("step", step).
		Float64("t", t).
		Int("samples", traj.Len()).
		Msg("run aborted")
	return simErr
}

func (s *Simulator[V]) validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return BoundsError("dt", cfg.Dt, "positive and finite")
	}
	if !(cfg.Duration >= 0) || math.IsInf(cfg.Duration, 0) {
		return BoundsError("duration", cfg.Duration, "non-negative and finite")
	}
	if n := cfg.Duration / cfg.Dt; n > MaxSamples {
		return BoundsError("duration/dt", n, fmt.Sprintf("at most %d", MaxSamples))
	}
	if cfg.Adaptive {
		if !(cfg.Tolerance > 0) {
			return BoundsError("tolerance", cfg.Tolerance, "positive for adaptive stepping")
		}
		if cfg.MinDt < 0 || cfg.MaxDt < 0 {
			return BoundsError("min_dt/max_dt", math.Min(cfg.MinDt, cfg.MaxDt), "non-negative")
		}
	}
	return nil
}

func (s *Simulator[V]) computeEnergy(x V) float64 {
	if h, ok := s.dyn.(Hamiltonian[V]); ok {
		return h.Energy(x)
	}
	return 0
}
