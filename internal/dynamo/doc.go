// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// simulation of ordinary differential equations (ODEs):
//
//   - [Vector]: fixed-size state value (array with Add/Scale/Slice)
//   - [System]: interface for ODE systems (dX/dt = f(t, X))
//   - [Integrator], [AdaptiveIntegrator]: numerical steppers
//   - [Simulator]: runs a system and samples it on a uniform time grid
//   - [Trajectory]: the samples of one run
//   - [Sweep]: independent runs executed concurrently
//
// # Example
//
//	dyn, _ := physics.NewDoublePendulum(physics.DefaultPendulumParams())
//	sim := dynamo.New[physics.PendulumState](dyn, integrators.NewRK4[physics.PendulumState]())
//	traj, err := sim.Run(ctx, x0, dynamo.DefaultConfig())
//
// # Sampling
//
// Samples are taken at t = k*Dt for k = 0..floor(Duration/Dt), so the end of
// the span is included when it is a multiple of Dt and a zero Duration yields
// the initial sample only. Adaptive runs sub-step internally and land exactly
// on every sample time.
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Systems must not mutate
// themselves in Derive; with that, one system value can back any number of
// concurrent Simulators, which is what [Sweep] relies on.
package dynamo
