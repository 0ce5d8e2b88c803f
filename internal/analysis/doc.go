// Package analysis derives summary quantities from finished runs.
//
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [SummarizeFlight]: apex, range and final distance of a projectile
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	x0p := x0.Add(physics.PendulumState{1e-8})
//	lambda, err := analysis.LyapunovExponent(dyn, integ, x0, x0p, dt, duration)
//	if lambda > 0 {
//	    // System is chaotic
//	}
package analysis
