// Package physics provides the two mechanical systems simulated by mechsim.
//
// Each model implements [dynamo.System] over a fixed-size state array:
//
//   - [Projectile]: spinning ball with drag, Magnus lift, Coriolis and
//     gravity in an exponential [Atmosphere]; state [ProjectileState]
//   - [DoublePendulum]: frictionless chaotic double pendulum; state
//     [PendulumState]
//
// Both also implement [dynamo.Hamiltonian]. Parameters are validated by the
// constructors, which fail with [dynamo.ErrParameterBounds]; a built model
// never changes, so one value may serve many concurrent runs.
//
// # Energy Conservation
//
// The pendulum conserves energy exactly; the projectile only loses energy to
// drag, since Magnus and Coriolis forces act perpendicular to the velocity:
//
//	dyn, _ := physics.NewDoublePendulum(physics.DefaultPendulumParams())
//	e0 := dyn.Energy(x0)
package physics
