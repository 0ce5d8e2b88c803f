package integrators

import (
	"testing"

	"github.com/san-kum/mechsim/internal/physics"
)

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4[oscState]()
	dyn := &harmonicOscillator{}
	x := oscState{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, 0, x, 0.01)
	}
}

func BenchmarkRK45(b *testing.B) {
	integrator := NewRK45[oscState]()
	dyn := &harmonicOscillator{}
	x := oscState{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, 0, x, 0.01)
	}
}

func BenchmarkRK4_Projectile(b *testing.B) {
	integrator := NewRK4[physics.ProjectileState]()
	dyn, err := physics.NewProjectile(physics.DefaultBody(), physics.DefaultEnvironment())
	if err != nil {
		b.Fatal(err)
	}
	x := physics.LaunchState(40, 35)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, 0, x, 0.001)
	}
}

func BenchmarkRK4_DoublePendulum(b *testing.B) {
	integrator := NewRK4[physics.PendulumState]()
	dyn, err := physics.NewDoublePendulum(physics.DefaultPendulumParams())
	if err != nil {
		b.Fatal(err)
	}
	x := physics.PendulumState{1, 0, 0.5, 0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, 0, x, 0.001)
	}
}
