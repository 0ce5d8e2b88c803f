package config

import (
	"math"
	"sort"
)

var Presets = map[string]map[string]*Config{
	"projectile": {
		"baseball": newPreset(func(c *Config) {
			c.Model = "projectile"
			c.Integrator = "rk45"
			c.Adaptive = true
		}),
		"vacuum": newPreset(func(c *Config) {
			c.Model = "projectile"
			c.Projectile.DragCoefficient = 0
			c.Projectile.LiftCoefficient = 0
			c.Environment.EarthAngularVelocity = 0
		}),
		"knuckleball": newPreset(func(c *Config) {
			c.Model = "projectile"
			c.Projectile.SpinRate = 0
			c.Projectile.Speed = 30
			c.Projectile.Angle = 20
			c.Duration = 3
		}),
		"high_fly": newPreset(func(c *Config) {
			c.Model = "projectile"
			c.Projectile.Speed = 45
			c.Projectile.Angle = 70
			c.Dt = 0.005
		}),
	},
	"double_pendulum": {
		"classic": newPreset(func(c *Config) {
			c.Model = "double_pendulum"
			c.Dt = 0.02
			c.Duration = 30
		}),
		"gentle": newPreset(func(c *Config) {
			c.Model = "double_pendulum"
			c.Duration = 30
			c.Pendulum.Theta1, c.Pendulum.Theta2 = 0.3, 0.3
		}),
		"chaos": newPreset(func(c *Config) {
			c.Model = "double_pendulum"
			c.Dt = 0.005
			c.Duration = 60
			c.Pendulum.Theta1, c.Pendulum.Theta2 = 3.0, 3.0
		}),
		"inverted": newPreset(func(c *Config) {
			c.Model = "double_pendulum"
			c.Integrator = "rk45"
			c.Adaptive = true
			c.Duration = 20
			c.Pendulum.Theta1, c.Pendulum.Theta2 = math.Pi, math.Pi-0.01
		}),
	},
}

func newPreset(mutate func(*Config)) *Config {
	c := DefaultConfig()
	mutate(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
