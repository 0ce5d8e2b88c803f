package physics

import (
	"math"

	"github.com/san-kum/mechsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	DefaultGravity              = 9.81
	DefaultSeaLevelDensity      = 1.225     // kg/m^3
	DefaultScaleHeight          = 7400.0    // m
	DefaultEarthAngularVelocity = 7.2921e-5 // rad/s
	DefaultLatitude             = 45.0      // degrees
)

// Atmosphere is an isothermal exponential density profile.
type Atmosphere struct {
	SeaLevelDensity float64
	ScaleHeight     float64
}

// Density returns rho0 * exp(-altitude/H). It is defined for any altitude;
// below sea level it keeps growing without bound.
func (a Atmosphere) Density(altitude float64) float64 {
	return a.SeaLevelDensity * math.Exp(-altitude/a.ScaleHeight)
}

// Environment holds the constants shared by the atmosphere and the
// projectile force model.
type Environment struct {
	Gravity              float64
	SeaLevelDensity      float64
	ScaleHeight          float64
	EarthAngularVelocity float64
	Latitude             float64 // degrees
}

func DefaultEnvironment() Environment {
	return Environment{
		Gravity:              DefaultGravity,
		SeaLevelDensity:      DefaultSeaLevelDensity,
		ScaleHeight:          DefaultScaleHeight,
		EarthAngularVelocity: DefaultEarthAngularVelocity,
		Latitude:             DefaultLatitude,
	}
}

func (e Environment) Validate() error {
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"gravity", e.Gravity},
		{"earth_angular_velocity", e.EarthAngularVelocity},
		{"latitude", e.Latitude},
	} {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return dynamo.BoundsError(p.name, p.value, "finite")
		}
	}
	if !(e.SeaLevelDensity >= 0) || math.IsInf(e.SeaLevelDensity, 0) {
		return dynamo.BoundsError("sea_level_density", e.SeaLevelDensity, "non-negative and finite")
	}
	if !(e.ScaleHeight > 0) || math.IsInf(e.ScaleHeight, 0) {
		return dynamo.BoundsError("scale_height", e.ScaleHeight, "positive and finite")
	}
	return nil
}

func (e Environment) Atmosphere() Atmosphere {
	return Atmosphere{SeaLevelDensity: e.SeaLevelDensity, ScaleHeight: e.ScaleHeight}
}

// EarthRotation returns the planetary rotation vector seen in the launch
// frame: (0, w cos(lat), w sin(lat)).
func (e Environment) EarthRotation() r3.Vec {
	lat := e.Latitude * math.Pi / 180
	return r3.Vec{
		X: 0,
		Y: e.EarthAngularVelocity * math.Cos(lat),
		Z: e.EarthAngularVelocity * math.Sin(lat),
	}
}
