package analysis

import (
	"github.com/san-kum/mechsim/internal/dynamo"
	"github.com/san-kum/mechsim/internal/physics"
)

// Flight summarises a projectile trajectory.
type Flight struct {
	MaxHeight     float64
	MaxHeightTime float64
	// FinalDistance is the downrange x coordinate of the last sample.
	FinalDistance float64
	// Range and FlightTime are where and when the body first comes back
	// down through launch height, linearly interpolated between samples.
	// Both are zero when Landed is false.
	Range      float64
	FlightTime float64
	Landed     bool
}

// Values flattens the summary for reporting.
func (f Flight) Values() map[string]float64 {
	landed := 0.0
	if f.Landed {
		landed = 1
	}
	return map[string]float64{
		"max_height":      f.MaxHeight,
		"max_height_time": f.MaxHeightTime,
		"final_distance":  f.FinalDistance,
		"range":           f.Range,
		"flight_time":     f.FlightTime,
		"landed":          landed,
	}
}

func SummarizeFlight(traj *dynamo.Trajectory[physics.ProjectileState]) Flight {
	var f Flight
	if traj == nil || traj.Len() == 0 {
		return f
	}

	launchY := traj.States[0][1]
	f.MaxHeight = launchY
	for i, s := range traj.States {
		if s[1] > f.MaxHeight {
			f.MaxHeight = s[1]
			f.MaxHeightTime = traj.Times[i]
		}
	}

	_, last := traj.Final()
	f.FinalDistance = last[0]

	for i := 1; i < traj.Len(); i++ {
		prev, cur := traj.States[i-1], traj.States[i]
		if prev[1] > launchY && cur[1] <= launchY {
			frac := (prev[1] - launchY) / (prev[1] - cur[1])
			f.Range = prev[0] + frac*(cur[0]-prev[0])
			f.FlightTime = traj.Times[i-1] + frac*(traj.Times[i]-traj.Times[i-1])
			f.Landed = true
			break
		}
	}
	return f
}
