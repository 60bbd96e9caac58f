package harness

import (
	"math"

	"github.com/pthm-cable/motorpool/vehicle"
)

// Harness evaluates a decoded vehicle and returns its fitness. Higher is
// better.
type Harness interface {
	Evaluate(def vehicle.Definition) float64
}

const (
	gravity           = 9.81
	rollingResistance = 0.03
	bodyDensity       = 1.0

	// frictionCoeff caps tractive force at what the tires can transmit,
	// so no torque value climbs an arbitrarily steep grade.
	frictionCoeff = 0.9

	// minSpeedFraction keeps a straining vehicle crawling instead of
	// dividing time by zero.
	minSpeedFraction = 0.05
)

// Rollout is the reference harness: a quasi-static drive along a track
// heightfield. A vehicle advances while its wheels produce more tractive
// force than gravity and rolling resistance demand, and its fitness is the
// distance covered before it stalls or the time budget runs out. Completing
// the track earns a bonus for the time left over.
type Rollout struct {
	track  *Track
	budget float64 // simulated seconds per evaluation
}

// NewRollout creates a harness over the given track with the default time
// budget.
func NewRollout(track *Track) *Rollout {
	return &Rollout{track: track, budget: 120}
}

// Evaluate drives the vehicle along the track and returns its fitness.
// The rollout is fully deterministic: the same definition on the same track
// always scores the same.
func (r *Rollout) Evaluate(def vehicle.Definition) float64 {
	mass := vehicleMass(def)
	tractive := 0.0
	meanRadius := 0.0
	for _, w := range def.Wheels {
		tractive += def.Torque / w.Radius
		meanRadius += w.Radius
	}
	if len(def.Wheels) == 0 || tractive <= 0 || mass <= 0 {
		return 0
	}
	meanRadius /= float64(len(def.Wheels))

	// Speed decodes to wheel angular velocity in rad/s.
	vMax := def.Speed * meanRadius

	step := r.track.segment
	length := r.track.Length()
	x := 0.0
	elapsed := 0.0

	for x < length {
		slope := r.track.Slope(x)
		norm := math.Sqrt(1 + slope*slope)
		sin := slope / norm
		cos := 1 / norm

		available := math.Min(tractive, frictionCoeff*mass*gravity*cos)
		resistance := mass*gravity*sin + rollingResistance*mass*gravity*cos
		if resistance >= available {
			// Stalled on a grade the wheels cannot climb.
			return x
		}

		frac := (available - math.Max(resistance, 0)) / available
		v := vMax * clampFraction(frac)
		elapsed += step / v
		if elapsed > r.budget {
			return x
		}
		x += step
	}

	// Finished: reward the time margin so faster vehicles outrank ones
	// that merely survive.
	return length + (r.budget-elapsed)*0.5
}

func clampFraction(f float64) float64 {
	if f < minSpeedFraction {
		return minSpeedFraction
	}
	if f > 1 {
		return 1
	}
	return f
}

// vehicleMass sums the chassis polygon and the wheel discs.
func vehicleMass(def vehicle.Definition) float64 {
	mass := 0.0

	// Chassis area from the radial point distances, treated as a polygon
	// with vertices at equal angular spacing.
	n := len(def.BodyDistances)
	if n >= 3 {
		wedge := math.Sin(2 * math.Pi / float64(n))
		area := 0.0
		for i, d := range def.BodyDistances {
			next := def.BodyDistances[(i+1)%n]
			area += 0.5 * d * next * wedge
		}
		mass += area * bodyDensity
	}

	for _, w := range def.Wheels {
		mass += math.Pi * w.Radius * w.Radius * w.Density
	}
	return mass
}
