package harness

import (
	"math"
	"testing"

	"github.com/pthm-cable/motorpool/config"
	"github.com/pthm-cable/motorpool/vehicle"
)

func testTrackConfig() config.TrackConfig {
	return config.TrackConfig{
		Length:     400,
		Segment:    2,
		Scale:      0.02,
		Octaves:    4,
		Lacunarity: 2,
		Gain:       0.5,
		Amplitude:  6,
		Ramp:       0.015,
	}
}

func flatTrackConfig() config.TrackConfig {
	cfg := testTrackConfig()
	cfg.Amplitude = 0
	cfg.Ramp = 0
	return cfg
}

func testVehicle() vehicle.Definition {
	return vehicle.Definition{
		BodyDistances: []float64{2, 2, 2, 2, 2, 2, 2, 2},
		Wheels: []vehicle.Wheel{
			{Attachment: 0, Radius: 0.5, Density: 1.0},
			{Attachment: 4, Radius: 0.5, Density: 1.0},
		},
		Torque: 60,
		Speed:  30,
	}
}

func TestTrackDeterministic(t *testing.T) {
	a := NewTrack(testTrackConfig(), 42)
	b := NewTrack(testTrackConfig(), 42)
	for x := 0.0; x <= a.Length(); x += 7.3 {
		if a.Height(x) != b.Height(x) {
			t.Fatalf("height at %g differs between identical seeds", x)
		}
	}

	c := NewTrack(testTrackConfig(), 43)
	same := true
	for x := 50.0; x < 200; x += 11 {
		if a.Height(x) != c.Height(x) {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced an identical profile")
	}
}

func TestTrackLaunchPadIsFlat(t *testing.T) {
	track := NewTrack(testTrackConfig(), 7)
	if h := track.Height(0); h != 0 {
		t.Errorf("height at start = %g, want 0", h)
	}
	if h := track.Height(2); h != 0 {
		t.Errorf("height on pad = %g, want 0", h)
	}
}

func TestTrackHeightClamps(t *testing.T) {
	track := NewTrack(testTrackConfig(), 7)
	if got := track.Height(-5); got != track.Height(0) {
		t.Error("height before the start should clamp to the first sample")
	}
	if got := track.Height(track.Length() + 100); got != track.Height(track.Length()) {
		t.Error("height past the end should clamp to the last sample")
	}
}

func TestTrackLength(t *testing.T) {
	track := NewTrack(testTrackConfig(), 1)
	if got := track.Length(); got != 400 {
		t.Errorf("length = %g, want 400", got)
	}
}

func TestRolloutDeterministic(t *testing.T) {
	track := NewTrack(testTrackConfig(), 42)
	h := NewRollout(track)
	def := testVehicle()

	a := h.Evaluate(def)
	b := h.Evaluate(def)
	if a != b {
		t.Errorf("repeated evaluation differs: %g vs %g", a, b)
	}
	if a <= 0 {
		t.Errorf("capable vehicle scored %g on a moderate track", a)
	}
}

func TestRolloutCompletesFlatTrack(t *testing.T) {
	track := NewTrack(flatTrackConfig(), 1)
	h := NewRollout(track)

	score := h.Evaluate(testVehicle())
	if score < track.Length() {
		t.Errorf("score %g on flat track, want at least the track length %g", score, track.Length())
	}
}

func TestRolloutStallsOnSteepRamp(t *testing.T) {
	cfg := flatTrackConfig()
	cfg.Ramp = 2.0 // far beyond any vehicle's grade limit
	track := NewTrack(cfg, 1)
	h := NewRollout(track)

	score := h.Evaluate(testVehicle())
	if score >= track.Length() {
		t.Errorf("score %g, vehicle should stall before the end", score)
	}
	if score < 0 {
		t.Errorf("score %g, distance cannot be negative", score)
	}
}

func TestRolloutMoreTorqueClimbsFurther(t *testing.T) {
	cfg := flatTrackConfig()
	cfg.Ramp = 0.8
	track := NewTrack(cfg, 1)
	h := NewRollout(track)

	weak := testVehicle()
	weak.Torque = 15
	strong := testVehicle()
	strong.Torque = 100

	if h.Evaluate(strong) <= h.Evaluate(weak) {
		t.Error("higher torque should climb at least as far on a ramp")
	}
}

func TestRolloutDegenerateVehicles(t *testing.T) {
	track := NewTrack(flatTrackConfig(), 1)
	h := NewRollout(track)

	noWheels := testVehicle()
	noWheels.Wheels = nil
	if got := h.Evaluate(noWheels); got != 0 {
		t.Errorf("wheelless vehicle scored %g, want 0", got)
	}

	noTorque := testVehicle()
	noTorque.Torque = 0
	if got := h.Evaluate(noTorque); got != 0 {
		t.Errorf("torqueless vehicle scored %g, want 0", got)
	}
}

func TestVehicleMass(t *testing.T) {
	def := testVehicle()
	mass := vehicleMass(def)

	// Two wheels of radius 0.5 and density 1 weigh pi/4 each; the octagon
	// chassis adds its polygon area.
	wheelMass := 2 * math.Pi * 0.25
	if mass <= wheelMass {
		t.Errorf("mass %g should exceed the wheels alone (%g)", mass, wheelMass)
	}
}

func TestFBMStaysBounded(t *testing.T) {
	noise := newPerlinNoise(9)
	for x := 0.0; x < 100; x += 0.37 {
		v := noise.fbm(x, 4, 2, 0.5)
		if v < -1.5 || v > 1.5 {
			t.Fatalf("fbm(%g) = %g outside expected bounds", x, v)
		}
	}
}
