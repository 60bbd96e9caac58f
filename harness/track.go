package harness

import (
	"math"

	"github.com/pthm-cable/motorpool/config"
)

// Track is a sampled 1D heightfield the reference harness drives vehicles
// across. The profile combines layered noise with a steady ramp, so tracks
// get harder the further a vehicle travels.
type Track struct {
	heights []float64
	segment float64
}

// NewTrack builds a track from terrain parameters and a seed. The same seed
// and parameters always produce the same profile.
func NewTrack(cfg config.TrackConfig, seed int64) *Track {
	noise := newPerlinNoise(seed)
	samples := int(cfg.Length/cfg.Segment) + 1

	heights := make([]float64, samples)
	for i := range heights {
		x := float64(i) * cfg.Segment
		h := noise.fbm(x*cfg.Scale, cfg.Octaves, cfg.Lacunarity, cfg.Gain) * cfg.Amplitude
		heights[i] = h + cfg.Ramp*x*x/cfg.Length
	}

	// Flat launch pad so every vehicle starts on even ground.
	pad := int(math.Min(4, float64(samples)))
	for i := 0; i < pad; i++ {
		heights[i] = 0
	}

	return &Track{heights: heights, segment: cfg.Segment}
}

// Length returns the total track length in world units.
func (t *Track) Length() float64 {
	return float64(len(t.heights)-1) * t.segment
}

// Height returns the interpolated terrain height at x. Positions outside the
// track clamp to its ends.
func (t *Track) Height(x float64) float64 {
	if x <= 0 {
		return t.heights[0]
	}
	last := len(t.heights) - 1
	pos := x / t.segment
	lo := int(pos)
	if lo >= last {
		return t.heights[last]
	}
	frac := pos - float64(lo)
	return lerp(frac, t.heights[lo], t.heights[lo+1])
}

// Slope returns the terrain gradient dy/dx at x.
func (t *Track) Slope(x float64) float64 {
	return (t.Height(x+t.segment) - t.Height(x)) / t.segment
}
