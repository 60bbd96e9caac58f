package harness

import (
	"math"
	"math/rand"
)

// perlinNoise generates coherent 1D gradient noise for terrain profiles.
type perlinNoise struct {
	perm [512]int
}

func newPerlinNoise(seed int64) *perlinNoise {
	p := &perlinNoise{}
	rng := rand.New(rand.NewSource(seed))

	var perm [256]int
	for i := range perm {
		perm[i] = i
	}
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	for i := 0; i < 256; i++ {
		p.perm[i] = perm[i]
		p.perm[i+256] = perm[i]
	}

	return p
}

// noise1D returns a noise value in roughly [-1, 1] for a coordinate.
func (p *perlinNoise) noise1D(x float64) float64 {
	X := int(math.Floor(x)) & 255
	x -= math.Floor(x)
	u := fade(x)
	return lerp(u, grad1D(p.perm[X], x), grad1D(p.perm[X+1], x-1))
}

// fbm layers octaves of noise, each at lacunarity times the frequency and
// gain times the amplitude of the previous one.
func (p *perlinNoise) fbm(x float64, octaves int, lacunarity, gain float64) float64 {
	sum := 0.0
	amp := 1.0
	freq := 1.0
	norm := 0.0
	for i := 0; i < octaves; i++ {
		sum += amp * p.noise1D(x*freq)
		norm += amp
		freq *= lacunarity
		amp *= gain
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad1D(hash int, x float64) float64 {
	h := hash & 15
	grad := 1.0 + float64(h&7)
	if h&8 != 0 {
		grad = -grad
	}
	return grad * x / 8.0
}
