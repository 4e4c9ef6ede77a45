package testkit

import (
	"math"
	"math/rand"
	"strconv"
)

// SampleGeneratorConfig configures the synthetic sample generator
type SampleGeneratorConfig struct {
	Count       int   `json:"count"`
	MinExponent int   `json:"min_exponent"`
	MaxExponent int   `json:"max_exponent"`
	Seed        int64 `json:"seed"`
}

// DefaultSampleConfig returns defaults spanning five orders of magnitude (10 to 999999)
func DefaultSampleConfig() SampleGeneratorConfig {
	return SampleGeneratorConfig{
		Count:       5000,
		MinExponent: 1,
		MaxExponent: 6,
		Seed:        42,
	}
}

// SampleGenerator produces integer samples as decimal strings
type SampleGenerator struct {
	config SampleGeneratorConfig
	rng    *rand.Rand
}

// NewSampleGenerator creates a new sample generator
func NewSampleGenerator(config SampleGeneratorConfig) *SampleGenerator {
	if config.MaxExponent <= config.MinExponent {
		config.MaxExponent = config.MinExponent + 1
	}
	if config.MinExponent < 0 {
		config.MinExponent = 0
	}
	return &SampleGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Benford returns log-uniform samples whose first and second digits follow Benford's law.
//
// The unit interval is split into Count strata with one jittered point each, so
// every digit bucket holds its expected share to within a couple of samples.
// The result is shuffled.
func (g *SampleGenerator) Benford() []string {
	n := g.config.Count
	span := float64(g.config.MaxExponent - g.config.MinExponent)

	samples := make([]string, n)
	for i := 0; i < n; i++ {
		u := (float64(i) + g.rng.Float64()) / float64(n)
		value := math.Floor(math.Pow(10, float64(g.config.MinExponent)+u*span))
		samples[i] = strconv.FormatInt(int64(value), 10)
	}
	g.rng.Shuffle(n, func(i, j int) { samples[i], samples[j] = samples[j], samples[i] })
	return samples
}

// Uniform returns integers drawn uniformly from [10^MinExponent, 10^MaxExponent).
// Their leading digits are close to evenly spread and do not follow Benford's law.
func (g *SampleGenerator) Uniform() []string {
	low := int64(math.Pow10(g.config.MinExponent))
	high := int64(math.Pow10(g.config.MaxExponent))

	samples := make([]string, g.config.Count)
	for i := range samples {
		samples[i] = strconv.FormatInt(low+g.rng.Int63n(high-low), 10)
	}
	return samples
}

// BenfordSamples returns n conforming samples with the default magnitude range
func BenfordSamples(n int, seed int64) []string {
	config := DefaultSampleConfig()
	config.Count = n
	config.Seed = seed
	return NewSampleGenerator(config).Benford()
}

// UniformSamples returns n non-conforming samples with the default magnitude range
func UniformSamples(n int, seed int64) []string {
	config := DefaultSampleConfig()
	config.Count = n
	config.Seed = seed
	return NewSampleGenerator(config).Uniform()
}
