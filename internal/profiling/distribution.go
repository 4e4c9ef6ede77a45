package profiling

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gobenford/domain/benford"

	"github.com/montanaflynn/stats"
)

// Applicability thresholds for Benford analysis
const (
	MinRecommendedSamples = 100
	MinOrdersOfMagnitude  = 4.0
	minSamplesForSkewness = 3
)

// MagnitudeProfiler checks whether samples suit a Benford analysis
type MagnitudeProfiler struct {
	minSamples int
	minOrders  float64
}

// NewMagnitudeProfiler creates a new profiler with the default thresholds
func NewMagnitudeProfiler() *MagnitudeProfiler {
	return &MagnitudeProfiler{
		minSamples: MinRecommendedSamples,
		minOrders:  MinOrdersOfMagnitude,
	}
}

// Profile summarizes the absolute values of the samples. Blank, zero and
// unparseable samples are ignored; the counter reports those separately.
func (mp *MagnitudeProfiler) Profile(samples []string) (*benford.MagnitudeProfile, error) {
	data := magnitudes(samples)
	if len(data) == 0 {
		return nil, stats.ErrEmptyInput
	}

	min, err := stats.Min(data)
	if err != nil {
		return nil, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return nil, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return nil, err
	}

	profile := &benford.MagnitudeProfile{
		Count:             len(data),
		Min:               min,
		Max:               max,
		Median:            median,
		OrdersOfMagnitude: math.Log10(max / min),
	}

	// Quartiles need at least two values
	if len(data) > 1 {
		if profile.Q25, err = stats.Percentile(data, 25); err != nil {
			return nil, err
		}
		if profile.Q75, err = stats.Percentile(data, 75); err != nil {
			return nil, err
		}
	} else {
		profile.Q25, profile.Q75 = median, median
	}

	if len(data) >= minSamplesForSkewness {
		mean, err := stats.Mean(data)
		if err != nil {
			return nil, err
		}
		stdDev, err := stats.StandardDeviation(data)
		if err != nil {
			return nil, err
		}
		if stdDev > 0 {
			profile.Skewness = calculateSkewness(data, mean, stdDev)
		}
	}

	if profile.Count < mp.minSamples {
		profile.Warnings = append(profile.Warnings,
			fmt.Sprintf("only %d non-zero samples; results are unreliable below %d", profile.Count, mp.minSamples))
	}
	if profile.OrdersOfMagnitude < mp.minOrders {
		profile.Warnings = append(profile.Warnings,
			fmt.Sprintf("samples span %.1f orders of magnitude; at least %.0f are expected", profile.OrdersOfMagnitude, mp.minOrders))
	}
	if len(data) >= minSamplesForSkewness && profile.Skewness <= 0 {
		profile.Warnings = append(profile.Warnings, "samples are not positively skewed")
	}

	return profile, nil
}

// magnitudes parses samples into absolute values, dropping zeros and values
// outside the float64 range
func magnitudes(samples []string) []float64 {
	data := make([]float64, 0, len(samples))
	for _, s := range samples {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v == 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		data = append(data, math.Abs(v))
	}
	return data
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < minSamplesForSkewness {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n

	// Bias correction for sample skewness
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}
