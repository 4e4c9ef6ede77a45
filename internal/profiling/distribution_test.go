package profiling

import (
	"testing"

	"gobenford/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_ConformingSamplesAreSuitable(t *testing.T) {
	profile, err := NewMagnitudeProfiler().Profile(testkit.BenfordSamples(2000, 1))
	require.NoError(t, err)

	assert.Equal(t, 2000, profile.Count)
	assert.GreaterOrEqual(t, profile.Min, 10.0)
	assert.Less(t, profile.Max, 1e6)
	assert.Greater(t, profile.OrdersOfMagnitude, 4.0)
	assert.Greater(t, profile.Skewness, 0.0)
	assert.LessOrEqual(t, profile.Q25, profile.Median)
	assert.LessOrEqual(t, profile.Median, profile.Q75)
	assert.Empty(t, profile.Warnings)
	assert.True(t, profile.Suitable())
}

func TestProfile_Warnings(t *testing.T) {
	samples := []string{"100", "120", "150", "180", "200", "", "0", "-300", "abc"}

	profile, err := NewMagnitudeProfiler().Profile(samples)
	require.NoError(t, err)

	assert.Equal(t, 6, profile.Count)
	assert.Equal(t, 100.0, profile.Min)
	assert.Equal(t, 300.0, profile.Max)
	assert.False(t, profile.Suitable())
	require.Len(t, profile.Warnings, 2)
	assert.Contains(t, profile.Warnings[0], "only 6 non-zero samples")
	assert.Contains(t, profile.Warnings[1], "orders of magnitude")
}

func TestProfile_NegativeSkew(t *testing.T) {
	samples := []string{"1", "900000", "950000", "990000", "999000", "999900"}

	profile, err := NewMagnitudeProfiler().Profile(samples)
	require.NoError(t, err)
	assert.Less(t, profile.Skewness, 0.0)
	assert.Contains(t, profile.Warnings, "samples are not positively skewed")
}

func TestProfile_SingleSample(t *testing.T) {
	profile, err := NewMagnitudeProfiler().Profile([]string{"42"})
	require.NoError(t, err)

	assert.Equal(t, 42.0, profile.Q25)
	assert.Equal(t, 42.0, profile.Q75)
	assert.Equal(t, 0.0, profile.OrdersOfMagnitude)
	assert.Equal(t, 0.0, profile.Skewness)
}

func TestProfile_NoUsableSamples(t *testing.T) {
	_, err := NewMagnitudeProfiler().Profile([]string{"", "0", "00"})
	assert.Error(t, err)
}

func TestCalculateSkewness(t *testing.T) {
	assert.Equal(t, 0.0, calculateSkewness([]float64{1, 2}, 1.5, 0.5))
	assert.InDelta(t, 0.0, calculateSkewness([]float64{1, 2, 3}, 2, 0.816496580927726), 1e-12)
}
