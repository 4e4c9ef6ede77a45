package benford

import (
	"errors"
	"math"
	"math/rand/v2"
	"strconv"
	"testing"

	"gobenford/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countFirst(t *testing.T, samples []string) DigitDistribution {
	t.Helper()
	counter, err := NewDigitCounter(CounterOptions{Position: PositionFirst})
	require.NoError(t, err)
	dist, err := counter.Count(samples)
	require.NoError(t, err)
	return dist
}

func TestCount_DistinctFirstDigits(t *testing.T) {
	dist := countFirst(t, []string{"123", "234", "345"})

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, dist.Digits)
	assert.Equal(t, []int{1, 1, 1, 0, 0, 0, 0, 0, 0}, dist.Counts)
	assert.Equal(t, 3, dist.Total)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 33.33, dist.Percentages[i], 0.01)
	}
	for i := 3; i < 9; i++ {
		assert.Zero(t, dist.Percentages[i])
	}
}

func TestCount_RepeatedFirstDigits(t *testing.T) {
	dist := countFirst(t, []string{"111", "111", "222"})

	assert.Equal(t, []int{2, 1, 0, 0, 0, 0, 0, 0, 0}, dist.Counts)
	assert.Equal(t, 3, dist.Total)
}

func TestCount_SkipsBlankSamples(t *testing.T) {
	dist := countFirst(t, []string{"", "42", "   ", "7\r", "\t"})

	assert.Equal(t, 2, dist.Total)
	assert.Equal(t, 1, dist.Counts[3])
	assert.Equal(t, 1, dist.Counts[6])
}

func TestCount_MalformedSampleAbortsBatch(t *testing.T) {
	tests := []struct {
		name    string
		samples []string
		line    int
	}{
		{"letters", []string{"12", "abc", "34"}, 2},
		{"decimal", []string{"1.5"}, 1},
		{"trailing garbage", []string{"", "", "12a"}, 3},
		{"bare sign", []string{"-"}, 1},
		{"digit separator", []string{"42", "1_000"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter, err := NewDigitCounter(CounterOptions{Position: PositionFirst})
			require.NoError(t, err)

			dist, err := counter.Count(tt.samples)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrMalformedSample))

			var malformed *core.MalformedSampleError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.line, malformed.Line)
			assert.Empty(t, dist.Counts)
		})
	}
}

func TestCount_MalformedDetectedBeforeIndexErrors(t *testing.T) {
	counter, err := NewDigitCounter(CounterOptions{Position: PositionSecond})
	require.NoError(t, err)

	_, err = counter.Count([]string{"7", "x"})
	assert.ErrorIs(t, err, core.ErrMalformedSample)
}

func TestCount_EmptyDataset(t *testing.T) {
	for _, samples := range [][]string{nil, {}, {"", " ", "\n"}} {
		counter, err := NewDigitCounter(CounterOptions{Position: PositionFirst})
		require.NoError(t, err)
		_, err = counter.Count(samples)
		assert.ErrorIs(t, err, core.ErrEmptyDataset)
	}
}

func TestCount_ArbitrarySizeIntegers(t *testing.T) {
	dist := countFirst(t, []string{"98765432109876543210987654321", "+5"})

	assert.Equal(t, 1, dist.Counts[8])
	assert.Equal(t, 2, dist.Total)
	// "+5" keeps its sign character in text mode
	assert.Equal(t, 1, dist.Unbucketed)
}

func TestCount_ZeroPolicy(t *testing.T) {
	samples := []string{"0", "12", "05", "31"}

	t.Run("include counts leading zeros without a bucket", func(t *testing.T) {
		counter, err := NewDigitCounter(CounterOptions{Position: PositionFirst, ZeroPolicy: ZeroInclude})
		require.NoError(t, err)
		dist, err := counter.Count(samples)
		require.NoError(t, err)

		assert.Equal(t, 4, dist.Total)
		assert.Equal(t, 2, dist.Unbucketed)
		assert.Zero(t, dist.Dropped)
		assert.Equal(t, 1, dist.Counts[0])
		assert.Equal(t, 1, dist.Counts[2])
		assert.InDelta(t, 50.0, dist.UnbucketedPercentage(), 1e-9)
	})

	t.Run("exclude drops leading zeros from the total", func(t *testing.T) {
		counter, err := NewDigitCounter(CounterOptions{Position: PositionFirst, ZeroPolicy: ZeroExclude})
		require.NoError(t, err)
		dist, err := counter.Count(samples)
		require.NoError(t, err)

		assert.Equal(t, 2, dist.Total)
		assert.Zero(t, dist.Unbucketed)
		assert.Equal(t, 2, dist.Dropped)
		assert.InDelta(t, 50.0, dist.Percentages[0], 1e-9)
	})

	t.Run("only zeros under exclude is empty", func(t *testing.T) {
		counter, err := NewDigitCounter(CounterOptions{Position: PositionFirst, ZeroPolicy: ZeroExclude})
		require.NoError(t, err)
		_, err = counter.Count([]string{"0", "00"})
		assert.ErrorIs(t, err, core.ErrEmptyDataset)
	})
}

func TestCount_SecondDigit(t *testing.T) {
	counter, err := NewDigitCounter(CounterOptions{Position: PositionSecond, ZeroPolicy: ZeroInclude})
	require.NoError(t, err)

	dist, err := counter.Count([]string{"123", "145", "20", "99"})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, dist.Digits)
	assert.Equal(t, []int{1, 0, 1, 0, 1, 0, 0, 0, 0, 1}, dist.Counts)
	assert.Equal(t, 4, dist.Total)
}

func TestCount_SecondDigitTooShort(t *testing.T) {
	counter, err := NewDigitCounter(CounterOptions{Position: PositionSecond})
	require.NoError(t, err)

	_, err = counter.Count([]string{"12", "7"})
	require.Error(t, err)

	var short *core.IndexOutOfRangeError
	require.True(t, errors.As(err, &short))
	assert.Equal(t, 2, short.Line)
	assert.Equal(t, 2, short.Position)
}

func TestCount_SecondDigitDefaultsToExclude(t *testing.T) {
	counter, err := NewDigitCounter(CounterOptions{Position: PositionSecond})
	require.NoError(t, err)
	assert.Equal(t, ZeroExclude, counter.Options().ZeroPolicy)

	dist, err := counter.Count([]string{"05", "15", "0"})
	require.NoError(t, err)
	assert.Equal(t, 2, dist.Dropped)
	assert.Equal(t, 1, dist.Total)
	assert.Equal(t, 1, dist.Counts[5])
}

func TestCount_Normalize(t *testing.T) {
	counter, err := NewDigitCounter(CounterOptions{Position: PositionFirst, Normalize: true})
	require.NoError(t, err)

	dist, err := counter.Count([]string{"-12", "+0034", "0007", "-0"})
	require.NoError(t, err)

	assert.Equal(t, 4, dist.Total)
	assert.Equal(t, 1, dist.Counts[0])
	assert.Equal(t, 1, dist.Counts[2])
	assert.Equal(t, 1, dist.Counts[6])
	assert.Equal(t, 1, dist.Unbucketed) // "-0" normalizes to "0"
}

func TestNewDigitCounter_RejectsUnknownOptions(t *testing.T) {
	_, err := NewDigitCounter(CounterOptions{Position: "third"})
	assert.ErrorIs(t, err, core.ErrUnknownPosition)

	_, err = NewDigitCounter(CounterOptions{Position: PositionFirst, ZeroPolicy: "maybe"})
	assert.ErrorIs(t, err, core.ErrUnknownZeroPolicy)
}

func TestCount_Invariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for _, pos := range []Position{PositionFirst, PositionSecond} {
		for trial := 0; trial < 20; trial++ {
			samples := make([]string, 50+rng.IntN(500))
			for i := range samples {
				samples[i] = strconv.FormatInt(10+rng.Int64N(1_000_000), 10)
			}

			counter, err := NewDigitCounter(CounterOptions{Position: pos})
			require.NoError(t, err)
			dist, err := counter.Count(samples)
			require.NoError(t, err)

			sumCounts := 0
			for _, n := range dist.Counts {
				sumCounts += n
			}
			assert.Equal(t, dist.Total, sumCounts+dist.Unbucketed)
			assert.Equal(t, len(samples), dist.Total)

			sumPct := dist.UnbucketedPercentage()
			for _, p := range dist.Percentages {
				sumPct += p
			}
			assert.InEpsilon(t, 100.0, sumPct, 1e-9)

			again, err := counter.Count(samples)
			require.NoError(t, err)
			assert.Equal(t, dist, again)
		}
	}
}

func TestCount_PercentagesMatchRatio(t *testing.T) {
	dist := countFirst(t, []string{"1", "1", "2", "9", "9", "9", "9"})
	for i, n := range dist.Counts {
		want := float64(n) / 7 * 100
		assert.False(t, math.IsNaN(dist.Percentages[i]))
		assert.Equal(t, want, dist.Percentages[i])
	}
}
