package benford

import (
	"fmt"
	"math"

	"gobenford/domain/core"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat/distuv"
)

// ExpectedCounts scales the reference percentages to total, rounding half to even.
func ExpectedCounts(p Position, total int) ([]int, error) {
	ref, err := Reference(p)
	if err != nil {
		return nil, err
	}
	expected := make([]int, len(ref))
	for i, pct := range ref {
		expected[i] = int(scalar.RoundEven(pct*float64(total)/100, 0))
	}
	return expected, nil
}

// ChiSquareStatistic computes Σ (observed - expected)² / expected over paired buckets.
// The digits slice labels buckets for error reporting and may be nil.
func ChiSquareStatistic(observed, expected, digits []int) (float64, error) {
	total := 0
	for _, o := range observed {
		total += o
	}
	return chiSquare(observed, expected, digits, total)
}

// chiSquare reports a zero expected bucket against total, the sample count
// the expected counts were scaled to.
func chiSquare(observed, expected, digits []int, total int) (float64, error) {
	if len(observed) != len(expected) {
		return 0, fmt.Errorf("%w: %d observed, %d expected", core.ErrCountMismatch, len(observed), len(expected))
	}

	var stat float64
	for i := range observed {
		if expected[i] == 0 {
			digit := i
			if i < len(digits) {
				digit = digits[i]
			}
			return 0, &core.ZeroExpectedCountError{Digit: digit, Total: total}
		}
		diff := float64(observed[i] - expected[i])
		stat += math.Pow(diff, 2) / float64(expected[i])
	}
	return stat, nil
}

// Comparator tests a distribution against the Benford reference for one position.
type Comparator struct {
	position     Position
	significance float64
	critical     float64
}

// NewComparator creates a comparator; significance 0 selects DefaultSignificance.
func NewComparator(p Position, significance float64) (*Comparator, error) {
	if significance == 0 {
		significance = DefaultSignificance
	}
	critical, err := CriticalValue(p, significance)
	if err != nil {
		return nil, err
	}
	return &Comparator{position: p, significance: significance, critical: critical}, nil
}

// CriticalValue returns the threshold this comparator tests against.
func (c *Comparator) CriticalValue() float64 {
	return c.critical
}

// Compare runs the chi-square goodness-of-fit test. The distribution matches
// iff the statistic is strictly below the critical value.
func (c *Comparator) Compare(dist DigitDistribution) (ChiSquareResult, error) {
	if dist.Position != c.position {
		return ChiSquareResult{}, fmt.Errorf("%w: comparator for %s given %s distribution",
			core.ErrUnknownPosition, c.position, dist.Position)
	}
	if dist.Total == 0 {
		return ChiSquareResult{}, core.ErrEmptyDataset
	}

	expected, err := ExpectedCounts(c.position, dist.Total)
	if err != nil {
		return ChiSquareResult{}, err
	}
	stat, err := chiSquare(dist.Counts, expected, dist.Digits, dist.Total)
	if err != nil {
		return ChiSquareResult{}, err
	}

	df := c.position.DegreesOfFreedom()
	observed := make([]int, len(dist.Counts))
	copy(observed, dist.Counts)

	return ChiSquareResult{
		Position:         c.position,
		Observed:         observed,
		Expected:         expected,
		Statistic:        stat,
		CriticalValue:    c.critical,
		DegreesOfFreedom: df,
		Significance:     c.significance,
		PValue:           distuv.ChiSquared{K: float64(df)}.Survival(stat),
		Passed:           stat < c.critical,
	}, nil
}
