package benford

import (
	"fmt"

	"gobenford/domain/core"

	"gonum.org/v1/gonum/stat/distuv"
)

// Position selects which significant character of a sample is tabulated.
type Position string

const (
	PositionFirst  Position = "first"
	PositionSecond Position = "second"
)

// ParsePosition parses "first"/"second" (also "1"/"2").
func ParsePosition(s string) (Position, error) {
	switch s {
	case "first", "1":
		return PositionFirst, nil
	case "second", "2":
		return PositionSecond, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownPosition, s)
}

// Validate checks the position is known.
func (p Position) Validate() error {
	if p != PositionFirst && p != PositionSecond {
		return fmt.Errorf("%w: %q", core.ErrUnknownPosition, string(p))
	}
	return nil
}

// Index is the 1-based character index the position reads.
func (p Position) Index() int {
	if p == PositionSecond {
		return 2
	}
	return 1
}

// Digits returns the bucket labels for the position: 1-9 or 0-9.
func (p Position) Digits() []int {
	lo := 1
	if p == PositionSecond {
		lo = 0
	}
	digits := make([]int, 0, 10-lo)
	for d := lo; d <= 9; d++ {
		digits = append(digits, d)
	}
	return digits
}

// DegreesOfFreedom is the bucket count minus one.
func (p Position) DegreesOfFreedom() int {
	return len(p.Digits()) - 1
}

// Benford reference percentages. Never mutated; use Reference for a copy.
var (
	firstDigitReference  = [9]float64{30.1, 17.6, 12.5, 9.7, 7.9, 6.7, 5.8, 5.1, 4.6}
	secondDigitReference = [10]float64{11.97, 11.39, 10.88, 10.43, 10.03, 9.67, 9.34, 9.04, 8.76, 8.50}
)

// Critical values of the chi-square distribution at p = 0.05.
const (
	DefaultSignificance      = 0.05
	FirstDigitCriticalValue  = 15.51 // df = 8
	SecondDigitCriticalValue = 16.92 // df = 9
)

// Reference returns a copy of the expected percentage per digit for the position.
func Reference(p Position) ([]float64, error) {
	switch p {
	case PositionFirst:
		out := firstDigitReference
		return out[:], nil
	case PositionSecond:
		out := secondDigitReference
		return out[:], nil
	}
	return nil, fmt.Errorf("%w: %q", core.ErrUnknownPosition, string(p))
}

// CriticalValue returns the chi-square threshold for the position. At the
// default significance the published table values are used; any other level is
// derived from the chi-square quantile function.
func CriticalValue(p Position, significance float64) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if significance <= 0 || significance >= 1 {
		return 0, core.NewValidationError("significance", fmt.Sprintf("%v is outside (0, 1)", significance))
	}
	if significance == DefaultSignificance {
		if p == PositionFirst {
			return FirstDigitCriticalValue, nil
		}
		return SecondDigitCriticalValue, nil
	}
	dist := distuv.ChiSquared{K: float64(p.DegreesOfFreedom())}
	return dist.Quantile(1 - significance), nil
}
