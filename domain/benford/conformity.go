package benford

import (
	"math"

	"github.com/montanaflynn/stats"
)

// MAD thresholds per position (Nigrini, 2012): close, acceptable, marginal.
var madThresholds = map[Position][3]float64{
	PositionFirst:  {0.006, 0.012, 0.015},
	PositionSecond: {0.008, 0.010, 0.012},
}

// MeasureConformity computes the mean absolute deviation between observed and
// reference proportions and classifies it.
func MeasureConformity(dist DigitDistribution) (Conformity, error) {
	ref, err := Reference(dist.Position)
	if err != nil {
		return Conformity{}, err
	}

	deviations := make(stats.Float64Data, len(ref))
	for i := range ref {
		var observed float64
		if i < len(dist.Percentages) {
			observed = dist.Percentages[i] / 100
		}
		deviations[i] = math.Abs(observed - ref[i]/100)
	}

	mad, err := stats.Mean(deviations)
	if err != nil {
		return Conformity{}, err
	}
	return Conformity{MAD: mad, Level: classifyMAD(dist.Position, mad)}, nil
}

func classifyMAD(p Position, mad float64) ConformityLevel {
	t := madThresholds[p]
	switch {
	case mad <= t[0]:
		return ConformityClose
	case mad <= t[1]:
		return ConformityAcceptable
	case mad <= t[2]:
		return ConformityMarginal
	default:
		return ConformityNonconforming
	}
}
