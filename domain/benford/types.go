package benford

import (
	"fmt"
	"time"

	"gobenford/domain/core"
)

// ZeroPolicy decides what happens to a sample whose text starts with "0".
//
// The basic first-digit analysis counts such samples in the total without a
// bucket of their own (ZeroInclude). The extended first+second analysis drops
// them before counting (ZeroExclude). The two behaviors disagree; both are kept
// and callers pick one explicitly.
type ZeroPolicy string

const (
	ZeroInclude ZeroPolicy = "include"
	ZeroExclude ZeroPolicy = "exclude"
)

// ParseZeroPolicy parses "include" or "exclude".
func ParseZeroPolicy(s string) (ZeroPolicy, error) {
	switch ZeroPolicy(s) {
	case ZeroInclude, ZeroExclude:
		return ZeroPolicy(s), nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownZeroPolicy, s)
}

// DefaultZeroPolicy returns the policy a standalone analysis of the position uses.
func DefaultZeroPolicy(p Position) ZeroPolicy {
	if p == PositionSecond {
		return ZeroExclude
	}
	return ZeroInclude
}

// DigitDistribution is the tabulated digit frequency of one sample set.
//
// Counts and Percentages are indexed like Digits. Unbucketed samples are part
// of Total but have no digit bucket (a leading "0" under ZeroInclude, or a sign
// character). Dropped samples were removed by ZeroExclude and are not in Total.
type DigitDistribution struct {
	Position    Position   `json:"position"`
	ZeroPolicy  ZeroPolicy `json:"zero_policy"`
	Digits      []int      `json:"digits"`
	Counts      []int      `json:"counts"`
	Percentages []float64  `json:"percentages"`
	Total       int        `json:"total"`
	Unbucketed  int        `json:"unbucketed"`
	Dropped     int        `json:"dropped"`
}

// UnbucketedPercentage is the share of Total without a digit bucket.
func (d DigitDistribution) UnbucketedPercentage() float64 {
	if d.Total == 0 {
		return 0
	}
	return float64(d.Unbucketed) / float64(d.Total) * 100
}

// ChiSquareResult is the goodness-of-fit outcome against the Benford reference.
type ChiSquareResult struct {
	Position         Position `json:"position"`
	Observed         []int    `json:"observed"`
	Expected         []int    `json:"expected"`
	Statistic        float64  `json:"statistic"`
	CriticalValue    float64  `json:"critical_value"`
	DegreesOfFreedom int      `json:"degrees_of_freedom"`
	Significance     float64  `json:"significance"`
	PValue           float64  `json:"p_value"`
	Passed           bool     `json:"passed"`
}

// ConformityLevel is Nigrini's MAD-based conformity classification.
type ConformityLevel string

const (
	ConformityClose         ConformityLevel = "close"
	ConformityAcceptable    ConformityLevel = "acceptable"
	ConformityMarginal      ConformityLevel = "marginal"
	ConformityNonconforming ConformityLevel = "nonconformity"
)

// Conformity holds the mean absolute deviation between observed and expected proportions.
type Conformity struct {
	MAD   float64         `json:"mad"`
	Level ConformityLevel `json:"level"`
}

// Section is the complete analysis of one digit position.
type Section struct {
	Distribution DigitDistribution `json:"distribution"`
	Reference    []float64         `json:"reference"`
	ChiSquare    ChiSquareResult   `json:"chi_square"`
	Conformity   Conformity        `json:"conformity"`
}

// MagnitudeProfile summarizes the absolute values of the non-zero samples.
// Benford analysis assumes data spanning several orders of magnitude with a
// positive skew; Warnings lists each assumption the samples violate.
type MagnitudeProfile struct {
	Count             int      `json:"count"`
	Min               float64  `json:"min"`
	Max               float64  `json:"max"`
	Median            float64  `json:"median"`
	Q25               float64  `json:"q25"`
	Q75               float64  `json:"q75"`
	OrdersOfMagnitude float64  `json:"orders_of_magnitude"`
	Skewness          float64  `json:"skewness"`
	Warnings          []string `json:"warnings,omitempty"`
}

// Suitable reports whether the samples meet every applicability check.
func (p *MagnitudeProfile) Suitable() bool {
	return p != nil && len(p.Warnings) == 0
}

// Report is the result of one analysis run over one sample source.
// Profile is not persisted with stored runs.
type Report struct {
	RunID     core.RunID        `json:"run_id,omitempty"`
	Source    string            `json:"source"`
	Sections  []Section         `json:"sections"`
	Profile   *MagnitudeProfile `json:"profile,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Passed reports whether every section matched the Benford distribution.
func (r *Report) Passed() bool {
	if len(r.Sections) == 0 {
		return false
	}
	for _, s := range r.Sections {
		if !s.ChiSquare.Passed {
			return false
		}
	}
	return true
}

// Section returns the section for the position, if present.
func (r *Report) Section(p Position) (Section, bool) {
	for _, s := range r.Sections {
		if s.Distribution.Position == p {
			return s, true
		}
	}
	return Section{}, false
}
