package benford

import (
	"math/big"
	"strings"

	"gobenford/domain/core"
)

// CounterOptions configures a DigitCounter.
type CounterOptions struct {
	Position   Position
	ZeroPolicy ZeroPolicy // empty selects DefaultZeroPolicy(Position)
	// Normalize strips a sign and leading zeros before reading digits, so the
	// magnitude rather than the literal text decides the bucket.
	Normalize bool
}

// DigitCounter tabulates significant digits of integer samples.
type DigitCounter struct {
	opts CounterOptions
}

// NewDigitCounter creates a new counter, validating its options
func NewDigitCounter(opts CounterOptions) (*DigitCounter, error) {
	if opts.Position == "" {
		opts.Position = PositionFirst
	}
	if err := opts.Position.Validate(); err != nil {
		return nil, err
	}
	if opts.ZeroPolicy == "" {
		opts.ZeroPolicy = DefaultZeroPolicy(opts.Position)
	}
	if _, err := ParseZeroPolicy(string(opts.ZeroPolicy)); err != nil {
		return nil, err
	}
	return &DigitCounter{opts: opts}, nil
}

// Options returns the effective options after defaulting.
func (c *DigitCounter) Options() CounterOptions {
	return c.opts
}

type validSample struct {
	line int
	text string
}

// Count validates every sample and tabulates the configured digit position.
// Blank samples are skipped. Any malformed sample fails the whole batch before
// anything is counted.
func (c *DigitCounter) Count(samples []string) (DigitDistribution, error) {
	valid, err := validateSamples(samples)
	if err != nil {
		return DigitDistribution{}, err
	}

	digits := c.opts.Position.Digits()
	lowest := digits[0]
	dist := DigitDistribution{
		Position:   c.opts.Position,
		ZeroPolicy: c.opts.ZeroPolicy,
		Digits:     digits,
		Counts:     make([]int, len(digits)),
	}

	idx := c.opts.Position.Index() - 1
	for _, s := range valid {
		text := s.text
		if c.opts.Normalize {
			text = normalizeMagnitude(text)
		}
		if text[0] == '0' && c.opts.ZeroPolicy == ZeroExclude {
			dist.Dropped++
			continue
		}
		if len(text) <= idx {
			return DigitDistribution{}, &core.IndexOutOfRangeError{Line: s.line, Sample: s.text, Position: idx + 1}
		}

		dist.Total++
		ch := text[idx]
		if ch < '0' || ch > '9' || int(ch-'0') < lowest {
			dist.Unbucketed++
			continue
		}
		dist.Counts[int(ch-'0')-lowest]++
	}

	if dist.Total == 0 {
		return DigitDistribution{}, core.ErrEmptyDataset
	}

	dist.Percentages = make([]float64, len(dist.Counts))
	for i, n := range dist.Counts {
		dist.Percentages[i] = (float64(n) / float64(dist.Total)) * 100
	}
	return dist, nil
}

// validateSamples trims samples, skips blanks and rejects anything that is not
// a base-10 integer of arbitrary size.
func validateSamples(samples []string) ([]validSample, error) {
	valid := make([]validSample, 0, len(samples))
	n := new(big.Int)
	for i, raw := range samples {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		if _, ok := n.SetString(text, 10); !ok {
			return nil, &core.MalformedSampleError{Line: i + 1, Sample: raw}
		}
		valid = append(valid, validSample{line: i + 1, text: text})
	}
	return valid, nil
}

func normalizeMagnitude(text string) string {
	text = strings.TrimLeft(text, "+-")
	text = strings.TrimLeft(text, "0")
	if text == "" {
		return "0"
	}
	return text
}
