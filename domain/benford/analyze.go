package benford

// Analyze counts samples for one position and runs both conformity tests.
func Analyze(samples []string, opts CounterOptions, significance float64) (Section, error) {
	counter, err := NewDigitCounter(opts)
	if err != nil {
		return Section{}, err
	}
	opts = counter.Options()

	comparator, err := NewComparator(opts.Position, significance)
	if err != nil {
		return Section{}, err
	}

	dist, err := counter.Count(samples)
	if err != nil {
		return Section{}, err
	}
	chi, err := comparator.Compare(dist)
	if err != nil {
		return Section{}, err
	}
	conformity, err := MeasureConformity(dist)
	if err != nil {
		return Section{}, err
	}
	ref, _ := Reference(opts.Position)

	return Section{
		Distribution: dist,
		Reference:    ref,
		ChiSquare:    chi,
		Conformity:   conformity,
	}, nil
}
