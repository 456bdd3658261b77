package spc

func init() {
	RegisterStrategy(xbarRStrategy{})
	RegisterStrategy(xbarSStrategy{})
}

// dispersionRules is the fixed rule set for R and S axes. The multi-point
// zone rules target the X̄ axis; the dispersion axis only flags points
// beyond its own 3-sigma limits.
var dispersionRules = []RuleID{RuleBeyondLimits}

// xbarRStrategy implements the X̄-R chart: subgroup means against limits
// derived from the mean subgroup range, plus a range dispersion axis.
type xbarRStrategy struct{}

func (xbarRStrategy) Type() ChartType { return ChartXbarR }

func (xbarRStrategy) Compute(req Request) (*Result, error) {
	size := subgroupSize(req)
	subgroups, err := GroupMeasurements(req.Values, req.Offsets, size, req.Partial)
	if err != nil {
		return nil, err
	}

	xbarLimits, rLimits, err := XbarRLimits(subgroups, size, req.Given)
	if err != nil {
		return nil, err
	}

	rules := req.Rules
	if rules == nil {
		rules = DefaultXbarRules()
	}
	xbarEval, err := NewEvaluator(rules, true)
	if err != nil {
		return nil, err
	}
	rEval, err := NewEvaluator(dispersionRules, true)
	if err != nil {
		return nil, err
	}

	meansAxis := buildAxis("means", subgroupMeans(subgroups), xbarLimits, xbarEval)
	rangesAxis := buildAxis("ranges", subgroupRanges(subgroups), rLimits, rEval)

	sigma, err := SigmaFromRange(rLimits.Center, size)
	if err != nil {
		return nil, err
	}

	return &Result{
		ChartType: ChartXbarR,
		Axes:      []Axis{meansAxis, rangesAxis},
		Summary: Summary{
			Subgroups:    len(subgroups),
			SubgroupSize: size,
			GrandMean:    xbarLimits.Center,
			MeanRange:    rLimits.Center,
			Sigma:        sigma,
			InControl:    meansAxis.InControl && rangesAxis.InControl,
		},
	}, nil
}

// xbarSStrategy implements the X̄-S chart: subgroup means against limits
// derived from the mean subgroup standard deviation, plus an S dispersion
// axis. Preferred over X̄-R for larger subgroup sizes.
type xbarSStrategy struct{}

func (xbarSStrategy) Type() ChartType { return ChartXbarS }

func (xbarSStrategy) Compute(req Request) (*Result, error) {
	size := subgroupSize(req)
	subgroups, err := GroupMeasurements(req.Values, req.Offsets, size, req.Partial)
	if err != nil {
		return nil, err
	}

	xbarLimits, sLimits, err := XbarSLimits(subgroups, size, req.Given)
	if err != nil {
		return nil, err
	}

	rules := req.Rules
	if rules == nil {
		rules = DefaultXbarRules()
	}
	xbarEval, err := NewEvaluator(rules, true)
	if err != nil {
		return nil, err
	}
	sEval, err := NewEvaluator(dispersionRules, true)
	if err != nil {
		return nil, err
	}

	meansAxis := buildAxis("means", subgroupMeans(subgroups), xbarLimits, xbarEval)
	stddevsAxis := buildAxis("stddevs", subgroupStdDevs(subgroups), sLimits, sEval)

	sigma, err := SigmaFromStdDev(sLimits.Center, size)
	if err != nil {
		return nil, err
	}

	return &Result{
		ChartType: ChartXbarS,
		Axes:      []Axis{meansAxis, stddevsAxis},
		Summary: Summary{
			Subgroups:    len(subgroups),
			SubgroupSize: size,
			GrandMean:    xbarLimits.Center,
			MeanStdDev:   sLimits.Center,
			Sigma:        sigma,
			InControl:    meansAxis.InControl && stddevsAxis.InControl,
		},
	}, nil
}
