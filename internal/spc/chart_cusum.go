package spc

func init() {
	RegisterStrategy(cusumStrategy{})
}

// cusumStrategy implements the CUSUM chart: a tabular cumulative sum of the
// subgroup means around a target, with companion X̄ and R axes for context.
// Limits are a decision interval h·σ rather than classic UCL/LCL, so the
// zone-based rules are not defined here; only the decision-interval signal
// (and the beyond-limits check on the companion axes) applies.
type cusumStrategy struct{}

func (cusumStrategy) Type() ChartType { return ChartCUSUM }

func (cusumStrategy) Compute(req Request) (*Result, error) {
	for _, id := range req.Rules {
		if id != RuleBeyondLimits && id != RuleCUSUMSignal {
			return nil, NewError(CodeInapplicableRule,
				"CUSUM charts apply only the decision-interval and beyond-limits rules").
				WithDetail("rule", string(id))
		}
	}

	size := subgroupSize(req)
	subgroups, err := GroupMeasurements(req.Values, req.Offsets, size, req.Partial)
	if err != nil {
		return nil, err
	}

	xbarLimits, rLimits, err := XbarRLimits(subgroups, size, req.Given)
	if err != nil {
		return nil, err
	}

	eval, err := NewEvaluator([]RuleID{RuleBeyondLimits}, true)
	if err != nil {
		return nil, err
	}
	meansAxis := buildAxis("means", subgroupMeans(subgroups), xbarLimits, eval)
	rangesAxis := buildAxis("ranges", subgroupRanges(subgroups), rLimits, eval)

	// Sigma of the plotted subgroup means: S̄·A3/3 = S̄/(c₄·√n)
	sigma, err := sigmaOfMeans(subgroups, size)
	if err != nil {
		return nil, err
	}
	if req.Sigma != nil {
		sigma = *req.Sigma
	}

	opts := CUSUMOptions{
		K:        req.K,
		H:        req.H,
		Sigma:    sigma,
		SigmaSet: true,
	}
	if req.Target != nil {
		opts.Target = *req.Target
		opts.TargetSet = true
	}

	cusum, err := ComputeCUSUM(subgroupMeans(subgroups), opts)
	if err != nil {
		return nil, err
	}

	cusumInControl := true
	for _, p := range cusum.Points {
		if p.Violation {
			cusumInControl = false
			break
		}
	}

	procSigma, err := SigmaFromRange(rLimits.Center, size)
	if err != nil {
		return nil, err
	}

	return &Result{
		ChartType: ChartCUSUM,
		Axes:      []Axis{meansAxis, rangesAxis},
		CUSUM:     cusum,
		Summary: Summary{
			Subgroups:    len(subgroups),
			SubgroupSize: size,
			GrandMean:    xbarLimits.Center,
			MeanRange:    rLimits.Center,
			Sigma:        procSigma,
			InControl:    meansAxis.InControl && rangesAxis.InControl && cusumInControl,
		},
	}, nil
}

// sigmaOfMeans estimates the standard deviation of the subgroup means from
// the mean subgroup sample standard deviation
func sigmaOfMeans(subgroups []Subgroup, size int) (float64, error) {
	consts, err := LookupConstants(size)
	if err != nil {
		return 0, err
	}
	sBar := meanOf(subgroups, (*Subgroup).StdDev)
	return consts.A3 * sBar / 3.0, nil
}
