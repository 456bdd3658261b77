package spc

func init() {
	RegisterStrategy(pStrategy{})
}

// pStrategy implements the P-attribute chart: per-lot proportions defective
// against binomial limits around the pooled proportion p̄. With varying lot
// sizes the limits are recomputed per lot, so each point carries its own
// limit pair. No zones are defined; only the beyond-limits check applies.
type pStrategy struct{}

func (pStrategy) Type() ChartType { return ChartP }

func (pStrategy) Compute(req Request) (*Result, error) {
	for _, id := range req.Rules {
		if id != RuleBeyondLimits {
			return nil, NewError(CodeInapplicableRule,
				"P-attribute charts apply only the beyond-limits rule").
				WithDetail("rule", string(id))
		}
	}
	if len(req.Lots) == 0 {
		return nil, NewError(CodeInsufficientData, "P-attribute charts require at least one inspection lot")
	}

	lots, err := GroupLots(req.Lots)
	if err != nil {
		return nil, err
	}

	axisLimits, perLot, err := PLimits(lots)
	if err != nil {
		return nil, err
	}

	points := make([]PlottedPoint, len(lots))
	inControl := true
	for i := range lots {
		limits := axisLimits
		if perLot != nil {
			limits = perLot[i]
		}
		p := PlottedPoint{
			Index: i,
			Value: lots[i].Proportion(),
		}
		if perLot != nil {
			pl := perLot[i]
			p.Limits = &pl
		}
		if p.Value > limits.Upper || p.Value < limits.Lower {
			p.Violations = []RuleID{RuleBeyondLimits}
			inControl = false
		}
		points[i] = p
	}

	return &Result{
		ChartType: ChartP,
		Axes: []Axis{{
			Name:      "proportions",
			Limits:    axisLimits,
			Points:    points,
			InControl: inControl,
		}},
		Summary: Summary{
			Subgroups: len(lots),
			PBar:      axisLimits.Center,
			InControl: inControl,
		},
	}, nil
}
