package spc

import "math"

// GivenLimits carries externally supplied (historical) control limits for
// the primary statistic axis. When present, limit derivation is skipped and
// only the ordering invariant is validated.
type GivenLimits struct {
	Center float64 `json:"center"`
	Upper  float64 `json:"upper"`
	Lower  float64 `json:"lower"`
}

// meanOf applies f to every subgroup and averages the results
func meanOf(subgroups []Subgroup, f func(*Subgroup) float64) float64 {
	sum := 0.0
	for i := range subgroups {
		sum += f(&subgroups[i])
	}
	return sum / float64(len(subgroups))
}

// XbarRLimits derives the X̄ and R axis limits from subgroup means and
// ranges:
//
//	X̄ chart: CL = mean of means, CL ± A2·R̄
//	R chart: CL = R̄, UCL = D4·R̄, LCL = D3·R̄ (0 for small n)
//
// An all-identical series gives R̄ = 0 and collapsed R limits, which is
// valid and not an error.
func XbarRLimits(subgroups []Subgroup, size int, given *GivenLimits) (xbar, r ControlLimits, err error) {
	if len(subgroups) == 0 {
		return xbar, r, NewError(CodeInsufficientData, "cannot derive control limits from zero subgroups")
	}
	consts, err := LookupConstants(size)
	if err != nil {
		return xbar, r, err
	}

	rBar := meanOf(subgroups, (*Subgroup).Range)
	r = ControlLimits{
		Center: rBar,
		Upper:  consts.D4 * rBar,
		Lower:  consts.D3 * rBar,
	}.floorLower()

	if given != nil {
		xbar = ControlLimits{Center: given.Center, Upper: given.Upper, Lower: given.Lower}
		return xbar, r, xbar.Validate()
	}

	grand := meanOf(subgroups, (*Subgroup).Mean)
	xbar = ControlLimits{
		Center: grand,
		Upper:  grand + consts.A2*rBar,
		Lower:  grand - consts.A2*rBar,
	}
	return xbar, r, nil
}

// XbarSLimits derives the X̄ and S axis limits from subgroup means and
// sample standard deviations:
//
//	X̄ chart: CL = mean of means, CL ± A3·S̄
//	S chart: CL = S̄, UCL = B4·S̄, LCL = B3·S̄ (0 for small n)
func XbarSLimits(subgroups []Subgroup, size int, given *GivenLimits) (xbar, s ControlLimits, err error) {
	if len(subgroups) == 0 {
		return xbar, s, NewError(CodeInsufficientData, "cannot derive control limits from zero subgroups")
	}
	consts, err := LookupConstants(size)
	if err != nil {
		return xbar, s, err
	}

	sBar := meanOf(subgroups, (*Subgroup).StdDev)
	s = ControlLimits{
		Center: sBar,
		Upper:  consts.B4 * sBar,
		Lower:  consts.B3 * sBar,
	}.floorLower()

	if given != nil {
		xbar = ControlLimits{Center: given.Center, Upper: given.Upper, Lower: given.Lower}
		return xbar, s, xbar.Validate()
	}

	grand := meanOf(subgroups, (*Subgroup).Mean)
	xbar = ControlLimits{
		Center: grand,
		Upper:  grand + consts.A3*sBar,
		Lower:  grand - consts.A3*sBar,
	}
	return xbar, s, nil
}

// PLimits derives P-attribute chart limits. The center line is the pooled
// proportion p̄ = total defectives / total inspected. When lot sizes vary,
// limits are recomputed per lot as p̄ ± 3·sqrt(p̄(1-p̄)/nᵢ) and the returned
// perLot slice parallels the lots; with uniform sizes perLot is nil and the
// single pair applies to every point. Lower limits are clamped at 0 and
// upper limits capped at 1.
func PLimits(lots []Subgroup) (limits ControlLimits, perLot []ControlLimits, err error) {
	if len(lots) == 0 {
		return limits, nil, NewError(CodeInsufficientData, "cannot derive control limits from zero inspection lots")
	}

	totalDefective, totalInspected := 0, 0
	for i := range lots {
		totalDefective += lots[i].Defectives
		totalInspected += lots[i].LotSize
	}
	if totalInspected == 0 {
		return limits, nil, NewError(CodeInsufficientData, "inspection lots contain no inspected units")
	}
	pBar := float64(totalDefective) / float64(totalInspected)

	varying := false
	for i := range lots[1:] {
		if lots[i+1].LotSize != lots[0].LotSize {
			varying = true
			break
		}
	}

	limitsFor := func(n int) ControlLimits {
		q := 3 * math.Sqrt(pBar*(1-pBar)/float64(n))
		cl := ControlLimits{Center: pBar, Upper: pBar + q, Lower: pBar - q}.floorLower()
		if cl.Upper > 1 {
			cl.Upper = 1
		}
		return cl
	}

	if !varying {
		return limitsFor(lots[0].LotSize), nil, nil
	}

	// Varying lot sizes: per-point limits, with the axis limits computed
	// from the mean lot size for display purposes.
	perLot = make([]ControlLimits, len(lots))
	for i := range lots {
		perLot[i] = limitsFor(lots[i].LotSize)
	}
	meanSize := int(math.Round(float64(totalInspected) / float64(len(lots))))
	if meanSize < 1 {
		meanSize = 1
	}
	return limitsFor(meanSize), perLot, nil
}

// LimitsFromGiven validates and converts externally supplied limits
func LimitsFromGiven(given GivenLimits) (ControlLimits, error) {
	cl := ControlLimits{Center: given.Center, Upper: given.Upper, Lower: given.Lower}
	if err := cl.Validate(); err != nil {
		return ControlLimits{}, err
	}
	return cl, nil
}

// SigmaFromRange estimates the process standard deviation from the mean
// subgroup range: σ̂ = R̄/d₂
func SigmaFromRange(rBar float64, size int) (float64, error) {
	consts, err := LookupConstants(size)
	if err != nil {
		return 0, err
	}
	return rBar / consts.D2, nil
}

// SigmaFromStdDev estimates the process standard deviation from the mean
// subgroup sample standard deviation: σ̂ = S̄/c₄
func SigmaFromStdDev(sBar float64, size int) (float64, error) {
	consts, err := LookupConstants(size)
	if err != nil {
		return 0, err
	}
	return sBar / consts.C4, nil
}
