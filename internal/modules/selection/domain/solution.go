package domain

// ModificationMethod identifies how a curve was made to meet the duty.
type ModificationMethod string

const (
	MethodDirect       ModificationMethod = "direct"
	MethodExtrapolated ModificationMethod = "extrapolated"
	MethodTrimmed      ModificationMethod = "trimmed"
	MethodSpeedVaried  ModificationMethod = "speed_varied"
)

// Solution is the operating condition a curve achieves for a duty, after the
// modification (if any) has been applied. TrimRatio and SpeedRatio are 1.0
// for unmodified solutions; SpeedRPM is the absolute shaft speed.
type Solution struct {
	Method        ModificationMethod `json:"method"`
	FlowM3H       float64            `json:"flow_m3h"`
	HeadM         float64            `json:"head_m"`
	EfficiencyPct float64            `json:"efficiency_pct"`
	PowerKW       float64            `json:"power_kw"`
	SuctionHeadM  float64            `json:"suction_head_m"`
	TrimRatio     float64            `json:"trim_ratio"`
	SpeedRatio    float64            `json:"speed_ratio"`
	SpeedRPM      float64            `json:"speed_rpm"`
	Extrapolated  bool               `json:"extrapolated"`
}

// TrimPct returns the percentage of impeller diameter removed.
func (s *Solution) TrimPct() float64 {
	return (1 - s.TrimRatio) * 100
}
