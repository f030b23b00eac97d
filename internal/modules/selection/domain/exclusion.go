package domain

// ExclusionReason is a closed enumeration of why a pump failed selection.
// A record carries a set of reasons: gates are evaluated independently and
// several can fail at once.
type ExclusionReason string

const (
	ReasonQBPLow        ExclusionReason = "qbp_low"
	ReasonQBPHigh       ExclusionReason = "qbp_high"
	ReasonSuctionMargin ExclusionReason = "suction_margin"
	ReasonTrimBelowMin  ExclusionReason = "trim_below_min"
	ReasonSpeedBelowMin ExclusionReason = "speed_below_min"
	ReasonSpeedAboveMax ExclusionReason = "speed_above_max"
	ReasonHeadShortfall ExclusionReason = "head_shortfall"
	ReasonEfficiencyLow ExclusionReason = "efficiency_low"
	ReasonCurveInvalid  ExclusionReason = "curve_invalid"
	ReasonDataError     ExclusionReason = "data_error"
	ReasonNoSolution    ExclusionReason = "no_solution"
)

// ExclusionDetail pairs a reason with the achieved and required values of the
// failed check, so near-miss analysis can compute how far off the pump was.
// Issue carries the underlying curve finding for curve_invalid and data_error
// details, where a single achieved/required pair cannot describe the failure.
type ExclusionDetail struct {
	Reason   ExclusionReason `json:"reason"`
	Achieved float64         `json:"achieved"`
	Required float64         `json:"required"`
	Issue    string          `json:"issue,omitempty"`
}

// Delta returns achieved minus required.
func (d ExclusionDetail) Delta() float64 {
	return d.Achieved - d.Required
}

// ExclusionRecord captures every reason a pump/curve failed, in gate order.
// Solution is present when the solver produced one but the gate rejected it.
type ExclusionRecord struct {
	PumpID   string            `json:"pump_id"`
	PumpName string            `json:"pump_name"`
	CurveID  string            `json:"curve_id"`
	Details  []ExclusionDetail `json:"details"`
	Solution *Solution         `json:"solution,omitempty"`
}

// Reasons returns the reason tags in recorded order.
func (r *ExclusionRecord) Reasons() []ExclusionReason {
	reasons := make([]ExclusionReason, len(r.Details))
	for i, d := range r.Details {
		reasons[i] = d.Reason
	}
	return reasons
}

// Has reports whether the record contains the given reason.
func (r *ExclusionRecord) Has(reason ExclusionReason) bool {
	for _, d := range r.Details {
		if d.Reason == reason {
			return true
		}
	}
	return false
}
