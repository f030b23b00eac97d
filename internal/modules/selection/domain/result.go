package domain

// ScoreBreakdown holds the named score components, the penalties, and their
// total. Components and penalties are capped by the configured weights; the
// total is the component sum minus the penalty sum.
type ScoreBreakdown struct {
	Components map[string]float64 `json:"components"`
	Penalties  map[string]float64 `json:"penalties"`
	Total      float64            `json:"total"`
}

// Candidate is one feasible pump/curve with its achieved solution and score.
// QBPPct is carried for display and for the ranking tie-break.
type Candidate struct {
	PumpID   string         `json:"pump_id"`
	PumpName string         `json:"pump_name"`
	CurveID  string         `json:"curve_id"`
	QBPPct   float64        `json:"qbp_pct"`
	Solution Solution       `json:"solution"`
	Score    ScoreBreakdown `json:"score"`
}

// NearMiss annotates an excluded pump that failed exactly one gate by a
// small margin, with the minimal change that would have made it feasible.
type NearMiss struct {
	PumpID        string          `json:"pump_id"`
	PumpName      string          `json:"pump_name"`
	CurveID       string          `json:"curve_id"`
	Reason        ExclusionReason `json:"reason"`
	MinimalChange string          `json:"minimal_change"`
}

// SelectionResult is the full outcome of one selection request.
type SelectionResult struct {
	Candidates []Candidate             `json:"candidates"` // ranked, truncated to top-K
	Exclusions []ExclusionRecord       `json:"exclusions"`
	Summary    map[ExclusionReason]int `json:"summary"` // counts per reason
	NearMisses []NearMiss              `json:"near_misses,omitempty"`
	Evaluated  int                     `json:"evaluated"` // pumps considered after type filtering
}
