package risk

import (
	"fmt"
	"time"
)

// Weights are dimension weights in whole percentage points. Integer points
// keep the sum exact and the overall score reproducible.
type Weights struct {
	AIPlatform int `json:"ai_platform"`
	Permission int `json:"permission"`
	Activity   int `json:"activity"`
	User       int `json:"user"`
	Temporal   int `json:"temporal"`
}

var DefaultWeights = Weights{
	AIPlatform: 30,
	Permission: 25,
	Activity:   20,
	User:       15,
	Temporal:   10,
}

func (w Weights) Total() int {
	return w.AIPlatform + w.Permission + w.Activity + w.User + w.Temporal
}

func (w Weights) Validate() error {
	for _, v := range []int{w.AIPlatform, w.Permission, w.Activity, w.User, w.Temporal} {
		if v < 0 {
			return fmt.Errorf("risk weights must not be negative: %+v", w)
		}
	}
	if total := w.Total(); total != 100 {
		return fmt.Errorf("risk weights must sum to 100, got %d", total)
	}
	return nil
}

// DimensionResults carries the output of all five calculators.
type DimensionResults struct {
	AIPlatform AIPlatformRisk `json:"ai_platform"`
	Permission PermissionRisk `json:"permission"`
	Activity   ActivityRisk   `json:"activity"`
	User       UserRisk       `json:"user"`
	Temporal   TemporalRisk   `json:"temporal"`
}

type dimensionEntry struct {
	dimension Dimension
	score     int
	weight    int
	concerns  []Concern
}

// entries lists the dimensions in weight order.
func (d DimensionResults) entries(w Weights) []dimensionEntry {
	return []dimensionEntry{
		{DimensionAIPlatform, d.AIPlatform.TotalScore, w.AIPlatform, d.AIPlatform.Concerns},
		{DimensionPermission, d.Permission.TotalScore, w.Permission, d.Permission.Concerns},
		{DimensionActivity, d.Activity.TotalScore, w.Activity, d.Activity.Concerns},
		{DimensionUser, d.User.TotalScore, w.User, d.User.Concerns},
		{DimensionTemporal, d.Temporal.TotalScore, w.Temporal, d.Temporal.Concerns},
	}
}

// ConfidenceInput records which inputs were available to an assessment.
type ConfidenceInput struct {
	HasAuditData    bool
	HasScopeData    bool
	HasUserData     bool
	HasTemporalData bool
	FirstAuthorized time.Time
}

// Confidence measures input completeness and recency, independent of risk.
// Without audit data the recency component is forfeited.
func Confidence(in ConfidenceInput, now time.Time) int {
	score := 0
	if in.HasAuditData {
		score += 20
	}
	if in.HasScopeData {
		score += 20
	}
	if in.HasUserData {
		score += 10
	}
	if in.HasTemporalData {
		score += 10
	}
	if in.HasAuditData && !in.FirstAuthorized.IsZero() {
		age := now.Sub(in.FirstAuthorized)
		switch {
		case age <= 7*day:
			score += 40
		case age <= 30*day:
			score += 30
		case age <= 90*day:
			score += 20
		default:
			score += 10
		}
	}
	return clampScore(score)
}

// Aggregate combines dimension scores into the weighted overall score.
func Aggregate(dims DimensionResults, w Weights, in ConfidenceInput, now time.Time) RiskScore {
	out := RiskScore{
		Dimensions: DimensionScores{
			AIPlatform: dims.AIPlatform.TotalScore,
			Permission: dims.Permission.TotalScore,
			Activity:   dims.Activity.TotalScore,
			User:       dims.User.TotalScore,
			Temporal:   dims.Temporal.TotalScore,
		},
		Confidence: Confidence(in, now),
		AssessedAt: now,
	}

	total := w.Total()
	if total <= 0 {
		total = 100
	}
	weighted := 0
	for _, e := range dims.entries(w) {
		weighted += e.score * e.weight
		out.Breakdown = append(out.Breakdown, DimensionBreakdown{
			Dimension:    e.dimension,
			Score:        e.score,
			Weight:       float64(e.weight) / float64(total),
			Contribution: float64(e.score*e.weight) / float64(total),
			Concerns:     renderConcerns(e.concerns),
		})
	}
	out.Overall = clampScore((weighted + total/2) / total)
	out.Severity = SeverityFromScore(out.Overall)
	return out
}
