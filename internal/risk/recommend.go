package risk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/open-sspm/oauth-risk/internal/scopelib"
)

const (
	aiComplianceThreshold    = 50
	activityMonitorThreshold = 60
	escalationThreshold      = 75
)

// Recommend derives remediation steps from an aggregated score and the
// dimension results behind it. Each rule fires at most once, except scope
// reduction which fires once per risky scope.
func Recommend(app AppMetadata, score RiskScore, dims DimensionResults) []Recommendation {
	name := appLabel(app)
	var out []Recommendation

	if score.Overall >= escalationThreshold {
		out = append(out, Recommendation{
			Priority:    PriorityImmediate,
			Category:    CategoryPolicy,
			Title:       "Escalate to security review",
			Description: fmt.Sprintf("%s scored %d (%s); it needs an owner decision now.", name, score.Overall, score.Severity),
			ActionSteps: []string{
				"Open a security review for the app and assign an owner",
				"Suspend new authorizations for the app until the review completes",
				"Decide whether to restrict, re-authorize with narrower scopes, or revoke",
			},
			Impact:          "Puts a critical-risk integration under explicit ownership",
			EstimatedEffort: EffortLow,
		})
	}

	for _, sr := range dims.Permission.ScopeBreakdown {
		if !sr.elevated() || sr.RecommendedAlternative == "" {
			continue
		}
		priority := PriorityMedium
		if sr.RiskLevel == scopelib.RiskLevelCritical {
			priority = PriorityHigh
		}
		impact := fmt.Sprintf("Removes %s access (risk %d)", sr.Scope, sr.RiskScore)
		if sr.AlternativeRiskScore > 0 {
			impact = fmt.Sprintf("Lowers per-scope risk from %d to %d", sr.RiskScore, sr.AlternativeRiskScore)
		}
		out = append(out, Recommendation{
			Priority:    priority,
			Category:    CategoryScopeReduction,
			Title:       fmt.Sprintf("Replace %s with %s", sr.Scope, sr.RecommendedAlternative),
			Description: fmt.Sprintf("%s holds %s (%s). %s offers a narrower grant.", name, sr.Scope, sr.Description, sr.RecommendedAlternative),
			ActionSteps: []string{
				fmt.Sprintf("Confirm with the vendor that %s works with %s", name, sr.RecommendedAlternative),
				fmt.Sprintf("Revoke the current grant that includes %s", sr.Scope),
				fmt.Sprintf("Re-authorize the app requesting %s instead", sr.RecommendedAlternative),
				"Re-run the assessment to confirm the lower score",
			},
			Impact:          impact,
			EstimatedEffort: EffortMedium,
		})
	}

	if dims.Permission.AdminScopeDetected {
		out = append(out, Recommendation{
			Priority:    PriorityHigh,
			Category:    CategoryPolicy,
			Title:       "Review administrative grant",
			Description: fmt.Sprintf("%s holds administrative scopes: %s.", name, strings.Join(dims.Permission.AdminScopes, ", ")),
			ActionSteps: []string{
				"Confirm the business need for administrative access",
				"Move the grant to a dedicated service identity with audited access",
				"Require admin approval for future grants of these scopes",
			},
			Impact:          "Limits blast radius of a compromised integration",
			EstimatedEffort: EffortMedium,
		})
	}

	if hasConcern(dims.Temporal.Concerns, KindTemporalDormant) {
		out = append(out, Recommendation{
			Priority:    PriorityHigh,
			Category:    CategoryRevocation,
			Title:       "Revoke dormant app",
			Description: fmt.Sprintf("%s has had no audit activity in %d days but keeps its grant.", name, dims.Temporal.DaysSinceLastActivity),
			ActionSteps: []string{
				"Confirm with the authorizing user that the app is no longer needed",
				"Revoke the OAuth grant and any refresh tokens",
				"Record the revocation so the app is not silently re-authorized",
			},
			Impact:          "Removes standing access that serves no business use",
			EstimatedEffort: EffortLow,
		})
	}

	if dims.AIPlatform.TotalScore > aiComplianceThreshold {
		out = append(out, Recommendation{
			Priority:    PriorityHigh,
			Category:    CategoryCompliance,
			Title:       "Confirm AI vendor data processing terms",
			Description: fmt.Sprintf("%s sends organization data to %s.", name, dims.AIPlatform.Vendor.label()),
			ActionSteps: []string{
				"Verify a data processing agreement (DPA) is signed with the vendor",
				"Check GDPR lawful basis and data residency for the shared data",
				"Confirm the vendor does not train models on organization data",
				"Document the integration in the records of processing activities",
			},
			Impact:          "Closes compliance exposure from third-party AI processing",
			EstimatedEffort: EffortMedium,
		})
	}

	if dims.Activity.TotalScore > activityMonitorThreshold {
		out = append(out, Recommendation{
			Priority:    PriorityHigh,
			Category:    CategoryMonitoring,
			Title:       "Monitor anomalous activity",
			Description: fmt.Sprintf("%s shows anomalous activity (%s).", name, strings.Join(dims.Activity.Patterns, ", ")),
			ActionSteps: []string{
				"Alert on the detected activity patterns for this app",
				"Review the audit log around the flagged days with the app owner",
				"Re-assess after the next audit window",
			},
			Impact:          "Shortens time to detect abuse of the grant",
			EstimatedEffort: EffortLow,
		})
	}

	if hasConcern(dims.User.Concerns, KindExternalAuthorizer) {
		out = append(out, Recommendation{
			Priority:    PriorityMedium,
			Category:    CategoryPolicy,
			Title:       "Restrict external authorizations",
			Description: fmt.Sprintf("%s was authorized by an identity outside the organization.", name),
			ActionSteps: []string{
				"Confirm the external user's relationship to the organization",
				"Restrict third-party app consent to internal users",
			},
			Impact:          "Prevents outsiders from connecting apps to organization data",
			EstimatedEffort: EffortLow,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.rank() > out[j].Priority.rank()
	})
	return out
}

func appLabel(app AppMetadata) string {
	if name := strings.TrimSpace(app.Name); name != "" {
		return name
	}
	if id := strings.TrimSpace(app.ClientID); id != "" {
		return id
	}
	return "The app"
}
