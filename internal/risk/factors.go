package risk

import "sort"

var factorRecommendations = map[ConcernKind]string{
	KindCriticalScope:    "Replace the scope with its narrower alternative or revoke the grant until the vendor justifies it.",
	KindHighRiskScope:    "Ask the vendor for a narrower scope and re-authorize with least privilege.",
	KindUnreviewedScope:  "Add the scope to the reference library so future assessments score it precisely.",
	KindAdminScope:       "Review administrative privileges and move the grant to a dedicated service identity.",
	KindDataExfiltration: "Reduce storage and mail scopes to metadata or per-file access to limit bulk export.",
	KindCrossService:     "Split the integration so each service is authorized separately with its own scopes.",

	KindOffHoursAccess: "Confirm the off-hours jobs with the app owner and alert on unexpected overnight access.",
	KindWeekendAccess:  "Verify weekend activity is scheduled automation rather than unattended access.",
	KindUsageSpike:     "Investigate the spike day for bulk export and compare it with the vendor's documented behavior.",
	KindDormant:        "Revoke the grant if the app is no longer in use.",
	KindNeverUsed:      "Revoke the grant; the app has never been used since authorization.",
	KindReactivation:   "Confirm the reactivation with the authorizing user before trusting new activity.",
	KindExcessiveUsage: "Rate-limit or monitor the integration and confirm the volume matches its purpose.",
	KindVelocitySpike:  "Review what changed in the integration to explain the growth in activity.",

	KindNewAppBroadScopes:   "Review broad grants on new apps before they become embedded in workflows.",
	KindScopeEscalation:     "Review each added high-risk scope and roll back any the app does not need.",
	KindRecentScopeAddition: "Confirm recent scope additions were approved by the app owner.",
	KindTemporalDormant:     "Revoke the grant; dormant apps keep standing access without business use.",
	KindErraticActivity:     "Baseline the app's expected usage and alert on deviations.",

	KindSuperAdminAuthorizer: "Re-authorize the app from a non-privileged account.",
	KindAdminAuthorizer:      "Review whether the app needs admin-level consent and prefer a standard user grant.",
	KindExternalAuthorizer:   "Confirm the external authorizer's relationship to the organization or revoke the grant.",
	KindExecutiveAuthorizer:  "Apply heightened monitoring to apps holding executive data.",
	KindSensitiveDepartment:  "Check the app against data handling requirements for the department.",

	KindAIPlatform:             "Confirm a data processing agreement exists with the AI vendor and restrict shared data.",
	KindLowDetectionConfidence: "Manually confirm whether the app is an AI platform.",
}

const defaultFactorRecommendation = "Review this finding with the app owner."

// GenerateFactors flattens dimension concerns into risk factors, most severe
// first. Ties keep dimension order.
func GenerateFactors(dims DimensionResults) []RiskFactor {
	groups := []struct {
		dimension Dimension
		concerns  []Concern
	}{
		{DimensionPermission, dims.Permission.Concerns},
		{DimensionActivity, dims.Activity.Concerns},
		{DimensionTemporal, dims.Temporal.Concerns},
		{DimensionUser, dims.User.Concerns},
		{DimensionAIPlatform, dims.AIPlatform.Concerns},
	}

	var out []RiskFactor
	for _, g := range groups {
		for _, c := range g.concerns {
			rec, ok := factorRecommendations[c.Kind]
			if !ok {
				rec = defaultFactorRecommendation
			}
			out = append(out, RiskFactor{
				Severity:       c.Severity,
				Category:       g.dimension,
				Kind:           c.Kind,
				Title:          c.Title,
				Description:    c.Detail,
				Evidence:       c.Evidence,
				Recommendation: rec,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.rank() > out[j].Severity.rank()
	})
	return out
}
