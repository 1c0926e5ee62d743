package risk

import (
	"strings"
	"testing"
)

func TestGenerateFactors(t *testing.T) {
	t.Parallel()

	dims := DimensionResults{
		Permission: PermissionRisk{Concerns: []Concern{
			{Kind: KindHighRiskScope, Severity: SeverityHigh, Title: "High-risk scope", Detail: "drive.readonly"},
		}},
		Activity: ActivityRisk{Concerns: []Concern{
			{Kind: KindWeekendAccess, Severity: SeverityLow, Title: "Weekend access"},
		}},
		Temporal: TemporalRisk{Concerns: []Concern{
			{Kind: KindScopeEscalation, Severity: SeverityHigh, Title: "Permission escalation"},
		}},
		User: UserRisk{Concerns: []Concern{
			{Kind: KindSuperAdminAuthorizer, Severity: SeverityCritical, Title: "Super admin authorization"},
		}},
	}

	got := GenerateFactors(dims)
	want := []struct {
		kind     ConcernKind
		category Dimension
	}{
		{KindSuperAdminAuthorizer, DimensionUser},
		{KindHighRiskScope, DimensionPermission},
		{KindScopeEscalation, DimensionTemporal},
		{KindWeekendAccess, DimensionActivity},
	}
	if len(got) != len(want) {
		t.Fatalf("GenerateFactors() len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Kind != w.kind || got[i].Category != w.category {
			t.Fatalf("GenerateFactors()[%d] = %s/%s, want %s/%s", i, got[i].Kind, got[i].Category, w.kind, w.category)
		}
		if got[i].Recommendation == "" {
			t.Fatalf("GenerateFactors()[%d] has no recommendation", i)
		}
	}
	if got[1].Description != "drive.readonly" {
		t.Fatalf("GenerateFactors()[1].Description = %q", got[1].Description)
	}
}

func TestGenerateFactors_RecommendationByKind(t *testing.T) {
	t.Parallel()

	dims := DimensionResults{
		Temporal: TemporalRisk{Concerns: []Concern{{Kind: KindTemporalDormant, Severity: SeverityMedium, Title: "Dormant, consider revoking"}}},
		User:     UserRisk{Concerns: []Concern{{Kind: "custom", Severity: SeverityLow, Title: "Custom"}}},
	}
	got := GenerateFactors(dims)
	if !strings.Contains(got[0].Recommendation, "Revoke") {
		t.Fatalf("dormant recommendation = %q, want revocation advice", got[0].Recommendation)
	}
	if got[1].Recommendation != defaultFactorRecommendation {
		t.Fatalf("custom recommendation = %q, want default", got[1].Recommendation)
	}
}

func TestGenerateFactors_Empty(t *testing.T) {
	t.Parallel()

	if got := GenerateFactors(DimensionResults{}); len(got) != 0 {
		t.Fatalf("GenerateFactors() = %+v, want none", got)
	}
}
