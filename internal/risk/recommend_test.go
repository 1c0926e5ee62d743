package risk

import (
	"strings"
	"testing"
)

func categories(recs []Recommendation) []RecommendationCategory {
	out := make([]RecommendationCategory, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Category)
	}
	return out
}

func TestRecommend_ScopeReductionPerRiskyScope(t *testing.T) {
	t.Parallel()

	dims := DimensionResults{
		Permission: CalculatePermissionRisk([]string{"gmail.readonly", "drive", "gmail.send", "openid"}, testLibrary(t)),
	}
	got := Recommend(AppMetadata{Name: "Mail Helper"}, RiskScore{Overall: 30}, dims)

	var reductions []Recommendation
	for _, rec := range got {
		if rec.Category == CategoryScopeReduction {
			reductions = append(reductions, rec)
		}
	}
	// gmail.send has no narrower alternative.
	if len(reductions) != 2 {
		t.Fatalf("scope reductions = %+v, want 2", reductions)
	}
	if reductions[0].Priority != PriorityHigh || !strings.Contains(reductions[0].Title, "drive.file") {
		t.Fatalf("reductions[0] = %+v, want high priority drive -> drive.file", reductions[0])
	}
	if reductions[1].Priority != PriorityMedium || !strings.Contains(reductions[1].Title, "gmail.metadata") {
		t.Fatalf("reductions[1] = %+v, want medium priority gmail.readonly -> gmail.metadata", reductions[1])
	}
	if !strings.Contains(reductions[0].Impact, "95 to 35") {
		t.Fatalf("reductions[0].Impact = %q", reductions[0].Impact)
	}
	if len(reductions[0].ActionSteps) == 0 {
		t.Fatalf("reductions[0] has no action steps")
	}
}

func TestRecommend_Rules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		app   AppMetadata
		score RiskScore
		dims  DimensionResults
		want  RecommendationCategory
		prio  Priority
	}{
		{
			name: "dormant app is revoked",
			dims: DimensionResults{Temporal: TemporalRisk{Concerns: []Concern{{Kind: KindTemporalDormant}}}},
			want: CategoryRevocation,
			prio: PriorityHigh,
		},
		{
			name: "ai platform compliance",
			dims: DimensionResults{AIPlatform: AIPlatformRisk{TotalScore: 80, Vendor: VendorOpenAI}},
			want: CategoryCompliance,
			prio: PriorityHigh,
		},
		{
			name: "noisy activity is monitored",
			dims: DimensionResults{Activity: ActivityRisk{TotalScore: 61, Patterns: []string{"usage_spike"}}},
			want: CategoryMonitoring,
			prio: PriorityHigh,
		},
		{
			name:  "critical overall escalates",
			score: RiskScore{Overall: 75, Severity: SeverityCritical},
			want:  CategoryPolicy,
			prio:  PriorityImmediate,
		},
		{
			name: "admin scopes reviewed",
			dims: DimensionResults{Permission: PermissionRisk{AdminScopeDetected: true, AdminScopes: []string{"admin"}}},
			want: CategoryPolicy,
			prio: PriorityHigh,
		},
		{
			name: "external authorizer",
			dims: DimensionResults{User: UserRisk{Concerns: []Concern{{Kind: KindExternalAuthorizer}}}},
			want: CategoryPolicy,
			prio: PriorityMedium,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Recommend(tc.app, tc.score, tc.dims)
			if len(got) != 1 {
				t.Fatalf("Recommend() = %v, want one recommendation", categories(got))
			}
			if got[0].Category != tc.want || got[0].Priority != tc.prio {
				t.Fatalf("Recommend() = %s/%s, want %s/%s", got[0].Category, got[0].Priority, tc.want, tc.prio)
			}
		})
	}
}

func TestRecommend_ThresholdsAreStrict(t *testing.T) {
	t.Parallel()

	dims := DimensionResults{
		AIPlatform: AIPlatformRisk{TotalScore: 50},
		Activity:   ActivityRisk{TotalScore: 60},
	}
	if got := Recommend(AppMetadata{}, RiskScore{Overall: 74}, dims); len(got) != 0 {
		t.Fatalf("Recommend() = %v, want none", categories(got))
	}
}

func TestRecommend_SortedByPriority(t *testing.T) {
	t.Parallel()

	dims := DimensionResults{
		Permission: CalculatePermissionRisk([]string{"gmail.readonly"}, testLibrary(t)),
		User:       UserRisk{Concerns: []Concern{{Kind: KindExternalAuthorizer}}},
		AIPlatform: AIPlatformRisk{TotalScore: 90},
	}
	got := Recommend(AppMetadata{ClientID: "abc"}, RiskScore{Overall: 90}, dims)
	if got[0].Priority != PriorityImmediate {
		t.Fatalf("Recommend()[0] priority = %q, want immediate", got[0].Priority)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Priority.rank() < got[i].Priority.rank() {
			t.Fatalf("Recommend() not sorted: %s before %s", got[i-1].Priority, got[i].Priority)
		}
	}
	if !strings.Contains(got[0].Description, "abc") {
		t.Fatalf("Recommend()[0].Description = %q, want client id fallback", got[0].Description)
	}
}
