package risk

import "testing"

func TestDefaultPatterns(t *testing.T) {
	t.Parallel()

	cases := []struct {
		id   string
		hit  Metrics
		miss Metrics
	}{
		{PatternZombieApp, Metrics{AgeDays: 120}, Metrics{AgeDays: 120, Events30Days: 1}},
		{PatternScopeCreep, Metrics{OriginalScopeCount: 2, AddedScopeCount: 1}, Metrics{OriginalScopeCount: 3, AddedScopeCount: 1}},
		{PatternDormancySpike, Metrics{DormancyDays: 61, PeakDailyRate: 101}, Metrics{DormancyDays: 61, PeakDailyRate: 100}},
		{PatternOffHours, Metrics{OffHoursCount: 5}, Metrics{OffHoursCount: 4}},
		{PatternVelocitySpike, Metrics{VelocityChange: 301}, Metrics{VelocityChange: 300}},
		{PatternDataExfiltration, Metrics{HasStorageScope: true, HasMailScope: true, IsAIPlatform: true}, Metrics{HasStorageScope: true, HasMailScope: true}},
		{PatternAdminScopeGrant, Metrics{AdminScopes: []string{"admin.directory.user"}}, Metrics{}},
		{PatternExternalUserGrant, Metrics{IsExternalUser: true}, Metrics{}},
		{PatternNewAppBroadScope, Metrics{AgeDays: 30, ScopeCount: 10}, Metrics{AgeDays: 31, ScopeCount: 10}},
		{PatternWeekendBot, Metrics{TotalEvents: 20, WeekendCount: 11}, Metrics{TotalEvents: 100, WeekendCount: 11}},
	}

	patterns := map[string]Pattern{}
	for _, p := range DefaultPatterns() {
		if p.Confidence < 75 || p.Confidence > 100 {
			t.Fatalf("pattern %s confidence = %d, want 75..100", p.ID, p.Confidence)
		}
		patterns[p.ID] = p
	}
	if len(patterns) != len(cases) {
		t.Fatalf("DefaultPatterns() has %d patterns, want %d", len(patterns), len(cases))
	}

	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			t.Parallel()
			p, ok := patterns[tc.id]
			if !ok {
				t.Fatalf("pattern %s missing", tc.id)
			}
			if !p.Match(tc.hit) {
				t.Fatalf("%s did not match %+v", tc.id, tc.hit)
			}
			if p.Match(tc.miss) {
				t.Fatalf("%s matched %+v", tc.id, tc.miss)
			}
			if len(p.Evidence(tc.hit)) == 0 {
				t.Fatalf("%s returned no evidence", tc.id)
			}
		})
	}
}

func TestMatcher(t *testing.T) {
	t.Parallel()

	m := NewMatcher()
	metrics := Metrics{AgeDays: 200, IsExternalUser: true}

	all := m.Evaluate(metrics)
	if len(all) != len(DefaultPatterns()) {
		t.Fatalf("Evaluate() len = %d, want %d", len(all), len(DefaultPatterns()))
	}

	detected := m.Detect(metrics)
	if len(detected) != 2 {
		t.Fatalf("Detect() = %+v, want zombie and external", detected)
	}
	if detected[0].PatternID != PatternZombieApp || detected[1].PatternID != PatternExternalUserGrant {
		t.Fatalf("Detect() order = %s, %s", detected[0].PatternID, detected[1].PatternID)
	}
	if detected[0].Evidence["age_days"] != 200 {
		t.Fatalf("zombie evidence = %v", detected[0].Evidence)
	}
}

func TestMatcher_CustomPatterns(t *testing.T) {
	t.Parallel()

	m := NewMatcher(Pattern{
		ID:         "many_scopes",
		Severity:   SeverityLow,
		Confidence: 80,
		Match:      func(m Metrics) bool { return m.ScopeCount > 20 },
	})
	if got := m.Detect(Metrics{ScopeCount: 21}); len(got) != 1 || got[0].PatternID != "many_scopes" || got[0].Evidence != nil {
		t.Fatalf("Detect() = %+v", got)
	}
	if got := m.Detect(Metrics{AgeDays: 500}); len(got) != 0 {
		t.Fatalf("Detect() = %+v, want none from custom matcher", got)
	}
}

func TestBuildMetrics(t *testing.T) {
	t.Parallel()

	lib := testLibrary(t)
	app := AppMetadata{IsAIPlatform: true, AuthorizedBy: UserContext{IsExternal: true}}
	dims := DimensionResults{
		Permission: CalculatePermissionRisk([]string{"drive.readonly", "gmail.send", "drive.metadata.readonly"}, lib),
	}
	m := BuildMetrics(app, dims)
	if !m.HasStorageScope || !m.HasMailScope || !m.IsAIPlatform || !m.IsExternalUser {
		t.Fatalf("BuildMetrics() = %+v", m)
	}
	if m.ScopeCount != 3 {
		t.Fatalf("ScopeCount = %d, want 3", m.ScopeCount)
	}

	metadataOnly := BuildMetrics(app, DimensionResults{
		Permission: CalculatePermissionRisk([]string{"drive.metadata.readonly", "gmail.metadata"}, lib),
	})
	if metadataOnly.HasStorageScope || metadataOnly.HasMailScope {
		t.Fatalf("metadata-only scopes flagged storage/mail: %+v", metadataOnly)
	}
}
