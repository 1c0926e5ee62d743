package risk

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/open-sspm/oauth-risk/internal/scopelib"
)

var testNow = time.Date(2026, time.March, 18, 12, 0, 0, 0, time.UTC)

func daysAgo(d int) time.Time {
	return testNow.AddDate(0, 0, -d)
}

func testLibrary(t *testing.T) *scopelib.Library {
	t.Helper()
	lib, err := scopelib.Embedded()
	if err != nil {
		t.Fatalf("scopelib.Embedded() error = %v", err)
	}
	return lib
}

func testEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	engine, err := New(testLibrary(t), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return engine
}

// chatGPTInput is an admin-authorized AI app that added Drive read access a
// week after authorization and then exported heavily.
func chatGPTInput() Input {
	base := []string{"userinfo.email", "userinfo.profile", "openid"}
	full := []string{"https://www.googleapis.com/auth/drive.readonly", "userinfo.email", "userinfo.profile", "openid"}
	events := []AuditEvent{
		{Timestamp: daysAgo(22), EventType: EventAuthorization, Scopes: base, ActorEmail: "it-admin@example.com"},
		{Timestamp: daysAgo(15), EventType: EventScopeChange, Scopes: full, ActorEmail: "it-admin@example.com"},
	}
	spike := time.Date(2026, time.March, 16, 13, 0, 0, 0, time.UTC)
	for i := 0; i < 1500; i++ {
		events = append(events, AuditEvent{Timestamp: spike.Add(time.Duration(i) * time.Second), EventType: EventAPIAccess})
	}
	for i := 0; i < 3; i++ {
		events = append(events, AuditEvent{Timestamp: time.Date(2026, time.March, 17, 3, 10*i, 0, 0, time.UTC), EventType: EventAPIAccess})
	}
	for i := 0; i < 5; i++ {
		events = append(events, AuditEvent{Timestamp: time.Date(2026, time.March, 14, 12, 15*i, 0, 0, time.UTC), EventType: EventAPIAccess})
	}
	return Input{
		App: AppMetadata{
			ClientID:             "chatgpt-connector",
			Name:                 "ChatGPT",
			Scopes:               full,
			IsAIPlatform:         true,
			AIPlatformVendor:     VendorOpenAI,
			AIPlatformConfidence: 95,
			FirstAuthorized:      daysAgo(22),
			AuthorizedBy:         UserContext{Email: "it-admin@example.com", IsAdmin: true},
		},
		Events: events,
		Now:    testNow,
	}
}

func TestNew_RejectsBadWeights(t *testing.T) {
	t.Parallel()

	_, err := New(testLibrary(t), WithWeights(Weights{AIPlatform: 50, Permission: 50, Activity: 10}))
	if err == nil {
		t.Fatalf("New() error = nil, want weight validation error")
	}
}

// The metadata alone (no audit events) scores 47: AI 80, permission 75 and an
// admin authorizer give 24 + 18.75 + 3.75. Reaching the high band takes the
// scope change and usage history in chatGPTInput.
func TestAssess_ChatGPTLikeAppMetadataOnly(t *testing.T) {
	t.Parallel()

	in := chatGPTInput()
	in.Events = nil
	got := testEngine(t).Assess(in)

	want := DimensionScores{AIPlatform: 80, Permission: 75, Activity: 0, User: 25, Temporal: 0}
	if got.RiskScore.Dimensions != want {
		t.Fatalf("Assess() dimensions = %+v, want %+v", got.RiskScore.Dimensions, want)
	}
	if got.RiskScore.Overall != 47 || got.RiskScore.Severity != SeverityMedium {
		t.Fatalf("Assess() overall = %d (%s), want 47 (medium)", got.RiskScore.Overall, got.RiskScore.Severity)
	}
}

func TestAssess_ChatGPTLikeAppWithUsageHistory(t *testing.T) {
	t.Parallel()

	got := testEngine(t).Assess(chatGPTInput())

	if got.AppID != "chatgpt-connector" || got.AppName != "ChatGPT" {
		t.Fatalf("Assess() app = %q/%q", got.AppID, got.AppName)
	}
	if got.RiskScore.Severity != SeverityHigh {
		t.Fatalf("Assess() severity = %q, want %q (overall %d)", got.RiskScore.Severity, SeverityHigh, got.RiskScore.Overall)
	}
	if got.RiskScore.Overall < 65 || got.RiskScore.Overall > 80 {
		t.Fatalf("Assess() overall = %d, want 65..80", got.RiskScore.Overall)
	}
	dims := got.RiskScore.Dimensions
	if dims.AIPlatform != 80 || dims.Permission != 75 || dims.User != 25 {
		t.Fatalf("Assess() dimensions = %+v", dims)
	}

	var driveConcern bool
	for _, c := range got.Details.Permission.Concerns {
		if c.Severity == SeverityCritical {
			t.Fatalf("permission concern %q is critical, want none", c)
		}
		if c.Severity == SeverityHigh && strings.Contains(c.Detail, "drive") {
			driveConcern = true
		}
	}
	if !driveConcern {
		t.Fatalf("permission concerns = %v, want a high concern referencing drive", got.Details.Permission.Concerns)
	}

	var reduction bool
	for _, rec := range got.Recommendations {
		if rec.Category == CategoryScopeReduction && strings.Contains(rec.Title, "drive.metadata.readonly") {
			reduction = true
		}
	}
	if !reduction {
		t.Fatalf("recommendations = %+v, want drive scope reduction to a metadata-only scope", got.Recommendations)
	}
	if got.RiskScore.Confidence != 90 {
		t.Fatalf("Assess() confidence = %d, want 90", got.RiskScore.Confidence)
	}
}

func TestAssess_SpikeMinEvents(t *testing.T) {
	t.Parallel()

	in := Input{
		App: AppMetadata{
			ClientID:        "report-export",
			Scopes:          []string{"openid"},
			FirstAuthorized: daysAgo(50),
		},
		Now: testNow,
	}
	for i := 0; i < 9; i++ {
		in.Events = append(in.Events, AuditEvent{Timestamp: at(5, 10, i), EventType: EventAPIAccess})
	}

	if got := testEngine(t).Assess(in); got.Details.Activity.TotalScore != 25 {
		t.Fatalf("default engine activity = %d, want 25 (patterns %v)", got.Details.Activity.TotalScore, got.Details.Activity.Patterns)
	}
	if got := testEngine(t, WithSpikeMinEvents(10)).Assess(in); got.Details.Activity.TotalScore != 0 {
		t.Fatalf("floored engine activity = %d, want 0 (patterns %v)", got.Details.Activity.TotalScore, got.Details.Activity.Patterns)
	}
}

func TestAssess_DormantLowRiskApp(t *testing.T) {
	t.Parallel()

	got := testEngine(t).Assess(Input{
		App: AppMetadata{
			ClientID:        "legacy-reporting",
			Name:            "Legacy Reporting",
			Scopes:          []string{"userinfo.email", "openid"},
			FirstAuthorized: daysAgo(400),
			AuthorizedBy:    UserContext{Email: "analyst@example.com"},
		},
		Now: testNow,
	})

	if got.RiskScore.Severity.rank() > SeverityMedium.rank() {
		t.Fatalf("Assess() severity = %q, want medium or below", got.RiskScore.Severity)
	}
	if !hasAnomaly(got.Anomalies, PatternZombieApp) {
		t.Fatalf("Assess() anomalies = %+v, want %s", got.Anomalies, PatternZombieApp)
	}
	var revocation bool
	for _, rec := range got.Recommendations {
		if rec.Category == CategoryRevocation {
			revocation = true
		}
	}
	if !revocation {
		t.Fatalf("recommendations = %+v, want a revocation", got.Recommendations)
	}
}

func TestAssess_ScopeEscalation(t *testing.T) {
	t.Parallel()

	got := testEngine(t).Assess(Input{
		App: AppMetadata{
			ClientID:        "notes-sync",
			Name:            "Notes Sync",
			Scopes:          []string{"userinfo.email", "drive"},
			FirstAuthorized: daysAgo(40),
			AuthorizedBy:    UserContext{Email: "dev@example.com"},
		},
		Events: []AuditEvent{
			{Timestamp: daysAgo(40), EventType: EventAuthorization, Scopes: []string{"userinfo.email"}},
			{Timestamp: daysAgo(10), EventType: EventScopeChange, Scopes: []string{"userinfo.email", "drive"}},
		},
		Now: testNow,
	})

	if !hasAnomaly(got.Anomalies, PatternScopeCreep) {
		t.Fatalf("Assess() anomalies = %+v, want %s", got.Anomalies, PatternScopeCreep)
	}
	var escalation bool
	for _, c := range got.Details.Temporal.Concerns {
		if c.Kind == KindScopeEscalation && strings.Contains(strings.ToLower(c.Title), "escalation") {
			escalation = true
		}
	}
	if !escalation {
		t.Fatalf("temporal concerns = %v, want escalation", got.Details.Temporal.Concerns)
	}
}

func TestAssess_EmptyHistoryFreshAuthorization(t *testing.T) {
	t.Parallel()

	got := testEngine(t).Assess(Input{
		App: AppMetadata{
			ClientID:        "fresh",
			Scopes:          []string{"userinfo.email"},
			FirstAuthorized: testNow,
			AuthorizedBy:    UserContext{Email: "new@example.com"},
		},
		Now: testNow,
	})

	if got.RiskScore.Confidence > 50 {
		t.Fatalf("Assess() confidence = %d, want <= 50", got.RiskScore.Confidence)
	}
	if got.RiskScore.Confidence != 40 {
		t.Fatalf("Assess() confidence = %d, want 40", got.RiskScore.Confidence)
	}
	if got.RiskFactors == nil || got.Recommendations == nil || got.Anomalies == nil {
		t.Fatalf("Assess() returned nil slices: %+v", got)
	}
}

func TestAssess_Deterministic(t *testing.T) {
	t.Parallel()

	engine := testEngine(t)
	in := chatGPTInput()
	first := engine.Assess(in)
	second := engine.Assess(in)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Assess() not deterministic")
	}

	reversed := chatGPTInput()
	for i, j := 0, len(reversed.Events)-1; i < j; i, j = i+1, j-1 {
		reversed.Events[i], reversed.Events[j] = reversed.Events[j], reversed.Events[i]
	}
	if got := engine.Assess(reversed); !reflect.DeepEqual(first, got) {
		t.Fatalf("Assess() depends on event order: overall %d vs %d", first.RiskScore.Overall, got.RiskScore.Overall)
	}
}

func TestAssess_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := chatGPTInput()
	scopes := append([]string(nil), in.App.Scopes...)
	first := in.Events[0]
	testEngine(t).Assess(in)

	if !reflect.DeepEqual(in.App.Scopes, scopes) {
		t.Fatalf("Assess() mutated scopes: %v", in.App.Scopes)
	}
	if !reflect.DeepEqual(in.Events[0], first) {
		t.Fatalf("Assess() mutated events: %+v", in.Events[0])
	}
}

func TestAssess_IgnoresFutureEvents(t *testing.T) {
	t.Parallel()

	engine := testEngine(t)
	in := chatGPTInput()
	baseline := engine.Assess(in)

	in.Events = append(in.Events, AuditEvent{Timestamp: testNow.Add(time.Hour), EventType: EventAPIAccess})
	if got := engine.Assess(in); !reflect.DeepEqual(baseline, got) {
		t.Fatalf("Assess() changed with a future event")
	}
}

func hasAnomaly(matches []AnomalyMatch, id string) bool {
	for _, m := range matches {
		if m.PatternID == id && m.Detected {
			return true
		}
	}
	return false
}
