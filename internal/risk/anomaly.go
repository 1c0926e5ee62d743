package risk

import "github.com/open-sspm/oauth-risk/internal/scopelib"

// Metrics is the derived view every anomaly pattern evaluates.
type Metrics struct {
	AgeDays            int
	ScopeCount         int
	OriginalScopeCount int
	AddedScopeCount    int
	RemovedScopeCount  int
	DormancyDays       int
	PeakDailyRate      int
	AverageDailyRate   float64
	Events30Days       int
	TotalEvents        int
	VelocityChange     float64
	OffHoursCount      int
	WeekendCount       int
	IsAIPlatform       bool
	IsExternalUser     bool
	HasStorageScope    bool
	HasMailScope       bool
	AdminScopes        []string
	Scopes             []string
}

// WeekendShare is the fraction of events that fell on a weekend.
func (m Metrics) WeekendShare() float64 {
	if m.TotalEvents == 0 {
		return 0
	}
	return float64(m.WeekendCount) / float64(m.TotalEvents)
}

// BuildMetrics derives the anomaly metrics from calculator output.
func BuildMetrics(app AppMetadata, dims DimensionResults) Metrics {
	m := Metrics{
		AgeDays:            dims.Temporal.AgeInDays,
		ScopeCount:         len(dims.Permission.ScopeBreakdown),
		OriginalScopeCount: len(dims.Temporal.ScopeChanges.OriginalScopes),
		AddedScopeCount:    len(dims.Temporal.ScopeChanges.AddedScopes),
		RemovedScopeCount:  len(dims.Temporal.ScopeChanges.RemovedScopes),
		DormancyDays:       dims.Activity.LongestGapDays,
		PeakDailyRate:      dims.Activity.PeakDailyRate,
		AverageDailyRate:   dims.Activity.AverageDailyRate,
		Events30Days:       dims.Activity.RecentActivity.Last30Days,
		TotalEvents:        dims.Activity.TotalEvents,
		VelocityChange:     dims.Activity.VelocityChange,
		OffHoursCount:      dims.Activity.OffHoursCount,
		WeekendCount:       dims.Activity.WeekendCount,
		IsAIPlatform:       app.IsAIPlatform,
		IsExternalUser:     app.AuthorizedBy.IsExternal,
		AdminScopes:        dims.Permission.AdminScopes,
	}
	for _, sr := range dims.Permission.ScopeBreakdown {
		m.Scopes = append(m.Scopes, sr.Scope)
		if !broadAccess(sr.AccessLevel) && sr.AccessLevel != scopelib.AccessSend {
			continue
		}
		switch sr.Service {
		case scopelib.ServiceStorage:
			m.HasStorageScope = true
		case scopelib.ServiceMail:
			m.HasMailScope = true
		}
	}
	return m
}

// Pattern is one named detection rule over Metrics.
type Pattern struct {
	ID         string
	Name       string
	Severity   Severity
	Confidence int
	Match      func(Metrics) bool
	Evidence   func(Metrics) map[string]any
}

const (
	PatternZombieApp         = "zombie_app"
	PatternScopeCreep        = "scope_creep"
	PatternDormancySpike     = "dormancy_spike_reactivation"
	PatternOffHours          = "off_hours_pattern"
	PatternVelocitySpike     = "velocity_spike"
	PatternDataExfiltration  = "data_exfiltration_combo"
	PatternAdminScopeGrant   = "admin_scope_grant"
	PatternExternalUserGrant = "external_user_authorization"
	PatternNewAppBroadScope  = "new_app_broad_scope"
	PatternWeekendBot        = "weekend_bot"
)

// DefaultPatterns returns the built-in pattern library.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			ID: PatternZombieApp, Name: "Zombie app", Severity: SeverityMedium, Confidence: 95,
			Match: func(m Metrics) bool { return m.AgeDays > 90 && m.Events30Days == 0 },
			Evidence: func(m Metrics) map[string]any {
				return map[string]any{"age_days": m.AgeDays, "events_30d": m.Events30Days}
			},
		},
		{
			ID: PatternScopeCreep, Name: "Scope creep", Severity: SeverityHigh, Confidence: 85,
			Match: func(m Metrics) bool {
				return m.AddedScopeCount > 0 && m.OriginalScopeCount > 0 &&
					float64(m.AddedScopeCount) >= 0.5*float64(m.OriginalScopeCount)
			},
			Evidence: func(m Metrics) map[string]any {
				return map[string]any{"original_scopes": m.OriginalScopeCount, "added_scopes": m.AddedScopeCount}
			},
		},
		{
			ID: PatternDormancySpike, Name: "Dormancy then spike", Severity: SeverityCritical, Confidence: 90,
			Match: func(m Metrics) bool { return m.DormancyDays > 60 && m.PeakDailyRate > 100 },
			Evidence: func(m Metrics) map[string]any {
				return map[string]any{"dormancy_days": m.DormancyDays, "peak_daily_rate": m.PeakDailyRate}
			},
		},
		{
			ID: PatternOffHours, Name: "Off-hours access pattern", Severity: SeverityMedium, Confidence: 75,
			Match: func(m Metrics) bool { return m.OffHoursCount >= 5 },
			Evidence: func(m Metrics) map[string]any {
				return map[string]any{"off_hours_count": m.OffHoursCount}
			},
		},
		{
			ID: PatternVelocitySpike, Name: "Velocity spike", Severity: SeverityHigh, Confidence: 80,
			Match: func(m Metrics) bool { return m.VelocityChange > 300 },
			Evidence: func(m Metrics) map[string]any {
				return map[string]any{"velocity_change_pct": m.VelocityChange, "events_30d": m.Events30Days}
			},
		},
		{
			ID: PatternDataExfiltration, Name: "AI data exfiltration combination", Severity: SeverityCritical, Confidence: 90,
			Match: func(m Metrics) bool { return m.HasStorageScope && m.HasMailScope && m.IsAIPlatform },
			Evidence: func(m Metrics) map[string]any {
				return map[string]any{"storage_scope": m.HasStorageScope, "mail_scope": m.HasMailScope, "ai_platform": m.IsAIPlatform}
			},
		},
		{
			ID: PatternAdminScopeGrant, Name: "Non-standard admin scope grant", Severity: SeverityHigh, Confidence: 85,
			Match: func(m Metrics) bool { return len(m.AdminScopes) > 0 },
			Evidence: func(m Metrics) map[string]any {
				return map[string]any{"admin_scopes": m.AdminScopes}
			},
		},
		{
			ID: PatternExternalUserGrant, Name: "External user authorization", Severity: SeverityHigh, Confidence: 100,
			Match: func(m Metrics) bool { return m.IsExternalUser },
			Evidence: func(m Metrics) map[string]any {
				return map[string]any{"external_user": m.IsExternalUser}
			},
		},
		{
			ID: PatternNewAppBroadScope, Name: "New app with broad scopes", Severity: SeverityHigh, Confidence: 80,
			Match: func(m Metrics) bool { return m.AgeDays <= 30 && m.ScopeCount >= 10 },
			Evidence: func(m Metrics) map[string]any {
				return map[string]any{"age_days": m.AgeDays, "scope_count": m.ScopeCount}
			},
		},
		{
			ID: PatternWeekendBot, Name: "Weekend bot activity", Severity: SeverityMedium, Confidence: 75,
			Match: func(m Metrics) bool { return m.WeekendShare() > 0.3 && m.WeekendCount > 10 },
			Evidence: func(m Metrics) map[string]any {
				return map[string]any{"weekend_count": m.WeekendCount, "weekend_share": m.WeekendShare()}
			},
		},
	}
}

// Matcher evaluates a fixed pattern list. Patterns are independent and may co-fire.
type Matcher struct {
	patterns []Pattern
}

// NewMatcher uses DefaultPatterns when no patterns are given.
func NewMatcher(patterns ...Pattern) *Matcher {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	return &Matcher{patterns: patterns}
}

// Evaluate runs every pattern and reports each with its detected flag.
func (m *Matcher) Evaluate(metrics Metrics) []AnomalyMatch {
	out := make([]AnomalyMatch, 0, len(m.patterns))
	for _, p := range m.patterns {
		match := AnomalyMatch{
			PatternID:  p.ID,
			Name:       p.Name,
			Severity:   p.Severity,
			Confidence: p.Confidence,
			Detected:   p.Match != nil && p.Match(metrics),
		}
		if match.Detected && p.Evidence != nil {
			match.Evidence = p.Evidence(metrics)
		}
		out = append(out, match)
	}
	return out
}

// Detect returns only the patterns that fired, in library order.
func (m *Matcher) Detect(metrics Metrics) []AnomalyMatch {
	var out []AnomalyMatch
	for _, match := range m.Evaluate(metrics) {
		if match.Detected {
			out = append(out, match)
		}
	}
	return out
}
