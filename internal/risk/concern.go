package risk

import (
	"fmt"
	"strings"
)

// ConcernKind identifies the rule that raised a concern. Downstream stages
// key off the kind, never off rendered text.
type ConcernKind string

const (
	KindCriticalScope    ConcernKind = "critical_scope"
	KindHighRiskScope    ConcernKind = "high_risk_scope"
	KindUnreviewedScope  ConcernKind = "unreviewed_scope"
	KindAdminScope       ConcernKind = "admin_scope"
	KindDataExfiltration ConcernKind = "data_exfiltration"
	KindCrossService     ConcernKind = "cross_service"

	KindOffHoursAccess ConcernKind = "off_hours_access"
	KindWeekendAccess  ConcernKind = "weekend_access"
	KindUsageSpike     ConcernKind = "usage_spike"
	KindDormant        ConcernKind = "dormant"
	KindNeverUsed      ConcernKind = "never_used"
	KindReactivation   ConcernKind = "sudden_reactivation"
	KindExcessiveUsage ConcernKind = "excessive_usage"
	KindVelocitySpike  ConcernKind = "velocity_spike"

	KindNewAppBroadScopes   ConcernKind = "new_app_broad_scopes"
	KindScopeEscalation     ConcernKind = "scope_escalation"
	KindRecentScopeAddition ConcernKind = "recent_scope_addition"
	KindTemporalDormant     ConcernKind = "temporal_dormant"
	KindErraticActivity     ConcernKind = "erratic_activity"

	KindSuperAdminAuthorizer ConcernKind = "super_admin_authorizer"
	KindAdminAuthorizer      ConcernKind = "admin_authorizer"
	KindExternalAuthorizer   ConcernKind = "external_authorizer"
	KindExecutiveAuthorizer  ConcernKind = "executive_authorizer"
	KindSensitiveDepartment  ConcernKind = "sensitive_department"

	KindAIPlatform             ConcernKind = "ai_platform"
	KindLowDetectionConfidence ConcernKind = "low_detection_confidence"
)

// Concern is one finding raised by a dimension calculator.
type Concern struct {
	Kind     ConcernKind `json:"kind"`
	Severity Severity    `json:"severity"`
	Title    string      `json:"title"`
	Detail   string      `json:"detail"`
	Evidence []string    `json:"evidence,omitempty"`
}

// String renders the concern as "[severity] Title: detail".
func (c Concern) String() string {
	if c.Detail == "" {
		return fmt.Sprintf("[%s] %s", c.Severity, c.Title)
	}
	return fmt.Sprintf("[%s] %s: %s", c.Severity, c.Title, c.Detail)
}

func renderConcerns(concerns []Concern) []string {
	out := make([]string, 0, len(concerns))
	for _, c := range concerns {
		out = append(out, c.String())
	}
	return out
}

func hasConcern(concerns []Concern, kind ConcernKind) bool {
	for _, c := range concerns {
		if c.Kind == kind {
			return true
		}
	}
	return false
}

var severityPrefixes = []struct {
	prefix   string
	severity Severity
}{
	{"[critical]", SeverityCritical},
	{"[high]", SeverityHigh},
	{"[medium]", SeverityMedium},
	{"[low]", SeverityLow},
	{"🔴", SeverityCritical},
	{"🚨", SeverityCritical},
	{"⚠️", SeverityHigh},
	{"⚠", SeverityHigh},
	{"ℹ️", SeverityLow},
	{"ℹ", SeverityLow},
	{"critical:", SeverityCritical},
	{"warning:", SeverityHigh},
	{"info:", SeverityLow},
}

// ParseConcern reads a rendered concern string back into severity, title and
// detail. It accepts the String form plus glyph and keyword prefixes
// (critical/warning/info). Text without a recognized prefix is medium.
func ParseConcern(text string) Concern {
	rest := strings.TrimSpace(text)
	severity := SeverityMedium
	lower := strings.ToLower(rest)
	for _, p := range severityPrefixes {
		if strings.HasPrefix(lower, p.prefix) {
			severity = p.severity
			rest = strings.TrimSpace(rest[len(p.prefix):])
			break
		}
	}

	title, detail, found := strings.Cut(rest, ":")
	if !found {
		return Concern{Severity: severity, Title: strings.TrimSpace(rest)}
	}
	return Concern{
		Severity: severity,
		Title:    strings.TrimSpace(title),
		Detail:   strings.TrimSpace(detail),
	}
}
