package risk

import (
	"strings"
	"time"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether s is as severe as other or more.
func (s Severity) AtLeast(other Severity) bool {
	return s.rank() >= other.rank()
}

// ParseSeverity accepts a severity name in any case.
func ParseSeverity(raw string) (Severity, bool) {
	switch s := Severity(strings.ToLower(strings.TrimSpace(raw))); s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return s, true
	default:
		return "", false
	}
}

// SeverityFromScore classifies an overall score. Thresholds are inclusive.
func SeverityFromScore(score int) Severity {
	switch {
	case score >= 75:
		return SeverityCritical
	case score >= 50:
		return SeverityHigh
	case score >= 25:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

type Dimension string

const (
	DimensionAIPlatform Dimension = "ai_platform"
	DimensionPermission Dimension = "permission"
	DimensionActivity   Dimension = "activity"
	DimensionUser       Dimension = "user"
	DimensionTemporal   Dimension = "temporal"
)

type Vendor string

const (
	VendorOpenAI    Vendor = "openai"
	VendorAnthropic Vendor = "anthropic"
	VendorGemini    Vendor = "gemini"
	VendorUnknown   Vendor = "unknown"
)

// ParseVendor maps free-form vendor names onto a known vendor; anything
// unrecognized is VendorUnknown.
func ParseVendor(raw string) Vendor {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case v == "":
		return VendorUnknown
	case strings.Contains(v, "openai"), strings.Contains(v, "chatgpt"):
		return VendorOpenAI
	case strings.Contains(v, "anthropic"), strings.Contains(v, "claude"):
		return VendorAnthropic
	case strings.Contains(v, "gemini"), strings.Contains(v, "bard"):
		return VendorGemini
	default:
		return VendorUnknown
	}
}

func (v Vendor) label() string {
	switch v {
	case VendorOpenAI:
		return "OpenAI"
	case VendorAnthropic:
		return "Anthropic"
	case VendorGemini:
		return "Google Gemini"
	default:
		return "unidentified AI vendor"
	}
}

type EventType string

const (
	EventAuthorization EventType = "authorization"
	EventRevocation    EventType = "revocation"
	EventScopeChange   EventType = "scope_change"
	EventAPIAccess     EventType = "api_access"
)

// UserContext describes the identity that authorized an app.
type UserContext struct {
	Email        string `json:"email"`
	IsAdmin      bool   `json:"is_admin"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	IsExternal   bool   `json:"is_external"`
	Role         string `json:"role,omitempty"`
	Department   string `json:"department,omitempty"`
}

// AppMetadata is the grant state of one authorized OAuth application.
type AppMetadata struct {
	ClientID             string      `json:"client_id"`
	Name                 string      `json:"name"`
	Scopes               []string    `json:"scopes"`
	IsAIPlatform         bool        `json:"is_ai_platform"`
	AIPlatformVendor     Vendor      `json:"ai_platform_vendor,omitempty"`
	AIPlatformConfidence int         `json:"ai_platform_confidence,omitempty"`
	FirstAuthorized      time.Time   `json:"first_authorized"`
	AuthorizedBy         UserContext `json:"authorized_by"`
}

// AuditEvent is one platform activity record for an app. Scopes carries the
// full post-change grant on authorization and scope_change events.
type AuditEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	EventType  EventType `json:"event_type"`
	Scopes     []string  `json:"scopes,omitempty"`
	ActorEmail string    `json:"actor_email,omitempty"`
}

type DimensionScores struct {
	AIPlatform int `json:"ai_platform"`
	Permission int `json:"permission"`
	Activity   int `json:"activity"`
	User       int `json:"user"`
	Temporal   int `json:"temporal"`
}

type DimensionBreakdown struct {
	Dimension    Dimension `json:"dimension"`
	Score        int       `json:"score"`
	Weight       float64   `json:"weight"`
	Contribution float64   `json:"contribution"`
	Concerns     []string  `json:"concerns"`
}

// RiskScore is an immutable snapshot of one assessment.
type RiskScore struct {
	Overall    int                  `json:"overall"`
	Severity   Severity             `json:"severity"`
	Confidence int                  `json:"confidence"`
	Dimensions DimensionScores      `json:"dimensions"`
	Breakdown  []DimensionBreakdown `json:"breakdown"`
	AssessedAt time.Time            `json:"assessed_at"`
}

type RiskFactor struct {
	Severity       Severity    `json:"severity"`
	Category       Dimension   `json:"category"`
	Kind           ConcernKind `json:"kind"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Evidence       []string    `json:"evidence,omitempty"`
	Recommendation string      `json:"recommendation"`
}

type Priority string

const (
	PriorityImmediate Priority = "immediate"
	PriorityHigh      Priority = "high"
	PriorityMedium    Priority = "medium"
	PriorityLow       Priority = "low"
)

func (p Priority) rank() int {
	switch p {
	case PriorityImmediate:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

type RecommendationCategory string

const (
	CategoryScopeReduction RecommendationCategory = "scope_reduction"
	CategoryMonitoring     RecommendationCategory = "monitoring"
	CategoryRevocation     RecommendationCategory = "revocation"
	CategoryPolicy         RecommendationCategory = "policy"
	CategoryCompliance     RecommendationCategory = "compliance"
)

type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

type Recommendation struct {
	Priority        Priority               `json:"priority"`
	Category        RecommendationCategory `json:"category"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	ActionSteps     []string               `json:"action_steps"`
	Impact          string                 `json:"impact"`
	EstimatedEffort Effort                 `json:"estimated_effort"`
}

type AnomalyMatch struct {
	PatternID  string         `json:"pattern_id"`
	Name       string         `json:"name"`
	Severity   Severity       `json:"severity"`
	Confidence int            `json:"confidence"`
	Detected   bool           `json:"detected"`
	Evidence   map[string]any `json:"evidence,omitempty"`
}
