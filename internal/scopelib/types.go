package scopelib

import "strings"

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

const (
	ServiceIdentity = "identity"
	ServiceStorage  = "storage"
	ServiceMail     = "mail"
	ServiceCalendar = "calendar"
	ServiceContacts = "contacts"
	ServiceAdmin    = "admin"
	ServiceChat     = "chat"
	ServiceCloud    = "cloud"
	ServiceUnknown  = "unknown"
)

const (
	AccessIdentity = "identity"
	AccessMetadata = "metadata"
	AccessFile     = "file"
	AccessRead     = "read"
	AccessSend     = "send"
	AccessWrite    = "write"
	AccessFull     = "full"
	AccessAdmin    = "admin"
)

// ElevatedScoreFloor separates the tiers: HIGH and CRITICAL entries score at
// least this much, LOW and MEDIUM entries score below it.
const ElevatedScoreFloor = 60

const (
	UnknownScopeScore       = 50
	UnknownScopeDescription = "Unknown scope, review required"
)

// Regulatory flags which compliance regimes a scope's data falls under.
type Regulatory struct {
	GDPR  bool `json:"gdpr" yaml:"gdpr"`
	HIPAA bool `json:"hipaa" yaml:"hipaa"`
	PCI   bool `json:"pci" yaml:"pci"`
}

// Entry is the reference risk metadata for one OAuth scope.
type Entry struct {
	Scope                  string     `json:"scope" yaml:"scope"`
	Service                string     `json:"service" yaml:"service"`
	AccessLevel            string     `json:"access_level" yaml:"access_level"`
	RiskScore              int        `json:"risk_score" yaml:"risk_score"`
	RiskLevel              RiskLevel  `json:"risk_level" yaml:"risk_level"`
	Description            string     `json:"description" yaml:"description"`
	PotentialAbuse         []string   `json:"potential_abuse,omitempty" yaml:"potential_abuse"`
	RecommendedAlternative string     `json:"recommended_alternative,omitempty" yaml:"recommended_alternative"`
	RegulatoryImpact       Regulatory `json:"regulatory_impact" yaml:"regulatory_impact"`
}

// Elevated reports whether the entry sits in the HIGH or CRITICAL tier.
func (e Entry) Elevated() bool {
	return e.RiskLevel == RiskLevelHigh || e.RiskLevel == RiskLevelCritical
}

// UnknownEntry is the conservative default applied when a scope has no reference entry.
func UnknownEntry(scope string) Entry {
	return Entry{
		Scope:       scope,
		Service:     ServiceUnknown,
		AccessLevel: AccessRead,
		RiskScore:   UnknownScopeScore,
		RiskLevel:   RiskLevelMedium,
		Description: UnknownScopeDescription,
	}
}

func ParseRiskLevel(raw string) (RiskLevel, bool) {
	switch RiskLevel(strings.ToUpper(strings.TrimSpace(raw))) {
	case RiskLevelLow:
		return RiskLevelLow, true
	case RiskLevelMedium:
		return RiskLevelMedium, true
	case RiskLevelHigh:
		return RiskLevelHigh, true
	case RiskLevelCritical:
		return RiskLevelCritical, true
	default:
		return "", false
	}
}

func IsSensitiveService(service string) bool {
	switch service {
	case ServiceMail, ServiceStorage, ServiceCalendar, ServiceContacts:
		return true
	default:
		return false
	}
}
