package risk

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/open-sspm/oauth-risk/internal/scopelib"
)

const (
	exfilBroadStorage = 30
	exfilFullMailbox  = 35
	exfilMailboxWrite = 25

	crossServiceTwo   = 10
	crossServiceThree = 20
)

var adminScopeNeedles = []string{
	"admin",
	"directory.readwrite",
	"rolemanagement",
	"application.readwrite",
	"full_access_as_app",
}

// ScopeRisk is the resolved reference data for one granted scope.
type ScopeRisk struct {
	Scope                  string             `json:"scope"`
	Service                string             `json:"service"`
	AccessLevel            string             `json:"access_level"`
	RiskScore              int                `json:"risk_score"`
	RiskLevel              scopelib.RiskLevel `json:"risk_level"`
	Known                  bool               `json:"known"`
	Description            string             `json:"description"`
	PotentialAbuse         []string           `json:"potential_abuse,omitempty"`
	RecommendedAlternative string             `json:"recommended_alternative,omitempty"`
	AlternativeRiskScore   int                `json:"alternative_risk_score,omitempty"`
}

func (s ScopeRisk) elevated() bool {
	return s.RiskLevel == scopelib.RiskLevelHigh || s.RiskLevel == scopelib.RiskLevelCritical
}

type PermissionRisk struct {
	TotalScore           int         `json:"total_score"`
	ScopeBreakdown       []ScopeRisk `json:"scope_breakdown"`
	CrossServiceRisk     int         `json:"cross_service_risk"`
	SensitiveServices    []string    `json:"sensitive_services,omitempty"`
	AdminScopeDetected   bool        `json:"admin_scope_detected"`
	AdminScopes          []string    `json:"admin_scopes,omitempty"`
	DataExfiltrationRisk int         `json:"data_exfiltration_risk"`
	Concerns             []Concern   `json:"concerns"`
}

// CalculatePermissionRisk scores a granted scope set. The base is the mean
// per-scope score, raised to the riskiest HIGH/CRITICAL scope when one is
// present, plus the cross-service surcharge.
func CalculatePermissionRisk(scopes []string, ref scopelib.Reference) PermissionRisk {
	normalized := scopelib.NormalizeScopes(scopes)
	out := PermissionRisk{}
	if len(normalized) == 0 {
		return out
	}

	var (
		total        int
		peakElevated = -1
		services     = map[string]struct{}{}

		broadStorage bool
		fullMailbox  bool
		mailboxWrite bool
	)
	for _, scope := range normalized {
		entry, known := scopelib.Resolve(ref, scope)
		sr := ScopeRisk{
			Scope:                  scope,
			Service:                entry.Service,
			AccessLevel:            entry.AccessLevel,
			RiskScore:              entry.RiskScore,
			RiskLevel:              entry.RiskLevel,
			Known:                  known,
			Description:            entry.Description,
			PotentialAbuse:         entry.PotentialAbuse,
			RecommendedAlternative: entry.RecommendedAlternative,
		}
		if sr.RecommendedAlternative != "" {
			if alt, ok := scopelib.Resolve(ref, sr.RecommendedAlternative); ok {
				sr.AlternativeRiskScore = alt.RiskScore
			}
		}
		out.ScopeBreakdown = append(out.ScopeBreakdown, sr)

		total += sr.RiskScore
		if sr.elevated() && sr.RiskScore > peakElevated {
			peakElevated = sr.RiskScore
		}
		if scopelib.IsSensitiveService(sr.Service) {
			services[sr.Service] = struct{}{}
		}
		if isAdminScope(scope, sr.AccessLevel) {
			out.AdminScopes = append(out.AdminScopes, scope)
		}

		switch sr.Service {
		case scopelib.ServiceStorage:
			if broadAccess(sr.AccessLevel) {
				broadStorage = true
			}
		case scopelib.ServiceMail:
			switch sr.AccessLevel {
			case scopelib.AccessRead:
				fullMailbox = true
			case scopelib.AccessFull:
				fullMailbox = true
				mailboxWrite = true
			case scopelib.AccessWrite, scopelib.AccessSend:
				mailboxWrite = true
			}
		}
	}

	sort.SliceStable(out.ScopeBreakdown, func(i, j int) bool {
		a, b := out.ScopeBreakdown[i], out.ScopeBreakdown[j]
		if a.RiskScore != b.RiskScore {
			return a.RiskScore > b.RiskScore
		}
		return a.Scope < b.Scope
	})

	base := float64(total) / float64(len(normalized))
	if peakElevated >= 0 && float64(peakElevated) > base {
		base = float64(peakElevated)
	}

	for service := range services {
		out.SensitiveServices = append(out.SensitiveServices, service)
	}
	sort.Strings(out.SensitiveServices)
	switch {
	case len(out.SensitiveServices) >= 3:
		out.CrossServiceRisk = crossServiceThree
	case len(out.SensitiveServices) == 2:
		out.CrossServiceRisk = crossServiceTwo
	}
	out.TotalScore = clampScore(int(math.Round(base)) + out.CrossServiceRisk)

	exfil := 0
	var exfilEvidence []string
	if broadStorage {
		exfil += exfilBroadStorage
		exfilEvidence = append(exfilEvidence, "broad file storage access")
	}
	if fullMailbox {
		exfil += exfilFullMailbox
		exfilEvidence = append(exfilEvidence, "full mailbox read access")
	}
	if mailboxWrite {
		exfil += exfilMailboxWrite
		exfilEvidence = append(exfilEvidence, "mailbox write or send access")
	}
	out.DataExfiltrationRisk = clampScore(exfil)
	out.AdminScopeDetected = len(out.AdminScopes) > 0

	for _, sr := range out.ScopeBreakdown {
		switch {
		case sr.RiskLevel == scopelib.RiskLevelCritical:
			out.Concerns = append(out.Concerns, Concern{
				Kind:     KindCriticalScope,
				Severity: SeverityCritical,
				Title:    "Critical scope",
				Detail:   fmt.Sprintf("%s: %s", sr.Scope, sr.Description),
				Evidence: sr.PotentialAbuse,
			})
		case sr.RiskLevel == scopelib.RiskLevelHigh:
			out.Concerns = append(out.Concerns, Concern{
				Kind:     KindHighRiskScope,
				Severity: SeverityHigh,
				Title:    "High-risk scope",
				Detail:   fmt.Sprintf("%s: %s", sr.Scope, sr.Description),
				Evidence: sr.PotentialAbuse,
			})
		case !sr.Known:
			out.Concerns = append(out.Concerns, Concern{
				Kind:     KindUnreviewedScope,
				Severity: SeverityLow,
				Title:    "Unreviewed scope",
				Detail:   fmt.Sprintf("%s is not in the scope library, scored as %d (%s)", sr.Scope, sr.RiskScore, sr.RiskLevel),
			})
		}
	}
	if out.AdminScopeDetected {
		out.Concerns = append(out.Concerns, Concern{
			Kind:     KindAdminScope,
			Severity: SeverityCritical,
			Title:    "Admin Access",
			Detail:   "app holds administrative scopes: " + strings.Join(out.AdminScopes, ", "),
			Evidence: out.AdminScopes,
		})
	}
	if out.DataExfiltrationRisk > 0 {
		severity := SeverityHigh
		if out.DataExfiltrationRisk >= 60 {
			severity = SeverityCritical
		}
		out.Concerns = append(out.Concerns, Concern{
			Kind:     KindDataExfiltration,
			Severity: severity,
			Title:    "Data Exfiltration Risk",
			Detail:   fmt.Sprintf("scope combination allows bulk data export (exfiltration risk %d)", out.DataExfiltrationRisk),
			Evidence: exfilEvidence,
		})
	}
	if out.CrossServiceRisk > 0 {
		out.Concerns = append(out.Concerns, Concern{
			Kind:     KindCrossService,
			Severity: SeverityMedium,
			Title:    "Cross-service access",
			Detail:   "scopes span " + strings.Join(out.SensitiveServices, ", "),
			Evidence: out.SensitiveServices,
		})
	}
	return out
}

func isAdminScope(scope, accessLevel string) bool {
	if accessLevel == scopelib.AccessAdmin {
		return true
	}
	for _, needle := range adminScopeNeedles {
		if strings.Contains(scope, needle) {
			return true
		}
	}
	return false
}

func broadAccess(accessLevel string) bool {
	switch accessLevel {
	case scopelib.AccessRead, scopelib.AccessWrite, scopelib.AccessFull, scopelib.AccessAdmin:
		return true
	default:
		return false
	}
}
