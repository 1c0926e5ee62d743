package risk

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	pointsSuperAdmin = 40
	pointsAdmin      = 25
	pointsExternal   = 30
	pointsExecutive  = 20
	pointsSensitive  = 15
)

var (
	executiveRoleKeywords = []string{"ceo", "cto", "cfo", "coo", "president", "vp", "director"}
	sensitiveDeptKeywords = []string{"finance", "legal", "hr", "accounting"}
)

type UserRisk struct {
	TotalScore int       `json:"total_score"`
	Concerns   []Concern `json:"concerns"`
}

// CalculateUserRisk scores the authorizing identity's privilege and reach.
func CalculateUserRisk(user UserContext) UserRisk {
	out := UserRisk{}
	score := 0
	who := strings.TrimSpace(user.Email)
	if who == "" {
		who = "the authorizing user"
	}

	switch {
	case user.IsSuperAdmin:
		score += pointsSuperAdmin
		out.Concerns = append(out.Concerns, Concern{
			Kind:     KindSuperAdminAuthorizer,
			Severity: SeverityCritical,
			Title:    "Super admin authorization",
			Detail:   who + " holds super admin privileges the app may inherit",
		})
	case user.IsAdmin:
		score += pointsAdmin
		out.Concerns = append(out.Concerns, Concern{
			Kind:     KindAdminAuthorizer,
			Severity: SeverityHigh,
			Title:    "Admin authorization",
			Detail:   who + " holds admin privileges the app may inherit",
		})
	}
	if user.IsExternal {
		score += pointsExternal
		out.Concerns = append(out.Concerns, Concern{
			Kind:     KindExternalAuthorizer,
			Severity: SeverityHigh,
			Title:    "External authorizer",
			Detail:   who + " is outside the organization domain",
		})
	}
	if kw, ok := matchKeyword(user.Role, executiveRoleKeywords); ok {
		score += pointsExecutive
		out.Concerns = append(out.Concerns, Concern{
			Kind:     KindExecutiveAuthorizer,
			Severity: SeverityMedium,
			Title:    "Executive authorizer",
			Detail:   fmt.Sprintf("role %q matches executive keyword %q", strings.TrimSpace(user.Role), kw),
		})
	}
	if kw, ok := matchKeyword(user.Department, sensitiveDeptKeywords); ok {
		score += pointsSensitive
		out.Concerns = append(out.Concerns, Concern{
			Kind:     KindSensitiveDepartment,
			Severity: SeverityMedium,
			Title:    "Sensitive department",
			Detail:   fmt.Sprintf("department %q matches sensitive keyword %q", strings.TrimSpace(user.Department), kw),
		})
	}

	out.TotalScore = clampScore(score)
	return out
}

// matchKeyword is a case-insensitive substring match. Keywords of two
// letters (vp, hr) must match a whole word so "three" is not HR.
func matchKeyword(text string, keywords []string) (string, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return "", false
	}
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, kw := range keywords {
		if len(kw) > 2 {
			if strings.Contains(text, kw) {
				return kw, true
			}
			continue
		}
		for _, w := range words {
			if w == kw {
				return kw, true
			}
		}
	}
	return "", false
}
