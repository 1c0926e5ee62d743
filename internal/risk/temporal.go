package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/open-sspm/oauth-risk/internal/scopelib"
)

type AccountAge string

const (
	AccountAgeNew         AccountAge = "new"
	AccountAgeEstablished AccountAge = "established"
	AccountAgeMature      AccountAge = "mature"
)

type ActivityPattern string

const (
	PatternStable     ActivityPattern = "stable"
	PatternIncreasing ActivityPattern = "increasing"
	PatternDecreasing ActivityPattern = "decreasing"
	PatternErratic    ActivityPattern = "erratic"
)

const (
	newAppDays           = 30
	establishedAppDays   = 90
	newAppScopeLimit     = 5
	recentAdditionDays   = 30
	temporalDormantDays  = 90
	erraticCoVThreshold  = 1.5
	trendChangeThreshold = 50.0
	minTrendWeeks        = 2
	// Fewer events than this carry no weekly shape; they classify as stable.
	minPatternEvents = 5

	pointsNewAppBroad  = 25
	pointsEscalation   = 35
	pointsRecentAdd    = 20
	pointsTemporalDorm = 15
	pointsErratic      = 10
)

type ScopeChanges struct {
	OriginalScopes   []string `json:"original_scopes"`
	AddedScopes      []string `json:"added_scopes"`
	RemovedScopes    []string `json:"removed_scopes"`
	EscalatingScopes []string `json:"escalating_scopes,omitempty"`
	RecentlyAdded    []string `json:"recently_added,omitempty"`
}

type TemporalRisk struct {
	TotalScore            int             `json:"total_score"`
	AgeInDays             int             `json:"age_in_days"`
	AccountAge            AccountAge      `json:"account_age"`
	ScopeChanges          ScopeChanges    `json:"scope_changes"`
	ActivityPattern       ActivityPattern `json:"activity_pattern"`
	WeeklyCounts          []int           `json:"weekly_counts,omitempty"`
	DaysSinceLastActivity int             `json:"days_since_last_activity"`
	Concerns              []Concern       `json:"concerns"`
}

// CalculateTemporalRisk scores account age, scope evolution and the shape of
// weekly activity. A missing FirstAuthorized is treated as a new app.
func CalculateTemporalRisk(app AppMetadata, events []AuditEvent, ref scopelib.Reference, now time.Time) TemporalRisk {
	events = prepareEvents(events, now)
	current := scopelib.NormalizeScopes(app.Scopes)

	out := TemporalRisk{}
	if !app.FirstAuthorized.IsZero() {
		out.AgeInDays = wholeDays(now.Sub(app.FirstAuthorized))
	}
	switch {
	case out.AgeInDays <= newAppDays:
		out.AccountAge = AccountAgeNew
	case out.AgeInDays <= establishedAppDays:
		out.AccountAge = AccountAgeEstablished
	default:
		out.AccountAge = AccountAgeMature
	}

	score := 0
	if out.AccountAge == AccountAgeNew && len(current) > newAppScopeLimit {
		score += pointsNewAppBroad
		out.Concerns = append(out.Concerns, Concern{
			Kind:     KindNewAppBroadScopes,
			Severity: SeverityHigh,
			Title:    "New app, broad permissions",
			Detail:   fmt.Sprintf("authorized %d days ago with %d scopes", out.AgeInDays, len(current)),
		})
	}

	out.ScopeChanges = scopeEvolution(current, events, ref, now)
	if len(out.ScopeChanges.EscalatingScopes) > 0 {
		score += pointsEscalation
		evidence := make([]string, 0, len(out.ScopeChanges.EscalatingScopes))
		for _, scope := range out.ScopeChanges.EscalatingScopes {
			entry, _ := scopelib.Resolve(ref, scope)
			evidence = append(evidence, fmt.Sprintf("%s added (%s, score %d)", scope, entry.RiskLevel, entry.RiskScore))
		}
		out.Concerns = append(out.Concerns, Concern{
			Kind:     KindScopeEscalation,
			Severity: SeverityCritical,
			Title:    "Permission escalation",
			Detail:   fmt.Sprintf("%d high-risk scopes added since the original grant", len(out.ScopeChanges.EscalatingScopes)),
			Evidence: evidence,
		})
	}
	if len(out.ScopeChanges.RecentlyAdded) > 0 {
		score += pointsRecentAdd
		out.Concerns = append(out.Concerns, Concern{
			Kind:     KindRecentScopeAddition,
			Severity: SeverityMedium,
			Title:    "Recent scope additions",
			Detail:   fmt.Sprintf("%d scopes added in the last %d days", len(out.ScopeChanges.RecentlyAdded), recentAdditionDays),
			Evidence: out.ScopeChanges.RecentlyAdded,
		})
	}

	if days, ok := daysSinceLastActivity(events, app.FirstAuthorized, now); ok {
		out.DaysSinceLastActivity = days
		if days >= temporalDormantDays {
			score += pointsTemporalDorm
			out.Concerns = append(out.Concerns, Concern{
				Kind:     KindTemporalDormant,
				Severity: SeverityMedium,
				Title:    "Dormant, consider revoking",
				Detail:   fmt.Sprintf("no audit activity in %d days", days),
			})
		}
	}

	out.WeeklyCounts = weeklyCounts(events, now)
	out.ActivityPattern = classifyPattern(out.WeeklyCounts)
	if out.ActivityPattern == PatternErratic {
		score += pointsErratic
		out.Concerns = append(out.Concerns, Concern{
			Kind:     KindErraticActivity,
			Severity: SeverityLow,
			Title:    "Erratic activity",
			Detail:   fmt.Sprintf("weekly activity varies widely across %d weeks", len(out.WeeklyCounts)),
		})
	}

	out.TotalScore = clampScore(score)
	return out
}

// scopeEvolution diffs the earliest observed grant against the current one.
// The first authorization or scope_change event carrying scopes is the
// baseline; later events record when each scope first appeared.
func scopeEvolution(current []string, events []AuditEvent, ref scopelib.Reference, now time.Time) ScopeChanges {
	var (
		original []string
		previous map[string]struct{}
		addedAt  = map[string]time.Time{}
	)
	for _, event := range events {
		if event.EventType != EventAuthorization && event.EventType != EventScopeChange {
			continue
		}
		if len(event.Scopes) == 0 {
			continue
		}
		if previous == nil {
			original = event.Scopes
			previous = toSet(event.Scopes)
			continue
		}
		for _, scope := range event.Scopes {
			if _, ok := previous[scope]; ok {
				continue
			}
			if _, ok := addedAt[scope]; !ok {
				addedAt[scope] = event.Timestamp
			}
		}
		previous = toSet(event.Scopes)
	}
	if original == nil {
		original = current
	}

	out := ScopeChanges{
		OriginalScopes: append([]string(nil), original...),
		AddedScopes:    difference(current, original),
		RemovedScopes:  difference(original, current),
	}
	for _, scope := range out.AddedScopes {
		if entry, _ := scopelib.Resolve(ref, scope); entry.Elevated() {
			out.EscalatingScopes = append(out.EscalatingScopes, scope)
		}
		if at, ok := addedAt[scope]; ok && now.Sub(at) <= recentAdditionDays*day {
			out.RecentlyAdded = append(out.RecentlyAdded, scope)
		}
	}
	return out
}

// weeklyCounts buckets events into 7-day windows from the first event to now.
func weeklyCounts(events []AuditEvent, now time.Time) []int {
	if len(events) == 0 {
		return nil
	}
	start := events[0].Timestamp
	weeks := int(now.Sub(start)/(7*day)) + 1
	counts := make([]int, weeks)
	for _, event := range events {
		idx := int(event.Timestamp.Sub(start) / (7 * day))
		if idx >= weeks {
			idx = weeks - 1
		}
		counts[idx]++
	}
	return counts
}

func classifyPattern(weekly []int) ActivityPattern {
	if len(weekly) < minTrendWeeks || sumInts(weekly) < minPatternEvents {
		return PatternStable
	}
	mean := meanInts(weekly)
	if mean == 0 {
		return PatternStable
	}
	var variance float64
	for _, n := range weekly {
		d := float64(n) - mean
		variance += d * d
	}
	variance /= float64(len(weekly))
	if math.Sqrt(variance)/mean > erraticCoVThreshold {
		return PatternErratic
	}

	half := len(weekly) / 2
	first := meanInts(weekly[:half])
	second := meanInts(weekly[half:])
	if first == 0 {
		if second > 0 {
			return PatternIncreasing
		}
		return PatternStable
	}
	change := (second - first) / first * 100
	switch {
	case change > trendChangeThreshold:
		return PatternIncreasing
	case change < -trendChangeThreshold:
		return PatternDecreasing
	default:
		return PatternStable
	}
}

func meanInts(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	return float64(sumInts(values)) / float64(len(values))
}

func sumInts(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

// difference returns the members of a missing from b, in a's order.
func difference(a, b []string) []string {
	set := toSet(b)
	var out []string
	for _, v := range a {
		if _, ok := set[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
