package risk

import (
	"sort"
	"strings"
	"time"

	"github.com/open-sspm/oauth-risk/internal/scopelib"
)

const day = 24 * time.Hour

// prepareEvents returns a sorted, deduplicated copy of events with zero and
// future timestamps removed. The input slice is never modified.
func prepareEvents(events []AuditEvent, now time.Time) []AuditEvent {
	if len(events) == 0 {
		return nil
	}
	out := make([]AuditEvent, 0, len(events))
	seen := make(map[string]struct{}, len(events))
	for _, event := range events {
		if event.Timestamp.IsZero() || event.Timestamp.After(now) {
			continue
		}
		event.EventType = EventType(strings.ToLower(strings.TrimSpace(string(event.EventType))))
		event.ActorEmail = strings.ToLower(strings.TrimSpace(event.ActorEmail))
		event.Scopes = scopelib.NormalizeScopes(event.Scopes)

		key := eventKey(event)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, event)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.EventType != b.EventType {
			return a.EventType < b.EventType
		}
		if a.ActorEmail != b.ActorEmail {
			return a.ActorEmail < b.ActorEmail
		}
		return strings.Join(a.Scopes, " ") < strings.Join(b.Scopes, " ")
	})
	return out
}

func eventKey(event AuditEvent) string {
	scopes := append([]string(nil), event.Scopes...)
	sort.Strings(scopes)
	return event.Timestamp.UTC().Format(time.RFC3339Nano) + "|" +
		string(event.EventType) + "|" +
		event.ActorEmail + "|" +
		strings.Join(scopes, " ")
}

// countBetween counts events whose age relative to now is in [from, to).
func countBetween(events []AuditEvent, now time.Time, from, to time.Duration) int {
	n := 0
	for _, event := range events {
		age := now.Sub(event.Timestamp)
		if age >= from && age < to {
			n++
		}
	}
	return n
}

func wholeDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / day)
}

// daysSinceLastActivity measures from the newest event, or from the
// authorization when there are no events. ok is false when neither is known.
func daysSinceLastActivity(events []AuditEvent, firstAuthorized, now time.Time) (int, bool) {
	if len(events) > 0 {
		return wholeDays(now.Sub(events[len(events)-1].Timestamp)), true
	}
	if firstAuthorized.IsZero() {
		return 0, false
	}
	return wholeDays(now.Sub(firstAuthorized)), true
}

// observationDays is the number of days the app has been observable, at least one.
func observationDays(events []AuditEvent, firstAuthorized, now time.Time) float64 {
	start := firstAuthorized
	if len(events) > 0 && (start.IsZero() || events[0].Timestamp.Before(start)) {
		start = events[0].Timestamp
	}
	if start.IsZero() {
		return 1
	}
	days := now.Sub(start).Hours() / 24
	if days < 1 {
		return 1
	}
	return days
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
