package risk

import (
	"fmt"
	"time"
)

type UsageFrequency string

const (
	UsageDormant   UsageFrequency = "dormant"
	UsageLow       UsageFrequency = "low"
	UsageMedium    UsageFrequency = "medium"
	UsageHigh      UsageFrequency = "high"
	UsageExcessive UsageFrequency = "excessive"
)

const (
	offHoursStart = 2
	offHoursEnd   = 5

	offHoursThreshold      = 3
	weekendThreshold       = 5
	spikeMultiplier        = 3.0
	dormantDays            = 60
	neverUsedDays          = 30
	reactivationGapDays    = 60
	reactivationRecentDays = 30
	velocityThreshold      = 200.0

	pointsOffHours     = 20
	pointsWeekend      = 10
	pointsSpike        = 25
	pointsDormant      = 15
	pointsNeverUsed    = 10
	pointsReactivation = 30
	pointsExcessive    = 15
	pointsVelocity     = 20
)

type RecentActivity struct {
	Last7Days  int `json:"7d"`
	Last30Days int `json:"30d"`
	Last90Days int `json:"90d"`
}

type ActivityRisk struct {
	TotalScore            int            `json:"total_score"`
	UsageFrequency        UsageFrequency `json:"usage_frequency"`
	RecentActivity        RecentActivity `json:"recent_activity"`
	Previous30Days        int            `json:"previous_30d"`
	TotalEvents           int            `json:"total_events"`
	AverageDailyRate      float64        `json:"average_daily_rate"`
	PeakDailyRate         int            `json:"peak_daily_rate"`
	OffHoursCount         int            `json:"off_hours_count"`
	WeekendCount          int            `json:"weekend_count"`
	DaysSinceLastActivity int            `json:"days_since_last_activity"`
	LongestGapDays        int            `json:"longest_gap_days"`
	VelocityChange        float64        `json:"velocity_change"`
	Patterns              []string       `json:"patterns,omitempty"`
	Concerns              []Concern      `json:"concerns"`
}

// CalculateActivityRisk analyzes the audit stream for behavioral anomalies.
// Hour-of-day and weekday checks are evaluated in loc (UTC when nil). A usage
// spike is any peak day above three times the average daily rate.
func CalculateActivityRisk(events []AuditEvent, firstAuthorized, now time.Time, loc *time.Location) ActivityRisk {
	return calculateActivityRisk(events, firstAuthorized, now, loc, 0)
}

// calculateActivityRisk additionally ignores spikes whose peak day has fewer
// than spikeMinEvents events; zero disables that floor.
func calculateActivityRisk(events []AuditEvent, firstAuthorized, now time.Time, loc *time.Location, spikeMinEvents int) ActivityRisk {
	if loc == nil {
		loc = time.UTC
	}
	events = prepareEvents(events, now)

	out := ActivityRisk{
		RecentActivity: RecentActivity{
			Last7Days:  countBetween(events, now, 0, 7*day),
			Last30Days: countBetween(events, now, 0, 30*day),
			Last90Days: countBetween(events, now, 0, 90*day),
		},
		Previous30Days: countBetween(events, now, 30*day, 60*day),
		TotalEvents:    len(events),
	}
	out.AverageDailyRate = float64(len(events)) / observationDays(events, firstAuthorized, now)

	perDay := map[string]int{}
	for _, event := range events {
		local := event.Timestamp.In(loc)
		perDay[local.Format(time.DateOnly)]++
		if h := local.Hour(); h >= offHoursStart && h < offHoursEnd {
			out.OffHoursCount++
		}
		if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
			out.WeekendCount++
		}
	}
	for _, n := range perDay {
		if n > out.PeakDailyRate {
			out.PeakDailyRate = n
		}
	}

	reactivated := false
	prev := firstAuthorized
	for i, event := range events {
		if !prev.IsZero() && event.Timestamp.After(prev) {
			gap := wholeDays(event.Timestamp.Sub(prev))
			if gap > out.LongestGapDays {
				out.LongestGapDays = gap
			}
			if i > 0 && gap > reactivationGapDays && now.Sub(event.Timestamp) <= reactivationRecentDays*day {
				reactivated = true
			}
		}
		prev = event.Timestamp
	}

	score := 0
	add := func(points int, pattern string, c Concern) {
		score += points
		out.Patterns = append(out.Patterns, pattern)
		out.Concerns = append(out.Concerns, c)
	}

	if out.OffHoursCount >= offHoursThreshold {
		add(pointsOffHours, string(KindOffHoursAccess), Concern{
			Kind:     KindOffHoursAccess,
			Severity: SeverityMedium,
			Title:    "Off-hours access",
			Detail:   fmt.Sprintf("%d events between %02d:00 and %02d:00", out.OffHoursCount, offHoursStart, offHoursEnd),
		})
	}
	if out.WeekendCount >= weekendThreshold {
		add(pointsWeekend, string(KindWeekendAccess), Concern{
			Kind:     KindWeekendAccess,
			Severity: SeverityLow,
			Title:    "Weekend access",
			Detail:   fmt.Sprintf("%d events on Saturdays or Sundays", out.WeekendCount),
		})
	}
	if out.PeakDailyRate > 0 && out.PeakDailyRate >= spikeMinEvents && float64(out.PeakDailyRate) > spikeMultiplier*out.AverageDailyRate {
		add(pointsSpike, string(KindUsageSpike), Concern{
			Kind:     KindUsageSpike,
			Severity: SeverityHigh,
			Title:    "Unusual usage spike",
			Detail:   fmt.Sprintf("peak of %d events in one day against an average of %.1f", out.PeakDailyRate, out.AverageDailyRate),
		})
	}

	if days, ok := daysSinceLastActivity(events, firstAuthorized, now); ok {
		out.DaysSinceLastActivity = days
		if days >= dormantDays {
			add(pointsDormant, string(KindDormant), Concern{
				Kind:     KindDormant,
				Severity: SeverityMedium,
				Title:    "Dormant application",
				Detail:   fmt.Sprintf("no activity in the last %d days", days),
			})
			if len(events) == 0 && observationDays(events, firstAuthorized, now) > neverUsedDays {
				add(pointsNeverUsed, string(KindNeverUsed), Concern{
					Kind:     KindNeverUsed,
					Severity: SeverityMedium,
					Title:    "Never used",
					Detail:   fmt.Sprintf("no recorded activity since authorization %d days ago", days),
				})
			}
		}
	}

	if reactivated {
		add(pointsReactivation, string(KindReactivation), Concern{
			Kind:     KindReactivation,
			Severity: SeverityHigh,
			Title:    "Sudden reactivation",
			Detail:   fmt.Sprintf("activity resumed within the last %d days after a gap of more than %d days", reactivationRecentDays, reactivationGapDays),
		})
	}

	out.UsageFrequency = classifyUsage(out.RecentActivity.Last30Days)
	if out.UsageFrequency == UsageExcessive {
		add(pointsExcessive, string(KindExcessiveUsage), Concern{
			Kind:     KindExcessiveUsage,
			Severity: SeverityHigh,
			Title:    "Excessive usage",
			Detail:   fmt.Sprintf("%d events in the last 30 days", out.RecentActivity.Last30Days),
		})
	}

	if out.Previous30Days > 0 {
		out.VelocityChange = float64(out.RecentActivity.Last30Days-out.Previous30Days) / float64(out.Previous30Days) * 100
	}
	if out.VelocityChange > velocityThreshold {
		add(pointsVelocity, string(KindVelocitySpike), Concern{
			Kind:     KindVelocitySpike,
			Severity: SeverityHigh,
			Title:    "Activity velocity spike",
			Detail:   fmt.Sprintf("last 30 days up %.0f%% on the previous 30 days", out.VelocityChange),
		})
	}

	out.TotalScore = clampScore(score)
	return out
}

func classifyUsage(last30 int) UsageFrequency {
	rate := float64(last30) / 30
	switch {
	case last30 == 0:
		return UsageDormant
	case rate < 1:
		return UsageLow
	case rate < 10:
		return UsageMedium
	case rate < 50:
		return UsageHigh
	default:
		return UsageExcessive
	}
}
