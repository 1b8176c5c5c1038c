package models

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// RuleKind discriminates the recurrence variants.
type RuleKind string

const (
	// RuleOneTime marks a single occurrence anchored at the special's start date.
	RuleOneTime RuleKind = "ONE_TIME"
	// RuleWeekly marks a weekday-set pattern with an optional repeat interval.
	RuleWeekly RuleKind = "WEEKLY"
	// RuleCron marks a 5-field cron expression whose date-producing fields
	// select qualifying calendar days.
	RuleCron RuleKind = "CRON"
)

// Weekday bits for RecurrenceRule.DayMask, Sunday through Saturday.
const (
	DaySunday uint8 = 1 << iota
	DayMonday
	DayTuesday
	DayWednesday
	DayThursday
	DayFriday
	DaySaturday
)

var cronDateParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// RecurrenceRule is the canonical recurrence model. Both external forms
// (weekday mask plus period, and cron expression) normalize into it; the
// evaluator only ever consumes this type.
type RecurrenceRule struct {
	Kind          RuleKind `json:"kind"`
	DayMask       uint8    `json:"day_mask,omitempty"`
	IntervalWeeks int      `json:"interval_weeks,omitempty"`
	CronExpr      string   `json:"cron_expr,omitempty"`
}

// OneTimeRule returns the rule for a non-recurring special.
func OneTimeRule() RecurrenceRule {
	return RecurrenceRule{Kind: RuleOneTime}
}

// NewWeeklyRule normalizes the weekday-mask form. An interval below one
// means "every week".
func NewWeeklyRule(dayMask uint8, intervalWeeks int) (RecurrenceRule, error) {
	if dayMask == 0 || dayMask > 0x7F {
		return RecurrenceRule{}, fmt.Errorf("weekday mask %#x out of range", dayMask)
	}
	if intervalWeeks < 1 {
		intervalWeeks = 1
	}
	return RecurrenceRule{Kind: RuleWeekly, DayMask: dayMask, IntervalWeeks: intervalWeeks}, nil
}

// NewCronRule normalizes the cron-expression form, rejecting expressions
// the evaluator would not be able to interpret.
func NewCronRule(expr string) (RecurrenceRule, error) {
	if _, err := cronDateParser.Parse(expr); err != nil {
		return RecurrenceRule{}, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return RecurrenceRule{Kind: RuleCron, CronExpr: expr}, nil
}

// OccursOn reports whether the rule produces an occurrence on date d,
// given the special's start date as the recurrence anchor. Only calendar
// dates are considered; the intraday window is governed elsewhere by the
// special's start and end times.
func (r RecurrenceRule) OccursOn(d, anchor Date) bool {
	switch r.Kind {
	case RuleOneTime:
		return d.Equal(anchor)
	case RuleWeekly:
		if r.DayMask&(1<<uint(d.Weekday())) == 0 {
			return false
		}
		if r.IntervalWeeks <= 1 {
			return true
		}
		weeks := d.DaysSince(anchor) / 7
		return weeks >= 0 && weeks%r.IntervalWeeks == 0
	case RuleCron:
		sched, err := cronDateParser.Parse(r.CronExpr)
		if err != nil {
			// Guarded against at the boundary; an unparsable rule never matches.
			return false
		}
		dayStart := d.Time(time.UTC)
		next := sched.Next(dayStart.Add(-time.Second))
		return !next.IsZero() && next.Before(dayStart.AddDate(0, 0, 1))
	default:
		return false
	}
}
