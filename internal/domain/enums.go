package domain

import "strings"

// Period is the sampling frequency of a series.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAnnual  Period = "annual"
)

// ParsePeriod returns the period named by s. Unknown values yield daily and ok=false.
func ParsePeriod(s string) (Period, bool) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodDaily, "":
		return PeriodDaily, true
	case PeriodWeekly:
		return PeriodWeekly, true
	case PeriodMonthly:
		return PeriodMonthly, true
	case PeriodAnnual, "yearly":
		return PeriodAnnual, true
	default:
		return PeriodDaily, false
	}
}

// PeriodsPerYear returns the conventional number of periods in a year.
func (p Period) PeriodsPerYear() float64 {
	switch p {
	case PeriodWeekly:
		return 52
	case PeriodMonthly:
		return 12
	case PeriodAnnual:
		return 1
	default:
		return 252
	}
}

// ReturnMethod selects simple (pct-change) or log returns.
type ReturnMethod string

const (
	ReturnMethodSimple ReturnMethod = "simple"
	ReturnMethodLog    ReturnMethod = "log"
)

// ParseReturnMethod returns the method named by s. Unknown values yield simple and ok=false.
func ParseReturnMethod(s string) (ReturnMethod, bool) {
	switch ReturnMethod(strings.ToLower(strings.TrimSpace(s))) {
	case ReturnMethodSimple:
		return ReturnMethodSimple, true
	case ReturnMethodLog:
		return ReturnMethodLog, true
	case "":
		return ReturnMethodSimple, true
	default:
		return ReturnMethodSimple, false
	}
}

// MissingDataPolicy controls how series with differing calendars are combined.
type MissingDataPolicy string

const (
	// ZeroFill keeps the union of dates and treats a missing observation as a zero return.
	ZeroFill MissingDataPolicy = "zero_fill"
	// DropIncomplete keeps only dates present in every series.
	DropIncomplete MissingDataPolicy = "drop_incomplete"
)

// ParseMissingDataPolicy returns the policy named by s, or def when s is empty or unknown.
func ParseMissingDataPolicy(s string, def MissingDataPolicy) (MissingDataPolicy, bool) {
	switch MissingDataPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case ZeroFill:
		return ZeroFill, true
	case DropIncomplete:
		return DropIncomplete, true
	case "":
		return def, true
	default:
		return def, false
	}
}
