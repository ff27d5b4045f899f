package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is the recurrence period of a template. It determines how a year
// is divided into numbered intervals: daily 1-365/366, weekly 1-52/53,
// monthly 1-12, quarterly 1-4, yearly the year number itself.
type Period string

// The known recurrence periods.
const (
	PeriodDaily     Period = "daily"
	PeriodWeekly    Period = "weekly"
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

// ParsePeriod converts a string into a Period.
// Returns ErrInvalidPeriod if the value is not a known period.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(s)) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return Period(strings.ToLower(s)), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
}

// Valid reports whether the period is one of the known period kinds.
func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	}
	return false
}

// SkipRule excludes some period intervals from generation. The zero value
// skips nothing. "odd" and "even" test the parity of the interval number;
// otherwise the rule is an explicit set of interval numbers to exclude.
type SkipRule struct {
	Parity  string // "odd", "even" or ""
	Exclude []int  // explicit interval numbers to skip
}

// ParseSkipRule parses a skip rule from its textual form: "", "odd",
// "even", or a comma-separated list of interval numbers ("1,3").
func ParseSkipRule(s string) (SkipRule, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "":
		return SkipRule{}, nil
	case "odd", "even":
		return SkipRule{Parity: s}, nil
	}
	parts := strings.Split(s, ",")
	exclude := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return SkipRule{}, fmt.Errorf("%w: %q", ErrInvalidSkipRule, s)
		}
		exclude = append(exclude, n)
	}
	return SkipRule{Exclude: exclude}, nil
}

// IsZero reports whether the rule skips nothing.
func (r SkipRule) IsZero() bool {
	return r.Parity == "" && len(r.Exclude) == 0
}

// Skips reports whether the given interval number is excluded by the rule.
func (r SkipRule) Skips(interval int) bool {
	switch r.Parity {
	case "odd":
		return interval%2 != 0
	case "even":
		return interval%2 == 0
	}
	for _, n := range r.Exclude {
		if n == interval {
			return true
		}
	}
	return false
}

// String returns the textual form accepted by ParseSkipRule.
func (r SkipRule) String() string {
	if r.Parity != "" {
		return r.Parity
	}
	parts := make([]string, len(r.Exclude))
	for i, n := range r.Exclude {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// Difficulty grades how hard a task is expected to be.
type Difficulty string

// The known difficulty grades. DifficultyUnset means no grade was assigned.
const (
	DifficultyUnset  Difficulty = ""
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Eisenhower places a task in the Eisenhower urgency/importance matrix.
type Eisenhower string

// The known Eisenhower quadrants. EisenhowerUnset means no placement.
const (
	EisenhowerUnset     Eisenhower = ""
	EisenhowerImportant Eisenhower = "important"
	EisenhowerUrgent    Eisenhower = "urgent"
	EisenhowerRegular   Eisenhower = "regular"
)

// RecurringParams is the shared recurrence configuration of a template.
// Offsets are 1-based into the period interval; zero means unset.
type RecurringParams struct {
	Period              Period
	Skip                SkipRule
	ActionableFromDay   int
	ActionableFromMonth int
	DueAtDay            int
	DueAtMonth          int
	DueAtTime           string // "HH:MM" local time, empty for end-of-interval
	Difficulty          Difficulty
	Eisenhower          Eisenhower
}

// Validate checks the params for structural problems that can be caught
// without a reference moment: an unknown period, month offsets on periods
// that have no month component, and offsets that can never fall inside an
// interval of the period. Out-of-range offsets are a configuration error
// surfaced here, at template-edit time.
func (p RecurringParams) Validate() error {
	if !p.Period.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, p.Period)
	}
	if p.DueAtTime != "" {
		if _, err := time.Parse("15:04", p.DueAtTime); err != nil {
			return NewConfigurationError("due_at_time", fmt.Sprintf("cannot parse %q as HH:MM", p.DueAtTime))
		}
	}
	maxDay, maxMonth := p.Period.offsetBounds()
	if p.ActionableFromDay < 0 || p.ActionableFromDay > maxDay {
		return NewConfigurationError("actionable_from_day",
			fmt.Sprintf("%d is outside the interval (max %d for a %s period)", p.ActionableFromDay, maxDay, p.Period))
	}
	if p.DueAtDay < 0 || p.DueAtDay > maxDay {
		return NewConfigurationError("due_at_day",
			fmt.Sprintf("%d is outside the interval (max %d for a %s period)", p.DueAtDay, maxDay, p.Period))
	}
	if p.ActionableFromMonth < 0 || p.ActionableFromMonth > maxMonth {
		return NewConfigurationError("actionable_from_month",
			fmt.Sprintf("%d is outside the interval (max %d for a %s period)", p.ActionableFromMonth, maxMonth, p.Period))
	}
	if p.DueAtMonth < 0 || p.DueAtMonth > maxMonth {
		return NewConfigurationError("due_at_month",
			fmt.Sprintf("%d is outside the interval (max %d for a %s period)", p.DueAtMonth, maxMonth, p.Period))
	}
	return nil
}

// offsetBounds returns the largest day and month offset that can resolve
// inside an interval of the period. Day bounds use the shortest possible
// interval so a valid configuration resolves in every interval.
func (p Period) offsetBounds() (maxDay, maxMonth int) {
	switch p {
	case PeriodDaily:
		return 1, 0
	case PeriodWeekly:
		return 7, 0
	case PeriodMonthly:
		return 28, 0
	case PeriodQuarterly:
		return 28, 3
	case PeriodYearly:
		return 28, 12
	default:
		return 0, 0
	}
}

// DateSpan is a half-open time range [Start, End).
type DateSpan struct {
	Start time.Time
	End   time.Time
}

// Intersects reports whether the two spans share any instant.
func (s DateSpan) Intersects(other DateSpan) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// Contains reports whether the span fully contains the other span.
func (s DateSpan) Contains(other DateSpan) bool {
	return !other.Start.Before(s.Start) && !other.End.After(s.End)
}
