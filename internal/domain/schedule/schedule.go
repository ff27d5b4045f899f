// Package schedule implements the period calculation engine: pure,
// deterministic mapping from (period, reference moment, recurrence params)
// to the single period interval containing the moment, its identity, the
// generated task name and the actionable/due dates.
package schedule

import (
	"fmt"
	"time"

	"github.com/phrazzld/almanac/internal/domain"
)

// Interval is one numbered time bucket of a period type. ID is stable and
// deterministic: the same (period, moment) always yields the same ID, which
// is what makes regeneration idempotent.
type Interval struct {
	ID     string
	Number int
	Span   domain.DateSpan
}

// Schedule is the full generation verdict for one template at one moment.
type Schedule struct {
	Period         domain.Period
	Interval       Interval
	FullName       string
	ActionableDate *time.Time
	DueDate        time.Time
	Skipped        bool
}

// Compute builds the schedule for the interval containing moment.
// The moment is interpreted in loc; all returned times are in loc.
// Returns a domain.ConfigurationError when a due/actionable offset does
// not resolve to a date inside the interval.
func Compute(name string, params domain.RecurringParams, moment time.Time, loc *time.Location) (*Schedule, error) {
	if !params.Period.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPeriod, params.Period)
	}
	moment = moment.In(loc)

	interval := intervalFor(params.Period, moment)

	sched := &Schedule{
		Period:   params.Period,
		Interval: interval,
		FullName: name + nameSuffix(params.Period, interval, moment),
		Skipped:  params.Skip.Skips(interval.Number),
	}

	due, err := dueDate(params, interval)
	if err != nil {
		return nil, err
	}
	sched.DueDate = due

	actionable, err := actionableDate(params, interval)
	if err != nil {
		return nil, err
	}
	sched.ActionableDate = actionable

	return sched, nil
}

// IntervalID returns just the deterministic interval identity for
// (period, moment), without computing the full schedule.
func IntervalID(p domain.Period, moment time.Time, loc *time.Location) string {
	return intervalFor(p, moment.In(loc)).ID
}

// intervalFor derives the interval containing the moment. Interval
// numbering: daily ordinal day-of-year, weekly ISO week, monthly month,
// quarterly ceil(month/3), yearly the year itself.
func intervalFor(p domain.Period, moment time.Time) Interval {
	loc := moment.Location()
	year := moment.Year()

	switch p {
	case domain.PeriodDaily:
		start := time.Date(year, moment.Month(), moment.Day(), 0, 0, 0, 0, loc)
		return Interval{
			ID:     fmt.Sprintf("D%d-%03d", year, moment.YearDay()),
			Number: moment.YearDay(),
			Span:   domain.DateSpan{Start: start, End: start.AddDate(0, 0, 1)},
		}
	case domain.PeriodWeekly:
		isoYear, isoWeek := moment.ISOWeek()
		start := startOfISOWeek(moment)
		return Interval{
			ID:     fmt.Sprintf("W%d-%02d", isoYear, isoWeek),
			Number: isoWeek,
			Span:   domain.DateSpan{Start: start, End: start.AddDate(0, 0, 7)},
		}
	case domain.PeriodMonthly:
		start := time.Date(year, moment.Month(), 1, 0, 0, 0, 0, loc)
		return Interval{
			ID:     fmt.Sprintf("M%d-%02d", year, int(moment.Month())),
			Number: int(moment.Month()),
			Span:   domain.DateSpan{Start: start, End: start.AddDate(0, 1, 0)},
		}
	case domain.PeriodQuarterly:
		quarter := (int(moment.Month()) + 2) / 3
		start := time.Date(year, time.Month(3*quarter-2), 1, 0, 0, 0, 0, loc)
		return Interval{
			ID:     fmt.Sprintf("Q%d-%d", year, quarter),
			Number: quarter,
			Span:   domain.DateSpan{Start: start, End: start.AddDate(0, 3, 0)},
		}
	case domain.PeriodYearly:
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		return Interval{
			ID:     fmt.Sprintf("Y%d", year),
			Number: year,
			Span:   domain.DateSpan{Start: start, End: start.AddDate(1, 0, 0)},
		}
	}
	return Interval{}
}

// nameSuffix encodes the interval into the generated task name:
// daily "Mar05", weekly "W10", monthly "Mar", quarterly "Q2", yearly "2020".
func nameSuffix(p domain.Period, interval Interval, moment time.Time) string {
	switch p {
	case domain.PeriodDaily:
		return moment.Format("Jan02")
	case domain.PeriodWeekly:
		return fmt.Sprintf("W%d", interval.Number)
	case domain.PeriodMonthly:
		return moment.Format("Jan")
	case domain.PeriodQuarterly:
		return fmt.Sprintf("Q%d", interval.Number)
	case domain.PeriodYearly:
		return fmt.Sprintf("%d", interval.Number)
	}
	return ""
}

// dueDate resolves the due date for the interval: end-of-interval midnight
// by default, or the configured day/month/time override resolved relative
// to the interval start.
func dueDate(params domain.RecurringParams, interval Interval) (time.Time, error) {
	loc := interval.Span.Start.Location()

	// The day the task is due, defaulting to the last day of the interval.
	dueDay := interval.Span.End.AddDate(0, 0, -1)
	switch {
	case params.DueAtMonth > 0 && params.DueAtDay > 0:
		dueDay = interval.Span.Start.AddDate(0, params.DueAtMonth-1, params.DueAtDay-1)
	case params.DueAtMonth > 0:
		// End of the configured month within the interval.
		dueDay = interval.Span.Start.AddDate(0, params.DueAtMonth, -1)
	case params.DueAtDay > 0:
		dueDay = interval.Span.Start.AddDate(0, 0, params.DueAtDay-1)
	}

	if !interval.Span.Contains(domain.DateSpan{Start: dueDay, End: dueDay.AddDate(0, 0, 1)}) {
		return time.Time{}, &domain.ConfigurationError{
			Field: "due_at",
			Msg:   fmt.Sprintf("due offset resolves to %s, outside interval %s", dueDay.Format("2006-01-02"), interval.ID),
		}
	}

	if params.DueAtTime != "" {
		clock, err := time.Parse("15:04", params.DueAtTime)
		if err != nil {
			return time.Time{}, &domain.ConfigurationError{
				Field: "due_at_time",
				Msg:   fmt.Sprintf("cannot parse %q as HH:MM", params.DueAtTime),
				Err:   err,
			}
		}
		return time.Date(dueDay.Year(), dueDay.Month(), dueDay.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), nil
	}

	// Midnight at the end of the due day.
	return time.Date(dueDay.Year(), dueDay.Month(), dueDay.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1), nil
}

// actionableDate resolves the actionable lower bound, or nil when no
// actionable offset is configured.
func actionableDate(params domain.RecurringParams, interval Interval) (*time.Time, error) {
	if params.ActionableFromDay == 0 && params.ActionableFromMonth == 0 {
		return nil, nil
	}
	months, days := 0, 0
	if params.ActionableFromMonth > 0 {
		months = params.ActionableFromMonth - 1
	}
	if params.ActionableFromDay > 0 {
		days = params.ActionableFromDay - 1
	}
	actionable := interval.Span.Start.AddDate(0, months, days)
	if !interval.Span.Contains(domain.DateSpan{Start: actionable, End: actionable.AddDate(0, 0, 1)}) {
		return nil, &domain.ConfigurationError{
			Field: "actionable_from",
			Msg:   fmt.Sprintf("actionable offset resolves to %s, outside interval %s", actionable.Format("2006-01-02"), interval.ID),
		}
	}
	return &actionable, nil
}

// startOfISOWeek returns the Monday 00:00 of the moment's ISO week.
func startOfISOWeek(moment time.Time) time.Time {
	weekday := int(moment.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}
	start := moment.AddDate(0, 0, 1-weekday)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, moment.Location())
}
