package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/domain/schedule"
)

// March 5th 2020, a Thursday in ISO week 10 of a leap year.
var moment = time.Date(2020, time.March, 5, 10, 30, 0, 0, time.UTC)

func TestIntervalIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		period domain.Period
		want   string
	}{
		{domain.PeriodDaily, "D2020-065"},
		{domain.PeriodWeekly, "W2020-10"},
		{domain.PeriodMonthly, "M2020-03"},
		{domain.PeriodQuarterly, "Q2020-1"},
		{domain.PeriodYearly, "Y2020"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(string(tc.period), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, schedule.IntervalID(tc.period, moment, time.UTC))
		})
	}
}

func TestIntervalIDIsDeterministic(t *testing.T) {
	t.Parallel()

	// Any moment inside the same interval yields the same identity.
	earlier := time.Date(2020, time.March, 5, 0, 0, 1, 0, time.UTC)
	later := time.Date(2020, time.March, 5, 23, 59, 59, 0, time.UTC)
	assert.Equal(t,
		schedule.IntervalID(domain.PeriodDaily, earlier, time.UTC),
		schedule.IntervalID(domain.PeriodDaily, later, time.UTC))

	weekEarlier := time.Date(2020, time.March, 2, 0, 0, 0, 0, time.UTC) // Monday
	weekLater := time.Date(2020, time.March, 8, 23, 0, 0, 0, time.UTC)  // Sunday
	assert.Equal(t,
		schedule.IntervalID(domain.PeriodWeekly, weekEarlier, time.UTC),
		schedule.IntervalID(domain.PeriodWeekly, weekLater, time.UTC))
}

func TestWeeklyIntervalAtYearBoundary(t *testing.T) {
	t.Parallel()

	// January 1st 2021 still belongs to ISO week 53 of 2020.
	newYear := time.Date(2021, time.January, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "W2020-53", schedule.IntervalID(domain.PeriodWeekly, newYear, time.UTC))
}

func TestFullNameSuffixes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		period domain.Period
		want   string
	}{
		{domain.PeriodDaily, "Take pillMar05"},
		{domain.PeriodWeekly, "Take pillW10"},
		{domain.PeriodMonthly, "Take pillMar"},
		{domain.PeriodQuarterly, "Take pillQ1"},
		{domain.PeriodYearly, "Take pill2020"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(string(tc.period), func(t *testing.T) {
			t.Parallel()
			sched, err := schedule.Compute("Take pill", domain.RecurringParams{Period: tc.period}, moment, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tc.want, sched.FullName)
		})
	}
}

func TestDefaultDueDateIsEndOfInterval(t *testing.T) {
	t.Parallel()

	sched, err := schedule.Compute("x", domain.RecurringParams{Period: domain.PeriodDaily}, moment, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, time.March, 6, 0, 0, 0, 0, time.UTC), sched.DueDate)

	sched, err = schedule.Compute("x", domain.RecurringParams{Period: domain.PeriodWeekly}, moment, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, time.March, 9, 0, 0, 0, 0, time.UTC), sched.DueDate)

	sched, err = schedule.Compute("x", domain.RecurringParams{Period: domain.PeriodMonthly}, moment, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, time.April, 1, 0, 0, 0, 0, time.UTC), sched.DueDate)
}

func TestDueAtTimeSetsClockOnDueDay(t *testing.T) {
	t.Parallel()

	params := domain.RecurringParams{Period: domain.PeriodDaily, DueAtTime: "08:00"}
	sched, err := schedule.Compute("Take pill", params, moment, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "Take pillMar05", sched.FullName)
	assert.Equal(t, time.Date(2020, time.March, 5, 8, 0, 0, 0, time.UTC), sched.DueDate)
}

func TestDueOffsetsResolveRelativeToIntervalStart(t *testing.T) {
	t.Parallel()

	// 10th day of the month.
	params := domain.RecurringParams{Period: domain.PeriodMonthly, DueAtDay: 10}
	sched, err := schedule.Compute("x", params, moment, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, time.March, 11, 0, 0, 0, 0, time.UTC), sched.DueDate)

	// 15th day of the second month of the quarter.
	params = domain.RecurringParams{Period: domain.PeriodQuarterly, DueAtMonth: 2, DueAtDay: 15}
	sched, err = schedule.Compute("x", params, moment, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, time.February, 16, 0, 0, 0, 0, time.UTC), sched.DueDate)

	// Month-only offset: end of the configured month.
	params = domain.RecurringParams{Period: domain.PeriodQuarterly, DueAtMonth: 1}
	sched, err = schedule.Compute("x", params, moment, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC), sched.DueDate)
}

func TestUnresolvableDueOffsetIsConfigurationError(t *testing.T) {
	t.Parallel()

	// February 2021 has 28 days; day 30 cannot resolve inside it.
	feb := time.Date(2021, time.February, 10, 0, 0, 0, 0, time.UTC)
	params := domain.RecurringParams{Period: domain.PeriodMonthly, DueAtDay: 30}
	_, err := schedule.Compute("x", params, feb, time.UTC)
	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))

	// The same configuration resolves fine in March.
	_, err = schedule.Compute("x", params, moment, time.UTC)
	assert.NoError(t, err)
}

func TestActionableDate(t *testing.T) {
	t.Parallel()

	sched, err := schedule.Compute("x", domain.RecurringParams{Period: domain.PeriodWeekly}, moment, time.UTC)
	require.NoError(t, err)
	assert.Nil(t, sched.ActionableDate)

	params := domain.RecurringParams{Period: domain.PeriodWeekly, ActionableFromDay: 3}
	sched, err = schedule.Compute("x", params, moment, time.UTC)
	require.NoError(t, err)
	require.NotNil(t, sched.ActionableDate)
	// Week starts Monday March 2nd; day 3 is Wednesday the 4th.
	assert.Equal(t, time.Date(2020, time.March, 4, 0, 0, 0, 0, time.UTC), *sched.ActionableDate)
}

func TestSkipRules(t *testing.T) {
	t.Parallel()

	even, err := domain.ParseSkipRule("even")
	require.NoError(t, err)
	sched, err := schedule.Compute("x", domain.RecurringParams{Period: domain.PeriodWeekly, Skip: even}, moment, time.UTC)
	require.NoError(t, err)
	assert.True(t, sched.Skipped, "week 10 is even")

	odd, err := domain.ParseSkipRule("odd")
	require.NoError(t, err)
	sched, err = schedule.Compute("x", domain.RecurringParams{Period: domain.PeriodWeekly, Skip: odd}, moment, time.UTC)
	require.NoError(t, err)
	assert.False(t, sched.Skipped)

	exclude, err := domain.ParseSkipRule("1,3")
	require.NoError(t, err)
	sched, err = schedule.Compute("x", domain.RecurringParams{Period: domain.PeriodQuarterly, Skip: exclude}, moment, time.UTC)
	require.NoError(t, err)
	assert.True(t, sched.Skipped, "Q1 is excluded")

	q2 := time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC)
	sched, err = schedule.Compute("x", domain.RecurringParams{Period: domain.PeriodQuarterly, Skip: exclude}, q2, time.UTC)
	require.NoError(t, err)
	assert.False(t, sched.Skipped)
}

func TestYearlySkipParityUsesYearNumber(t *testing.T) {
	t.Parallel()

	even, err := domain.ParseSkipRule("even")
	require.NoError(t, err)
	sched, err := schedule.Compute("x", domain.RecurringParams{Period: domain.PeriodYearly, Skip: even}, moment, time.UTC)
	require.NoError(t, err)
	assert.True(t, sched.Skipped, "2020 is even")

	in2021 := time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC)
	sched, err = schedule.Compute("x", domain.RecurringParams{Period: domain.PeriodYearly, Skip: even}, in2021, time.UTC)
	require.NoError(t, err)
	assert.False(t, sched.Skipped)
}

func TestComputeUsesLocation(t *testing.T) {
	t.Parallel()

	// 23:30 UTC on March 5th is already March 6th in Bucharest.
	bucharest, err := time.LoadLocation("Europe/Bucharest")
	require.NoError(t, err)
	late := time.Date(2020, time.March, 5, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "D2020-065", schedule.IntervalID(domain.PeriodDaily, late, time.UTC))
	assert.Equal(t, "D2020-066", schedule.IntervalID(domain.PeriodDaily, late, bucharest))
}
