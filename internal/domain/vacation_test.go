package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/almanac/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2020, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestNewVacationRejectsInvertedRange(t *testing.T) {
	t.Parallel()

	_, err := domain.NewVacation("trip", day(10), day(5))
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestVacationCoversFullContainmentOnly(t *testing.T) {
	t.Parallel()

	vacation, err := domain.NewVacation("trip", day(2), day(8))
	require.NoError(t, err)

	assert.True(t, vacation.Covers(domain.DateSpan{Start: day(3), End: day(4)}))
	assert.False(t, vacation.Covers(domain.DateSpan{Start: day(7), End: day(12)}), "partial overlap does not exclude")
	assert.False(t, vacation.Covers(domain.DateSpan{Start: day(1), End: day(9)}))
}

func TestVacationEndDayIsInclusive(t *testing.T) {
	t.Parallel()

	vacation, err := domain.NewVacation("trip", day(2), day(8))
	require.NoError(t, err)

	// The whole of March 8th still belongs to the vacation.
	assert.True(t, vacation.Covers(domain.DateSpan{Start: day(8), End: day(9)}))
	assert.False(t, vacation.Covers(domain.DateSpan{Start: day(9), End: day(10)}))
}

func TestVacationExcluded(t *testing.T) {
	t.Parallel()

	covering, err := domain.NewVacation("trip", day(1), day(15))
	require.NoError(t, err)
	other, err := domain.NewVacation("weekend", day(20), day(22))
	require.NoError(t, err)

	span := domain.DateSpan{Start: day(5), End: day(6)}
	assert.True(t, domain.VacationExcluded([]*domain.Vacation{other, covering}, span))

	covering.Archived = true
	assert.False(t, domain.VacationExcluded([]*domain.Vacation{other, covering}, span),
		"archived vacations do not filter")

	assert.False(t, domain.VacationExcluded(nil, span))
}
