package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/almanac/internal/domain"
)

func TestParseEntityKind(t *testing.T) {
	t.Parallel()

	cases := map[string]domain.EntityKind{
		"project":    domain.KindProject,
		"habit":      domain.KindHabit,
		"Chore":      domain.KindChore,
		"metric":     domain.KindMetric,
		"person":     domain.KindPerson,
		"vacation":   domain.KindVacation,
		"inbox_task": domain.KindInboxTask,
		"task":       domain.KindInboxTask,
	}
	for input, want := range cases {
		kind, err := domain.ParseEntityKind(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, kind)
	}

	_, err := domain.ParseEntityKind("widget")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
