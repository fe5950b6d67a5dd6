package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/roadmap-backend/internal/domain"
)

func TestDefaultCatalog(t *testing.T) {
	items, err := Default()
	require.NoError(t, err)
	require.NotEmpty(t, items)

	byID := map[string]*types.Achievement{}
	for _, a := range items {
		byID[a.ID] = a
		assert.True(t, a.IsActive, a.ID)
	}
	require.Contains(t, byID, "first_steps")
	assert.Equal(t, types.CriteriaTasksCompleted, byID["first_steps"].CriteriaType)
	assert.Equal(t, 1, byID["first_steps"].CriteriaValue)
	assert.Equal(t, 75, byID["week_warrior"].RewardXP)
	assert.Equal(t, 6000, byID["time_traveler"].CriteriaValue)
}

func TestParseRejectsBadEntries(t *testing.T) {
	cases := map[string]string{
		"unknown criteria": "achievements:\n  - {id: a, criteria_type: nope, criteria_value: 1}\n",
		"duplicate":        "achievements:\n  - {id: a, criteria_type: tasks_completed, criteria_value: 1}\n  - {id: a, criteria_type: tasks_completed, criteria_value: 2}\n",
		"missing id":       "achievements:\n  - {criteria_type: tasks_completed, criteria_value: 1}\n",
		"zero threshold":   "achievements:\n  - {id: a, criteria_type: tasks_completed, criteria_value: 0}\n",
		"not yaml":         "achievements: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestParseInactive(t *testing.T) {
	items, err := Parse([]byte("achievements:\n  - {id: a, criteria_type: streak_days, criteria_value: 3, inactive: true}\n"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].IsActive)
}
