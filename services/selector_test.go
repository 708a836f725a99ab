package services

import (
	"testing"
	"time"
	"visitperk-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Timing ladder for a visit at T with offsets 24h and 1h.
func TestSelectDueWindows(t *testing.T) {
	T := baseTime
	v := scheduledVisit(T)
	offsets := testOffsets()

	t.Run("before any window", func(t *testing.T) {
		pairs := SelectDue([]models.Visit{v}, T.Add(-25*time.Hour), offsets)
		assert.Empty(t, pairs)
	})

	t.Run("24h window open", func(t *testing.T) {
		pairs := SelectDue([]models.Visit{v}, T.Add(-23*time.Hour), offsets)
		require.Len(t, pairs, 1)
		assert.Equal(t, "24h", pairs[0].OffsetID)
		assert.Equal(t, v.ID, pairs[0].Visit.ID)
	})

	t.Run("1h window open, 24h already recorded", func(t *testing.T) {
		reminded := RecordReminderSent(v, "24h")
		pairs := SelectDue([]models.Visit{reminded}, T.Add(-30*time.Minute), offsets)
		require.Len(t, pairs, 1)
		assert.Equal(t, "1h", pairs[0].OffsetID)
	})

	t.Run("both windows open, nothing recorded", func(t *testing.T) {
		pairs := SelectDue([]models.Visit{v}, T.Add(-30*time.Minute), offsets)
		require.Len(t, pairs, 2)
		assert.Equal(t, "24h", pairs[0].OffsetID)
		assert.Equal(t, "1h", pairs[1].OffsetID)
	})

	t.Run("scheduled time reached", func(t *testing.T) {
		pairs := SelectDue([]models.Visit{v}, T, offsets)
		assert.Empty(t, pairs)
		pairs = SelectDue([]models.Visit{v}, T.Add(2*time.Hour), offsets)
		assert.Empty(t, pairs)
	})
}

func TestSelectDueSkipsSentAndNonScheduled(t *testing.T) {
	T := baseTime
	offsets := testOffsets()
	now := T.Add(-30 * time.Minute)

	fullySent := RecordReminderSent(RecordReminderSent(scheduledVisit(T), "24h"), "1h")
	completed, err := Complete(scheduledVisit(T), now)
	require.NoError(t, err)
	cancelled, err := Cancel(scheduledVisit(T))
	require.NoError(t, err)

	pairs := SelectDue([]models.Visit{fullySent, completed, cancelled}, now, offsets)
	assert.Empty(t, pairs)
}

func TestSelectDueOrdering(t *testing.T) {
	offsets := testOffsets()
	later := scheduledVisit(baseTime.Add(45 * time.Minute))
	earlier := scheduledVisit(baseTime.Add(20 * time.Minute))
	now := baseTime

	// Passed out of order on purpose
	pairs := SelectDue([]models.Visit{later, earlier}, now, offsets)
	require.Len(t, pairs, 4)
	assert.Equal(t, earlier.ID, pairs[0].Visit.ID)
	assert.Equal(t, "24h", pairs[0].OffsetID)
	assert.Equal(t, "1h", pairs[1].OffsetID)
	assert.Equal(t, later.ID, pairs[2].Visit.ID)
	assert.Equal(t, "24h", pairs[2].OffsetID)
	assert.Equal(t, "1h", pairs[3].OffsetID)
}

func TestGroupByVisitPreservesOrder(t *testing.T) {
	a := scheduledVisit(baseTime)
	b := scheduledVisit(baseTime.Add(time.Minute))
	pairs := []DuePair{
		{Visit: a, OffsetID: "24h"},
		{Visit: a, OffsetID: "1h"},
		{Visit: b, OffsetID: "24h"},
	}

	groups := groupByVisit(pairs)
	require.Len(t, groups, 2)
	require.Len(t, groups[0], 2)
	assert.Equal(t, a.ID, groups[0][0].Visit.ID)
	assert.Equal(t, "24h", groups[0][0].OffsetID)
	assert.Equal(t, "1h", groups[0][1].OffsetID)
	require.Len(t, groups[1], 1)
	assert.Equal(t, b.ID, groups[1][0].Visit.ID)
}
