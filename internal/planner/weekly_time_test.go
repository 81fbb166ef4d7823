package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekdays(days ...time.Weekday) [7]bool {
	var flags [7]bool
	for _, d := range days {
		flags[d] = true
	}
	return flags
}

func TestExtractSubjectWeeklyTimeAccumulates(t *testing.T) {
	routines := []Routine{
		{Subject: "Math", Category: RoutineCategoryStudy, StartTime: "19:00", EndTime: "20:30", Days: weekdays(time.Monday, time.Wednesday)},
		{Subject: "English", Category: RoutineCategoryStudy, StartTime: "07:00", EndTime: "07:30", Days: weekdays(time.Tuesday)},
		{Subject: "Math", Category: RoutineCategoryStudy, StartTime: "10:00", EndTime: "11:00", Days: weekdays(time.Monday, time.Saturday)},
	}

	profiles := ExtractSubjectWeeklyTime(routines)
	require.Len(t, profiles, 2)

	math := profiles[0]
	assert.Equal(t, "Math", math.Subject)
	assert.Equal(t, 90+90+60+60, math.TotalMinutes)
	assert.Equal(t, 150, math.DailyMinutes[time.Monday])
	assert.Equal(t, 90, math.DailyMinutes[time.Wednesday])
	assert.Equal(t, 60, math.DailyMinutes[time.Saturday])
	assert.Len(t, math.Slots, 4)
	assert.Equal(t, 3, math.ActiveWeekdayCount())

	slot, ok := math.SlotFor(time.Monday)
	require.True(t, ok)
	assert.Equal(t, "19:00", slot.StartTime)
	assert.Equal(t, 90, slot.Minutes)

	assert.Equal(t, "English", profiles[1].Subject)
	assert.Equal(t, 30, profiles[1].TotalMinutes)
}

func TestExtractSubjectWeeklyTimeFiltersNonStudy(t *testing.T) {
	routines := []Routine{
		{Subject: "Math", Category: RoutineCategoryRest, StartTime: "19:00", EndTime: "20:00", Days: weekdays(time.Monday)},
		{Subject: "", Category: RoutineCategoryStudy, StartTime: "19:00", EndTime: "20:00", Days: weekdays(time.Monday)},
		{Subject: "Science", Category: RoutineCategoryStudy, StartTime: "19:00", EndTime: "20:00"},
		{Subject: "History", Category: RoutineCategoryStudy, StartTime: "evening", EndTime: "20:00", Days: weekdays(time.Friday)},
	}

	assert.Empty(t, ExtractSubjectWeeklyTime(routines))
}

func TestExtractSubjectWeeklyTimeSkipsZeroLengthRoutines(t *testing.T) {
	profiles := ExtractSubjectWeeklyTime([]Routine{
		{Subject: "Math", Category: RoutineCategoryStudy, StartTime: "19:00", EndTime: "19:00", Days: weekdays(time.Monday)},
		{Subject: "Math", Category: RoutineCategoryStudy, StartTime: "19:00", EndTime: "20:00", Days: weekdays(time.Wednesday)},
	})
	require.Len(t, profiles, 1)

	math := profiles[0]
	assert.Len(t, math.Slots, 1)
	assert.Equal(t, 1, math.ActiveWeekdayCount())
	_, ok := math.SlotFor(time.Monday)
	assert.False(t, ok)

	slotted := SubjectWeeklyTime{Subject: "Math", Slots: []TimeSlot{{Weekday: time.Friday, StartTime: "19:00", EndTime: "19:00"}}}
	_, ok = slotted.SlotFor(time.Friday)
	assert.False(t, ok)
}

func TestIndexBySubject(t *testing.T) {
	profiles := ExtractSubjectWeeklyTime([]Routine{
		{Subject: "Math", Category: RoutineCategoryStudy, StartTime: "19:00", EndTime: "20:00", Days: weekdays(time.Monday)},
	})
	index := IndexBySubject(profiles)
	require.Contains(t, index, "Math")
	assert.Equal(t, 60, index["Math"].TotalMinutes)

	_, ok := index["Science"]
	assert.False(t, ok)

	var missing *SubjectWeeklyTime
	assert.Equal(t, 0, missing.ActiveWeekdayCount())
	_, ok = missing.SlotFor(time.Monday)
	assert.False(t, ok)
}
