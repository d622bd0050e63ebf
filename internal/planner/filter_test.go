package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduleWith(id string, emptyDays []Weekday, slots ...TimeSlot) Schedule {
	return Schedule{
		ID:        id,
		Courses:   []Course{{ID: id + "-c", Name: id, Slots: slots}},
		EmptyDays: emptyDays,
	}
}

func ids(ss []Schedule) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.ID)
	}
	return out
}

func TestFilterSchedules_Empty(t *testing.T) {
	got := FilterSchedules(nil, ScheduleFilters{EmptyDays: []Weekday{Fri}})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterSchedules_NoConstraintsKeepsAllInOrder(t *testing.T) {
	in := []Schedule{
		scheduleWith("s3", nil, TimeSlot{Day: Mon, StartTime: "09:00", EndTime: "10:00"}),
		scheduleWith("s1", []Weekday{Fri}),
		scheduleWith("s2", nil, TimeSlot{Day: Tue, StartTime: "13:00", EndTime: "15:00"}),
	}
	got := FilterSchedules(in, ScheduleFilters{EmptyDays: []Weekday{}, ExcludePeriods: []PeriodExclusion{}})
	assert.Equal(t, []string{"s3", "s1", "s2"}, ids(got))
}

func TestFilterSchedules_RequiredEmptyDays(t *testing.T) {
	in := []Schedule{
		scheduleWith("fri-only", []Weekday{Fri}),
		scheduleWith("thu-fri", []Weekday{Thu, Fri}),
		scheduleWith("none", nil),
	}

	got := FilterSchedules(in, ScheduleFilters{EmptyDays: []Weekday{Fri}})
	assert.Equal(t, []string{"fri-only", "thu-fri"}, ids(got), "空出天数多于要求仍然保留")

	// 周六不在五天教学周内，任何课表都不可能满足
	got = FilterSchedules(in, ScheduleFilters{EmptyDays: []Weekday{Fri, "sat"}})
	assert.Empty(t, got)
}

func TestFilterSchedules_ExcludedPeriods(t *testing.T) {
	spanning := scheduleWith("mon-2-4", nil, TimeSlot{Day: Mon, StartTime: "10:00", EndTime: "12:50"})
	explicit := scheduleWith("explicit", nil, TimeSlot{Day: Mon, StartTime: "13:00", EndTime: "14:00", StartPeriod: 2, EndPeriod: 4})
	otherDay := scheduleWith("tue-2-4", nil, TimeSlot{Day: Tue, StartTime: "10:00", EndTime: "12:50"})
	afternoon := scheduleWith("mon-6", nil, TimeSlot{Day: Mon, StartTime: "14:00", EndTime: "14:50"})

	filters := ScheduleFilters{ExcludePeriods: []PeriodExclusion{{Day: Mon, Periods: []int{3}}}}
	got := FilterSchedules([]Schedule{spanning, explicit, otherDay, afternoon}, filters)
	assert.Equal(t, []string{"tue-2-4", "mon-6"}, ids(got))
}

func TestFilterSchedules_SingleConflictingSlotDisqualifies(t *testing.T) {
	s := Schedule{
		ID: "multi",
		Courses: []Course{
			{Name: "ok", Slots: []TimeSlot{{Day: Wed, StartTime: "14:00", EndTime: "15:00"}}},
			{Name: "bad", Slots: []TimeSlot{
				{Day: Thu, StartTime: "15:00", EndTime: "16:00"},
				{Day: Fri, StartTime: "09:00", EndTime: "09:50"},
			}},
		},
	}
	filters := ScheduleFilters{ExcludePeriods: []PeriodExclusion{{Day: Fri, Periods: []int{1}}}}
	assert.Empty(t, FilterSchedules([]Schedule{s}, filters))
}

func TestFilterSchedules_IgnoresMaxCredits(t *testing.T) {
	limit := 3
	s := scheduleWith("heavy", nil)
	s.TotalCredits = 21
	got := FilterSchedules([]Schedule{s}, ScheduleFilters{MaxCredits: &limit})
	assert.Len(t, got, 1)
}
