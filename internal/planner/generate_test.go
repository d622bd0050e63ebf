package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func section(code, sec string, credits int, slots ...TimeSlot) Course {
	return Course{ID: code + "-" + sec, Name: code, Code: code, Section: sec, Credits: credits, Slots: slots}
}

func TestGenerate_PicksNonConflictingSections(t *testing.T) {
	groups := []CourseGroup{
		{Name: "DS", Options: []Course{
			section("DS", "01", 3, TimeSlot{Day: Mon, StartTime: "09:00", EndTime: "10:30"}),
			section("DS", "02", 3, TimeSlot{Day: Tue, StartTime: "09:00", EndTime: "10:30"}),
		}},
		{Name: "OS", Options: []Course{
			section("OS", "01", 3, TimeSlot{Day: Mon, StartTime: "10:00", EndTime: "11:30"}),
		}},
	}

	got, err := Generate(context.Background(), groups, GenerateOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1, "DS-01 与 OS-01 冲突，只剩一种组合")

	s := got[0]
	assert.Equal(t, "schedule-1", s.ID)
	assert.Equal(t, 6, s.TotalCredits)
	require.Len(t, s.Courses, 2)
	assert.Equal(t, "DS-02", s.Courses[0].ID)
	assert.Equal(t, "OS-01", s.Courses[1].ID)
	assert.Equal(t, []Weekday{Wed, Thu, Fri}, s.EmptyDays)
}

func TestGenerate_BackToBackIsNotConflict(t *testing.T) {
	groups := []CourseGroup{
		{Name: "A", Options: []Course{section("A", "01", 3, TimeSlot{Day: Mon, StartTime: "09:00", EndTime: "10:00"})}},
		{Name: "B", Options: []Course{section("B", "01", 3, TimeSlot{Day: Mon, StartTime: "10:00", EndTime: "11:00"})}},
	}

	got, err := Generate(context.Background(), groups, GenerateOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 100, got[0].CompactScore)
	assert.Contains(t, got[0].Warnings, "周一 有 1 处课程首尾相接，没有课间休息")
	assert.Contains(t, got[0].Warnings, "周一 有第 1 节课")
}

func TestGenerate_AllConflict(t *testing.T) {
	slot := TimeSlot{Day: Wed, StartTime: "13:00", EndTime: "15:00"}
	groups := []CourseGroup{
		{Name: "A", Options: []Course{section("A", "01", 3, slot)}},
		{Name: "B", Options: []Course{section("B", "01", 3, slot)}},
	}

	_, err := Generate(context.Background(), groups, GenerateOptions{})
	assert.ErrorIs(t, err, ErrAllConflict)
}

func TestGenerate_NoCourses(t *testing.T) {
	_, err := Generate(context.Background(), nil, GenerateOptions{})
	assert.ErrorIs(t, err, ErrNoCourses)

	_, err = Generate(context.Background(), []CourseGroup{{Name: "empty"}}, GenerateOptions{})
	assert.ErrorIs(t, err, ErrNoCourses)
}

func TestGenerate_MaxCredits(t *testing.T) {
	groups := []CourseGroup{
		{Name: "A", Options: []Course{section("A", "01", 3, TimeSlot{Day: Mon, StartTime: "09:00", EndTime: "10:00"})}},
		{Name: "B", Options: []Course{section("B", "01", 3, TimeSlot{Day: Tue, StartTime: "09:00", EndTime: "10:00"})}},
	}

	limit := 5
	_, err := Generate(context.Background(), groups, GenerateOptions{MaxCredits: &limit})
	assert.ErrorIs(t, err, ErrAllConflict)

	limit = 6
	got, err := Generate(context.Background(), groups, GenerateOptions{MaxCredits: &limit})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestGenerate_MaxResultsAndOrdering(t *testing.T) {
	// A 的两个分班与 B 组合：紧凑的组合应排在前面
	groups := []CourseGroup{
		{Name: "A", Options: []Course{
			section("A", "far", 3, TimeSlot{Day: Mon, StartTime: "09:00", EndTime: "10:00"}),
			section("A", "near", 3, TimeSlot{Day: Mon, StartTime: "14:00", EndTime: "15:00"}),
		}},
		{Name: "B", Options: []Course{
			section("B", "01", 3, TimeSlot{Day: Mon, StartTime: "15:00", EndTime: "16:00"}),
		}},
	}

	got, err := Generate(context.Background(), groups, GenerateOptions{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A-near", got[0].Courses[0].ID)
	assert.Greater(t, got[0].CompactScore, got[1].CompactScore)

	got, err = Generate(context.Background(), groups, GenerateOptions{
		MaxResults: 1,
		NewID:      func(n int) string { return "custom" },
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "custom", got[0].ID)
}

func TestGenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	groups := []CourseGroup{
		{Name: "A", Options: []Course{section("A", "01", 3, TimeSlot{Day: Mon, StartTime: "09:00", EndTime: "10:00"})}},
	}
	_, err := Generate(ctx, groups, GenerateOptions{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGenerate_Recommendations(t *testing.T) {
	groups := []CourseGroup{
		{Name: "A", Options: []Course{section("A", "01", 3,
			TimeSlot{Day: Mon, StartTime: "13:00", EndTime: "14:00"},
			TimeSlot{Day: Wed, StartTime: "13:00", EndTime: "14:00"},
		)}},
	}
	got, err := Generate(context.Background(), groups, GenerateOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []Weekday{Tue, Thu, Fri}, got[0].EmptyDays)
	assert.Contains(t, got[0].Recommendations, "周二、周四、周五 全天无课")
	assert.Empty(t, got[0].Warnings)
}
