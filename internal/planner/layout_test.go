package planner

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(name string, day Weekday, start, end string) SlotRef {
	return SlotRef{
		Course: Course{ID: name, Name: name, Code: name},
		Slot:   TimeSlot{Day: day, StartTime: start, EndTime: end},
	}
}

// layoutKey 只比较 课程名 → (列号, 总列数)
type layoutKey struct {
	Column int
	Total  int
}

func summarize(ps []PositionedSlot) map[string]layoutKey {
	out := make(map[string]layoutKey, len(ps))
	for _, p := range ps {
		out[p.Course.Name] = layoutKey{Column: p.ColumnIndex, Total: p.TotalColumns}
	}
	return out
}

func TestAssignPositions_Empty(t *testing.T) {
	got := AssignPositions(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAssignPositions_NoOverlap(t *testing.T) {
	got := AssignPositions([]SlotRef{
		ref("c", Mon, "13:00", "14:00"),
		ref("a", Mon, "09:00", "10:00"),
		ref("b", Mon, "10:00", "11:30"), // 与 a 首尾相接
	})

	want := map[string]layoutKey{
		"a": {0, 1},
		"b": {0, 1},
		"c": {0, 1},
	}
	if diff := cmp.Diff(want, summarize(got)); diff != "" {
		t.Errorf("布局不符 (-want +got):\n%s", diff)
	}
	// 按开始时间排序输出
	assert.Equal(t, "a", got[0].Course.Name)
	assert.Equal(t, "b", got[1].Course.Name)
	assert.Equal(t, "c", got[2].Course.Name)
}

func TestAssignPositions_TwoOverlapping(t *testing.T) {
	got := AssignPositions([]SlotRef{
		ref("a", Mon, "09:00", "10:30"),
		ref("b", Mon, "10:00", "11:00"),
	})

	want := map[string]layoutKey{
		"a": {0, 2},
		"b": {1, 2},
	}
	if diff := cmp.Diff(want, summarize(got)); diff != "" {
		t.Errorf("布局不符 (-want +got):\n%s", diff)
	}
}

func TestAssignPositions_ThreeMutuallyOverlapping(t *testing.T) {
	got := AssignPositions([]SlotRef{
		ref("a", Tue, "09:00", "12:00"),
		ref("b", Tue, "09:30", "11:00"),
		ref("c", Tue, "10:00", "10:45"),
	})

	cols := make(map[int]bool)
	for _, p := range got {
		assert.Equal(t, 3, p.TotalColumns, p.Course.Name)
		cols[p.ColumnIndex] = true
	}
	assert.Len(t, cols, 3, "三个块应占用三个不同列")
}

func TestAssignPositions_TransitiveWidening(t *testing.T) {
	// a 只与 b 重叠，但 b/c/d 形成三列，整个连通簇统一为 3 列
	got := summarize(AssignPositions([]SlotRef{
		ref("a", Wed, "09:00", "10:00"),
		ref("b", Wed, "09:30", "12:00"),
		ref("c", Wed, "10:30", "12:00"),
		ref("d", Wed, "10:30", "12:00"),
	}))

	want := map[string]layoutKey{
		"a": {0, 3},
		"b": {1, 3},
		"c": {0, 3},
		"d": {2, 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("布局不符 (-want +got):\n%s", diff)
	}
}

func TestAssignPositions_ChainCluster(t *testing.T) {
	// a-b、b-c 重叠而 a-c 不重叠：c 复用 a 的列，三块同属一个簇，统一为 2 列
	got := summarize(AssignPositions([]SlotRef{
		ref("a", Wed, "09:00", "10:00"),
		ref("b", Wed, "09:30", "11:00"),
		ref("c", Wed, "10:30", "12:00"),
	}))

	want := map[string]layoutKey{
		"a": {0, 2},
		"b": {1, 2},
		"c": {0, 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("布局不符 (-want +got):\n%s", diff)
	}
}

func TestAssignPositions_SeparateClusters(t *testing.T) {
	got := summarize(AssignPositions([]SlotRef{
		ref("a", Thu, "09:00", "10:30"),
		ref("b", Thu, "10:00", "11:00"),
		ref("c", Thu, "13:00", "14:00"),
	}))

	assert.Equal(t, layoutKey{0, 2}, got["a"])
	assert.Equal(t, layoutKey{1, 2}, got["b"])
	assert.Equal(t, layoutKey{0, 1}, got["c"], "独立簇应占满整宽")
}

func TestAssignPositions_StableForEqualStart(t *testing.T) {
	got := AssignPositions([]SlotRef{
		ref("first", Fri, "09:00", "10:00"),
		ref("second", Fri, "09:00", "10:00"),
	})

	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Course.Name)
	assert.Equal(t, 0, got[0].ColumnIndex)
	assert.Equal(t, "second", got[1].Course.Name)
	assert.Equal(t, 1, got[1].ColumnIndex)
}

func TestAssignPositions_DoesNotMutateInput(t *testing.T) {
	in := []SlotRef{
		ref("b", Mon, "11:00", "12:00"),
		ref("a", Mon, "09:00", "10:00"),
	}
	AssignPositions(in)
	assert.Equal(t, "b", in[0].Course.Name)
	assert.Equal(t, "a", in[1].Course.Name)
}

func TestLayoutWeek_GroupsByDay(t *testing.T) {
	courses := []Course{
		{Name: "자료구조", Slots: []TimeSlot{
			{Day: Mon, StartTime: "09:00", EndTime: "10:30"},
			{Day: Wed, StartTime: "09:00", EndTime: "10:30"},
		}},
		{Name: "운영체제", Slots: []TimeSlot{
			{Day: Mon, StartTime: "10:00", EndTime: "11:30"},
		}},
		{Name: "주말특강", Slots: []TimeSlot{
			{Day: "sat", StartTime: "10:00", EndTime: "11:30"},
		}},
	}

	week := LayoutWeek(courses)
	require.Len(t, week, 2)
	assert.Len(t, week[Mon], 2)
	assert.Equal(t, 2, MaxColumns(week[Mon]))
	assert.Len(t, week[Wed], 1)
	assert.Equal(t, 1, MaxColumns(week[Wed]))
	assert.Equal(t, 1, MaxColumns(nil))
}
