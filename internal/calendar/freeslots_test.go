package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday 2026-08-24 in UTC.
func monday(hour, min int) time.Time {
	return time.Date(2026, 8, 24, hour, min, 0, 0, time.UTC)
}

func TestComputeFreeSlotsEmptyCalendar(t *testing.T) {
	slots := ComputeFreeSlots(monday(0, 0), monday(23, 59), nil, 30*time.Minute, DefaultWorkingHours)

	require.Len(t, slots, 1)
	assert.Equal(t, monday(9, 0), slots[0].Start)
	assert.Equal(t, monday(17, 0), slots[0].End)
	assert.Equal(t, 8*time.Hour, slots[0].Duration)
}

func TestComputeFreeSlotsAroundBusyBlocks(t *testing.T) {
	busy := []TimeRange{
		{Start: monday(10, 0), End: monday(11, 0)},
		{Start: monday(14, 0), End: monday(15, 30)},
	}

	slots := ComputeFreeSlots(monday(0, 0), monday(23, 59), busy, 30*time.Minute, DefaultWorkingHours)

	require.Len(t, slots, 3)
	assert.Equal(t, monday(9, 0), slots[0].Start)
	assert.Equal(t, monday(10, 0), slots[0].End)
	assert.Equal(t, monday(11, 0), slots[1].Start)
	assert.Equal(t, monday(14, 0), slots[1].End)
	assert.Equal(t, monday(15, 30), slots[2].Start)
	assert.Equal(t, monday(17, 0), slots[2].End)
}

func TestComputeFreeSlotsMinDurationFilter(t *testing.T) {
	// 20-minute gap between meetings is too short for a 30-minute slot.
	busy := []TimeRange{
		{Start: monday(9, 0), End: monday(12, 0)},
		{Start: monday(12, 20), End: monday(17, 0)},
	}

	slots := ComputeFreeSlots(monday(0, 0), monday(23, 59), busy, 30*time.Minute, DefaultWorkingHours)
	assert.Empty(t, slots)

	slots = ComputeFreeSlots(monday(0, 0), monday(23, 59), busy, 15*time.Minute, DefaultWorkingHours)
	require.Len(t, slots, 1)
	assert.Equal(t, monday(12, 0), slots[0].Start)
	assert.Equal(t, monday(12, 20), slots[0].End)
}

func TestComputeFreeSlotsOverlappingBusyMerged(t *testing.T) {
	busy := []TimeRange{
		{Start: monday(13, 0), End: monday(15, 0)},
		{Start: monday(10, 0), End: monday(12, 0)},
		{Start: monday(11, 0), End: monday(13, 30)},
	}

	slots := ComputeFreeSlots(monday(0, 0), monday(23, 59), busy, 30*time.Minute, DefaultWorkingHours)

	require.Len(t, slots, 2)
	assert.Equal(t, monday(9, 0), slots[0].Start)
	assert.Equal(t, monday(10, 0), slots[0].End)
	assert.Equal(t, monday(15, 0), slots[1].Start)
	assert.Equal(t, monday(17, 0), slots[1].End)
}

func TestComputeFreeSlotsSkipsWeekends(t *testing.T) {
	// Friday 2026-08-28 through Monday 2026-08-31.
	friday := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	nextMonday := time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC)

	slots := ComputeFreeSlots(friday, nextMonday, nil, 30*time.Minute, DefaultWorkingHours)

	require.Len(t, slots, 2)
	assert.Equal(t, time.Friday, slots[0].Start.Weekday())
	assert.Equal(t, time.Monday, slots[1].Start.Weekday())
}

func TestComputeFreeSlotsClipsToSearchRange(t *testing.T) {
	// Search starts mid-morning and ends mid-afternoon.
	slots := ComputeFreeSlots(monday(10, 30), monday(14, 0), nil, 30*time.Minute, DefaultWorkingHours)

	require.Len(t, slots, 1)
	assert.Equal(t, monday(10, 30), slots[0].Start)
	assert.Equal(t, monday(14, 0), slots[0].End)
}

func TestComputeFreeSlotsBusySpanningWindowEdge(t *testing.T) {
	// Busy from before working hours until 10:00.
	busy := []TimeRange{{Start: monday(7, 0), End: monday(10, 0)}}

	slots := ComputeFreeSlots(monday(0, 0), monday(23, 59), busy, 30*time.Minute, DefaultWorkingHours)

	require.Len(t, slots, 1)
	assert.Equal(t, monday(10, 0), slots[0].Start)
	assert.Equal(t, monday(17, 0), slots[0].End)
}

func TestComputeFreeSlotsCustomWorkingHours(t *testing.T) {
	slots := ComputeFreeSlots(monday(0, 0), monday(23, 59), nil, 30*time.Minute, WorkingHours{StartHour: 8, EndHour: 12})

	require.Len(t, slots, 1)
	assert.Equal(t, monday(8, 0), slots[0].Start)
	assert.Equal(t, monday(12, 0), slots[0].End)
}

func TestMergeRanges(t *testing.T) {
	tests := []struct {
		name  string
		input []TimeRange
		want  []TimeRange
	}{
		{
			name:  "empty",
			input: nil,
			want:  nil,
		},
		{
			name:  "disjoint preserved",
			input: []TimeRange{{monday(9, 0), monday(10, 0)}, {monday(11, 0), monday(12, 0)}},
			want:  []TimeRange{{monday(9, 0), monday(10, 0)}, {monday(11, 0), monday(12, 0)}},
		},
		{
			name:  "overlapping merged",
			input: []TimeRange{{monday(9, 0), monday(11, 0)}, {monday(10, 0), monday(12, 0)}},
			want:  []TimeRange{{monday(9, 0), monday(12, 0)}},
		},
		{
			name:  "contained absorbed",
			input: []TimeRange{{monday(9, 0), monday(12, 0)}, {monday(10, 0), monday(11, 0)}},
			want:  []TimeRange{{monday(9, 0), monday(12, 0)}},
		},
		{
			name:  "unsorted input",
			input: []TimeRange{{monday(11, 0), monday(12, 0)}, {monday(9, 0), monday(10, 0)}},
			want:  []TimeRange{{monday(9, 0), monday(10, 0)}, {monday(11, 0), monday(12, 0)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mergeRanges(tt.input))
		})
	}
}
