package calendar

import (
	"sort"
	"time"
)

// WorkingHours bounds slot search to a daily window, in the location of
// the timestamps being searched. StartHour is inclusive, EndHour exclusive.
type WorkingHours struct {
	StartHour int
	EndHour   int
}

// DefaultWorkingHours is 9:00-17:00.
var DefaultWorkingHours = WorkingHours{StartHour: 9, EndHour: 17}

// ComputeFreeSlots returns the intervals within [timeMin, timeMax] that lie
// inside working hours on weekdays, do not overlap any busy block, and are
// at least minDuration long. Busy blocks may overlap and arrive unsorted.
func ComputeFreeSlots(timeMin, timeMax time.Time, busy []TimeRange, minDuration time.Duration, hours WorkingHours) []FreeSlot {
	if minDuration <= 0 {
		minDuration = 30 * time.Minute
	}
	if hours.EndHour <= hours.StartHour {
		hours = DefaultWorkingHours
	}

	merged := mergeRanges(busy)

	var slots []FreeSlot
	for _, window := range workingWindows(timeMin, timeMax, hours) {
		cursor := window.Start
		for _, b := range merged {
			if b.End.Before(cursor) || b.End.Equal(cursor) {
				continue
			}
			if b.Start.After(window.End) || b.Start.Equal(window.End) {
				break
			}
			if b.Start.After(cursor) {
				slots = appendSlot(slots, cursor, b.Start, minDuration)
			}
			if b.End.After(cursor) {
				cursor = b.End
			}
		}
		if cursor.Before(window.End) {
			slots = appendSlot(slots, cursor, window.End, minDuration)
		}
	}
	return slots
}

func appendSlot(slots []FreeSlot, start, end time.Time, minDuration time.Duration) []FreeSlot {
	if d := end.Sub(start); d >= minDuration {
		slots = append(slots, FreeSlot{Start: start, End: end, Duration: d})
	}
	return slots
}

// workingWindows enumerates the weekday working-hour windows overlapping
// [timeMin, timeMax], clipped to that range.
func workingWindows(timeMin, timeMax time.Time, hours WorkingHours) []TimeRange {
	var windows []TimeRange

	day := time.Date(timeMin.Year(), timeMin.Month(), timeMin.Day(), 0, 0, 0, 0, timeMin.Location())
	for !day.After(timeMax) {
		wd := day.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			start := day.Add(time.Duration(hours.StartHour) * time.Hour)
			end := day.Add(time.Duration(hours.EndHour) * time.Hour)
			if start.Before(timeMin) {
				start = timeMin
			}
			if end.After(timeMax) {
				end = timeMax
			}
			if start.Before(end) {
				windows = append(windows, TimeRange{Start: start, End: end})
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return windows
}

// mergeRanges sorts and coalesces overlapping or adjacent ranges.
func mergeRanges(ranges []TimeRange) []TimeRange {
	if len(ranges) == 0 {
		return nil
	}

	sorted := append([]TimeRange(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	merged := []TimeRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Start.After(last.End) {
			merged = append(merged, r)
			continue
		}
		if r.End.After(last.End) {
			last.End = r.End
		}
	}
	return merged
}
