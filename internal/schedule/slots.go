package schedule

import "time"

// DefaultDisplaySlotSize is the grid granularity used by the availability
// selector and the heatmap.
const DefaultDisplaySlotSize = 30 * time.Minute

// Slot is a half-open candidate interval [Start, End).
type Slot struct {
	Start time.Time `json:"startTime"`
	End   time.Time `json:"endTime"`
}

// DailySlots generates the persisted candidate slots for a POLL meeting:
// one slot per calendar day from rangeStart through rangeEnd inclusive, each
// spanning the meeting duration rounded up to whole hours. The cursor
// advances by one day, not by the slot duration, so a single slot stands in
// for "this day".
//
// rangeEnd before rangeStart yields an empty set; equal bounds yield exactly
// one slot. Callers generate these once, at meeting creation, and persist
// them; they are never regenerated.
func DailySlots(rangeStart, rangeEnd time.Time, durationMinutes int) []Slot {
	var slots []Slot
	span := time.Duration((durationMinutes+59)/60) * time.Hour
	for cursor := rangeStart; !cursor.After(rangeEnd); cursor = cursor.AddDate(0, 0, 1) {
		slots = append(slots, Slot{Start: cursor, End: cursor.Add(span)})
	}
	return slots
}

// DisplaySlots partitions [rangeStart, rangeEnd) into fixed-size intervals
// for interactive selection and heatmap aggregation. This is a denser grid
// than the persisted daily slots, recomputed on every read and never stored.
func DisplaySlots(rangeStart, rangeEnd time.Time, slotSize time.Duration) []Slot {
	if slotSize <= 0 {
		slotSize = DefaultDisplaySlotSize
	}
	var slots []Slot
	for cursor := rangeStart; cursor.Before(rangeEnd); cursor = cursor.Add(slotSize) {
		slots = append(slots, Slot{Start: cursor, End: cursor.Add(slotSize)})
	}
	return slots
}
