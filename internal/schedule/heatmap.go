package schedule

import "time"

// Interval is one submitted availability row of a participant, in UTC.
type Interval struct {
	Start     time.Time
	End       time.Time
	Available bool
}

// Respondent is a participant's view for aggregation purposes.
type Respondent struct {
	ID        string
	Name      string
	Intervals []Interval
}

// HeatmapSlot is the aggregated overlap for one display slot.
type HeatmapSlot struct {
	Start            time.Time `json:"startTime"`
	End              time.Time `json:"endTime"`
	AvailableCount   int       `json:"availableCount"`
	AvailableNames   []string  `json:"availableNames"`
	UnavailableNames []string  `json:"unavailableNames"`
	Ratio            float64   `json:"ratio"`
	FullyAvailable   bool      `json:"fullyAvailable"`
}

// covers reports whether the respondent has at least one available interval
// fully covering [start, end). Partial overlap does not count, so a
// respondent may submit at a coarser or finer granularity than the display
// grid without losing or fabricating overlap.
func covers(r Respondent, start, end time.Time) bool {
	for _, iv := range r.Intervals {
		if iv.Available && !iv.Start.After(start) && !iv.End.Before(end) {
			return true
		}
	}
	return false
}

// Heatmap computes the overlap matrix for the given display slots. It is a
// read-time computation over the full respondent set; results must be
// re-derived whenever availability data changes, never carried over.
func Heatmap(respondents []Respondent, slots []Slot) []HeatmapSlot {
	total := len(respondents)
	out := make([]HeatmapSlot, 0, len(slots))
	for _, slot := range slots {
		hs := HeatmapSlot{Start: slot.Start, End: slot.End}
		for _, r := range respondents {
			if covers(r, slot.Start, slot.End) {
				hs.AvailableNames = append(hs.AvailableNames, r.Name)
			} else {
				hs.UnavailableNames = append(hs.UnavailableNames, r.Name)
			}
		}
		hs.AvailableCount = len(hs.AvailableNames)
		if total > 0 {
			hs.Ratio = float64(hs.AvailableCount) / float64(total)
			hs.FullyAvailable = hs.AvailableCount == total
		}
		out = append(out, hs)
	}
	return out
}

// FullyAvailableSlots filters a heatmap down to the slots every respondent
// can attend, used when recommending a time to confirm.
func FullyAvailableSlots(heatmap []HeatmapSlot) []HeatmapSlot {
	var out []HeatmapSlot
	for _, hs := range heatmap {
		if hs.FullyAvailable {
			out = append(out, hs)
		}
	}
	return out
}
