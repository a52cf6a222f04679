package timeline

import "math"

// None is the segment index reported when no segment is active.
const None = -1

// Segment is a labelled interval of the script.
type Segment struct {
	StartTime float64 `json:"startTime" yaml:"startTime"`
	EndTime   float64 `json:"endTime" yaml:"endTime"`
	Label     string  `json:"script" yaml:"script"`
}

// ValidateSegments checks that segments are finite, well-formed, sorted by
// start time and non-overlapping. An empty list is valid.
func ValidateSegments(segments []Segment) error {
	for i, s := range segments {
		if math.IsNaN(s.StartTime) || math.IsInf(s.StartTime, 0) ||
			math.IsNaN(s.EndTime) || math.IsInf(s.EndTime, 0) {
			return configErrorf("segments", "segment %d has non-finite bounds", i)
		}
		if !(s.StartTime < s.EndTime) {
			return configErrorf("segments", "segment %d: start %v is not before end %v", i, s.StartTime, s.EndTime)
		}
		if i > 0 && s.StartTime < segments[i-1].EndTime {
			return configErrorf("segments", "segment %d starts at %v before segment %d ends at %v",
				i, s.StartTime, i-1, segments[i-1].EndTime)
		}
	}
	return nil
}

// Resolve returns the index of the segment active at now. Segment i is active
// from its start until the next segment's start, so it absorbs any silence
// that follows it. The last segment is active from its start through its own
// end. Before the first start and after the last end nothing is active.
// segments must satisfy ValidateSegments.
func Resolve(now float64, segments []Segment) (int, bool) {
	if len(segments) == 0 || math.IsNaN(now) {
		return None, false
	}
	for i := range segments {
		start, end := EffectiveWindow(segments, i)
		if now < start {
			return None, false
		}
		last := i == len(segments)-1
		if now < end || (last && now <= end) {
			return i, true
		}
	}
	return None, false
}

// EffectiveWindow returns [start, end] of segment idx as used for rendering:
// end is the next segment's start, or the segment's own end when idx is last.
func EffectiveWindow(segments []Segment, idx int) (float64, float64) {
	s := segments[idx]
	if idx+1 < len(segments) {
		return s.StartTime, segments[idx+1].StartTime
	}
	return s.StartTime, s.EndTime
}
