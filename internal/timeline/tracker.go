package timeline

// Transition describes a change of the active segment. From and To are
// segment indices or None.
type Transition struct {
	From int
	To   int
}

// Entered reports whether the transition activates a segment.
func (t Transition) Entered() bool { return t.To != None }

// SegmentTracker follows the active segment as the playhead moves and
// reports every change of the resolved index.
type SegmentTracker struct {
	segments []Segment
	current  int
}

// NewSegmentTracker validates segments and returns a tracker with no active
// segment. The tracker keeps its own copy of the list.
func NewSegmentTracker(segments []Segment) (*SegmentTracker, error) {
	if err := ValidateSegments(segments); err != nil {
		return nil, err
	}
	return &SegmentTracker{
		segments: append([]Segment(nil), segments...),
		current:  None,
	}, nil
}

// Update resolves now and returns the transition and true when the active
// index differs from the previous call.
func (t *SegmentTracker) Update(now float64) (Transition, bool) {
	idx, _ := Resolve(now, t.segments)
	if idx == t.current {
		return Transition{}, false
	}
	tr := Transition{From: t.current, To: idx}
	t.current = idx
	return tr, true
}

// Current returns the active segment index, or None.
func (t *SegmentTracker) Current() int { return t.current }

// Window returns the effective window of the active segment.
func (t *SegmentTracker) Window() (float64, float64, bool) {
	if t.current == None {
		return 0, 0, false
	}
	start, end := EffectiveWindow(t.segments, t.current)
	return start, end, true
}

// Segment returns the active segment.
func (t *SegmentTracker) Segment() (Segment, bool) {
	if t.current == None {
		return Segment{}, false
	}
	return t.segments[t.current], true
}

// Segments returns a copy of the tracked segments.
func (t *SegmentTracker) Segments() []Segment {
	return append([]Segment(nil), t.segments...)
}

// Empty reports whether the tracker runs without segmentation.
func (t *SegmentTracker) Empty() bool { return len(t.segments) == 0 }

// Reset forgets the active segment.
func (t *SegmentTracker) Reset() { t.current = None }
