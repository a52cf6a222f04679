package timeline

import "math"

// FrameClock turns elapsed time into reference frame indices and reports
// each index at most once. The zero value is inert: TryAdvance never
// reports a frame.
type FrameClock struct {
	inverse float64
	last    int64
}

// NewFrameClock returns a clock for the given frame duration in seconds.
func NewFrameClock(frameDuration float64) (*FrameClock, error) {
	if !(frameDuration > 0) || math.IsInf(frameDuration, 0) {
		return nil, configErrorf("frame_duration", "must be positive and finite, got %v", frameDuration)
	}
	return &FrameClock{inverse: 1 / frameDuration, last: -1}, nil
}

// FrameClockFor returns a clock running at the cadence of ref.
func FrameClockFor(ref *Reference) (*FrameClock, error) {
	if ref == nil {
		return nil, configErrorf("reference", "not loaded")
	}
	return NewFrameClock(ref.FrameDuration())
}

// Index returns floor(elapsed / frameDuration) without touching the cursor.
// Negative elapsed times map to -1.
func (c *FrameClock) Index(elapsed float64) int64 {
	if c.inverse == 0 || math.IsNaN(elapsed) || elapsed < 0 {
		return -1
	}
	return int64(math.Floor(elapsed * c.inverse))
}

// TryAdvance returns the frame index for elapsed and true when it is
// strictly greater than the last index returned. Frames skipped between two
// calls are not reported.
func (c *FrameClock) TryAdvance(elapsed float64) (int64, bool) {
	if c.inverse == 0 {
		return 0, false
	}
	idx := c.Index(elapsed)
	if idx < 0 || idx <= c.last {
		return 0, false
	}
	c.last = idx
	return idx, true
}

// Last returns the last reported index, or -1 after Reset.
func (c *FrameClock) Last() int64 {
	if c.inverse == 0 {
		return -1
	}
	return c.last
}

// Reset forgets the last reported index.
func (c *FrameClock) Reset() {
	c.last = -1
}
