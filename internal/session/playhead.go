package session

import (
	"math"
	"sync/atomic"
)

// Playhead supplies the current media time in the time base of the
// reference series and segments.
type Playhead interface {
	Now() float64
}

// ExternalPlayhead is a Playhead driven by an outside media clock through
// Set. It is safe for concurrent use.
type ExternalPlayhead struct {
	bits atomic.Uint64
}

// Set records the media time in seconds. Non-finite values are ignored.
func (p *ExternalPlayhead) Set(sec float64) {
	if math.IsNaN(sec) || math.IsInf(sec, 0) {
		return
	}
	p.bits.Store(math.Float64bits(sec))
}

// Now returns the last value passed to Set, or 0.
func (p *ExternalPlayhead) Now() float64 {
	return math.Float64frombits(p.bits.Load())
}
