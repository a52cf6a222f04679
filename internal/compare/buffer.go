// Package compare keeps the reference pitch series next to the live user
// history and cuts both into time-windowed views for renderers.
package compare

import (
	"sync"

	"github.com/nupi-ai/plugin-pitch-compare/internal/timeline"
)

// DefaultHistoryCap bounds the user history when no segments are configured.
const DefaultHistoryCap = 1000

// Window is a closed time interval in seconds.
type Window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// View is a snapshot of the comparison inside a window. It shares no memory
// with the buffer.
type View struct {
	Window          Window                 `json:"window"`
	ReferencePoints []timeline.PitchSample `json:"reference_points"`
	UserPoints      []timeline.PitchSample `json:"user_points"`
	MaxMagnitude    float64                `json:"max_magnitude"`
}

// Buffer holds the reference series and the user history for one session.
// It is safe for concurrent use: views may be taken while samples are pushed.
type Buffer struct {
	mu      sync.RWMutex
	ref     *timeline.Reference
	history []float64
	head    int
	cap     int
}

// New returns an empty buffer. A positive historyCap turns on FIFO eviction
// of the oldest user samples; zero keeps every sample until Reset.
func New(historyCap int) *Buffer {
	if historyCap < 0 {
		historyCap = 0
	}
	return &Buffer{cap: historyCap}
}

// LoadReference validates series and replaces the reference. On error the
// previous reference stays in place. A successful load clears the history.
func (b *Buffer) LoadReference(series []timeline.PitchSample) error {
	ref, err := timeline.NewReference(series)
	if err != nil {
		return err
	}
	b.SetReference(ref)
	return nil
}

// SetReference installs an already validated reference and clears the history.
func (b *Buffer) SetReference(ref *timeline.Reference) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ref = ref
	b.history = b.history[:0]
	b.head = 0
}

// Reference returns the loaded reference, or nil.
func (b *Buffer) Reference() *timeline.Reference {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ref
}

// FrameDuration returns the reference cadence, or 0 before a reference is loaded.
func (b *Buffer) FrameDuration() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.ref == nil {
		return 0
	}
	return b.ref.FrameDuration()
}

// PushUserSample appends one estimate (0 for unvoiced).
func (b *Buffer) PushUserSample(value float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ref == nil {
		return &timeline.ConfigError{Field: "reference", Reason: "not loaded"}
	}
	b.history = append(b.history, value)
	if b.cap > 0 && len(b.history)-b.head > b.cap {
		b.head++
		if b.head >= b.cap {
			n := copy(b.history, b.history[b.head:])
			b.history = b.history[:n]
			b.head = 0
		}
	}
	return nil
}

// Reset drops the user history.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = b.history[:0]
	b.head = 0
}

// Len returns the number of user samples held.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.history) - b.head
}

// History returns a copy of the user history, oldest first.
func (b *Buffer) History() []float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]float64(nil), b.history[b.head:]...)
}

// View returns the reference samples inside [start, end] and the user
// history laid out from start at the reference cadence. MaxMagnitude is the
// largest pitch in either series, never below 1.
func (b *Buffer) View(start, end float64) View {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v := View{
		Window:          Window{Start: start, End: end},
		ReferencePoints: []timeline.PitchSample{},
		UserPoints:      []timeline.PitchSample{},
		MaxMagnitude:    1,
	}
	if b.ref == nil {
		return v
	}

	v.ReferencePoints = b.ref.Between(start, end)
	for _, p := range v.ReferencePoints {
		v.MaxMagnitude = max(v.MaxMagnitude, p.PitchHz)
	}

	frameDuration := b.ref.FrameDuration()
	user := b.history[b.head:]
	v.UserPoints = make([]timeline.PitchSample, len(user))
	for i, value := range user {
		v.UserPoints[i] = timeline.PitchSample{
			TimeSec: start + float64(i)*frameDuration,
			PitchHz: value,
		}
		v.MaxMagnitude = max(v.MaxMagnitude, value)
	}
	return v
}
