package capture

import (
	"sync"
)

// Window is a thread-safe rolling buffer of the most recent samples. Writers
// never block: when the buffer is full the oldest samples are overwritten.
// Samples pass through an optional high-pass filter on the way in.
type Window struct {
	mu     sync.Mutex
	buf    []float64
	head   int // next write position
	filled int
	filter *HighPass
	err    error
}

// NewWindow returns a window holding size samples. filter may be nil.
func NewWindow(size int, filter *HighPass) *Window {
	return &Window{
		buf:    make([]float64, size),
		filter: filter,
	}
}

// Size returns the window length in samples.
func (w *Window) Size() int { return len(w.buf) }

// Filled returns how many samples have been written, capped at Size.
func (w *Window) Filled() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.filled
}

// Write appends samples, dropping the oldest ones on overflow.
func (w *Window) Write(samples []float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range samples {
		w.put(s)
	}
}

// WriteFloat32 is Write for float32 PCM as delivered by audio backends.
func (w *Window) WriteFloat32(samples []float32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range samples {
		w.put(float64(s))
	}
}

func (w *Window) put(s float64) {
	if w.filter != nil {
		s = w.filter.Process(s)
	}
	w.buf[w.head] = s
	w.head = (w.head + 1) % len(w.buf)
	if w.filled < len(w.buf) {
		w.filled++
	}
}

// Fail records a background read failure. Every later Snapshot returns it.
func (w *Window) Fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err == nil {
		w.err = err
	}
}

// Snapshot copies the window into dst, oldest sample first. Until the
// window has filled up the missing leading samples read as silence.
func (w *Window) Snapshot(dst []float64) error {
	if err := checkWindow(dst, len(w.buf)); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	n := len(w.buf)
	pad := n - w.filled
	clear(dst[:pad])
	start := (w.head - w.filled + n) % n
	for i := 0; i < w.filled; i++ {
		dst[pad+i] = w.buf[(start+i)%n]
	}
	return nil
}

// Reset discards buffered samples and filter state.
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	clear(w.buf)
	w.head = 0
	w.filled = 0
	if w.filter != nil {
		w.filter.Reset()
	}
}
