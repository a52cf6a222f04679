//go:build portaudio || malgo

package capture

import (
	"sync"
)

// streamDevice adapts a running hardware stream that publishes into a
// Window to the Device interface.
type streamDevice struct {
	window     *Window
	sampleRate float64

	mu      sync.Mutex
	closed  bool
	release func() error
}

func (d *streamDevice) SampleRate() float64 { return d.sampleRate }

func (d *streamDevice) WindowSize() int { return d.window.Size() }

func (d *streamDevice) Window(dst []float64) error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return &DeviceError{Op: "window", Err: ErrClosed}
	}
	return d.window.Snapshot(dst)
}

func (d *streamDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if d.release == nil {
		return nil
	}
	if err := d.release(); err != nil {
		return &DeviceError{Op: "close", Err: err}
	}
	return nil
}
