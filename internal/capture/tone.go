package capture

import (
	"context"
	"math"
	"sync"
)

const (
	DefaultToneFrequency = 220.0
	DefaultToneAmplitude = 0.5
)

// ToneDevice is a synthetic input producing a sine wave. Every Window call
// advances the signal by one window of samples, quantizes it to 16-bit PCM
// and feeds it through the same rolling window and filter a hardware
// backend would use. Output depends only on the call count, never on wall
// time, which makes it suitable for tests and for running without a
// microphone.
type ToneDevice struct {
	mu         sync.Mutex
	sampleRate float64
	frequency  float64
	amplitude  float64
	window     *Window
	scratch    []float64
	pcm        []byte
	phase      float64
	closed     bool
}

// NewToneDevice returns a tone source for p.
func NewToneDevice(p Params, frequency, amplitude float64) (*ToneDevice, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &ToneDevice{
		sampleRate: p.SampleRate,
		frequency:  frequency,
		amplitude:  amplitude,
		window:     NewWindow(p.WindowSize, NewHighPass(p.HighPassHz, p.SampleRate)),
		scratch:    make([]float64, p.WindowSize),
		pcm:        make([]byte, 0, 2*p.WindowSize),
	}, nil
}

// ToneFactory returns a Factory opening ToneDevices.
func ToneFactory(frequency, amplitude float64) Factory {
	return func(ctx context.Context, p Params) (Device, error) {
		if err := ctx.Err(); err != nil {
			return nil, &DeviceError{Op: "open", Err: err}
		}
		return NewToneDevice(p, frequency, amplitude)
	}
}

// SetTone changes the generated frequency and amplitude. An amplitude of 0
// produces silence.
func (d *ToneDevice) SetTone(frequency, amplitude float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frequency = frequency
	d.amplitude = amplitude
}

func (d *ToneDevice) SampleRate() float64 { return d.sampleRate }

func (d *ToneDevice) WindowSize() int { return d.window.Size() }

// Window synthesizes the next block and copies the rolling window into dst.
func (d *ToneDevice) Window(dst []float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return &DeviceError{Op: "window", Err: ErrClosed}
	}
	if err := checkWindow(dst, d.window.Size()); err != nil {
		return err
	}

	step := 2 * math.Pi * d.frequency / d.sampleRate
	for i := range d.scratch {
		d.scratch[i] = d.amplitude * math.Sin(d.phase)
		d.phase = math.Mod(d.phase+step, 2*math.Pi)
	}
	d.pcm = float64ToPCM(d.pcm[:0], d.scratch)
	d.window.WriteFloat32(pcmToFloat32(d.pcm))
	return d.window.Snapshot(dst)
}

// Close marks the device closed.
func (d *ToneDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
