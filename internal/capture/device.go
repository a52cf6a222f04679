// Package capture supplies fixed-size sample windows from an audio input.
// Backends publish into a rolling Window; the session copies the most recent
// window on each accepted frame without blocking.
package capture

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/nupi-ai/plugin-pitch-compare/internal/timeline"
)

const (
	DefaultSampleRate = 44100
	DefaultWindowSize = 2048
	DefaultHighPassHz = 80

	MinWindowSize = 128
	MaxWindowSize = 16384
)

// ErrDevice is matched by every DeviceError via errors.Is.
var ErrDevice = errors.New("capture: device failure")

// ErrClosed is wrapped by DeviceError when a closed device is read.
var ErrClosed = errors.New("device closed")

// DeviceError reports a failure of the audio input. Sessions abort on it and
// never retry.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("capture: %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// Is reports whether target is ErrDevice.
func (e *DeviceError) Is(target error) bool {
	return target == ErrDevice
}

// Device is an open audio input.
type Device interface {
	// SampleRate is the rate the device actually delivers, in Hz.
	SampleRate() float64
	// WindowSize is the number of samples Window fills.
	WindowSize() int
	// Window copies the most recent WindowSize samples into dst, oldest
	// first. It never blocks on the audio hardware.
	Window(dst []float64) error
	// Close releases the device. Calling it more than once is safe.
	Close() error
}

// Params describes the input a session asks for.
type Params struct {
	SampleRate float64
	WindowSize int
	// HighPassHz is the cutoff of the pre-analysis high-pass filter.
	// Zero disables it.
	HighPassHz float64
}

// DefaultParams returns the parameters used when nothing is configured.
func DefaultParams() Params {
	return Params{
		SampleRate: DefaultSampleRate,
		WindowSize: DefaultWindowSize,
		HighPassHz: DefaultHighPassHz,
	}
}

// Validate checks the parameters before a device is opened.
func (p Params) Validate() error {
	if !(p.SampleRate > 0) || math.IsInf(p.SampleRate, 0) {
		return &timeline.ConfigError{Field: "sample_rate", Reason: fmt.Sprintf("must be positive, got %v", p.SampleRate)}
	}
	if p.WindowSize < MinWindowSize || p.WindowSize > MaxWindowSize || bits.OnesCount(uint(p.WindowSize)) != 1 {
		return &timeline.ConfigError{
			Field:  "window_size",
			Reason: fmt.Sprintf("must be a power of two in [%d, %d], got %d", MinWindowSize, MaxWindowSize, p.WindowSize),
		}
	}
	if p.HighPassHz < 0 || math.IsNaN(p.HighPassHz) {
		return &timeline.ConfigError{Field: "highpass_hz", Reason: fmt.Sprintf("must be >= 0, got %v", p.HighPassHz)}
	}
	return nil
}

// Factory opens a device. It is the only call of a session that may block,
// and it must honour ctx.
type Factory func(ctx context.Context, p Params) (Device, error)

// checkWindow verifies dst against the device window size.
func checkWindow(dst []float64, size int) error {
	if len(dst) != size {
		return &DeviceError{Op: "window", Err: fmt.Errorf("destination holds %d samples, device window is %d", len(dst), size)}
	}
	return nil
}
