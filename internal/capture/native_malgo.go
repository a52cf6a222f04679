//go:build malgo && !portaudio

package capture

import (
	"context"
	"fmt"

	"github.com/gen2brain/malgo"
)

// NativeAvailable reports that a hardware backend is compiled in.
func NativeAvailable() bool { return true }

// NativeBackend names the compiled-in hardware backend.
func NativeBackend() string { return "malgo" }

// NewNativeDevice opens the default capture device through miniaudio. The
// device callback decodes s16le frames straight into the rolling window.
func NewNativeDevice(ctx context.Context, p Params) (Device, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &DeviceError{Op: "open", Err: err}
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return nil, &DeviceError{Op: "init context", Err: err}
	}
	freeContext := func() error {
		err := mctx.Uninit()
		mctx.Free()
		return err
	}

	window := NewWindow(p.WindowSize, NewHighPass(p.HighPassHz, p.SampleRate))

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = 1
	cfg.SampleRate = uint32(p.SampleRate)
	cfg.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			if len(input) == 0 {
				return
			}
			window.WriteFloat32(pcmToFloat32(input))
		},
	}

	device, err := malgo.InitDevice(mctx.Context, cfg, callbacks)
	if err != nil {
		freeContext()
		return nil, &DeviceError{Op: "init device", Err: err}
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		freeContext()
		return nil, &DeviceError{Op: "start device", Err: err}
	}

	return &streamDevice{
		window:     window,
		sampleRate: p.SampleRate,
		release: func() error {
			stopErr := device.Stop()
			device.Uninit()
			ctxErr := freeContext()
			if stopErr != nil {
				return fmt.Errorf("stop device: %w", stopErr)
			}
			return ctxErr
		},
	}, nil
}
