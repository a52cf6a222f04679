//go:build portaudio

package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// NativeAvailable reports that a hardware backend is compiled in.
func NativeAvailable() bool { return true }

// NativeBackend names the compiled-in hardware backend.
func NativeBackend() string { return "portaudio" }

// NewNativeDevice opens the default input through PortAudio. A goroutine
// performs blocking reads of a quarter window and publishes them into the
// rolling window.
func NewNativeDevice(ctx context.Context, p Params) (Device, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &DeviceError{Op: "open", Err: err}
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, &DeviceError{Op: "initialize portaudio", Err: err}
	}

	hop := p.WindowSize / 4
	buf := make([]float32, hop)
	stream, err := portaudio.OpenDefaultStream(1, 0, p.SampleRate, hop, buf)
	if err != nil {
		portaudio.Terminate()
		return nil, &DeviceError{Op: "open stream", Err: err}
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, &DeviceError{Op: "start stream", Err: err}
	}

	window := NewWindow(p.WindowSize, NewHighPass(p.HighPassHz, p.SampleRate))
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			if err := stream.Read(); err != nil {
				if errors.Is(err, portaudio.InputOverflowed) {
					continue
				}
				select {
				case <-done:
				default:
					window.Fail(&DeviceError{Op: "read", Err: err})
				}
				return
			}
			window.WriteFloat32(buf)
		}
	}()

	return &streamDevice{
		window:     window,
		sampleRate: p.SampleRate,
		release: func() error {
			close(done)
			abortErr := stream.Abort()
			wg.Wait()
			closeErr := stream.Close()
			portaudio.Terminate()
			if abortErr != nil {
				return fmt.Errorf("abort stream: %w", abortErr)
			}
			return closeErr
		},
	}, nil
}
