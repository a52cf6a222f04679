//go:build !portaudio && !malgo

package capture

import (
	"context"
	"errors"
)

// ErrNativeUnavailable indicates no hardware backend is compiled in.
var ErrNativeUnavailable = errors.New("capture: native backend not available (build with -tags portaudio or -tags malgo)")

// NativeAvailable reports that no native backend is compiled in.
func NativeAvailable() bool { return false }

// NativeBackend names the compiled-in hardware backend.
func NativeBackend() string { return "" }

// NewNativeDevice returns an error when built without a native backend tag.
func NewNativeDevice(_ context.Context, _ Params) (Device, error) {
	return nil, &DeviceError{Op: "open", Err: ErrNativeUnavailable}
}
