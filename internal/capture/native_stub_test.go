//go:build !portaudio && !malgo

package capture

import (
	"context"
	"errors"
	"testing"
)

func TestNativeUnavailable(t *testing.T) {
	if NativeAvailable() {
		t.Fatal("NativeAvailable() = true without a backend tag")
	}
	if NativeBackend() != "" {
		t.Fatalf("NativeBackend() = %q, want empty", NativeBackend())
	}
	_, err := NewNativeDevice(context.Background(), DefaultParams())
	if !errors.Is(err, ErrNativeUnavailable) || !errors.Is(err, ErrDevice) {
		t.Fatalf("NewNativeDevice error = %v, want ErrNativeUnavailable as DeviceError", err)
	}
}
