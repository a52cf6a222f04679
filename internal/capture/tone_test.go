package capture

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/nupi-ai/plugin-pitch-compare/internal/pitch"
)

func TestToneDeviceProducesPitch(t *testing.T) {
	dev, err := ToneFactory(220, 0.5)(context.Background(), DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	dst := make([]float64, dev.WindowSize())
	for i := 0; i < 2; i++ {
		if err := dev.Window(dst); err != nil {
			t.Fatal(err)
		}
	}
	hz, ok := pitch.Estimate(dst, dev.SampleRate())
	if !ok {
		t.Fatal("tone window was unvoiced")
	}
	if rel := math.Abs(hz-220) / 220; rel > 0.02 {
		t.Fatalf("tone pitch = %.2f Hz, want ~220 Hz", hz)
	}
}

func TestToneDeviceSilence(t *testing.T) {
	dev, err := NewToneDevice(DefaultParams(), 220, 0)
	if err != nil {
		t.Fatal(err)
	}
	dst := make([]float64, dev.WindowSize())
	if err := dev.Window(dst); err != nil {
		t.Fatal(err)
	}
	if _, ok := pitch.Estimate(dst, dev.SampleRate()); ok {
		t.Fatal("silent tone produced a pitch")
	}

	dev.SetTone(330, 0.5)
	dev.Window(dst)
	dev.Window(dst)
	if hz := pitch.Value(dst, dev.SampleRate()); math.Abs(hz-330)/330 > 0.02 {
		t.Fatalf("pitch after SetTone = %.2f Hz, want ~330 Hz", hz)
	}
}

func TestToneDeviceClosed(t *testing.T) {
	dev, err := NewToneDevice(DefaultParams(), 220, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Close(); err != nil {
		t.Fatal(err)
	}
	if err := dev.Close(); err != nil {
		t.Fatalf("second Close() = %v", err)
	}
	err = dev.Window(make([]float64, dev.WindowSize()))
	if !errors.Is(err, ErrDevice) || !errors.Is(err, ErrClosed) {
		t.Fatalf("Window after Close = %v, want DeviceError(ErrClosed)", err)
	}
}

func TestToneDeviceWrongWindow(t *testing.T) {
	dev, _ := NewToneDevice(DefaultParams(), 220, 0.5)
	if err := dev.Window(make([]float64, 10)); !errors.Is(err, ErrDevice) {
		t.Fatalf("Window with short dst = %v, want DeviceError", err)
	}
}
