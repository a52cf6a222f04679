package pitch

import (
	"math"
	"math/rand"
	"testing"
)

func sine(freq, amp, sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}
	return out
}

func TestEstimateSine(t *testing.T) {
	tests := []struct {
		name       string
		freq       float64
		sampleRate float64
		size       int
	}{
		{name: "220Hz/44100/2048", freq: 220, sampleRate: 44100, size: 2048},
		{name: "440Hz/44100/2048", freq: 440, sampleRate: 44100, size: 2048},
		{name: "220Hz/48000/2048", freq: 220, sampleRate: 48000, size: 2048},
		{name: "196Hz/44100/2048", freq: 196, sampleRate: 44100, size: 2048},
		{name: "330Hz/44100/4096", freq: 330, sampleRate: 44100, size: 4096},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hz, ok := Estimate(sine(tt.freq, 0.8, tt.sampleRate, tt.size), tt.sampleRate)
			if !ok {
				t.Fatal("expected voiced estimate")
			}
			if rel := math.Abs(hz-tt.freq) / tt.freq; rel > 0.01 {
				t.Fatalf("Estimate() = %.2f Hz, want within 1%% of %.0f Hz", hz, tt.freq)
			}
		})
	}
}

func TestEstimateBelowGateIsUnvoiced(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	noise := make([]float64, 2048)
	for i := range noise {
		noise[i] = (rng.Float64()*2 - 1) * 0.009
	}

	frames := map[string][]float64{
		"zero":       make([]float64, 2048),
		"quiet sine": sine(220, 0.01, 44100, 2048),
		"quiet tone": sine(880, 0.012, 44100, 2048),
		"noise":      noise,
	}
	for name, frame := range frames {
		if RMS(frame) >= RMSGate {
			t.Fatalf("%s: fixture RMS %.4f is not below the gate", name, RMS(frame))
		}
		hz, ok := Estimate(frame, 44100)
		if ok || hz != Unvoiced {
			t.Fatalf("%s: Estimate() = (%v, %v), want unvoiced", name, hz, ok)
		}
	}
}

func TestEstimateShortFrame(t *testing.T) {
	frame := sine(440, 0.8, 44100, 2*MinLag-1)
	if hz, ok := Estimate(frame, 44100); ok {
		t.Fatalf("Estimate() = %v, want unvoiced for frame of %d samples", hz, len(frame))
	}
}

func TestEstimateInvalidSampleRate(t *testing.T) {
	frame := sine(220, 0.8, 44100, 2048)
	for _, sr := range []float64{0, -44100, math.NaN()} {
		if _, ok := Estimate(frame, sr); ok {
			t.Fatalf("sample rate %v: expected unvoiced", sr)
		}
	}
}

func TestEstimateIsIdempotent(t *testing.T) {
	frame := sine(261.63, 0.5, 44100, 2048)
	first, _ := Estimate(frame, 44100)
	for i := 0; i < 3; i++ {
		got, _ := Estimate(frame, 44100)
		if got != first {
			t.Fatalf("call %d: Estimate() = %v, want %v", i, got, first)
		}
	}
}

func TestEstimateDoesNotMutateFrame(t *testing.T) {
	frame := sine(220, 0.8, 44100, 1024)
	orig := append([]float64(nil), frame...)
	Estimate(frame, 44100)
	for i := range frame {
		if frame[i] != orig[i] {
			t.Fatalf("frame[%d] changed: %v -> %v", i, orig[i], frame[i])
		}
	}
}

func TestValueSentinel(t *testing.T) {
	if got := Value(make([]float64, 2048), 44100); got != Unvoiced {
		t.Fatalf("Value(silence) = %v, want %v", got, Unvoiced)
	}
	if got := Value(sine(220, 0.8, 44100, 2048), 44100); got <= 0 {
		t.Fatalf("Value(sine) = %v, want positive", got)
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Fatalf("RMS(nil) = %v, want 0", got)
	}
	if got := RMS([]float64{1, -1, 1, -1}); got != 1 {
		t.Fatalf("RMS(square) = %v, want 1", got)
	}
}
