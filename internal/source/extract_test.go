package source

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/nupi-ai/plugin-pitch-compare/internal/timeline"
)

func TestExtractReferenceFrames(t *testing.T) {
	const sr = 44100
	samples := sineSamples(220, 0.5, sr, sr)
	series, err := ExtractReference(samples, sr, DefaultFrameSize)
	if err != nil {
		t.Fatal(err)
	}
	// Frames start while i+frameSize < len: 0, 4096, ..., 36864.
	if len(series) != 10 {
		t.Fatalf("got %d frames, want 10", len(series))
	}
	for k, p := range series {
		wantTime := float64(k*DefaultFrameSize) / sr
		if math.Abs(p.TimeSec-wantTime) > 1e-12 {
			t.Fatalf("frame %d time = %v, want %v", k, p.TimeSec, wantTime)
		}
		if math.Abs(p.PitchHz-220)/220 > 0.01 {
			t.Fatalf("frame %d pitch = %v, want ~220", k, p.PitchHz)
		}
	}
	if _, err := timeline.NewReference(series); err != nil {
		t.Fatalf("extracted series is not a valid reference: %v", err)
	}
}

func TestExtractReferenceSilenceIsUnvoiced(t *testing.T) {
	series, err := ExtractReference(make([]float64, 3*1024), 8000, 1024)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 2 {
		t.Fatalf("got %d frames, want 2", len(series))
	}
	for _, p := range series {
		if p.PitchHz != 0 {
			t.Fatalf("silent frame at %v has pitch %v", p.TimeSec, p.PitchHz)
		}
	}
}

func TestExtractReferenceRejectsBadParams(t *testing.T) {
	if _, err := ExtractReference(make([]float64, 4096), 44100, 100); !errors.Is(err, timeline.ErrConfiguration) {
		t.Fatalf("small frame error = %v, want ErrConfiguration", err)
	}
	if _, err := ExtractReference(make([]float64, 4096), 0, 1024); !errors.Is(err, timeline.ErrConfiguration) {
		t.Fatalf("zero rate error = %v, want ErrConfiguration", err)
	}
}

func TestExtractWAVAndOpenReference(t *testing.T) {
	const sr = 22050
	path := writeTempWAV(t, [][]float64{sineSamples(196, 0.6, sr, 2*sr)}, sr)

	series, err := ExtractWAV(path, 2048)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) < 2 {
		t.Fatalf("got %d frames, want at least 2", len(series))
	}

	ref, err := OpenReference(path, 2048)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := ref.FrameDuration(), 2048.0/sr; math.Abs(got-want) > 1e-12 {
		t.Fatalf("FrameDuration() = %v, want %v", got, want)
	}
}

func TestWriteReferenceRoundTrip(t *testing.T) {
	series := []timeline.PitchSample{{TimeSec: 0, PitchHz: 0}, {TimeSec: 0.1, PitchHz: 220.5}}
	var buf bytes.Buffer
	if err := WriteReference(&buf, series); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"time_sec": 0.1`) || !strings.Contains(buf.String(), `"pitch_hz": 220.5`) {
		t.Fatalf("unexpected encoding:\n%s", buf.String())
	}
	back, err := DecodeReference(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 2 || back[1] != series[1] {
		t.Fatalf("decoded %v, want %v", back, series)
	}
}

func TestExtractWAVSilenceAndTone(t *testing.T) {
	const sr = 44100

	silent := writeTempWAV(t, [][]float64{make([]float64, sr)}, sr)
	series, err := ExtractWAV(silent, DefaultFrameSize)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 10 {
		t.Fatalf("got %d frames, want 10", len(series))
	}
	for _, p := range series {
		if p.PitchHz != 0 {
			t.Fatalf("silent wav frame at %v has pitch %v, want unvoiced", p.TimeSec, p.PitchHz)
		}
	}

	tone := writeTempWAV(t, [][]float64{sineSamples(220, 0.5, sr, sr)}, sr)
	series, err = ExtractWAV(tone, DefaultFrameSize)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range series {
		if math.Abs(p.PitchHz-220)/220 > 0.01 {
			t.Fatalf("tone frame at %v has pitch %v, want ~220", p.TimeSec, p.PitchHz)
		}
	}
}

func TestNormalizeCentresSamples(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want []float64
	}{
		{name: "int16", raw: []int16{0, 16384, -32768}, want: []float64{0, 0.5, -1}},
		{name: "uint8", raw: []uint8{128, 192, 0}, want: []float64{0, 0.5, -1}},
		{name: "float32", raw: []float32{0, 0.25, -0.75}, want: []float64{0, 0.25, -0.75}},
	}
	for _, tt := range tests {
		got, err := normalize(tt.raw)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Fatalf("%s: normalize = %v, want %v", tt.name, got, tt.want)
			}
		}
	}
	if _, err := normalize([]int32{1}); err == nil {
		t.Fatal("expected error for unsupported sample type")
	}
}
