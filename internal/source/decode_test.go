package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nupi-ai/plugin-pitch-compare/internal/timeline"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDecodeReferenceJSONAndYAML(t *testing.T) {
	inputs := map[string]string{
		"json": `[{"time_sec": 0, "pitch_hz": 0}, {"time_sec": 0.0929, "pitch_hz": 220.5}]`,
		"yaml": "- time_sec: 0\n  pitch_hz: 0\n- time_sec: 0.0929\n  pitch_hz: 220.5\n",
	}
	for name, in := range inputs {
		series, err := DecodeReference(strings.NewReader(in))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		want := []timeline.PitchSample{{TimeSec: 0, PitchHz: 0}, {TimeSec: 0.0929, PitchHz: 220.5}}
		if len(series) != 2 || series[0] != want[0] || series[1] != want[1] {
			t.Fatalf("%s: decoded %v, want %v", name, series, want)
		}
	}
}

func TestDecodeScript(t *testing.T) {
	in := `[{"startTime": 0, "endTime": 1.5, "script": "hello"}, {"startTime": 3, "endTime": 4, "script": "again"}]`
	segments, err := DecodeScript(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(segments) != 2 || segments[0].Label != "hello" || segments[1].StartTime != 3 {
		t.Fatalf("decoded %+v", segments)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	if _, err := DecodeReference(strings.NewReader(`{"time_sec": [}`)); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := DecodeScript(strings.NewReader(`[{"startTime": "soon"}]`)); err == nil {
		t.Fatal("expected type error for non-numeric startTime")
	}
}

func TestLoadReferenceValidates(t *testing.T) {
	path := writeFile(t, "pitch.json", `[{"time_sec": 0, "pitch_hz": 100}]`)
	if _, err := LoadReference(path); !errors.Is(err, timeline.ErrConfiguration) {
		t.Fatalf("single point error = %v, want ErrConfiguration", err)
	}

	path = writeFile(t, "pitch.json", `[{"time_sec": 0, "pitch_hz": 100}, {"time_sec": 0.1, "pitch_hz": 0}]`)
	ref, err := LoadReference(path)
	if err != nil {
		t.Fatal(err)
	}
	if ref.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ref.Len())
	}

	if _, err := LoadReference(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadScript(t *testing.T) {
	segments, err := LoadScript("")
	if err != nil || segments != nil {
		t.Fatalf("LoadScript(\"\") = (%v, %v), want no segments", segments, err)
	}

	empty := writeFile(t, "script.yaml", "")
	segments, err = LoadScript(empty)
	if err != nil || len(segments) != 0 {
		t.Fatalf("empty script = (%v, %v), want no segments", segments, err)
	}

	overlapping := writeFile(t, "script.json", `[{"startTime": 0, "endTime": 2}, {"startTime": 1, "endTime": 3}]`)
	if _, err := LoadScript(overlapping); !errors.Is(err, timeline.ErrConfiguration) {
		t.Fatalf("overlapping script error = %v, want ErrConfiguration", err)
	}
}
