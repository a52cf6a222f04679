// Package source loads reference pitch series and caption scripts from
// disk. Both are lists of records in JSON or YAML; a reference may also be
// extracted directly from a WAV recording.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nupi-ai/plugin-pitch-compare/internal/timeline"
)

// DecodeReference reads a list of {time_sec, pitch_hz} records. JSON input
// is accepted as YAML.
func DecodeReference(r io.Reader) ([]timeline.PitchSample, error) {
	var series []timeline.PitchSample
	if err := decodeList(r, &series); err != nil {
		return nil, fmt.Errorf("source: decode reference: %w", err)
	}
	return series, nil
}

// DecodeScript reads a list of {startTime, endTime, script} records. An
// empty document yields no segments.
func DecodeScript(r io.Reader) ([]timeline.Segment, error) {
	var segments []timeline.Segment
	if err := decodeList(r, &segments); err != nil {
		return nil, fmt.Errorf("source: decode script: %w", err)
	}
	return segments, nil
}

func decodeList(r io.Reader, out any) error {
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// LoadReference reads and validates a reference series file.
func LoadReference(path string) (*timeline.Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open reference: %w", err)
	}
	defer f.Close()

	series, err := DecodeReference(f)
	if err != nil {
		return nil, err
	}
	ref, err := timeline.NewReference(series)
	if err != nil {
		return nil, fmt.Errorf("source: %s: %w", path, err)
	}
	return ref, nil
}

// OpenReference loads a reference from path, extracting it from audio
// when the file has a .wav extension.
func OpenReference(path string, frameSize int) (*timeline.Reference, error) {
	if !strings.EqualFold(filepath.Ext(path), ".wav") {
		return LoadReference(path)
	}
	series, err := ExtractWAV(path, frameSize)
	if err != nil {
		return nil, err
	}
	ref, err := timeline.NewReference(series)
	if err != nil {
		return nil, fmt.Errorf("source: %s: %w", path, err)
	}
	return ref, nil
}

// LoadScript reads and validates a script file. An empty path means no
// segmentation and returns no segments.
func LoadScript(path string) ([]timeline.Segment, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open script: %w", err)
	}
	defer f.Close()

	segments, err := DecodeScript(f)
	if err != nil {
		return nil, err
	}
	if err := timeline.ValidateSegments(segments); err != nil {
		return nil, fmt.Errorf("source: %s: %w", path, err)
	}
	return segments, nil
}
