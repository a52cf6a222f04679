package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mjibson/go-dsp/wav"

	"github.com/nupi-ai/plugin-pitch-compare/internal/pitch"
	"github.com/nupi-ai/plugin-pitch-compare/internal/timeline"
)

// DefaultFrameSize is the analysis frame used for offline extraction.
const DefaultFrameSize = 4096

// readChunk is the number of frames decoded per read.
const readChunk = 8192

// Audio is a decoded mono signal.
type Audio struct {
	Samples    []float64
	SampleRate float64
}

// ReadWAV decodes PCM or float WAV data. Multi-channel input is reduced to
// its first channel.
func ReadWAV(r io.Reader) (Audio, error) {
	w, err := wav.New(r)
	if err != nil {
		return Audio{}, fmt.Errorf("source: read wav header: %w", err)
	}
	channels := int(w.NumChannels)
	if channels < 1 || w.SampleRate == 0 {
		return Audio{}, fmt.Errorf("source: unsupported wav format: %d channels at %d Hz", channels, w.SampleRate)
	}

	out := Audio{
		Samples:    make([]float64, 0, w.Samples/channels),
		SampleRate: float64(w.SampleRate),
	}
	for remaining := w.Samples; remaining > 0; {
		n := min(readChunk*channels, remaining)
		raw, err := w.ReadSamples(n)
		if raw != nil {
			values, convErr := normalize(raw)
			if convErr != nil {
				return Audio{}, convErr
			}
			for i := 0; i+channels <= len(values); i += channels {
				out.Samples = append(out.Samples, values[i])
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return Audio{}, fmt.Errorf("source: read wav samples: %w", err)
		}
		remaining -= n
	}
	return out, nil
}

// normalize scales decoded WAV samples to [-1, 1] around zero. 8-bit PCM
// is unsigned with a midpoint of 128.
func normalize(raw any) ([]float64, error) {
	switch v := raw.(type) {
	case []int16:
		out := make([]float64, len(v))
		for i, s := range v {
			out[i] = float64(s) / 32768
		}
		return out, nil
	case []uint8:
		out := make([]float64, len(v))
		for i, s := range v {
			out[i] = (float64(s) - 128) / 128
		}
		return out, nil
	case []float32:
		out := make([]float64, len(v))
		for i, s := range v {
			out[i] = float64(s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("source: unsupported wav sample type %T", raw)
	}
}

// ExtractReference estimates the pitch of consecutive non-overlapping frames
// of samples. Frame k starts at sample k*frameSize and is stamped with that
// offset in seconds; a trailing partial frame is dropped.
func ExtractReference(samples []float64, sampleRate float64, frameSize int) ([]timeline.PitchSample, error) {
	if frameSize < 2*pitch.MinLag {
		return nil, &timeline.ConfigError{Field: "frame_size", Reason: fmt.Sprintf("must be at least %d, got %d", 2*pitch.MinLag, frameSize)}
	}
	if !(sampleRate > 0) {
		return nil, &timeline.ConfigError{Field: "sample_rate", Reason: fmt.Sprintf("must be positive, got %v", sampleRate)}
	}
	var series []timeline.PitchSample
	for i := 0; i+frameSize < len(samples); i += frameSize {
		series = append(series, timeline.PitchSample{
			TimeSec: float64(i) / sampleRate,
			PitchHz: pitch.Value(samples[i:i+frameSize], sampleRate),
		})
	}
	return series, nil
}

// ExtractWAV decodes the WAV file at path and extracts its pitch series.
func ExtractWAV(path string, frameSize int) ([]timeline.PitchSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open wav: %w", err)
	}
	defer f.Close()

	audio, err := ReadWAV(f)
	if err != nil {
		return nil, err
	}
	return ExtractReference(audio.Samples, audio.SampleRate, frameSize)
}

// WriteReference encodes series as an indented JSON list.
func WriteReference(w io.Writer, series []timeline.PitchSample) error {
	if series == nil {
		series = []timeline.PitchSample{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(series); err != nil {
		return fmt.Errorf("source: encode reference: %w", err)
	}
	return nil
}
