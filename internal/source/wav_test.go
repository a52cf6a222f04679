package source

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// encodeWAV writes interleaved 16-bit PCM with the canonical 44-byte header.
func encodeWAV(t *testing.T, channels [][]float64, sampleRate int) []byte {
	t.Helper()
	numChannels := len(channels)
	frames := len(channels[0])
	data := make([]int16, 0, frames*numChannels)
	for i := 0; i < frames; i++ {
		for c := 0; c < numChannels; c++ {
			s := math.Max(-1, math.Min(1, channels[c][i]))
			data = append(data, int16(s*32767.0))
		}
	}

	bitsPerSample := uint16(16)
	blockAlign := uint16(numChannels) * bitsPerSample / 8
	dataSize := uint32(len(data) * 2)

	var buf bytes.Buffer
	fields := []any{
		[4]byte{'R', 'I', 'F', 'F'},
		uint32(36 + dataSize),
		[4]byte{'W', 'A', 'V', 'E'},
		[4]byte{'f', 'm', 't', ' '},
		uint32(16),
		uint16(1),
		uint16(numChannels),
		uint32(sampleRate),
		uint32(sampleRate) * uint32(blockAlign),
		blockAlign,
		bitsPerSample,
		[4]byte{'d', 'a', 't', 'a'},
		dataSize,
		data,
	}
	for _, f := range fields {
		if err := binary.Write(&buf, binary.LittleEndian, f); err != nil {
			t.Fatal(err)
		}
	}
	return buf.Bytes()
}

func sineSamples(freq, amp float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func writeTempWAV(t *testing.T, channels [][]float64, sampleRate int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "take.wav")
	if err := os.WriteFile(path, encodeWAV(t, channels, sampleRate), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadWAVMono(t *testing.T) {
	samples := sineSamples(220, 0.5, 16000, 16000)
	audio, err := ReadWAV(bytes.NewReader(encodeWAV(t, [][]float64{samples}, 16000)))
	if err != nil {
		t.Fatal(err)
	}
	if audio.SampleRate != 16000 {
		t.Fatalf("SampleRate = %v, want 16000", audio.SampleRate)
	}
	if len(audio.Samples) != len(samples) {
		t.Fatalf("got %d samples, want %d", len(audio.Samples), len(samples))
	}
	for i := 0; i < len(samples); i += 997 {
		if math.Abs(audio.Samples[i]-samples[i]) > 1e-3 {
			t.Fatalf("sample %d = %v, want ~%v", i, audio.Samples[i], samples[i])
		}
	}
}

func TestReadWAVTakesFirstChannel(t *testing.T) {
	left := sineSamples(220, 0.5, 8000, 4000)
	right := make([]float64, len(left))
	audio, err := ReadWAV(bytes.NewReader(encodeWAV(t, [][]float64{left, right}, 8000)))
	if err != nil {
		t.Fatal(err)
	}
	if len(audio.Samples) == 0 {
		t.Fatal("no samples decoded")
	}
	for i, v := range audio.Samples {
		if math.Abs(v-left[i]) > 1e-3 {
			t.Fatalf("sample %d = %v, want left channel %v", i, v, left[i])
		}
	}
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	if _, err := ReadWAV(bytes.NewReader([]byte("definitely not a riff file"))); err == nil {
		t.Fatal("expected error for non-WAV input")
	}
}
