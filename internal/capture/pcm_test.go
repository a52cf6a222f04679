package capture

import "testing"

func TestPcmToFloat32_Empty(t *testing.T) {
	samples := pcmToFloat32(nil)
	if samples != nil {
		t.Fatalf("expected nil, got %v", samples)
	}
	samples = pcmToFloat32([]byte{})
	if samples != nil {
		t.Fatalf("expected nil for empty slice, got %v", samples)
	}
}

func TestPcmToFloat32_SingleByte(t *testing.T) {
	// Single byte is not enough for one s16le sample.
	samples := pcmToFloat32([]byte{0x01})
	if samples != nil {
		t.Fatalf("expected nil for odd byte count, got %v", samples)
	}
}

func TestPcmToFloat32_Extremes(t *testing.T) {
	// 0x7FFF little-endian is int16 max, 0x8000 is int16 min.
	samples := pcmToFloat32([]byte{0xFF, 0x7F, 0x00, 0x80, 0x00, 0x00})
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	if want := float32(32767) / 32768.0; samples[0] != want {
		t.Fatalf("sample[0] = %v, want %v", samples[0], want)
	}
	if samples[1] != -1 {
		t.Fatalf("sample[1] = %v, want -1", samples[1])
	}
	if samples[2] != 0 {
		t.Fatalf("sample[2] = %v, want 0", samples[2])
	}
}

func TestFloat64ToPCMClamps(t *testing.T) {
	pcm := float64ToPCM(nil, []float64{2, -2, 0.5})
	if len(pcm) != 6 {
		t.Fatalf("expected 6 bytes, got %d", len(pcm))
	}
	back := pcmToFloat32(pcm)
	if back[0] != float32(32767)/32768.0 {
		t.Fatalf("positive clamp = %v", back[0])
	}
	if back[1] != -1 {
		t.Fatalf("negative clamp = %v", back[1])
	}
	if back[2] != 0.5 {
		t.Fatalf("round trip of 0.5 = %v", back[2])
	}
}
