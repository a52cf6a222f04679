package capture

// pcmToFloat32 converts PCM s16le bytes to float32 samples normalized to [-1, 1].
// Divides by 32768 (not 32767) so that the full int16 range [-32768, 32767] maps
// to [-1.0, ~0.99997], keeping all values strictly within [-1, 1].
func pcmToFloat32(buf []byte) []float32 {
	n := len(buf) / 2
	if n == 0 {
		return nil
	}
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		u := uint16(buf[2*i]) | uint16(buf[2*i+1])<<8
		samples[i] = float32(int16(u)) / 32768.0
	}
	return samples
}

// float64ToPCM encodes samples as s16le, clamping to the int16 range.
func float64ToPCM(dst []byte, samples []float64) []byte {
	for _, s := range samples {
		v := s * 32768.0
		switch {
		case v > 32767:
			v = 32767
		case v < -32768:
			v = -32768
		}
		u := uint16(int16(v))
		dst = append(dst, byte(u), byte(u>>8))
	}
	return dst
}
