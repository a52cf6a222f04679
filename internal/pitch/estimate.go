// Package pitch estimates the fundamental frequency of a monophonic audio
// frame using time-domain autocorrelation.
package pitch

import "math"

const (
	// MinLag is the smallest autocorrelation offset searched, in samples.
	// Frames shorter than 2*MinLag have no valid search range.
	MinLag = 64

	// RMSGate is the energy floor below which a frame is reported unvoiced
	// without running the correlation search.
	RMSGate = 0.01

	// Unvoiced is the sentinel pitch value stored for frames without a
	// reliable estimate.
	Unvoiced = 0.0
)

// Estimate returns the fundamental frequency of frame in Hz and true, or
// (Unvoiced, false) when the frame is silent or no correlation peak exists.
//
// The search is O(N²) in the frame length and keeps no state between calls.
// Offsets are scanned in increasing order and only a strictly greater
// correlation replaces the current best, so the earliest maximum wins.
func Estimate(frame []float64, sampleRate float64) (float64, bool) {
	n := len(frame)
	if n < 2*MinLag || !(sampleRate > 0) {
		return Unvoiced, false
	}
	if RMS(frame) < RMSGate {
		return Unvoiced, false
	}

	bestOffset := -1
	bestCorr := 0.0
	for offset := MinLag; offset < n/2; offset++ {
		corr := 0.0
		for i := 0; i < n-offset; i++ {
			corr += frame[i] * frame[i+offset]
		}
		if corr > bestCorr {
			bestCorr = corr
			bestOffset = offset
		}
	}
	if bestOffset <= 0 {
		return Unvoiced, false
	}
	return sampleRate / float64(bestOffset), true
}

// Value is Estimate collapsed onto the sentinel encoding used by pitch
// series: the frequency when voiced, Unvoiced otherwise.
func Value(frame []float64, sampleRate float64) float64 {
	hz, _ := Estimate(frame, sampleRate)
	return hz
}

// RMS returns the root-mean-square level of frame, or 0 for an empty frame.
func RMS(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, v := range frame {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}
