package capture

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// HighPass is a second-order high-pass stage that removes rumble and DC
// offset ahead of pitch analysis. A nil *HighPass passes samples through.
type HighPass struct {
	chain  *biquad.Chain
	cutoff float64
}

// NewHighPass designs a Butterworth-Q biquad at cutoffHz. It returns nil
// when cutoffHz is zero or not below Nyquist.
func NewHighPass(cutoffHz, sampleRate float64) *HighPass {
	if !(cutoffHz > 0) || !(sampleRate > 0) || cutoffHz >= sampleRate/2 {
		return nil
	}
	coeffs := design.Highpass(cutoffHz, 1/math.Sqrt2, sampleRate)
	return &HighPass{
		chain:  biquad.NewChain([]biquad.Coefficients{coeffs}),
		cutoff: cutoffHz,
	}
}

// Cutoff returns the design frequency in Hz, or 0 for a nil filter.
func (h *HighPass) Cutoff() float64 {
	if h == nil {
		return 0
	}
	return h.cutoff
}

// Process filters one sample.
func (h *HighPass) Process(x float64) float64 {
	if h == nil {
		return x
	}
	return h.chain.ProcessSample(x)
}

// ProcessBlock filters buf in place.
func (h *HighPass) ProcessBlock(buf []float64) {
	if h == nil {
		return
	}
	h.chain.ProcessBlock(buf)
}

// Reset clears the filter state.
func (h *HighPass) Reset() {
	if h == nil {
		return
	}
	h.chain.Reset()
}
