// Package timeline holds the time-keeping primitives of a comparison run:
// the reference pitch series, the caption segments, the frame clock that
// gates sampling to the reference cadence and the tracker that resolves the
// active segment from the playhead.
package timeline

import "math"

// PitchSample is one point of a pitch series. PitchHz is either a positive
// frequency or 0 for unvoiced frames.
type PitchSample struct {
	TimeSec float64 `json:"time_sec" yaml:"time_sec"`
	PitchHz float64 `json:"pitch_hz" yaml:"pitch_hz"`
}

// Reference is an immutable, validated reference pitch series sampled at a
// fixed cadence. The zero value is not usable; build one with NewReference.
type Reference struct {
	samples       []PitchSample
	frameDuration float64
}

// NewReference validates series and returns a Reference holding a private
// copy of it. The series needs at least two points, strictly increasing
// finite timestamps and finite non-negative pitches. The frame duration is
// taken from the first two timestamps.
func NewReference(series []PitchSample) (*Reference, error) {
	if len(series) < 2 {
		return nil, configErrorf("reference", "need at least 2 samples, got %d", len(series))
	}
	for i, s := range series {
		if math.IsNaN(s.TimeSec) || math.IsInf(s.TimeSec, 0) {
			return nil, configErrorf("reference", "sample %d has non-finite time", i)
		}
		if math.IsNaN(s.PitchHz) || math.IsInf(s.PitchHz, 0) || s.PitchHz < 0 {
			return nil, configErrorf("reference", "sample %d has invalid pitch %v", i, s.PitchHz)
		}
		if i > 0 && !(s.TimeSec > series[i-1].TimeSec) {
			return nil, configErrorf("reference", "time not strictly increasing at sample %d (%v after %v)",
				i, s.TimeSec, series[i-1].TimeSec)
		}
	}
	frameDuration := series[1].TimeSec - series[0].TimeSec
	if !(frameDuration > 0) {
		return nil, configErrorf("reference", "frame duration %v is not positive", frameDuration)
	}
	return &Reference{
		samples:       append([]PitchSample(nil), series...),
		frameDuration: frameDuration,
	}, nil
}

// FrameDuration is the spacing of the series in seconds.
func (r *Reference) FrameDuration() float64 { return r.frameDuration }

// Len returns the number of samples.
func (r *Reference) Len() int { return len(r.samples) }

// Start returns the timestamp of the first sample.
func (r *Reference) Start() float64 { return r.samples[0].TimeSec }

// End returns the timestamp of the last sample.
func (r *Reference) End() float64 { return r.samples[len(r.samples)-1].TimeSec }

// Samples returns a copy of the series.
func (r *Reference) Samples() []PitchSample {
	return append([]PitchSample(nil), r.samples...)
}

// Between returns a copy of the samples with start <= TimeSec <= end.
func (r *Reference) Between(start, end float64) []PitchSample {
	out := make([]PitchSample, 0)
	for _, s := range r.samples {
		if s.TimeSec < start {
			continue
		}
		if s.TimeSec > end {
			break
		}
		out = append(out, s)
	}
	return out
}
