package config

import (
	"fmt"
	"math"
	"math/bits"
	"strings"
)

const (
	DefaultListenAddr       = "localhost:0"
	DefaultWindowSize       = 2048
	DefaultExtractFrameSize = 4096
	DefaultSampleRate       = 44100
	DefaultTickRateHz       = 60
	DefaultHistoryCap       = 1000
	DefaultHighPassHz       = 80
	DefaultCaptureBackend   = "auto"
	DefaultToneFrequencyHz  = 220
	DefaultPlayhead         = "internal"

	minWindowSize = 128
	maxWindowSize = 16384
)

// Config holds the adapter configuration.
type Config struct {
	ListenAddr       string  `json:"listen_addr"`
	LogLevel         string  `json:"log_level"`
	LogFile          string  `json:"log_file"`
	ReferencePath    string  `json:"reference_path"`
	ScriptPath       string  `json:"script_path"`
	WindowSize       int     `json:"window_size"`
	ExtractFrameSize int     `json:"extract_frame_size"`
	SampleRate       float64 `json:"sample_rate"`
	TickRateHz       float64 `json:"tick_rate_hz"`
	HistoryCap       int     `json:"history_cap"`
	HighPassHz       float64 `json:"highpass_hz"`
	CaptureBackend   string  `json:"capture_backend"`
	ToneFrequencyHz  float64 `json:"tone_frequency_hz"`
	Playhead         string  `json:"playhead"`
	Autostart        bool    `json:"autostart"`
	StopAtEnd        bool    `json:"stop_at_end"`
	ConsoleRender    bool    `json:"console_render"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		ListenAddr:       DefaultListenAddr,
		WindowSize:       DefaultWindowSize,
		ExtractFrameSize: DefaultExtractFrameSize,
		SampleRate:       DefaultSampleRate,
		TickRateHz:       DefaultTickRateHz,
		HistoryCap:       DefaultHistoryCap,
		HighPassHz:       DefaultHighPassHz,
		CaptureBackend:   DefaultCaptureBackend,
		ToneFrequencyHz:  DefaultToneFrequencyHz,
		Playhead:         DefaultPlayhead,
		StopAtEnd:        true,
	}
}

// Validate checks field ranges and enumerations.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("config: listen address must not be empty")
	}
	if c.WindowSize < minWindowSize || c.WindowSize > maxWindowSize || bits.OnesCount(uint(c.WindowSize)) != 1 {
		return fmt.Errorf("config: window_size must be a power of two in [%d, %d], got %d", minWindowSize, maxWindowSize, c.WindowSize)
	}
	if c.ExtractFrameSize < minWindowSize {
		return fmt.Errorf("config: extract_frame_size must be at least %d, got %d", minWindowSize, c.ExtractFrameSize)
	}
	if !(c.SampleRate > 0) || math.IsInf(c.SampleRate, 0) {
		return fmt.Errorf("config: sample_rate must be positive, got %v", c.SampleRate)
	}
	if !(c.TickRateHz > 0) || math.IsInf(c.TickRateHz, 0) {
		return fmt.Errorf("config: tick_rate_hz must be positive, got %v", c.TickRateHz)
	}
	if c.HistoryCap <= 0 {
		return fmt.Errorf("config: history_cap must be positive, got %d", c.HistoryCap)
	}
	if !(c.HighPassHz >= 0) || (c.HighPassHz > 0 && c.HighPassHz >= c.SampleRate/2) {
		return fmt.Errorf("config: highpass_hz must be 0 or below Nyquist, got %v", c.HighPassHz)
	}
	switch c.CaptureBackend {
	case "auto", "native", "tone":
	default:
		return fmt.Errorf("config: capture_backend must be auto, native or tone, got %q", c.CaptureBackend)
	}
	if !(c.ToneFrequencyHz > 0) || c.ToneFrequencyHz >= c.SampleRate/2 {
		return fmt.Errorf("config: tone_frequency_hz must be in (0, %v), got %v", c.SampleRate/2, c.ToneFrequencyHz)
	}
	switch c.Playhead {
	case "internal", "external":
	default:
		return fmt.Errorf("config: playhead must be internal or external, got %q", c.Playhead)
	}
	return nil
}

// warnings reports settings that are valid but likely unintended.
func (c Config) warnings() []string {
	var out []string
	if c.TickRateHz > 240 {
		out = append(out, fmt.Sprintf("tick_rate_hz %v is above 240; ticks beyond the reference frame rate are de-duplicated", c.TickRateHz))
	}
	if c.WindowSize > 8192 {
		out = append(out, fmt.Sprintf("window_size %d makes each pitch estimate expensive and may overrun the tick budget", c.WindowSize))
	}
	return out
}
