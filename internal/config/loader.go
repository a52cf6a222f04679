package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Loader loads configuration from environment variables. Tests can override
// Lookup to inject deterministic maps.
type Loader struct {
	Lookup func(string) (string, bool)
}

// LoadResult is a validated configuration plus non-fatal warnings.
type LoadResult struct {
	Config   Config
	Warnings []string
}

// Load retrieves the adapter configuration from environment variables.
func (l Loader) Load() (LoadResult, error) {
	if l.Lookup == nil {
		l.Lookup = os.LookupEnv
	}

	cfg := Default()

	if raw, ok := l.Lookup("NUPI_ADAPTER_CONFIG"); ok && strings.TrimSpace(raw) != "" {
		if err := applyJSON(raw, &cfg); err != nil {
			return LoadResult{}, err
		}
	}

	overrideString(l.Lookup, "NUPI_ADAPTER_LISTEN_ADDR", &cfg.ListenAddr)
	overrideString(l.Lookup, "NUPI_LOG_LEVEL", &cfg.LogLevel)
	overrideString(l.Lookup, "NUPI_LOG_FILE", &cfg.LogFile)
	overrideString(l.Lookup, "NUPI_PITCH_REFERENCE_PATH", &cfg.ReferencePath)
	overrideString(l.Lookup, "NUPI_PITCH_SCRIPT_PATH", &cfg.ScriptPath)
	overrideString(l.Lookup, "NUPI_CAPTURE_BACKEND", &cfg.CaptureBackend)
	overrideString(l.Lookup, "NUPI_PITCH_PLAYHEAD", &cfg.Playhead)

	ints := []struct {
		key    string
		target *int
	}{
		{"NUPI_PITCH_WINDOW_SIZE", &cfg.WindowSize},
		{"NUPI_PITCH_EXTRACT_FRAME_SIZE", &cfg.ExtractFrameSize},
		{"NUPI_PITCH_HISTORY_CAP", &cfg.HistoryCap},
	}
	for _, o := range ints {
		if err := overrideInt(l.Lookup, o.key, o.target); err != nil {
			return LoadResult{}, err
		}
	}

	floats := []struct {
		key    string
		target *float64
	}{
		{"NUPI_PITCH_SAMPLE_RATE", &cfg.SampleRate},
		{"NUPI_PITCH_TICK_RATE_HZ", &cfg.TickRateHz},
		{"NUPI_PITCH_HIGHPASS_HZ", &cfg.HighPassHz},
		{"NUPI_TONE_FREQUENCY_HZ", &cfg.ToneFrequencyHz},
	}
	for _, o := range floats {
		if err := overrideFloat(l.Lookup, o.key, o.target); err != nil {
			return LoadResult{}, err
		}
	}

	bools := []struct {
		key    string
		target *bool
	}{
		{"NUPI_PITCH_AUTOSTART", &cfg.Autostart},
		{"NUPI_PITCH_STOP_AT_END", &cfg.StopAtEnd},
		{"NUPI_CONSOLE_RENDER", &cfg.ConsoleRender},
	}
	for _, o := range bools {
		if err := overrideBool(l.Lookup, o.key, o.target); err != nil {
			return LoadResult{}, err
		}
	}

	cfg.CaptureBackend = strings.ToLower(cfg.CaptureBackend)
	cfg.Playhead = strings.ToLower(cfg.Playhead)

	if err := cfg.Validate(); err != nil {
		return LoadResult{}, err
	}
	return LoadResult{Config: cfg, Warnings: cfg.warnings()}, nil
}

func applyJSON(raw string, cfg *Config) error {
	type jsonConfig struct {
		ListenAddr       string   `json:"listen_addr"`
		LogLevel         string   `json:"log_level"`
		LogFile          string   `json:"log_file"`
		ReferencePath    string   `json:"reference_path"`
		ScriptPath       string   `json:"script_path"`
		WindowSize       *int     `json:"window_size"`
		ExtractFrameSize *int     `json:"extract_frame_size"`
		SampleRate       *float64 `json:"sample_rate"`
		TickRateHz       *float64 `json:"tick_rate_hz"`
		HistoryCap       *int     `json:"history_cap"`
		HighPassHz       *float64 `json:"highpass_hz"`
		CaptureBackend   string   `json:"capture_backend"`
		ToneFrequencyHz  *float64 `json:"tone_frequency_hz"`
		Playhead         string   `json:"playhead"`
		Autostart        *bool    `json:"autostart"`
		StopAtEnd        *bool    `json:"stop_at_end"`
		ConsoleRender    *bool    `json:"console_render"`
	}
	var payload jsonConfig
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return fmt.Errorf("config: decode NUPI_ADAPTER_CONFIG: %w", err)
	}
	setString := func(target *string, value string) {
		if value != "" {
			*target = value
		}
	}
	setString(&cfg.ListenAddr, payload.ListenAddr)
	setString(&cfg.LogLevel, payload.LogLevel)
	setString(&cfg.LogFile, payload.LogFile)
	setString(&cfg.ReferencePath, payload.ReferencePath)
	setString(&cfg.ScriptPath, payload.ScriptPath)
	setString(&cfg.CaptureBackend, payload.CaptureBackend)
	setString(&cfg.Playhead, payload.Playhead)
	if payload.WindowSize != nil {
		cfg.WindowSize = *payload.WindowSize
	}
	if payload.ExtractFrameSize != nil {
		cfg.ExtractFrameSize = *payload.ExtractFrameSize
	}
	if payload.SampleRate != nil {
		cfg.SampleRate = *payload.SampleRate
	}
	if payload.TickRateHz != nil {
		cfg.TickRateHz = *payload.TickRateHz
	}
	if payload.HistoryCap != nil {
		cfg.HistoryCap = *payload.HistoryCap
	}
	if payload.HighPassHz != nil {
		cfg.HighPassHz = *payload.HighPassHz
	}
	if payload.ToneFrequencyHz != nil {
		cfg.ToneFrequencyHz = *payload.ToneFrequencyHz
	}
	if payload.Autostart != nil {
		cfg.Autostart = *payload.Autostart
	}
	if payload.StopAtEnd != nil {
		cfg.StopAtEnd = *payload.StopAtEnd
	}
	if payload.ConsoleRender != nil {
		cfg.ConsoleRender = *payload.ConsoleRender
	}
	return nil
}

func overrideString(lookup func(string) (string, bool), key string, target *string) {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}

func overrideFloat(lookup func(string) (string, bool), key string, target *float64) error {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("config: invalid value for %s: %w", key, err)
		}
		*target = parsed
	}
	return nil
}

func overrideInt(lookup func(string) (string, bool), key string, target *int) error {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: invalid value for %s: %w", key, err)
		}
		*target = parsed
	}
	return nil
}

func overrideBool(lookup func(string) (string, bool), key string, target *bool) error {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: invalid value for %s: %w", key, err)
		}
		*target = parsed
	}
	return nil
}
