// Package session drives one comparison run: it owns the capture device,
// advances the frame clock and segment tracker on every tick and feeds
// accepted pitch estimates into the comparison buffer.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nupi-ai/plugin-pitch-compare/internal/capture"
	"github.com/nupi-ai/plugin-pitch-compare/internal/compare"
	"github.com/nupi-ai/plugin-pitch-compare/internal/pitch"
	"github.com/nupi-ai/plugin-pitch-compare/internal/timeline"
)

// DefaultTickInterval matches a 60 Hz display refresh.
const DefaultTickInterval = time.Second / 60

// State is the session lifecycle state.
type State int

const (
	Idle State = iota
	Starting
	Capturing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Capturing:
		return "capturing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options tunes a session. The zero value uses the internal clock, keeps
// running past the end of the reference and applies DefaultHistoryCap when
// no segments are configured.
type Options struct {
	Params capture.Params
	// HistoryCap bounds the user history in no-segments mode.
	HistoryCap int
	// StopAtEnd stops capturing once the playhead passes the last
	// reference sample.
	StopAtEnd bool
	// Playhead, when set, replaces the internal clock measured from Start.
	Playhead Playhead
	// Now overrides time.Now for the internal clock.
	Now func() time.Time
}

// Status describes the session at one instant.
type Status struct {
	State     State
	Segment   int
	Label     string
	Playhead  float64
	Frames    int64
	LastFrame int64
	Err       error
}

// Snapshot pairs a status with the matching comparison view.
type Snapshot struct {
	Status Status
	View   compare.View
}

// Session is safe for concurrent use. Ticks, control calls and view reads
// are serialized by an internal mutex.
type Session struct {
	log     *slog.Logger
	opts    Options
	factory capture.Factory
	ref     *timeline.Reference
	buffer  *compare.Buffer

	mu        sync.Mutex
	state     State
	tracker   *timeline.SegmentTracker
	clock     *timeline.FrameClock
	device    capture.Device
	frame     []float64
	startedAt time.Time
	playhead  float64
	frames    int64
	lastErr   error
}

// New validates the run configuration and returns an idle session.
func New(ref *timeline.Reference, segments []timeline.Segment, factory capture.Factory, opts Options, logger *slog.Logger) (*Session, error) {
	if ref == nil {
		return nil, &timeline.ConfigError{Field: "reference", Reason: "not loaded"}
	}
	if factory == nil {
		return nil, &timeline.ConfigError{Field: "capture", Reason: "no device factory"}
	}
	if opts.Params == (capture.Params{}) {
		opts.Params = capture.DefaultParams()
	}
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	tracker, err := timeline.NewSegmentTracker(segments)
	if err != nil {
		return nil, err
	}
	clock, err := timeline.FrameClockFor(ref)
	if err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	historyCap := 0
	if tracker.Empty() {
		historyCap = opts.HistoryCap
		if historyCap <= 0 {
			historyCap = compare.DefaultHistoryCap
		}
	}
	buffer := compare.New(historyCap)
	buffer.SetReference(ref)

	return &Session{
		log:     logger.With("component", "session"),
		opts:    opts,
		factory: factory,
		ref:     ref,
		buffer:  buffer,
		tracker: tracker,
		clock:   clock,
	}, nil
}

// Reference returns the reference series the session compares against.
func (s *Session) Reference() *timeline.Reference { return s.ref }

// Segments returns a copy of the configured segments.
func (s *Session) Segments() []timeline.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Segments()
}

// Start acquires the capture device and begins a run. Starting a session
// that is already starting or capturing is a no-op. Device failures leave
// the session idle and are returned as capture.DeviceError.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return nil
	}
	s.state = Starting
	s.mu.Unlock()

	dev, err := s.factory(ctx, s.opts.Params)
	if err == nil {
		err = s.checkDevice(dev)
		if err != nil && dev != nil {
			dev.Close()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = Idle
		if !errors.Is(err, capture.ErrDevice) && !errors.Is(err, timeline.ErrConfiguration) {
			err = &capture.DeviceError{Op: "open", Err: err}
		}
		s.lastErr = err
		s.log.Error("capture start failed", "error", err)
		return err
	}
	if s.state != Starting {
		// Stopped while the device was being acquired.
		dev.Close()
		return nil
	}

	s.device = dev
	s.frame = make([]float64, dev.WindowSize())
	s.buffer.Reset()
	s.tracker.Reset()
	s.clock.Reset()
	s.startedAt = s.opts.Now()
	s.playhead = 0
	s.frames = 0
	s.lastErr = nil
	s.state = Capturing
	s.log.Info("capture started",
		"sample_rate", dev.SampleRate(),
		"window_size", dev.WindowSize(),
		"frame_duration", s.ref.FrameDuration(),
		"segments", len(s.tracker.Segments()),
	)
	return nil
}

func (s *Session) checkDevice(dev capture.Device) error {
	if dev == nil {
		return &capture.DeviceError{Op: "open", Err: errors.New("factory returned no device")}
	}
	if got, want := dev.WindowSize(), s.opts.Params.WindowSize; got != want {
		return &capture.DeviceError{Op: "open", Err: fmt.Errorf("device window is %d samples, want %d", got, want)}
	}
	if !(dev.SampleRate() > 0) {
		return &capture.DeviceError{Op: "open", Err: fmt.Errorf("device reports sample rate %v", dev.SampleRate())}
	}
	return nil
}

// Stop ends the run and releases the device. The comparison buffer is left
// as it was so the last view stays available.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked("stop requested")
}

func (s *Session) stopLocked(reason string) error {
	if s.state == Idle {
		return nil
	}
	s.state = Idle
	dev := s.device
	s.device = nil
	s.log.Info("capture stopped", "reason", reason, "frames", s.frames)
	if dev == nil {
		return nil
	}
	if err := dev.Close(); err != nil {
		return fmt.Errorf("session: close device: %w", err)
	}
	return nil
}

// SetPlayhead forwards sec to an external playhead. It fails with a
// configuration error when the session runs on its internal clock.
func (s *Session) SetPlayhead(sec float64) error {
	ext, ok := s.opts.Playhead.(*ExternalPlayhead)
	if !ok {
		return &timeline.ConfigError{Field: "playhead", Reason: "session uses the internal clock"}
	}
	ext.Set(sec)
	return nil
}

// Tick advances the run by one scheduling step. It reports whether the
// visible state changed: a segment transition, an accepted frame or the
// end of the run. A device failure stops the session and is returned.
func (s *Session) Tick() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Capturing {
		return false, nil
	}

	now := s.readPlayheadLocked()
	if now < s.playhead {
		// The media clock jumped backwards.
		s.clock.Reset()
	}
	s.playhead = now

	if s.opts.StopAtEnd && now > s.ref.End() {
		return true, s.stopLocked("reference ended")
	}

	changed := false
	if tr, ok := s.tracker.Update(now); ok {
		s.buffer.Reset()
		changed = true
		s.log.Debug("segment transition", "from", tr.From, "to", tr.To, "playhead", now)
	}

	idx, ok := s.clock.TryAdvance(now)
	if !ok {
		return changed, nil
	}

	if err := s.device.Window(s.frame); err != nil {
		s.lastErr = err
		s.log.Error("capture failed, stopping", "error", err, "frame", idx)
		if closeErr := s.stopLocked("device error"); closeErr != nil {
			s.log.Warn("device close failed", "error", closeErr)
		}
		return true, err
	}

	value := pitch.Value(s.frame, s.device.SampleRate())
	if err := s.buffer.PushUserSample(value); err != nil {
		return changed, err
	}
	s.frames++
	return true, nil
}

func (s *Session) readPlayheadLocked() float64 {
	if s.opts.Playhead != nil {
		return s.opts.Playhead.Now()
	}
	return s.opts.Now().Sub(s.startedAt).Seconds()
}

// Run ticks the session every interval until ctx is done. notify, when not
// nil, receives a snapshot after every tick that changed the visible state.
// Device failures are logged and leave the session idle; Run keeps going so
// the session can be started again.
func (s *Session) Run(ctx context.Context, interval time.Duration, notify func(Snapshot)) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer s.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			changed, err := s.Tick()
			if err != nil {
				s.log.Warn("tick failed", "error", err)
			}
			if changed && notify != nil {
				notify(s.Snapshot())
			}
		}
	}
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns the current status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() Status {
	st := Status{
		State:     s.state,
		Segment:   s.tracker.Current(),
		Playhead:  s.playhead,
		Frames:    s.frames,
		LastFrame: s.clock.Last(),
		Err:       s.lastErr,
	}
	if seg, ok := s.tracker.Segment(); ok {
		st.Label = seg.Label
	}
	return st
}

func (s *Session) windowLocked() (float64, float64) {
	if start, end, ok := s.tracker.Window(); ok {
		return start, end
	}
	return s.ref.Start(), s.ref.End()
}

// View returns the comparison view of the active segment, or of the whole
// reference when no segment is active.
func (s *Session) View() compare.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, end := s.windowLocked()
	return s.buffer.View(start, end)
}

// History returns a copy of the user history.
func (s *Session) History() []float64 {
	return s.buffer.History()
}

// Snapshot returns the status and view taken together.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	st := s.statusLocked()
	start, end := s.windowLocked()
	view := s.buffer.View(start, end)
	s.mu.Unlock()
	return Snapshot{Status: st, View: view}
}
