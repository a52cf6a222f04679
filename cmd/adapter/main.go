package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthgrpc "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/nupi-ai/plugin-pitch-compare/internal/capture"
	"github.com/nupi-ai/plugin-pitch-compare/internal/config"
	"github.com/nupi-ai/plugin-pitch-compare/internal/render"
	"github.com/nupi-ai/plugin-pitch-compare/internal/server"
	"github.com/nupi-ai/plugin-pitch-compare/internal/session"
	"github.com/nupi-ai/plugin-pitch-compare/internal/source"
)

// version is set at build time by GoReleaser via -ldflags.
var version = "dev"

var errInitializing = status.Error(codes.Unavailable, "comparison service is initializing, please retry in a moment")

// lazyComparisonServer wraps a ComparisonServiceServer and allows deferred
// initialization. It returns Unavailable errors until the underlying server is set.
type lazyComparisonServer struct {
	server.UnimplementedComparisonServiceServer
	server atomic.Pointer[server.ComparisonServiceServer]
}

func (l *lazyComparisonServer) setServer(srv server.ComparisonServiceServer) {
	l.server.Store(&srv)
}

func (l *lazyComparisonServer) Start(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error) {
	srv := l.server.Load()
	if srv == nil {
		return nil, errInitializing
	}
	return (*srv).Start(ctx, req)
}

func (l *lazyComparisonServer) Stop(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error) {
	srv := l.server.Load()
	if srv == nil {
		return nil, errInitializing
	}
	return (*srv).Stop(ctx, req)
}

func (l *lazyComparisonServer) SetPlayhead(ctx context.Context, req *wrapperspb.DoubleValue) (*emptypb.Empty, error) {
	srv := l.server.Load()
	if srv == nil {
		return nil, errInitializing
	}
	return (*srv).SetPlayhead(ctx, req)
}

func (l *lazyComparisonServer) GetView(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	srv := l.server.Load()
	if srv == nil {
		return nil, errInitializing
	}
	return (*srv).GetView(ctx, req)
}

func (l *lazyComparisonServer) WatchViews(req *emptypb.Empty, stream server.ComparisonService_WatchViewsServer) error {
	srv := l.server.Load()
	if srv == nil {
		return errInitializing
	}
	return (*srv).WatchViews(req, stream)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loadResult, err := config.Loader{}.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	cfg := loadResult.Config

	logger, closeLog := newLogger(cfg.LogLevel, cfg.LogFile)

	for _, warn := range loadResult.Warnings {
		logger.Warn(warn)
	}

	logger.Info("starting adapter",
		"adapter", "pitch-compare",
		"version", version,
		"capture_backend", cfg.CaptureBackend, // configured value, may be "auto"
		"listen_addr", cfg.ListenAddr,
		"reference", cfg.ReferencePath,
		"script", cfg.ScriptPath,
		"window_size", cfg.WindowSize,
		"tick_rate_hz", cfg.TickRateHz,
		"playhead", cfg.Playhead,
	)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("adapter failed", "error", err)
		closeLog()
		os.Exit(1)
	}
	logger.Info("adapter stopped")
	closeLog()
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	// Bind the port before loading anything so clients see NOT_SERVING
	// rather than connection refused while the reference is extracted.
	lis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("bind listener: %w", err)
	}
	defer lis.Close()
	logger.Info("listener bound, port ready", "addr", lis.Addr().String())

	grpcServer := grpc.NewServer(
		grpc.MaxSendMsgSize(server.MaxViewBytes),
	)
	healthServer := health.NewServer()
	healthgrpc.RegisterHealthServer(grpcServer, healthServer)

	healthServer.SetServingStatus("", healthgrpc.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(server.ServiceName, healthgrpc.HealthCheckResponse_NOT_SERVING)

	lazyService := &lazyComparisonServer{}
	server.RegisterComparisonServiceServer(grpcServer, lazyService)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})
	logger.Info("gRPC server started (NOT_SERVING while initializing)")

	fail := func(err error) error {
		grpcServer.Stop()
		g.Wait()
		return err
	}

	params := capture.Params{
		SampleRate: cfg.SampleRate,
		WindowSize: cfg.WindowSize,
		HighPassHz: cfg.HighPassHz,
	}
	factory, backend, err := resolveBackend(ctx, cfg, params, logger)
	if err != nil {
		return fail(err)
	}

	if cfg.ReferencePath == "" {
		return fail(errors.New("no reference configured (set NUPI_PITCH_REFERENCE_PATH)"))
	}
	ref, err := source.OpenReference(cfg.ReferencePath, cfg.ExtractFrameSize)
	if err != nil {
		return fail(err)
	}
	segments, err := source.LoadScript(cfg.ScriptPath)
	if err != nil {
		return fail(err)
	}
	logger.Info("reference loaded",
		"samples", ref.Len(),
		"start", ref.Start(),
		"end", ref.End(),
		"frame_duration", ref.FrameDuration(),
		"segments", len(segments),
	)

	opts := session.Options{
		Params:     params,
		HistoryCap: cfg.HistoryCap,
		StopAtEnd:  cfg.StopAtEnd,
	}
	if cfg.Playhead == "external" {
		opts.Playhead = &session.ExternalPlayhead{}
	}
	sess, err := session.New(ref, segments, factory, opts, logger)
	if err != nil {
		return fail(err)
	}

	hub := server.NewHub(logger)
	var console *render.Console
	if cfg.ConsoleRender {
		console = render.NewConsole(os.Stdout, render.DefaultWidth)
	}
	notify := func(snap session.Snapshot) {
		hub.Publish(snap)
		if console != nil {
			if err := console.Render(snap.Status.Label, snap.View); err != nil {
				logger.Warn("console render failed", "error", err)
			}
		}
	}

	lazyService.setServer(server.New(sess, hub, logger))

	healthServer.SetServingStatus("", healthgrpc.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(server.ServiceName, healthgrpc.HealthCheckResponse_SERVING)
	logger.Info("adapter ready to serve requests", "capture_backend", backend)

	if cfg.Autostart {
		if err := sess.Start(gctx); err != nil {
			logger.Error("autostart failed, waiting for Start", "error", err)
		} else {
			notify(sess.Snapshot())
		}
	}

	interval := time.Duration(float64(time.Second) / cfg.TickRateHz)
	g.Go(func() error {
		return sess.Run(gctx, interval, notify)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown requested, stopping gRPC server")
		healthServer.SetServingStatus(server.ServiceName, healthgrpc.HealthCheckResponse_NOT_SERVING)
		healthServer.SetServingStatus("", healthgrpc.HealthCheckResponse_NOT_SERVING)

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()

		select {
		case <-stopped:
		case <-time.After(5 * time.Second):
			// WatchViews streams only end when their clients leave.
			logger.Warn("graceful stop timed out, forcing stop")
			grpcServer.Stop()
		}
		return nil
	})

	return g.Wait()
}

// resolveBackend turns the configured capture backend into a device factory.
// "auto" prefers the native backend and falls back to the tone generator when
// none is compiled in.
func resolveBackend(ctx context.Context, cfg config.Config, params capture.Params, logger *slog.Logger) (capture.Factory, string, error) {
	tone := capture.ToneFactory(cfg.ToneFrequencyHz, capture.DefaultToneAmplitude)

	resolved := cfg.CaptureBackend
	isAutoMode := resolved == "auto"
	if isAutoMode {
		if capture.NativeAvailable() {
			resolved = "native"
		} else {
			resolved = "tone"
			logger.Warn("auto-detected capture backend: tone (no native backend compiled in, build with -tags portaudio or -tags malgo)")
		}
	}

	switch resolved {
	case "native":
		if !capture.NativeAvailable() {
			return nil, "", errors.New(`capture backend "native" requested but no native backend compiled in (build with -tags portaudio or -tags malgo)`)
		}
		// Probe: verify the input device opens before accepting traffic.
		probe, err := capture.NewNativeDevice(ctx, params)
		if err != nil {
			devMode := os.Getenv("NUPI_DEV_MODE") == "1"
			if isAutoMode && devMode {
				logger.Warn("native capture probe failed, falling back to tone generator (NUPI_DEV_MODE=1)",
					"error", err,
					"hint", "unset NUPI_DEV_MODE for production behavior")
				return tone, "tone", nil
			}
			if isAutoMode {
				logger.Error("hint: set NUPI_DEV_MODE=1 to allow fallback to the tone generator")
			}
			return nil, "", fmt.Errorf("native capture probe failed: %w", err)
		}
		probe.Close()
		logger.Info("capture device ready", "backend", capture.NativeBackend())
		return capture.NewNativeDevice, capture.NativeBackend(), nil
	default:
		logger.Warn("using tone generator, user pitch is synthetic and NOT taken from a microphone",
			"frequency_hz", cfg.ToneFrequencyHz)
		return tone, "tone", nil
	}
}

// newLogger builds the adapter logger. With a log file configured, output
// goes to a size-rotated file instead of stdout.
func newLogger(level, file string) (*slog.Logger, func()) {
	var out io.Writer = os.Stdout
	closeFn := func() {}
	if file != "" {
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		out = rotating
		closeFn = func() { rotating.Close() }
	}
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler), closeFn
}

func parseLevel(value string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
