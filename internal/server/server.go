// Package server exposes a comparison session over gRPC: control calls to
// start and stop capture, an external playhead input and view snapshots,
// polled or streamed.
package server

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/nupi-ai/plugin-pitch-compare/internal/capture"
	"github.com/nupi-ai/plugin-pitch-compare/internal/session"
	"github.com/nupi-ai/plugin-pitch-compare/internal/timeline"
)

// MaxViewBytes bounds a single view message. A view carries every reference
// sample of its window, so long references without segments need more than
// the gRPC default.
const MaxViewBytes = 16 << 20

// Server implements ComparisonServiceServer on top of one session.
type Server struct {
	UnimplementedComparisonServiceServer

	session *session.Session
	hub     *Hub
	log     *slog.Logger
}

// New returns a Server controlling sess. Views are streamed from hub.
func New(sess *session.Session, hub *Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if hub == nil {
		hub = NewHub(logger)
	}
	return &Server{
		session: sess,
		hub:     hub,
		log:     logger.With("component", "server"),
	}
}

// Start begins capturing. Calling it while capturing is a no-op.
func (s *Server) Start(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.session.Start(ctx); err != nil {
		s.hub.Publish(s.session.Snapshot())
		return nil, toStatus(err)
	}
	s.hub.Publish(s.session.Snapshot())
	return &emptypb.Empty{}, nil
}

// Stop ends capturing and leaves the last view in place.
func (s *Server) Stop(_ context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.session.Stop(); err != nil {
		s.log.Warn("stop reported an error", "error", err)
	}
	s.hub.Publish(s.session.Snapshot())
	return &emptypb.Empty{}, nil
}

// SetPlayhead feeds the external media clock.
func (s *Server) SetPlayhead(_ context.Context, req *wrapperspb.DoubleValue) (*emptypb.Empty, error) {
	if err := s.session.SetPlayhead(req.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// GetView returns the current status and view.
func (s *Server) GetView(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	msg, err := EncodeSnapshot(s.session.Snapshot())
	if err != nil {
		return nil, toStatus(err)
	}
	return msg, nil
}

// WatchViews sends the current view followed by every view the tick loop
// publishes until the client goes away.
func (s *Server) WatchViews(_ *emptypb.Empty, stream ComparisonService_WatchViewsServer) error {
	views, unsubscribe := s.hub.Subscribe(DefaultSubscriberBuffer)
	defer unsubscribe()

	first, err := EncodeSnapshot(s.session.Snapshot())
	if err != nil {
		return toStatus(err)
	}
	if err := stream.Send(first); err != nil {
		return err
	}
	s.log.Debug("watcher attached", "watchers", s.hub.Subscribers())

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			s.log.Debug("watcher detached", "reason", ctx.Err())
			return nil
		case msg := <-views:
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}

// toStatus maps session errors onto gRPC codes.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, timeline.ErrConfiguration):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, capture.ErrDevice):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
