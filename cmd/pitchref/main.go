// Command pitchref prepares reference files for the pitch-compare adapter
// and talks to a running adapter.
//
// Usage:
//
//	pitchref extract <in.wav> [-o out.json] [--frame-size 4096]
//	pitchref check <reference> [--script segments.yaml]
//	pitchref watch [--addr localhost:50051] [--width 64]
//	pitchref start|stop [--addr localhost:50051]
//	pitchref seek <seconds> [--addr localhost:50051]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/nupi-ai/plugin-pitch-compare/internal/render"
	"github.com/nupi-ai/plugin-pitch-compare/internal/server"
	"github.com/nupi-ai/plugin-pitch-compare/internal/source"
	"github.com/nupi-ai/plugin-pitch-compare/internal/timeline"
)

const defaultAddr = "localhost:50051"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "pitchref:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pitchref",
		Short:         "Reference tooling and client for the pitch-compare adapter",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newExtractCmd(),
		newCheckCmd(),
		newWatchCmd(),
		newControlCmd("start", "Start capturing"),
		newControlCmd("stop", "Stop capturing and keep the last view"),
		newSeekCmd(),
	)
	return root
}

func newExtractCmd() *cobra.Command {
	var (
		output    string
		frameSize int
	)
	cmd := &cobra.Command{
		Use:   "extract <in.wav>",
		Short: "Extract a reference pitch series from a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			series, err := source.ExtractWAV(args[0], frameSize)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := source.WriteReference(w, series); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "extracted %d frames of %d samples\n", len(series), frameSize)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the series to this file instead of stdout")
	cmd.Flags().IntVar(&frameSize, "frame-size", source.DefaultFrameSize, "samples per analysis frame")
	return cmd
}

func newCheckCmd() *cobra.Command {
	var (
		script    string
		frameSize int
	)
	cmd := &cobra.Command{
		Use:   "check <reference>",
		Short: "Validate a reference series and optional segments file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := source.OpenReference(args[0], frameSize)
			if err != nil {
				return err
			}
			segments, err := source.LoadScript(script)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "samples\t%d\n", ref.Len())
			fmt.Fprintf(tw, "span\t%.3fs - %.3fs\n", ref.Start(), ref.End())
			fmt.Fprintf(tw, "frame duration\t%.4fs\n", ref.FrameDuration())
			fmt.Fprintf(tw, "segments\t%d\n", len(segments))
			if len(segments) > 0 {
				fmt.Fprintln(tw)
				fmt.Fprintln(tw, "#\tstart\tend\twindow\tlabel")
				for i, seg := range segments {
					start, end := timeline.EffectiveWindow(segments, i)
					fmt.Fprintf(tw, "%d\t%.3f\t%.3f\t[%.3f, %.3f)\t%s\n", i, seg.StartTime, seg.EndTime, start, end, seg.Label)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&script, "script", "", "segments file (.json or .yaml)")
	cmd.Flags().IntVar(&frameSize, "frame-size", source.DefaultFrameSize, "samples per analysis frame when the reference is a WAV file")
	return cmd
}

func newWatchCmd() *cobra.Command {
	var (
		addr  string
		width int
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print live comparison views from a running adapter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, closeConn, err := dial(addr)
			if err != nil {
				return err
			}
			defer closeConn()

			stream, err := client.WatchViews(cmd.Context(), &emptypb.Empty{})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			console := render.NewConsole(out, width)
			fmt.Fprintln(out, render.Legend())
			for {
				raw, err := stream.Recv()
				if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
					return nil
				}
				if err != nil {
					return err
				}
				msg, err := server.DecodeViewMessage(raw)
				if err != nil {
					return err
				}
				if err := console.Render(watchLabel(msg), msg.View); err != nil {
					return err
				}
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "adapter address")
	cmd.Flags().IntVar(&width, "width", render.DefaultWidth, "columns per strip")
	return cmd
}

func watchLabel(msg server.ViewMessage) string {
	label := fmt.Sprintf("%s t=%.2fs", msg.State, msg.Playhead)
	if msg.Segment != timeline.None {
		label += fmt.Sprintf(" #%d", msg.Segment)
	}
	if msg.Label != "" {
		label += " " + strconv.Quote(msg.Label)
	}
	if msg.Error != "" {
		label += " error: " + msg.Error
	}
	return label
}

func newControlCmd(name, short string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, closeConn, err := dial(addr)
			if err != nil {
				return err
			}
			defer closeConn()

			call := client.Start
			if name == "stop" {
				call = client.Stop
			}
			_, err = call(cmd.Context(), &emptypb.Empty{})
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "adapter address")
	return cmd
}

func newSeekCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "seek <seconds>",
		Short: "Set the external playhead of a running adapter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sec, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid playhead %q: %w", args[0], err)
			}
			client, closeConn, err := dial(addr)
			if err != nil {
				return err
			}
			defer closeConn()

			_, err = client.SetPlayhead(cmd.Context(), wrapperspb.Double(sec))
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "adapter address")
	return cmd
}

func dial(addr string) (server.ComparisonServiceClient, func(), error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(server.MaxViewBytes)),
	)
	if err != nil {
		return nil, nil, err
	}
	return server.NewComparisonServiceClient(conn), func() { conn.Close() }, nil
}
