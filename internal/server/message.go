package server

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nupi-ai/plugin-pitch-compare/internal/compare"
	"github.com/nupi-ai/plugin-pitch-compare/internal/session"
)

// ViewMessage is the payload of GetView and WatchViews, carried as a
// google.protobuf.Struct.
type ViewMessage struct {
	State     string       `json:"state"`
	Segment   int          `json:"segment"`
	Label     string       `json:"label,omitempty"`
	Playhead  float64      `json:"playhead"`
	Frames    int64        `json:"frames"`
	LastFrame int64        `json:"last_frame"`
	Error     string       `json:"error,omitempty"`
	View      compare.View `json:"view"`
}

// NewViewMessage flattens a session snapshot.
func NewViewMessage(snap session.Snapshot) ViewMessage {
	msg := ViewMessage{
		State:     snap.Status.State.String(),
		Segment:   snap.Status.Segment,
		Label:     snap.Status.Label,
		Playhead:  snap.Status.Playhead,
		Frames:    snap.Status.Frames,
		LastFrame: snap.Status.LastFrame,
		View:      snap.View,
	}
	if snap.Status.Err != nil {
		msg.Error = snap.Status.Err.Error()
	}
	return msg
}

// EncodeSnapshot converts a snapshot into its wire form.
func EncodeSnapshot(snap session.Snapshot) (*structpb.Struct, error) {
	raw, err := json.Marshal(NewViewMessage(snap))
	if err != nil {
		return nil, fmt.Errorf("server: encode view: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("server: encode view: %w", err)
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("server: encode view: %w", err)
	}
	return s, nil
}

// DecodeViewMessage parses the wire form produced by EncodeSnapshot.
func DecodeViewMessage(s *structpb.Struct) (ViewMessage, error) {
	raw, err := protojson.Marshal(s)
	if err != nil {
		return ViewMessage{}, fmt.Errorf("server: decode view: %w", err)
	}
	var msg ViewMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return ViewMessage{}, fmt.Errorf("server: decode view: %w", err)
	}
	return msg, nil
}
