package server

import (
	"log/slog"
	"sync"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nupi-ai/plugin-pitch-compare/internal/session"
)

// DefaultSubscriberBuffer is the number of views queued per watcher.
const DefaultSubscriberBuffer = 8

// Hub fans session snapshots out to watchers. Publishing never blocks: a
// watcher whose queue is full misses the view.
type Hub struct {
	log *slog.Logger

	mu      sync.Mutex
	subs    map[chan *structpb.Struct]struct{}
	dropped int64
}

// NewHub returns an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		log:  logger.With("component", "hub"),
		subs: make(map[chan *structpb.Struct]struct{}),
	}
}

// Publish encodes snap once and offers it to every watcher.
func (h *Hub) Publish(snap session.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.subs) == 0 {
		return
	}
	msg, err := EncodeSnapshot(snap)
	if err != nil {
		h.log.Error("dropping view", "error", err)
		return
	}
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
			h.dropped++
		}
	}
}

// Subscribe registers a watcher with a queue of buffer views. The returned
// function unregisters it and must be called once.
func (h *Hub) Subscribe(buffer int) (<-chan *structpb.Struct, func()) {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	ch := make(chan *structpb.Struct, buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
}

// Subscribers returns the number of registered watchers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Dropped returns how many views were skipped for slow watchers.
func (h *Hub) Dropped() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}
