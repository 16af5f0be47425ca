// Package monitor broadcasts live evaluation progress over a
// websocket so an operator can watch a long corpus load or evaluation
// run without tailing logs: a handler struct wrapping a domain object
// (the Hub), using github.com/gorilla/websocket for the wire protocol.
package monitor

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Stage names a phase of corpus loading or evaluation a client can be
// notified about.
type Stage string

const (
	StageLoadingArticles  Stage = "loading_articles"
	StageLoadingGazetteer Stage = "loading_gazetteer"
	StageLoadingWordDists Stage = "loading_word_dists"
	StageBuildingGrid     Stage = "building_grid"
	StageEvaluating       Stage = "evaluating"
	StageDone             Stage = "done"
)

// Event is one progress notification broadcast to every connected
// client.
type Event struct {
	Stage     Stage  `json:"stage"`
	Processed int    `json:"processed"`
	Total     int    `json:"total,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// Hub fans out Events to every connected websocket client. The zero
// value is not usable; construct with NewHub.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	last    *Event
}

type client struct {
	send chan Event
}

// NewHub returns an empty Hub ready to accept client registrations and
// broadcasts.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Broadcast sends ev to every currently connected client and records
// it as the snapshot a newly connecting client receives first. A slow
// or stalled client is dropped rather than allowed to block the
// broadcaster.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	h.last = &ev
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			slog.Warn("monitor: dropping slow client")
			delete(h.clients, c)
			close(c.send)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) register() *client {
	c := &client{send: make(chan Event, 16)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	last := h.last
	h.mu.Unlock()

	if last != nil {
		select {
		case c.send <- *last:
		default:
		}
	}
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func marshalEvent(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}
