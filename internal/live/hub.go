// Package live pushes whole-collection snapshots to WebSocket subscribers.
// A subscriber gets the current state of each collection it asked for on
// connect, then a fresh copy every time that collection changes.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Collection names a dataset subscribers can follow.
type Collection string

// Collections served by the hub.
const (
	Inventory Collection = "inventory"
	Requests  Collection = "requests"
	Settings  Collection = "settings"
)

// AllCollections is the default subscription.
var AllCollections = []Collection{Inventory, Requests, Settings}

// ParseCollections parses a comma-separated list. An empty list selects
// every collection.
func ParseCollections(s string) ([]Collection, error) {
	if strings.TrimSpace(s) == "" {
		return AllCollections, nil
	}
	var out []Collection
	seen := make(map[Collection]bool)
	for _, part := range strings.Split(s, ",") {
		c := Collection(strings.TrimSpace(part))
		switch c {
		case Inventory, Requests, Settings:
		default:
			return nil, fmt.Errorf("unknown collection %q", part)
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

// Message is the frame sent to subscribers.
type Message struct {
	Type       string     `json:"type"`
	Collection Collection `json:"collection"`
	Data       any        `json:"data"`
}

// Source loads the current content of a collection.
type Source interface {
	Snapshot(ctx context.Context, c Collection) (any, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, c Collection) (any, error)

// Snapshot calls f.
func (f SourceFunc) Snapshot(ctx context.Context, c Collection) (any, error) {
	return f(ctx, c)
}

var errHubStopped = errors.New("live hub stopped")

type broadcast struct {
	collection Collection
	payload    []byte
}

// Hub owns the subscriber registry. All registry changes happen on the
// goroutine running Run.
type Hub struct {
	source Source

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcast
	count      chan chan int
	done       chan struct{}

	// publishMu orders snapshot loads with their delivery, so a
	// subscriber never sees an older snapshot after a newer one.
	publishMu sync.Mutex
}

// NewHub creates a hub that loads snapshots from source.
func NewHub(source Source) *Hub {
	return &Hub{
		source:     source,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcast),
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is done, then
// disconnects every subscriber.
func (h *Hub) Run(ctx context.Context) {
	slog.Info("live hub started")
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			slog.Info("live hub stopped")
			return

		case c := <-h.register:
			h.clients[c] = true

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case b := <-h.broadcast:
			for c := range h.clients {
				if !c.subscribed(b.collection) {
					continue
				}
				select {
				case c.send <- b.payload:
				default:
					// Too slow to keep up; it can reconnect for a fresh snapshot.
					slog.Warn("dropping slow live subscriber", "remote", c.remote)
					delete(h.clients, c)
					close(c.send)
				}
			}

		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

// Clients returns the number of connected subscribers, or 0 once the hub
// has stopped.
func (h *Hub) Clients() int {
	reply := make(chan int)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) encode(ctx context.Context, c Collection) ([]byte, error) {
	data, err := h.source.Snapshot(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("loading %s snapshot: %w", c, err)
	}
	payload, err := json.Marshal(Message{Type: "snapshot", Collection: c, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encoding %s snapshot: %w", c, err)
	}
	return payload, nil
}

// Publish sends a fresh snapshot of each collection to its subscribers.
// Failures are logged; a subscriber catches up on the next change.
func (h *Hub) Publish(ctx context.Context, collections ...Collection) {
	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	for _, c := range collections {
		payload, err := h.encode(ctx, c)
		if err != nil {
			slog.Error("failed to publish snapshot", "collection", c, "error", err)
			continue
		}
		select {
		case h.broadcast <- broadcast{collection: c, payload: payload}:
		case <-h.done:
			return
		}
	}
}

// subscribe queues the initial snapshots on c and registers it.
func (h *Hub) subscribe(ctx context.Context, c *Client) error {
	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	for _, col := range c.collections {
		payload, err := h.encode(ctx, col)
		if err != nil {
			return err
		}
		c.send <- payload
	}
	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return errHubStopped
	}
}
