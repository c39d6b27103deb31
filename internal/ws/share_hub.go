package ws

import (
	"encoding/json"
	"sync"

	"sentra/internal/models"
)

// Viewer is a single websocket connection watching one share token.
type Viewer struct {
	Token  string
	Send   chan []byte
	hub    *ShareHub
	closed bool // guarded by hub.mu
}

func (v *Viewer) Close() {
	if v.hub != nil {
		v.hub.unregister(v)
	}
}

// ShareHub fans out fresh track points to the viewers of each share token.
// It implements service.Broadcaster.
type ShareHub struct {
	mu      sync.RWMutex
	byToken map[string]map[*Viewer]struct{}
}

func NewShareHub() *ShareHub {
	return &ShareHub{byToken: make(map[string]map[*Viewer]struct{})}
}

func (h *ShareHub) Register(v *Viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v.hub = h
	if h.byToken[v.Token] == nil {
		h.byToken[v.Token] = make(map[*Viewer]struct{})
	}
	h.byToken[v.Token][v] = struct{}{}
}

// unregister removes the viewer and closes its channel. Closing under the
// write lock while broadcasts send under the read lock rules out a send on
// the closed channel.
func (h *ShareHub) unregister(v *Viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	close(v.Send)
	if m := h.byToken[v.Token]; m != nil {
		delete(m, v)
		if len(m) == 0 {
			delete(h.byToken, v.Token)
		}
	}
}

// BroadcastPoint sends a new point to every viewer of the token. Slow
// viewers are skipped rather than blocking the update path.
func (h *ShareHub) BroadcastPoint(token string, point *models.LiveLocationTrackPoint) {
	payload := map[string]interface{}{
		"type":        "point",
		"latitude":    point.Latitude,
		"longitude":   point.Longitude,
		"recorded_at": point.RecordedAt,
	}
	data, _ := json.Marshal(payload)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for v := range h.byToken[token] {
		select {
		case v.Send <- data:
		default:
		}
	}
}

// ViewerCount reports connected viewers for a token.
func (h *ShareHub) ViewerCount(token string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byToken[token])
}
