package api

import (
	"sync"

	"github.com/google/uuid"

	"github.com/lingvolab/lingvo/internal/domain"
	"github.com/lingvolab/lingvo/internal/infra/metrics"
)

// ChatHub fans group messages out to connected SSE clients. Sends never
// block: a client that cannot keep up just misses messages; history is
// re-fetched over the REST endpoint on reconnect.
type ChatHub struct {
	mu     sync.Mutex
	groups map[int64]map[string]chan domain.Message
	closed bool
}

func NewChatHub() *ChatHub {
	return &ChatHub{groups: make(map[int64]map[string]chan domain.Message)}
}

// Subscribe registers a listener on a group and returns its feed plus an
// unsubscribe function. The feed is closed by Shutdown or unsubscribe.
func (h *ChatHub) Subscribe(groupID int64) (<-chan domain.Message, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan domain.Message, 16)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := uuid.NewString()
	clients := h.groups[groupID]
	if clients == nil {
		clients = make(map[string]chan domain.Message)
		h.groups[groupID] = clients
	}
	clients[id] = ch
	metrics.ChatClients.Inc()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.groups[groupID][id]; ok {
			delete(h.groups[groupID], id)
			close(c)
			metrics.ChatClients.Dec()
		}
		if len(h.groups[groupID]) == 0 {
			delete(h.groups, groupID)
		}
	}
}

// Broadcast delivers a message to every listener on its group.
func (h *ChatHub) Broadcast(m domain.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.groups[m.GroupID] {
		select {
		case ch <- m:
		default:
		}
	}
}

// Shutdown closes every feed. Further subscriptions get a closed channel.
func (h *ChatHub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for gid, clients := range h.groups {
		for id, ch := range clients {
			close(ch)
			delete(clients, id)
			metrics.ChatClients.Dec()
		}
		delete(h.groups, gid)
	}
}
