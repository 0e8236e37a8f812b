package server

import (
	"context"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/warpdl/iback/pkg/logger"
)

// Hub maintains the set of connected jrpc2 servers, one per WebSocket
// client, and broadcasts push notifications to all of them.
type Hub struct {
	mu      sync.RWMutex
	servers map[*jrpc2.Server]struct{}
	log     logger.Logger
}

// NewHub creates an empty hub. A nil logger discards messages.
func NewHub(l logger.Logger) *Hub {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Hub{
		servers: make(map[*jrpc2.Server]struct{}),
		log:     l,
	}
}

// Register adds a server to the broadcast set.
func (h *Hub) Register(srv *jrpc2.Server) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.servers[srv] = struct{}{}
}

// Unregister removes a server from the broadcast set.
func (h *Hub) Unregister(srv *jrpc2.Server) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.servers, srv)
}

func (h *Hub) snapshot() []*jrpc2.Server {
	h.mu.RLock()
	defer h.mu.RUnlock()
	servers := make([]*jrpc2.Server, 0, len(h.servers))
	for srv := range h.servers {
		servers = append(servers, srv)
	}
	return servers
}

// Broadcast pushes a notification to every registered server. Servers that
// fail to receive it are dropped.
func (h *Hub) Broadcast(ctx context.Context, method string, params any) {
	var failed []*jrpc2.Server
	for _, srv := range h.snapshot() {
		if err := srv.Notify(ctx, method, params); err != nil {
			h.log.Warning("feed: push %s failed: %v", method, err)
			failed = append(failed, srv)
		}
	}
	if len(failed) == 0 {
		return
	}
	h.mu.Lock()
	for _, srv := range failed {
		delete(h.servers, srv)
	}
	h.mu.Unlock()
}

// Close stops every registered server, which closes its connection.
func (h *Hub) Close() {
	for _, srv := range h.snapshot() {
		srv.Stop()
	}
}

// Count returns the number of registered servers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.servers)
}
