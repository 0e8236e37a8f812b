// Package server publishes scheduler events to remote clients.
//
// Clients connect to /events/ws with a Bearer token and speak JSON-RPC 2.0
// over the WebSocket. Every scheduler event is pushed to every client as a
// notification named "iback.<event>". The feed is read-only: the only
// callable method is system.getVersion.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/warpdl/iback/internal/scheduler"
	"github.com/warpdl/iback/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultAddr is used when Config.Addr is empty.
	DefaultAddr = "127.0.0.1:8091"
	// EventsPath is the WebSocket endpoint.
	EventsPath = "/events/ws"

	eventBuffer     = 64
	shutdownTimeout = 5 * time.Second
)

// ErrFeedDisabled is returned by New when no secret is configured.
var ErrFeedDisabled = errors.New("server: event feed requires a secret")

// Config configures the event feed.
type Config struct {
	Addr    string
	Secret  string
	Version string
}

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version string `json:"version"`
}

// Server is the event feed. Publish may be called before Serve; events
// published while nobody is connected are dropped.
type Server struct {
	cfg     Config
	log     logger.Logger
	hub     *Hub
	methods handler.Map
	events  chan scheduler.Event
}

// New creates an event feed server.
func New(cfg Config, l logger.Logger) (*Server, error) {
	if cfg.Secret == "" {
		return nil, ErrFeedDisabled
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if l == nil {
		l = logger.NewNopLogger()
	}
	s := &Server{
		cfg:    cfg,
		log:    l,
		hub:    NewHub(l),
		events: make(chan scheduler.Event, eventBuffer),
	}
	s.methods = handler.Map{
		"system.getVersion": handler.New(s.getVersion),
	}
	return s, nil
}

func (s *Server) getVersion(context.Context) (VersionResult, error) {
	return VersionResult{Version: s.cfg.Version}, nil
}

// Handler returns the HTTP handler serving the feed.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(EventsPath, requireToken(s.cfg.Secret, http.HandlerFunc(s.handleWS)))
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		s.log.Warning("feed: websocket accept: %v", err)
		return
	}
	ch := newWSChannel(r.Context(), conn)
	srv := jrpc2.NewServer(s.methods, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(ch)
	s.hub.Register(srv)
	defer s.hub.Unregister(srv)
	s.log.Info("feed: client %s connected", r.RemoteAddr)
	_ = srv.Wait()
	s.log.Info("feed: client %s disconnected", r.RemoteAddr)
}

// Publish queues ev for broadcast. It never blocks; when the queue is full
// the event is dropped.
func (s *Server) Publish(ev scheduler.Event) {
	select {
	case s.events <- ev:
	default:
		s.log.Warning("feed: queue full, dropped %s event", ev.Type)
	}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	return s.hub.Count()
}

func (s *Server) pump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			s.hub.Broadcast(ctx, methodFor(ev.Type), notificationFor(ev))
		}
	}
}

// Serve serves the feed on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.pump(gctx)
		return nil
	})
	g.Go(func() error {
		if err := hs.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// Hijacked WebSocket connections are not tracked by Shutdown.
		s.hub.Close()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return hs.Shutdown(sctx)
	})
	return g.Wait()
}

// ListenAndServe listens on Config.Addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.log.Info("feed: listening on %s", ln.Addr())
	return s.Serve(ctx, ln)
}
