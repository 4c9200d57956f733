// Package server serves a workspace over HTTP: a JSON API for the builder
// operations, rendered preview and catalog pages, and a websocket channel
// that tells open previews to reload after every change.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/robfig/cron/v3"

	"github.com/conneroisu/webbuilder/internal/config"
	"github.com/conneroisu/webbuilder/internal/logging"
	"github.com/conneroisu/webbuilder/internal/projects"
	"github.com/conneroisu/webbuilder/internal/site"
)

// Client represents a WebSocket client
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	server *PreviewServer
}

// PreviewServer serves one workspace with live reload.
type PreviewServer struct {
	config *config.Config
	logger logging.Logger
	repo   *projects.Repository
	now    func() time.Time

	// mu serialises every access to workspace and dirty.
	mu        sync.Mutex
	workspace *site.Workspace
	dirty     bool

	httpServer   *http.Server
	serverMutex  sync.RWMutex
	clients      map[*websocket.Conn]*Client
	clientsMutex sync.RWMutex
	broadcast    chan []byte
	register     chan *Client
	unregister   chan *websocket.Conn
	cron         *cron.Cron
	shutdownOnce sync.Once
}

// UpdateMessage represents a message sent to the browser
type UpdateMessage struct {
	Type      string    `json:"type"`
	Event     string    `json:"event,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// New creates a server for ws. repo may be nil, in which case saving and
// autosave are disabled. The server becomes the workspace's event emitter.
func New(cfg *config.Config, ws *site.Workspace, repo *projects.Repository, logger logging.Logger) *PreviewServer {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &PreviewServer{
		config:     cfg,
		logger:     logger.WithComponent("server"),
		repo:       repo,
		now:        time.Now,
		workspace:  ws,
		clients:    make(map[*websocket.Conn]*Client),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *websocket.Conn),
	}
	ws.SetEmitter(s)

	return s
}

// Emit implements site.EventEmitter. Every workspace change except notices
// marks the workspace dirty; all of them are forwarded to connected browsers.
func (s *PreviewServer) Emit(ctx context.Context, event string, data any) {
	msgType := "reload"
	if event == site.EventNotice {
		msgType = "notice"
	} else {
		s.dirty = true
	}

	s.broadcastMessage(ctx, UpdateMessage{
		Type:      msgType,
		Event:     event,
		Data:      data,
		Timestamp: s.now().UTC(),
	})
}

// Handler returns the routed handler wrapped in the request middleware.
func (s *PreviewServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	mux.HandleFunc("GET /api/pages", s.handlePages)
	mux.HandleFunc("POST /api/pages", s.handleAddPage)
	mux.HandleFunc("GET /api/pages/{id}/elements", s.handleElements)
	mux.HandleFunc("POST /api/pages/{id}/elements", s.handleAddElement)
	mux.HandleFunc("PATCH /api/elements/{id}", s.handleUpdateElement)
	mux.HandleFunc("DELETE /api/elements/{id}", s.handleDeleteElement)
	mux.HandleFunc("POST /api/undo", s.handleUndo)
	mux.HandleFunc("POST /api/redo", s.handleRedo)
	mux.HandleFunc("GET /api/export/{format}", s.handleExport)
	mux.HandleFunc("POST /api/save", s.handleSave)

	mux.HandleFunc("GET /preview", s.handlePreview)
	mux.HandleFunc("GET /catalog", s.handleCatalogPage)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/preview", http.StatusFound)
	})

	return s.addMiddleware(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *PreviewServer) Start(ctx context.Context) error {
	go s.runWebSocketHub(ctx)

	if err := s.startAutosave(ctx); err != nil {
		return err
	}

	addr := s.config.Server.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "preview server listening",
		"url", "http://"+ln.Addr().String(),
		"project", s.projectName())

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.Shutdown(shutdownCtx)
}

// startAutosave schedules saving of a dirty workspace on the configured cron
// spec. It is a no-op without a repository or spec.
func (s *PreviewServer) startAutosave(ctx context.Context) error {
	spec := s.config.Server.Autosave
	if s.repo == nil || spec == "" {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() { s.autosave(ctx) }); err != nil {
		return fmt.Errorf("invalid autosave schedule %q: %w", spec, err)
	}
	c.Start()
	s.cron = c
	s.logger.Debug(ctx, "autosave scheduled", "spec", spec)

	return nil
}

func (s *PreviewServer) autosave(ctx context.Context) {
	s.mu.Lock()
	dirty := s.dirty
	s.mu.Unlock()
	if !dirty {
		return
	}

	if err := s.Save(ctx); err != nil {
		s.logger.Error(ctx, err, "autosave failed")
	}
}

// Save stores the workspace in the repository and clears the dirty flag.
func (s *PreviewServer) Save(ctx context.Context) error {
	if s.repo == nil {
		return fmt.Errorf("no repository configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveWorkspace(ctx, s.workspace); err != nil {
		return err
	}
	s.dirty = false
	s.logger.Debug(ctx, "workspace saved", "project", s.workspace.Name())

	return nil
}

// Shutdown stops autosave, saves pending changes, closes every websocket and
// stops the HTTP server.
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "shutting down server")

		if s.cron != nil {
			<-s.cron.Stop().Done()
		}
		if s.repo != nil {
			s.autosave(ctx)
		}

		s.clientsMutex.Lock()
		for conn, client := range s.clients {
			close(client.send)
			conn.Close(websocket.StatusGoingAway, "server shutting down")
		}
		s.clients = make(map[*websocket.Conn]*Client)
		s.clientsMutex.Unlock()

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}

// broadcastMessage queues msg for every client. It never blocks: when the
// queue is full the message is dropped, since the next one reloads anyway.
func (s *PreviewServer) broadcastMessage(ctx context.Context, msg UpdateMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Warn(ctx, err, "failed to marshal update message")
		data = []byte(`{"type":"reload"}`)
	}

	select {
	case s.broadcast <- data:
	default:
		s.logger.Warn(ctx, nil, "broadcast queue full, dropping message", "event", msg.Event)
	}
}

// ClientCount returns the number of connected websocket clients.
func (s *PreviewServer) ClientCount() int {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()

	return len(s.clients)
}

func (s *PreviewServer) projectName() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.workspace.Name()
}
