package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/tourguide/internal/logging"
	"github.com/muurk/tourguide/internal/tour"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// DefaultSendBuffer is the per-client queue length.
	DefaultSendBuffer = 32

	// Path is the WebSocket endpoint.
	Path = "/ws"
)

// IntentSource is the source name reported to the engine for bridge intents.
const IntentSource = "ws"

// Engine is the part of the tour engine the bridge drives.
type Engine interface {
	Definition() tour.Definition
	HandleIntent(source, intent string) bool
}

// Config holds the server configuration
type Config struct {
	Host       string
	Port       int
	SendBuffer int    // Per-client queue length (0 = DefaultSendBuffer)
	LogLevel   string // Re-initializes logging when set
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port))
}

// client is one connected bridge peer.
type client struct {
	addr string
	conn *websocket.Conn
	send chan []byte
}

// Server is the tour WebSocket bridge. It implements tour.Renderer and
// tour.Listener.
type Server struct {
	config   *Config
	engine   Engine
	upgrader websocket.Upgrader
	httpSrv  *http.Server
	listener net.Listener
	wg       sync.WaitGroup

	mu          sync.Mutex
	activeConns map[string]*client
	lastStep    []byte
	lastFrame   []byte
}

// New creates a new Server instance
func New(config *Config, engine Engine) (*Server, error) {
	if engine == nil {
		return nil, errors.New("server: engine is required")
	}
	if config.LogLevel != "" {
		if err := logging.Initialize(config.LogLevel); err != nil {
			return nil, fmt.Errorf("failed to initialize logging: %w", err)
		}
	}
	if config.SendBuffer <= 0 {
		config.SendBuffer = DefaultSendBuffer
	}

	s := &Server{
		config: config,
		engine: engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		activeConns: make(map[string]*client),
	}
	s.httpSrv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the HTTP handler serving the bridge endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, s.handleWebSocket)
	return mux
}

// Start starts the server and blocks until shutdown
func (s *Server) Start(ctx context.Context) error {
	addr := s.config.Addr()
	logging.Info("Starting tour bridge",
		zap.String("addr", addr),
		zap.String("tour", s.engine.Definition().Name),
	)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	logging.Info("Server listening for connections",
		zap.String("addr", listener.Addr().String()),
	)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve(listener)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		return s.Shutdown(context.Background())
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Serve accepts bridge connections on listener until Shutdown.
func (s *Server) Serve(listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	err := s.httpSrv.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ListenAddr returns the bound address once serving, or nil.
func (s *Server) ListenAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	c := &client{
		addr: conn.RemoteAddr().String(),
		conn: conn,
		send: make(chan []byte, s.config.SendBuffer),
	}
	s.register(c)
	logging.LogConnection(c.addr, "bridge_connected")

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.writePump(c)
	}()

	defer s.wg.Done()
	s.readPump(c)
}

// register adds c and queues the current run state for it.
func (s *Server) register(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeConns[c.addr] = c
	for _, data := range [][]byte{s.lastStep, s.lastFrame} {
		if data == nil {
			continue
		}
		select {
		case c.send <- data:
		default:
		}
	}
}

// unregister removes c and closes its queue. Safe to call more than once.
func (s *Server) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked(c)
}

func (s *Server) dropLocked(c *client) {
	if cur, ok := s.activeConns[c.addr]; !ok || cur != c {
		return
	}
	delete(s.activeConns, c.addr)
	close(c.send)
}

func (s *Server) readPump(c *client) {
	defer func() {
		s.unregister(c)
		logging.LogConnection(c.addr, "bridge_closed")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("Connection closed or error reading frame",
					zap.String("remote_addr", c.addr),
					zap.Error(err),
				)
			}
			return
		}
		if msgType != websocket.TextMessage {
			logging.Warn("Ignoring non-text frame",
				zap.String("remote_addr", c.addr),
				zap.Int("message_type", msgType),
			)
			continue
		}
		s.handleMessage(c.addr, data)
	}
}

// handleMessage dispatches one client message.
func (s *Server) handleMessage(remoteAddr string, data []byte) {
	msg, err := ParseMessage(data)
	if err != nil {
		logging.Warn("Malformed bridge message",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		return
	}

	switch msg.Type {
	case TypeIntent:
		if !s.engine.HandleIntent(IntentSource, msg.Intent) {
			logging.Debug("Intent not applied",
				zap.String("remote_addr", remoteAddr),
				zap.String("intent", msg.Intent),
			)
		}
	default:
		logging.Warn("Unknown message type",
			zap.String("remote_addr", remoteAddr),
			zap.String("type", string(msg.Type)),
		)
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Debug("Write failed",
					zap.String("remote_addr", c.addr),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// broadcast queues msg for every client. Clients with a full queue are
// dropped.
func (s *Server) broadcast(msg Message, remember func(data []byte)) {
	data, err := msg.Encode()
	if err != nil {
		logging.Error("Failed to encode bridge message", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if remember != nil {
		remember(data)
	}
	for _, c := range s.activeConns {
		select {
		case c.send <- data:
		default:
			logging.Info("Dropping slow bridge client",
				zap.String("remote_addr", c.addr),
				zap.String("message", string(msg.Type)),
			)
			s.dropLocked(c)
		}
	}
}

// StepChanged implements tour.Listener.
func (s *Server) StepChanged(index int, step tour.Step) {
	total := len(s.engine.Definition().Steps)
	s.broadcast(StepChangedMessage(index, step, total), func(data []byte) {
		s.lastStep = data
		s.lastFrame = nil
	})
}

// Completed implements tour.Listener.
func (s *Server) Completed() {
	s.broadcast(Message{Type: TypeCompleted}, s.forget)
}

// Skipped implements tour.Listener.
func (s *Server) Skipped() {
	s.broadcast(Message{Type: TypeSkipped}, s.forget)
}

// Render implements tour.Renderer.
func (s *Server) Render(f tour.Frame) {
	s.broadcast(FrameMessage(f), func(data []byte) {
		s.lastFrame = data
	})
}

// Clear implements tour.Renderer.
func (s *Server) Clear() {
	s.broadcast(Message{Type: TypeCleared}, s.forget)
}

func (s *Server) forget([]byte) {
	s.lastStep = nil
	s.lastFrame = nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	// Stops the listener; hijacked WebSocket connections are closed below
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		logging.Error("Error closing listener", zap.Error(err))
	}

	s.mu.Lock()
	for addr, c := range s.activeConns {
		logging.Info("Closing active connection", zap.String("remote_addr", addr))
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}
	s.mu.Unlock()

	// Wait for all goroutines to finish with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	case <-time.After(10 * time.Second):
		logging.Warn("Shutdown timeout after 10 seconds, forcing close")
	}

	logging.Sync()
	return nil
}

// GetActiveConnections returns the number of active connections
func (s *Server) GetActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}
