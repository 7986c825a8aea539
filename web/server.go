// Package web serves the popover page and relays key events and bus
// notifications over a WebSocket.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"markestedt/dictbar/config"
	"markestedt/dictbar/hotkey"
	"markestedt/dictbar/storage"
)

//go:embed static/*
var staticFiles embed.FS

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Bound to loopback only
	},
}

// Backend is the application state the server exposes.
type Backend interface {
	Hotkey() (hotkey.Combo, bool)
	BeginCapture() error
	EndCapture() error
	Capturing() bool

	PopoverOpen() bool
	OpenPopover()
	ClosePopover()
	TogglePopover()

	Dictionaries() []config.Dictionary
	SelectedDictionary() int
	SelectDictionary(index int) error

	// HandleKeyDown feeds an in-app key press to the local channel and
	// reports whether it was consumed.
	HandleKeyDown(keyCode uint16, flags uint64) bool
}

// Server represents the web server
type Server struct {
	backend Backend
	db      *storage.DB
	port    int
	hub     *Hub

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewServer creates a new web server. db may be nil, which disables the
// activity endpoints.
func NewServer(backend Backend, db *storage.DB, port int) *Server {
	hub := NewHub()
	go hub.Run()

	return &Server{
		backend: backend,
		db:      db,
		port:    port,
		hub:     hub,
	}
}

// Handler builds the HTTP routes.
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/hotkey", s.handleHotkey)
	mux.HandleFunc("/api/preferences/capture", s.handleCapture)
	mux.HandleFunc("/api/popover", s.handlePopover)
	mux.HandleFunc("/api/dictionaries", s.handleDictionaries)
	mux.HandleFunc("/api/dictionaries/selected", s.handleSelectDictionary)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/activity", s.handleActivity)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/ws", s.handleWebSocket)

	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to load static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	return mux, nil
}

// Start listens on the loopback interface and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return errors.New("web server already started")
	}

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Web server error", "error", err)
		}
	}()

	slog.Info("Starting web server", "url", s.urlLocked())
	return nil
}

// Stop shuts the server down and disconnects all clients.
func (s *Server) Stop() error {
	s.hub.Stop()

	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}
	return nil
}

// URL returns the page address, or "" before Start.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.urlLocked()
}

func (s *Server) urlLocked() string {
	if s.listener == nil {
		return ""
	}
	return "http://" + s.listener.Addr().String() + "/"
}

// ClientCount reports how many popover pages are connected.
func (s *Server) ClientCount() int {
	return s.hub.ClientCount()
}

// BroadcastNotification relays a bus notification to all clients.
func (s *Server) BroadcastNotification(n hotkey.Notification) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeNotification,
		Data: NotificationMessage{
			Topic:   string(n.Topic),
			Channel: n.Channel.String(),
			Hotkey:  hotkeyView(n.Combo),
		},
	})
}

// BroadcastPopover tells clients whether the popover is shown.
func (s *Server) BroadcastPopover(open bool) {
	s.hub.BroadcastMessage(Message{Type: MessageTypePopover, Data: PopoverMessage{Open: open}})
}

// BroadcastDictionary announces the selected dictionary.
func (s *Server) BroadcastDictionary(index int) {
	dicts := s.backend.Dictionaries()
	if index < 0 || index >= len(dicts) {
		return
	}
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeDictionary,
		Data: DictionaryMessage{Index: index, Dictionary: dicts[index]},
	})
}

// BroadcastHotkey announces the current shortcut.
func (s *Server) BroadcastHotkey(c hotkey.Combo, registered bool) {
	view := hotkeyView(c)
	view.Registered = registered
	s.hub.BroadcastMessage(Message{Type: MessageTypeHotkey, Data: view})
}

// BroadcastCapture tells clients a capture session started or ended.
func (s *Server) BroadcastCapture(active bool) {
	s.hub.BroadcastMessage(Message{Type: MessageTypeCapture, Data: CaptureMessage{Active: active}})
}

// BroadcastState sends the full state, used after a config reload.
func (s *Server) BroadcastState() {
	s.hub.BroadcastMessage(Message{Type: MessageTypeState, Data: s.state()})
}

func (s *Server) state() StateMessage {
	combo, registered := s.backend.Hotkey()
	view := hotkeyView(combo)
	view.Registered = registered
	return StateMessage{
		PopoverOpen:  s.backend.PopoverOpen(),
		Capturing:    s.backend.Capturing(),
		Hotkey:       view,
		Selected:     s.backend.SelectedDictionary(),
		Dictionaries: s.backend.Dictionaries(),
	}
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := &Client{
		hub:       s.hub,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		onMessage: s.handleClientMessage,
	}

	if !s.hub.add(client) {
		conn.Close()
		return
	}
	client.reply(Message{Type: MessageTypeState, Data: s.state()})

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// handleClientMessage runs on the client's read goroutine.
func (s *Server) handleClientMessage(c *Client, data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Debug("Invalid WebSocket message", "error", err)
		c.reply(Message{Type: MessageTypeError, Data: ErrorMessage{Message: "invalid JSON"}})
		return
	}

	switch msg.Type {
	case ClientMessageKeyDown:
		swallow := false
		if key, ok := hotkey.KeyCodeForDOMCode(msg.Code); ok {
			swallow = s.backend.HandleKeyDown(uint16(key), msg.ModifierFlags)
		} else {
			slog.Debug("Ignoring unmapped key", "code", msg.Code)
		}
		c.reply(Message{Type: MessageTypeKey, Data: KeyMessage{Swallow: swallow}})
	default:
		c.reply(Message{Type: MessageTypeError, Data: ErrorMessage{Message: "unknown message type " + msg.Type}})
	}
}
