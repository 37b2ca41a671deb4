package main

import (
	"context"
	"net/http"
	"sync"

	"github.com/example/epidemic_sim/telemetry"
	"github.com/example/epidemic_sim/visual"
)

// WebServer provides the HTTP and WebSocket surface for visualization and
// control. It never touches the simulation directly: control requests are
// queued as commands for the run loop, and reads serve the frame the loop
// last published.
type WebServer struct {
	mu          sync.RWMutex
	latestFrame *SimulationFrame

	window   *telemetry.Window
	commands chan visual.ControlCommand
	hub      *wsHub
	server   *http.Server
}

// NewWebServer creates a server bound to addr, reading history from window.
func NewWebServer(addr string, window *telemetry.Window) *WebServer {
	ws := &WebServer{
		window:   window,
		commands: make(chan visual.ControlCommand, 10),
		hub:      newHub(),
	}
	ws.server = &http.Server{
		Addr:    addr,
		Handler: NewRouter(ws),
	}
	return ws
}

// Start begins serving in a goroutine.
func (ws *WebServer) Start() {
	go func() {
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			GetLogger().Errorf("Web server failed: %v", err)
		}
	}()
	GetLogger().Infof("Web server listening at http://%s", ws.server.Addr)
}

// Shutdown stops the HTTP server gracefully.
func (ws *WebServer) Shutdown(ctx context.Context) error {
	return ws.server.Shutdown(ctx)
}

// UpdateFrame replaces the cached frame and pushes it to WebSocket clients.
func (ws *WebServer) UpdateFrame(frame *SimulationFrame) {
	ws.mu.Lock()
	ws.latestFrame = frame
	ws.mu.Unlock()
	ws.hub.broadcastFrame(frame)
}

// Frame returns the latest published frame, or nil before the first one.
func (ws *WebServer) Frame() *SimulationFrame {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.latestFrame
}

// NextCommand returns the next control command if available, non-blocking.
func (ws *WebServer) NextCommand() (visual.ControlCommand, bool) {
	select {
	case cmd := <-ws.commands:
		return cmd, true
	default:
		return visual.ControlCommand{Type: visual.CommandNone}, false
	}
}

// WaitCommand blocks until a command arrives or ctx is done.
func (ws *WebServer) WaitCommand(ctx context.Context) (visual.ControlCommand, bool) {
	select {
	case cmd := <-ws.commands:
		return cmd, true
	case <-ctx.Done():
		return visual.ControlCommand{Type: visual.CommandNone}, false
	}
}

func (ws *WebServer) queueCommand(cmd visual.ControlCommand) bool {
	select {
	case ws.commands <- cmd:
		return true
	default:
		return false
	}
}

func (ws *WebServer) registerHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", ws.handleStatus)
	mux.HandleFunc("/api/network", ws.handleNetwork)
	mux.HandleFunc("/api/frame", ws.handleFrame)
	mux.HandleFunc("/api/telemetry", ws.handleTelemetry)
	mux.HandleFunc("/api/configs", ws.handleConfigs)
	mux.HandleFunc("/api/simulation/start", ws.handleStart)
	mux.HandleFunc("/api/simulation/step", ws.handleStep)
	mux.HandleFunc("/api/simulation/stop", ws.handleStop)
	mux.HandleFunc("/api/simulation/reset", ws.handleReset)
	mux.HandleFunc("/api/simulation/intervention", ws.handleIntervention)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.hub.handle(ws, w, r)
	})
	mux.Handle("/", http.FileServer(http.Dir("web/static")))
}
