package main

import (
	"context"

	"github.com/example/epidemic_sim/visual"
)

// WebVisualizer bridges the run loop with the web server.
type WebVisualizer struct {
	headless bool
	server   *WebServer
}

// NewWebVisualizer wraps an already constructed server.
func NewWebVisualizer(server *WebServer) *WebVisualizer {
	return &WebVisualizer{server: server}
}

// SetHeadless switches headless state.
func (w *WebVisualizer) SetHeadless(headless bool) {
	w.headless = headless
}

// IsHeadless returns whether the visualizer runs without a UI.
func (w *WebVisualizer) IsHeadless() bool {
	return w.headless
}

// PublishFrame hands the latest frame to the server.
func (w *WebVisualizer) PublishFrame(frame any) {
	if w.server == nil {
		return
	}
	if f, ok := frame.(*SimulationFrame); ok {
		w.server.UpdateFrame(f)
	}
}

// NextCommand returns the next control command if available, non-blocking.
func (w *WebVisualizer) NextCommand() (visual.ControlCommand, bool) {
	if w.server == nil {
		return visual.ControlCommand{Type: visual.CommandNone}, false
	}
	return w.server.NextCommand()
}

// WaitCommand blocks until a command arrives or ctx is done.
func (w *WebVisualizer) WaitCommand(ctx context.Context) (visual.ControlCommand, bool) {
	if w.server == nil {
		<-ctx.Done()
		return visual.ControlCommand{Type: visual.CommandNone}, false
	}
	return w.server.WaitCommand(ctx)
}
