// Package telemetry maintains the bounded rolling history of per-step
// compartment counts used for charting.
package telemetry

import (
	"sync"

	"github.com/example/epidemic_sim/epidemic"
)

// DefaultWindowSize is the chart history length.
const DefaultWindowSize = 100

// Point is one (step, counts) sample.
type Point struct {
	Step   int             `json:"step"`
	Counts epidemic.Counts `json:"counts"`
}

// Window is a fixed-length FIFO of samples. The window owns its storage;
// Points hands out copies so readers can never mutate history.
type Window struct {
	mu     sync.Mutex
	max    int
	points []Point
}

// NewWindow creates a window bounded to max samples; non-positive max uses
// DefaultWindowSize.
func NewWindow(max int) *Window {
	if max <= 0 {
		max = DefaultWindowSize
	}
	return &Window{max: max, points: make([]Point, 0, max)}
}

// Record appends one sample, evicting the oldest when the bound is exceeded.
func (w *Window) Record(step int, counts epidemic.Counts) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.points = append(w.points, Point{Step: step, Counts: counts})
	if len(w.points) > w.max {
		// FIFO eviction, order preserved.
		copy(w.points, w.points[1:])
		w.points = w.points[:w.max]
	}
}

// Points returns a copy of the current window in recording order.
func (w *Window) Points() []Point {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Point, len(w.points))
	copy(out, w.points)
	return out
}

// Len returns the number of recorded samples.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.points)
}

// Clear resets the window to empty.
func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.points = w.points[:0]
}
