package main

import (
	"time"

	"github.com/example/epidemic_sim/epidemic"
)

// Simulation cadence and presentation constants.
const (
	// DefaultStepInterval is the fixed cadence between simulation steps.
	DefaultStepInterval = 1000 * time.Millisecond

	// DefaultAnimInterval approximates a display refresh tick.
	DefaultAnimInterval = 16 * time.Millisecond

	// DefaultInitialInfected seeds a fresh run when the caller omits it.
	DefaultInitialInfected = 5

	// DefaultPopulation is the baseline population size.
	DefaultPopulation = 500

	// DaysPerWeek folds the step index into the presentation "day".
	DaysPerWeek = 7
)

// NodeSnapshot is the per-individual view exposed at the presentation
// boundary. Field names match the simulation service contract.
type NodeSnapshot struct {
	ID    int     `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	State string  `json:"state"`
}

// EdgeSnapshot mirrors a contact edge for rendering.
type EdgeSnapshot struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// SimulationFrame is one complete presentation snapshot: topology state,
// census and run status. Counts embed flat so the JSON shape matches the
// service contract (healthy, infected, ...).
type SimulationFrame struct {
	epidemic.Counts

	Step    int            `json:"step"`
	Day     int            `json:"day"`
	Running bool           `json:"running"`
	Driver  string         `json:"driver"`
	Nodes   []NodeSnapshot `json:"nodes"`
	Edges   []EdgeSnapshot `json:"edges,omitempty"`
}

// NetworkPayload is the GET network response shape.
type NetworkPayload struct {
	Nodes      []NodeSnapshot `json:"nodes"`
	Edges      []EdgeSnapshot `json:"edges"`
	TotalNodes int            `json:"total_nodes"`
}

// Driver names surfaced in frames and the status endpoint.
const (
	DriverLocal  = "local"
	DriverRemote = "remote"
)
