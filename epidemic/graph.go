package epidemic

import "fmt"

// Position is a display location in normalized [0,1] coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned region of the normalized display space.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Contains reports whether p lies inside the rectangle.
func (r Rect) Contains(p Position) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Display space partition. The quarantine area is disjoint from the general
// area so relocated individuals are visually separated.
var (
	GeneralRegion    = Rect{MinX: 0.05, MinY: 0.05, MaxX: 0.65, MaxY: 0.65}
	QuarantineRegion = Rect{MinX: 0.7, MinY: 0.7, MaxX: 0.95, MaxY: 0.95}
)

// Individual is one member of the population. ID is immutable; compartment,
// counters and position change as the simulation advances.
type Individual struct {
	ID          int
	Compartment Compartment

	// Time-in-compartment counters, reset to zero on entry.
	InfectionTime  int
	QuarantineTime int

	Pos Position

	// Saved holds the pre-quarantine position while the individual is
	// displayed in the quarantine area; nil otherwise.
	Saved *Position

	// Immunity in [0,1] scales down the transmission probability for this
	// individual. Set by the vaccination intervention, zero by default.
	Immunity float64
}

// Edge is an unordered contact between two individuals. Edges are immutable
// once the topology is fixed for a run. Redundant edges from independent
// degree draws are accepted, not deduplicated.
type Edge struct {
	A int `json:"source"`
	B int `json:"target"`
}

// Graph is the population plus its contact relation. Edge structure never
// changes during a run; only compartments, counters and positions do.
type Graph struct {
	People []*Individual
	Edges  []Edge

	byID map[int]*Individual
}

// NewGraph assembles a graph and fails fast if any edge references an
// individual that is not part of the population.
func NewGraph(people []*Individual, edges []Edge) (*Graph, error) {
	byID := make(map[int]*Individual, len(people))
	for _, ind := range people {
		if _, dup := byID[ind.ID]; dup {
			return nil, fmt.Errorf("duplicate individual id %d", ind.ID)
		}
		byID[ind.ID] = ind
	}
	for _, e := range edges {
		if _, ok := byID[e.A]; !ok {
			return nil, fmt.Errorf("edge (%d,%d) references unknown individual %d", e.A, e.B, e.A)
		}
		if _, ok := byID[e.B]; !ok {
			return nil, fmt.Errorf("edge (%d,%d) references unknown individual %d", e.A, e.B, e.B)
		}
	}
	return &Graph{People: people, Edges: edges, byID: byID}, nil
}

// ByID returns the individual with the given identity, or nil.
func (g *Graph) ByID(id int) *Individual {
	if g == nil {
		return nil
	}
	return g.byID[id]
}

// Len returns the population size.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.People)
}

// Census tallies the current compartment of every individual.
func (g *Graph) Census() Counts {
	var c Counts
	if g == nil {
		return c
	}
	for _, ind := range g.People {
		c.add(ind.Compartment)
	}
	return c
}

// ResetStates returns every individual to Healthy with zeroed counters,
// cleared saved positions and cleared immunity. Topology is untouched.
func (g *Graph) ResetStates() {
	if g == nil {
		return
	}
	for _, ind := range g.People {
		ind.Compartment = Healthy
		ind.InfectionTime = 0
		ind.QuarantineTime = 0
		ind.Saved = nil
		ind.Immunity = 0
	}
}
