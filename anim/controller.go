// Package anim maps individuals to display positions and runs the eased
// relocation animations for quarantine entry and release.
package anim

import (
	"time"

	"github.com/example/epidemic_sim/epidemic"
)

// DefaultDuration is the relocation animation length.
const DefaultDuration = 1000 * time.Millisecond

// Quarantine grid dimensions: identity maps to a fixed slot so the same
// individual lands in the same place on every run.
const (
	slotColumns = 10
	slotRows    = 10
)

// flight is one in-progress relocation.
type flight struct {
	start     epidemic.Position
	target    epidemic.Position
	startedAt time.Time
	restore   bool // clear the saved position once complete
}

// Controller owns all in-flight animations. It is driven by compartment
// transition notifications and a clock-based tick; correctness does not
// depend on tick frequency.
type Controller struct {
	clock    Clock
	duration time.Duration
	flights  map[int]*flight
}

// NewController creates a controller using the given clock. A nil clock
// falls back to wall time.
func NewController(clock Clock) *Controller {
	if clock == nil {
		clock = SystemClock()
	}
	return &Controller{
		clock:    clock,
		duration: DefaultDuration,
		flights:  make(map[int]*flight),
	}
}

// EaseOutCubic eases with a fast start and a gentle landing.
func EaseOutCubic(progress float64) float64 {
	if progress <= 0 {
		return 0
	}
	if progress >= 1 {
		return 1
	}
	inv := 1 - progress
	return 1 - inv*inv*inv
}

// QuarantineSlot computes the deterministic display slot for an identity,
// clamped strictly inside the quarantine rectangle.
func QuarantineSlot(id int) epidemic.Position {
	col := id % slotColumns
	row := (id % (slotColumns * slotRows)) / slotColumns

	r := epidemic.QuarantineRegion
	cellW := r.Width() / slotColumns
	cellH := r.Height() / slotRows
	return epidemic.Position{
		X: r.MinX + (float64(col)+0.5)*cellW,
		Y: r.MinY + (float64(row)+0.5)*cellH,
	}
}

// OnTransition reacts to a compartment change. Entering Quarantined saves
// the current position (once) and starts a flight toward the individual's
// slot; leaving Quarantined starts a flight back to the saved position.
// Restarting an animation mid-flight begins from the current interpolated
// position, so there is never a visual jump.
func (c *Controller) OnTransition(ind *epidemic.Individual, from, to epidemic.Compartment) {
	if ind == nil || from == to {
		return
	}
	switch {
	case to == epidemic.Quarantined:
		if ind.Saved == nil {
			saved := ind.Pos
			ind.Saved = &saved
		}
		c.begin(ind, QuarantineSlot(ind.ID), false)
	case from == epidemic.Quarantined:
		if ind.Saved == nil {
			return
		}
		c.begin(ind, *ind.Saved, true)
	}
}

func (c *Controller) begin(ind *epidemic.Individual, target epidemic.Position, restore bool) {
	// ind.Pos is kept current by Tick, so an overwrite naturally starts
	// from the interpolated position of any prior flight.
	c.flights[ind.ID] = &flight{
		start:     ind.Pos,
		target:    target,
		startedAt: c.clock.Now(),
		restore:   restore,
	}
}

// Tick advances every in-flight animation to the clock's current instant and
// writes the interpolated positions into the graph. Completed flights snap
// exactly to their target and are removed; flights whose individual no
// longer exists are dropped.
func (c *Controller) Tick(g *epidemic.Graph) {
	if len(c.flights) == 0 {
		return
	}
	now := c.clock.Now()
	for id, f := range c.flights {
		ind := g.ByID(id)
		if ind == nil {
			delete(c.flights, id)
			continue
		}
		progress := float64(now.Sub(f.startedAt)) / float64(c.duration)
		if progress >= 1 {
			ind.Pos = f.target
			if f.restore {
				ind.Saved = nil
			}
			delete(c.flights, id)
			continue
		}
		eased := EaseOutCubic(progress)
		ind.Pos = epidemic.Position{
			X: f.start.X + (f.target.X-f.start.X)*eased,
			Y: f.start.Y + (f.target.Y-f.start.Y)*eased,
		}
	}
}

// InFlight returns how many animations are currently running.
func (c *Controller) InFlight() int { return len(c.flights) }

// Clear drops every in-flight animation. Used on reset; a plain stop lets
// animations finish instead.
func (c *Controller) Clear() {
	c.flights = make(map[int]*flight)
}
