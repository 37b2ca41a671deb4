package epidemic

import (
	"fmt"
	"math/rand"
)

// Progression thresholds in steps. An infected individual becomes eligible
// for quarantine after QuarantineEligibleAfter steps in compartment and for
// the death/recovery draws after OutcomeEligibleAfter; a quarantined
// individual becomes eligible for release after ReleaseEligibleAfter.
const (
	QuarantineEligibleAfter = 7
	OutcomeEligibleAfter    = 14
	ReleaseEligibleAfter    = 14
)

// Transition records one individual changing compartment during a step.
type Transition struct {
	ID   int
	From Compartment
	To   Compartment
}

// StepResult is what one engine invocation emits: the post-step census and
// every compartment change that occurred.
type StepResult struct {
	Counts      Counts
	Transitions []Transition
}

// Engine advances a population graph one discrete step per invocation.
// All randomness flows through the injected source so runs can be replayed.
type Engine struct {
	rates Rates
	rng   *rand.Rand
}

// NewEngine validates the rates and binds the random source.
func NewEngine(rates Rates, rng *rand.Rand) (*Engine, error) {
	if err := rates.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rates: %w", err)
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	return &Engine{rates: rates, rng: rng}, nil
}

// Rates returns the engine's current transition probabilities.
func (e *Engine) Rates() Rates { return e.rates }

// SetRates swaps the transition probabilities, failing fast on bad input.
// Used by interventions between steps.
func (e *Engine) SetRates(r Rates) error {
	if err := r.Validate(); err != nil {
		return err
	}
	e.rates = r
	return nil
}

// Step applies one round of transmission, progression and quarantine
// progression. All eligibility decisions read a snapshot of the previous
// step's compartments, so changes made within the step are never visible to
// other rules in the same step. An empty graph is a no-op with zero counts.
func (e *Engine) Step(g *Graph) StepResult {
	var res StepResult
	if g == nil || g.Len() == 0 {
		return res
	}

	prev := make(map[int]Compartment, g.Len())
	for _, ind := range g.People {
		prev[ind.ID] = ind.Compartment
	}

	move := func(ind *Individual, to Compartment) {
		res.Transitions = append(res.Transitions, Transition{ID: ind.ID, From: ind.Compartment, To: to})
		ind.Compartment = to
		switch to {
		case Infected:
			ind.InfectionTime = 0
		case Quarantined:
			ind.QuarantineTime = 0
		}
	}

	// Transmission: one draw per edge where exactly one endpoint was
	// Infected and the other Healthy in the snapshot. Only the healthy
	// endpoint may convert; a redundant edge cannot convert it twice.
	for _, edge := range g.Edges {
		a, b := prev[edge.A], prev[edge.B]
		var target *Individual
		switch {
		case a == Infected && b == Healthy:
			target = g.byID[edge.B]
		case b == Infected && a == Healthy:
			target = g.byID[edge.A]
		default:
			continue
		}
		if e.rng.Float64() < e.rates.Infection*(1-target.Immunity) && target.Compartment == Healthy {
			move(target, Infected)
		}
	}

	// Progression. Quarantine check runs before the death/recovery check;
	// the later draw only applies if the individual is still Infected.
	for _, ind := range g.People {
		switch prev[ind.ID] {
		case Infected:
			ind.InfectionTime++
			if ind.InfectionTime > QuarantineEligibleAfter {
				if e.rng.Float64() < e.rates.Quarantine {
					move(ind, Quarantined)
				}
			}
			if ind.InfectionTime > OutcomeEligibleAfter && ind.Compartment == Infected {
				if e.rng.Float64() < e.rates.Death {
					move(ind, Deceased)
				} else if e.rng.Float64() < e.rates.Recovery {
					move(ind, Recovered)
				}
			}
		case Quarantined:
			ind.QuarantineTime++
			if ind.QuarantineTime > ReleaseEligibleAfter {
				if e.rng.Float64() < e.rates.Recovery {
					move(ind, Recovered)
				}
			}
		case Healthy, Recovered, Deceased:
			// Healthy is handled edge-wise above; terminal compartments
			// are never re-evaluated.
		}
	}

	res.Counts = g.Census()
	return res
}

// SeedInfections marks n distinct individuals Infected with zeroed counters
// and returns the resulting transitions. Everyone else stays as-is; callers
// reset the graph first when starting a fresh run.
func SeedInfections(g *Graph, n int, rng *rand.Rand) []Transition {
	if g == nil || g.Len() == 0 || n <= 0 {
		return nil
	}
	if n > g.Len() {
		n = g.Len()
	}
	perm := rng.Perm(g.Len())
	transitions := make([]Transition, 0, n)
	for _, idx := range perm[:n] {
		ind := g.People[idx]
		transitions = append(transitions, Transition{ID: ind.ID, From: ind.Compartment, To: Infected})
		ind.Compartment = Infected
		ind.InfectionTime = 0
	}
	return transitions
}
