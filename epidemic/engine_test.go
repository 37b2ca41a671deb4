package epidemic

import (
	"math/rand"
	"testing"
)

func deterministicRates(infection, recovery, death, quarantine float64) Rates {
	return Rates{Infection: infection, Recovery: recovery, Death: death, Quarantine: quarantine}
}

func mustEngine(t *testing.T, rates Rates, seed int64) *Engine {
	t.Helper()
	e, err := NewEngine(rates, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

func mustGraph(t *testing.T, people []*Individual, edges []Edge) *Graph {
	t.Helper()
	g, err := NewGraph(people, edges)
	if err != nil {
		t.Fatalf("NewGraph failed: %v", err)
	}
	return g
}

func TestNewEngine_InvalidRates(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := NewEngine(deterministicRates(1.5, 0, 0, 0), rng); err == nil {
		t.Error("Expected error for infection rate above 1")
	}
	if _, err := NewEngine(deterministicRates(0, -0.1, 0, 0), rng); err == nil {
		t.Error("Expected error for negative recovery rate")
	}
	if _, err := NewEngine(DefaultRates(), nil); err == nil {
		t.Error("Expected error for nil random source")
	}
}

func TestEngine_EmptyGraph(t *testing.T) {
	e := mustEngine(t, DefaultRates(), 1)
	g := mustGraph(t, nil, nil)

	res := e.Step(g)
	if res.Counts.Total() != 0 {
		t.Errorf("Expected zero counts for empty graph, got %+v", res.Counts)
	}
	if len(res.Transitions) != 0 {
		t.Errorf("Expected no transitions, got %d", len(res.Transitions))
	}
}

// A lone infected individual with certain quarantine uptake stays Infected
// through the eligibility threshold and quarantines on the step after it.
func TestEngine_QuarantineThreshold(t *testing.T) {
	e := mustEngine(t, deterministicRates(0, 0, 0, 1), 1)
	g := mustGraph(t, []*Individual{{ID: 0, Compartment: Infected}}, nil)

	for step := 1; step <= QuarantineEligibleAfter; step++ {
		e.Step(g)
		if got := g.ByID(0).Compartment; got != Infected {
			t.Fatalf("Step %d: expected Infected, got %v", step, got)
		}
	}

	res := e.Step(g)
	if got := g.ByID(0).Compartment; got != Quarantined {
		t.Fatalf("Expected Quarantined after eligibility, got %v", got)
	}
	if len(res.Transitions) != 1 || res.Transitions[0].To != Quarantined {
		t.Errorf("Expected a single transition to Quarantined, got %+v", res.Transitions)
	}
	if g.ByID(0).QuarantineTime != 0 {
		t.Errorf("Expected quarantine counter reset on entry, got %d", g.ByID(0).QuarantineTime)
	}
}

// Certain transmission converts the healthy endpoint in a single step.
func TestEngine_CertainTransmission(t *testing.T) {
	e := mustEngine(t, deterministicRates(1, 0, 0, 0), 1)
	g := mustGraph(t,
		[]*Individual{{ID: 0, Compartment: Infected}, {ID: 1}},
		[]Edge{{A: 0, B: 1}},
	)

	res := e.Step(g)
	if got := g.ByID(1).Compartment; got != Infected {
		t.Fatalf("Expected neighbor Infected, got %v", got)
	}
	if g.ByID(1).InfectionTime != 0 {
		t.Errorf("Expected infection counter reset on entry, got %d", g.ByID(1).InfectionTime)
	}
	if res.Counts.Infected != 2 {
		t.Errorf("Expected 2 infected, got %d", res.Counts.Infected)
	}
}

// A newly converted individual must not progress in the same step: the
// snapshot keeps it Healthy for every other rule.
func TestEngine_NoSameStepProgression(t *testing.T) {
	e := mustEngine(t, deterministicRates(1, 1, 1, 1), 1)
	g := mustGraph(t,
		[]*Individual{{ID: 0, Compartment: Infected, InfectionTime: 20}, {ID: 1}},
		[]Edge{{A: 0, B: 1}},
	)

	e.Step(g)
	got := g.ByID(1).Compartment
	if got != Infected {
		t.Fatalf("Expected freshly converted individual to stay Infected this step, got %v", got)
	}
}

// Full immunity blocks transmission even at rate 1.
func TestEngine_ImmunityBlocksTransmission(t *testing.T) {
	e := mustEngine(t, deterministicRates(1, 0, 0, 0), 1)
	g := mustGraph(t,
		[]*Individual{{ID: 0, Compartment: Infected}, {ID: 1, Immunity: 1}},
		[]Edge{{A: 0, B: 1}},
	)

	for i := 0; i < 10; i++ {
		e.Step(g)
	}
	if got := g.ByID(1).Compartment; got != Healthy {
		t.Errorf("Expected immune individual to stay Healthy, got %v", got)
	}
}

// Healthy individuals never enter quarantine through the engine, whatever
// the quarantine rate.
func TestEngine_HealthyNeverQuarantined(t *testing.T) {
	e := mustEngine(t, deterministicRates(0, 0, 0, 1), 1)
	g := mustGraph(t, []*Individual{{ID: 0}, {ID: 1}}, []Edge{{A: 0, B: 1}})

	for i := 0; i < 20; i++ {
		e.Step(g)
	}
	counts := g.Census()
	if counts.Healthy != 2 {
		t.Errorf("Expected everyone Healthy, got %+v", counts)
	}
}

// Past the outcome threshold a certain death draw wins before recovery is
// considered.
func TestEngine_DeathBeforeRecovery(t *testing.T) {
	e := mustEngine(t, deterministicRates(0, 1, 1, 0), 1)
	g := mustGraph(t, []*Individual{{ID: 0, Compartment: Infected, InfectionTime: OutcomeEligibleAfter}}, nil)

	e.Step(g)
	if got := g.ByID(0).Compartment; got != Deceased {
		t.Errorf("Expected Deceased, got %v", got)
	}
}

func TestEngine_RecoveryAfterOutcomeThreshold(t *testing.T) {
	e := mustEngine(t, deterministicRates(0, 1, 0, 0), 1)
	g := mustGraph(t, []*Individual{{ID: 0, Compartment: Infected, InfectionTime: OutcomeEligibleAfter}}, nil)

	e.Step(g)
	if got := g.ByID(0).Compartment; got != Recovered {
		t.Errorf("Expected Recovered, got %v", got)
	}
}

// Certain quarantine uptake shields an individual from the death draw in
// the same step even when both thresholds have passed.
func TestEngine_QuarantineBeforeOutcome(t *testing.T) {
	e := mustEngine(t, deterministicRates(0, 0, 1, 1), 1)
	g := mustGraph(t, []*Individual{{ID: 0, Compartment: Infected, InfectionTime: OutcomeEligibleAfter}}, nil)

	e.Step(g)
	if got := g.ByID(0).Compartment; got != Quarantined {
		t.Errorf("Expected Quarantined to preempt the outcome draw, got %v", got)
	}
}

func TestEngine_QuarantineRelease(t *testing.T) {
	e := mustEngine(t, deterministicRates(0, 1, 0, 0), 1)
	g := mustGraph(t, []*Individual{{ID: 0, Compartment: Quarantined, QuarantineTime: ReleaseEligibleAfter}}, nil)

	e.Step(g)
	if got := g.ByID(0).Compartment; got != Recovered {
		t.Errorf("Expected release to Recovered, got %v", got)
	}
}

// Recovered and Deceased are absorbing even with every rate at maximum.
func TestEngine_TerminalCompartmentsAbsorb(t *testing.T) {
	e := mustEngine(t, deterministicRates(1, 1, 1, 1), 1)
	g := mustGraph(t,
		[]*Individual{
			{ID: 0, Compartment: Recovered},
			{ID: 1, Compartment: Deceased},
			{ID: 2, Compartment: Infected},
		},
		[]Edge{{A: 2, B: 0}, {A: 2, B: 1}},
	)

	for i := 0; i < 20; i++ {
		e.Step(g)
	}
	if got := g.ByID(0).Compartment; got != Recovered {
		t.Errorf("Expected Recovered to absorb, got %v", got)
	}
	if got := g.ByID(1).Compartment; got != Deceased {
		t.Errorf("Expected Deceased to absorb, got %v", got)
	}
}

// Population size is conserved across a long seeded run.
func TestEngine_Conservation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	g, err := RandomGraph(200, DefaultDegreeRange, rng)
	if err != nil {
		t.Fatalf("RandomGraph failed: %v", err)
	}
	SeedInfections(g, 10, rng)

	e := mustEngine(t, DefaultRates(), 42)
	for i := 0; i < 100; i++ {
		res := e.Step(g)
		if res.Counts.Total() != 200 {
			t.Fatalf("Step %d: population changed to %d", i+1, res.Counts.Total())
		}
	}
}

func TestSeedInfections(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g, err := RandomGraph(50, DefaultDegreeRange, rng)
	if err != nil {
		t.Fatalf("RandomGraph failed: %v", err)
	}

	transitions := SeedInfections(g, 5, rng)
	if len(transitions) != 5 {
		t.Fatalf("Expected 5 transitions, got %d", len(transitions))
	}
	if got := g.Census().Infected; got != 5 {
		t.Errorf("Expected 5 infected, got %d", got)
	}

	seen := make(map[int]bool)
	for _, tr := range transitions {
		if seen[tr.ID] {
			t.Errorf("Individual %d seeded twice", tr.ID)
		}
		seen[tr.ID] = true
	}
}

func TestSeedInfections_ClampsToPopulation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := mustGraph(t, []*Individual{{ID: 0}, {ID: 1}}, nil)

	transitions := SeedInfections(g, 10, rng)
	if len(transitions) != 2 {
		t.Errorf("Expected seeding clamped to 2, got %d", len(transitions))
	}
	if SeedInfections(g, 0, rng) != nil {
		t.Error("Expected nil transitions for zero count")
	}
}
