package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/example/epidemic_sim/anim"
	"github.com/example/epidemic_sim/epidemic"
	"github.com/example/epidemic_sim/hooks"
	"github.com/example/epidemic_sim/telemetry"
	"github.com/example/epidemic_sim/visual"
)

// RunState is the orchestration lifecycle state. There is no separate
// paused state: stopping halts stepping until the next start.
type RunState int

const (
	StateIdle RunState = iota
	StateRunning
)

// Simulator owns the run lifecycle: topology, engine, telemetry, animation
// and the choice between the local engine and the remote service. The run
// loop goroutine is the only mutator of the graph; every other component
// reaches the simulation through commands and published frames.
type Simulator struct {
	cfg   *Config
	graph *epidemic.Graph

	engine   *epidemic.Engine
	window   *telemetry.Window
	animator *anim.Controller
	broker   *hooks.Broker

	visualizer visual.Visualizer
	remote     *RemoteClient // nil once the local driver is active
	rng        *rand.Rand

	state     RunState
	stepIndex int
}

// NewSimulator wires all components and decides the driver once: if the
// remote service answers the status probe it is authoritative, otherwise
// the run is fully local.
func NewSimulator(cfg *Config, window *telemetry.Window, visualizer visual.Visualizer) (*Simulator, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if window == nil {
		window = telemetry.NewWindow(cfg.TelemetryWindow)
	}
	if visualizer == nil {
		visualizer = visual.NewNullVisualizer()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	engine, err := epidemic.NewEngine(cfg.Rates, rng)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:        cfg,
		engine:     engine,
		window:     window,
		animator:   anim.NewController(anim.SystemClock()),
		broker:     hooks.NewBroker(),
		visualizer: visualizer,
		rng:        rng,
	}
	s.registerObservers()

	if cfg.RemoteURL != "" {
		client := NewRemoteClient(cfg.RemoteURL)
		if client.Probe() {
			s.remote = client
			GetLogger().Infof("Remote simulation service connected at %s", cfg.RemoteURL)
		} else {
			GetLogger().Warnf("Remote service %s unreachable, running locally", cfg.RemoteURL)
		}
	}

	if s.remote != nil {
		if payload, err := s.remote.FetchNetwork(); err == nil {
			s.graph = graphFromNetwork(payload)
		} else {
			s.fallbackToLocal("network fetch", err)
		}
	}
	if s.graph == nil {
		g, err := s.buildTopology()
		if err != nil {
			return nil, err
		}
		s.graph = g
	}

	return s, nil
}

// registerObservers subscribes the animation controller and the metrics
// collector to simulation events.
func (s *Simulator) registerObservers() {
	s.broker.RegisterObserver(hooks.ObserverDescriptor{
		Name:        "quarantine-placement",
		Category:    hooks.CategoryPresentation,
		Description: "eased relocation of individuals entering or leaving quarantine",
	})
	s.broker.RegisterTransition(func(ctx *hooks.TransitionContext) error {
		s.animator.OnTransition(ctx.Individual, ctx.From, ctx.To)
		return nil
	})

	s.broker.RegisterObserver(hooks.ObserverDescriptor{
		Name:        "step-metrics",
		Category:    hooks.CategoryInstrumentation,
		Description: "step throughput and fallback counters",
	})
	s.broker.RegisterStep(func(ctx *hooks.StepContext) error {
		metrics.RecordSteps(1)
		return nil
	})
}

func (s *Simulator) buildTopology() (*epidemic.Graph, error) {
	if s.cfg.DatasetPath != "" {
		g, err := epidemic.LoadEdgeList(s.cfg.DatasetPath, s.cfg.Population, s.rng)
		if err == nil {
			GetLogger().Infof("Loaded topology from %s: %d individuals, %d edges",
				s.cfg.DatasetPath, g.Len(), len(g.Edges))
			return g, nil
		}
		GetLogger().Warnf("Edge list %s unusable (%v), generating synthetic topology", s.cfg.DatasetPath, err)
	}
	if s.cfg.Topology == TopologyScaleFree {
		return epidemic.ScaleFreeGraph(s.cfg.Population, s.cfg.Attachment, s.rng)
	}
	return epidemic.RandomGraph(s.cfg.Population, s.cfg.Degree, s.rng)
}

// graphFromNetwork turns a service network payload into a local graph.
// Unknown states default to Healthy.
func graphFromNetwork(payload *NetworkPayload) *epidemic.Graph {
	people := make([]*epidemic.Individual, 0, len(payload.Nodes))
	for _, node := range payload.Nodes {
		cp, err := epidemic.ParseCompartment(node.State)
		if err != nil {
			cp = epidemic.Healthy
		}
		people = append(people, &epidemic.Individual{
			ID:          node.ID,
			Compartment: cp,
			Pos:         epidemic.Position{X: node.X, Y: node.Y},
		})
	}
	edges := make([]epidemic.Edge, 0, len(payload.Edges))
	for _, e := range payload.Edges {
		edges = append(edges, epidemic.Edge{A: e.Source, B: e.Target})
	}
	g, err := epidemic.NewGraph(people, edges)
	if err != nil {
		GetLogger().Warnf("Remote topology malformed (%v), dropping dangling edges", err)
		g, _ = epidemic.NewGraph(people, nil)
	}
	return g
}

func (s *Simulator) stepInterval() time.Duration {
	if s.cfg.StepIntervalMs > 0 {
		return time.Duration(s.cfg.StepIntervalMs) * time.Millisecond
	}
	return DefaultStepInterval
}

// Run drives the two cadences: the fixed step interval and the animation
// tick. Stepping is strictly sequential; a step is fully applied before the
// next fires. When the run is idle and no animation is in flight the loop
// blocks on the next command instead of burning ticks.
func (s *Simulator) Run(ctx context.Context) error {
	stepTicker := time.NewTicker(s.stepInterval())
	defer stepTicker.Stop()
	animTicker := time.NewTicker(DefaultAnimInterval)
	defer animTicker.Stop()

	s.publishFrame()

	for {
		for {
			cmd, ok := s.visualizer.NextCommand()
			if !ok {
				break
			}
			s.handleCommand(cmd, stepTicker)
		}

		if s.state == StateIdle && s.animator.InFlight() == 0 {
			cmd, ok := s.visualizer.WaitCommand(ctx)
			if !ok {
				return ctx.Err()
			}
			s.handleCommand(cmd, stepTicker)
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-stepTicker.C:
			if s.state == StateRunning {
				s.advance()
				s.publishFrame()
			}
		case <-animTicker.C:
			s.animator.Tick(s.graph)
			s.publishFrame()
		}
	}
}

func (s *Simulator) handleCommand(cmd visual.ControlCommand, stepTicker *time.Ticker) {
	switch cmd.Type {
	case visual.CommandStart:
		if s.start(cmd.Start) {
			// First step runs immediately, the rest on the cadence.
			s.advance()
			s.publishFrame()
			if stepTicker != nil {
				stepTicker.Reset(s.stepInterval())
			}
		}
	case visual.CommandStop:
		s.stopRun()
		s.publishFrame()
	case visual.CommandReset:
		s.reset()
		s.publishFrame()
	case visual.CommandIntervention:
		if cmd.Intervention != nil {
			s.intervene(*cmd.Intervention)
		}
	}
}

// start seeds a fresh run. Only valid from Idle.
func (s *Simulator) start(params *visual.StartParams) bool {
	if s.state != StateIdle {
		GetLogger().Warnf("Start ignored: run already active")
		return false
	}

	p := s.startParams(params)
	rates := epidemic.Rates{
		Infection:  p.InfectionRate,
		Recovery:   p.RecoveryRate,
		Death:      p.DeathRate,
		Quarantine: p.QuarantineRate,
	}
	if err := rates.Validate(); err != nil {
		GetLogger().Errorf("Start rejected: %v", err)
		return false
	}

	s.window.Clear()

	if s.remote != nil {
		payload, err := s.remote.Start(p)
		switch {
		case err != nil:
			s.fallbackToLocal("start", err)
		case payload.Error != "":
			GetLogger().Errorf("Remote start reported error: %s", payload.Error)
			return false
		default:
			s.stepIndex = payload.Step
			s.applyRemote(payload)
			s.state = StateRunning
			GetLogger().Infof("Run started (remote), %d individuals", s.graph.Len())
			return true
		}
	}

	if err := s.engine.SetRates(rates); err != nil {
		GetLogger().Errorf("Start rejected: %v", err)
		return false
	}
	s.graph.ResetStates()
	s.animator.Clear()
	s.stepIndex = 0
	transitions := epidemic.SeedInfections(s.graph, p.InitialInfected, s.rng)
	s.emitTransitions(transitions)
	s.window.Record(0, s.graph.Census())
	s.state = StateRunning
	GetLogger().Infof("Run started (local), %d individuals, %d seeded infections",
		s.graph.Len(), len(transitions))
	return true
}

// startParams fills omitted start parameters from the configuration.
func (s *Simulator) startParams(params *visual.StartParams) visual.StartParams {
	if params == nil {
		return visual.StartParams{
			InfectionRate:   s.cfg.Rates.Infection,
			RecoveryRate:    s.cfg.Rates.Recovery,
			DeathRate:       s.cfg.Rates.Death,
			QuarantineRate:  s.cfg.Rates.Quarantine,
			InitialInfected: s.cfg.InitialInfected,
		}
	}
	p := *params
	if p.InitialInfected <= 0 {
		p.InitialInfected = s.cfg.InitialInfected
	}
	return p
}

// advance performs exactly one step through the active driver.
func (s *Simulator) advance() {
	if s.remote != nil {
		s.advanceRemote()
		return
	}
	s.advanceLocal()
}

func (s *Simulator) advanceLocal() {
	res := s.engine.Step(s.graph)
	s.stepIndex++
	s.window.Record(s.stepIndex, res.Counts)
	s.emitTransitions(res.Transitions)
	s.broker.EmitStep(&hooks.StepContext{Step: s.stepIndex, Counts: res.Counts})
}

func (s *Simulator) advanceRemote() {
	payload, err := s.remote.Step()
	if err != nil {
		s.fallbackToLocal("step", err)
		s.advanceLocal()
		return
	}
	if payload.Error != "" {
		// Step errors halt the run; start stays available.
		GetLogger().Errorf("Remote step reported error, stopping run: %s", payload.Error)
		s.state = StateIdle
		return
	}
	s.stepIndex = payload.Step
	s.applyRemote(payload)
}

// applyRemote overwrites local state from an authoritative response. The
// full node shape carries positions, so in-flight animations are dropped;
// the legacy state-only shape leaves placement to the local controller.
func (s *Simulator) applyRemote(payload *StepPayload) {
	if len(payload.Nodes) > 0 {
		s.animator.Clear()
		for _, node := range payload.Nodes {
			ind := s.graph.ByID(node.ID)
			if ind == nil {
				continue
			}
			cp, err := epidemic.ParseCompartment(node.State)
			if err != nil {
				continue
			}
			ind.Compartment = cp
			ind.Pos = epidemic.Position{X: node.X, Y: node.Y}
		}
	} else if states := payload.LegacyStates(); states != nil {
		for id, name := range states {
			ind := s.graph.ByID(id)
			if ind == nil {
				continue
			}
			cp, err := epidemic.ParseCompartment(name)
			if err != nil || ind.Compartment == cp {
				continue
			}
			from := ind.Compartment
			ind.Compartment = cp
			s.broker.EmitTransition(&hooks.TransitionContext{
				Individual: ind, From: from, To: cp, Step: s.stepIndex,
			})
		}
	}

	counts := epidemic.Counts{
		Healthy:     payload.Healthy,
		Infected:    payload.Infected,
		Recovered:   payload.Recovered,
		Quarantined: payload.Quarantined,
		Deceased:    payload.Deceased,
	}
	if counts.Total() == 0 && s.graph.Len() > 0 {
		// Legacy payloads may omit the census entirely.
		counts = s.graph.Census()
	}
	s.window.Record(s.stepIndex, counts)
	s.broker.EmitStep(&hooks.StepContext{Step: s.stepIndex, Counts: counts})
}

// fallbackToLocal abandons the remote driver for the rest of the run.
// The decision is never re-evaluated back to remote mid-run.
func (s *Simulator) fallbackToLocal(op string, err error) {
	GetLogger().Warnf("Remote %s failed (%v), falling back to local simulation", op, err)
	metrics.RecordFallback()
	s.remote = nil
}

// stopRun halts stepping. An already dispatched step completes; in-flight
// animations are left to finish.
func (s *Simulator) stopRun() {
	if s.state != StateRunning {
		return
	}
	s.state = StateIdle
	if s.remote != nil {
		if err := s.remote.Stop(); err != nil {
			GetLogger().Warnf("Remote stop failed: %v", err)
		}
	}
	GetLogger().Infof("Run stopped at step %d", s.stepIndex)
}

// reset forces Idle and returns every individual to Healthy with cleared
// counters, saved positions, animations and telemetry. A remote-sourced
// topology is reloaded.
func (s *Simulator) reset() {
	s.state = StateIdle
	s.stepIndex = 0
	s.animator.Clear()
	s.window.Clear()

	if s.remote != nil {
		if err := s.remote.Reset(); err != nil {
			GetLogger().Warnf("Remote reset failed: %v", err)
		}
		payload, err := s.remote.FetchNetwork()
		if err == nil {
			s.graph = graphFromNetwork(payload)
			return
		}
		s.fallbackToLocal("network reload", err)
	}

	s.graph.ResetStates()
}

// intervene applies a containment measure between steps. With the remote
// driver the request is forwarded fire-and-forget; locally the measure
// adjusts rates or compartments directly.
func (s *Simulator) intervene(p visual.InterventionParams) {
	strength := p.Strength
	if strength < 0 {
		strength = 0
	}
	if strength > 1 {
		strength = 1
	}

	if s.remote != nil {
		if err := s.remote.Intervene(p); err != nil {
			GetLogger().Warnf("Remote intervention failed: %v", err)
		}
		return
	}

	switch p.Type {
	case "social_distancing":
		rates := s.engine.Rates()
		rates.Infection *= 1 - strength
		if err := s.engine.SetRates(rates); err != nil {
			GetLogger().Errorf("Social distancing rejected: %v", err)
			return
		}
		GetLogger().Infof("Social distancing applied, infection rate now %.3f", rates.Infection)
	case "lockdown":
		healthy := 0
		for _, ind := range s.graph.People {
			if ind.Compartment == epidemic.Healthy {
				healthy++
			}
		}
		quota := int(strength * float64(healthy))
		moved := 0
		for _, idx := range s.rng.Perm(s.graph.Len()) {
			if moved >= quota {
				break
			}
			ind := s.graph.People[idx]
			if ind.Compartment != epidemic.Healthy {
				continue
			}
			ind.Compartment = epidemic.Quarantined
			ind.QuarantineTime = 0
			s.broker.EmitTransition(&hooks.TransitionContext{
				Individual: ind, From: epidemic.Healthy, To: epidemic.Quarantined, Step: s.stepIndex,
			})
			moved++
		}
		GetLogger().Infof("Lockdown quarantined %d individuals", moved)
	case "vaccination":
		healthy := make([]*epidemic.Individual, 0, s.graph.Len())
		for _, ind := range s.graph.People {
			if ind.Compartment == epidemic.Healthy {
				healthy = append(healthy, ind)
			}
		}
		n := int(strength * float64(len(healthy)))
		for _, idx := range s.rng.Perm(len(healthy))[:n] {
			healthy[idx].Immunity = 0.9
		}
		GetLogger().Infof("Vaccinated %d individuals", n)
	default:
		GetLogger().Warnf("Unknown intervention type %q", p.Type)
	}
}

func (s *Simulator) emitTransitions(transitions []epidemic.Transition) {
	for _, tr := range transitions {
		ind := s.graph.ByID(tr.ID)
		if ind == nil {
			continue
		}
		s.broker.EmitTransition(&hooks.TransitionContext{
			Individual: ind, From: tr.From, To: tr.To, Step: s.stepIndex,
		})
	}
}

// buildFrame assembles the presentation snapshot for the current instant.
func (s *Simulator) buildFrame() *SimulationFrame {
	nodes := make([]NodeSnapshot, 0, s.graph.Len())
	for _, ind := range s.graph.People {
		nodes = append(nodes, NodeSnapshot{
			ID:    ind.ID,
			X:     ind.Pos.X,
			Y:     ind.Pos.Y,
			State: ind.Compartment.String(),
		})
	}
	edges := make([]EdgeSnapshot, 0, len(s.graph.Edges))
	for _, e := range s.graph.Edges {
		edges = append(edges, EdgeSnapshot{Source: e.A, Target: e.B})
	}
	driver := DriverLocal
	if s.remote != nil {
		driver = DriverRemote
	}
	return &SimulationFrame{
		Counts:  s.graph.Census(),
		Step:    s.stepIndex,
		Day:     s.stepIndex % DaysPerWeek,
		Running: s.state == StateRunning,
		Driver:  driver,
		Nodes:   nodes,
		Edges:   edges,
	}
}

func (s *Simulator) publishFrame() {
	if s.visualizer == nil || s.visualizer.IsHeadless() {
		return
	}
	s.visualizer.PublishFrame(s.buildFrame())
}

// RunHeadless starts a run and advances it TotalSteps times without pacing,
// then prints a summary. Used for batch experiments and tests.
func (s *Simulator) RunHeadless() {
	if !s.start(nil) {
		return
	}
	for i := 0; i < s.cfg.TotalSteps && s.state == StateRunning; i++ {
		s.advance()
	}
	s.stopRun()
	PrintSummary(s.buildFrame(), s.window)
}
