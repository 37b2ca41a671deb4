// Package visual defines the boundary between the simulation loop and any
// presentation surface: control commands flowing in, frames flowing out.
package visual

import "context"

// ControlCommandType represents types of control instructions from the UI
// or API clients.
type ControlCommandType string

const (
	CommandNone         ControlCommandType = "none"
	CommandStart        ControlCommandType = "start"
	CommandStop         ControlCommandType = "stop"
	CommandReset        ControlCommandType = "reset"
	CommandIntervention ControlCommandType = "intervention"
)

// StartParams carries the run parameters accepted by the start command.
type StartParams struct {
	InfectionRate   float64 `json:"infectionRate"`
	RecoveryRate    float64 `json:"recoveryRate"`
	DeathRate       float64 `json:"deathRate"`
	QuarantineRate  float64 `json:"quarantineRate"`
	InitialInfected int     `json:"initialInfected"`
}

// InterventionParams carries a fire-and-forget intervention request.
type InterventionParams struct {
	Type     string  `json:"type"` // social_distancing | lockdown | vaccination
	Strength float64 `json:"strength"`
}

// ControlCommand captures one control instruction for the simulator.
type ControlCommand struct {
	Type         ControlCommandType
	Start        *StartParams
	Intervention *InterventionParams
}

// Visualizer is the presentation surface seen by the simulation loop.
type Visualizer interface {
	SetHeadless(headless bool)
	IsHeadless() bool
	PublishFrame(frame any)
	NextCommand() (ControlCommand, bool)
	WaitCommand(ctx context.Context) (ControlCommand, bool)
}

// NullVisualizer is the no-op implementation used for headless runs.
type NullVisualizer struct {
	headless bool
}

// NewNullVisualizer creates a headless NullVisualizer.
func NewNullVisualizer() *NullVisualizer {
	return &NullVisualizer{headless: true}
}

func (n *NullVisualizer) SetHeadless(headless bool) { n.headless = headless }

func (n *NullVisualizer) IsHeadless() bool { return n.headless }

func (n *NullVisualizer) PublishFrame(frame any) {}

func (n *NullVisualizer) NextCommand() (ControlCommand, bool) {
	return ControlCommand{Type: CommandNone}, false
}

func (n *NullVisualizer) WaitCommand(ctx context.Context) (ControlCommand, bool) {
	<-ctx.Done()
	return ControlCommand{Type: CommandNone}, false
}
