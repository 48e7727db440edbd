// Package wizard implements the four-step farmer registration workflow: the
// step state machine, per-step validation and the session that owns a draft.
package wizard

import (
	"log/slog"

	"github.com/robbyt/go-fsm"
)

// Step identifies a wizard step. Valid steps are 1 through 4.
type Step int

// Wizard steps, in order.
const (
	StepPersonalInfo Step = iota + 1
	StepLandInfo
	StepSoilProperties
	StepEnvironmental
)

// Machine states. Each step has one state; submitted is terminal.
const (
	StatePersonalInfo   = "personal_info"
	StateLandInfo       = "land_info"
	StateSoilProperties = "soil_properties"
	StateEnvironmental  = "environmental"
	StateSubmitted      = "submitted"
)

// stepTransitions is linear: forward one step, back one step, and submit from
// the last step only.
var stepTransitions = map[string][]string{
	StatePersonalInfo:   {StateLandInfo},
	StateLandInfo:       {StatePersonalInfo, StateSoilProperties},
	StateSoilProperties: {StateLandInfo, StateEnvironmental},
	StateEnvironmental:  {StateSoilProperties, StateSubmitted},
	StateSubmitted:      {},
}

var stepStates = map[Step]string{
	StepPersonalInfo:   StatePersonalInfo,
	StepLandInfo:       StateLandInfo,
	StepSoilProperties: StateSoilProperties,
	StepEnvironmental:  StateEnvironmental,
}

// Valid reports whether s is one of the four wizard steps.
func (s Step) Valid() bool {
	return s >= StepPersonalInfo && s <= StepEnvironmental
}

// String returns the machine state name of the step.
func (s Step) String() string {
	if name, ok := stepStates[s]; ok {
		return name
	}
	return "unknown"
}

// stepForState maps a machine state back to its step. The submitted state
// reports the last step, which is where the draft was when it was sent.
func stepForState(state string) Step {
	for step, name := range stepStates {
		if name == state {
			return step
		}
	}
	return StepEnvironmental
}

func newStepMachine() (*fsm.Machine, error) {
	return fsm.New(slog.DiscardHandler, StatePersonalInfo, stepTransitions)
}
