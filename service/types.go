package service

import "github.com/Maksym-Lukianenko123/impc/machine"

// RegisterState is a snapshot of the eight named registers plus the
// program counter, shaped for JSON serialization over the API. The
// target machine's register file has no condition flags to carry.
type RegisterState struct {
	Registers [8]uint64 `json:"registers"`
	PC        int       `json:"pc"`
	Cycles    uint64    `json:"cycles"`
}

// ExecutionState mirrors machine.ExecutionState as a JSON-friendly string.
type ExecutionState string

const (
	StateRunning    ExecutionState = "running"
	StateHalted     ExecutionState = "halted"
	StateBreakpoint ExecutionState = "breakpoint"
	StateError      ExecutionState = "error"
)

// VMStateToExecution converts machine.ExecutionState to the API's
// ExecutionState string.
func VMStateToExecution(state machine.ExecutionState) ExecutionState {
	switch state {
	case machine.StateRunning:
		return StateRunning
	case machine.StateHalted:
		return StateHalted
	case machine.StateBreakpoint:
		return StateBreakpoint
	case machine.StateError:
		return StateError
	default:
		return StateHalted
	}
}

// BreakpointInfo is a breakpoint for API/UI display.
type BreakpointInfo struct {
	ID      int  `json:"id"`
	Address int  `json:"address"`
	Enabled bool `json:"enabled"`
}

// WatchpointInfo is a watchpoint for API/UI display.
type WatchpointInfo struct {
	ID     int    `json:"id"`
	Target string `json:"target"` // a register name (a-h) or "cell <n>"
	Value  uint64 `json:"value"`
}
