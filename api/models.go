package api

import (
	"time"

	"github.com/Maksym-Lukianenko123/impc/service"
)

// SessionCreateResponse is the response from creating a session.
type SessionCreateResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// CompileRequest carries the source program to compile.
type CompileRequest struct {
	Source string `json:"source"`
	Stdin  string `json:"stdin,omitempty"` // fed to READ instructions, one value per line
}

// CompileResponse reports the outcome of a compile.
type CompileResponse struct {
	Success  bool     `json:"success"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// RegistersResponse is the current register file and PC.
type RegistersResponse struct {
	Registers [8]uint64 `json:"registers"`
	PC        int       `json:"pc"`
	Cycles    uint64    `json:"cycles"`
}

// ToRegistersResponse converts a service.RegisterState to its API shape.
func ToRegistersResponse(regs service.RegisterState) RegistersResponse {
	return RegistersResponse{Registers: regs.Registers, PC: regs.PC, Cycles: regs.Cycles}
}

// StatusResponse reports a session's current execution state.
type StatusResponse struct {
	SessionID string `json:"sessionId"`
	State     string `json:"state"`
	Reason    string `json:"reason,omitempty"`
}

// BreakpointRequest creates a breakpoint at an instruction address.
type BreakpointRequest struct {
	Address int `json:"address"`
}

// BreakpointsResponse lists a session's breakpoints.
type BreakpointsResponse struct {
	Breakpoints []service.BreakpointInfo `json:"breakpoints"`
}

// WatchpointRequest creates a watchpoint on a register or memory cell.
type WatchpointRequest struct {
	Target string `json:"target"` // "a".."h", or a memory cell number
}

// WatchpointsResponse lists a session's watchpoints.
type WatchpointsResponse struct {
	Watchpoints []service.WatchpointInfo `json:"watchpoints"`
}

// OutputResponse carries a session's buffered stdout.
type OutputResponse struct {
	Output string `json:"output"`
}

// ErrorResponse is a uniform JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SuccessResponse is a uniform acknowledgement body.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
