// Package service implements compile+execute session business logic,
// decoupled from transport: compiling source into a machine.VM-ready
// program, then stepping/running it and reporting register and
// execution-state snapshots. The surface is scoped to what a
// compile-as-a-service front end actually needs for this register
// machine: compile, step/run, registers, breakpoints, output — no
// disassembly windows, stack views, or execution-trace streaming.
package service

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Maksym-Lukianenko123/impc/codegen"
	"github.com/Maksym-Lukianenko123/impc/debugger"
	"github.com/Maksym-Lukianenko123/impc/machine"
	"github.com/Maksym-Lukianenko123/impc/parser"
)

// CompileService owns one compile+execute session: a compiled program, the
// VM running it, and a Debugger supplying breakpoints/watchpoints. Safe
// for concurrent use from an HTTP handler and a WebSocket broadcast loop.
type CompileService struct {
	mu sync.RWMutex

	vm  *machine.VM
	dbg *debugger.Debugger

	warnings []*parser.Warning
	output   *bytes.Buffer

	// onOutput, when set, is called with every byte string written to the
	// VM's stdout as it is produced (for broadcasting to WebSocket
	// clients). A plain callback rather than a concrete writer type, so
	// the api package can wire it without an import cycle.
	onOutput func(string)
}

// broadcastWriter relays every Write to a CompileService's onOutput hook,
// after buffering it for later Output retrieval.
type broadcastWriter struct {
	svc *CompileService
}

func (w *broadcastWriter) Write(p []byte) (int, error) {
	w.svc.mu.Lock()
	n, err := w.svc.output.Write(p)
	onOutput := w.svc.onOutput
	w.svc.mu.Unlock()

	if err == nil && onOutput != nil {
		onOutput(string(p))
	}
	return n, err
}

// NewCompileService creates an empty session. Call Compile before
// stepping or running it.
func NewCompileService() *CompileService {
	return &CompileService{output: &bytes.Buffer{}}
}

// SetOutputCallback registers a callback invoked with every chunk of
// program stdout as it is written, for streaming to WebSocket clients.
func (s *CompileService) SetOutputCallback(fn func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onOutput = fn
}

// Compile parses source, lowers it to machine code, and loads the result
// into a fresh VM, replacing any previously loaded program. stdin feeds
// the program's READ instructions; it stays attached until the next
// Compile, and Reset does not rewind it.
func (s *CompileService) Compile(source string, stdin io.Reader) error {
	table, err := parser.Parse(source)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	result, err := codegen.Generate(table)
	if err != nil {
		return fmt.Errorf("compile error: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if stdin == nil {
		stdin = strings.NewReader("")
	}
	s.output = &bytes.Buffer{}
	s.vm = machine.NewVM(result.Program, stdin, &broadcastWriter{svc: s})
	s.dbg = debugger.NewDebugger(s.vm, 100)
	s.warnings = result.Warnings

	return nil
}

// Warnings returns the use-before-set warnings collected during the last
// Compile (spec.md §7), formatted as "warning: <message>, at line <n>".
func (s *CompileService) Warnings() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.warnings))
	for i, w := range s.warnings {
		out[i] = w.String()
	}
	return out
}

// Step executes a single instruction. It reports halted=true once the
// program has finished running.
func (s *CompileService) Step() (halted bool, err error) {
	s.mu.Lock()
	vm := s.vm
	s.mu.Unlock()

	if vm == nil {
		return true, fmt.Errorf("no program compiled")
	}

	cont, err := vm.Step()
	return !cont, err
}

// RunUntilPause single-steps until a breakpoint/watchpoint fires or the
// program halts or errors, mirroring the debugger CLI's run loop
// (debugger/interface.go). It is meant to be called from a goroutine the
// caller can cancel by clearing Debugger.Running.
func (s *CompileService) RunUntilPause() (reason string, err error) {
	s.mu.Lock()
	dbg := s.dbg
	s.mu.Unlock()

	if dbg == nil {
		return "", fmt.Errorf("no program compiled")
	}

	dbg.Running = true
	dbg.StepMode = debugger.StepNone

	for dbg.Running {
		if shouldBreak, why := dbg.ShouldBreak(); shouldBreak {
			dbg.Running = false
			return why, nil
		}

		halted, stepErr := dbg.VM.Step()
		if stepErr != nil {
			dbg.Running = false
			return "error", stepErr
		}
		if halted {
			dbg.Running = false
			return "halted", nil
		}
	}

	return "paused", nil
}

// Pause stops a RunUntilPause loop running in another goroutine.
func (s *CompileService) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dbg != nil {
		s.dbg.Running = false
	}
}

// RegisterState returns a snapshot of the VM's registers and PC.
func (s *CompileService) RegisterState() (RegisterState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.vm == nil {
		return RegisterState{}, fmt.Errorf("no program compiled")
	}
	return RegisterState{Registers: s.vm.Registers, PC: s.vm.PC, Cycles: s.vm.Cycles}, nil
}

// ExecutionState reports why the VM last stopped stepping.
func (s *CompileService) ExecutionState() (ExecutionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.vm == nil {
		return StateHalted, fmt.Errorf("no program compiled")
	}
	return VMStateToExecution(s.vm.State), nil
}

// AddBreakpoint sets a breakpoint at an instruction address.
func (s *CompileService) AddBreakpoint(address int) (BreakpointInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dbg == nil {
		return BreakpointInfo{}, fmt.Errorf("no program compiled")
	}
	bp := s.dbg.Breakpoints.Add(address, 0, false)
	return BreakpointInfo{ID: bp.ID, Address: bp.Address, Enabled: bp.Enabled}, nil
}

// RemoveBreakpoint deletes a breakpoint by ID.
func (s *CompileService) RemoveBreakpoint(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dbg == nil {
		return fmt.Errorf("no program compiled")
	}
	return s.dbg.Breakpoints.Delete(id)
}

// Breakpoints lists every breakpoint in the session.
func (s *CompileService) Breakpoints() []BreakpointInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dbg == nil {
		return nil
	}
	bps := s.dbg.Breakpoints.All()
	out := make([]BreakpointInfo, len(bps))
	for i, bp := range bps {
		out[i] = BreakpointInfo{ID: bp.ID, Address: bp.Address, Enabled: bp.Enabled}
	}
	return out
}

// AddWatchpoint watches a register (a-h) or a memory cell number.
func (s *CompileService) AddWatchpoint(target string) (WatchpointInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dbg == nil {
		return WatchpointInfo{}, fmt.Errorf("no program compiled")
	}

	if reg, ok := registerByName[target]; ok {
		wp := s.dbg.Watchpoints.AddRegister(reg)
		_ = s.dbg.Watchpoints.Init(wp.ID, s.vm)
		return WatchpointInfo{ID: wp.ID, Target: target, Value: wp.LastValue}, nil
	}

	var cell uint64
	if _, err := fmt.Sscanf(target, "%d", &cell); err != nil {
		return WatchpointInfo{}, fmt.Errorf("%q is neither a register (a-h) nor a memory cell number", target)
	}
	wp := s.dbg.Watchpoints.AddMemory(cell)
	_ = s.dbg.Watchpoints.Init(wp.ID, s.vm)
	return WatchpointInfo{ID: wp.ID, Target: fmt.Sprintf("cell %d", cell), Value: wp.LastValue}, nil
}

// Watchpoints lists every watchpoint in the session.
func (s *CompileService) Watchpoints() []WatchpointInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dbg == nil {
		return nil
	}
	wps := s.dbg.Watchpoints.All()
	out := make([]WatchpointInfo, len(wps))
	for i, wp := range wps {
		target := fmt.Sprintf("cell %d", wp.Cell)
		if wp.IsRegister {
			target = registerName(wp.Register)
		}
		out[i] = WatchpointInfo{ID: wp.ID, Target: target, Value: wp.LastValue}
	}
	return out
}

// RemoveWatchpoint deletes a watchpoint by ID.
func (s *CompileService) RemoveWatchpoint(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dbg == nil {
		return fmt.Errorf("no program compiled")
	}
	return s.dbg.Watchpoints.Delete(id)
}

// Reset restores the VM to its initial state (PC 0, cycle count 0, all
// registers zeroed) without discarding the compiled program or its
// breakpoints.
func (s *CompileService) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vm == nil {
		return fmt.Errorf("no program compiled")
	}
	s.vm.PC = 0
	s.vm.Cycles = 0
	s.vm.State = machine.StateRunning
	s.vm.LastError = nil
	s.vm.Registers = [8]uint64{}
	s.vm.Memory = machine.NewMemory()
	s.dbg.Running = false
	return nil
}

// Output drains and returns everything the program has written to stdout
// since the last call.
func (s *CompileService) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.output.String()
	s.output.Reset()
	return out
}

// registerByName maps the eight register names to machine.Register, the
// same names debugger.cmdWatch accepts.
var registerByName = map[string]machine.Register{
	"a": machine.RegA, "b": machine.RegB, "c": machine.RegC, "d": machine.RegD,
	"e": machine.RegE, "f": machine.RegF, "g": machine.RegG, "h": machine.RegH,
}

func registerName(reg machine.Register) string {
	for name, r := range registerByName {
		if r == reg {
			return name
		}
	}
	return "?"
}
