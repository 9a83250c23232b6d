// Package debugger implements an interactive single-stepper over a
// compiled program running on package machine: breakpoints and
// watchpoints, a small gdb-style command line, and (in tui.go) a tcell/
// tview front end, scoped to the register machine's much smaller surface
// than a CPU debugger would need — no call stack, no addressing modes,
// no expression language, since there is nothing to evaluate beyond a
// register or a memory cell.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Maksym-Lukianenko123/impc/machine"
)

// StepMode selects what ShouldBreak is waiting for.
type StepMode int

const (
	StepNone   StepMode = iota // run until breakpoint/watchpoint/halt
	StepSingle                 // stop after exactly one instruction
)

// Debugger holds one debugging session's state: the VM being stepped, its
// breakpoints/watchpoints, command history, and an optional address ->
// source-line map recovered from the compiled listing.
type Debugger struct {
	VM *machine.VM

	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager
	History     *CommandHistory

	Running  bool
	StepMode StepMode

	SourceMap map[int]int // instruction address -> source language line

	LastCommand string
	Output      strings.Builder
}

// NewDebugger wraps vm in a fresh debugging session.
func NewDebugger(vm *machine.VM, historySize int) *Debugger {
	return &Debugger{
		VM:          vm,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistory(historySize),
		SourceMap:   make(map[int]int),
	}
}

// LoadSourceMap attaches the address -> source-line table produced
// alongside compilation, for listing display.
func (d *Debugger) LoadSourceMap(m map[int]int) { d.SourceMap = m }

// ExecuteCommand parses and runs one command line. An empty line repeats
// LastCommand, gdb-style "press Enter to repeat".
func (d *Debugger) ExecuteCommand(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		line = d.LastCommand
	}
	if line != "" {
		d.History.Add(line)
		d.LastCommand = line
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	return d.dispatch(strings.ToLower(fields[0]), fields[1:])
}

func (d *Debugger) dispatch(cmd string, args []string) error {
	switch cmd {
	case "run", "r", "continue", "c":
		d.StepMode = StepNone
		d.Running = true
		return nil
	case "step", "s":
		if _, err := d.VM.Step(); err != nil {
			return err
		}
		d.StepMode = StepSingle
		d.Running = true
		return nil
	case "break", "b":
		return d.cmdBreak(args, false)
	case "tbreak", "tb":
		return d.cmdBreak(args, true)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdSetBreakEnabled(args, true)
	case "disable":
		return d.cmdSetBreakEnabled(args, false)
	case "watch", "w":
		return d.cmdWatch(args)
	case "registers", "regs":
		d.printRegisters()
		return nil
	case "print", "p":
		return d.cmdPrint(args)
	case "list", "l":
		d.printListing()
		return nil
	case "help", "h", "?":
		d.printHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

func (d *Debugger) cmdBreak(args []string, temporary bool) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: break <address>")
	}
	addr, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", args[0], err)
	}
	line := d.SourceMap[addr]
	bp := d.Breakpoints.Add(addr, line, temporary)
	d.Printf("breakpoint %d at address %d\n", bp.ID, bp.Address)
	return nil
}

func (d *Debugger) cmdDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", args[0], err)
	}
	return d.Breakpoints.Delete(id)
}

func (d *Debugger) cmdSetBreakEnabled(args []string, enabled bool) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: enable|disable <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", args[0], err)
	}
	return d.Breakpoints.SetEnabled(id, enabled)
}

func (d *Debugger) cmdWatch(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: watch <register>|<memory cell>")
	}
	if reg, ok := registerByName[args[0]]; ok {
		wp := d.Watchpoints.AddRegister(reg)
		_ = d.Watchpoints.Init(wp.ID, d.VM)
		d.Printf("watchpoint %d on register %s\n", wp.ID, args[0])
		return nil
	}
	cell, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("%q is neither a register (a-h) nor a memory cell number", args[0])
	}
	wp := d.Watchpoints.AddMemory(cell)
	_ = d.Watchpoints.Init(wp.ID, d.VM)
	d.Printf("watchpoint %d on memory cell %d\n", wp.ID, cell)
	return nil
}

func (d *Debugger) cmdPrint(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: print <register>|<memory cell>")
	}
	if reg, ok := registerByName[args[0]]; ok {
		d.Printf("%s = %d\n", args[0], d.VM.Registers[reg])
		return nil
	}
	cell, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("%q is neither a register (a-h) nor a memory cell number", args[0])
	}
	d.Printf("[%d] = %d\n", cell, d.VM.Memory.Load(cell))
	return nil
}

var registerByName = map[string]machine.Register{
	"a": machine.RegA, "b": machine.RegB, "c": machine.RegC, "d": machine.RegD,
	"e": machine.RegE, "f": machine.RegF, "g": machine.RegG, "h": machine.RegH,
}

func (d *Debugger) printRegisters() {
	for r := machine.RegA; r <= machine.RegH; r++ {
		d.Printf("%s = %d\n", r, d.VM.Registers[r])
	}
}

func (d *Debugger) printListing() {
	start := d.VM.PC - ListingLinesBefore
	if start < 0 {
		start = 0
	}
	end := d.VM.PC + ListingLinesAfter
	if end > len(d.VM.Program) {
		end = len(d.VM.Program)
	}
	for addr := start; addr < end; addr++ {
		marker := "  "
		if addr == d.VM.PC {
			marker = "->"
		}
		d.Printf("%s %d: %s\n", marker, addr, d.VM.Program[addr])
	}
}

func (d *Debugger) printHelp() {
	d.Printf("commands: run step break tbreak delete enable disable watch print registers list help\n")
}

// ShouldBreak reports whether execution should pause before the next
// instruction runs, and why.
func (d *Debugger) ShouldBreak() (bool, string) {
	if d.StepMode == StepSingle {
		d.StepMode = StepNone
		return true, "single step"
	}

	if bp := d.Breakpoints.Hit(d.VM.PC); bp != nil {
		return true, fmt.Sprintf("breakpoint %d", bp.ID)
	}

	if wp, previous, current, changed := d.Watchpoints.Check(d.VM); changed {
		return true, fmt.Sprintf("watchpoint %d: %d -> %d", wp.ID, previous, current)
	}

	return false, ""
}

// GetOutput drains and returns everything written via Printf/Println since
// the last call.
func (d *Debugger) GetOutput() string {
	out := d.Output.String()
	d.Output.Reset()
	return out
}

// Printf appends formatted text to the debugger's output buffer.
func (d *Debugger) Printf(format string, args ...any) {
	fmt.Fprintf(&d.Output, format, args...)
}
