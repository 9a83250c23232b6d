package codegen

import (
	"github.com/Maksym-Lukianenko123/impc/machine"
	"github.com/Maksym-Lukianenko123/impc/parser"
)

// Result is the output of Generate: the linked program and any
// non-fatal use-before-set warnings collected along the way (spec.md §7).
type Result struct {
	Program  []machine.Instruction
	Warnings []*parser.Warning
}

// Generate lowers every procedure in table, in declaration order, into one
// linked instruction stream: line 0 is reserved for the entry jump, each
// procedure's first_line is recorded as it is emitted, and the entry jump
// is patched to PROGRAM's first_line once every procedure has been laid
// out (spec.md §4.1's three-phase emit_all).
func Generate(table *parser.ProcedureTable) (*Result, error) {
	program, err := table.Program()
	if err != nil {
		return nil, err
	}

	var code []machine.Instruction
	code = append(code, machine.Instruction{Op: machine.OpJump}) // patched below
	currentLine := 1

	var warnings []*parser.Warning
	for _, proc := range table.Procedures() {
		proc.FirstLine = currentLine
		e := NewEmitter(currentLine)
		c := newContext(proc, table, e)

		if err := lowerCommands(c, proc.Commands); err != nil {
			return nil, err
		}
		if proc.Name == "PROGRAM" {
			e.emit(machine.OpHalt, 0)
		} else {
			emitReturnSequence(c)
		}

		warnings = append(warnings, c.warnings...)
		code = append(code, e.Code()...)
		currentLine += len(e.Code())
	}

	code[0] = machine.Instruction{Op: machine.OpJump, Line: program.FirstLine}
	return &Result{Program: code, Warnings: warnings}, nil
}

// emitReturnSequence appends a non-PROGRAM procedure's return sequence:
// materialize the return slot's address, LOAD the saved address, JUMPR
// through it (spec.md §4.3's callee return tail).
func emitReturnSequence(c *context) {
	genConst(c.e, c.proc.Offset, machine.RegA)
	c.e.emit(machine.OpLoad, machine.RegA)
	c.e.emit(machine.OpJumpr, machine.RegA)
}
