// Package codegen lowers a parsed ProcedureTable into target-machine
// instructions (spec.md §4), grounded on original_source/src/code_generator.go
// and original_source/src/procedures_table.go.
package codegen

import "github.com/Maksym-Lukianenko123/impc/machine"

// Label is a not-yet-resolved jump target within one procedure's emission.
// It replaces the source's textual "finish" placeholder (spec.md §9 design
// note) with a typed value: every JUMP/JPOS/JZERO that targets a Label is
// recorded in the emitter's pending list and rewritten once the label is
// bound to a concrete address.
type Label struct {
	resolved bool
	line     int
}

type pendingPatch struct {
	index int
	label *Label
}

// Emitter accumulates one procedure's instruction buffer. base is the
// procedure's first_line: the absolute address its first instruction will
// occupy once concatenated into the final program (spec.md §4.1's two-pass
// layout).
type Emitter struct {
	base    int
	code    []machine.Instruction
	pending []pendingPatch
}

// NewEmitter creates an emitter whose buffer begins at absolute address base.
func NewEmitter(base int) *Emitter {
	return &Emitter{base: base}
}

// Here returns the absolute address the next emitted instruction will occupy.
func (e *Emitter) Here() int { return e.base + len(e.code) }

// Code returns the accumulated instruction buffer. Every Label referenced
// by a jump in this buffer must have been bound before calling Code.
func (e *Emitter) Code() []machine.Instruction { return e.code }

func (e *Emitter) emit(op machine.Opcode, reg machine.Register) {
	e.code = append(e.code, machine.Instruction{Op: op, Reg: reg})
}

// EmitJump emits a JUMP/JPOS/JZERO to an already-known absolute address
// (used for loop back-edges, the arithmetic templates' fixed jumps, and
// procedure calls, which always jump to an already-resolved first_line).
func (e *Emitter) EmitJump(op machine.Opcode, line int) {
	e.code = append(e.code, machine.Instruction{Op: op, Line: line})
}

// EmitJumpToLabel emits a JUMP/JPOS/JZERO whose target is not yet known;
// it is patched in when label is bound via Bind.
func (e *Emitter) EmitJumpToLabel(op machine.Opcode, label *Label) {
	index := len(e.code)
	e.code = append(e.code, machine.Instruction{Op: op})
	e.pending = append(e.pending, pendingPatch{index: index, label: label})
}

// NewLabel creates an unbound label.
func (e *Emitter) NewLabel() *Label {
	return &Label{}
}

// Bind fixes label to the emitter's current position and patches every
// jump recorded against it so far.
func (e *Emitter) Bind(label *Label) {
	label.line = e.Here()
	label.resolved = true
	for _, p := range e.pending {
		if p.label == label {
			e.code[p.index].Line = label.line
		}
	}
}

// BindTo fixes label to an explicit absolute address rather than the
// emitter's current position (used by REPEAT-UNTIL, whose condition jumps
// back to the loop start, an address already behind the emitter).
func (e *Emitter) BindTo(label *Label, line int) {
	label.line = line
	label.resolved = true
	for _, p := range e.pending {
		if p.label == label {
			e.code[p.index].Line = label.line
		}
	}
}
