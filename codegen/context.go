package codegen

import (
	"github.com/Maksym-Lukianenko123/impc/machine"
	"github.com/Maksym-Lukianenko123/impc/parser"
)

// scratch registers used by default for addressing and value materialization,
// matching code_generator.py's reg_address="h" / reg_value="g" convention.
const (
	regAddress = machine.RegH
	regValue   = machine.RegG
)

// context carries the per-procedure mutable emission state: the procedure
// being lowered, the full table (for proc_call lookups), the instruction
// buffer, and the loop-depth counter that governs uninitialized-variable
// severity (spec.md §4.2, §4.4).
type context struct {
	proc      *parser.Procedure
	table     *parser.ProcedureTable
	e         *Emitter
	loopDepth int
	warnings  []*parser.Warning
}

func newContext(proc *parser.Procedure, table *parser.ProcedureTable, e *Emitter) *context {
	return &context{proc: proc, table: table, e: e}
}

// checkInitialized enforces spec.md §4.4's use-before-set rule for a local
// scalar: fatal outside any loop, a recorded warning inside one.
func (c *context) checkInitialized(sym *parser.Symbol, line int) error {
	if sym.Initialized {
		return nil
	}
	if c.loopDepth == 0 {
		return parser.NewError(parser.ErrUninitialized, line, "variable %s used before being set", sym.Name)
	}
	c.warnings = append(c.warnings, &parser.Warning{
		Message: "variable " + sym.Name + " may be used before set",
		Line:    line,
	})
	return nil
}
