package machine

// TraceEntry records one executed instruction and the register file
// immediately before it ran.
type TraceEntry struct {
	Line        int
	Instruction Instruction
	Registers   [8]uint64
}

// ExecutionTrace accumulates a full instruction-level history, grounded on
// vm/trace.go's ExecutionTrace. The CLI driver attaches one for its -trace
// output; normal execution does not need it.
type ExecutionTrace struct {
	Entries []TraceEntry
	vm      *VM
}

// NewExecutionTrace creates a trace bound to vm, whose register file is
// snapshotted on each Record call.
func NewExecutionTrace(vm *VM) *ExecutionTrace {
	return &ExecutionTrace{vm: vm}
}

// Record appends one entry for the instruction about to execute at line.
func (t *ExecutionTrace) Record(line int, inst Instruction) {
	t.Entries = append(t.Entries, TraceEntry{
		Line:        line,
		Instruction: inst,
		Registers:   t.vm.Registers,
	})
}

// Len reports how many instructions have been recorded.
func (t *ExecutionTrace) Len() int { return len(t.Entries) }
