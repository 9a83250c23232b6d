package machine

// Memory is the target machine's word-addressable store. Cells default to
// zero and the address space is treated as unbounded (spec.md §3); a plain
// map keeps sparse programs cheap without picking an arbitrary ceiling.
type Memory struct {
	cells map[uint64]uint64
}

// NewMemory creates an empty memory image.
func NewMemory() *Memory {
	return &Memory{cells: make(map[uint64]uint64)}
}

// Load reads the cell at addr, defaulting to zero if never written.
func (m *Memory) Load(addr uint64) uint64 {
	return m.cells[addr]
}

// Store writes value into the cell at addr.
func (m *Memory) Store(addr, value uint64) {
	m.cells[addr] = value
}

// Size reports how many distinct cells have been written; execution itself
// does not use it.
func (m *Memory) Size() int {
	return len(m.cells)
}
