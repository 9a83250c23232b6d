package parser

import "fmt"

// Procedure is one declared procedure (or the distinguished PROGRAM entry),
// per spec.md §3: a name, ordered reference parameters, a symbol table of
// locals and params, an ordered command list, and a memory base offset.
// FirstLine is filled in by package codegen during emission and is
// otherwise zero.
type Procedure struct {
	Name     string
	Params   []string // reference parameter names, declaration order
	Symbols  map[string]*Symbol
	Commands []Command

	// Offset is the procedure's base memory offset. The return-address
	// slot address is exactly Offset (spec.md §3's memory layout invariant).
	Offset uint64

	// EndOffset is one past the procedure's last allocated cell; it is
	// what the next procedure's Offset will be.
	EndOffset uint64

	// FirstLine is the address of the procedure's first emitted
	// instruction. It is resolved once package codegen emits the
	// procedure and is the entry point's eventual jump target for PROGRAM.
	FirstLine int
}

// Lookup finds a symbol (param or local) declared in this procedure.
func (p *Procedure) Lookup(name string) (*Symbol, bool) {
	sym, ok := p.Symbols[name]
	return sym, ok
}

// ParamSymbol returns the i-th declared parameter's symbol.
func (p *Procedure) ParamSymbol(i int) *Symbol {
	return p.Symbols[p.Params[i]]
}

// Arity returns the number of declared reference parameters.
func (p *Procedure) Arity() int { return len(p.Params) }

// ProcedureBuilder accumulates a procedure's parameters and locals while the
// parser walks its declarations, assigning offsets immediately as each name
// is declared (spec.md §3's memory layout invariant: return slot, then one
// cell per reference parameter, then locals and arrays in declaration order).
type ProcedureBuilder struct {
	proc   *Procedure
	cursor uint64
}

// NewProcedureBuilder starts building a procedure whose memory block begins
// at base (the table's current next-free-offset).
func NewProcedureBuilder(name string, base uint64) *ProcedureBuilder {
	return &ProcedureBuilder{
		proc: &Procedure{
			Name:    name,
			Symbols: make(map[string]*Symbol),
			Offset:  base,
		},
		cursor: 1, // cell 0 of the block is the return-address slot
	}
}

func (b *ProcedureBuilder) declared(name string) bool {
	_, ok := b.proc.Symbols[name]
	return ok
}

// AddRefScalar declares a by-reference scalar parameter.
func (b *ProcedureBuilder) AddRefScalar(name string, line int) error {
	if b.declared(name) {
		return NewError(ErrRedeclaration, line, "redeclaration of parameter %s", name)
	}
	b.proc.Symbols[name] = &Symbol{Name: name, Kind: KindRefScalar, Offset: b.cursor, DeclLine: line}
	b.proc.Params = append(b.proc.Params, name)
	b.cursor++
	return nil
}

// AddRefArray declares a by-reference array parameter (the `T name` form).
func (b *ProcedureBuilder) AddRefArray(name string, line int) error {
	if b.declared(name) {
		return NewError(ErrRedeclaration, line, "redeclaration of parameter %s", name)
	}
	b.proc.Symbols[name] = &Symbol{Name: name, Kind: KindRefArray, Offset: b.cursor, DeclLine: line}
	b.proc.Params = append(b.proc.Params, name)
	b.cursor++
	return nil
}

// AddScalar declares a local scalar variable.
func (b *ProcedureBuilder) AddScalar(name string, line int) error {
	if b.declared(name) {
		return NewError(ErrRedeclaration, line, "redeclaration of variable %s", name)
	}
	b.proc.Symbols[name] = &Symbol{Name: name, Kind: KindScalar, Offset: b.cursor, DeclLine: line}
	b.cursor++
	return nil
}

// AddArray declares a local array variable of the given length.
func (b *ProcedureBuilder) AddArray(name string, length uint64, line int) error {
	if b.declared(name) {
		return NewError(ErrRedeclaration, line, "redeclaration of variable %s", name)
	}
	if length == 0 {
		return NewError(ErrIndex, line, "array %s declared with zero length", name)
	}
	b.proc.Symbols[name] = &Symbol{Name: name, Kind: KindArray, Offset: b.cursor, Length: length, DeclLine: line}
	b.cursor += length
	return nil
}

// Finish attaches the procedure's command list and returns the completed
// Procedure, ready for ProcedureTable.Add.
func (b *ProcedureBuilder) Finish(commands []Command) *Procedure {
	b.proc.Commands = commands
	b.proc.EndOffset = b.proc.Offset + b.cursor
	return b.proc
}

// ProcedureTable is the ordered, post-parse collection of all procedures,
// keyed by name, with PROGRAM as the distinguished entry (spec.md §3).
// It is built once by the parser. Package codegen does not add or remove
// entries, but it writes each Procedure's FirstLine and the Initialized
// flags of its symbols while emitting, so a table is not left as the
// parser produced it.
type ProcedureTable struct {
	order      []string
	procs      map[string]*Procedure
	nextOffset uint64
}

// NewProcedureTable creates an empty table whose first procedure will be
// based at memory offset 0.
func NewProcedureTable() *ProcedureTable {
	return &ProcedureTable{procs: make(map[string]*Procedure)}
}

// NextOffset returns the memory offset the next procedure should be based at.
func (t *ProcedureTable) NextOffset() uint64 { return t.nextOffset }

// Add records a fully-built procedure, advancing the global memory cursor
// past its highest allocated cell. Fails with ErrRedeclaration if the name
// is already bound (spec.md §4.1).
func (t *ProcedureTable) Add(p *Procedure, line int) error {
	if _, exists := t.procs[p.Name]; exists {
		return NewError(ErrRedeclaration, line, "redeclaration of procedure %s", p.Name)
	}
	t.procs[p.Name] = p
	t.order = append(t.order, p.Name)
	t.nextOffset = p.EndOffset
	return nil
}

// Get looks up a procedure by name.
func (t *ProcedureTable) Get(name string) (*Procedure, bool) {
	p, ok := t.procs[name]
	return p, ok
}

// Procedures returns every procedure in declaration order.
func (t *ProcedureTable) Procedures() []*Procedure {
	out := make([]*Procedure, len(t.order))
	for i, name := range t.order {
		out[i] = t.procs[name]
	}
	return out
}

// Program returns the distinguished PROGRAM entry, which must be present
// for a well-formed table (spec.md §3).
func (t *ProcedureTable) Program() (*Procedure, error) {
	p, ok := t.procs["PROGRAM"]
	if !ok {
		return nil, fmt.Errorf("program is missing a PROGRAM entry")
	}
	return p, nil
}
