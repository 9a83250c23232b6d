package codegen

import (
	"github.com/Maksym-Lukianenko123/impc/machine"
	"github.com/Maksym-Lukianenko123/impc/parser"
)

// loadAddress computes the address of ref's datum into register a (and, if
// outReg is not a, copies it there with PUT). markInit records that a
// scalar assign/read target has now been set. Grounded on
// code_generator.py's load_address / load_from_array_memory /
// load_link_T_address (spec.md §4.4's six-case table).
func loadAddress(c *context, ref parser.Ref, outReg machine.Register, markInit bool, line int) error {
	sym, ok := c.proc.Lookup(ref.Name)
	if !ok {
		return parser.NewError(parser.ErrUndeclaredSymbol, line, "undeclared variable %s", ref.Name)
	}

	switch ref.Kind {
	case parser.RefName:
		switch sym.Kind {
		case parser.KindScalar:
			genConst(c.e, c.proc.Offset+sym.Offset, machine.RegA)
		case parser.KindRefScalar:
			dereferenceSlot(c, sym.Offset, machine.RegF)
		default:
			return parser.NewError(parser.ErrIndex, line, "%s is an array, not a scalar", ref.Name)
		}
	case parser.RefIndexConst:
		if !sym.Kind.IsArray() {
			return parser.NewError(parser.ErrIndex, line, "undeclared array %s", ref.Name)
		}
		if err := arrayElementAddressConst(c, sym, ref.Index); err != nil {
			return err
		}
	case parser.RefIndexName:
		if !sym.Kind.IsArray() {
			return parser.NewError(parser.ErrIndex, line, "undeclared array %s", ref.Name)
		}
		if err := arrayElementAddressVar(c, sym, ref.IndexName, line); err != nil {
			return err
		}
	}

	if outReg != machine.RegA {
		c.e.emit(machine.OpPut, outReg)
	}
	if markInit && ref.Kind == parser.RefName {
		sym.Initialized = true
	}
	return nil
}

// dereferenceSlot computes, into a, the address stored in the reference
// parameter slot at procedure-relative offset slotOffset — i.e. one
// indirection through the slot (code_generator.py's load_link_address).
func dereferenceSlot(c *context, slotOffset uint64, scratch machine.Register) {
	genConst(c.e, c.proc.Offset+slotOffset, scratch)
	c.e.emit(machine.OpLoad, scratch)
}

// arrayElementAddressConst computes, into a, the address of a local or
// by-reference array's element at a literal index.
func arrayElementAddressConst(c *context, sym *parser.Symbol, index uint64) error {
	if sym.Kind == parser.KindArray {
		genConst(c.e, c.proc.Offset+sym.Offset+index, machine.RegA)
		return nil
	}
	// by-reference array: dereference the slot to get the caller's base
	// address, then add the literal index.
	dereferenceSlot(c, sym.Offset, machine.RegF)
	c.e.emit(machine.OpPut, machine.RegF)
	genConst(c.e, index, machine.RegA)
	c.e.emit(machine.OpAdd, machine.RegF)
	return nil
}

// arrayElementAddressVar computes, into a, the address of a local or
// by-reference array's element indexed by another scalar variable's value.
func arrayElementAddressVar(c *context, sym *parser.Symbol, indexName string, line int) error {
	idxSym, ok := c.proc.Lookup(indexName)
	if !ok {
		return parser.NewError(parser.ErrUndeclaredSymbol, line, "undeclared variable %s", indexName)
	}
	if idxSym.Kind == parser.KindScalar {
		if err := c.checkInitialized(idxSym, line); err != nil {
			return err
		}
	}

	if err := loadValue(c, parser.ScalarRef(indexName), machine.RegF, line); err != nil {
		return err
	}
	if sym.Kind == parser.KindArray {
		genConst(c.e, c.proc.Offset+sym.Offset, machine.RegA)
		c.e.emit(machine.OpAdd, machine.RegF)
		return nil
	}
	// by-reference array: base is the dereferenced slot value.
	dereferenceSlot(c, sym.Offset, machine.RegE)
	c.e.emit(machine.OpAdd, machine.RegF)
	return nil
}

// loadValue computes ref's current value into register a (PUT outReg if
// outReg != a). Local scalars are subject to the use-before-set check;
// reference parameters and array elements are not (spec.md §3: "array
// element initialization is never tracked").
func loadValue(c *context, ref parser.Ref, outReg machine.Register, line int) error {
	sym, ok := c.proc.Lookup(ref.Name)
	if !ok {
		return parser.NewError(parser.ErrUndeclaredSymbol, line, "undeclared variable %s", ref.Name)
	}
	if ref.Kind == parser.RefName && sym.Kind == parser.KindScalar {
		if err := c.checkInitialized(sym, line); err != nil {
			return err
		}
	}

	if err := loadAddress(c, ref, machine.RegA, false, line); err != nil {
		return err
	}
	c.e.emit(machine.OpLoad, machine.RegA)
	if outReg != machine.RegA {
		c.e.emit(machine.OpPut, outReg)
	}
	return nil
}
