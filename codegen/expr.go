package codegen

import (
	"github.com/Maksym-Lukianenko123/impc/machine"
	"github.com/Maksym-Lukianenko123/impc/parser"
)

// calculateExpression materializes expr's value into outReg (a, unless
// otherwise requested). Grounded on code_generator.py's calculate_expression.
func calculateExpression(c *context, expr *parser.Expr, outReg machine.Register, line int) error {
	switch expr.Kind {
	case parser.ExprConst:
		genConst(c.e, expr.Value, regValue)
		c.e.emit(machine.OpGet, regValue)
		if outReg != machine.RegA {
			c.e.emit(machine.OpPut, outReg)
		}
		return nil
	case parser.ExprLoad:
		return loadValue(c, expr.Ref, outReg, line)
	case parser.ExprAdd:
		if err := addingCase(c, expr.Left, expr.Right, line); err != nil {
			return err
		}
	case parser.ExprSub:
		if err := subtractionCase(c, expr.Left, expr.Right, line); err != nil {
			return err
		}
	case parser.ExprMul:
		if err := multiplicationCase(c, expr.Left, expr.Right, line); err != nil {
			return err
		}
	case parser.ExprDiv:
		if err := divisionCase(c, expr.Left, expr.Right, false, line); err != nil {
			return err
		}
	case parser.ExprMod:
		if err := modCase(c, expr.Left, expr.Right, line); err != nil {
			return err
		}
	}
	if outReg != machine.RegA {
		c.e.emit(machine.OpPut, outReg)
	}
	return nil
}

// addingCase lowers e1 + e2 into a (spec.md §4.4's `add` rules).
func addingCase(c *context, e1, e2 *parser.Expr, line int) error {
	switch {
	case e1.Kind == parser.ExprConst && e2.Kind == parser.ExprConst:
		genConst(c.e, e1.Value+e2.Value, machine.RegA)
		return nil
	case e1.Equal(e2):
		if err := calculateExpression(c, e1, machine.RegA, line); err != nil {
			return err
		}
		c.e.emit(machine.OpShl, machine.RegA)
		return nil
	case e2.Kind == parser.ExprConst:
		if err := calculateExpression(c, e1, machine.RegA, line); err != nil {
			return err
		}
		for i := uint64(0); i < e2.Value; i++ {
			c.e.emit(machine.OpInc, machine.RegA)
		}
		return nil
	case e1.Kind == parser.ExprConst:
		if err := calculateExpression(c, e2, machine.RegA, line); err != nil {
			return err
		}
		for i := uint64(0); i < e1.Value; i++ {
			c.e.emit(machine.OpInc, machine.RegA)
		}
		return nil
	default:
		if err := calculateExpression(c, e2, machine.RegB, line); err != nil {
			return err
		}
		if err := calculateExpression(c, e1, machine.RegA, line); err != nil {
			return err
		}
		c.e.emit(machine.OpAdd, machine.RegB)
		return nil
	}
}

// subtractionCase lowers the saturating e1 - e2 into a.
func subtractionCase(c *context, e1, e2 *parser.Expr, line int) error {
	switch {
	case e1.Kind == parser.ExprConst && e2.Kind == parser.ExprConst:
		if e1.Value <= e2.Value {
			c.e.emit(machine.OpRst, machine.RegA)
		} else {
			genConst(c.e, e1.Value-e2.Value, machine.RegA)
		}
		return nil
	case e2.Kind == parser.ExprConst && e2.Value < 12:
		if err := calculateExpression(c, e1, machine.RegA, line); err != nil {
			return err
		}
		for i := uint64(0); i < e2.Value; i++ {
			c.e.emit(machine.OpDec, machine.RegA)
		}
		return nil
	case e1.Kind == parser.ExprConst && e1.Value == 0:
		c.e.emit(machine.OpRst, machine.RegA)
		return nil
	default:
		if err := calculateExpression(c, e1, machine.RegB, line); err != nil {
			return err
		}
		if err := calculateExpression(c, e2, machine.RegC, line); err != nil {
			return err
		}
		c.e.emit(machine.OpGet, machine.RegB)
		c.e.emit(machine.OpSub, machine.RegC)
		return nil
	}
}

// log2PowerOfTwo returns (log2(v), true) if v is a positive power of two.
func log2PowerOfTwo(v uint64) (uint64, bool) {
	if v == 0 || v&(v-1) != 0 {
		return 0, false
	}
	n := uint64(0)
	for v > 1 {
		v >>= 1
		n++
	}
	return n, true
}

// multiplicationCase lowers e1 * e2 into a, using the binary-shift
// multiplication loop for the general case (spec.md §4.4, grounded on
// code_generator.py's multiplication_case, with the corrections noted in
// spec.md §9: the constant-fold path emits a const node rather than
// recursing on a bare int, and the zero case emits RST rather than the
// nonexistent RESET mnemonic).
func multiplicationCase(c *context, e1, e2 *parser.Expr, line int) error {
	if e1.Kind == parser.ExprConst && e2.Kind == parser.ExprConst {
		genConst(c.e, e1.Value*e2.Value, machine.RegA)
		return nil
	}

	// Normalize so that a constant operand, if any, is e2.
	if e1.Kind == parser.ExprConst {
		e1, e2 = e2, e1
	}
	if e2.Kind == parser.ExprConst {
		switch {
		case e2.Value == 0:
			c.e.emit(machine.OpRst, machine.RegA)
			return nil
		case e2.Value == 1:
			return calculateExpression(c, e1, machine.RegA, line)
		default:
			if shift, ok := log2PowerOfTwo(e2.Value); ok {
				if err := calculateExpression(c, e1, machine.RegA, line); err != nil {
					return err
				}
				for i := uint64(0); i < shift; i++ {
					c.e.emit(machine.OpShl, machine.RegA)
				}
				return nil
			}
		}
	}

	const (
		second = machine.RegB
		third  = machine.RegC
		result = machine.RegD
	)
	if e1.Equal(e2) {
		if err := calculateExpression(c, e1, machine.RegA, line); err != nil {
			return err
		}
		c.e.emit(machine.OpPut, second)
		c.e.emit(machine.OpPut, third)
	} else {
		if err := calculateExpression(c, e2, third, line); err != nil {
			return err
		}
		if err := calculateExpression(c, e1, second, line); err != nil {
			return err
		}
	}

	// The fixed 32-instruction binary-shift multiplication template: at
	// each step, halve the smaller operand and double the larger one,
	// accumulating into result whenever the halved operand's low bit was
	// set, until the halved operand reaches zero.
	first := c.e.Here() - 1
	c.e.emit(machine.OpRst, result)
	c.e.emit(machine.OpGet, third)
	c.e.emit(machine.OpSub, second)
	c.e.EmitJump(machine.OpJpos, first+21)
	c.e.EmitJump(machine.OpJump, first+8)

	c.e.emit(machine.OpShl, second)
	c.e.emit(machine.OpShr, third)

	c.e.emit(machine.OpGet, third)
	c.e.EmitJump(machine.OpJzero, first+32)
	c.e.emit(machine.OpShr, third)
	c.e.emit(machine.OpShl, third)
	c.e.emit(machine.OpSub, third)
	c.e.EmitJump(machine.OpJpos, first+15)
	c.e.EmitJump(machine.OpJump, first+6)

	c.e.emit(machine.OpGet, result)
	c.e.emit(machine.OpAdd, second)
	c.e.emit(machine.OpPut, result)
	c.e.EmitJump(machine.OpJump, first+6)

	c.e.emit(machine.OpShl, third)
	c.e.emit(machine.OpShr, second)

	c.e.emit(machine.OpGet, second)
	c.e.EmitJump(machine.OpJzero, first+32)
	c.e.emit(machine.OpShr, second)
	c.e.emit(machine.OpShl, second)
	c.e.emit(machine.OpSub, second)
	c.e.EmitJump(machine.OpJpos, first+28)
	c.e.EmitJump(machine.OpJump, first+19)

	c.e.emit(machine.OpGet, result)
	c.e.emit(machine.OpAdd, third)
	c.e.emit(machine.OpPut, result)
	c.e.EmitJump(machine.OpJump, first+19)

	c.e.emit(machine.OpGet, result)
	return nil
}

// divisionCase lowers e1 / e2 (or, with ismod, the shared template's
// remainder output e1 % e2) into a, grounded on
// code_generator.py's division_case.
func divisionCase(c *context, e1, e2 *parser.Expr, ismod bool, line int) error {
	if !ismod {
		switch {
		case e1.Kind == parser.ExprConst && e2.Kind == parser.ExprConst:
			if e2.Value > 0 {
				genConst(c.e, e1.Value/e2.Value, machine.RegA)
			} else {
				c.e.emit(machine.OpRst, machine.RegA)
			}
			return nil
		case e1.Equal(e2):
			if err := calculateExpression(c, e1, machine.RegA, line); err != nil {
				return err
			}
			c.e.EmitJump(machine.OpJzero, c.e.Here()+3)
			c.e.emit(machine.OpRst, machine.RegA)
			c.e.emit(machine.OpInc, machine.RegA)
			return nil
		case e1.Kind == parser.ExprConst && e1.Value == 0:
			c.e.emit(machine.OpRst, machine.RegA)
			return nil
		case e2.Kind == parser.ExprConst:
			switch {
			case e2.Value == 0:
				c.e.emit(machine.OpRst, machine.RegA)
				return nil
			case e2.Value == 1:
				return calculateExpression(c, e1, machine.RegA, line)
			default:
				if shift, ok := log2PowerOfTwo(e2.Value); ok {
					if err := calculateExpression(c, e1, machine.RegA, line); err != nil {
						return err
					}
					for i := uint64(0); i < shift; i++ {
						c.e.emit(machine.OpShr, machine.RegA)
					}
					return nil
				}
			}
		}
	}

	const (
		dividend  = machine.RegB
		divisor   = machine.RegC
		quotient  = machine.RegD
		remainder = machine.RegE
	)
	if err := calculateExpression(c, e1, dividend, line); err != nil {
		return err
	}
	if err := calculateExpression(c, e2, divisor, line); err != nil {
		return err
	}

	// The restoring long-division template: doubles the divisor until it
	// exceeds the remainder, then repeatedly subtracts and halves,
	// accumulating the quotient.
	first := c.e.Here() - 1
	c.e.emit(machine.OpRst, quotient)
	c.e.emit(machine.OpRst, remainder)
	c.e.emit(machine.OpGet, divisor)
	c.e.EmitJump(machine.OpJzero, first+37)
	c.e.emit(machine.OpGet, dividend)
	c.e.emit(machine.OpPut, remainder)
	c.e.emit(machine.OpGet, divisor)
	c.e.emit(machine.OpPut, dividend)
	c.e.emit(machine.OpGet, remainder)
	c.e.emit(machine.OpSub, dividend)
	c.e.EmitJump(machine.OpJzero, first+19)
	c.e.emit(machine.OpGet, dividend)
	c.e.emit(machine.OpSub, remainder)
	c.e.EmitJump(machine.OpJzero, first+17)
	c.e.emit(machine.OpShr, dividend)
	c.e.EmitJump(machine.OpJump, first+19)
	c.e.emit(machine.OpShl, dividend)
	c.e.EmitJump(machine.OpJump, first+12)

	c.e.emit(machine.OpGet, dividend)
	c.e.emit(machine.OpSub, remainder)
	c.e.EmitJump(machine.OpJzero, first+23)
	c.e.EmitJump(machine.OpJump, first+37)
	c.e.emit(machine.OpGet, remainder)
	c.e.emit(machine.OpSub, dividend)
	c.e.emit(machine.OpPut, remainder)
	c.e.emit(machine.OpInc, quotient)

	c.e.emit(machine.OpGet, dividend)
	c.e.emit(machine.OpSub, remainder)
	c.e.EmitJump(machine.OpJzero, first+19)
	c.e.emit(machine.OpShr, dividend)
	c.e.emit(machine.OpGet, divisor)
	c.e.emit(machine.OpSub, dividend)
	c.e.EmitJump(machine.OpJzero, first+35)
	c.e.EmitJump(machine.OpJump, first+37)
	c.e.emit(machine.OpShl, quotient)
	c.e.EmitJump(machine.OpJump, first+27)

	if ismod {
		c.e.emit(machine.OpGet, remainder)
	} else {
		c.e.emit(machine.OpGet, quotient)
	}
	return nil
}

// modCase lowers e1 % e2 into a (spec.md §4.4; corrected per spec.md §9 to
// return after specializing the divisor-2 case rather than falling through
// into the general division template a second time).
func modCase(c *context, e1, e2 *parser.Expr, line int) error {
	switch {
	case e1.Equal(e2):
		c.e.emit(machine.OpRst, machine.RegA)
		return nil
	case e1.Kind == parser.ExprConst && e2.Kind == parser.ExprConst:
		if e2.Value == 0 {
			c.e.emit(machine.OpRst, machine.RegA)
		} else {
			genConst(c.e, e1.Value%e2.Value, machine.RegA)
		}
		return nil
	case e1.Kind == parser.ExprConst && e1.Value == 0:
		c.e.emit(machine.OpRst, machine.RegA)
		return nil
	case e2.Kind == parser.ExprConst && e2.Value < 2:
		c.e.emit(machine.OpRst, machine.RegA)
		return nil
	case e2.Kind == parser.ExprConst && e2.Value == 2:
		if err := calculateExpression(c, e1, machine.RegA, line); err != nil {
			return err
		}
		c.e.emit(machine.OpPut, machine.RegB)
		c.e.emit(machine.OpShr, machine.RegB)
		c.e.emit(machine.OpShl, machine.RegB)
		c.e.emit(machine.OpSub, machine.RegB)
		return nil
	}
	return divisionCase(c, e1, e2, true, line)
}
