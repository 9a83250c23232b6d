package codegen

import (
	"github.com/Maksym-Lukianenko123/impc/machine"
	"github.com/Maksym-Lukianenko123/impc/parser"
)

// simplifiedCond is the result of constant-folding a condition: either a
// statically known boolean, or the original condition, unchanged, to be
// emitted at runtime.
type simplifiedCond struct {
	isConst bool
	value   bool
	cond    *parser.Cond
}

// simplifyCondition constant-folds cond where possible (spec.md §4.4),
// grounded on code_generator.py's simplify_condition.
func simplifyCondition(cond *parser.Cond) simplifiedCond {
	l, r := cond.Left, cond.Right

	if l.Kind == parser.ExprConst && r.Kind == parser.ExprConst {
		return simplifiedCond{isConst: true, value: evalCond(cond.Op, l.Value, r.Value)}
	}
	if l.Kind == parser.ExprConst && l.Value == 0 {
		switch cond.Op {
		case parser.CondLE:
			return simplifiedCond{isConst: true, value: true}
		case parser.CondGT:
			return simplifiedCond{isConst: true, value: false}
		}
		return simplifiedCond{cond: cond}
	}
	if r.Kind == parser.ExprConst && r.Value == 0 {
		switch cond.Op {
		case parser.CondGE:
			return simplifiedCond{isConst: true, value: true}
		case parser.CondLT:
			return simplifiedCond{isConst: true, value: false}
		}
		return simplifiedCond{cond: cond}
	}
	if l.Equal(r) {
		switch cond.Op {
		case parser.CondGE, parser.CondLE, parser.CondEQ:
			return simplifiedCond{isConst: true, value: true}
		default:
			return simplifiedCond{isConst: true, value: false}
		}
	}
	return simplifiedCond{cond: cond}
}

func evalCond(op parser.CondOp, l, r uint64) bool {
	switch op {
	case parser.CondLE:
		return l <= r
	case parser.CondGE:
		return l >= r
	case parser.CondLT:
		return l < r
	case parser.CondGT:
		return l > r
	case parser.CondEQ:
		return l == r
	case parser.CondNE:
		return l != r
	default:
		return false
	}
}

// checkCondition emits a fall-through-on-true, jump-to-fail-on-false
// sequence: execution falls through when cond holds, and jumps to fail
// otherwise. Grounded on code_generator.py's check_condition; fail replaces
// the source's textual "finish" placeholder with a typed Label (spec.md §9).
func checkCondition(c *context, cond *parser.Cond, fail *Label, line int) error {
	l, r := cond.Left, cond.Right

	if l.Kind == parser.ExprConst && l.Value == 0 {
		switch cond.Op {
		case parser.CondGE, parser.CondEQ:
			if err := calculateExpression(c, r, machine.RegA, line); err != nil {
				return err
			}
			c.e.EmitJump(machine.OpJzero, c.e.Here()+2)
			c.e.EmitJumpToLabel(machine.OpJump, fail)
			return nil
		case parser.CondLT, parser.CondNE:
			if err := calculateExpression(c, r, machine.RegA, line); err != nil {
				return err
			}
			c.e.EmitJumpToLabel(machine.OpJzero, fail)
			return nil
		}
	}

	if r.Kind == parser.ExprConst && r.Value == 0 {
		switch cond.Op {
		case parser.CondLE, parser.CondEQ:
			if err := calculateExpression(c, l, machine.RegA, line); err != nil {
				return err
			}
			c.e.EmitJump(machine.OpJzero, c.e.Here()+2)
			c.e.EmitJumpToLabel(machine.OpJump, fail)
			return nil
		case parser.CondGT, parser.CondNE:
			if err := calculateExpression(c, l, machine.RegA, line); err != nil {
				return err
			}
			c.e.EmitJumpToLabel(machine.OpJzero, fail)
			return nil
		}
	}

	const (
		second = machine.RegB
		third  = machine.RegC
	)
	if err := calculateExpression(c, l, second, line); err != nil {
		return err
	}
	if err := calculateExpression(c, r, third, line); err != nil {
		return err
	}

	switch cond.Op {
	case parser.CondLE:
		c.e.emit(machine.OpGet, second)
		c.e.emit(machine.OpSub, third)
		c.e.EmitJump(machine.OpJzero, c.e.Here()+2)
		c.e.EmitJumpToLabel(machine.OpJump, fail)
	case parser.CondGE:
		c.e.emit(machine.OpGet, third)
		c.e.emit(machine.OpSub, second)
		c.e.EmitJump(machine.OpJzero, c.e.Here()+2)
		c.e.EmitJumpToLabel(machine.OpJump, fail)
	case parser.CondLT:
		c.e.emit(machine.OpGet, third)
		c.e.emit(machine.OpSub, second)
		c.e.EmitJumpToLabel(machine.OpJzero, fail)
	case parser.CondGT:
		c.e.emit(machine.OpGet, second)
		c.e.emit(machine.OpSub, third)
		c.e.EmitJumpToLabel(machine.OpJzero, fail)
	case parser.CondEQ:
		c.e.emit(machine.OpGet, second)
		c.e.emit(machine.OpSub, third)
		c.e.EmitJump(machine.OpJzero, c.e.Here()+2)
		c.e.EmitJumpToLabel(machine.OpJump, fail)
		c.e.emit(machine.OpGet, third)
		c.e.emit(machine.OpSub, second)
		c.e.EmitJump(machine.OpJzero, c.e.Here()+2)
		c.e.EmitJumpToLabel(machine.OpJump, fail)
	case parser.CondNE:
		c.e.emit(machine.OpGet, second)
		c.e.emit(machine.OpSub, third)
		c.e.EmitJump(machine.OpJzero, c.e.Here()+2)
		c.e.EmitJump(machine.OpJump, c.e.Here()+3)
		c.e.emit(machine.OpGet, third)
		c.e.emit(machine.OpSub, second)
		c.e.EmitJumpToLabel(machine.OpJzero, fail)
	}
	return nil
}
