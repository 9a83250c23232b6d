package codegen

import (
	"github.com/Maksym-Lukianenko123/impc/machine"
	"github.com/Maksym-Lukianenko123/impc/parser"
)

// lowerCommands lowers a command sequence in source order (spec.md §5's
// determinism requirement).
func lowerCommands(c *context, cmds []parser.Command) error {
	for _, cmd := range cmds {
		if err := lowerCommand(c, cmd); err != nil {
			return err
		}
	}
	return nil
}

func lowerCommand(c *context, cmd parser.Command) error {
	switch cmd.Kind {
	case parser.CmdAssign:
		return lowerAssign(c, cmd)
	case parser.CmdRead:
		return lowerRead(c, cmd)
	case parser.CmdWrite:
		return lowerWrite(c, cmd)
	case parser.CmdIf:
		return lowerIf(c, cmd)
	case parser.CmdIfElse:
		return lowerIfElse(c, cmd)
	case parser.CmdWhile:
		return lowerWhile(c, cmd)
	case parser.CmdUntil:
		return lowerUntil(c, cmd)
	case parser.CmdCall:
		return lowerCall(c, cmd)
	default:
		return parser.NewError(parser.ErrSyntax, cmd.Line, "unknown command")
	}
}

// lowerAssign: compute expr into a, stash in d, compute the target address,
// restore a, STORE (spec.md §4.3's assign).
func lowerAssign(c *context, cmd parser.Command) error {
	if err := calculateExpression(c, cmd.Expr, machine.RegA, cmd.Line); err != nil {
		return err
	}
	c.e.emit(machine.OpPut, machine.RegD)
	if err := loadAddress(c, cmd.Target, regAddress, true, cmd.Line); err != nil {
		return err
	}
	c.e.emit(machine.OpGet, machine.RegD)
	c.e.emit(machine.OpStore, regAddress)
	return nil
}

// lowerRead: compute the target's address, READ, STORE (spec.md §4.3's read).
func lowerRead(c *context, cmd parser.Command) error {
	if err := loadAddress(c, cmd.Target, regAddress, true, cmd.Line); err != nil {
		return err
	}
	c.e.emit(machine.OpRead, 0)
	c.e.emit(machine.OpStore, regAddress)
	return nil
}

// lowerWrite: materialize the value into a, WRITE.
func lowerWrite(c *context, cmd parser.Command) error {
	if err := calculateExpression(c, cmd.Value, machine.RegA, cmd.Line); err != nil {
		return err
	}
	c.e.emit(machine.OpWrite, 0)
	return nil
}

// lowerIf implements spec.md §4.3's if: fold when possible, else emit the
// condition check followed by the body, patching the fail label to the
// instruction after the body.
func lowerIf(c *context, cmd parser.Command) error {
	simplified := simplifyCondition(cmd.Cond)
	if simplified.isConst {
		if simplified.value {
			return lowerCommands(c, cmd.Body)
		}
		return nil
	}
	fail := c.e.NewLabel()
	if err := checkCondition(c, cmd.Cond, fail, cmd.Line); err != nil {
		return err
	}
	if err := lowerCommands(c, cmd.Body); err != nil {
		return err
	}
	c.e.Bind(fail)
	return nil
}

// lowerIfElse implements spec.md §4.3's ifelse.
func lowerIfElse(c *context, cmd parser.Command) error {
	simplified := simplifyCondition(cmd.Cond)
	if simplified.isConst {
		if simplified.value {
			return lowerCommands(c, cmd.Body)
		}
		return lowerCommands(c, cmd.Else)
	}
	elseLabel := c.e.NewLabel()
	finish := c.e.NewLabel()
	if err := checkCondition(c, cmd.Cond, elseLabel, cmd.Line); err != nil {
		return err
	}
	if err := lowerCommands(c, cmd.Body); err != nil {
		return err
	}
	c.e.EmitJumpToLabel(machine.OpJump, finish)
	c.e.Bind(elseLabel)
	if err := lowerCommands(c, cmd.Else); err != nil {
		return err
	}
	c.e.Bind(finish)
	return nil
}

// lowerWhile implements spec.md §4.3's while.
func lowerWhile(c *context, cmd parser.Command) error {
	simplified := simplifyCondition(cmd.Cond)
	if simplified.isConst {
		if !simplified.value {
			return nil
		}
		loopStart := c.e.Here()
		c.loopDepth++
		if err := lowerCommands(c, cmd.Body); err != nil {
			c.loopDepth--
			return err
		}
		c.loopDepth--
		c.e.EmitJump(machine.OpJump, loopStart)
		return nil
	}

	condStart := c.e.Here()
	fail := c.e.NewLabel()
	if err := checkCondition(c, cmd.Cond, fail, cmd.Line); err != nil {
		return err
	}
	c.loopDepth++
	if err := lowerCommands(c, cmd.Body); err != nil {
		c.loopDepth--
		return err
	}
	c.loopDepth--
	c.e.EmitJump(machine.OpJump, condStart)
	c.e.Bind(fail)
	return nil
}

// lowerUntil implements spec.md §4.3's until: the body runs at least once,
// and a failing condition jumps back to loopStart.
func lowerUntil(c *context, cmd parser.Command) error {
	loopStart := c.e.Here()
	c.loopDepth++
	if err := lowerCommands(c, cmd.Body); err != nil {
		c.loopDepth--
		return err
	}
	c.loopDepth--
	again := c.e.NewLabel()
	if err := checkCondition(c, cmd.Cond, again, cmd.Line); err != nil {
		return err
	}
	c.e.BindTo(again, loopStart)
	return nil
}

// lowerCall implements spec.md §4.3's proc_call: the calling convention.
func lowerCall(c *context, cmd parser.Command) error {
	callee, ok := c.table.Get(cmd.CallName)
	if !ok {
		return parser.NewError(parser.ErrUndeclaredSymbol, cmd.Line, "undeclared procedure %s", cmd.CallName)
	}
	if len(cmd.CallArgs) != callee.Arity() {
		return parser.NewError(parser.ErrArity, cmd.Line,
			"procedure %s takes %d arguments, %d given", cmd.CallName, callee.Arity(), len(cmd.CallArgs))
	}

	for i, argName := range cmd.CallArgs {
		param := callee.ParamSymbol(i)
		argSym, ok := c.proc.Lookup(argName)
		if !ok {
			return parser.NewError(parser.ErrUndeclaredSymbol, cmd.Line, "undeclared variable %s", argName)
		}
		if argSym.Kind.IsArray() != param.Kind.IsArray() {
			return parser.NewError(parser.ErrType, cmd.Line,
				"argument %s has the wrong kind for parameter %s of %s", argName, param.Name, cmd.CallName)
		}

		slotAddr := callee.Offset + param.Offset
		genConst(c.e, slotAddr, machine.RegE)

		var argRef parser.Ref
		if argSym.Kind.IsArray() {
			argRef = parser.ArrayRefConst(argName, 0)
		} else {
			argRef = parser.ScalarRef(argName)
		}
		if err := loadAddress(c, argRef, machine.RegA, false, cmd.Line); err != nil {
			return err
		}
		c.e.emit(machine.OpStore, machine.RegE)

		if !argSym.Kind.IsArray() && param.Initialized {
			argSym.Initialized = true
		}
	}

	genConst(c.e, 4, machine.RegB)
	genConst(c.e, callee.Offset, machine.RegA)
	c.e.emit(machine.OpPut, machine.RegE)
	c.e.emit(machine.OpStrk, machine.RegA)
	c.e.emit(machine.OpAdd, machine.RegB)
	c.e.emit(machine.OpStore, machine.RegE)

	c.e.EmitJump(machine.OpJump, callee.FirstLine)
	return nil
}
