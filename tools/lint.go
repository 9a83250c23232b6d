package tools

import (
	"fmt"

	"github.com/Maksym-Lukianenko123/impc/parser"
)

// LintLevel is the severity of a lint finding.
type LintLevel int

const (
	LintError   LintLevel = iota // a condition codegen would also reject
	LintWarning                  // a non-fatal correctness concern
	LintInfo                     // a style or dead-code observation
)

func (l LintLevel) String() string {
	switch l {
	case LintError:
		return "error"
	case LintWarning:
		return "warning"
	case LintInfo:
		return "info"
	default:
		return "unknown"
	}
}

// LintIssue is a single finding, scoped to the procedure and source line
// it was raised against.
type LintIssue struct {
	Level     LintLevel
	Procedure string
	Line      int
	Message   string
	Code      string // e.g. "UNINITIALIZED", "DEAD_BRANCH", "UNUSED_PARAM"
}

func (i *LintIssue) String() string {
	return fmt.Sprintf("%s:%d: %s: %s [%s]", i.Procedure, i.Line, i.Level, i.Message, i.Code)
}

// LintOptions selects which checks Lint runs.
type LintOptions struct {
	CheckUninitialized bool // re-run the use-before-set analysis statically
	CheckDeadBranches  bool // flag if/while/until conditions that fold to a constant
	CheckUnusedParams  bool // flag reference parameters never read or written
}

// DefaultLintOptions enables every check.
func DefaultLintOptions() *LintOptions {
	return &LintOptions{CheckUninitialized: true, CheckDeadBranches: true, CheckUnusedParams: true}
}

// Linter re-runs the compiler's initialization analysis and a handful of
// other static checks against a parsed program in a single pass, without
// invoking codegen, reproducing the use-before-set rule (fatal outside a
// loop, a warning inside one) as lint severities instead of a codegen
// abort.
//
// Lint and codegen.Generate read and write the same Symbol.Initialized
// flags. Lint clears the flags of each procedure's local scalars before
// walking it and leaves them set afterwards, so codegen.Generate run on a
// table that has been through Lint sees those scalars already initialized.
type Linter struct {
	options *LintOptions
	issues  []*LintIssue

	proc      *parser.Procedure
	loopDepth int
	usedParam map[string]bool
}

// NewLinter creates a Linter with the given options (DefaultLintOptions if nil).
func NewLinter(options *LintOptions) *Linter {
	if options == nil {
		options = DefaultLintOptions()
	}
	return &Linter{options: options}
}

// Lint analyzes every procedure in table and returns all findings, in
// declaration order.
func (l *Linter) Lint(table *parser.ProcedureTable) []*LintIssue {
	l.issues = nil
	for _, proc := range table.Procedures() {
		l.lintProcedure(proc)
	}
	return l.issues
}

func (l *Linter) lintProcedure(proc *parser.Procedure) {
	l.proc = proc
	l.loopDepth = 0
	l.usedParam = make(map[string]bool)
	for _, sym := range proc.Symbols {
		if sym.Kind == parser.KindScalar {
			sym.Initialized = false
		}
	}

	l.lintCommands(proc.Commands)

	if l.options.CheckUnusedParams {
		for _, name := range proc.Params {
			if !l.usedParam[name] {
				l.issues = append(l.issues, &LintIssue{
					Level: LintInfo, Procedure: proc.Name, Line: proc.Symbols[name].DeclLine,
					Message: fmt.Sprintf("parameter %s is never used", name),
					Code:    "UNUSED_PARAM",
				})
			}
		}
	}
}

func (l *Linter) lintCommands(cmds []parser.Command) {
	for _, cmd := range cmds {
		l.lintCommand(cmd)
	}
}

func (l *Linter) lintCommand(cmd parser.Command) {
	switch cmd.Kind {
	case parser.CmdAssign:
		l.lintExpr(cmd.Expr, cmd.Line)
		l.markInitialized(cmd.Target)
		l.touchRef(cmd.Target)
	case parser.CmdRead:
		l.markInitialized(cmd.Target)
		l.touchRef(cmd.Target)
	case parser.CmdWrite:
		l.lintExpr(cmd.Value, cmd.Line)
	case parser.CmdIf:
		l.lintCond(cmd.Cond, cmd.Line, "if")
		l.lintCommands(cmd.Body)
	case parser.CmdIfElse:
		l.lintCond(cmd.Cond, cmd.Line, "if")
		l.lintCommands(cmd.Body)
		l.lintCommands(cmd.Else)
	case parser.CmdWhile:
		l.lintCond(cmd.Cond, cmd.Line, "while")
		l.loopDepth++
		l.lintCommands(cmd.Body)
		l.loopDepth--
	case parser.CmdUntil:
		l.loopDepth++
		l.lintCommands(cmd.Body)
		l.loopDepth--
		l.lintCond(cmd.Cond, cmd.Line, "until")
	case parser.CmdCall:
		for _, name := range cmd.CallArgs {
			l.usedParam[name] = true
		}
	}
}

func (l *Linter) lintExpr(expr *parser.Expr, line int) {
	if expr == nil {
		return
	}
	switch expr.Kind {
	case parser.ExprConst:
	case parser.ExprLoad:
		l.touchRef(expr.Ref)
		l.checkUninitialized(expr.Ref, line)
	default:
		l.lintExpr(expr.Left, line)
		l.lintExpr(expr.Right, line)
	}
}

func (l *Linter) lintCond(cond *parser.Cond, line int, shape string) {
	l.lintExpr(cond.Left, line)
	l.lintExpr(cond.Right, line)

	if !l.options.CheckDeadBranches {
		return
	}
	if cond.Left.Kind != parser.ExprConst || cond.Right.Kind != parser.ExprConst {
		return
	}
	value := evalConst(cond.Op, cond.Left.Value, cond.Right.Value)
	l.issues = append(l.issues, &LintIssue{
		Level: LintInfo, Procedure: l.proc.Name, Line: line,
		Message: fmt.Sprintf("%s condition always evaluates to %t", shape, value),
		Code:    "DEAD_BRANCH",
	})
}

func evalConst(op parser.CondOp, l, r uint64) bool {
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

// touchRef marks a referenced name as used, for the unused-parameter check.
func (l *Linter) touchRef(ref parser.Ref) {
	l.usedParam[ref.Name] = true
	if ref.Kind == parser.RefIndexName {
		l.usedParam[ref.IndexName] = true
	}
}

// checkUninitialized reproduces spec.md §7's rule for local scalars:
// reference parameters and array elements are never tracked, matching
// codegen's loadValue.
func (l *Linter) checkUninitialized(ref parser.Ref, line int) {
	if !l.options.CheckUninitialized {
		return
	}
	if ref.Kind != parser.RefName {
		return
	}
	sym, ok := l.proc.Lookup(ref.Name)
	if !ok || sym.Kind != parser.KindScalar || sym.Initialized {
		return
	}

	if l.loopDepth == 0 {
		l.issues = append(l.issues, &LintIssue{
			Level: LintError, Procedure: l.proc.Name, Line: line,
			Message: fmt.Sprintf("%s may be used before it is set", ref.Name),
			Code:    "UNINITIALIZED",
		})
	} else {
		l.issues = append(l.issues, &LintIssue{
			Level: LintWarning, Procedure: l.proc.Name, Line: line,
			Message: fmt.Sprintf("%s may be used before it is set", ref.Name),
			Code:    "UNINITIALIZED",
		})
	}
}

// markInitialized records that ref's underlying scalar now holds a value,
// mirroring codegen's loadAddress(markInit=true) for CmdAssign/CmdRead targets.
func (l *Linter) markInitialized(ref parser.Ref) {
	if ref.Kind != parser.RefName {
		return
	}
	if sym, ok := l.proc.Lookup(ref.Name); ok {
		sym.Initialized = true
	}
}
