package tools

import (
	"sort"

	"github.com/Maksym-Lukianenko123/impc/parser"
)

// RefKind indicates how a symbol is touched at one source line.
type RefKind int

const (
	RefDefinition RefKind = iota // declared (procedure, local, or parameter)
	RefRead                      // loaded as a value
	RefWrite                     // assigned or read into
	RefCallArg                   // passed as a call argument
	RefCall                      // the name is the callee of a call
)

func (r RefKind) String() string {
	switch r {
	case RefDefinition:
		return "definition"
	case RefRead:
		return "read"
	case RefWrite:
		return "write"
	case RefCallArg:
		return "call-arg"
	case RefCall:
		return "call"
	default:
		return "unknown"
	}
}

// Reference is one line where a symbol name is touched.
type Reference struct {
	Kind RefKind
	Line int
}

// SymbolXRef collects every reference to one name within one procedure's scope.
type SymbolXRef struct {
	Name       string
	Procedure  string
	Kind       parser.SymbolKind
	Definition Reference
	References []Reference
}

// ProcedureXRef collects a procedure's own cross-reference entry: every
// call site that targets it (the line and kind of each call; the calling
// procedure is not recorded), and the cross-reference of each of its own
// symbols. DeclLine is left at zero by Generator, since a parsed Procedure
// carries no declaration line.
type ProcedureXRef struct {
	Name     string
	DeclLine int
	CalledBy []Reference // line numbers, across every procedure, of calls to this one
	Symbols  map[string]*SymbolXRef
}

// Generator walks a parsed ProcedureTable and builds a full cross-reference:
// every procedure's call sites, and every symbol's read/write references
// within its own procedure.
type Generator struct {
	procs map[string]*ProcedureXRef
}

// NewGenerator creates an empty cross-reference generator.
func NewGenerator() *Generator {
	return &Generator{procs: make(map[string]*ProcedureXRef)}
}

// Generate builds the cross-reference for every procedure in table.
func (g *Generator) Generate(table *parser.ProcedureTable) map[string]*ProcedureXRef {
	g.procs = make(map[string]*ProcedureXRef)
	for _, proc := range table.Procedures() {
		px := &ProcedureXRef{Name: proc.Name, Symbols: make(map[string]*SymbolXRef)}
		for name, sym := range proc.Symbols {
			px.Symbols[name] = &SymbolXRef{
				Name: name, Procedure: proc.Name, Kind: sym.Kind,
				Definition: Reference{Kind: RefDefinition, Line: sym.DeclLine},
			}
		}
		g.procs[proc.Name] = px
	}
	for _, proc := range table.Procedures() {
		g.walkCommands(proc.Name, proc.Commands)
	}
	return g.procs
}

func (g *Generator) walkCommands(procName string, cmds []parser.Command) {
	for _, cmd := range cmds {
		g.walkCommand(procName, cmd)
	}
}

func (g *Generator) walkCommand(procName string, cmd parser.Command) {
	switch cmd.Kind {
	case parser.CmdAssign:
		g.walkExpr(procName, cmd.Expr, cmd.Line)
		g.touch(procName, cmd.Target, RefWrite, cmd.Line)
	case parser.CmdRead:
		g.touch(procName, cmd.Target, RefWrite, cmd.Line)
	case parser.CmdWrite:
		g.walkExpr(procName, cmd.Value, cmd.Line)
	case parser.CmdIf, parser.CmdIfElse:
		g.walkExpr(procName, cmd.Cond.Left, cmd.Line)
		g.walkExpr(procName, cmd.Cond.Right, cmd.Line)
		g.walkCommands(procName, cmd.Body)
		g.walkCommands(procName, cmd.Else)
	case parser.CmdWhile, parser.CmdUntil:
		g.walkExpr(procName, cmd.Cond.Left, cmd.Line)
		g.walkExpr(procName, cmd.Cond.Right, cmd.Line)
		g.walkCommands(procName, cmd.Body)
	case parser.CmdCall:
		if callee, ok := g.procs[cmd.CallName]; ok {
			callee.CalledBy = append(callee.CalledBy, Reference{Kind: RefCall, Line: cmd.Line})
		}
		for _, name := range cmd.CallArgs {
			if sym, ok := g.procs[procName].Symbols[name]; ok {
				sym.References = append(sym.References, Reference{Kind: RefCallArg, Line: cmd.Line})
			}
		}
	}
}

func (g *Generator) walkExpr(procName string, expr *parser.Expr, line int) {
	if expr == nil {
		return
	}
	switch expr.Kind {
	case parser.ExprConst:
	case parser.ExprLoad:
		g.touch(procName, expr.Ref, RefRead, line)
	default:
		g.walkExpr(procName, expr.Left, line)
		g.walkExpr(procName, expr.Right, line)
	}
}

func (g *Generator) touch(procName string, ref parser.Ref, kind RefKind, line int) {
	if sym, ok := g.procs[procName].Symbols[ref.Name]; ok {
		sym.References = append(sym.References, Reference{Kind: kind, Line: line})
	}
	if ref.Kind == parser.RefIndexName {
		if sym, ok := g.procs[procName].Symbols[ref.IndexName]; ok {
			sym.References = append(sym.References, Reference{Kind: RefRead, Line: line})
		}
	}
}

// SortedNames returns every procedure name in a cross-reference map, sorted.
func SortedNames(procs map[string]*ProcedureXRef) []string {
	names := make([]string, 0, len(procs))
	for name := range procs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
