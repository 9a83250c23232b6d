package parser

import "strconv"

// Parser is a recursive-descent parser for the source language, producing
// a ProcedureTable (spec.md §3). It holds one token of lookahead.
type Parser struct {
	lexer   *Lexer
	cur     Token
	peek    Token
	table   *ProcedureTable
	builder *ProcedureBuilder // the procedure currently being parsed
}

// NewParser creates a parser over the given source text.
func NewParser(input string) (*Parser, error) {
	p := &Parser{lexer: NewLexer(input), table: NewProcedureTable()}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	p.cur = p.peek
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.peek = tok
	return nil
}

func (p *Parser) expect(tt TokenType) (Token, error) {
	if p.cur.Type != tt {
		return Token{}, NewError(ErrSyntax, p.cur.Line, "expected %s but found %q", tt, p.cur.Literal)
	}
	tok := p.cur
	err := p.advance()
	return tok, err
}

// Parse runs the parser to completion and returns the resulting table.
// Grammar: procedure* main (spec.md §3 grammar).
func (p *Parser) Parse() (*ProcedureTable, error) {
	// No priming is needed: NewParser has already filled both cur and peek.
	for p.cur.Type == TokenPROCEDURE {
		if err := p.parseProcedure(); err != nil {
			return nil, err
		}
	}
	if err := p.parseMain(); err != nil {
		return nil, err
	}
	if p.cur.Type != TokenEOF {
		return nil, NewError(ErrSyntax, p.cur.Line, "unexpected trailing input %q", p.cur.Literal)
	}
	if _, err := p.table.Program(); err != nil {
		return nil, NewError(ErrSyntax, p.cur.Line, "%s", err.Error())
	}
	return p.table, nil
}

func (p *Parser) parseProcedure() error {
	line := p.cur.Line
	if _, err := p.expect(TokenPROCEDURE); err != nil {
		return err
	}
	nameTok, err := p.expect(TokenIdent)
	if err != nil {
		return err
	}
	if _, err := p.expect(TokenLParen); err != nil {
		return err
	}
	p.builder = NewProcedureBuilder(nameTok.Literal, p.table.NextOffset())
	if err := p.parseParams(); err != nil {
		return err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return err
	}
	if _, err := p.expect(TokenIS); err != nil {
		return err
	}
	if p.cur.Type != TokenIN {
		if err := p.parseDeclarations(); err != nil {
			return err
		}
	}
	if _, err := p.expect(TokenIN); err != nil {
		return err
	}
	cmds, err := p.parseCommands()
	if err != nil {
		return err
	}
	if _, err := p.expect(TokenEND); err != nil {
		return err
	}
	proc := p.builder.Finish(cmds)
	p.builder = nil
	return p.table.Add(proc, line)
}

func (p *Parser) parseMain() error {
	line := p.cur.Line
	if _, err := p.expect(TokenPROGRAM); err != nil {
		return err
	}
	p.builder = NewProcedureBuilder("PROGRAM", p.table.NextOffset())
	if _, err := p.expect(TokenIS); err != nil {
		return err
	}
	if p.cur.Type != TokenIN {
		if err := p.parseDeclarations(); err != nil {
			return err
		}
	}
	if _, err := p.expect(TokenIN); err != nil {
		return err
	}
	cmds, err := p.parseCommands()
	if err != nil {
		return err
	}
	if _, err := p.expect(TokenEND); err != nil {
		return err
	}
	proc := p.builder.Finish(cmds)
	p.builder = nil
	return p.table.Add(proc, line)
}

// parseParams parses the by-reference parameter list: (PID | T PID) ("," ...)*.
func (p *Parser) parseParams() error {
	if p.cur.Type == TokenRParen {
		return nil // no parameters
	}
	for {
		line := p.cur.Line
		if p.cur.Type == TokenT {
			if err := p.advance(); err != nil {
				return err
			}
			nameTok, err := p.expect(TokenIdent)
			if err != nil {
				return err
			}
			if err := p.builder.AddRefArray(nameTok.Literal, line); err != nil {
				return err
			}
		} else {
			nameTok, err := p.expect(TokenIdent)
			if err != nil {
				return err
			}
			if err := p.builder.AddRefScalar(nameTok.Literal, line); err != nil {
				return err
			}
		}
		if p.cur.Type != TokenComma {
			return nil
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
}

// parseDeclarations parses local scalar/array declarations: decl ("," decl)*.
func (p *Parser) parseDeclarations() error {
	for {
		line := p.cur.Line
		nameTok, err := p.expect(TokenIdent)
		if err != nil {
			return err
		}
		if p.cur.Type == TokenLBracket {
			if err := p.advance(); err != nil {
				return err
			}
			numTok, err := p.expect(TokenNumber)
			if err != nil {
				return err
			}
			if _, err := p.expect(TokenRBracket); err != nil {
				return err
			}
			n, convErr := strconv.ParseUint(numTok.Literal, 10, 64)
			if convErr != nil {
				return NewError(ErrSyntax, line, "invalid array length %q", numTok.Literal)
			}
			if err := p.builder.AddArray(nameTok.Literal, n, line); err != nil {
				return err
			}
		} else {
			if err := p.builder.AddScalar(nameTok.Literal, line); err != nil {
				return err
			}
		}
		if p.cur.Type != TokenComma {
			return nil
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
}

// parseCommands parses command* until a terminator keyword is seen.
func (p *Parser) parseCommands() ([]Command, error) {
	var cmds []Command
	for isCommandStart(p.cur.Type) {
		cmd, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func isCommandStart(tt TokenType) bool {
	switch tt {
	case TokenIdent, TokenIF, TokenWHILE, TokenREPEAT, TokenREAD, TokenWRITE:
		return true
	default:
		return false
	}
}

func (p *Parser) parseCommand() (Command, error) {
	line := p.cur.Line
	switch p.cur.Type {
	case TokenIF:
		return p.parseIf(line)
	case TokenWHILE:
		return p.parseWhile(line)
	case TokenREPEAT:
		return p.parseRepeat(line)
	case TokenREAD:
		return p.parseRead(line)
	case TokenWRITE:
		return p.parseWrite(line)
	case TokenIdent:
		return p.parseAssignOrCall(line)
	default:
		return Command{}, NewError(ErrSyntax, line, "unexpected token %q", p.cur.Literal)
	}
}

func (p *Parser) parseIf(line int) (Command, error) {
	if err := p.advance(); err != nil {
		return Command{}, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return Command{}, err
	}
	if _, err := p.expect(TokenTHEN); err != nil {
		return Command{}, err
	}
	thenCmds, err := p.parseCommands()
	if err != nil {
		return Command{}, err
	}
	if p.cur.Type == TokenELSE {
		if err := p.advance(); err != nil {
			return Command{}, err
		}
		elseCmds, err := p.parseCommands()
		if err != nil {
			return Command{}, err
		}
		if _, err := p.expect(TokenENDIF); err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdIfElse, Line: line, Cond: cond, Body: thenCmds, Else: elseCmds}, nil
	}
	if _, err := p.expect(TokenENDIF); err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdIf, Line: line, Cond: cond, Body: thenCmds}, nil
}

func (p *Parser) parseWhile(line int) (Command, error) {
	if err := p.advance(); err != nil {
		return Command{}, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return Command{}, err
	}
	if _, err := p.expect(TokenDO); err != nil {
		return Command{}, err
	}
	body, err := p.parseCommands()
	if err != nil {
		return Command{}, err
	}
	if _, err := p.expect(TokenENDWHILE); err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdWhile, Line: line, Cond: cond, Body: body}, nil
}

func (p *Parser) parseRepeat(line int) (Command, error) {
	if err := p.advance(); err != nil {
		return Command{}, err
	}
	body, err := p.parseCommands()
	if err != nil {
		return Command{}, err
	}
	if _, err := p.expect(TokenUNTIL); err != nil {
		return Command{}, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return Command{}, err
	}
	if _, err := p.expect(TokenSemi); err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdUntil, Line: line, Cond: cond, Body: body}, nil
}

func (p *Parser) parseRead(line int) (Command, error) {
	if err := p.advance(); err != nil {
		return Command{}, err
	}
	target, err := p.parseIdentifierRef()
	if err != nil {
		return Command{}, err
	}
	if _, err := p.expect(TokenSemi); err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdRead, Line: line, Target: target}, nil
}

func (p *Parser) parseWrite(line int) (Command, error) {
	if err := p.advance(); err != nil {
		return Command{}, err
	}
	val, err := p.parseValue()
	if err != nil {
		return Command{}, err
	}
	if _, err := p.expect(TokenSemi); err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdWrite, Line: line, Value: val}, nil
}

// parseAssignOrCall disambiguates `identifier := expression ;` from
// `name ( args ) ;` by peeking at the token after the identifier: a "("
// there means a call.
func (p *Parser) parseAssignOrCall(line int) (Command, error) {
	if p.peek.Type == TokenLParen {
		return p.parseCall(line)
	}
	target, err := p.parseIdentifierRef()
	if err != nil {
		return Command{}, err
	}
	if _, err := p.expect(TokenAssign); err != nil {
		return Command{}, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return Command{}, err
	}
	if _, err := p.expect(TokenSemi); err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdAssign, Line: line, Target: target, Expr: expr}, nil
}

func (p *Parser) parseCall(line int) (Command, error) {
	nameTok, err := p.expect(TokenIdent)
	if err != nil {
		return Command{}, err
	}
	if p.builder.proc.Name == nameTok.Literal {
		return Command{}, NewError(ErrRecursion, line, "procedure %s cannot call itself", nameTok.Literal)
	}
	if _, err := p.expect(TokenLParen); err != nil {
		return Command{}, err
	}
	var args []string
	for p.cur.Type != TokenRParen {
		argTok, err := p.expect(TokenIdent)
		if err != nil {
			return Command{}, err
		}
		if _, ok := p.builder.proc.Lookup(argTok.Literal); !ok {
			return Command{}, NewError(ErrUndeclaredSymbol, line, "undeclared variable %s", argTok.Literal)
		}
		args = append(args, argTok.Literal)
		if p.cur.Type == TokenComma {
			if err := p.advance(); err != nil {
				return Command{}, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return Command{}, err
	}
	if _, err := p.expect(TokenSemi); err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdCall, Line: line, CallName: nameTok.Literal, CallArgs: args}, nil
}

// parseIdentifierRef parses the shared `identifier` shape used by assign and
// read targets and by value loads: a bare name, or an indexed array element
// with a literal or scalar-variable index.
func (p *Parser) parseIdentifierRef() (Ref, error) {
	line := p.cur.Line
	nameTok, err := p.expect(TokenIdent)
	if err != nil {
		return Ref{}, err
	}
	name := nameTok.Literal

	if p.cur.Type != TokenLBracket {
		sym, ok := p.builder.proc.Lookup(name)
		if !ok || sym.Kind.IsArray() {
			return Ref{}, NewError(ErrUndeclaredSymbol, line, "undeclared variable %s", name)
		}
		return ScalarRef(name), nil
	}

	if err := p.advance(); err != nil {
		return Ref{}, err
	}
	sym, symOK := p.builder.proc.Lookup(name)
	if symOK && !sym.Kind.IsArray() {
		return Ref{}, NewError(ErrIndex, line, "undeclared array %s", name)
	}

	if p.cur.Type == TokenNumber {
		numTok := p.cur
		if err := p.advance(); err != nil {
			return Ref{}, err
		}
		if _, err := p.expect(TokenRBracket); err != nil {
			return Ref{}, err
		}
		if !symOK {
			return Ref{}, NewError(ErrIndex, line, "undeclared array %s", name)
		}
		idx, convErr := strconv.ParseUint(numTok.Literal, 10, 64)
		if convErr != nil {
			return Ref{}, NewError(ErrSyntax, line, "invalid array index %q", numTok.Literal)
		}
		return ArrayRefConst(name, idx), nil
	}

	idxTok, err := p.expect(TokenIdent)
	if err != nil {
		return Ref{}, err
	}
	idxSym, idxOK := p.builder.proc.Lookup(idxTok.Literal)
	if !idxOK || idxSym.Kind.IsArray() {
		return Ref{}, NewError(ErrUndeclaredSymbol, line, "undeclared variable %s", idxTok.Literal)
	}
	if _, err := p.expect(TokenRBracket); err != nil {
		return Ref{}, err
	}
	if !symOK {
		return Ref{}, NewError(ErrIndex, line, "undeclared array %s", name)
	}
	return ArrayRefVar(name, idxTok.Literal), nil
}

// parseValue parses `NUM | identifier` into a const or load leaf.
func (p *Parser) parseValue() (*Expr, error) {
	if p.cur.Type == TokenNumber {
		tok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, convErr := strconv.ParseUint(tok.Literal, 10, 64)
		if convErr != nil {
			return nil, NewError(ErrSyntax, tok.Line, "invalid number %q", tok.Literal)
		}
		return ConstExpr(n), nil
	}
	ref, err := p.parseIdentifierRef()
	if err != nil {
		return nil, err
	}
	return LoadExpr(ref), nil
}

var exprOps = map[TokenType]ExprKind{
	TokenPlus: ExprAdd, TokenMinus: ExprSub, TokenStar: ExprMul,
	TokenSlash: ExprDiv, TokenPercent: ExprMod,
}

// parseExpression parses `value [("+"|"-"|"*"|"/"|"%") value]` — the
// grammar allows at most one operator, no precedence climbing needed.
func (p *Parser) parseExpression() (*Expr, error) {
	left, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	kind, ok := exprOps[p.cur.Type]
	if !ok {
		return left, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return BinExpr(kind, left, right), nil
}

var condOps = map[TokenType]CondOp{
	TokenEq: CondEQ, TokenNeq: CondNE, TokenLt: CondLT,
	TokenGt: CondGT, TokenLeq: CondLE, TokenGeq: CondGE,
}

// parseCondition parses `value ("="|"!="|"<"|">"|"<="|">=") value`.
func (p *Parser) parseCondition() (*Cond, error) {
	left, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	op, ok := condOps[p.cur.Type]
	if !ok {
		return nil, NewError(ErrSyntax, p.cur.Line, "expected relational operator but found %q", p.cur.Literal)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &Cond{Op: op, Left: left, Right: right}, nil
}

// Parse is the package-level entry point: lex and parse source text into a
// ProcedureTable.
func Parse(source string) (*ProcedureTable, error) {
	p, err := NewParser(source)
	if err != nil {
		return nil, err
	}
	return p.Parse()
}
