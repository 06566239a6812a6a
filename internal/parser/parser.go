// Package parser turns one line of bfprove source into an ast.Action.
// Precedence (low to high):
//
//	= <> > < >= <=   (non-associative)
//	+ -              (left-associative)
//	* / %            (left-associative)
//	( expr )
//	name(expr?)
package parser

import (
	"math"
	"strconv"

	"github.com/tobix/bfprove/internal/ast"
	"github.com/tobix/bfprove/internal/bferrors"
	"github.com/tobix/bfprove/internal/lexer"
)

// Parse parses a single line into an ast.Action.
func Parse(line string) (ast.Action, error) {
	p := &parser{lex: lexer.New(line)}
	p.next()
	p.next()
	action, err := p.parseAction()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.EOF {
		return nil, bferrors.New(bferrors.Parse, "unexpected trailing input at column %d: %q", p.cur.Column, p.cur.Lit)
	}
	return action, nil
}

type parser struct {
	lex        *lexer.Lexer
	cur, peek  lexer.Token
}

func (p *parser) next() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

func (p *parser) parseAction() (ast.Action, error) {
	if p.cur.Type == lexer.DOT {
		cmd, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		return ast.ActionCommand{Command: cmd}, nil
	}
	// FunctionDef: IDENT ('(' IDENT? ')')? ':=' expr
	if p.cur.Type == lexer.IDENT && p.peek.Type == lexer.LPAREN {
		if def, ok, err := p.tryParseFunctionDef(); ok || err != nil {
			return ast.ActionFunctionDef{Def: def}, err
		}
	}
	if p.cur.Type == lexer.IDENT && p.peek.Type == lexer.ASSIGN {
		name := p.cur.Lit
		p.next() // consume IDENT
		p.next() // consume :=
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.ActionFunctionDef{Def: ast.FunctionDef{Name: name, Body: body}}, nil
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.ActionQuery{Expr: expr}, nil
}

// tryParseFunctionDef attempts `name(param?) := expr`. If what follows
// the parens isn't `:=`, this is actually a function-call query and
// the caller should fall through to normal expression parsing; the ok
// return distinguishes the two. On a false return both the parser's
// tokens and the lexer's position are restored to where they were, so
// the caller re-reads the same input from the function name.
func (p *parser) tryParseFunctionDef() (ast.FunctionDef, bool, error) {
	name := p.cur.Lit
	// lookahead: IDENT '(' [IDENT] ')' ':='
	save := *p
	lexSave := *p.lex
	p.next() // consume IDENT, cur = '('
	p.next() // consume '(', cur = IDENT or ')'

	var param *string
	if p.cur.Type == lexer.IDENT {
		pname := p.cur.Lit
		param = &pname
		p.next() // consume param ident, cur should be ')'
	}
	if p.cur.Type != lexer.RPAREN {
		*p = save
		*p.lex = lexSave
		return ast.FunctionDef{}, false, nil
	}
	p.next() // consume ')'
	if p.cur.Type != lexer.ASSIGN {
		*p = save
		*p.lex = lexSave
		return ast.FunctionDef{}, false, nil
	}
	p.next() // consume ':='
	body, err := p.parseExpr()
	if err != nil {
		return ast.FunctionDef{}, true, err
	}
	return ast.FunctionDef{Name: name, Parameter: param, Body: body}, true, nil
}

func (p *parser) parseCommand() (ast.Command, error) {
	p.next() // consume '.'
	if p.cur.Type != lexer.IDENT {
		return ast.Command{}, bferrors.New(bferrors.Parse, "expected a command name after '.'")
	}
	name := p.cur.Lit
	p.next()
	switch name {
	case "show":
		arg, err := p.expectIdent()
		return ast.Command{Kind: ast.CmdShow, Name: arg}, err
	case "list":
		return ast.Command{Kind: ast.CmdList}, nil
	case "delete":
		arg, err := p.expectIdent()
		return ast.Command{Kind: ast.CmdDelete, Name: arg}, err
	case "mode":
		arg, err := p.expectIdent()
		return ast.Command{Kind: ast.CmdMode, Arg: arg}, err
	case "executor":
		arg, err := p.expectIdent()
		return ast.Command{Kind: ast.CmdExecutor, Arg: arg}, err
	case "test":
		expr, err := p.parseExpr()
		return ast.Command{Kind: ast.CmdTest, Expr: expr}, err
	case "benchmark":
		return ast.Command{Kind: ast.CmdBenchmark}, nil
	default:
		return ast.Command{}, bferrors.New(bferrors.Parse, "unknown command '.%s'", name)
	}
}

func (p *parser) expectIdent() (string, error) {
	if p.cur.Type != lexer.IDENT {
		return "", bferrors.New(bferrors.Parse, "expected an identifier at column %d", p.cur.Column)
	}
	lit := p.cur.Lit
	p.next()
	return lit, nil
}

// parseExpr parses the single non-associative relational level.
func (p *parser) parseExpr() (ast.Expr, error) {
	lhs, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}
	op, ok := relOp(p.cur.Type)
	if !ok {
		return lhs, nil
	}
	p.next()
	rhs, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}
	return ast.BinaryExpr{Op: op, Left: lhs, Right: rhs}, nil
}

func relOp(t lexer.TokenType) (ast.Op, bool) {
	switch t {
	case lexer.EQ:
		return ast.Eq, true
	case lexer.NEQ:
		return ast.Neq, true
	case lexer.GT:
		return ast.Gt, true
	case lexer.LT:
		return ast.Lt, true
	case lexer.GTE:
		return ast.Gte, true
	case lexer.LTE:
		return ast.Lte, true
	default:
		return 0, false
	}
}

func (p *parser) parseAddSub() (ast.Expr, error) {
	lhs, err := p.parseMulDiv()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.PLUS || p.cur.Type == lexer.MINUS {
		op := ast.Add
		if p.cur.Type == lexer.MINUS {
			op = ast.Sub
		}
		p.next()
		rhs, err := p.parseMulDiv()
		if err != nil {
			return nil, err
		}
		lhs = ast.BinaryExpr{Op: op, Left: lhs, Right: rhs}
	}
	return lhs, nil
}

func (p *parser) parseMulDiv() (ast.Expr, error) {
	lhs, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.STAR || p.cur.Type == lexer.SLASH || p.cur.Type == lexer.PERCENT {
		var op ast.Op
		switch p.cur.Type {
		case lexer.STAR:
			op = ast.Mul
		case lexer.SLASH:
			op = ast.Div
		default:
			op = ast.Rem
		}
		p.next()
		rhs, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		lhs = ast.BinaryExpr{Op: op, Left: lhs, Right: rhs}
	}
	return lhs, nil
}

func (p *parser) parseAtom() (ast.Expr, error) {
	switch p.cur.Type {
	case lexer.NUMBER:
		lit := p.cur.Lit
		col := p.cur.Column
		p.next()
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
			return nil, bferrors.New(bferrors.Parse, "integer literal %q out of 32-bit range at column %d", lit, col)
		}
		return ast.Number{Value: int32(n)}, nil
	case lexer.LPAREN:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.cur.Type != lexer.RPAREN {
			return nil, bferrors.New(bferrors.Parse, "expected ')' at column %d", p.cur.Column)
		}
		p.next()
		return inner, nil
	case lexer.IDENT:
		name := p.cur.Lit
		p.next()
		if p.cur.Type == lexer.LPAREN {
			p.next()
			if p.cur.Type == lexer.RPAREN {
				p.next()
				return ast.FunctionCall{Name: name}, nil
			}
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if p.cur.Type != lexer.RPAREN {
				return nil, bferrors.New(bferrors.Parse, "expected ')' at column %d", p.cur.Column)
			}
			p.next()
			return ast.FunctionCall{Name: name, Arg: arg}, nil
		}
		return ast.Var{Name: name}, nil
	default:
		return nil, bferrors.New(bferrors.Parse, "unexpected token %q at column %d", p.cur.Lit, p.cur.Column)
	}
}
