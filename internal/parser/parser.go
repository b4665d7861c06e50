// Package parser builds an AST from a lex tree, performing the high-level
// desugarings (for/with/comprehension/compound-assignment) and closure
// capture analysis described by the language design.
package parser

import (
	"fmt"

	"github.com/wings-lang/wings/internal/ast"
	"github.com/wings-lang/wings/internal/diag"
	"github.com/wings-lang/wings/internal/lexer"
)

// Parser walks a lex tree and builds an *ast.Program.
type Parser struct {
	tree *lexer.Tree
	errs diag.List

	// loopDepth counts lexically enclosing loops within the current
	// function, so break/continue can be validated; it resets to zero
	// across def/class boundaries (a break may not cross into an
	// enclosing function's loop).
	loopDepth int

	// current statement's token cursor, set by parseStatementTokens.
	toks []lexer.Token
	pos  int

	// gensym produces fresh names for desugared temporaries (for/with/
	// comprehension lowering); counter-based so names never collide with
	// user identifiers (they carry a character the lexer never produces
	// in a Word token).
	gensymN int
}

func (p *Parser) gensym(prefix string) string {
	p.gensymN++
	return fmt.Sprintf("$%s%d", prefix, p.gensymN)
}

// Parse builds the AST for src. It returns a partial program alongside any
// diagnosed errors.
func Parse(src string) (*ast.Program, *diag.List) {
	tree, lexErrs := lexer.Lex(src)
	p := &Parser{tree: tree}
	for _, e := range lexErrs.Errors {
		p.errs.Add(e)
	}
	prog := &ast.Program{Statements: p.parseBody(tree.Root.Children)}
	resolveClosures(prog)
	return prog, &p.errs
}

func (p *Parser) errorf(pos diag.Pos, format string, args ...any) {
	line := p.tree.Line(pos.Line)
	p.errs.Addf(pos, line, "", format, args...)
}

// --- token cursor over the current statement's flat token list ---

func (p *Parser) curPos() diag.Pos {
	if p.pos < len(p.toks) {
		return p.toks[p.pos].Pos
	}
	if len(p.toks) > 0 {
		return p.toks[len(p.toks)-1].Pos
	}
	return diag.Pos{Line: 1, Column: 1}
}

func (p *Parser) cur() lexer.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return lexer.Token{Kind: lexer.EOF, Pos: p.curPos()}
}

func (p *Parser) peek(n int) lexer.Token {
	idx := p.pos + n
	if idx < len(p.toks) {
		return p.toks[idx]
	}
	return lexer.Token{Kind: lexer.EOF, Pos: p.curPos()}
}

func (p *Parser) atEOF() bool { return p.pos >= len(p.toks) }

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) isSym(s string) bool {
	t := p.cur()
	return t.Kind == lexer.Symbol && t.Literal == s
}

func (p *Parser) isKw(k string) bool {
	t := p.cur()
	return t.Kind == lexer.Keyword && t.Literal == k
}

func (p *Parser) expectSym(s string) bool {
	if p.isSym(s) {
		p.advance()
		return true
	}
	p.errorf(p.curPos(), "expected %q, got %q", s, p.cur().Literal)
	return false
}

func (p *Parser) expectKw(k string) bool {
	if p.isKw(k) {
		p.advance()
		return true
	}
	p.errorf(p.curPos(), "expected keyword %q, got %q", k, p.cur().Literal)
	return false
}

func (p *Parser) expectWord() (string, bool) {
	t := p.cur()
	if t.Kind == lexer.Word {
		p.advance()
		return t.Literal, true
	}
	p.errorf(p.curPos(), "expected identifier, got %q", t.Literal)
	return "", false
}

func (p *Parser) newIdent(name string, pos diag.Pos) *ast.Identifier {
	return &ast.Identifier{Base: ast.Base{P: pos}, Name: name}
}

func bp(pos diag.Pos) ast.Base { return ast.Base{P: pos} }
