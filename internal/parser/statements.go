package parser

import (
	"github.com/wings-lang/wings/internal/ast"
	"github.com/wings-lang/wings/internal/diag"
	"github.com/wings-lang/wings/internal/lexer"
)

// parseBody parses a sibling list of lex-tree blocks into a statement list,
// the unit used for module bodies, function bodies, and every compound
// statement's suite.
func (p *Parser) parseBody(blocks []*lexer.Block) []ast.Stmt {
	var out []ast.Stmt
	i := 0
	for i < len(blocks) {
		stmt, consumed := p.parseBlockStatement(blocks, i)
		if stmt != nil {
			out = append(out, stmt)
		}
		i += consumed
	}
	return out
}

// parseBlockStatement parses the statement headed by blocks[i], consuming
// as many following sibling blocks as needed (elif/else chains, except/
// finally clauses) and returns how many blocks were consumed.
func (p *Parser) parseBlockStatement(blocks []*lexer.Block, i int) (ast.Stmt, int) {
	b := blocks[i]
	if len(b.Tokens) == 0 {
		return nil, 1
	}
	savedToks, savedPos := p.toks, p.pos
	p.toks, p.pos = b.Tokens, 0
	defer func() { p.toks, p.pos = savedToks, savedPos }()

	head := p.cur()
	if head.Kind == lexer.Keyword {
		switch head.Literal {
		case "if":
			return p.parseIf(b, blocks, i)
		case "while":
			return p.parseWhile(b, blocks, i)
		case "for":
			return p.parseFor(b, blocks, i)
		case "try":
			return p.parseTry(b, blocks, i)
		case "def":
			return p.parseFunctionDef(b), 1
		case "class":
			return p.parseClassDef(b), 1
		case "with":
			return p.parseWith(b), 1
		case "pass":
			p.advance()
			return &ast.PassStmt{Base: bp(head.Pos)}, 1
		case "break":
			p.advance()
			if p.loopDepth == 0 {
				p.errorf(head.Pos, "'break' outside loop")
			}
			return &ast.BreakStmt{Base: bp(head.Pos)}, 1
		case "continue":
			p.advance()
			if p.loopDepth == 0 {
				p.errorf(head.Pos, "'continue' not properly in loop")
			}
			return &ast.ContinueStmt{Base: bp(head.Pos)}, 1
		case "return":
			p.advance()
			var v ast.Expr
			if !p.atEOF() {
				v = p.parseExprList()
			}
			return &ast.ReturnStmt{Base: bp(head.Pos), Value: v}, 1
		case "raise":
			p.advance()
			var v ast.Expr
			if !p.atEOF() {
				v = p.parseExprList()
			}
			return &ast.RaiseStmt{Base: bp(head.Pos), Value: v}, 1
		case "global":
			p.advance()
			return &ast.GlobalStmt{Base: bp(head.Pos), Names: p.parseNameList()}, 1
		case "nonlocal":
			p.advance()
			return &ast.NonlocalStmt{Base: bp(head.Pos), Names: p.parseNameList()}, 1
		case "del":
			p.advance()
			var targets []ast.Expr
			targets = append(targets, p.parsePostfix(p.parsePrimary()))
			for p.isSym(",") {
				p.advance()
				if p.atEOF() {
					break
				}
				targets = append(targets, p.parsePostfix(p.parsePrimary()))
			}
			return &ast.DelStmt{Base: bp(head.Pos), Targets: targets}, 1
		case "import":
			return p.parseImport(head.Pos), 1
		case "from":
			return p.parseImportFrom(head.Pos), 1
		case "elif", "else", "except", "finally":
			p.errorf(head.Pos, "%q without matching preceding block", head.Literal)
			return nil, 1
		}
	}

	return p.parseSimpleStatement(), 1
}

func (p *Parser) parseNameList() []string {
	var names []string
	for {
		name, ok := p.expectWord()
		if !ok {
			break
		}
		names = append(names, name)
		if p.isSym(",") {
			p.advance()
			continue
		}
		break
	}
	return names
}

// parseSimpleStatement parses an expression statement, assignment, or
// augmented assignment from the current token cursor.
func (p *Parser) parseSimpleStatement() ast.Stmt {
	pos := p.curPos()
	lhs := p.parseExprList()

	if p.isSym("=") {
		// Chained assignment `a = b = value` binds every target, left to
		// right, to the single value evaluated on the right of the last
		// "=".
		targets := []ast.Expr{lhs}
		var rhs ast.Expr
		for p.isSym("=") {
			p.advance()
			rhs = p.parseExprList()
			if !p.isSym("=") {
				break
			}
			targets = append(targets, rhs)
		}
		if len(targets) == 1 {
			return &ast.AssignStmt{Base: bp(pos), Target: lhs, Value: rhs}
		}
		tmp := p.newIdent(p.gensym("chain"), pos)
		stmts := []ast.Stmt{&ast.AssignStmt{Base: bp(pos), Target: tmp, Value: rhs}}
		for _, t := range targets {
			stmts = append(stmts, &ast.AssignStmt{Base: bp(pos), Target: t, Value: tmp})
		}
		return &ast.SeqStmt{Base: bp(pos), Statements: stmts}
	}

	if op, ok := p.augAssignOp(); ok {
		p.advance()
		rhs := p.parseExprList()
		value := &ast.BinaryExpr{Base: bp(pos), Op: op, Left: lhs, Right: rhs}
		return &ast.AssignStmt{Base: bp(pos), Target: lhs, Value: value}
	}

	return &ast.ExprStmt{Base: bp(pos), X: lhs}
}

func (p *Parser) augAssignOp() (string, bool) {
	t := p.cur()
	if t.Kind != lexer.Symbol {
		return "", false
	}
	switch t.Literal {
	case "+=":
		return "+", true
	case "-=":
		return "-", true
	case "*=":
		return "*", true
	case "/=":
		return "/", true
	case "//=":
		return "//", true
	case "%=":
		return "%", true
	case "**=":
		return "**", true
	case "&=":
		return "&", true
	case "|=":
		return "|", true
	case "^=":
		return "^", true
	case "<<=":
		return "<<", true
	case ">>=":
		return ">>", true
	}
	return "", false
}

// parseExprList parses a comma-separated expression list, yielding either a
// single expression or a *ast.TupleExpr when more than one element is
// present (the parenthesis-free tuple form used by `a, b = ...` and
// `return a, b`).
func (p *Parser) parseExprList() ast.Expr {
	pos := p.curPos()
	first := p.parseTernary()
	if !p.isSym(",") {
		return first
	}
	elems := []ast.Expr{first}
	for p.isSym(",") {
		p.advance()
		if p.atEOF() || p.isSym(")") || p.isSym("]") || p.isSym("}") || p.isSym(":") {
			break
		}
		elems = append(elems, p.parseTernary())
	}
	return &ast.TupleExpr{Base: bp(pos), Elements: elems}
}

func (p *Parser) parseImport(pos diag.Pos) ast.Stmt {
	p.advance() // import
	mod, _ := p.expectWord()
	for p.isSym(".") {
		p.advance()
		next, _ := p.expectWord()
		mod = mod + "." + next
	}
	alias := ""
	if p.isKw("as") {
		p.advance()
		alias, _ = p.expectWord()
	}
	return &ast.ImportStmt{Base: bp(pos), Module: mod, Alias: alias}
}

func (p *Parser) parseImportFrom(pos diag.Pos) ast.Stmt {
	p.advance() // from
	mod, _ := p.expectWord()
	for p.isSym(".") {
		p.advance()
		next, _ := p.expectWord()
		mod = mod + "." + next
	}
	p.expectKw("import")

	if p.isSym("*") {
		p.advance()
		return &ast.ImportFromStmt{Base: bp(pos), Module: mod, Names: []ast.ImportedName{{Name: "*"}}}
	}

	grouped := false
	if p.isSym("(") {
		grouped = true
		p.advance()
	}

	var names []ast.ImportedName
	for {
		name, ok := p.expectWord()
		if !ok {
			break
		}
		alias := ""
		if p.isKw("as") {
			p.advance()
			alias, _ = p.expectWord()
		}
		names = append(names, ast.ImportedName{Name: name, Alias: alias})
		if p.isSym(",") {
			p.advance()
			continue
		}
		break
	}
	if grouped {
		p.expectSym(")")
	}
	return &ast.ImportFromStmt{Base: bp(pos), Module: mod, Names: names}
}

func (p *Parser) parseIf(b *lexer.Block, blocks []*lexer.Block, i int) (ast.Stmt, int) {
	pos := p.curPos()
	p.advance() // if/elif
	cond := p.parseExprList()
	p.expectSym(":")
	then := p.parseBody(b.Children)

	consumed := 1
	var elseBody []ast.Stmt
	if i+1 < len(blocks) {
		nb := blocks[i+1]
		if len(nb.Tokens) > 0 && nb.Tokens[0].Kind == lexer.Keyword {
			switch nb.Tokens[0].Literal {
			case "elif":
				savedToks, savedPos := p.toks, p.pos
				p.toks, p.pos = nb.Tokens, 0
				elifStmt, used := p.parseIf(nb, blocks, i+1)
				p.toks, p.pos = savedToks, savedPos
				elseBody = []ast.Stmt{elifStmt}
				consumed += used
			case "else":
				consumed++
				savedToks, savedPos := p.toks, p.pos
				p.toks, p.pos = nb.Tokens, 0
				p.advance() // else
				p.expectSym(":")
				p.toks, p.pos = savedToks, savedPos
				elseBody = p.parseBody(nb.Children)
			}
		}
	}

	return &ast.IfStmt{Base: bp(pos), Cond: cond, Then: then, Else: elseBody}, consumed
}

func (p *Parser) parseWhile(b *lexer.Block, blocks []*lexer.Block, i int) (ast.Stmt, int) {
	pos := p.curPos()
	p.advance() // while
	cond := p.parseExprList()
	p.expectSym(":")
	p.loopDepth++
	body := p.parseBody(b.Children)
	p.loopDepth--

	consumed := 1
	var elseBody []ast.Stmt
	if i+1 < len(blocks) {
		nb := blocks[i+1]
		if len(nb.Tokens) > 0 && nb.Tokens[0].Kind == lexer.Keyword && nb.Tokens[0].Literal == "else" {
			consumed++
			savedToks, savedPos := p.toks, p.pos
			p.toks, p.pos = nb.Tokens, 0
			p.advance()
			p.expectSym(":")
			p.toks, p.pos = savedToks, savedPos
			elseBody = p.parseBody(nb.Children)
		}
	}

	return &ast.WhileStmt{Base: bp(pos), Cond: cond, Body: body, Else: elseBody}, consumed
}

// parseFor lowers `for vars in E: body [else: e]` into iterator calls: bind
// E.__iter__() to a fresh temporary, then a `while True` loop whose body
// is `try: vars = tmp.__next__() except StopIteration: ...` followed by
// body. The else body, when present, rides inside the StopIteration
// handler (see lowerFor), which is exactly the exhausted-without-break
// path for/else promises.
func (p *Parser) parseFor(b *lexer.Block, blocks []*lexer.Block, i int) (ast.Stmt, int) {
	pos := p.curPos()
	p.advance() // for
	vars := p.parseTargetList()
	p.expectKw("in")
	iterExpr := p.parseExprList()
	p.expectSym(":")
	p.loopDepth++
	body := p.parseBody(b.Children)
	p.loopDepth--

	consumed := 1
	var elseBody []ast.Stmt
	if i+1 < len(blocks) {
		nb := blocks[i+1]
		if len(nb.Tokens) > 0 && nb.Tokens[0].Kind == lexer.Keyword && nb.Tokens[0].Literal == "else" {
			consumed++
			savedToks, savedPos := p.toks, p.pos
			p.toks, p.pos = nb.Tokens, 0
			p.advance()
			p.expectSym(":")
			p.toks, p.pos = savedToks, savedPos
			elseBody = p.parseBody(nb.Children)
		}
	}

	return p.lowerFor(pos, vars, iterExpr, body, elseBody), consumed
}

// parseTargetList parses the `vars` part of a for-loop header: one or more
// comma-separated assignable targets, yielding a *ast.TupleExpr when more
// than one is present.
func (p *Parser) parseTargetList() ast.Expr {
	pos := p.curPos()
	first := p.parsePostfix(p.parsePrimary())
	if !p.isSym(",") {
		return first
	}
	elems := []ast.Expr{first}
	for p.isSym(",") {
		p.advance()
		if p.isKw("in") {
			break
		}
		elems = append(elems, p.parsePostfix(p.parsePrimary()))
	}
	return &ast.TupleExpr{Base: bp(pos), Elements: elems}
}

func (p *Parser) parseWith(b *lexer.Block) ast.Stmt {
	pos := p.curPos()
	p.advance() // with
	e := p.parseTernary()
	var as ast.Expr
	if p.isKw("as") {
		p.advance()
		as = p.parsePostfix(p.parsePrimary())
	}
	p.expectSym(":")
	body := p.parseBody(b.Children)
	return p.lowerWith(pos, e, as, body)
}

func (p *Parser) parseTry(b *lexer.Block, blocks []*lexer.Block, i int) (ast.Stmt, int) {
	pos := p.curPos()
	p.advance() // try
	p.expectSym(":")
	body := p.parseBody(b.Children)

	consumed := 1
	var excepts []ast.ExceptClause
	var finallyBody []ast.Stmt

	for i+consumed < len(blocks) {
		nb := blocks[i+consumed]
		if len(nb.Tokens) == 0 || nb.Tokens[0].Kind != lexer.Keyword {
			break
		}
		kw := nb.Tokens[0].Literal
		if kw == "except" {
			savedToks, savedPos := p.toks, p.pos
			p.toks, p.pos = nb.Tokens, 0
			p.advance() // except
			var types []ast.Expr
			name := ""
			if !p.isSym(":") {
				types = append(types, p.parseTernary())
				for p.isSym(",") {
					p.advance()
					types = append(types, p.parseTernary())
				}
				if p.isKw("as") {
					p.advance()
					name, _ = p.expectWord()
				}
			}
			p.expectSym(":")
			p.toks, p.pos = savedToks, savedPos
			excepts = append(excepts, ast.ExceptClause{Types: types, Name: name, Body: p.parseBody(nb.Children)})
			consumed++
			continue
		}
		if kw == "finally" {
			savedToks, savedPos := p.toks, p.pos
			p.toks, p.pos = nb.Tokens, 0
			p.advance()
			p.expectSym(":")
			p.toks, p.pos = savedToks, savedPos
			finallyBody = p.parseBody(nb.Children)
			consumed++
			break
		}
		break
	}

	return &ast.TryStmt{Base: bp(pos), Body: body, Excepts: excepts, Finally: finallyBody}, consumed
}

func (p *Parser) parseFunctionDef(b *lexer.Block) ast.Stmt {
	pos := p.curPos()
	p.advance() // def
	name, _ := p.expectWord()
	params := p.parseParamList()
	if p.isSym("->") {
		p.advance()
		p.parseTernary() // return-type annotation, accepted and discarded
	}
	p.expectSym(":")
	savedLoopDepth := p.loopDepth
	p.loopDepth = 0
	body := p.parseBody(b.Children)
	p.loopDepth = savedLoopDepth
	return &ast.FunctionDef{Base: bp(pos), Name: name, Params: params, Body: body}
}

func (p *Parser) parseParamList() []ast.Param {
	p.expectSym("(")
	var params []ast.Param
	sawDefault := false
	sawStar := false
	sawStarStar := false
	for !p.isSym(")") && !p.atEOF() {
		kind := ast.ParamPositional
		if p.isSym("*") {
			if sawStar {
				p.errorf(p.curPos(), "only one *args parameter is allowed")
			}
			p.advance()
			kind = ast.ParamStar
			sawStar = true
		} else if p.isSym("**") {
			if sawStarStar {
				p.errorf(p.curPos(), "only one **kwargs parameter is allowed")
			}
			p.advance()
			kind = ast.ParamStarStar
			sawStarStar = true
		}
		name, _ := p.expectWord()
		if p.isSym(":") {
			p.advance()
			p.parseTernary() // type annotation, accepted and discarded
		}
		var def ast.Expr
		if p.isSym("=") {
			p.advance()
			def = p.parseTernary()
			if kind == ast.ParamPositional {
				sawDefault = true
			}
		} else if kind == ast.ParamPositional && sawDefault {
			p.errorf(p.curPos(), "non-default argument %q follows default argument", name)
		}
		if kind == ast.ParamStarStar && !p.isSym(")") {
			p.errorf(p.curPos(), "**%s must be the last parameter", name)
		}
		params = append(params, ast.Param{Name: name, Default: def, Kind: kind})
		if p.isSym(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectSym(")")
	return params
}

func (p *Parser) parseClassDef(b *lexer.Block) ast.Stmt {
	pos := p.curPos()
	p.advance() // class
	name, _ := p.expectWord()
	var bases []ast.Expr
	if p.isSym("(") {
		p.advance()
		for !p.isSym(")") && !p.atEOF() {
			bases = append(bases, p.parseTernary())
			if p.isSym(",") {
				p.advance()
				continue
			}
			break
		}
		p.expectSym(")")
	}
	p.expectSym(":")
	savedLoopDepth := p.loopDepth
	p.loopDepth = 0
	body := p.parseBody(b.Children)
	p.loopDepth = savedLoopDepth
	for _, s := range body {
		if fd, ok := s.(*ast.FunctionDef); ok {
			fd.IsMethod = true
		}
	}
	return &ast.ClassDef{Base: bp(pos), Name: name, Bases: bases, Body: body}
}
