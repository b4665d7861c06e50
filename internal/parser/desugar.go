package parser

import (
	"github.com/wings-lang/wings/internal/ast"
	"github.com/wings-lang/wings/internal/diag"
)

// lowerFor ensures `for vars in E: body [else: e]` is never executed as
// a for-loop by the executor. It becomes an
// iterator-acquire followed by an infinite while whose body fetches the
// next element inside a try/except StopIteration -> break. Since
// StopIteration is exactly the "loop exhausted without break" signal, the
// for/else else-body runs inside that handler just before its break; a
// user-written break in the loop body jumps straight out and skips it.
func (p *Parser) lowerFor(pos diag.Pos, vars, iterExpr ast.Expr, body, elseBody []ast.Stmt) ast.Stmt {
	tmp := p.gensym("iter")
	tmpIdent := p.newIdent(tmp, pos)

	acquireIter := &ast.AssignStmt{
		Base:  bp(pos),
		Target: tmpIdent,
		Value: &ast.CallExpr{Base: bp(pos), Func: &ast.AttributeExpr{Base: bp(pos), Object: iterExpr, Name: "__iter__"}},
	}

	exhausted := append(append([]ast.Stmt{}, elseBody...), &ast.BreakStmt{Base: bp(pos)})
	fetchNext := &ast.TryStmt{
		Base: bp(pos),
		Body: []ast.Stmt{&ast.AssignStmt{
			Base:  bp(pos),
			Target: vars,
			Value: &ast.CallExpr{Base: bp(pos), Func: &ast.AttributeExpr{Base: bp(pos), Object: tmpIdent, Name: "__next__"}},
		}},
		Excepts: []ast.ExceptClause{{
			Types: []ast.Expr{p.newIdent("StopIteration", pos)},
			Body:  exhausted,
		}},
	}

	loopBody := append([]ast.Stmt{fetchNext}, body...)
	whileLoop := &ast.WhileStmt{
		Base: bp(pos),
		Cond: ast.BoolLiteral{Base: bp(pos), Value: true},
		Body: loopBody,
	}

	return &ast.SeqStmt{Base: bp(pos), Statements: []ast.Stmt{acquireIter, whileLoop}}
}

// lowerWith rewrites `with E as x: body` into a bound
// temporary, `__enter__`, and a try/finally guaranteeing `__exit__` runs on
// every path out of body.
func (p *Parser) lowerWith(pos diag.Pos, e, as ast.Expr, body []ast.Stmt) ast.Stmt {
	tmp := p.gensym("with")
	tmpIdent := p.newIdent(tmp, pos)

	bindTmp := &ast.AssignStmt{Base: bp(pos), Target: tmpIdent, Value: e}

	enterCall := &ast.CallExpr{Base: bp(pos), Func: &ast.AttributeExpr{Base: bp(pos), Object: tmpIdent, Name: "__enter__"}}
	var enterStmt ast.Stmt
	if as != nil {
		enterStmt = &ast.AssignStmt{Base: bp(pos), Target: as, Value: enterCall}
	} else {
		enterStmt = &ast.ExprStmt{Base: bp(pos), X: enterCall}
	}

	none := ast.NullLiteral{Base: bp(pos)}
	exitCall := &ast.CallExpr{
		Base: bp(pos),
		Func: &ast.AttributeExpr{Base: bp(pos), Object: tmpIdent, Name: "__exit__"},
		Args: []ast.Expr{none, none, none},
	}

	tryStmt := &ast.TryStmt{
		Base:    bp(pos),
		Body:    body,
		Finally: []ast.Stmt{&ast.ExprStmt{Base: bp(pos), X: exitCall}},
	}

	return &ast.SeqStmt{Base: bp(pos), Statements: []ast.Stmt{bindTmp, enterStmt, tryStmt}}
}

// parseComprehensionTail finishes a list/set/generator comprehension after
// its leading element expression has already been parsed and "for" has
// been peeked. It lowers to: allocate an empty
// container bound to a fresh name, run the (possibly nested) for-loops
// appending the element on every iteration that passes its `if` guards,
// and yield the name as the expression's value. Generator expressions are
// rendered the same way as list comprehensions: this interpreter has no
// lazy generator-expression object, only the dunder-iterator protocol
// classes provide lazy iteration.
func (p *Parser) parseComprehensionTail(pos diag.Pos, elem ast.Expr, kind string) ast.Expr {
	clauses := p.parseComprehensionClauses()
	name := p.gensym(kind)
	nameIdent := p.newIdent(name, pos)

	var init ast.Expr
	var appendCall ast.Stmt
	switch kind {
	case "set":
		init = &ast.SetExpr{Base: bp(pos)}
		appendCall = &ast.ExprStmt{Base: bp(pos), X: &ast.CallExpr{
			Base: bp(pos),
			Func: &ast.AttributeExpr{Base: bp(pos), Object: nameIdent, Name: "add"},
			Args: []ast.Expr{elem},
		}}
	default: // "list", "generator"
		init = &ast.ListExpr{Base: bp(pos)}
		appendCall = &ast.ExprStmt{Base: bp(pos), X: &ast.CallExpr{
			Base: bp(pos),
			Func: &ast.AttributeExpr{Base: bp(pos), Object: nameIdent, Name: "append"},
			Args: []ast.Expr{elem},
		}}
	}

	prelude := []ast.Stmt{&ast.AssignStmt{Base: bp(pos), Target: nameIdent, Value: init}}
	prelude = append(prelude, p.buildComprehensionLoops(pos, clauses, 0, []ast.Stmt{appendCall})...)

	return &ast.CompoundExpr{Base: bp(pos), Prelude: prelude, Result: nameIdent}
}

// parseDictComprehensionTail mirrors parseComprehensionTail for
// `{k: v for ...}`, writing into the fresh dict via index-assignment
// instead of a method call.
func (p *Parser) parseDictComprehensionTail(pos diag.Pos, key, value ast.Expr) ast.Expr {
	clauses := p.parseComprehensionClauses()
	name := p.gensym("dict")
	nameIdent := p.newIdent(name, pos)

	init := &ast.DictExpr{Base: bp(pos)}
	setItem := &ast.AssignStmt{
		Base:   bp(pos),
		Target: &ast.IndexExpr{Base: bp(pos), Object: nameIdent, Index: key},
		Value:  value,
	}

	prelude := []ast.Stmt{&ast.AssignStmt{Base: bp(pos), Target: nameIdent, Value: init}}
	prelude = append(prelude, p.buildComprehensionLoops(pos, clauses, 0, []ast.Stmt{setItem})...)

	return &ast.CompoundExpr{Base: bp(pos), Prelude: prelude, Result: nameIdent}
}

// buildComprehensionLoops nests lowered for-loops for each comprehension
// clause (innermost first), wrapping innerBody with each clause's `if`
// guards before lowering the `for`.
func (p *Parser) buildComprehensionLoops(pos diag.Pos, clauses []comprehensionClause, idx int, innerBody []ast.Stmt) []ast.Stmt {
	if idx >= len(clauses) {
		return innerBody
	}
	clause := clauses[idx]
	body := p.buildComprehensionLoops(pos, clauses, idx+1, innerBody)
	for i := len(clause.ifs) - 1; i >= 0; i-- {
		body = []ast.Stmt{&ast.IfStmt{Base: bp(pos), Cond: clause.ifs[i], Then: body}}
	}
	return []ast.Stmt{p.lowerFor(pos, clause.vars, clause.iter, body, nil)}
}
