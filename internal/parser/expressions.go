package parser

import (
	"github.com/wings-lang/wings/internal/ast"
	"github.com/wings-lang/wings/internal/lexer"
)

// Precedence climbs, lowest to highest, through a fixed chain of
// recursive-descent levels mirroring the language's precedence table:
// lambda/ternary, or, and, not, comparison/membership/identity, bitwise
// or/xor/and, shift, additive, multiplicative, unary, power, postfix, atom.

func (p *Parser) parseExpr() ast.Expr {
	if p.isKw("lambda") {
		return p.parseLambda()
	}
	return p.parseTernary()
}

func (p *Parser) parseLambda() ast.Expr {
	pos := p.curPos()
	p.advance() // lambda
	var params []ast.Param
	for !p.isSym(":") && !p.atEOF() {
		kind := ast.ParamPositional
		if p.isSym("*") {
			p.advance()
			kind = ast.ParamStar
		} else if p.isSym("**") {
			p.advance()
			kind = ast.ParamStarStar
		}
		name, _ := p.expectWord()
		var def ast.Expr
		if p.isSym("=") {
			p.advance()
			def = p.parseTernary()
		}
		params = append(params, ast.Param{Name: name, Default: def, Kind: kind})
		if p.isSym(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectSym(":")
	body := p.parseTernary()
	return &ast.LambdaExpr{Base: bp(pos), Params: params, Body: body}
}

func (p *Parser) parseTernary() ast.Expr {
	pos := p.curPos()
	then := p.parseOr()
	if p.isKw("if") {
		p.advance()
		cond := p.parseOr()
		p.expectKw("else")
		els := p.parseTernary()
		return &ast.TernaryExpr{Base: bp(pos), Cond: cond, Then: then, Else: els}
	}
	return then
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.isKw("or") {
		pos := p.curPos()
		p.advance()
		right := p.parseAnd()
		left = &ast.BoolOpExpr{Base: bp(pos), Op: "or", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseNot()
	for p.isKw("and") {
		pos := p.curPos()
		p.advance()
		right := p.parseNot()
		left = &ast.BoolOpExpr{Base: bp(pos), Op: "and", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseNot() ast.Expr {
	if p.isKw("not") {
		pos := p.curPos()
		p.advance()
		operand := p.parseNot()
		return &ast.UnaryExpr{Base: bp(pos), Op: "not", Operand: operand}
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseBitOr()
	for {
		pos := p.curPos()
		if op, ok := p.compareOp(); ok {
			p.advance()
			right := p.parseBitOr()
			left = &ast.CompareExpr{Base: bp(pos), Op: op, Left: left, Right: right}
			continue
		}
		break
	}
	return left
}

// compareOp recognizes a comparison/membership/identity operator at the
// cursor without consuming it, including the two-word forms `not in` and
// `is not`.
func (p *Parser) compareOp() (string, bool) {
	t := p.cur()
	if t.Kind == lexer.Symbol {
		switch t.Literal {
		case "==", "!=", "<", "<=", ">", ">=":
			return t.Literal, true
		}
		return "", false
	}
	if t.Kind == lexer.Keyword {
		switch t.Literal {
		case "in":
			return "in", true
		case "is":
			if p.peek(1).Kind == lexer.Keyword && p.peek(1).Literal == "not" {
				p.pos++ // consume "is"; caller's advance() consumes "not"
				return "is not", true
			}
			return "is", true
		case "not":
			if p.peek(1).Kind == lexer.Keyword && p.peek(1).Literal == "in" {
				p.pos++ // consume "not"; caller's advance() consumes "in"
				return "not in", true
			}
		}
	}
	return "", false
}

func (p *Parser) parseBitOr() ast.Expr {
	left := p.parseBitXor()
	for p.isSym("|") {
		pos := p.curPos()
		p.advance()
		right := p.parseBitXor()
		left = &ast.BinaryExpr{Base: bp(pos), Op: "|", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitXor() ast.Expr {
	left := p.parseBitAnd()
	for p.isSym("^") {
		pos := p.curPos()
		p.advance()
		right := p.parseBitAnd()
		left = &ast.BinaryExpr{Base: bp(pos), Op: "^", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitAnd() ast.Expr {
	left := p.parseShift()
	for p.isSym("&") {
		pos := p.curPos()
		p.advance()
		right := p.parseShift()
		left = &ast.BinaryExpr{Base: bp(pos), Op: "&", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseShift() ast.Expr {
	left := p.parseAdditive()
	for p.isSym("<<") || p.isSym(">>") {
		op := p.cur().Literal
		pos := p.curPos()
		p.advance()
		right := p.parseAdditive()
		left = &ast.BinaryExpr{Base: bp(pos), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.isSym("+") || p.isSym("-") {
		op := p.cur().Literal
		pos := p.curPos()
		p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{Base: bp(pos), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.isSym("*") || p.isSym("/") || p.isSym("//") || p.isSym("%") {
		op := p.cur().Literal
		pos := p.curPos()
		p.advance()
		right := p.parseUnary()
		left = &ast.BinaryExpr{Base: bp(pos), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.isSym("-") || p.isSym("+") || p.isSym("~") {
		op := p.cur().Literal
		pos := p.curPos()
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{Base: bp(pos), Op: op, Operand: operand}
	}
	return p.parsePower()
}

func (p *Parser) parsePower() ast.Expr {
	left := p.parsePostfix(p.parsePrimary())
	if p.isSym("**") {
		pos := p.curPos()
		p.advance()
		right := p.parseUnary() // right-associative, binds through unary
		return &ast.BinaryExpr{Base: bp(pos), Op: "**", Left: left, Right: right}
	}
	return left
}

// parsePostfix consumes trailing call/index/attribute operators; there is
// no `x++`/`x--` postfix form.
func (p *Parser) parsePostfix(e ast.Expr) ast.Expr {
	for {
		switch {
		case p.isSym("("):
			e = p.parseCall(e)
		case p.isSym("["):
			e = p.parseIndex(e)
		case p.isSym("."):
			pos := p.curPos()
			p.advance()
			name, _ := p.expectWord()
			e = &ast.AttributeExpr{Base: bp(pos), Object: e, Name: name}
		default:
			return e
		}
	}
}

func (p *Parser) parseCall(fn ast.Expr) ast.Expr {
	pos := p.curPos()
	p.advance() // (
	var args []ast.Expr
	var kwargs []ast.KeywordArg
	for !p.isSym(")") && !p.atEOF() {
		if p.cur().Kind == lexer.Word && p.peek(1).Kind == lexer.Symbol && p.peek(1).Literal == "=" {
			name := p.cur().Literal
			p.advance()
			p.advance()
			kwargs = append(kwargs, ast.KeywordArg{Name: name, Value: p.parseTernary()})
		} else if p.isSym("*") {
			p.advance()
			args = append(args, &ast.UnaryExpr{Base: bp(p.curPos()), Op: "*", Operand: p.parseTernary()})
		} else if p.isSym("**") {
			p.advance()
			args = append(args, &ast.UnaryExpr{Base: bp(p.curPos()), Op: "**", Operand: p.parseTernary()})
		} else {
			if len(kwargs) > 0 {
				p.errorf(p.curPos(), "positional argument follows keyword argument")
			}
			args = append(args, p.parseTernary())
		}
		if p.isSym(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectSym(")")
	return &ast.CallExpr{Base: bp(pos), Func: fn, Args: args, Kwargs: kwargs}
}

func (p *Parser) parseIndex(obj ast.Expr) ast.Expr {
	pos := p.curPos()
	p.advance() // [
	idx := p.parseSliceOrExpr()
	p.expectSym("]")
	return &ast.IndexExpr{Base: bp(pos), Object: obj, Index: idx}
}

// parseSliceOrExpr parses either a bare index expression or a
// `lower:upper:step` slice (any part may be omitted).
func (p *Parser) parseSliceOrExpr() ast.Expr {
	pos := p.curPos()
	var lower, upper, step ast.Expr
	if !p.isSym(":") && !p.isSym("::") {
		lower = p.parseTernary()
		if !p.isSym(":") && !p.isSym("::") {
			return lower
		}
	}
	if p.isSym("::") {
		// the lexer scans the two colons around an omitted upper bound as one "::" symbol
		p.advance()
		if !p.isSym("]") {
			step = p.parseTernary()
		}
		return &ast.SliceExpr{Base: bp(pos), Lower: lower, Upper: upper, Step: step}
	}
	p.advance() // :
	if !p.isSym(":") && !p.isSym("]") {
		upper = p.parseTernary()
	}
	if p.isSym(":") {
		p.advance()
		if !p.isSym("]") {
			step = p.parseTernary()
		}
	}
	return &ast.SliceExpr{Base: bp(pos), Lower: lower, Upper: upper, Step: step}
}

func (p *Parser) parsePrimary() ast.Expr {
	t := p.cur()
	pos := t.Pos

	switch t.Kind {
	case lexer.Int:
		p.advance()
		return ast.IntLiteral{Base: bp(pos), Value: t.Int}
	case lexer.Float:
		p.advance()
		return ast.FloatLiteral{Base: bp(pos), Value: t.Float}
	case lexer.String:
		p.advance()
		lit := ast.StringLiteral{Base: bp(pos), Value: t.Literal}
		// adjacent string literals concatenate, as in the source language.
		for p.cur().Kind == lexer.String {
			lit.Value += p.cur().Literal
			p.advance()
		}
		return lit
	case lexer.Bool:
		p.advance()
		return ast.BoolLiteral{Base: bp(pos), Value: t.Bool}
	case lexer.Null:
		p.advance()
		return ast.NullLiteral{Base: bp(pos)}
	case lexer.Word:
		p.advance()
		return p.newIdent(t.Literal, pos)
	case lexer.Keyword:
		if t.Literal == "lambda" {
			return p.parseLambda()
		}
	case lexer.Symbol:
		switch t.Literal {
		case "(":
			return p.parseParenOrTuple()
		case "[":
			return p.parseListOrComprehension()
		case "{":
			return p.parseDictOrSetOrComprehension()
		}
	}

	p.errorf(pos, "unexpected token %q in expression", t.Literal)
	p.advance()
	return &ast.NullLiteral{Base: bp(pos)}
}

func (p *Parser) parseParenOrTuple() ast.Expr {
	pos := p.curPos()
	p.advance() // (
	if p.isSym(")") {
		p.advance()
		return &ast.TupleExpr{Base: bp(pos)}
	}
	first := p.parseTernary()
	if p.isKw("for") {
		result := p.parseComprehensionTail(pos, first, "generator")
		p.expectSym(")")
		return result
	}
	if !p.isSym(",") {
		p.expectSym(")")
		return first // parenthesized expression, not a tuple
	}
	elems := []ast.Expr{first}
	for p.isSym(",") {
		p.advance()
		if p.isSym(")") {
			break
		}
		elems = append(elems, p.parseTernary())
	}
	p.expectSym(")")
	return &ast.TupleExpr{Base: bp(pos), Elements: elems}
}

func (p *Parser) parseListOrComprehension() ast.Expr {
	pos := p.curPos()
	p.advance() // [
	if p.isSym("]") {
		p.advance()
		return &ast.ListExpr{Base: bp(pos)}
	}
	first := p.parseTernary()
	if p.isKw("for") {
		result := p.parseComprehensionTail(pos, first, "list")
		p.expectSym("]")
		return result
	}
	elems := []ast.Expr{first}
	for p.isSym(",") {
		p.advance()
		if p.isSym("]") {
			break
		}
		elems = append(elems, p.parseTernary())
	}
	p.expectSym("]")
	return &ast.ListExpr{Base: bp(pos), Elements: elems}
}

func (p *Parser) parseDictOrSetOrComprehension() ast.Expr {
	pos := p.curPos()
	p.advance() // {
	if p.isSym("}") {
		p.advance()
		return &ast.DictExpr{Base: bp(pos)}
	}

	firstKey := p.parseTernary()
	if p.isSym(":") {
		p.advance()
		firstVal := p.parseTernary()
		if p.isKw("for") {
			result := p.parseDictComprehensionTail(pos, firstKey, firstVal)
			p.expectSym("}")
			return result
		}
		entries := []ast.DictEntry{{Key: firstKey, Value: firstVal}}
		for p.isSym(",") {
			p.advance()
			if p.isSym("}") {
				break
			}
			k := p.parseTernary()
			p.expectSym(":")
			v := p.parseTernary()
			entries = append(entries, ast.DictEntry{Key: k, Value: v})
		}
		p.expectSym("}")
		return &ast.DictExpr{Base: bp(pos), Entries: entries}
	}

	if p.isKw("for") {
		result := p.parseComprehensionTail(pos, firstKey, "set")
		p.expectSym("}")
		return result
	}
	elems := []ast.Expr{firstKey}
	for p.isSym(",") {
		p.advance()
		if p.isSym("}") {
			break
		}
		elems = append(elems, p.parseTernary())
	}
	p.expectSym("}")
	return &ast.SetExpr{Base: bp(pos), Elements: elems}
}

// comprehensionClause is one `for vars in iter [if cond]*` clause; a
// comprehension may chain several (nested loops) before yielding its
// element expression.
type comprehensionClause struct {
	vars ast.Expr
	iter ast.Expr
	ifs  []ast.Expr
}

func (p *Parser) parseComprehensionClauses() []comprehensionClause {
	var clauses []comprehensionClause
	for p.isKw("for") {
		p.advance()
		vars := p.parseTargetList()
		p.expectKw("in")
		iter := p.parseOr()
		var ifs []ast.Expr
		for p.isKw("if") {
			p.advance()
			ifs = append(ifs, p.parseOr())
		}
		clauses = append(clauses, comprehensionClause{vars: vars, iter: iter, ifs: ifs})
	}
	return clauses
}
