package compiler

import (
	"github.com/wings-lang/wings/internal/ast"
	"github.com/wings-lang/wings/internal/diag"
	"github.com/wings-lang/wings/internal/object"
)

func fromPos(p Pos) diag.Pos { return diag.Pos{Line: p.Line, Column: p.Column} }

func (c *Compiler) compileExpr(e ast.Expr) {
	pos := toPos(e.Pos())
	switch n := e.(type) {
	case ast.NullLiteral:
		c.chunk.emit(OpLoadNone, 0, pos)
	case ast.BoolLiteral:
		if n.Value {
			c.chunk.emit(OpLoadTrue, 0, pos)
		} else {
			c.chunk.emit(OpLoadFalse, 0, pos)
		}
	case ast.IntLiteral:
		idx := c.chunk.addConst(&object.Object{Kind: object.KindInt, Int: n.Value})
		c.chunk.emit(OpLoadConst, idx, pos)
	case ast.FloatLiteral:
		idx := c.chunk.addConst(&object.Object{Kind: object.KindFloat, Float: n.Value})
		c.chunk.emit(OpLoadConst, idx, pos)
	case ast.StringLiteral:
		idx := c.chunk.addConst(&object.Object{Kind: object.KindString, Str: n.Value})
		c.chunk.emit(OpLoadConst, idx, pos)
	case *ast.Identifier:
		c.compileLoadName(n.Name, pos)
	case *ast.TupleExpr:
		for _, el := range n.Elements {
			c.compileExpr(el)
		}
		c.chunk.emit(OpBuildTuple, int32(len(n.Elements)), pos)
	case *ast.ListExpr:
		for _, el := range n.Elements {
			c.compileExpr(el)
		}
		c.chunk.emit(OpBuildList, int32(len(n.Elements)), pos)
	case *ast.SetExpr:
		for _, el := range n.Elements {
			c.compileExpr(el)
		}
		c.chunk.emit(OpBuildSet, int32(len(n.Elements)), pos)
	case *ast.DictExpr:
		for _, entry := range n.Entries {
			c.compileExpr(entry.Key)
			c.compileExpr(entry.Value)
		}
		c.chunk.emit(OpBuildDict, int32(len(n.Entries)), pos)
	case *ast.UnaryExpr:
		c.compileUnary(n, pos)
	case *ast.BinaryExpr:
		c.compileExpr(n.Left)
		c.compileExpr(n.Right)
		c.chunk.emit(binaryOp(n.Op), 0, pos)
	case *ast.BoolOpExpr:
		c.compileBoolOp(n, pos)
	case *ast.CompareExpr:
		c.compileExpr(n.Left)
		c.compileExpr(n.Right)
		c.chunk.emit(compareOp(n.Op), 0, pos)
	case *ast.TernaryExpr:
		c.compileTernary(n, pos)
	case *ast.CallExpr:
		c.compileCall(n, pos)
	case *ast.AttributeExpr:
		c.compileExpr(n.Object)
		nameIdx := c.internString(n.Name)
		c.chunk.emit(OpLoadAttr, nameIdx, pos)
	case *ast.IndexExpr:
		c.compileExpr(n.Object)
		c.compileExpr(n.Index)
		c.chunk.emit(OpLoadIndex, 0, pos)
	case *ast.SliceExpr:
		c.compileSlice(n, pos)
	case *ast.LambdaExpr:
		c.compileLambda(n, pos)
	case *ast.CompoundExpr:
		c.compileStmts(n.Prelude)
		c.compileExpr(n.Result)
	default:
		c.errorf(e.Pos(), "compiler: unsupported expression %T", e)
		c.chunk.emit(OpLoadNone, 0, pos)
	}
}

func (c *Compiler) compileUnary(n *ast.UnaryExpr, pos Pos) {
	switch n.Op {
	case "not":
		c.compileExpr(n.Operand)
		c.chunk.emit(OpNot, 0, pos)
	case "-":
		c.compileExpr(n.Operand)
		c.chunk.emit(OpNeg, 0, pos)
	case "+":
		c.compileExpr(n.Operand)
		c.chunk.emit(OpPos, 0, pos)
	case "~":
		c.compileExpr(n.Operand)
		c.chunk.emit(OpInvert, 0, pos)
	case "*", "**":
		// Call-site unpacking markers are consumed directly by
		// compileCallArgs; reaching here means one was used outside a
		// call argument list.
		c.errorf(fromPos(pos), "%s-unpacking is only valid in a call argument list", n.Op)
		c.compileExpr(n.Operand)
	default:
		c.errorf(fromPos(pos), "unknown unary operator %q", n.Op)
	}
}

func binaryOp(op string) OpCode {
	switch op {
	case "+":
		return OpAdd
	case "-":
		return OpSub
	case "*":
		return OpMul
	case "/":
		return OpDiv
	case "//":
		return OpFloorDiv
	case "%":
		return OpMod
	case "**":
		return OpPow
	case "<<":
		return OpLShift
	case ">>":
		return OpRShift
	case "&":
		return OpBitAnd
	case "|":
		return OpBitOr
	case "^":
		return OpBitXor
	}
	return OpNop
}

func compareOp(op string) OpCode {
	switch op {
	case "==":
		return OpCmpEq
	case "!=":
		return OpCmpNe
	case "<":
		return OpCmpLt
	case "<=":
		return OpCmpLe
	case ">":
		return OpCmpGt
	case ">=":
		return OpCmpGe
	case "in":
		return OpCmpIn
	case "not in":
		return OpCmpNotIn
	case "is":
		return OpCmpIs
	case "is not":
		return OpCmpIsNot
	}
	return OpNop
}

// compileBoolOp implements short-circuit and/or with the CPython-style
// JUMP_IF_*_OR_POP pair: the tested value survives on the stack as the
// result when the jump is taken, otherwise it is discarded and the other
// operand is evaluated.
func (c *Compiler) compileBoolOp(n *ast.BoolOpExpr, pos Pos) {
	c.compileExpr(n.Left)
	var op OpCode
	if n.Op == "and" {
		op = OpJumpIfFalseOrPop
	} else {
		op = OpJumpIfTrueOrPop
	}
	jmp := c.chunk.emit(op, 0, pos)
	c.compileExpr(n.Right)
	c.chunk.patchJump(jmp, c.chunk.here())
}

func (c *Compiler) compileTernary(n *ast.TernaryExpr, pos Pos) {
	c.compileExpr(n.Cond)
	jmpElse := c.chunk.emit(OpJumpIfFalse, 0, pos)
	c.compileExpr(n.Then)
	jmpEnd := c.chunk.emit(OpJump, 0, pos)
	c.chunk.patchJump(jmpElse, c.chunk.here())
	c.compileExpr(n.Else)
	c.chunk.patchJump(jmpEnd, c.chunk.here())
}

func (c *Compiler) compileSlice(n *ast.SliceExpr, pos Pos) {
	if n.Lower != nil {
		c.compileExpr(n.Lower)
	} else {
		c.chunk.emit(OpLoadNone, 0, pos)
	}
	if n.Upper != nil {
		c.compileExpr(n.Upper)
	} else {
		c.chunk.emit(OpLoadNone, 0, pos)
	}
	if n.Step != nil {
		c.compileExpr(n.Step)
	} else {
		c.chunk.emit(OpLoadNone, 0, pos)
	}
	c.chunk.emit(OpBuildSlice, 0, pos)
}

// compileLoadName resolves name through the storage classes in priority
// order: an explicit `global` declaration always wins, then this frame's
// own plain locals, own boxed cells, inherited captures, and finally a
// dynamic module-global lookup (the behavior every unresolved free
// variable gets, per the closure resolver's design).
func (c *Compiler) compileLoadName(name string, pos Pos) {
	if !c.globals[name] {
		if idx, ok := c.locals[name]; ok {
			c.chunk.emit(OpLoadLocal, idx, pos)
			return
		}
		if idx, ok := c.cells[name]; ok {
			c.chunk.emit(OpLoadCell, idx, pos)
			return
		}
		if idx, ok := c.captures[name]; ok {
			c.chunk.emit(OpLoadCapture, idx, pos)
			return
		}
	}
	nameIdx := c.internString(name)
	c.chunk.emit(OpLoadGlobal, nameIdx, pos)
}

func (c *Compiler) compileStoreName(name string, pos Pos) {
	if !c.globals[name] {
		if idx, ok := c.locals[name]; ok {
			c.chunk.emit(OpStoreLocal, idx, pos)
			return
		}
		if idx, ok := c.cells[name]; ok {
			c.chunk.emit(OpStoreCell, idx, pos)
			return
		}
		if idx, ok := c.captures[name]; ok {
			c.chunk.emit(OpStoreCapture, idx, pos)
			return
		}
	}
	nameIdx := c.internString(name)
	c.chunk.emit(OpStoreGlobal, nameIdx, pos)
}

func (c *Compiler) compileDeleteName(name string, pos Pos) {
	if !c.globals[name] {
		if idx, ok := c.locals[name]; ok {
			c.chunk.emit(OpDeleteLocal, idx, pos)
			return
		}
		if idx, ok := c.cells[name]; ok {
			c.chunk.emit(OpDeleteCell, idx, pos)
			return
		}
	}
	nameIdx := c.internString(name)
	c.chunk.emit(OpDeleteGlobal, nameIdx, pos)
}

// compileStore emits the code to assign the value already sitting on top
// of the stack to target, recursing through tuple/list unpacking targets.
func (c *Compiler) compileStore(target ast.Expr, pos Pos) {
	switch t := target.(type) {
	case *ast.Identifier:
		c.compileStoreName(t.Name, pos)
	case *ast.AttributeExpr:
		c.compileExpr(t.Object)
		nameIdx := c.internString(t.Name)
		c.chunk.emit(OpStoreAttr, nameIdx, pos)
	case *ast.IndexExpr:
		c.compileExpr(t.Object)
		c.compileExpr(t.Index)
		c.chunk.emit(OpStoreIndex, 0, pos)
	case *ast.TupleExpr:
		c.chunk.emit(OpUnpackSequence, int32(len(t.Elements)), pos)
		for _, el := range t.Elements {
			c.compileStore(el, pos)
		}
	case *ast.ListExpr:
		c.chunk.emit(OpUnpackSequence, int32(len(t.Elements)), pos)
		for _, el := range t.Elements {
			c.compileStore(el, pos)
		}
	default:
		c.errorf(fromPos(pos), "invalid assignment target %T", target)
	}
}

// compileCall builds the positional-args tuple and keyword-args dict (or
// None when there are no keyword arguments) the OpCall convention expects,
// handling `*expr`/`**expr` unpacking inline.
func (c *Compiler) compileCall(n *ast.CallExpr, pos Pos) {
	c.compileExpr(n.Func)
	c.compileCallArgs(n.Args, n.Kwargs, pos)
	c.chunk.emit(OpCall, 0, pos)
}

func (c *Compiler) compileCallArgs(args []ast.Expr, kwargs []ast.KeywordArg, pos Pos) {
	hasSplat := false
	for _, a := range args {
		if u, ok := a.(*ast.UnaryExpr); ok && (u.Op == "*" || u.Op == "**") {
			hasSplat = true
			break
		}
	}

	if !hasSplat {
		for _, a := range args {
			c.compileExpr(a)
		}
		c.chunk.emit(OpBuildTuple, int32(len(args)), pos)
	} else {
		c.compileSplatList(args, pos)
	}

	if len(kwargs) == 0 && !hasDoubleSplatArgs(args) {
		c.chunk.emit(OpLoadNone, 0, pos)
		return
	}
	c.compileKwargs(kwargs, args, pos)
}

func hasDoubleSplatArgs(args []ast.Expr) bool {
	for _, a := range args {
		if u, ok := a.(*ast.UnaryExpr); ok && u.Op == "**" {
			return true
		}
	}
	return false
}

// compileSplatList builds the positional-argument list when at least one
// `*expr` unpacking is present, since the final element count isn't known
// until runtime: start from an empty list and append/extend one argument
// at a time via the ordinary list.append/list.extend methods. The VM's
// OpCall accepts a KindList in the args position exactly like a tuple.
func (c *Compiler) compileSplatList(args []ast.Expr, pos Pos) {
	c.chunk.emit(OpBuildList, 0, pos)
	for _, a := range args {
		if u, ok := a.(*ast.UnaryExpr); ok && u.Op == "*" {
			c.chunk.emit(OpDup, 0, pos)
			nameIdx := c.internString("extend")
			c.chunk.emit(OpLoadAttr, nameIdx, pos)
			c.compileExpr(u.Operand)
			c.chunk.emit(OpBuildTuple, 1, pos)
			c.chunk.emit(OpLoadNone, 0, pos)
			c.chunk.emit(OpCall, 0, pos)
			c.chunk.emit(OpPop, 0, pos)
			continue
		}
		if u, ok := a.(*ast.UnaryExpr); ok && u.Op == "**" {
			continue // handled by compileKwargs
		}
		c.chunk.emit(OpDup, 0, pos)
		nameIdx := c.internString("append")
		c.chunk.emit(OpLoadAttr, nameIdx, pos)
		c.compileExpr(a)
		c.chunk.emit(OpBuildTuple, 1, pos)
		c.chunk.emit(OpLoadNone, 0, pos)
		c.chunk.emit(OpCall, 0, pos)
		c.chunk.emit(OpPop, 0, pos)
	}
}

// compileKwargs builds the keyword-argument dict from both `name=value`
// entries and any `**expr` unpackings found in args: every explicit
// name=value is written first, then each `**expr` is merged in source
// order, so a key from a `**expr` overrides an explicit keyword of the
// same name regardless of where the two appear in the call.
func (c *Compiler) compileKwargs(kwargs []ast.KeywordArg, args []ast.Expr, pos Pos) {
	c.chunk.emit(OpBuildDict, 0, pos)
	for _, kw := range kwargs {
		// OpStoreIndex wants [value, obj, index] with index on top; the
		// dict being built sits below whatever we push here, so we
		// route the write through a __setitem__ call instead of trying
		// to reorder three stack slots with no rotate opcode (the same
		// call-based trick compileSplatList uses for append/extend).
		c.chunk.emit(OpDup, 0, pos)
		setItemIdx := c.internString("__setitem__")
		c.chunk.emit(OpLoadAttr, setItemIdx, pos)
		nameIdx := c.internString(kw.Name)
		c.chunk.emit(OpLoadConst, nameIdx, pos)
		c.compileExpr(kw.Value)
		c.chunk.emit(OpBuildTuple, 2, pos)
		c.chunk.emit(OpLoadNone, 0, pos)
		c.chunk.emit(OpCall, 0, pos)
		c.chunk.emit(OpPop, 0, pos)
	}
	for _, a := range args {
		u, ok := a.(*ast.UnaryExpr)
		if !ok || u.Op != "**" {
			continue
		}
		c.chunk.emit(OpDup, 0, pos)
		nameIdx := c.internString("update")
		c.chunk.emit(OpLoadAttr, nameIdx, pos)
		c.compileExpr(u.Operand)
		c.chunk.emit(OpBuildTuple, 1, pos)
		c.chunk.emit(OpLoadNone, 0, pos)
		c.chunk.emit(OpCall, 0, pos)
		c.chunk.emit(OpPop, 0, pos)
	}
}

func (c *Compiler) compileLambda(n *ast.LambdaExpr, pos Pos) {
	body := []ast.Stmt{&ast.ReturnStmt{Base: ast.NewPos(fromPos(pos)), Value: n.Body}}
	proto := c.compileFunctionProto("<lambda>", n.Params, n.Locals, n.Captures, nil, body, false)
	idx := c.addFuncProto(proto)
	c.emitMakeClosure(idx, n.Params, pos)
}
