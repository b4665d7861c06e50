package compiler

import "github.com/wings-lang/wings/internal/ast"

func (c *Compiler) compileStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		c.compileStmt(s)
	}
}

func (c *Compiler) compileStmt(s ast.Stmt) {
	pos := toPos(s.Pos())
	switch n := s.(type) {
	case *ast.PassStmt:
		// nothing to emit
	case *ast.ExprStmt:
		c.compileExpr(n.X)
		c.chunk.emit(OpPop, 0, pos)
	case *ast.AssignStmt:
		c.compileExpr(n.Value)
		c.compileStore(n.Target, pos)
	case *ast.GlobalStmt, *ast.NonlocalStmt:
		// Purely a hint to the closure resolver; nothing to emit here.
	case *ast.ReturnStmt:
		c.compileReturn(n, pos)
	case *ast.IfStmt:
		c.compileIf(n, pos)
	case *ast.WhileStmt:
		c.compileWhile(n, pos)
	case *ast.TryStmt:
		c.compileTry(n, pos)
	case *ast.RaiseStmt:
		c.compileRaise(n, pos)
	case *ast.BreakStmt:
		c.compileBreak(pos)
	case *ast.ContinueStmt:
		c.compileContinue(pos)
	case *ast.SeqStmt:
		c.compileStmts(n.Statements)
	case *ast.ImportStmt:
		c.compileImport(n, pos)
	case *ast.ImportFromStmt:
		c.compileImportFrom(n, pos)
	case *ast.DelStmt:
		c.compileDel(n, pos)
	case *ast.FunctionDef:
		c.compileFunctionDef(n, pos)
	case *ast.ClassDef:
		c.compileClassDef(n, pos)
	default:
		c.errorf(s.Pos(), "compiler: unsupported statement %T", s)
	}
}

// compileReturn unwinds every pending try block from innermost to
// outermost before leaving the function: the runtime try frame is popped
// first (so an exception inside the finally propagates instead of being
// caught by the block it is cleaning up after), then the finally body is
// inlined. The pending return value stays on the stack beneath the
// finally bodies' own balanced temporaries.
func (c *Compiler) compileReturn(n *ast.ReturnStmt, pos Pos) {
	if n.Value != nil {
		c.compileExpr(n.Value)
	} else {
		c.chunk.emit(OpLoadNone, 0, pos)
	}
	c.emitEarlyExitCleanup(0, pos)
	c.chunk.emit(OpReturn, 1, pos)
}

// emitEarlyExitCleanup compiles the pop-try/inline-finally sequence for
// every try block in c.tryBlocks[downTo:], innermost first. While a
// finally body is being re-compiled here, tryBlocks is truncated to that
// block's level so a return/break nested inside the finally does not
// re-inline the blocks already passed.
func (c *Compiler) emitEarlyExitCleanup(downTo int, pos Pos) {
	saved := c.tryBlocks
	for i := len(saved) - 1; i >= downTo; i-- {
		tb := saved[i]
		if tb.live {
			c.chunk.emit(OpPopTry, 0, pos)
		}
		c.tryBlocks = saved[:i]
		if len(tb.finally) > 0 {
			c.compileStmts(tb.finally)
		}
	}
	c.tryBlocks = saved
}

func (c *Compiler) compileIf(n *ast.IfStmt, pos Pos) {
	c.compileExpr(n.Cond)
	jmpElse := c.chunk.emit(OpJumpIfFalse, 0, pos)
	c.compileStmts(n.Then)
	jmpEnd := c.chunk.emit(OpJump, 0, pos)
	c.chunk.patchJump(jmpElse, c.chunk.here())
	c.compileStmts(n.Else)
	c.chunk.patchJump(jmpEnd, c.chunk.here())
}

// compileWhile lays out cond/body/else so that a false condition falls
// into the else body while a `break` jumps past it, the loop/else
// contract the for-loop lowering also relies on.
func (c *Compiler) compileWhile(n *ast.WhileStmt, pos Pos) {
	loop := &loopCtx{continueTarget: -1, tryDepth: len(c.tryBlocks)}
	c.loopStack = append(c.loopStack, loop)

	condStart := c.chunk.here()
	loop.continueTarget = condStart
	c.compileExpr(n.Cond)
	jmpEnd := c.chunk.emit(OpJumpIfFalse, 0, pos)
	c.compileStmts(n.Body)
	c.chunk.emit(OpJump, int32(condStart), pos)

	c.loopStack = c.loopStack[:len(c.loopStack)-1]
	for _, j := range loop.continueJumps {
		c.chunk.patchJump(j, condStart)
	}
	c.chunk.patchJump(jmpEnd, c.chunk.here())
	c.compileStmts(n.Else)
	for _, j := range loop.breakJumps {
		c.chunk.patchJump(j, c.chunk.here())
	}
}

func (c *Compiler) compileBreak(pos Pos) {
	if len(c.loopStack) == 0 {
		c.errorf(fromPos(pos), "'break' outside loop")
		return
	}
	loop := c.loopStack[len(c.loopStack)-1]
	c.emitEarlyExitCleanup(loop.tryDepth, pos)
	j := c.chunk.emit(OpJump, 0, pos)
	loop.breakJumps = append(loop.breakJumps, j)
}

func (c *Compiler) compileContinue(pos Pos) {
	if len(c.loopStack) == 0 {
		c.errorf(fromPos(pos), "'continue' not properly in loop")
		return
	}
	loop := c.loopStack[len(c.loopStack)-1]
	c.emitEarlyExitCleanup(loop.tryDepth, pos)
	j := c.chunk.emit(OpJump, 0, pos)
	loop.continueJumps = append(loop.continueJumps, j)
}

func (c *Compiler) compileRaise(n *ast.RaiseStmt, pos Pos) {
	if n.Value == nil {
		c.chunk.emit(OpRaise, 1, pos)
		return
	}
	c.compileExpr(n.Value)
	c.chunk.emit(OpRaise, 0, pos)
}

// compileTry lowers try/except/finally onto runtime try frames: OpPushTry
// opens a protected region whose handler target is the except-matching
// chain, and the frame records the operand-stack depth so unwinding lands
// with exactly the surrounding expression's in-flight values restored and
// the exception object on top. Each except clause's own body runs under a
// second frame routed to a shared run-finally-and-reraise tail (not back
// into the matching chain, which would wrongly offer this try's own
// clauses a second shot at the new exception). Finally is inlined at
// every exit path: normal completion, each except clause, the uncaught
// re-raise, and any break/continue/return that leaves the block (see
// emitEarlyExitCleanup).
func (c *Compiler) compileTry(n *ast.TryStmt, pos Pos) {
	if len(n.Excepts) == 0 && len(n.Finally) == 0 {
		c.compileStmts(n.Body)
		return
	}

	pushBody := c.chunk.emit(OpPushTry, 0, pos)
	c.tryBlocks = append(c.tryBlocks, tryBlockCtx{live: true, finally: n.Finally})
	c.compileStmts(n.Body)
	c.tryBlocks = c.tryBlocks[:len(c.tryBlocks)-1]
	c.chunk.emit(OpPopTry, 0, pos)
	c.compileStmts(n.Finally)
	jmpAfter := c.chunk.emit(OpJump, 0, pos)

	// Matching chain; unwinding pushed the exception object on top.
	c.chunk.patchJump(pushBody, c.chunk.here())

	var clauseEnds []int
	var clausePushes []int
	for _, ex := range n.Excepts {
		c.chunk.emit(OpDup, 0, pos)
		for _, t := range ex.Types {
			c.compileExpr(t)
		}
		c.chunk.emit(OpBuildTuple, int32(len(ex.Types)), pos)
		c.chunk.emit(OpMatchException, 0, pos)
		jmpNext := c.chunk.emit(OpJumpIfFalse, 0, pos)

		// The clause matched: the exception is handled, so clear the
		// current-exception slot before the handler body runs.
		c.chunk.emit(OpClearException, 0, pos)
		if ex.Name != "" {
			c.compileStoreName(ex.Name, pos)
		} else {
			c.chunk.emit(OpPop, 0, pos)
		}
		clausePushes = append(clausePushes, c.chunk.emit(OpPushTry, 0, pos))
		c.tryBlocks = append(c.tryBlocks, tryBlockCtx{live: true, finally: n.Finally})
		c.compileStmts(ex.Body)
		c.tryBlocks = c.tryBlocks[:len(c.tryBlocks)-1]
		c.chunk.emit(OpPopTry, 0, pos)
		c.compileStmts(n.Finally)
		clauseEnds = append(clauseEnds, c.chunk.emit(OpJump, 0, pos))
		c.chunk.patchJump(jmpNext, c.chunk.here())
	}

	// No clause matched (or there were none), or a clause body raised a
	// fresh exception: run finally once more and propagate whatever is on
	// top of the stack.
	reraiseStart := c.chunk.here()
	for _, j := range clausePushes {
		c.chunk.patchJump(j, reraiseStart)
	}
	c.compileStmts(n.Finally)
	c.chunk.emit(OpRaise, 0, pos)

	for _, j := range clauseEnds {
		c.chunk.patchJump(j, c.chunk.here())
	}
	c.chunk.patchJump(jmpAfter, c.chunk.here())
}

func (c *Compiler) compileImport(n *ast.ImportStmt, pos Pos) {
	nameIdx := c.internString(n.Module)
	c.chunk.emit(OpImportModule, nameIdx, pos)
	bind := n.Module
	if n.Alias != "" {
		bind = n.Alias
	} else if i := firstDot(bind); i >= 0 {
		bind = bind[:i]
	}
	c.compileStoreName(bind, pos)
}

func firstDot(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

func (c *Compiler) compileImportFrom(n *ast.ImportFromStmt, pos Pos) {
	modIdx := c.internString(n.Module)
	c.chunk.emit(OpImportModule, modIdx, pos)
	for _, imp := range n.Names {
		if imp.Name == "*" {
			c.chunk.emit(OpImportStar, 0, pos)
			continue
		}
		// OpImportFrom peeks at the module and pushes the value, so the
		// module stays put for the next name; one trailing OpPop
		// balances the whole sequence.
		nameIdx := c.internString(imp.Name)
		c.chunk.emit(OpImportFrom, nameIdx, pos)
		bind := imp.Name
		if imp.Alias != "" {
			bind = imp.Alias
		}
		c.compileStoreName(bind, pos)
	}
	c.chunk.emit(OpPop, 0, pos)
}

func (c *Compiler) compileDel(n *ast.DelStmt, pos Pos) {
	for _, target := range n.Targets {
		switch t := target.(type) {
		case *ast.Identifier:
			c.compileDeleteName(t.Name, pos)
		case *ast.AttributeExpr:
			c.compileExpr(t.Object)
			nameIdx := c.internString(t.Name)
			c.chunk.emit(OpDeleteAttr, nameIdx, pos)
		case *ast.IndexExpr:
			c.compileExpr(t.Object)
			c.compileExpr(t.Index)
			c.chunk.emit(OpDeleteIndex, 0, pos)
		default:
			c.errorf(fromPos(pos), "invalid del target %T", target)
		}
	}
}
